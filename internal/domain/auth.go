package domain

// RegisterRequest is the account-creation input.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the credential input for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the signed access token and the authenticated
// user back to the client.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
