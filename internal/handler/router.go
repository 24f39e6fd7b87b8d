package handler

import (
	"net/http"
	"time"

	"github.com/fintrackhq/fintrack-api/internal/domain"
	"github.com/fintrackhq/fintrack-api/internal/infra/observability"
	"github.com/fintrackhq/fintrack-api/internal/port"
	"github.com/fintrackhq/fintrack-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Services bundles everything the router needs.
type Services struct {
	Auth         *service.AuthService
	Posting      *service.PostingService
	Transactions *service.TransactionService
	Budgets      *service.BudgetService
	Goals        *service.GoalService
	Recurrences  *service.RecurrenceService
	Reports      *service.ReportService
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svcs *Services, store port.UserStore, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(store, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// Authentication (public)
		// POST /v1/auth/register
		// POST /v1/auth/login
		// =============================================
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authRegisterHandler(svcs.Auth, logger))
			r.Post("/login", authLoginHandler(svcs.Auth, logger))
		})

		// Everything else requires a valid access token.
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(svcs.Auth, logger))

			// =============================================
			// Transactions
			// POST /v1/transactions  (the posting workflow)
			// =============================================
			r.Post("/transactions", createTransactionHandler(svcs.Posting, logger))
			r.Get("/transactions", listTransactionsHandler(svcs.Transactions, logger))
			r.Put("/transactions/{transactionId}", updateTransactionHandler(svcs.Transactions, logger))
			r.Delete("/transactions/{transactionId}", deleteTransactionHandler(svcs.Transactions, logger))

			// =============================================
			// Budgets
			// =============================================
			r.Post("/budgets", createBudgetHandler(svcs.Budgets, logger))
			r.Get("/budgets", listBudgetsHandler(svcs.Budgets, logger))
			r.Put("/budgets/{budgetId}", updateBudgetHandler(svcs.Budgets, logger))
			r.Delete("/budgets/{budgetId}", deleteBudgetHandler(svcs.Budgets, logger))

			// =============================================
			// Goals
			// =============================================
			r.Post("/goals", createGoalHandler(svcs.Goals, logger))
			r.Get("/goals", listGoalsHandler(svcs.Goals, logger))
			r.Put("/goals/{goalId}", updateGoalHandler(svcs.Goals, logger))
			r.Delete("/goals/{goalId}", deleteGoalHandler(svcs.Goals, logger))

			// =============================================
			// Recurrence schedules
			// =============================================
			r.Post("/recurrences", createRecurrenceHandler(svcs.Recurrences, logger))
			r.Get("/recurrences", listRecurrencesHandler(svcs.Recurrences, logger))
			r.Get("/recurrences/upcoming", listUpcomingRecurrencesHandler(svcs.Recurrences, logger))
			r.Put("/recurrences/{recurrenceId}", updateRecurrenceHandler(svcs.Recurrences, logger))
			r.Delete("/recurrences/{recurrenceId}", deleteRecurrenceHandler(svcs.Recurrences, logger))

			// =============================================
			// Reports & summaries
			// =============================================
			r.Get("/reports", financialReportHandler(svcs.Reports, logger))
			r.Get("/summary", userSummaryHandler(svcs.Reports, logger))

			// =============================================
			// Posting metrics snapshot
			// =============================================
			r.Get("/metrics/posting", postingMetricsHandler(metrics, logger))

			// =============================================
			// Admin
			// =============================================
			r.Group(func(r chi.Router) {
				r.Use(AdminOnlyMiddleware(logger))
				r.Get("/users", listUsersHandler(svcs.Reports, logger))
				r.Get("/admin/summary", adminSummaryHandler(svcs.Reports, logger))
			})
		})
	})

	return r
}

// ============================================================
// Operational handlers
// ============================================================

func healthzHandler(store port.UserStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "fintrack-api", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		if store != nil {
			start := time.Now()
			_, err := store.GetUserByEmail(ctx, "health-check@fintrack.invalid")
			latency := time.Since(start).Milliseconds()
			status := "healthy"
			if err != nil {
				status = "degraded"
			}
			services = append(services, domain.ServiceHealth{
				Name: "supabase", Status: status, LatencyMs: latency, LastChecked: now,
			})
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func postingMetricsHandler(metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.PostingSnapshot())
	}
}
