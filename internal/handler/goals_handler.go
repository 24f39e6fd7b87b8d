package handler

import (
	"encoding/json"
	"net/http"

	"github.com/fintrackhq/fintrack-api/internal/domain"
	"github.com/fintrackhq/fintrack-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Goals — /v1/goals
// ============================================================

func createGoalHandler(goalSvc *service.GoalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/goals")
		defer span.End()

		var req domain.Goal
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		created, err := goalSvc.CreateGoal(ctx, UserIDFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, created)
	}
}

func listGoalsHandler(goalSvc *service.GoalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/goals")
		defer span.End()

		goals, err := goalSvc.ListGoals(ctx, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, goals)
	}
}

func updateGoalHandler(goalSvc *service.GoalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/goals/{goalId}")
		defer span.End()

		var req domain.Goal
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		updated, err := goalSvc.UpdateGoal(ctx, UserIDFromContext(ctx), chi.URLParam(r, "goalId"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, updated)
	}
}

func deleteGoalHandler(goalSvc *service.GoalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/goals/{goalId}")
		defer span.End()

		if err := goalSvc.DeleteGoal(ctx, UserIDFromContext(ctx), chi.URLParam(r, "goalId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "goal deleted"})
	}
}
