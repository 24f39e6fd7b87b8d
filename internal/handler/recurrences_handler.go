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
// Recurrence schedules — /v1/recurrences
// ============================================================

func createRecurrenceHandler(recurSvc *service.RecurrenceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/recurrences")
		defer span.End()

		var req domain.RecurrenceTransaction
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		created, err := recurSvc.CreateRecurrence(ctx, UserIDFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, created)
	}
}

func listRecurrencesHandler(recurSvc *service.RecurrenceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/recurrences")
		defer span.End()

		recs, err := recurSvc.ListRecurrences(ctx, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, recs)
	}
}

func listUpcomingRecurrencesHandler(recurSvc *service.RecurrenceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/recurrences/upcoming")
		defer span.End()

		recs, err := recurSvc.ListUpcoming(ctx, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, recs)
	}
}

func updateRecurrenceHandler(recurSvc *service.RecurrenceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/recurrences/{recurrenceId}")
		defer span.End()

		var req domain.RecurrenceTransaction
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		updated, err := recurSvc.UpdateRecurrence(ctx, UserIDFromContext(ctx), chi.URLParam(r, "recurrenceId"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, updated)
	}
}

func deleteRecurrenceHandler(recurSvc *service.RecurrenceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/recurrences/{recurrenceId}")
		defer span.End()

		if err := recurSvc.DeleteRecurrence(ctx, UserIDFromContext(ctx), chi.URLParam(r, "recurrenceId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "recurrence deleted"})
	}
}
