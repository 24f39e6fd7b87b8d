package handler

import (
	"net/http"

	"github.com/fintrackhq/fintrack-api/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Reports, summaries and admin views
// ============================================================

func financialReportHandler(reportSvc *service.ReportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/reports")
		defer span.End()

		report, err := reportSvc.FinancialReport(ctx, UserIDFromContext(ctx), parseTransactionFilter(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, report)
	}
}

func userSummaryHandler(reportSvc *service.ReportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/summary")
		defer span.End()

		summary, err := reportSvc.UserSummary(ctx, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, summary)
	}
}

func adminSummaryHandler(reportSvc *service.ReportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/summary")
		defer span.End()

		rows, err := reportSvc.AdminSummary(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, rows)
	}
}

func listUsersHandler(reportSvc *service.ReportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/users")
		defer span.End()

		users, err := reportSvc.ListUsers(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, users)
	}
}
