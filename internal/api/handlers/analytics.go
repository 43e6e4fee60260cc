package handlers

import (
	"net/http"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/MarcuxOng/finsight/internal/analytics"
	"github.com/MarcuxOng/finsight/internal/api/middleware"
	"github.com/MarcuxOng/finsight/internal/rowstore"
)

// AnalyticsHandler serves the derived views over a user's transactions.
// The analytics engine is pure; this handler's job is loading rows and
// parsing query parameters.
type AnalyticsHandler struct {
	store rowstore.TransactionStore
	now   func() time.Time
	log   zerolog.Logger
}

func NewAnalyticsHandler(store rowstore.TransactionStore, log zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{store: store, now: time.Now, log: log}
}

// Summary handles GET /api/analytics/summary
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)
	query := r.URL.Query()

	var start, end *civil.Date
	if v := query.Get("start_date"); v != "" {
		d, err := civil.ParseDate(v)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid start_date format")
			return
		}
		start = &d
	}
	if v := query.Get("end_date"); v != "" {
		d, err := civil.ParseDate(v)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid end_date format")
			return
		}
		end = &d
	}

	transactions, err := h.store.List(ctx, user.ID, rowstore.TransactionFilter{StartDate: start, EndDate: end})
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load transactions for summary")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to compute summary")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, analytics.SpendingSummary(transactions, start, end, h.now()))
}

// Anomalies handles GET /api/analytics/anomalies
func (h *AnalyticsHandler) Anomalies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)

	transactions, err := h.store.List(ctx, user.ID, rowstore.TransactionFilter{})
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load transactions for anomaly detection")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to detect anomalies")
		return
	}

	anomalies := analytics.DetectAnomalies(transactions, h.now())
	if anomalies == nil {
		anomalies = []analytics.Anomaly{}
	}
	middleware.WriteJSON(w, http.StatusOK, anomalies)
}

// Trends handles GET /api/analytics/trends
func (h *AnalyticsHandler) Trends(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)

	months := 3
	if v := r.URL.Query().Get("months"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			middleware.WriteError(w, http.StatusBadRequest, "months must be a positive integer")
			return
		}
		months = n
	}

	transactions, err := h.store.List(ctx, user.ID, rowstore.TransactionFilter{})
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load transactions for trends")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to compute trends")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, analytics.CompareMonthlyTrends(transactions, months, h.now()))
}
