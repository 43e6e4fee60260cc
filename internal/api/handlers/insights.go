package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/MarcuxOng/finsight/internal/api/middleware"
	"github.com/MarcuxOng/finsight/internal/insights"
)

const defaultInsightLimit = 10

// InsightsHandler serves insight generation and history.
type InsightsHandler struct {
	generator *insights.Generator
	log       zerolog.Logger
}

func NewInsightsHandler(generator *insights.Generator, log zerolog.Logger) *InsightsHandler {
	return &InsightsHandler{generator: generator, log: log}
}

// Generate handles POST /api/insights/generate
func (h *InsightsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)

	var req struct {
		Period string `json:"period"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}
	if req.Period == "" {
		req.Period = "month"
	}

	result, err := h.generator.Generate(ctx, user.ID, req.Period)
	if err != nil {
		h.log.Error().Err(err).Msg("Insight generation failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to generate insights")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, result)
}

// List handles GET /api/insights
func (h *InsightsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)

	limit := defaultInsightLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			middleware.WriteError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	groups, err := h.generator.List(ctx, user.ID, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list insights")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list insights")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, groups)
}
