// Package handlers contains the HTTP handlers behind /api/.
// Every handler reads the authenticated user from the request context; the
// auth middleware guarantees it is present.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MarcuxOng/finsight/internal/api/middleware"
	"github.com/MarcuxOng/finsight/internal/categorize"
	"github.com/MarcuxOng/finsight/internal/domain"
	"github.com/MarcuxOng/finsight/internal/rowstore"
	"github.com/MarcuxOng/finsight/internal/taxonomy"
)

// TransactionsHandler handles transaction CRUD and categorization endpoints.
type TransactionsHandler struct {
	store       rowstore.TransactionStore
	categorizer *categorize.Categorizer
	log         zerolog.Logger
}

func NewTransactionsHandler(store rowstore.TransactionStore, categorizer *categorize.Categorizer, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{store: store, categorizer: categorizer, log: log}
}

type transactionCreateRequest struct {
	Date        string   `json:"date"`
	Description string   `json:"description"`
	Amount      *float64 `json:"amount"`
	Category    string   `json:"category"`
	Type        string   `json:"type"`
}

// Create handles POST /api/transactions
func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)

	var req transactionCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	date, err := civil.ParseDate(req.Date)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD")
		return
	}
	if req.Description == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Description is required")
		return
	}
	if req.Amount == nil || *req.Amount < 0 {
		middleware.WriteError(w, http.StatusBadRequest, "Amount must be a non-negative number")
		return
	}

	txType := domain.TransactionType(req.Type)
	if req.Type == "" {
		txType = domain.TypeExpense
	}
	if !txType.Valid() {
		middleware.WriteError(w, http.StatusBadRequest, "Type must be income or expense")
		return
	}

	category := req.Category
	if category == "" {
		category = taxonomy.Uncategorized
	}
	if !taxonomy.ValidCategory(category) {
		middleware.WriteError(w, http.StatusBadRequest, "Unknown category")
		return
	}

	t := domain.Transaction{
		ID:          uuid.New().String(),
		UserID:      user.ID,
		Date:        date,
		Description: req.Description,
		Amount:      *req.Amount,
		Category:    category,
		Type:        txType,
		Source:      domain.SourceManual,
		CreatedAt:   time.Now(),
	}

	if err := h.store.Insert(ctx, t); err != nil {
		h.log.Error().Err(err).Msg("Failed to insert transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, t)
}

// List handles GET /api/transactions
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)

	filter, err := filterFromQuery(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	transactions, err := h.store.List(ctx, user.ID, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list transactions")
		return
	}

	if transactions == nil {
		transactions = []domain.Transaction{}
	}
	middleware.WriteJSON(w, http.StatusOK, transactions)
}

// Get handles GET /api/transactions/{id}
func (h *TransactionsHandler) Get(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)

	t, err := h.store.Get(ctx, user.ID, id)
	if err != nil {
		if errors.Is(err, rowstore.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Transaction not found")
			return
		}
		h.log.Error().Err(err).Str("transaction_id", id).Msg("Failed to get transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, t)
}

// Update handles PUT /api/transactions/{id}
func (h *TransactionsHandler) Update(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)

	var raw map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updates, err := validateUpdates(raw)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(updates) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "No updatable fields provided")
		return
	}

	if err := h.store.UpdateFields(ctx, user.ID, id, updates); err != nil {
		if errors.Is(err, rowstore.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Transaction not found")
			return
		}
		h.log.Error().Err(err).Str("transaction_id", id).Msg("Failed to update transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to update transaction")
		return
	}

	t, err := h.store.Get(ctx, user.ID, id)
	if err != nil {
		h.log.Error().Err(err).Str("transaction_id", id).Msg("Failed to reload transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to update transaction")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, t)
}

// Delete handles DELETE /api/transactions/{id}
func (h *TransactionsHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)

	if err := h.store.Delete(ctx, user.ID, id); err != nil {
		if errors.Is(err, rowstore.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Transaction not found")
			return
		}
		h.log.Error().Err(err).Str("transaction_id", id).Msg("Failed to delete transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to delete transaction")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Categorize handles POST /api/transactions/categorize
func (h *TransactionsHandler) Categorize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)

	var req struct {
		TransactionIDs []string `json:"transaction_ids"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	result, err := h.categorizer.CategorizeBatch(ctx, user.ID, req.TransactionIDs)
	if err != nil {
		h.log.Error().Err(err).Msg("Batch categorization failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to categorize transactions")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, result)
}

// SuggestCategory handles POST /api/transactions/suggest-category
func (h *TransactionsHandler) SuggestCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Description string   `json:"description"`
		Amount      *float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Description == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Description is required")
		return
	}
	var amount float64
	if req.Amount != nil {
		amount = *req.Amount
	}

	middleware.WriteJSON(w, http.StatusOK, h.categorizer.SuggestCategory(ctx, req.Description, amount))
}

func filterFromQuery(r *http.Request) (rowstore.TransactionFilter, error) {
	query := r.URL.Query()
	var filter rowstore.TransactionFilter

	if v := query.Get("start_date"); v != "" {
		d, err := civil.ParseDate(v)
		if err != nil {
			return filter, errors.New("Invalid start_date format")
		}
		filter.StartDate = &d
	}
	if v := query.Get("end_date"); v != "" {
		d, err := civil.ParseDate(v)
		if err != nil {
			return filter, errors.New("Invalid end_date format")
		}
		filter.EndDate = &d
	}
	if v := query.Get("category"); v != "" {
		filter.Category = v
	}
	if v := query.Get("type"); v != "" {
		if !domain.TransactionType(v).Valid() {
			return filter, errors.New("Invalid type filter")
		}
		filter.Type = v
	}
	if v := query.Get("min_amount"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filter, errors.New("Invalid min_amount")
		}
		filter.MinAmount = &f
	}
	if v := query.Get("max_amount"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filter, errors.New("Invalid max_amount")
		}
		filter.MaxAmount = &f
	}

	filter.OrderBy = "date"
	filter.Desc = true
	return filter, nil
}

func validateUpdates(raw map[string]interface{}) (map[string]interface{}, error) {
	updates := make(map[string]interface{})
	for key, value := range raw {
		switch key {
		case "date":
			s, ok := value.(string)
			if !ok {
				return nil, errors.New("date must be a string")
			}
			d, err := civil.ParseDate(s)
			if err != nil {
				return nil, errors.New("Invalid date format, expected YYYY-MM-DD")
			}
			updates["date"] = d
		case "description":
			s, ok := value.(string)
			if !ok || s == "" {
				return nil, errors.New("description must be a non-empty string")
			}
			updates["description"] = s
		case "amount":
			f, ok := value.(float64)
			if !ok || f < 0 {
				return nil, errors.New("amount must be a non-negative number")
			}
			updates["amount"] = f
		case "category":
			s, ok := value.(string)
			if !ok || !taxonomy.ValidCategory(s) {
				return nil, errors.New("Unknown category")
			}
			updates["category"] = s
		case "type":
			s, ok := value.(string)
			if !ok || !domain.TransactionType(s).Valid() {
				return nil, errors.New("type must be income or expense")
			}
			updates["type"] = s
		default:
			// Unknown fields are ignored rather than rejected.
		}
	}
	return updates, nil
}
