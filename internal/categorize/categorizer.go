// Package categorize assigns spending categories to transactions using a
// generative model, constrained to the fixed category taxonomy.
package categorize

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/MarcuxOng/finsight/internal/domain"
	"github.com/MarcuxOng/finsight/internal/llm"
	"github.com/MarcuxOng/finsight/internal/prompt"
	"github.com/MarcuxOng/finsight/internal/taxonomy"
)

// Store is the slice of transaction persistence the categorizer needs.
type Store interface {
	ListUncategorized(ctx context.Context, userID string) ([]domain.Transaction, error)
	ListByIDs(ctx context.Context, userID string, ids []string) ([]domain.Transaction, error)
	UpdateCategory(ctx context.Context, userID, id, category string) error
}

// BatchResult reports how a batch categorization run went.
type BatchResult struct {
	Total       int `json:"total"`
	Categorized int `json:"categorized"`
}

// Suggestion is a category proposal that is not persisted.
type Suggestion struct {
	Category     string   `json:"category"`
	Confidence   float64  `json:"confidence"`
	Alternatives []string `json:"alternatives"`
}

// Categorizer drives model-backed categorization against the store.
type Categorizer struct {
	gen   llm.TextGenerator
	store Store
	log   zerolog.Logger
}

func New(gen llm.TextGenerator, store Store, log zerolog.Logger) *Categorizer {
	return &Categorizer{gen: gen, store: store, log: log}
}

// CategorizeTransaction asks the model for a category and validates the
// answer against the taxonomy. It never fails: any model error or
// off-taxonomy answer yields the fallback category.
func (c *Categorizer) CategorizeTransaction(ctx context.Context, description string, amount float64) string {
	text, err := c.gen.GenerateText(ctx, prompt.BuildCategorizationPrompt(description, amount))
	if err != nil {
		c.log.Warn().Err(err).Str("description", description).Msg("categorization model call failed, using fallback")
		return taxonomy.Fallback
	}

	category := strings.TrimSpace(text)
	if !taxonomy.Contains(category) {
		c.log.Debug().Str("answer", category).Msg("model returned off-taxonomy category")
		return taxonomy.Fallback
	}
	return category
}

// CategorizeBatch categorizes either the given transaction ids or, when ids
// is empty, every uncategorized transaction of the user. Each row is
// attempted independently; a failed model call falls back rather than
// aborting the batch, but persistence errors do abort.
func (c *Categorizer) CategorizeBatch(ctx context.Context, userID string, ids []string) (BatchResult, error) {
	var (
		transactions []domain.Transaction
		err          error
	)
	if len(ids) > 0 {
		transactions, err = c.store.ListByIDs(ctx, userID, ids)
	} else {
		transactions, err = c.store.ListUncategorized(ctx, userID)
	}
	if err != nil {
		return BatchResult{}, fmt.Errorf("CategorizeBatch: list transactions: %w", err)
	}

	result := BatchResult{Total: len(transactions)}
	for _, t := range transactions {
		category := c.CategorizeTransaction(ctx, t.Description, t.Amount)
		if err := c.store.UpdateCategory(ctx, userID, t.ID, category); err != nil {
			return result, fmt.Errorf("CategorizeBatch: update transaction %s: %w", t.ID, err)
		}
		result.Categorized++
	}

	c.log.Info().
		Str("user_id", userID).
		Int("total", result.Total).
		Int("categorized", result.Categorized).
		Msg("batch categorization finished")
	return result, nil
}

// SuggestCategory returns a category proposal without touching the store.
func (c *Categorizer) SuggestCategory(ctx context.Context, description string, amount float64) Suggestion {
	return Suggestion{
		Category:     c.CategorizeTransaction(ctx, description, amount),
		Confidence:   0.85,
		Alternatives: []string{},
	}
}
