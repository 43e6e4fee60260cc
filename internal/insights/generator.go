// Package insights turns a user's transaction history into a model-written
// financial narrative, with a deterministic fallback when the model fails.
package insights

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MarcuxOng/finsight/internal/analytics"
	"github.com/MarcuxOng/finsight/internal/domain"
	"github.com/MarcuxOng/finsight/internal/llm"
	"github.com/MarcuxOng/finsight/internal/prompt"
	"github.com/MarcuxOng/finsight/internal/rowstore"
)

const trendMonths = 3

// Result is what a generation run returns to the caller. Fallback results
// carry no anomalies and are never persisted.
type Result struct {
	Summary         string              `json:"summary"`
	Insights        []string            `json:"insights"`
	Recommendations []string            `json:"recommendations"`
	GeneratedAt     time.Time           `json:"generated_at"`
	DataSummary     analytics.Summary   `json:"data_summary"`
	Anomalies       []analytics.Anomaly `json:"anomalies,omitempty"`
}

// Generator wires the analytics engine, the generative model and the
// insight store together.
type Generator struct {
	gen      llm.TextGenerator
	txs      rowstore.TransactionStore
	insights rowstore.InsightStore
	now      func() time.Time
	log      zerolog.Logger
}

func NewGenerator(gen llm.TextGenerator, txs rowstore.TransactionStore, insights rowstore.InsightStore, log zerolog.Logger) *Generator {
	return &Generator{gen: gen, txs: txs, insights: insights, now: time.Now, log: log}
}

// Generate builds a fresh narrative for the user. The period parameter is
// accepted for API compatibility but does not change what data is analyzed.
// A parsed narrative is persisted; a fallback one is not, so a later retry
// can still produce a real generation.
func (g *Generator) Generate(ctx context.Context, userID, period string) (Result, error) {
	_ = period

	transactions, err := g.txs.List(ctx, userID, rowstore.TransactionFilter{})
	if err != nil {
		return Result{}, fmt.Errorf("Generate: list transactions: %w", err)
	}

	now := g.now()
	summary := analytics.SpendingSummary(transactions, nil, nil, now)
	anomalies := analytics.DetectAnomalies(transactions, now)
	trends := analytics.CompareMonthlyTrends(transactions, trendMonths, now)

	narrative, err := g.generateNarrative(ctx, summary, trends, len(anomalies))
	if err != nil {
		g.log.Warn().Err(err).Str("user_id", userID).Msg("insight generation degraded to fallback")
		return fallbackResult(summary, now), nil
	}

	row := domain.Insight{
		ID:          uuid.New().String(),
		UserID:      userID,
		GeneratedAt: now,
		Summary:     narrative.Summary,
		Trend:       narrative.Insights,
		Advice:      narrative.Recommendations,
	}
	if err := g.insights.Insert(ctx, row); err != nil {
		return Result{}, fmt.Errorf("Generate: persist insight: %w", err)
	}

	top := anomalies
	if len(top) > 3 {
		top = top[:3]
	}
	return Result{
		Summary:         narrative.Summary,
		Insights:        narrative.Insights,
		Recommendations: narrative.Recommendations,
		GeneratedAt:     now,
		DataSummary:     summary,
		Anomalies:       top,
	}, nil
}

func (g *Generator) generateNarrative(ctx context.Context, summary analytics.Summary, trends analytics.MonthlyTrend, anomalyCount int) (Narrative, error) {
	dataContext := prompt.FormatDataContext(summary, trends, anomalyCount)
	raw, err := g.gen.GenerateText(ctx, prompt.BuildInsightsPrompt(dataContext))
	if err != nil {
		return Narrative{}, fmt.Errorf("generateNarrative: model call: %w", err)
	}
	narrative, err := parseNarrative(raw)
	if err != nil {
		return Narrative{}, fmt.Errorf("generateNarrative: %w", err)
	}
	return narrative, nil
}

func fallbackResult(summary analytics.Summary, now time.Time) Result {
	topInsight := "No spending data available"
	if len(summary.Categories) > 0 {
		top := summary.Categories[0]
		topInsight = fmt.Sprintf("Your top spending category is %s at $%.2f", top.Category, top.Total)
	}
	return Result{
		Summary: fmt.Sprintf("You spent $%.2f this period with a net of $%.2f.", summary.TotalExpense, summary.Net),
		Insights: []string{
			topInsight,
			"Track your expenses regularly to identify patterns",
			"Consider setting budget limits for each category",
		},
		Recommendations: []string{
			"Review your subscriptions and cancel unused ones",
			"Set up automatic savings transfers",
			"Create a monthly budget plan",
		},
		GeneratedAt: now,
		DataSummary: summary,
	}
}

// Entry is one narrative line with its generation timestamp, as listed to
// clients.
type Entry struct {
	Content     string    `json:"content"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Group is one past generation.
type Group struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Summary   string    `json:"summary"`
	Trends    []Entry   `json:"trends"`
	Advice    []Entry   `json:"advice"`
}

// List returns the user's most recent generations, newest first.
func (g *Generator) List(ctx context.Context, userID string, limit int) ([]Group, error) {
	rows, err := g.insights.ListRecent(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("List: query insights: %w", err)
	}

	groups := make([]Group, 0, len(rows))
	for _, row := range rows {
		group := Group{
			ID:        row.ID,
			Timestamp: row.GeneratedAt,
			Summary:   row.Summary,
			Trends:    make([]Entry, 0, len(row.Trend)),
			Advice:    make([]Entry, 0, len(row.Advice)),
		}
		for _, line := range row.Trend {
			group.Trends = append(group.Trends, Entry{Content: line, GeneratedAt: row.GeneratedAt})
		}
		for _, line := range row.Advice {
			group.Advice = append(group.Advice, Entry{Content: line, GeneratedAt: row.GeneratedAt})
		}
		groups = append(groups, group)
	}
	return groups, nil
}
