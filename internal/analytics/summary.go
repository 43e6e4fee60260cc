// Package analytics is the pure aggregation engine: spending summaries,
// z-score anomaly detection and month-over-month trend comparison over an
// in-memory transaction set. It performs no I/O; callers fetch rows and
// pass them in.
package analytics

import (
	"sort"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/MarcuxOng/finsight/internal/domain"
)

// CategoryBreakdown is one category's share of total expense in a period.
type CategoryBreakdown struct {
	Category   string  `json:"category"`
	Total      float64 `json:"total"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Period is the date range a summary actually covers, inclusive.
type Period struct {
	Start civil.Date `json:"start"`
	End   civil.Date `json:"end"`
}

// Summary is the derived spending summary for a transaction set.
type Summary struct {
	TotalIncome  float64             `json:"total_income"`
	TotalExpense float64             `json:"total_expense"`
	Net          float64             `json:"net"`
	Categories   []CategoryBreakdown `json:"categories"`
	Period       Period              `json:"period"`
}

// SpendingSummary aggregates transactions into income/expense totals and a
// per-category expense breakdown. When start or end is nil the set is not
// filtered on that side and the reported period is derived from the dates
// actually present (falling back to today for an empty set). Accumulation
// is exact; rounding to two decimals happens only on the way out.
func SpendingSummary(transactions []domain.Transaction, start, end *civil.Date, now time.Time) Summary {
	filtered := filterByDate(transactions, start, end)

	income := decimal.Zero
	expense := decimal.Zero

	type catAgg struct {
		total decimal.Decimal
		count int
	}
	totals := make(map[string]*catAgg)
	var order []string // categories in encounter order, for stable ties

	for _, t := range filtered {
		amount := decimal.NewFromFloat(t.Amount)
		switch t.Type {
		case domain.TypeIncome:
			income = income.Add(amount)
		case domain.TypeExpense:
			expense = expense.Add(amount)
			agg, ok := totals[t.Category]
			if !ok {
				agg = &catAgg{}
				totals[t.Category] = agg
				order = append(order, t.Category)
			}
			agg.total = agg.total.Add(amount)
			agg.count++
		}
	}

	hundred := decimal.NewFromInt(100)
	categories := make([]CategoryBreakdown, 0, len(order))
	for _, cat := range order {
		agg := totals[cat]
		pct := decimal.Zero
		if expense.IsPositive() {
			pct = agg.total.Div(expense).Mul(hundred)
		}
		categories = append(categories, CategoryBreakdown{
			Category:   cat,
			Total:      round2(agg.total),
			Count:      agg.count,
			Percentage: round2(pct),
		})
	}

	// Sort by total descending; encounter order breaks ties.
	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].Total > categories[j].Total
	})

	return Summary{
		TotalIncome:  round2(income),
		TotalExpense: round2(expense),
		Net:          round2(income.Sub(expense)),
		Categories:   categories,
		Period:       reportedPeriod(filtered, start, end, now),
	}
}

func filterByDate(transactions []domain.Transaction, start, end *civil.Date) []domain.Transaction {
	if start == nil && end == nil {
		return transactions
	}
	var out []domain.Transaction
	for _, t := range transactions {
		if start != nil && t.Date.Before(*start) {
			continue
		}
		if end != nil && t.Date.After(*end) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// reportedPeriod echoes explicit bounds and derives missing ones from the
// min/max dates present in the filtered set. An empty set reports today.
func reportedPeriod(filtered []domain.Transaction, start, end *civil.Date, now time.Time) Period {
	today := civil.DateOf(now)
	if len(filtered) == 0 {
		p := Period{Start: today, End: today}
		if start != nil {
			p.Start = *start
		}
		if end != nil {
			p.End = *end
		}
		return p
	}

	min, max := filtered[0].Date, filtered[0].Date
	for _, t := range filtered[1:] {
		if t.Date.Before(min) {
			min = t.Date
		}
		if t.Date.After(max) {
			max = t.Date
		}
	}

	p := Period{Start: min, End: max}
	if start != nil {
		p.Start = *start
	}
	if end != nil {
		p.End = *end
	}
	return p
}

func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
