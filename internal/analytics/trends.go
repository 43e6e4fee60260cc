package analytics

import (
	"time"

	"cloud.google.com/go/civil"

	"github.com/MarcuxOng/finsight/internal/domain"
)

const topCategoriesPerMonth = 5

// MonthSummary is one calendar month's totals plus its top expense
// categories.
type MonthSummary struct {
	Month         string              `json:"month"`
	TotalIncome   float64             `json:"total_income"`
	TotalExpense  float64             `json:"total_expense"`
	Net           float64             `json:"net"`
	TopCategories []CategoryBreakdown `json:"top_categories"`
}

// TrendDelta compares the most recent month to the one before it.
type TrendDelta struct {
	ExpenseChangePercent float64 `json:"expense_change_percent"`
	IncomeChangePercent  float64 `json:"income_change_percent"`
	ExpenseDirection     string  `json:"expense_direction"`
	IncomeDirection      string  `json:"income_direction"`
}

// MonthlyTrend is the ordered month-by-month comparison, newest first.
type MonthlyTrend struct {
	MonthlyData []MonthSummary `json:"monthly_data"`
	Trends      *TrendDelta    `json:"trends,omitempty"`
}

// CompareMonthlyTrends buckets transactions into the most recent `months`
// calendar months, walking backward from the month containing now. Buckets
// use true calendar boundaries (first through last day, with year rollover
// at January). The delta block is present only when at least two buckets
// exist.
func CompareMonthlyTrends(transactions []domain.Transaction, months int, now time.Time) MonthlyTrend {
	var monthly []MonthSummary

	for i := 0; i < months; i++ {
		// time.Date normalizes out-of-range months, so January minus
		// one lands on December of the prior year.
		first := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, now.Location())
		last := first.AddDate(0, 1, -1)

		start := civil.DateOf(first)
		end := civil.DateOf(last)
		summary := SpendingSummary(transactions, &start, &end, now)

		top := summary.Categories
		if len(top) > topCategoriesPerMonth {
			top = top[:topCategoriesPerMonth]
		}

		monthly = append(monthly, MonthSummary{
			Month:         first.Format("January 2006"),
			TotalIncome:   summary.TotalIncome,
			TotalExpense:  summary.TotalExpense,
			Net:           summary.Net,
			TopCategories: top,
		})
	}

	trend := MonthlyTrend{MonthlyData: monthly}
	if len(monthly) >= 2 {
		current, previous := monthly[0], monthly[1]
		trend.Trends = &TrendDelta{
			ExpenseChangePercent: percentChange(current.TotalExpense, previous.TotalExpense),
			IncomeChangePercent:  percentChange(current.TotalIncome, previous.TotalIncome),
		}
		trend.Trends.ExpenseDirection = direction(trend.Trends.ExpenseChangePercent)
		trend.Trends.IncomeDirection = direction(trend.Trends.IncomeChangePercent)
	}
	return trend
}

// percentChange is (current - previous) / previous * 100, and 0 when there
// is no previous value to compare against.
func percentChange(current, previous float64) float64 {
	if previous <= 0 {
		return 0
	}
	return roundFloat2((current - previous) / previous * 100)
}

// direction labels a percent change. Zero counts as "decreased".
func direction(change float64) string {
	if change > 0 {
		return "increased"
	}
	return "decreased"
}
