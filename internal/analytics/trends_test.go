package analytics

import (
	"testing"
	"time"

	"github.com/MarcuxOng/finsight/internal/domain"
)

func TestCompareMonthlyTrends_Buckets(t *testing.T) {
	now := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)
	transactions := []domain.Transaction{
		tx("2024-03-05", 100, domain.TypeExpense, "Food & Dining"),
		tx("2024-02-10", 50, domain.TypeExpense, "Food & Dining"),
		tx("2024-02-29", 30, domain.TypeExpense, "Transport"), // leap day
		tx("2024-01-20", 40, domain.TypeExpense, "Food & Dining"),
		tx("2024-03-01", 2000, domain.TypeIncome, "Income"),
	}

	got := CompareMonthlyTrends(transactions, 3, now)

	if len(got.MonthlyData) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(got.MonthlyData))
	}
	wantMonths := []string{"March 2024", "February 2024", "January 2024"}
	wantExpense := []float64{100, 80, 40}
	for i := range wantMonths {
		m := got.MonthlyData[i]
		if m.Month != wantMonths[i] {
			t.Errorf("bucket %d month = %q, want %q", i, m.Month, wantMonths[i])
		}
		if m.TotalExpense != wantExpense[i] {
			t.Errorf("bucket %d expense = %v, want %v", i, m.TotalExpense, wantExpense[i])
		}
	}
	if got.MonthlyData[0].TotalIncome != 2000 {
		t.Errorf("March income = %v, want 2000", got.MonthlyData[0].TotalIncome)
	}
}

func TestCompareMonthlyTrends_YearRollover(t *testing.T) {
	now := time.Date(2025, time.January, 10, 9, 0, 0, 0, time.UTC)
	transactions := []domain.Transaction{
		tx("2025-01-05", 100, domain.TypeExpense, "Food & Dining"),
		tx("2024-12-31", 80, domain.TypeExpense, "Food & Dining"),
		tx("2024-12-01", 20, domain.TypeExpense, "Transport"),
		tx("2024-11-15", 60, domain.TypeExpense, "Food & Dining"),
	}

	got := CompareMonthlyTrends(transactions, 3, now)

	wantMonths := []string{"January 2025", "December 2024", "November 2024"}
	for i, want := range wantMonths {
		if got.MonthlyData[i].Month != want {
			t.Errorf("bucket %d month = %q, want %q", i, got.MonthlyData[i].Month, want)
		}
	}
	if got.MonthlyData[1].TotalExpense != 100 {
		t.Errorf("December expense = %v, want 100 (both December days included)", got.MonthlyData[1].TotalExpense)
	}
}

func TestCompareMonthlyTrends_Deltas(t *testing.T) {
	now := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)
	transactions := []domain.Transaction{
		tx("2024-03-05", 150, domain.TypeExpense, "Food & Dining"),
		tx("2024-02-10", 100, domain.TypeExpense, "Food & Dining"),
		tx("2024-03-06", 900, domain.TypeIncome, "Income"),
		tx("2024-02-11", 1000, domain.TypeIncome, "Income"),
	}

	got := CompareMonthlyTrends(transactions, 2, now)
	if got.Trends == nil {
		t.Fatal("expected trend deltas with 2 buckets")
	}
	if got.Trends.ExpenseChangePercent != 50 {
		t.Errorf("expense change = %v, want 50", got.Trends.ExpenseChangePercent)
	}
	if got.Trends.ExpenseDirection != "increased" {
		t.Errorf("expense direction = %q, want increased", got.Trends.ExpenseDirection)
	}
	if got.Trends.IncomeChangePercent != -10 {
		t.Errorf("income change = %v, want -10", got.Trends.IncomeChangePercent)
	}
	if got.Trends.IncomeDirection != "decreased" {
		t.Errorf("income direction = %q, want decreased", got.Trends.IncomeDirection)
	}
}

func TestCompareMonthlyTrends_ZeroChangeCountsAsDecreased(t *testing.T) {
	now := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)
	transactions := []domain.Transaction{
		tx("2024-03-05", 100, domain.TypeExpense, "Food & Dining"),
		tx("2024-02-10", 100, domain.TypeExpense, "Food & Dining"),
	}

	got := CompareMonthlyTrends(transactions, 2, now)
	if got.Trends.ExpenseChangePercent != 0 {
		t.Fatalf("expense change = %v, want 0", got.Trends.ExpenseChangePercent)
	}
	if got.Trends.ExpenseDirection != "decreased" {
		t.Errorf("0%% change should label as decreased, got %q", got.Trends.ExpenseDirection)
	}
}

func TestCompareMonthlyTrends_ZeroPreviousMeansZeroChange(t *testing.T) {
	now := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)
	transactions := []domain.Transaction{
		tx("2024-03-05", 100, domain.TypeExpense, "Food & Dining"),
		// no February data at all
	}

	got := CompareMonthlyTrends(transactions, 2, now)
	if got.Trends.ExpenseChangePercent != 0 {
		t.Errorf("expense change with zero previous = %v, want 0", got.Trends.ExpenseChangePercent)
	}
}

func TestCompareMonthlyTrends_SingleBucketHasNoDelta(t *testing.T) {
	now := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)
	got := CompareMonthlyTrends(nil, 1, now)
	if got.Trends != nil {
		t.Errorf("expected no delta block with a single bucket, got %+v", got.Trends)
	}
}

func TestCompareMonthlyTrends_TopCategoriesCapped(t *testing.T) {
	now := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)
	categories := []string{"Food & Dining", "Transport", "Entertainment", "Shopping", "Groceries", "Travel", "Healthcare"}
	var transactions []domain.Transaction
	for i, cat := range categories {
		transactions = append(transactions, tx("2024-03-0"+string(rune('1'+i)), float64(10*(i+1)), domain.TypeExpense, cat))
	}

	got := CompareMonthlyTrends(transactions, 1, now)
	top := got.MonthlyData[0].TopCategories
	if len(top) != 5 {
		t.Fatalf("expected top 5 categories, got %d", len(top))
	}
	if top[0].Category != "Healthcare" {
		t.Errorf("largest category first, got %q", top[0].Category)
	}
}
