package analytics

import (
	"testing"

	"cloud.google.com/go/civil"

	"github.com/MarcuxOng/finsight/internal/domain"
)

// recentTx builds an expense dated a few days before testNow so it always
// falls inside the 90-day lookback.
func recentTx(id string, amount float64, category string) domain.Transaction {
	return domain.Transaction{
		ID:       id,
		Date:     civil.DateOf(testNow.AddDate(0, 0, -7)),
		Amount:   amount,
		Type:     domain.TypeExpense,
		Category: category,
	}
}

func fillCategory(category string, amounts ...float64) []domain.Transaction {
	var out []domain.Transaction
	for i, a := range amounts {
		out = append(out, recentTx(category+string(rune('a'+i)), a, category))
	}
	return out
}

func TestDetectAnomalies_InsufficientTotalSample(t *testing.T) {
	// 9 qualifying transactions, one wildly out of line: still nothing.
	txns := fillCategory("Food & Dining", 10, 10, 10, 10, 10, 10, 10, 10, 500)
	if got := DetectAnomalies(txns, testNow); len(got) != 0 {
		t.Errorf("expected no anomalies with fewer than 10 transactions, got %d", len(got))
	}
}

func TestDetectAnomalies_SmallCategoryNeverFlags(t *testing.T) {
	// The outlier's category has only 4 transactions; filler pushes the
	// overall count past 10.
	txns := fillCategory("Travel", 10, 10, 10, 900)
	txns = append(txns, fillCategory("Groceries", 20, 20, 20, 20, 20, 20, 20)...)

	for _, a := range DetectAnomalies(txns, testNow) {
		if a.Transaction.Category == "Travel" {
			t.Errorf("category with 4 transactions produced anomaly: %+v", a)
		}
	}
}

func TestDetectAnomalies_ZeroVariance(t *testing.T) {
	txns := fillCategory("Subscriptions", 15.99, 15.99, 15.99, 15.99, 15.99, 15.99, 15.99, 15.99, 15.99, 15.99)
	if got := DetectAnomalies(txns, testNow); len(got) != 0 {
		t.Errorf("equal amounts must yield no anomalies, got %d", len(got))
	}
}

func TestDetectAnomalies_FlagsOutlier(t *testing.T) {
	txns := fillCategory("Food & Dining", 10, 11, 9, 10, 12, 10, 11, 9, 10, 200)

	got := DetectAnomalies(txns, testNow)
	if len(got) != 1 {
		t.Fatalf("expected exactly 1 anomaly, got %d", len(got))
	}
	a := got[0]
	if a.Transaction.Amount != 200 {
		t.Errorf("flagged wrong transaction: %+v", a.Transaction)
	}
	if a.ZScore <= 2 {
		t.Errorf("z-score = %v, want > 2", a.ZScore)
	}
	if a.Reason != "Unusually high Food & Dining expense" {
		t.Errorf("unexpected reason %q", a.Reason)
	}
}

func TestDetectAnomalies_IgnoresOldAndIncome(t *testing.T) {
	txns := fillCategory("Food & Dining", 10, 11, 9, 10, 12, 10, 11, 9, 10)

	// An old outlier outside the 90-day window.
	old := recentTx("old", 500, "Food & Dining")
	old.Date = civil.DateOf(testNow.AddDate(0, 0, -120))
	// A large income event, which is never anomalous.
	income := recentTx("salary", 5000, "Income")
	income.Type = domain.TypeIncome

	txns = append(txns, old, income,
		recentTx("x1", 10, "Food & Dining"),
		recentTx("x2", 11, "Food & Dining"))

	if got := DetectAnomalies(txns, testNow); len(got) != 0 {
		t.Errorf("expected no anomalies, got %+v", got)
	}
}

func TestDetectAnomalies_SortedAndCapped(t *testing.T) {
	var txns []domain.Transaction
	// 12 categories, each with a clear outlier of growing magnitude.
	categories := []string{"c1", "c2", "c3", "c4", "c5", "c6", "c7", "c8", "c9", "c10", "c11", "c12"}
	for i, cat := range categories {
		base := fillCategory(cat, 10, 11, 9, 10, 12, 10, 11, 9, 10)
		outlier := recentTx(cat+"-outlier", 100+float64(i)*50, cat)
		txns = append(txns, append(base, outlier)...)
	}

	got := DetectAnomalies(txns, testNow)
	if len(got) != 10 {
		t.Fatalf("expected cap of 10 anomalies, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].ZScore > got[i-1].ZScore {
			t.Errorf("anomalies not sorted by z-score: %v before %v", got[i-1].ZScore, got[i].ZScore)
		}
	}
}
