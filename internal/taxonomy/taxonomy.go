// Package taxonomy defines the fixed set of category labels used for both
// AI prompting and validation. Any string outside this set is invalid input
// to every downstream consumer.
package taxonomy

// Categories is the closed, ordered set of labels a transaction may carry.
var Categories = []string{
	"Food & Dining",
	"Transport",
	"Entertainment",
	"Shopping",
	"Bills & Utilities",
	"Healthcare",
	"Education",
	"Subscriptions",
	"Groceries",
	"Travel",
	"Personal Care",
	"Home & Garden",
	"Insurance",
	"Investments",
	"Income",
	"Other",
}

const (
	// Fallback is the universal catch-all used whenever classification
	// fails or produces a label outside the taxonomy.
	Fallback = "Other"

	// Uncategorized marks transactions that have not been classified yet.
	// It is not itself a taxonomy label.
	Uncategorized = "Uncategorized"
)

var categorySet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Categories))
	for _, c := range Categories {
		m[c] = struct{}{}
	}
	return m
}()

// Contains reports whether label is exactly one of the taxonomy categories.
// Matching is case-sensitive; callers trim whitespace before calling.
func Contains(label string) bool {
	_, ok := categorySet[label]
	return ok
}

// ValidCategory reports whether label may be stored on a transaction:
// either a taxonomy label or the Uncategorized placeholder.
func ValidCategory(label string) bool {
	return label == Uncategorized || Contains(label)
}
