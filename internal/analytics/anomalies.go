package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"cloud.google.com/go/civil"

	"github.com/MarcuxOng/finsight/internal/domain"
)

const (
	// lookbackDays is the trailing window inspected for anomalies.
	lookbackDays = 90
	// minSampleTotal is the minimum number of qualifying transactions
	// before anomaly detection is attempted at all.
	minSampleTotal = 10
	// minSamplePerCategory is the minimum per-category sample for a
	// meaningful mean and standard deviation.
	minSamplePerCategory = 5
	// zThreshold flags amounts more than this many standard deviations
	// above their category mean.
	zThreshold = 2.0
	// maxAnomalies caps the returned list.
	maxAnomalies = 10
)

// Anomaly is an expense whose amount deviates unusually from its category's
// recent mean.
type Anomaly struct {
	Transaction     domain.Transaction `json:"transaction"`
	ZScore          float64            `json:"z_score"`
	CategoryAverage float64            `json:"category_average"`
	Reason          string             `json:"reason"`
}

// DetectAnomalies flags expense transactions from the trailing 90 days whose
// z-score against their category exceeds 2. Categories with fewer than five
// transactions or zero variance are skipped; the result is sorted by z-score
// descending and capped to the top ten. Fewer than ten qualifying
// transactions overall yields nothing.
func DetectAnomalies(transactions []domain.Transaction, now time.Time) []Anomaly {
	cutoff := civil.DateOf(now.AddDate(0, 0, -lookbackDays))

	var recent []domain.Transaction
	for _, t := range transactions {
		if t.Type == domain.TypeExpense && !t.Date.Before(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) < minSampleTotal {
		return nil
	}

	groups := make(map[string][]domain.Transaction)
	var order []string
	for _, t := range recent {
		if _, ok := groups[t.Category]; !ok {
			order = append(order, t.Category)
		}
		groups[t.Category] = append(groups[t.Category], t)
	}

	var anomalies []Anomaly
	for _, category := range order {
		group := groups[category]
		if len(group) < minSamplePerCategory {
			continue
		}

		mean, std := meanStd(group)
		if std == 0 {
			continue
		}

		for _, t := range group {
			z := (t.Amount - mean) / std
			if z > zThreshold {
				anomalies = append(anomalies, Anomaly{
					Transaction:     t,
					ZScore:          roundFloat2(z),
					CategoryAverage: roundFloat2(mean),
					Reason:          fmt.Sprintf("Unusually high %s expense", category),
				})
			}
		}
	}

	sort.SliceStable(anomalies, func(i, j int) bool {
		return anomalies[i].ZScore > anomalies[j].ZScore
	})

	if len(anomalies) > maxAnomalies {
		anomalies = anomalies[:maxAnomalies]
	}
	return anomalies
}

// meanStd returns the mean and population standard deviation of the
// transaction amounts.
func meanStd(group []domain.Transaction) (float64, float64) {
	var sum float64
	for _, t := range group {
		sum += t.Amount
	}
	mean := sum / float64(len(group))

	var sq float64
	for _, t := range group {
		d := t.Amount - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(len(group)))
}

func roundFloat2(v float64) float64 {
	return math.Round(v*100) / 100
}
