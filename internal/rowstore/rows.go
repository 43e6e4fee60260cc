// Package rowstore is the BigQuery-backed row store for the transactions
// and insights tables. Access is declarative: equality and range filters,
// ordering and limits, always scoped by user id. No joins and no
// multi-statement transactions are relied upon.
package rowstore

import (
	"errors"
	"math/big"
	"time"

	"cloud.google.com/go/civil"

	"github.com/MarcuxOng/finsight/internal/domain"
)

// ErrNotFound is returned when a row does not exist for the requesting
// user. A row owned by another user is indistinguishable from a missing
// one.
var ErrNotFound = errors.New("rowstore: row not found")

const (
	transactionsTable = "transactions"
	insightsTable     = "insights"
)

// TransactionRow is the BigQuery schema for one transaction.
type TransactionRow struct {
	TransactionID   string     `bigquery:"transaction_id"` // REQUIRED
	UserID          string     `bigquery:"user_id"`        // REQUIRED
	TransactionDate civil.Date `bigquery:"transaction_date"`
	Description     string     `bigquery:"description"`
	Amount          *big.Rat   `bigquery:"amount"` // REQUIRED NUMERIC, positive magnitude
	Category        string     `bigquery:"category"`
	TxType          string     `bigquery:"transaction_type"` // income | expense
	Source          string     `bigquery:"source"`           // manual | csv_upload
	CreatedTS       time.Time  `bigquery:"created_ts"`
}

// InsightRow is the BigQuery schema for one persisted insight narrative.
type InsightRow struct {
	InsightID   string    `bigquery:"insight_id"` // REQUIRED
	UserID      string    `bigquery:"user_id"`    // REQUIRED
	GeneratedAt time.Time `bigquery:"generated_at"`
	Summary     string    `bigquery:"summary"`
	Trend       []string  `bigquery:"trend"`  // REPEATED
	Advice      []string  `bigquery:"advice"` // REPEATED
}

func (r *TransactionRow) toDomain() domain.Transaction {
	var amount float64
	if r.Amount != nil {
		amount, _ = r.Amount.Float64()
	}
	return domain.Transaction{
		ID:          r.TransactionID,
		UserID:      r.UserID,
		Date:        r.TransactionDate,
		Description: r.Description,
		Amount:      amount,
		Category:    r.Category,
		Type:        domain.TransactionType(r.TxType),
		Source:      domain.TransactionSource(r.Source),
		CreatedAt:   r.CreatedTS,
	}
}

func transactionRowFromDomain(t domain.Transaction) *TransactionRow {
	return &TransactionRow{
		TransactionID:   t.ID,
		UserID:          t.UserID,
		TransactionDate: t.Date,
		Description:     t.Description,
		Amount:          ratFromFloat(t.Amount),
		Category:        t.Category,
		TxType:          string(t.Type),
		Source:          string(t.Source),
		CreatedTS:       t.CreatedAt,
	}
}

func (r *InsightRow) toDomain() domain.Insight {
	return domain.Insight{
		ID:          r.InsightID,
		UserID:      r.UserID,
		GeneratedAt: r.GeneratedAt,
		Summary:     r.Summary,
		Trend:       r.Trend,
		Advice:      r.Advice,
	}
}

// ratFromFloat converts a float amount into the NUMERIC wire type. NaN and
// infinities become zero; validation upstream keeps them out anyway.
func ratFromFloat(v float64) *big.Rat {
	r := new(big.Rat).SetFloat64(v)
	if r == nil {
		return new(big.Rat)
	}
	return r
}
