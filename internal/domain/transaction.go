package domain

import (
	"time"

	"cloud.google.com/go/civil"
)

// TransactionType tells whether money came in or went out. The amount is
// always stored as a positive magnitude; direction lives here, never in the
// numeric sign.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// Valid reports whether t is one of the two known transaction types.
func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// TransactionSource records how a transaction entered the system.
type TransactionSource string

const (
	SourceManual    TransactionSource = "manual"
	SourceCSVUpload TransactionSource = "csv_upload"
)

// Transaction represents one financial event belonging to a single user.
// Every query that touches transactions is scoped by UserID.
type Transaction struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user_id"`
	Date        civil.Date        `json:"date"`
	Description string            `json:"description"`
	Amount      float64           `json:"amount"`
	Category    string            `json:"category"`
	Type        TransactionType   `json:"type"`
	Source      TransactionSource `json:"source"`
	CreatedAt   time.Time         `json:"created_at"`
}
