// Package ingest imports transactions from uploaded CSV files. Each row is
// handled independently: a bad row is recorded and skipped, never aborting
// the rest of the file.
package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MarcuxOng/finsight/internal/domain"
)

const maxReportedErrors = 10

// Accepted date layouts, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02-01-2006",
	"Jan 2, 2006",
}

// Categorizer assigns a category to a row before insertion.
type Categorizer interface {
	CategorizeTransaction(ctx context.Context, description string, amount float64) string
}

// Inserter persists one imported transaction.
type Inserter interface {
	Insert(ctx context.Context, t domain.Transaction) error
}

// Result is the outcome of one CSV import run.
type Result struct {
	Message           string   `json:"message"`
	TotalRows         int      `json:"total_rows"`
	SuccessfulImports int      `json:"successful_imports"`
	FailedImports     int      `json:"failed_imports"`
	Errors            []string `json:"errors"`
}

// Importer parses CSV content and writes transactions for one user.
type Importer struct {
	categorizer Categorizer
	store       Inserter
	log         zerolog.Logger
}

func New(categorizer Categorizer, store Inserter, log zerolog.Logger) *Importer {
	return &Importer{categorizer: categorizer, store: store, log: log}
}

// Import parses content and inserts one transaction per usable row.
// The header must contain date, description and amount columns; type is
// optional and inferred from the amount's sign when absent.
func (im *Importer) Import(ctx context.Context, userID, content string) Result {
	reader := csv.NewReader(strings.NewReader(content))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return Result{Message: "Failed to parse CSV", Errors: []string{err.Error()}}
	}
	if len(records) == 0 {
		return Result{Message: "Failed to parse CSV", Errors: []string{"file is empty"}}
	}

	columns := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	var missing []string
	for _, required := range []string{"date", "description", "amount"} {
		if _, ok := columns[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return Result{
			Message: "Invalid CSV format",
			Errors:  []string{fmt.Sprintf("Missing required columns: %s", strings.Join(missing, ", "))},
		}
	}

	rows := records[1:]
	result := Result{Message: "CSV import completed", TotalRows: len(rows), Errors: []string{}}

	for i, record := range rows {
		// Rows are reported with their spreadsheet line number: data
		// starts on line 2.
		line := i + 2
		if err := im.importRow(ctx, userID, columns, record); err != nil {
			result.FailedImports++
			if len(result.Errors) < maxReportedErrors {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", line, err))
			}
			continue
		}
		result.SuccessfulImports++
	}

	im.log.Info().
		Str("user_id", userID).
		Int("total", result.TotalRows).
		Int("imported", result.SuccessfulImports).
		Int("failed", result.FailedImports).
		Msg("csv import finished")
	return result
}

func (im *Importer) importRow(ctx context.Context, userID string, columns map[string]int, record []string) error {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	date, err := parseDate(field("date"))
	if err != nil {
		return err
	}

	description := field("description")
	if description == "" {
		return fmt.Errorf("empty description")
	}

	raw, err := strconv.ParseFloat(field("amount"), 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q", field("amount"))
	}

	txType := domain.TransactionType(strings.ToLower(field("type")))
	if txType == "" {
		if raw < 0 {
			txType = domain.TypeExpense
		} else {
			txType = domain.TypeIncome
		}
	}
	if !txType.Valid() {
		return fmt.Errorf("invalid type %q", field("type"))
	}

	amount := math.Abs(raw)
	category := im.categorizer.CategorizeTransaction(ctx, description, amount)

	t := domain.Transaction{
		ID:          uuid.New().String(),
		UserID:      userID,
		Date:        date,
		Description: description,
		Amount:      amount,
		Category:    category,
		Type:        txType,
		Source:      domain.SourceCSVUpload,
		CreatedAt:   time.Now(),
	}
	if err := im.store.Insert(ctx, t); err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	return nil
}

func parseDate(s string) (civil.Date, error) {
	if s == "" {
		return civil.Date{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return civil.DateOf(t), nil
		}
	}
	return civil.Date{}, fmt.Errorf("unrecognized date %q", s)
}

// Template is the downloadable CSV skeleton handed to clients.
func Template() string {
	return strings.Join([]string{
		"date,description,amount,type",
		"2024-01-15,Starbucks Coffee,4.50,expense",
		"2024-01-16,Salary Deposit,3000.00,income",
		"2024-01-17,Uber Ride,12.30,expense",
		"2024-01-18,Netflix Subscription,15.99,expense",
		"",
	}, "\n")
}
