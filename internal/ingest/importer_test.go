package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/MarcuxOng/finsight/internal/domain"
)

type fixedCategorizer struct{ category string }

func (f fixedCategorizer) CategorizeTransaction(ctx context.Context, description string, amount float64) string {
	return f.category
}

type captureInserter struct {
	inserted []domain.Transaction
	err      error
}

func (c *captureInserter) Insert(ctx context.Context, t domain.Transaction) error {
	if c.err != nil {
		return c.err
	}
	c.inserted = append(c.inserted, t)
	return nil
}

func newTestImporter(store *captureInserter) *Importer {
	return New(fixedCategorizer{category: "Other"}, store, zerolog.Nop())
}

func TestImportValidFile(t *testing.T) {
	content := strings.Join([]string{
		"date,description,amount,type",
		"2024-01-15,Starbucks Coffee,4.50,expense",
		"2024-01-16,Salary Deposit,3000.00,income",
	}, "\n")

	store := &captureInserter{}
	result := newTestImporter(store).Import(context.Background(), "user-1", content)

	if result.Message != "CSV import completed" {
		t.Errorf("Message = %q", result.Message)
	}
	if result.TotalRows != 2 || result.SuccessfulImports != 2 || result.FailedImports != 0 {
		t.Errorf("result = %+v", result)
	}
	if len(store.inserted) != 2 {
		t.Fatalf("inserted %d rows", len(store.inserted))
	}

	first := store.inserted[0]
	if first.Description != "Starbucks Coffee" || first.Amount != 4.50 {
		t.Errorf("first row = %+v", first)
	}
	if first.Type != domain.TypeExpense {
		t.Errorf("first type = %q", first.Type)
	}
	if first.Source != domain.SourceCSVUpload {
		t.Errorf("source = %q", first.Source)
	}
	if first.Date.String() != "2024-01-15" {
		t.Errorf("date = %v", first.Date)
	}
	if first.Category != "Other" {
		t.Errorf("category = %q", first.Category)
	}
	if first.ID == "" || first.UserID != "user-1" {
		t.Errorf("identity fields = %q/%q", first.ID, first.UserID)
	}
	if first.CreatedAt.IsZero() {
		t.Error("CreatedAt not set on imported row")
	}
}

func TestImportTypeInferredFromSign(t *testing.T) {
	content := strings.Join([]string{
		"date,description,amount",
		"2024-01-15,Refund,-25.00",
		"2024-01-16,Gift,40.00",
	}, "\n")

	store := &captureInserter{}
	result := newTestImporter(store).Import(context.Background(), "user-1", content)
	if result.SuccessfulImports != 2 {
		t.Fatalf("result = %+v", result)
	}
	if store.inserted[0].Type != domain.TypeExpense || store.inserted[0].Amount != 25.00 {
		t.Errorf("negative row = %+v", store.inserted[0])
	}
	if store.inserted[1].Type != domain.TypeIncome {
		t.Errorf("positive row = %+v", store.inserted[1])
	}
}

func TestImportMissingColumns(t *testing.T) {
	content := "date,amount\n2024-01-15,4.50"
	result := newTestImporter(&captureInserter{}).Import(context.Background(), "user-1", content)

	if result.Message != "Invalid CSV format" {
		t.Errorf("Message = %q", result.Message)
	}
	if result.TotalRows != 0 || result.SuccessfulImports != 0 {
		t.Errorf("result = %+v", result)
	}
	if len(result.Errors) != 1 || result.Errors[0] != "Missing required columns: description" {
		t.Errorf("Errors = %v", result.Errors)
	}
}

func TestImportBadRowsDoNotAbort(t *testing.T) {
	content := strings.Join([]string{
		"date,description,amount,type",
		"not-a-date,Coffee,4.50,expense",
		"2024-01-16,Lunch,abc,expense",
		"2024-01-17,Taxi,12.30,teleport",
		"2024-01-18,Dinner,30.00,expense",
	}, "\n")

	store := &captureInserter{}
	result := newTestImporter(store).Import(context.Background(), "user-1", content)

	if result.TotalRows != 4 || result.SuccessfulImports != 1 || result.FailedImports != 3 {
		t.Fatalf("result = %+v", result)
	}
	if len(result.Errors) != 3 {
		t.Fatalf("Errors = %v", result.Errors)
	}
	if !strings.HasPrefix(result.Errors[0], "Row 2:") {
		t.Errorf("first error = %q", result.Errors[0])
	}
	if !strings.HasPrefix(result.Errors[2], "Row 4:") {
		t.Errorf("third error = %q", result.Errors[2])
	}
	if store.inserted[0].Description != "Dinner" {
		t.Errorf("surviving row = %+v", store.inserted[0])
	}
}

func TestImportErrorListCapped(t *testing.T) {
	lines := []string{"date,description,amount"}
	for i := 0; i < 15; i++ {
		lines = append(lines, fmt.Sprintf("bad-date,Row %d,1.00", i))
	}
	result := newTestImporter(&captureInserter{}).Import(context.Background(), "user-1", strings.Join(lines, "\n"))

	if result.FailedImports != 15 {
		t.Errorf("FailedImports = %d", result.FailedImports)
	}
	if len(result.Errors) != 10 {
		t.Errorf("reported %d errors, want 10", len(result.Errors))
	}
}

func TestImportInsertFailureCountsAsRowError(t *testing.T) {
	content := "date,description,amount\n2024-01-15,Coffee,4.50"
	store := &captureInserter{err: errors.New("table unavailable")}
	result := newTestImporter(store).Import(context.Background(), "user-1", content)

	if result.FailedImports != 1 || result.SuccessfulImports != 0 {
		t.Errorf("result = %+v", result)
	}
	if !strings.Contains(result.Errors[0], "insert") {
		t.Errorf("error = %q", result.Errors[0])
	}
}

func TestImportEmptyFile(t *testing.T) {
	result := newTestImporter(&captureInserter{}).Import(context.Background(), "user-1", "")
	if result.Message != "Failed to parse CSV" {
		t.Errorf("Message = %q", result.Message)
	}
}

func TestImportAlternateDateLayouts(t *testing.T) {
	content := strings.Join([]string{
		"date,description,amount,type",
		"2024/01/15,A,1.00,expense",
		"01/20/2024,B,2.00,expense",
		`"Jan 3, 2024",C,3.00,expense`,
	}, "\n")

	store := &captureInserter{}
	result := newTestImporter(store).Import(context.Background(), "user-1", content)
	if result.SuccessfulImports != 3 {
		t.Fatalf("result = %+v", result)
	}
	if store.inserted[1].Date.String() != "2024-01-20" {
		t.Errorf("US layout date = %v", store.inserted[1].Date)
	}
	if store.inserted[2].Date.String() != "2024-01-03" {
		t.Errorf("textual layout date = %v", store.inserted[2].Date)
	}
}

func TestTemplate(t *testing.T) {
	tpl := Template()
	if !strings.HasPrefix(tpl, "date,description,amount,type\n") {
		t.Errorf("template header = %q", strings.SplitN(tpl, "\n", 2)[0])
	}
	if !strings.Contains(tpl, "Starbucks Coffee") {
		t.Error("template missing example rows")
	}
}
