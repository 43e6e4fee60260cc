package rowstore

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/MarcuxOng/finsight/internal/domain"
	"github.com/MarcuxOng/finsight/internal/taxonomy"
)

// TransactionStore is the interface handlers and services program against.
type TransactionStore interface {
	Insert(ctx context.Context, t domain.Transaction) error
	List(ctx context.Context, userID string, f TransactionFilter) ([]domain.Transaction, error)
	Get(ctx context.Context, userID, id string) (domain.Transaction, error)
	UpdateFields(ctx context.Context, userID, id string, updates map[string]interface{}) error
	UpdateCategory(ctx context.Context, userID, id, category string) error
	Delete(ctx context.Context, userID, id string) error
	ListUncategorized(ctx context.Context, userID string) ([]domain.Transaction, error)
	ListByIDs(ctx context.Context, userID string, ids []string) ([]domain.Transaction, error)
}

// TransactionRepo is the BigQuery implementation of TransactionStore. It
// holds a shared client; Close releases it.
type TransactionRepo struct {
	client    *bigquery.Client
	projectID string
	datasetID string
}

// NewTransactionRepo creates a transaction repository with its own BigQuery
// client.
func NewTransactionRepo(ctx context.Context, projectID, datasetID string) (*TransactionRepo, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewTransactionRepo: bigquery client: %w", err)
	}
	return &TransactionRepo{client: client, projectID: projectID, datasetID: datasetID}, nil
}

// Close closes the underlying BigQuery client.
func (r *TransactionRepo) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

func (r *TransactionRepo) table(name string) string {
	return fmt.Sprintf("`%s.%s.%s`", r.projectID, r.datasetID, name)
}

// Insert writes one transaction. DML is used rather than the streaming
// inserter so a freshly created row is immediately visible to update and
// delete statements.
func (r *TransactionRepo) Insert(ctx context.Context, t domain.Transaction) error {
	row := transactionRowFromDomain(t)

	q := r.client.Query(`
		INSERT INTO ` + r.table(transactionsTable) + `
			(transaction_id, user_id, transaction_date, description, amount, category, transaction_type, source, created_ts)
		VALUES
			(@transaction_id, @user_id, @transaction_date, @description, @amount, @category, @transaction_type, @source, @created_ts)
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "transaction_id", Value: row.TransactionID},
		{Name: "user_id", Value: row.UserID},
		{Name: "transaction_date", Value: row.TransactionDate},
		{Name: "description", Value: row.Description},
		{Name: "amount", Value: row.Amount},
		{Name: "category", Value: row.Category},
		{Name: "transaction_type", Value: row.TxType},
		{Name: "source", Value: row.Source},
		{Name: "created_ts", Value: row.CreatedTS},
	}

	if _, err := r.runDML(ctx, q); err != nil {
		return fmt.Errorf("Insert: %w", err)
	}
	return nil
}

// List returns the user's transactions matching the filter.
func (r *TransactionRepo) List(ctx context.Context, userID string, f TransactionFilter) ([]domain.Transaction, error) {
	where, suffix, params, err := f.clauses(userID)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}

	q := r.client.Query(strings.Join([]string{`
		SELECT
			transaction_id,
			user_id,
			transaction_date,
			description,
			amount,
			category,
			transaction_type,
			source,
			created_ts
		FROM ` + r.table(transactionsTable),
		where,
		suffix,
	}, "\n"))
	q.Parameters = params

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("List: query read: %w", err)
	}

	var out []domain.Transaction
	for {
		var row TransactionRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("List: iter next: %w", err)
		}
		out = append(out, row.toDomain())
	}
	return out, nil
}

// Get returns one transaction by id, scoped to the user. A foreign-owned
// row reports ErrNotFound exactly like a missing one.
func (r *TransactionRepo) Get(ctx context.Context, userID, id string) (domain.Transaction, error) {
	rows, err := r.List(ctx, userID, TransactionFilter{IDs: []string{id}, Limit: 1})
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("Get: %w", err)
	}
	if len(rows) == 0 {
		return domain.Transaction{}, ErrNotFound
	}
	return rows[0], nil
}

// updateColumns whitelists the mutable columns for UpdateFields, keyed by
// their external field names.
var updateColumns = map[string]string{
	"date":        "transaction_date",
	"description": "description",
	"amount":      "amount",
	"category":    "category",
	"type":        "transaction_type",
}

// UpdateFields applies a partial update to one transaction. updates is
// keyed by external field name; unknown fields are rejected. Returns
// ErrNotFound when no row matched.
func (r *TransactionRepo) UpdateFields(ctx context.Context, userID, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}

	var sets []string
	params := []bigquery.QueryParameter{
		{Name: "transaction_id", Value: id},
		{Name: "user_id", Value: userID},
	}
	for field, value := range updates {
		col, ok := updateColumns[field]
		if !ok {
			return fmt.Errorf("UpdateFields: unknown field %q", field)
		}
		if field == "amount" {
			if f, ok := value.(float64); ok {
				value = ratFromFloat(f)
			}
		}
		param := "set_" + col
		sets = append(sets, fmt.Sprintf("%s = @%s", col, param))
		params = append(params, bigquery.QueryParameter{Name: param, Value: value})
	}

	q := r.client.Query(`
		UPDATE ` + r.table(transactionsTable) + `
		SET ` + strings.Join(sets, ", ") + `
		WHERE transaction_id = @transaction_id
		  AND user_id = @user_id
	`)
	q.Parameters = params

	affected, err := r.runDML(ctx, q)
	if err != nil {
		return fmt.Errorf("UpdateFields: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateCategory sets the category on one transaction.
func (r *TransactionRepo) UpdateCategory(ctx context.Context, userID, id, category string) error {
	return r.UpdateFields(ctx, userID, id, map[string]interface{}{"category": category})
}

// Delete removes one transaction, scoped to the user. Returns ErrNotFound
// when no row matched.
func (r *TransactionRepo) Delete(ctx context.Context, userID, id string) error {
	q := r.client.Query(`
		DELETE FROM ` + r.table(transactionsTable) + `
		WHERE transaction_id = @transaction_id
		  AND user_id = @user_id
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "transaction_id", Value: id},
		{Name: "user_id", Value: userID},
	}

	affected, err := r.runDML(ctx, q)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListUncategorized returns the user's transactions still carrying the
// Uncategorized placeholder.
func (r *TransactionRepo) ListUncategorized(ctx context.Context, userID string) ([]domain.Transaction, error) {
	return r.List(ctx, userID, TransactionFilter{Category: taxonomy.Uncategorized})
}

// ListByIDs returns the user's transactions among the given ids. Ids owned
// by other users are silently absent from the result.
func (r *TransactionRepo) ListByIDs(ctx context.Context, userID string, ids []string) ([]domain.Transaction, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.List(ctx, userID, TransactionFilter{IDs: ids})
}

// runDML runs a DML statement to completion and returns the number of
// affected rows.
func (r *TransactionRepo) runDML(ctx context.Context, q *bigquery.Query) (int64, error) {
	job, err := q.Run(ctx)
	if err != nil {
		return 0, fmt.Errorf("run query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return 0, fmt.Errorf("wait for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return 0, fmt.Errorf("job error: %w", err)
	}

	if stats, ok := status.Statistics.Details.(*bigquery.QueryStatistics); ok {
		return stats.NumDMLAffectedRows, nil
	}
	return 0, nil
}

var _ TransactionStore = (*TransactionRepo)(nil)
