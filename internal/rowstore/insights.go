package rowstore

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/MarcuxOng/finsight/internal/domain"
)

// InsightStore persists and lists generated insight narratives. Rows are
// write-once; there is no update or delete path.
type InsightStore interface {
	Insert(ctx context.Context, in domain.Insight) error
	ListRecent(ctx context.Context, userID string, limit int) ([]domain.Insight, error)
}

// InsightRepo is the BigQuery implementation of InsightStore.
type InsightRepo struct {
	client    *bigquery.Client
	projectID string
	datasetID string
}

// NewInsightRepo creates an insight repository with its own BigQuery
// client.
func NewInsightRepo(ctx context.Context, projectID, datasetID string) (*InsightRepo, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewInsightRepo: bigquery client: %w", err)
	}
	return &InsightRepo{client: client, projectID: projectID, datasetID: datasetID}, nil
}

// Close closes the underlying BigQuery client.
func (r *InsightRepo) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

func (r *InsightRepo) table() string {
	return fmt.Sprintf("`%s.%s.%s`", r.projectID, r.datasetID, insightsTable)
}

// Insert writes one insight row. Insight rows are never read back in the
// same request, so the streaming inserter is fine here.
func (r *InsightRepo) Insert(ctx context.Context, in domain.Insight) error {
	row := &InsightRow{
		InsightID:   in.ID,
		UserID:      in.UserID,
		GeneratedAt: in.GeneratedAt,
		Summary:     in.Summary,
		Trend:       in.Trend,
		Advice:      in.Advice,
	}

	inserter := r.client.DatasetInProject(r.projectID, r.datasetID).Table(insightsTable).Inserter()
	if err := inserter.Put(ctx, []*InsightRow{row}); err != nil {
		return fmt.Errorf("Insert: inserting insight row: %w", err)
	}
	return nil
}

// ListRecent returns the user's most recent insights, newest first.
func (r *InsightRepo) ListRecent(ctx context.Context, userID string, limit int) ([]domain.Insight, error) {
	if limit <= 0 {
		limit = 10
	}

	q := r.client.Query(`
		SELECT
			insight_id,
			user_id,
			generated_at,
			summary,
			trend,
			advice
		FROM ` + r.table() + `
		WHERE user_id = @user_id
		ORDER BY generated_at DESC
		LIMIT @row_limit
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "row_limit", Value: int64(limit)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListRecent: query read: %w", err)
	}

	var out []domain.Insight
	for {
		var row InsightRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListRecent: iter next: %w", err)
		}
		out = append(out, row.toDomain())
	}
	return out, nil
}

var _ InsightStore = (*InsightRepo)(nil)
