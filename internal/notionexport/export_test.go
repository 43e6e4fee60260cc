package notionexport

import (
	"context"
	"testing"
	"time"

	"github.com/jomei/notionapi"
	"github.com/rs/zerolog"

	"github.com/MarcuxOng/finsight/internal/domain"
)

type fakeNotion struct {
	existing []notionapi.Page
	created  []notionapi.Properties
}

func (f *fakeNotion) CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
	f.created = append(f.created, properties)
	return &notionapi.Page{ID: notionapi.ObjectID("page-new")}, nil
}

func (f *fakeNotion) QueryDatabase(ctx context.Context, databaseID string, filter *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	return &notionapi.DatabaseQueryResponse{Results: f.existing, HasMore: false}, nil
}

func pageWithInsightID(id string) notionapi.Page {
	return notionapi.Page{
		ID: notionapi.ObjectID("page-" + id),
		Properties: notionapi.Properties{
			"Insight ID": &notionapi.TitleProperty{
				Title: []notionapi.RichText{{PlainText: id}},
			},
		},
	}
}

func sampleInsight(id string) domain.Insight {
	return domain.Insight{
		ID:          id,
		UserID:      "user-1",
		GeneratedAt: time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC),
		Summary:     "Steady month.",
		Trend:       []string{"a", "b", "c"},
		Advice:      []string{"x", "y", "z"},
	}
}

func TestExportCreatesMissingPages(t *testing.T) {
	fake := &fakeNotion{existing: []notionapi.Page{pageWithInsightID("in-1")}}
	insights := []domain.Insight{sampleInsight("in-1"), sampleInsight("in-2")}

	if err := Export(context.Background(), fake, "db-1", insights, false, zerolog.Nop()); err != nil {
		t.Fatalf("Export returned error: %v", err)
	}
	if len(fake.created) != 1 {
		t.Fatalf("created %d pages, want 1", len(fake.created))
	}

	props := fake.created[0]
	title, ok := props["Insight ID"].(notionapi.TitleProperty)
	if !ok || title.Title[0].Text.Content != "in-2" {
		t.Errorf("created page properties = %+v", props)
	}
}

func TestExportDryRunCreatesNothing(t *testing.T) {
	fake := &fakeNotion{}
	insights := []domain.Insight{sampleInsight("in-1")}

	if err := Export(context.Background(), fake, "db-1", insights, true, zerolog.Nop()); err != nil {
		t.Fatalf("Export returned error: %v", err)
	}
	if len(fake.created) != 0 {
		t.Errorf("dry run created %d pages", len(fake.created))
	}
}
