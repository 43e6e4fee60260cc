package notionexport

import (
	"context"
	"fmt"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/rs/zerolog"

	"github.com/MarcuxOng/finsight/internal/domain"
)

// Export creates one Notion page per insight that is not already in the
// database. The "Insight ID" title property is the idempotency key, so the
// sync can be re-run safely. Per-page failures are logged and skipped.
func Export(ctx context.Context, svc NotionService, databaseID string, insights []domain.Insight, dryRun bool, log zerolog.Logger) error {
	log.Info().
		Int("insight_count", len(insights)).
		Bool("dry_run", dryRun).
		Msg("starting insight export to Notion")

	pages, err := queryAllPages(ctx, svc, databaseID)
	if err != nil {
		return fmt.Errorf("Export: query existing pages: %w", err)
	}

	existing := make(map[string]bool, len(pages))
	for _, page := range pages {
		if id := extractInsightID(page); id != "" {
			existing[id] = true
		}
	}

	var created, skipped int
	for _, in := range insights {
		if existing[in.ID] {
			skipped++
			continue
		}

		if dryRun {
			log.Info().Str("insight_id", in.ID).Msg("[DRY RUN] would create Notion page")
			created++
			continue
		}

		page, err := svc.CreatePage(ctx, databaseID, insightToProperties(in))
		if err != nil {
			log.Warn().Err(err).Str("insight_id", in.ID).Msg("failed to create Notion page")
			continue
		}
		log.Info().Str("insight_id", in.ID).Str("page_id", string(page.ID)).Msg("created Notion page")
		created++
	}

	log.Info().
		Int("created", created).
		Int("skipped", skipped).
		Int("total", len(insights)).
		Msg("insight export completed")
	return nil
}

func insightToProperties(in domain.Insight) notionapi.Properties {
	date := notionapi.Date(in.GeneratedAt)

	return notionapi.Properties{
		"Insight ID": notionapi.TitleProperty{
			Title: richText(in.ID),
		},
		"Generated At": notionapi.DateProperty{
			Date: &notionapi.DateObject{Start: &date},
		},
		"Summary": notionapi.RichTextProperty{
			RichText: richText(in.Summary),
		},
		"Insights": notionapi.RichTextProperty{
			RichText: richText(strings.Join(in.Trend, "\n")),
		},
		"Recommendations": notionapi.RichTextProperty{
			RichText: richText(strings.Join(in.Advice, "\n")),
		},
	}
}

func richText(content string) []notionapi.RichText {
	return []notionapi.RichText{
		{
			Type: notionapi.ObjectTypeText,
			Text: &notionapi.Text{Content: content},
		},
	}
}

func queryAllPages(ctx context.Context, svc NotionService, databaseID string) ([]notionapi.Page, error) {
	var allPages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{PageSize: 100}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := svc.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryAllPages: %w", err)
		}

		allPages = append(allPages, resp.Results...)
		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}
	return allPages, nil
}

func extractInsightID(page notionapi.Page) string {
	if prop, ok := page.Properties["Insight ID"]; ok {
		if title, ok := prop.(*notionapi.TitleProperty); ok {
			if len(title.Title) > 0 {
				return title.Title[0].PlainText
			}
		}
	}
	return ""
}
