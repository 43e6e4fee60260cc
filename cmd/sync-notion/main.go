// Command sync-notion exports a user's persisted insights to a Notion
// database. Already-exported insights are skipped, so re-running is safe.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/MarcuxOng/finsight/internal/config"
	"github.com/MarcuxOng/finsight/internal/logger"
	"github.com/MarcuxOng/finsight/internal/notionexport"
	"github.com/MarcuxOng/finsight/internal/rowstore"
)

func main() {
	log := logger.New()

	cfg := config.Load()

	userID := flag.String("user", "", "User ID whose insights to export (required)")
	limit := flag.Int("limit", 50, "Maximum number of recent insights to export")
	notionToken := flag.String("notion-token", cfg.NotionToken, "Notion API token (or set NOTION_TOKEN env)")
	notionDBID := flag.String("notion-db-id", cfg.NotionDatabaseID, "Notion database ID (or set NOTION_DATABASE_ID env)")
	dryRun := flag.Bool("dry-run", false, "Dry run mode - preview changes without exporting")
	flag.Parse()

	if *userID == "" {
		log.Fatal().Msg("Error: --user is required")
	}
	if *notionToken == "" {
		log.Fatal().Msg("Error: --notion-token is required")
	}
	if *notionDBID == "" {
		log.Fatal().Msg("Error: --notion-db-id is required")
	}
	if cfg.ProjectID == "" {
		log.Fatal().Msg("Error: GCP_PROJECT is required")
	}

	// Bounded context so the CLI doesn't hang on a stuck API call.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	ctx = logger.WithContext(ctx, log)

	repo, err := rowstore.NewInsightRepo(ctx, cfg.ProjectID, cfg.Dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize insight repository")
	}
	defer repo.Close()

	insights, err := repo.ListRecent(ctx, *userID, *limit)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load insights")
	}

	notionClient := notionexport.NewNotionClient(*notionToken)

	if err := notionexport.Export(ctx, notionClient, *notionDBID, insights, *dryRun, log); err != nil {
		log.Fatal().Err(err).Msg("Export failed")
	}
}
