// Command import-csv uploads a local CSV to GCS and runs the import
// pipeline against it, printing the per-row outcome. Useful for backfills
// without going through the HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/MarcuxOng/finsight/internal/categorize"
	"github.com/MarcuxOng/finsight/internal/config"
	"github.com/MarcuxOng/finsight/internal/gcs"
	"github.com/MarcuxOng/finsight/internal/ingest"
	"github.com/MarcuxOng/finsight/internal/llm"
	"github.com/MarcuxOng/finsight/internal/logger"
	"github.com/MarcuxOng/finsight/internal/rowstore"
)

func main() {
	log := logger.New()

	cfg := config.Load()

	var (
		userID   = flag.String("user", "", "User ID to import transactions for (required)")
		filePath = flag.String("file", "", "Path to local CSV file (required)")
		bucket   = flag.String("bucket", cfg.Bucket, "GCS bucket to archive the upload in (optional)")
	)
	flag.Parse()

	if *userID == "" || *filePath == "" {
		log.Fatal().Msg("Usage: import-csv -user USER_ID -file /path/to/transactions.csv [-bucket BUCKET]")
	}
	if cfg.ProjectID == "" {
		log.Fatal().Msg("Error: GCP_PROJECT is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	data, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatal().Err(err).Str("file", *filePath).Msg("Failed to read CSV file")
	}

	// Archive the raw upload first so the import can be replayed.
	if *bucket != "" {
		storage, err := gcs.NewService(ctx, *bucket)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create storage service")
		}
		defer storage.Close()

		objectName := gcs.UploadObjectName(time.Now(), filepath.Base(*filePath))
		gcsURI, err := storage.UploadBytes(ctx, objectName, data)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to archive CSV in GCS")
		}
		log.Info().Str("gcs_uri", gcsURI).Msg("Archived upload")
	}

	txRepo, err := rowstore.NewTransactionRepo(ctx, cfg.ProjectID, cfg.Dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create transaction repository")
	}
	defer txRepo.Close()

	gemini, err := llm.NewGeminiClient(ctx, cfg.GeminiModel)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	categorizer := categorize.New(gemini, txRepo, log)
	importer := ingest.New(categorizer, txRepo, log)

	result := importer.Import(ctx, *userID, string(data))

	fmt.Printf("%s: %d rows, %d imported, %d failed\n",
		result.Message, result.TotalRows, result.SuccessfulImports, result.FailedImports)
	for _, e := range result.Errors {
		fmt.Printf("  %s\n", e)
	}
	if result.FailedImports > 0 {
		os.Exit(1)
	}
}
