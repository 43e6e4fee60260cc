// Package config centralizes environment configuration for the service.
// Values come from the process environment, optionally seeded from a .env
// file; cmd binaries may layer flags on top.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds every external handle the service needs at startup. Clients
// are constructed once from these values and injected; nothing re-reads the
// environment after Load.
type Config struct {
	Port string

	ProjectID string
	Dataset   string
	Bucket    string

	GeminiModel string

	IdentityURL string
	IdentityKey string

	NotionToken      string
	NotionDatabaseID string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() Config {
	// Best effort: absence of a .env file is the normal production case.
	_ = godotenv.Load()

	return Config{
		Port:             getenv("PORT", "8080"),
		ProjectID:        os.Getenv("GCP_PROJECT"),
		Dataset:          getenv("BIGQUERY_DATASET", "finsight"),
		Bucket:           os.Getenv("GCS_BUCKET"),
		GeminiModel:      getenv("GEMINI_MODEL", "gemini-2.5-flash"),
		IdentityURL:      os.Getenv("IDENTITY_URL"),
		IdentityKey:      os.Getenv("IDENTITY_SERVICE_KEY"),
		NotionToken:      os.Getenv("NOTION_TOKEN"),
		NotionDatabaseID: os.Getenv("NOTION_DATABASE_ID"),
	}
}

// Validate checks the fields required to run the API server.
func (c Config) Validate() error {
	if c.ProjectID == "" {
		return fmt.Errorf("config: GCP_PROJECT is required")
	}
	if c.IdentityURL == "" {
		return fmt.Errorf("config: IDENTITY_URL is required")
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
