package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// WithEnv reads configuration from environment variables via the
// struct's env tags.
//
// Store selection:
//
//	STORE_BACKEND - "github" (default), "s3", or "memory"
//
// GitHub store:
//
//	GITHUB_OWNER, GITHUB_REPO, GITHUB_TOKEN (required)
//	GITHUB_BRANCH (default "main"), GITHUB_API_BASE
//
// S3 store:
//
//	S3_BUCKET (required), S3_REGION, S3_ENDPOINT, S3_USE_PATH_STYLE
//	AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY (optional; the default
//	credential chain is used when absent)
//
// Catalog:
//
//	CATALOG_PATH (default "catalog.json"), BLOB_PREFIX (default "books/"),
//	ADMIN_TOKEN (required), DEFAULT_LANGUAGE, MAX_WRITE_ATTEMPTS
//
// Server:
//
//	PORT (default "8080"), ENVIRONMENT, ALLOWED_ORIGINS
func WithEnv() Option {
	return func(c *ServerConfig) error {
		if err := cleanenv.ReadEnv(c); err != nil {
			return fmt.Errorf("read environment: %w", err)
		}
		return nil
	}
}
