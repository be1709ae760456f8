// Package config assembles the server configuration and builds the
// catalog service from it.
package config

import (
	"errors"
	"fmt"

	"github.com/openshelf/openshelf/pkg/openshelf"
	"github.com/openshelf/openshelf/pkg/openshelf/store"
	githubstore "github.com/openshelf/openshelf/pkg/openshelf/store/github"
	memorystore "github.com/openshelf/openshelf/pkg/openshelf/store/memory"
	s3store "github.com/openshelf/openshelf/pkg/openshelf/store/s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on
// top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:             "8080",
		Environment:      "development",
		StoreBackend:     "github",
		CatalogPath:      openshelf.DefaultCatalogPath,
		BlobPrefix:       openshelf.DefaultBlobPrefix,
		DefaultLanguage:  openshelf.DefaultLanguage,
		MaxWriteAttempts: openshelf.DefaultMaxWriteAttempts,
		AllowedOrigins:   []string{"*"},
		GitHub: GitHubConfig{
			APIBase: githubstore.DefaultAPIBase,
			Branch:  githubstore.DefaultBranch,
		},
		S3: S3Config{
			Region: "us-east-1",
		},
	}
}

// ServerConfig represents server configuration for the catalog service.
type ServerConfig struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"` // development, production, testing

	// Store selection: "github" (default), "s3", or "memory".
	StoreBackend string `env:"STORE_BACKEND" env-default:"github"`

	GitHub GitHubConfig
	S3     S3Config

	CatalogPath      string   `env:"CATALOG_PATH" env-default:"catalog.json"`
	BlobPrefix       string   `env:"BLOB_PREFIX" env-default:"books/"`
	AdminToken       string   `env:"ADMIN_TOKEN"`
	DefaultLanguage  string   `env:"DEFAULT_LANGUAGE" env-default:"English"`
	MaxWriteAttempts int      `env:"MAX_WRITE_ATTEMPTS" env-default:"3"`
	AllowedOrigins   []string `env:"ALLOWED_ORIGINS" env-default:"*"`
}

// GitHubConfig locates the repository branch backing the store.
type GitHubConfig struct {
	APIBase string `env:"GITHUB_API_BASE" env-default:"https://api.github.com"`
	Owner   string `env:"GITHUB_OWNER"`
	Repo    string `env:"GITHUB_REPO"`
	Branch  string `env:"GITHUB_BRANCH" env-default:"main"`
	Token   string `env:"GITHUB_TOKEN"`
}

// S3Config locates the bucket backing the store.
type S3Config struct {
	Region          string `env:"S3_REGION" env-default:"us-east-1"`
	Bucket          string `env:"S3_BUCKET"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	Endpoint        string `env:"S3_ENDPOINT"`
	UsePathStyle    bool   `env:"S3_USE_PATH_STYLE" env-default:"false"`
}

// Validate validates the server configuration.
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if c.AdminToken == "" {
		return errors.New("admin token is required")
	}

	switch c.StoreBackend {
	case "github":
		if c.GitHub.Owner == "" || c.GitHub.Repo == "" {
			return errors.New("github owner and repo are required for the github store")
		}
		if c.GitHub.Token == "" {
			return errors.New("github token is required for the github store")
		}
	case "s3":
		if c.S3.Bucket == "" {
			return errors.New("s3 bucket is required for the s3 store")
		}
	case "memory":
		// nothing to validate
	default:
		return fmt.Errorf("unsupported store backend: %s", c.StoreBackend)
	}

	return nil
}

// BuildService creates a Service instance from the server configuration.
func (c *ServerConfig) BuildService() (openshelf.Service, error) {
	st, err := c.buildStore()
	if err != nil {
		return nil, fmt.Errorf("failed to build store backend: %w", err)
	}

	return openshelf.New(
		openshelf.WithCatalogStore(st),
		openshelf.WithConfig(openshelf.Config{
			CatalogPath:      c.CatalogPath,
			BlobPrefix:       c.BlobPrefix,
			AdminToken:       c.AdminToken,
			DefaultLanguage:  c.DefaultLanguage,
			MaxWriteAttempts: c.MaxWriteAttempts,
		}),
	)
}

// buildStore creates a store.Store based on the configuration.
func (c *ServerConfig) buildStore() (store.Store, error) {
	switch c.StoreBackend {
	case "github":
		return githubstore.New(githubstore.Config{
			APIBase: c.GitHub.APIBase,
			Owner:   c.GitHub.Owner,
			Repo:    c.GitHub.Repo,
			Branch:  c.GitHub.Branch,
			Token:   c.GitHub.Token,
		})
	case "s3":
		return s3store.New(s3store.Config{
			Region:          c.S3.Region,
			Bucket:          c.S3.Bucket,
			AccessKeyID:     c.S3.AccessKeyID,
			SecretAccessKey: c.S3.SecretAccessKey,
			Endpoint:        c.S3.Endpoint,
			UsePathStyle:    c.S3.UsePathStyle,
		})
	case "memory":
		return memorystore.New(), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", c.StoreBackend)
	}
}
