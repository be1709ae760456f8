package config

import (
	"fmt"
)

// WithPort sets the server port.
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing).
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithAdminToken sets the shared secret for admin operations.
func WithAdminToken(token string) Option {
	return func(c *ServerConfig) error {
		if token == "" {
			return fmt.Errorf("admin token cannot be empty")
		}
		c.AdminToken = token
		return nil
	}
}

// WithMemoryStore selects the in-memory store backend.
func WithMemoryStore() Option {
	return func(c *ServerConfig) error {
		c.StoreBackend = "memory"
		return nil
	}
}

// WithGitHubStore selects the GitHub contents backend for the given
// repository branch.
func WithGitHubStore(owner, repo, branch, token string) Option {
	return func(c *ServerConfig) error {
		if owner == "" || repo == "" {
			return fmt.Errorf("github owner and repo cannot be empty")
		}
		if token == "" {
			return fmt.Errorf("github token cannot be empty")
		}
		c.StoreBackend = "github"
		c.GitHub.Owner = owner
		c.GitHub.Repo = repo
		c.GitHub.Token = token
		if branch != "" {
			c.GitHub.Branch = branch
		}
		return nil
	}
}

// WithS3Store selects the S3 backend for the given bucket.
func WithS3Store(bucket, region string) Option {
	return func(c *ServerConfig) error {
		if bucket == "" {
			return fmt.Errorf("s3 bucket cannot be empty")
		}
		c.StoreBackend = "s3"
		c.S3.Bucket = bucket
		if region != "" {
			c.S3.Region = region
		}
		return nil
	}
}

// WithCatalogPath sets the store path of the catalog document.
func WithCatalogPath(path string) Option {
	return func(c *ServerConfig) error {
		if path == "" {
			return fmt.Errorf("catalog path cannot be empty")
		}
		c.CatalogPath = path
		return nil
	}
}
