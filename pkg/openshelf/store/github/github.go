// Package github implements the versioned store contract on top of the
// GitHub contents API. File content is base64-encoded at rest and every
// object carries a blob sha that serves as the revision token.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/openshelf/openshelf/pkg/openshelf/store"
)

const (
	// DefaultAPIBase is the public GitHub API endpoint.
	DefaultAPIBase = "https://api.github.com"

	// DefaultBranch is used when no branch is configured.
	DefaultBranch = "main"

	defaultTimeout = 30 * time.Second
)

// Config options for the GitHub contents backend.
type Config struct {
	APIBase string // optional custom endpoint (GitHub Enterprise)
	Owner   string // repository owner
	Repo    string // repository name
	Branch  string // target branch, default "main"
	Token   string // bearer token for authentication

	// HTTPClient overrides the default client (used in tests).
	HTTPClient *http.Client
}

// Client is a GitHub-backed implementation of store.Store.
type Client struct {
	base   string
	branch string
	token  string
	http   *http.Client
}

// New creates a GitHub contents client for one repository branch.
func New(cfg Config) (*Client, error) {
	if cfg.Owner == "" || cfg.Repo == "" {
		return nil, errors.New("github owner and repo are required")
	}
	if cfg.Token == "" {
		return nil, errors.New("github token is required")
	}
	apiBase := cfg.APIBase
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	branch := cfg.Branch
	if branch == "" {
		branch = DefaultBranch
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	return &Client{
		base:   fmt.Sprintf("%s/repos/%s/%s/contents", strings.TrimRight(apiBase, "/"), cfg.Owner, cfg.Repo),
		branch: branch,
		token:  cfg.Token,
		http:   httpClient,
	}, nil
}

// contentsObject is the subset of the contents API response we consume.
type contentsObject struct {
	Content string `json:"content"`
	SHA     string `json:"sha"`
}

// writeRequest is the PUT body of the contents API.
type writeRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
	SHA     string `json:"sha,omitempty"`
}

// writeResponse wraps the object metadata returned after a write.
type writeResponse struct {
	Content contentsObject `json:"content"`
}

// Fetch retrieves the object at path on the configured branch.
func (c *Client) Fetch(ctx context.Context, path string) (*store.File, error) {
	reqURL := fmt.Sprintf("%s/%s?ref=%s", c.base, escapePath(path), url.QueryEscape(c.branch))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &store.RequestError{Backend: "github", Path: path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &store.RequestError{Backend: "github", Path: path, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, store.ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, &store.RequestError{Backend: "github", Path: path, Status: resp.StatusCode, Body: string(body)}
	}

	var obj contentsObject
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, &store.RequestError{Backend: "github", Path: path, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}

	content, err := decodeContent(obj.Content)
	if err != nil {
		return nil, &store.RequestError{Backend: "github", Path: path, Status: resp.StatusCode, Err: fmt.Errorf("decode content: %w", err)}
	}

	return &store.File{Content: content, Revision: obj.SHA}, nil
}

// Write commits content at path. A non-empty opts.Revision is sent as
// the expected blob sha; GitHub rejects the write with 409 when the
// object changed since that sha was read.
func (c *Client) Write(ctx context.Context, path string, content []byte, opts store.WriteOptions) (string, error) {
	message := opts.Message
	if message == "" {
		message = "update " + path
	}

	payload, err := json.Marshal(writeRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(content),
		Branch:  c.branch,
		SHA:     opts.Revision,
	})
	if err != nil {
		return "", err
	}

	reqURL := fmt.Sprintf("%s/%s", c.base, escapePath(path))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, reqURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &store.RequestError{Backend: "github", Path: path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &store.RequestError{Backend: "github", Path: path, Err: err}
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		// fall through to decode
	case http.StatusConflict:
		return "", store.ErrRevisionConflict
	case http.StatusUnprocessableEntity:
		// Older GitHub Enterprise reports a stale sha as 422.
		if strings.Contains(string(body), "does not match") {
			return "", store.ErrRevisionConflict
		}
		return "", &store.RequestError{Backend: "github", Path: path, Status: resp.StatusCode, Body: string(body)}
	default:
		return "", &store.RequestError{Backend: "github", Path: path, Status: resp.StatusCode, Body: string(body)}
	}

	var out writeResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", &store.RequestError{Backend: "github", Path: path, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return out.Content.SHA, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
}

// decodeContent strips the line wrapping GitHub inserts into base64
// payloads before decoding.
func decodeContent(encoded string) ([]byte, error) {
	compact := strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, encoded)
	return base64.StdEncoding.DecodeString(compact)
}

// escapePath escapes each path segment while keeping separators intact.
func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
