package openshelf

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/openshelf/openshelf/pkg/openshelf/slug"
	"github.com/openshelf/openshelf/pkg/openshelf/store"
)

// Config defaults.
const (
	DefaultCatalogPath      = "catalog.json"
	DefaultBlobPrefix       = "books/"
	DefaultLanguage         = "English"
	DefaultMaxWriteAttempts = 3
)

// Config carries the coordinates and policy the orchestrators need. It
// is passed in at construction; the service holds no ambient globals.
type Config struct {
	CatalogPath     string // store path of the catalog document
	BlobPrefix      string // store prefix for book binaries
	AdminToken      string // shared secret for delete operations
	DefaultLanguage string // language applied when an upload omits one

	// MaxWriteAttempts bounds the read-modify-write retry loop run on
	// revision conflicts. The default is 3.
	MaxWriteAttempts int
}

// service implements the Service interface.
type service struct {
	catalogStore store.Store
	blobStore    store.Store
	cfg          Config
	logger       *slog.Logger
}

// Option represents a functional option for configuring the service.
type Option func(*service)

// WithCatalogStore sets the versioned store holding the catalog
// document. It is also used for binaries unless WithBlobStore is given.
func WithCatalogStore(s store.Store) Option {
	return func(svc *service) {
		svc.catalogStore = s
	}
}

// WithBlobStore sets a separate store for book binaries.
func WithBlobStore(s store.Store) Option {
	return func(svc *service) {
		svc.blobStore = s
	}
}

// WithConfig sets the service configuration.
func WithConfig(cfg Config) Option {
	return func(svc *service) {
		svc.cfg = cfg
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(svc *service) {
		svc.logger = logger
	}
}

// New creates a new service instance with the given options.
func New(options ...Option) (Service, error) {
	s := &service{}
	for _, option := range options {
		option(s)
	}

	if s.catalogStore == nil {
		return nil, fmt.Errorf("catalog store is required")
	}
	if s.blobStore == nil {
		s.blobStore = s.catalogStore
	}
	if s.cfg.AdminToken == "" {
		return nil, fmt.Errorf("admin token is required")
	}
	if s.cfg.CatalogPath == "" {
		s.cfg.CatalogPath = DefaultCatalogPath
	}
	if s.cfg.BlobPrefix == "" {
		s.cfg.BlobPrefix = DefaultBlobPrefix
	}
	if s.cfg.DefaultLanguage == "" {
		s.cfg.DefaultLanguage = DefaultLanguage
	}
	if s.cfg.MaxWriteAttempts <= 0 {
		s.cfg.MaxWriteAttempts = DefaultMaxWriteAttempts
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s, nil
}

func (s *service) catalog() *CatalogRepository {
	return NewCatalogRepository(s.catalogStore, s.cfg.CatalogPath)
}

func (s *service) ListBooks(ctx context.Context) ([]Book, error) {
	cat, err := s.catalog().Load(ctx)
	if err != nil {
		return nil, err
	}
	return cat.Books, nil
}

func (s *service) UploadBook(ctx context.Context, req UploadBookRequest) (*UploadResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(req.FileName))
	format, _ := FormatForExtension(ext)

	// Identical title/author slugs collide on the same path; that is an
	// intentional overwrite, not an error.
	blobPath := s.cfg.BlobPrefix + slug.Make(req.Title) + "-" + slug.Make(req.Author) + ext

	if err := s.writeBlob(ctx, blobPath, req.Data); err != nil {
		return nil, err
	}

	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = s.cfg.DefaultLanguage
	}

	var result UploadResult
	message := fmt.Sprintf("catalog: add %q", strings.TrimSpace(req.Title))
	err := s.mutateCatalog(ctx, message, func(cat *Catalog) error {
		book := Book{
			ID:          cat.NextID(),
			Title:       strings.TrimSpace(req.Title),
			Author:      strings.TrimSpace(req.Author),
			Genre:       strings.TrimSpace(req.Genre),
			Year:        req.Year,
			Language:    language,
			Description: strings.TrimSpace(req.Description),
			Size:        HumanSize(int64(len(req.Data))),
			Format:      format,
			File:        blobPath,
			Color:       ColorForGenre(req.Genre),
			UploadedAt:  time.Now().UTC(),
		}
		cat.Books = append(cat.Books, book)
		result = UploadResult{Book: book, Total: len(cat.Books)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("book registered", "id", result.Book.ID, "file", blobPath, "total", result.Total)
	return &result, nil
}

func (s *service) DeleteBook(ctx context.Context, id int, credential string) (*Book, error) {
	// Credential check runs before any store access; the outcome does
	// not depend on whether the id exists.
	if subtle.ConstantTimeCompare([]byte(credential), []byte(s.cfg.AdminToken)) != 1 {
		return nil, ErrUnauthorized
	}

	var removed Book
	err := s.mutateCatalog(ctx, fmt.Sprintf("catalog: remove book %d", id), func(cat *Catalog) error {
		book, ok := cat.RemoveByID(id)
		if !ok {
			return ErrBookNotFound
		}
		removed = book
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("book removed", "id", id, "file", removed.File)
	return &removed, nil
}

// writeBlob commits the binary under its derived path, presenting the
// current revision when the path already exists. The content is
// identical across retries, so losing a race and rewriting is safe.
func (s *service) writeBlob(ctx context.Context, path string, data []byte) error {
	for attempt := 1; ; attempt++ {
		var revision string
		switch f, err := s.blobStore.Fetch(ctx, path); {
		case err == nil:
			revision = f.Revision
		case errors.Is(err, store.ErrNotFound):
			// First write for this path; create without a witness.
		default:
			return fmt.Errorf("probe blob %s: %w", path, err)
		}

		_, err := s.blobStore.Write(ctx, path, data, store.WriteOptions{
			Message:  "books: upload " + filepath.Base(path),
			Revision: revision,
		})
		if err == nil {
			return nil
		}
		if !errors.Is(err, store.ErrRevisionConflict) || attempt >= s.cfg.MaxWriteAttempts {
			return fmt.Errorf("write blob %s: %w", path, err)
		}
		s.logger.Warn("blob write conflict, retrying", "path", path, "attempt", attempt)
	}
}

// mutateCatalog runs one read-modify-write cycle against the catalog
// document, re-fetching and reapplying the mutation a bounded number of
// times when another writer advanced the revision in between.
func (s *service) mutateCatalog(ctx context.Context, message string, mutate func(*Catalog) error) error {
	repo := s.catalog()
	for attempt := 1; ; attempt++ {
		cat, err := repo.Load(ctx)
		if err != nil {
			return err
		}
		if err := mutate(cat); err != nil {
			return err
		}

		err = repo.Save(ctx, cat, message)
		if err == nil {
			return nil
		}
		if !errors.Is(err, store.ErrRevisionConflict) {
			return fmt.Errorf("write catalog: %w", err)
		}
		if attempt >= s.cfg.MaxWriteAttempts {
			return fmt.Errorf("write catalog after %d attempts: %w", attempt, ErrCatalogConflict)
		}
		s.logger.Warn("catalog write conflict, retrying", "attempt", attempt)
	}
}
