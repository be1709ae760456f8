package openshelf

import "context"

// Service is the catalog service boundary consumed by the HTTP layer.
type Service interface {
	// ListBooks returns all catalog entries in insertion order.
	ListBooks(ctx context.Context) ([]Book, error)

	// UploadBook commits the binary to the store and registers the book
	// in the catalog as a two-phase, non-transactional sequence.
	UploadBook(ctx context.Context, req UploadBookRequest) (*UploadResult, error)

	// DeleteBook removes one entry by id after checking the caller's
	// credential against the configured shared secret.
	DeleteBook(ctx context.Context, id int, credential string) (*Book, error)
}
