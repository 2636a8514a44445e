package library

import (
	"context"
	"time"
)

// Store defines the contract for book persistence. Every operation is scoped
// by an explicit owner identity; there is no ambient owner context.
type Store interface {
	// Create assigns the id and creation timestamp, persists the record and
	// returns the stored copy.
	Create(ctx context.Context, book *Book, uploadID, owner string) (Book, error)
	// GetByID returns ErrNotFound when the id is absent or owned by someone else.
	GetByID(ctx context.Context, id int64, owner string) (Book, error)
	// ListByOwner returns all of the owner's books, newest first.
	ListByOwner(ctx context.Context, owner string) ([]Book, error)
	// DeleteByID is a no-op when the id is absent or owned by someone else.
	DeleteByID(ctx context.Context, id int64, owner string) error
	// DeleteByUpload removes every record of the owner's upload; no-op when
	// none match, so a second call is idempotent.
	DeleteByUpload(ctx context.Context, uploadID, owner string) error
	// SearchByText matches the query case-insensitively against title or author.
	SearchByText(ctx context.Context, query, owner string) ([]Book, error)
	// CountCreatedSince reports how many records the owner created at or after
	// the given instant. The ingestion pipeline uses it as its quota ledger.
	CountCreatedSince(ctx context.Context, owner string, since time.Time) (int, error)
}
