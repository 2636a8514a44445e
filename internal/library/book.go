package library

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a book does not exist or belongs to another owner.
// Foreign-owner lookups deliberately report not-found rather than forbidden.
var ErrNotFound = errors.New("book not found")

// Metadata holds the structured catalog metadata stored alongside a book.
type Metadata struct {
	Categories    []string `json:"categories,omitempty"`
	PublishedDate string   `json:"publishedDate,omitempty"`
	Publisher     string   `json:"publisher,omitempty"`
}

// Book is one catalog record owned by a single user. Records created by the
// same ingestion call share an UploadID so the whole upload can be undone.
type Book struct {
	ID            int64     `json:"id"`
	OwnerID       string    `json:"-"`
	UploadID      string    `json:"uploadId"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	ISBN          string    `json:"isbn,omitempty"`
	CoverURL      string    `json:"coverUrl,omitempty"`
	Description   string    `json:"description,omitempty"`
	PageCount     *int      `json:"pageCount,omitempty"`
	GoogleBooksID string    `json:"googleBooksId,omitempty"`
	Metadata      Metadata  `json:"metadata"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Validate checks the invariants a record must satisfy before persistence.
func (b *Book) Validate() error {
	if b.Title == "" {
		return errors.New("title is required")
	}
	if b.Author == "" {
		return errors.New("author is required")
	}
	if b.PageCount != nil && *b.PageCount < 0 {
		return errors.New("page count must be non-negative")
	}
	return nil
}
