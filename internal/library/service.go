package library

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"shelfsnap/internal/platform/googlebooks"
)

// DetailResolver fetches the full catalog entry behind a stored record.
type DetailResolver interface {
	GetByID(ctx context.Context, id string) (*googlebooks.Volume, error)
}

// Service provides the per-owner library operations.
type Service struct {
	store    Store
	resolver DetailResolver
}

func NewService(store Store, resolver DetailResolver) *Service {
	return &Service{store: store, resolver: resolver}
}

// List returns all of the owner's books, newest first.
func (s *Service) List(ctx context.Context, owner string) ([]Book, error) {
	return s.store.ListByOwner(ctx, owner)
}

// Search returns the owner's books whose title or author contains the query.
func (s *Service) Search(ctx context.Context, query, owner string) ([]Book, error) {
	return s.store.SearchByText(ctx, query, owner)
}

// Details resolves the stored record against the catalog. A record without an
// external catalog id reports ErrNotFound, matching a missing record.
func (s *Service) Details(ctx context.Context, id int64, owner string) (*googlebooks.Volume, error) {
	book, err := s.store.GetByID(ctx, id, owner)
	if err != nil {
		return nil, err
	}
	if book.GoogleBooksID == "" {
		return nil, ErrNotFound
	}
	return s.resolver.GetByID(ctx, book.GoogleBooksID)
}

// Delete removes one record; absent or foreign ids are a no-op.
func (s *Service) Delete(ctx context.Context, id int64, owner string) error {
	return s.store.DeleteByID(ctx, id, owner)
}

// UndoUpload removes every record created by one ingestion call.
func (s *Service) UndoUpload(ctx context.Context, uploadID, owner string) error {
	return s.store.DeleteByUpload(ctx, uploadID, owner)
}

var csvHeader = []string{
	"Title", "Author", "ISBN", "Added Date", "Publisher",
	"Published Date", "Categories", "Page Count", "Description",
}

// ExportCSV writes the owner's library as CSV, newest first.
func (s *Service) ExportCSV(ctx context.Context, owner string, w io.Writer) error {
	books, err := s.store.ListByOwner(ctx, owner)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, b := range books {
		pageCount := ""
		if b.PageCount != nil {
			pageCount = strconv.Itoa(*b.PageCount)
		}
		row := []string{
			b.Title,
			b.Author,
			b.ISBN,
			b.CreatedAt.Format("2006-01-02"),
			b.Metadata.Publisher,
			b.Metadata.PublishedDate,
			strings.Join(b.Metadata.Categories, "; "),
			pageCount,
			b.Description,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
