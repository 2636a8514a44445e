package ingest

import (
	"context"
	"log"
	"strings"
	"time"

	"shelfsnap/internal/library"
	"shelfsnap/internal/platform/googlebooks"
	"shelfsnap/internal/platform/vision"

	"github.com/google/uuid"
)

// Extractor produces raw candidates from an image.
type Extractor interface {
	Extract(ctx context.Context, image []byte) ([]vision.Candidate, error)
}

// CatalogClient resolves a free-text query against the book catalog.
type CatalogClient interface {
	Search(ctx context.Context, query string) ([]googlebooks.Volume, error)
}

type Config struct {
	// MonthlyLimit caps how many records an owner may persist per calendar
	// month. Zero selects the default of 50.
	MonthlyLimit int
}

const defaultMonthlyLimit = 50

// Service runs the upload-resolution-persistence pipeline.
type Service struct {
	extractor Extractor
	catalog   CatalogClient
	store     library.Store
	limit     int

	now         func() time.Time
	newUploadID func() string
}

func NewService(extractor Extractor, catalog CatalogClient, store library.Store, cfg Config) *Service {
	limit := cfg.MonthlyLimit
	if limit <= 0 {
		limit = defaultMonthlyLimit
	}
	return &Service{
		extractor:   extractor,
		catalog:     catalog,
		store:       store,
		limit:       limit,
		now:         time.Now,
		newUploadID: func() string { return uuid.New().String() },
	}
}

// Analyze runs one ingestion: extract candidates from the image, admit the
// batch against the monthly quota, then resolve and persist each candidate
// independently. A candidate that finds no match, fails validation or errors
// is dropped without failing the batch. Extraction failure and quota rejection
// abort with nothing persisted.
//
// The admission check uses the extracted candidate count, not the number that
// will eventually resolve, so a batch can be rejected even though several of
// its candidates would have been dropped anyway. The check is also not atomic
// with the persistence loop: concurrent uploads by one owner can jointly land
// past the limit.
func (s *Service) Analyze(ctx context.Context, image []byte, owner string) (*Result, error) {
	if len(image) == 0 {
		return nil, ErrInvalidInput
	}

	uploadID := s.newUploadID()

	candidates, err := s.extractor.Extract(ctx, image)
	if err != nil {
		return nil, err
	}

	monthlyCount, err := s.store.CountCreatedSince(ctx, owner, startOfMonth(s.now()))
	if err != nil {
		return nil, err
	}
	if monthlyCount+len(candidates) > s.limit {
		return nil, &QuotaExceededError{
			Limit:        s.limit,
			MonthlyCount: monthlyCount,
			BatchSize:    len(candidates),
		}
	}

	result := &Result{
		UploadID:    uploadID,
		Resolutions: make([]Resolution, 0, len(candidates)),
	}
	for _, candidate := range candidates {
		res := s.resolve(ctx, candidate, uploadID, owner)
		if res.Outcome != OutcomeResolved {
			log.Printf("ingest candidate dropped outcome=%s title=%q err=%v", res.Outcome, candidate.Title, res.Err)
		}
		result.Resolutions = append(result.Resolutions, res)
		if res.Outcome == OutcomeResolved {
			result.Books = append(result.Books, *res.Book)
		}
	}
	return result, nil
}

func (s *Service) resolve(ctx context.Context, candidate vision.Candidate, uploadID, owner string) Resolution {
	query := strings.TrimSpace(candidate.Title + " " + candidate.Author)

	volumes, err := s.catalog.Search(ctx, query)
	if err != nil {
		return Resolution{Candidate: candidate, Outcome: OutcomeFailed, Err: err}
	}
	if len(volumes) == 0 {
		return Resolution{Candidate: candidate, Outcome: OutcomeNoMatch}
	}

	// Always the first (highest-ranked) result. Ambiguous titles resolve to
	// whatever the catalog ranks first.
	book := mapVolume(&volumes[0])
	if err := book.Validate(); err != nil {
		return Resolution{Candidate: candidate, Outcome: OutcomeValidationFailed, Err: err}
	}

	stored, err := s.store.Create(ctx, book, uploadID, owner)
	if err != nil {
		return Resolution{Candidate: candidate, Outcome: OutcomeFailed, Err: err}
	}
	return Resolution{Candidate: candidate, Outcome: OutcomeResolved, Book: &stored}
}

func mapVolume(v *googlebooks.Volume) *library.Book {
	info := v.VolumeInfo

	author := "Unknown"
	if len(info.Authors) > 0 {
		author = info.Authors[0]
	}

	isbn := ""
	if len(info.IndustryIdentifiers) > 0 {
		isbn = info.IndustryIdentifiers[0].Identifier
	}

	book := &library.Book{
		Title:         info.Title,
		Author:        author,
		ISBN:          isbn,
		CoverURL:      info.ImageLinks.Thumbnail,
		Description:   info.Description,
		GoogleBooksID: v.ID,
		Metadata: library.Metadata{
			Categories:    info.Categories,
			PublishedDate: info.PublishedDate,
			Publisher:     info.Publisher,
		},
	}
	if info.PageCount > 0 {
		pages := info.PageCount
		book.PageCount = &pages
	}
	return book
}

// startOfMonth is the quota window boundary: midnight on the 1st, server-local
// time. A record created at 23:59:59 on the last day of a month counts toward
// that month.
func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
