package ingest

import (
	"errors"
	"fmt"

	"shelfsnap/internal/library"
	"shelfsnap/internal/platform/vision"
)

// ErrInvalidInput is returned when the request carries no image payload.
var ErrInvalidInput = errors.New("image data is required")

// ErrQuotaExceeded marks a batch rejected by the monthly admission check.
var ErrQuotaExceeded = errors.New("monthly quota exceeded")

// QuotaExceededError carries the numbers behind an admission rejection so the
// handler can surface an actionable message.
type QuotaExceededError struct {
	Limit        int
	MonthlyCount int
	BatchSize    int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("Adding %d books would exceed your monthly limit of %d books. You have added %d books this month.",
		e.BatchSize, e.Limit, e.MonthlyCount)
}

func (e *QuotaExceededError) Unwrap() error { return ErrQuotaExceeded }

// Outcome tags what happened to one candidate during resolution.
type Outcome int

const (
	// OutcomeResolved: matched, validated and persisted.
	OutcomeResolved Outcome = iota
	// OutcomeNoMatch: the catalog search returned zero results.
	OutcomeNoMatch
	// OutcomeValidationFailed: the mapped record failed schema validation.
	OutcomeValidationFailed
	// OutcomeFailed: the catalog call or the store write errored.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeResolved:
		return "resolved"
	case OutcomeNoMatch:
		return "no_match"
	case OutcomeValidationFailed:
		return "validation_failed"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// Resolution records the fate of a single candidate. A dropped candidate never
// fails the batch; the tag says why it was dropped.
type Resolution struct {
	Candidate vision.Candidate
	Outcome   Outcome
	Book      *library.Book // persisted record, set when Outcome is OutcomeResolved
	Err       error
}

// Result is the outcome of one ingestion call: the persisted subset of the
// extracted candidates, in surviving input order, plus the upload id that
// groups them for undo.
type Result struct {
	UploadID    string
	Books       []library.Book
	Resolutions []Resolution
}
