package library

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps books in process memory. It backs local development and
// tests; production deployments select PostgresStore instead.
type MemoryStore struct {
	mu     sync.RWMutex
	books  map[int64]Book
	nextID int64
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		books:  make(map[int64]Book),
		nextID: 1,
		now:    time.Now,
	}
}

// SetClock overrides the creation-timestamp source. Tests use it to pin the
// monthly quota window.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryStore) Create(ctx context.Context, book *Book, uploadID, owner string) (Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *book
	stored.ID = s.nextID
	s.nextID++
	stored.OwnerID = owner
	stored.UploadID = uploadID
	stored.CreatedAt = s.now()

	s.books[stored.ID] = stored
	return stored, nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id int64, owner string) (Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.books[id]
	if !ok || b.OwnerID != owner {
		return Book{}, ErrNotFound
	}
	return b, nil
}

func (s *MemoryStore) ListByOwner(ctx context.Context, owner string) ([]Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Book
	for _, b := range s.books {
		if b.OwnerID == owner {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) DeleteByID(ctx context.Context, id int64, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.books[id]; ok && b.OwnerID == owner {
		delete(s.books, id)
	}
	return nil
}

func (s *MemoryStore) DeleteByUpload(ctx context.Context, uploadID, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, b := range s.books {
		if b.UploadID == uploadID && b.OwnerID == owner {
			delete(s.books, id)
		}
	}
	return nil
}

func (s *MemoryStore) SearchByText(ctx context.Context, query, owner string) ([]Book, error) {
	q := strings.ToLower(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Book
	for _, b := range s.books {
		if b.OwnerID != owner {
			continue
		}
		if strings.Contains(strings.ToLower(b.Title), q) || strings.Contains(strings.ToLower(b.Author), q) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) CountCreatedSince(ctx context.Context, owner string, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, b := range s.books {
		if b.OwnerID == owner && !b.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}
