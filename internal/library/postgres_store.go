package library

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresStore(db *pgxpool.Pool, timeout time.Duration) *PostgresStore {
	return &PostgresStore{db: db, timeout: timeout}
}

func (s *PostgresStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

const bookColumns = `id, owner_id, upload_id, title, author, isbn, cover_url, description,
	       page_count, google_books_id, metadata, created_at`

func scanBook(row pgx.Row) (Book, error) {
	var b Book
	err := row.Scan(
		&b.ID, &b.OwnerID, &b.UploadID, &b.Title, &b.Author, &b.ISBN, &b.CoverURL,
		&b.Description, &b.PageCount, &b.GoogleBooksID, &b.Metadata, &b.CreatedAt,
	)
	return b, err
}

func (s *PostgresStore) Create(ctx context.Context, book *Book, uploadID, owner string) (Book, error) {
	const sql = `
		INSERT INTO books (owner_id, upload_id, title, author, isbn, cover_url, description,
		                   page_count, google_books_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		RETURNING ` + bookColumns

	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	return scanBook(s.db.QueryRow(timeoutCtx, sql,
		owner, uploadID, book.Title, book.Author, book.ISBN, book.CoverURL,
		book.Description, book.PageCount, book.GoogleBooksID, book.Metadata,
	))
}

func (s *PostgresStore) GetByID(ctx context.Context, id int64, owner string) (Book, error) {
	const sql = `
		SELECT ` + bookColumns + `
		FROM books
		WHERE id = $1 AND owner_id = $2`

	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	b, err := scanBook(s.db.QueryRow(timeoutCtx, sql, id, owner))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, owner string) ([]Book, error) {
	const sql = `
		SELECT ` + bookColumns + `
		FROM books
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC`

	return s.queryBooks(ctx, sql, owner)
}

func (s *PostgresStore) DeleteByID(ctx context.Context, id int64, owner string) error {
	const sql = `DELETE FROM books WHERE id = $1 AND owner_id = $2`

	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	_, err := s.db.Exec(timeoutCtx, sql, id, owner)
	return err
}

func (s *PostgresStore) DeleteByUpload(ctx context.Context, uploadID, owner string) error {
	const sql = `DELETE FROM books WHERE upload_id = $1 AND owner_id = $2`

	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	_, err := s.db.Exec(timeoutCtx, sql, uploadID, owner)
	return err
}

func (s *PostgresStore) SearchByText(ctx context.Context, query, owner string) ([]Book, error) {
	const sql = `
		SELECT ` + bookColumns + `
		FROM books
		WHERE owner_id = $1 AND (title ILIKE $2 OR author ILIKE $2)
		ORDER BY id`

	return s.queryBooks(ctx, sql, owner, "%"+query+"%")
}

func (s *PostgresStore) CountCreatedSince(ctx context.Context, owner string, since time.Time) (int, error) {
	const sql = `SELECT COUNT(*) FROM books WHERE owner_id = $1 AND created_at >= $2`

	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	var count int
	err := s.db.QueryRow(timeoutCtx, sql, owner, since).Scan(&count)
	return count, err
}

func (s *PostgresStore) queryBooks(ctx context.Context, sql string, args ...any) ([]Book, error) {
	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	rows, err := s.db.Query(timeoutCtx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
