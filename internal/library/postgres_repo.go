package library

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookColumns = `id, owner_id, title, author, isbn, publication_year, publisher,
		cover_url, reading_status, location, personal_notes, date_added`

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func scanBook(row pgx.Row) (Book, error) {
	var b Book
	err := row.Scan(
		&b.ID, &b.UserID, &b.Title, &b.Author, &b.ISBN, &b.PublicationYear, &b.Publisher,
		&b.CoverURL, &b.ReadingStatus, &b.Location, &b.PersonalNotes, &b.DateAdded,
	)
	return b, err
}

func (r *PostgresRepo) Create(ctx context.Context, b *Book) error {
	const sql = `
		INSERT INTO books (owner_id, title, author, isbn, publication_year, publisher,
		                   cover_url, reading_status, location, personal_notes, date_added)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, sql,
		b.UserID, b.Title, b.Author, b.ISBN, b.PublicationYear, b.Publisher,
		b.CoverURL, b.ReadingStatus, b.Location, b.PersonalNotes, b.DateAdded,
	).Scan(&b.ID)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Book, error) {
	// Ids are uuids; anything else cannot exist.
	if _, err := uuid.Parse(id); err != nil {
		return Book{}, ErrNotFound
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	b, err := scanBook(r.db.QueryRow(timeoutCtx, `SELECT `+bookColumns+` FROM books WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, fmt.Errorf("get book %s: %w", id, err)
	}
	return b, nil
}

func (r *PostgresRepo) ListByOwner(ctx context.Context, ownerID string) ([]Book, error) {
	const sql = `SELECT ` + bookColumns + `
		FROM books
		WHERE owner_id = $1
		ORDER BY date_added ASC NULLS LAST, id`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, sql, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	out := []Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Update(ctx context.Context, id string, p Patch) (Book, error) {
	if len(p) == 0 {
		return r.Get(ctx, id)
	}

	sets := make([]string, 0, len(p))
	args := make([]any, 0, len(p)+1)
	argn := 1
	for _, key := range p.Keys() {
		sets = append(sets, fmt.Sprintf("%s = $%d", patchColumns[key], argn))
		args = append(args, p[key])
		argn++
	}
	args = append(args, id)

	sql := fmt.Sprintf(`UPDATE books SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), argn, bookColumns)

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	b, err := scanBook(r.db.QueryRow(timeoutCtx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, fmt.Errorf("update book %s: %w", id, err)
	}
	return b, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete book %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *PostgresRepo) Ping(ctx context.Context) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.db.Ping(timeoutCtx)
}
