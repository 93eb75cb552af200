package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/5w1tchy/books-admin/internal/store/shared"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrUnknownCategory is returned when the draft's category vanished from
// the catalog between validation and submit.
var ErrUnknownCategory = errors.New("category does not exist")

// linkAuthor attaches the book to the named author, creating the author
// on first use.
func linkAuthor(ctx context.Context, tx *sql.Tx, bookID, name string) error {
	var authorID string
	err := tx.QueryRowContext(ctx, `SELECT id::text FROM authors WHERE name = $1 LIMIT 1`, name).Scan(&authorID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		err = tx.QueryRowContext(ctx, `
            INSERT INTO authors (name, slug) VALUES ($1, $2)
            RETURNING id::text
        `, name, shared.Slugify(name)).Scan(&authorID)
		if err != nil {
			return fmt.Errorf("create author %q: %w", name, err)
		}
	case err != nil:
		return fmt.Errorf("lookup author %q: %w", name, err)
	}

	_, err = tx.ExecContext(ctx, `
        INSERT INTO book_authors (book_id, author_id) VALUES ($1, $2)
        ON CONFLICT DO NOTHING
    `, bookID, authorID)
	if err != nil {
		return fmt.Errorf("link author %q: %w", name, err)
	}
	return nil
}

// linkCategory attaches the book to an existing category. Categories are
// never created here.
func linkCategory(ctx context.Context, tx *sql.Tx, bookID, name string) error {
	var categoryID string
	err := tx.QueryRowContext(ctx, `SELECT id::text FROM categories WHERE lower(name) = lower($1) LIMIT 1`, name).Scan(&categoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, name)
	}
	if err != nil {
		return fmt.Errorf("lookup category %q: %w", name, err)
	}

	_, err = tx.ExecContext(ctx, `
        INSERT INTO book_categories (book_id, category_id) VALUES ($1, $2)
        ON CONFLICT DO NOTHING
    `, bookID, categoryID)
	if err != nil {
		return fmt.Errorf("link category %q: %w", name, err)
	}
	return nil
}

func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func isUniqueViolation(err error) bool {
	var pg *pgconn.PgError
	return errors.As(err, &pg) && pg.Code == "23505"
}
