package books

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/5w1tchy/books-admin/internal/onboarding"
	"github.com/5w1tchy/books-admin/internal/store/dbx"
	"github.com/5w1tchy/books-admin/internal/store/shared"
	"github.com/redis/go-redis/v9"
)

// Catalog is the SQL side of the onboarding wizard: it provides the
// category set and performs the atomic book + copies insert.
type Catalog struct {
	DB  *sql.DB
	RDB *redis.Client
}

func NewCatalog(db *sql.DB, rdb *redis.Client) *Catalog {
	return &Catalog{DB: db, RDB: rdb}
}

// Categories returns every category label.
func (c *Catalog) Categories(ctx context.Context) ([]string, error) {
	return GetAllCategories(ctx, c.DB)
}

// CreateBookWithCopies stores the book, its author and category links and
// one copy row per location in a single transaction.
func (c *Catalog) CreateBookWithCopies(ctx context.Context, d onboarding.BookDraft, locations []string) (string, error) {
	id, err := CreateWithCopies(ctx, c.DB, d, locations)
	if err != nil {
		return "", err
	}
	if err := BumpListingVersion(ctx, c.RDB); err != nil {
		log.Printf("[catalog] %v", err)
	}
	return id, nil
}

func CreateWithCopies(ctx context.Context, db *sql.DB, d onboarding.BookDraft, locations []string) (string, error) {
	if len(locations) == 0 {
		return "", fmt.Errorf("no copies to create")
	}
	if len(locations) != d.CopyCount {
		return "", fmt.Errorf("have %d locations for %d copies", len(locations), d.CopyCount)
	}

	var bookID string
	err := dbx.WithinTx(ctx, db, func(tx *sql.Tx) error {
		id, err := insertDraft(ctx, tx, d)
		if err != nil {
			return err
		}
		bookID = id

		if err := linkAuthor(ctx, tx, bookID, d.Author); err != nil {
			return err
		}
		if err := linkCategory(ctx, tx, bookID, d.Category); err != nil {
			return err
		}
		return insertCopies(ctx, tx, bookID, locations)
	})
	if err != nil {
		return "", err
	}
	return bookID, nil
}

func insertDraft(ctx context.Context, tx *sql.Tx, d onboarding.BookDraft) (string, error) {
	var id string
	err := tx.QueryRowContext(ctx, `
        INSERT INTO books (coda, title, slug, isbn, edition, publisher, summary, cover_url)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id::text
    `,
		d.Code,
		d.Title,
		slugForDraft(d),
		d.ISBN,
		d.Edition,
		nullIfEmpty(d.Publisher),
		nullIfEmpty(d.Description),
		d.CoverImage,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("coda_exists: %w", err)
		}
		return "", err
	}
	return id, nil
}

// insertCopies writes every copy with one multi-row INSERT. Copy numbers
// are 1-based.
func insertCopies(ctx context.Context, tx *sql.Tx, bookID string, locations []string) error {
	vals := make([]string, 0, len(locations))
	args := make([]any, 0, len(locations)*3)
	for i, loc := range locations {
		n := len(args)
		vals = append(vals, fmt.Sprintf("($%d,$%d,$%d,'available')", n+1, n+2, n+3))
		args = append(args, bookID, i+1, loc)
	}
	q := `INSERT INTO book_copies (book_id, copy_number, location, status) VALUES ` + strings.Join(vals, ",")
	res, err := tx.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("failed to insert copies: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n != int64(len(locations)) {
		return fmt.Errorf("inserted %d copies, want %d", n, len(locations))
	}
	return nil
}

func slugForDraft(d onboarding.BookDraft) string {
	if d.Code != "" {
		return strings.ToLower(d.Code)
	}
	return shared.Slugify(d.Title)
}
