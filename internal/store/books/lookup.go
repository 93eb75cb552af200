package books

import (
	"context"
	"database/sql"
)

// GetAllCategories returns every category name, ordered.
func GetAllCategories(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT DISTINCT name FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return scanNames(rows)
}

// GetAuthorsByPrefix suggests existing authors for the draft's author field.
func GetAuthorsByPrefix(ctx context.Context, db *sql.DB, prefix string, limit int) ([]string, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	rows, err := db.QueryContext(ctx, `
        SELECT DISTINCT name FROM authors
        WHERE name ILIKE $1
        ORDER BY name
        LIMIT $2
    `, prefix+"%", limit)
	if err != nil {
		return nil, err
	}
	return scanNames(rows)
}

func scanNames(rows *sql.Rows) ([]string, error) {
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}
