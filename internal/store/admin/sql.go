// Package adminstore is the Postgres side of the onboarding audit trail.
package adminstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	admin "github.com/5w1tchy/books-admin/internal/api/handlers/admin"
)

type Store struct{ db *sql.DB }

func New(db *sql.DB) *Store { return &Store{db: db} }

var _ admin.Store = (*Store)(nil)

// OnboardingStats counts the catalog and the onboarding outcomes recorded
// since the given time in one round trip.
func (s *Store) OnboardingStats(ctx context.Context, since time.Time) (admin.Stats, error) {
	const q = `
SELECT
  (SELECT COUNT(*) FROM public.books),
  (SELECT COUNT(*) FROM public.book_copies),
  COUNT(*) FILTER (WHERE action = $1),
  COUNT(*) FILTER (WHERE action = $2)
FROM public.admin_audit
WHERE created_at >= $3`
	var st admin.Stats
	err := s.db.QueryRowContext(ctx, q, admin.ActionBookOnboarded, admin.ActionBookOnboardFail, since).
		Scan(&st.BooksTotal, &st.CopiesTotal, &st.Onboarded, &st.Failed)
	if err != nil {
		return admin.Stats{}, fmt.Errorf("onboarding stats: %w", err)
	}
	return st, nil
}

// InsertAuditBatch writes every entry with one multi-row INSERT.
func (s *Store) InsertAuditBatch(ctx context.Context, batch []admin.AuditEntry) error {
	if len(batch) == 0 {
		return nil
	}
	vals := make([]string, 0, len(batch))
	args := make([]any, 0, len(batch)*5)
	for i, e := range batch {
		meta := []byte("{}")
		if e.Meta != nil {
			b, err := json.Marshal(e.Meta)
			if err != nil {
				return fmt.Errorf("audit meta %d: %w", i, err)
			}
			meta = b
		}
		at := e.CreatedAt
		if at.IsZero() {
			at = time.Now().UTC()
		}
		var target any
		if e.TargetID != "" {
			target = e.TargetID
		}
		n := len(args)
		vals = append(vals, fmt.Sprintf("($%d, $%d, $%d, $%d::jsonb, $%d)", n+1, n+2, n+3, n+4, n+5))
		args = append(args, e.AdminID, e.Action, target, string(meta), at)
	}
	q := `INSERT INTO public.admin_audit (admin_id, action, target_id, meta, created_at) VALUES ` + strings.Join(vals, ", ")
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("insert %d audit rows: %w", len(batch), err)
	}
	return nil
}

// conds accumulates AND-ed predicates with positional args.
type conds struct {
	clauses []string
	args    []any
}

func (c *conds) add(expr string, v any) {
	c.args = append(c.args, v)
	c.clauses = append(c.clauses, fmt.Sprintf(expr, len(c.args)))
}

func (c *conds) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(c.clauses, " AND ")
}

func auditConds(f admin.AuditFilter) *conds {
	c := &conds{}
	if f.ActorID != "" {
		c.add("admin_id = $%d", f.ActorID)
	}
	if f.TargetID != "" {
		c.add("target_id = $%d", f.TargetID)
	}
	if f.Action != "" {
		c.add("action = $%d", f.Action)
	}
	if f.Since != nil {
		c.add("created_at >= $%d", *f.Since)
	}
	if f.Until != nil {
		c.add("created_at <= $%d", *f.Until)
	}
	return c
}

// ListAudit returns one page of rows, newest first, and the total match
// count.
func (s *Store) ListAudit(ctx context.Context, f admin.AuditFilter) ([]admin.AuditRow, int, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Size < 1 || f.Size > 200 {
		f.Size = 25
	}
	c := auditConds(f)

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM public.admin_audit "+c.where(), c.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit rows: %w", err)
	}

	n := len(c.args)
	q := fmt.Sprintf(`
SELECT id, admin_id::text, action, target_id::text, meta, created_at
FROM public.admin_audit
%s
ORDER BY created_at DESC
LIMIT $%d OFFSET $%d`, c.where(), n+1, n+2)

	rows, err := s.db.QueryContext(ctx, q, append(c.args, f.Size, (f.Page-1)*f.Size)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit rows: %w", err)
	}
	defer rows.Close()

	out := make([]admin.AuditRow, 0, f.Size)
	for rows.Next() {
		var (
			row  admin.AuditRow
			tgt  sql.NullString
			meta []byte
		)
		if err := rows.Scan(&row.ID, &row.AdminID, &row.Action, &tgt, &meta, &row.CreatedAt); err != nil {
			return nil, 0, err
		}
		if tgt.Valid {
			row.TargetID = &tgt.String
		}
		row.Meta = decodeMeta(meta)
		out = append(out, row)
	}
	return out, total, rows.Err()
}

// decodeMeta turns the jsonb column into a JSON value. NULL becomes an
// empty object; undecodable bytes are returned as text.
func decodeMeta(raw []byte) any {
	if len(raw) == 0 {
		return map[string]any{}
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return v
}
