package admin

import (
	"context"
	"time"
)

// Audit actions written for onboarding outcomes.
const (
	ActionBookOnboarded   = "book.onboarded"
	ActionBookOnboardFail = "book.onboard_failed"
)

type AuditRow struct {
	ID        int64     `json:"id"`
	AdminID   string    `json:"admin_id"`
	Action    string    `json:"action"`
	TargetID  *string   `json:"target_id,omitempty"`
	Meta      any       `json:"meta"`
	CreatedAt time.Time `json:"created_at"`
}

// AuditEntry is one row to insert. A zero CreatedAt means now.
type AuditEntry struct {
	AdminID   string
	Action    string
	TargetID  string
	Meta      any
	CreatedAt time.Time
}

// AuditFilter narrows ListAudit. Empty fields do not filter.
type AuditFilter struct {
	ActorID  string
	TargetID string
	Action   string
	Since    *time.Time
	Until    *time.Time
	Page     int
	Size     int
}

// Stats is the catalog size plus onboarding outcomes in the last window.
type Stats struct {
	BooksTotal  int `json:"books_total"`
	CopiesTotal int `json:"copies_total"`
	Onboarded   int `json:"onboarded_last_24h"`
	Failed      int `json:"failed_last_24h"`
}

type Store interface {
	OnboardingStats(ctx context.Context, since time.Time) (Stats, error)
	InsertAuditBatch(ctx context.Context, batch []AuditEntry) error
	ListAudit(ctx context.Context, f AuditFilter) ([]AuditRow, int, error)
}
