package onboarding

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"
)

const DefaultSubmitTimeout = 30 * time.Second

// Persister is the single atomic write the wizard depends on: the book
// and every copy are stored, or nothing is.
type Persister interface {
	CreateBookWithCopies(ctx context.Context, draft BookDraft, locations []string) (string, error)
}

// Outcome describes one finished submission.
type Outcome struct {
	WizardID string
	Actor    string
	BookID   string
	Title    string
	Copies   int
	Err      error
	At       time.Time
}

// AuditSink receives submission outcomes. Record must not block.
type AuditSink interface {
	Record(o Outcome)
}

// Coordinator performs at most one persistence call at a time. It never
// retries.
type Coordinator struct {
	store    Persister
	audit    AuditSink
	timeout  time.Duration
	inFlight atomic.Bool
}

func NewCoordinator(store Persister, audit AuditSink, timeout time.Duration) *Coordinator {
	if timeout <= 0 {
		timeout = DefaultSubmitTimeout
	}
	return &Coordinator{store: store, audit: audit, timeout: timeout}
}

func (c *Coordinator) InFlight() bool { return c.inFlight.Load() }

// Submit invokes the persister once. Any failure comes back as a
// *SubmissionError.
func (c *Coordinator) Submit(ctx context.Context, wizardID, actor string, draft BookDraft, locations []string) (string, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		return "", ErrBusy
	}
	defer c.inFlight.Store(false)

	if len(locations) != draft.CopyCount {
		return "", &SubmissionError{Err: fmt.Errorf("have %d locations for %d copies", len(locations), draft.CopyCount)}
	}
	for i, loc := range locations {
		if loc == "" {
			return "", &SubmissionError{Err: fmt.Errorf("copy %d has no location", i)}
		}
	}

	cctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	id, err := c.store.CreateBookWithCopies(cctx, draft, locations)
	if err == nil && id == "" {
		err = errors.New("persister returned an empty id")
	}
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("%w after %s: %w", ErrSubmitTimeout, c.timeout, err)
	}

	out := Outcome{WizardID: wizardID, Actor: actor, BookID: id, Title: draft.Title, Copies: len(locations), Err: err, At: time.Now().UTC()}
	if c.audit != nil {
		c.audit.Record(out)
	}

	if err != nil {
		log.Printf("[onboarding] wizard=%s submit failed after %s: %v", wizardID, time.Since(start), err)
		return "", &SubmissionError{Err: err}
	}
	log.Printf("[onboarding] wizard=%s created book=%s copies=%d in %s", wizardID, id, len(locations), time.Since(start))
	return id, nil
}
