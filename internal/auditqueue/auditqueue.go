// Package auditqueue writes onboarding outcomes to the audit table in
// batches, off the request path.
package auditqueue

import (
	"context"
	"log"
	"sync"
	"time"

	admin "github.com/5w1tchy/books-admin/internal/api/handlers/admin"
	"github.com/5w1tchy/books-admin/internal/onboarding"
)

// Writer persists a batch of audit rows.
type Writer interface {
	InsertAuditBatch(ctx context.Context, batch []admin.AuditEntry) error
}

const (
	batchSize  = 100
	flushEvery = 250 * time.Millisecond
	writeTO    = 2 * time.Second
)

// Queue is an onboarding.AuditSink backed by a buffered channel and a
// fixed set of workers.
type Queue struct {
	w       Writer
	ch      chan admin.AuditEntry
	done    chan struct{}
	wg      sync.WaitGroup
	stop    sync.Once
	mu      sync.Mutex
	dropped int
}

// Start spins up N workers with a buffered channel.
// Suggested: buf=1000, workers=1
func Start(w Writer, buf, workers int) *Queue {
	if buf <= 0 {
		buf = 1000
	}
	if workers <= 0 {
		workers = 1
	}
	q := &Queue{w: w, ch: make(chan admin.AuditEntry, buf), done: make(chan struct{})}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

// Record queues an outcome without blocking. A full buffer drops the
// entry and logs it; the submission itself has already been decided.
func (q *Queue) Record(o onboarding.Outcome) {
	e := Entry(o)
	select {
	case q.ch <- e:
	default:
		q.mu.Lock()
		q.dropped++
		q.mu.Unlock()
		log.Printf("[auditqueue] buffer full, dropped %s for %s", e.Action, e.AdminID)
	}
}

// Dropped reports how many entries were discarded on a full buffer.
func (q *Queue) Dropped() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// Shutdown signals workers to stop, flushes remaining entries, and waits.
func (q *Queue) Shutdown() {
	q.stop.Do(func() { close(q.done) })
	q.wg.Wait()
}

// Entry maps an outcome to its audit row.
func Entry(o onboarding.Outcome) admin.AuditEntry {
	meta := map[string]any{
		"wizard_id": o.WizardID,
		"title":     o.Title,
		"copies":    o.Copies,
	}
	e := admin.AuditEntry{
		AdminID:   o.Actor,
		Action:    admin.ActionBookOnboarded,
		TargetID:  o.BookID,
		Meta:      meta,
		CreatedAt: o.At,
	}
	if o.Err != nil {
		e.Action = admin.ActionBookOnboardFail
		e.TargetID = ""
		meta["error"] = o.Err.Error()
	}
	return e
}

func (q *Queue) worker() {
	defer q.wg.Done()
	tk := time.NewTicker(flushEvery)
	defer tk.Stop()

	batch := make([]admin.AuditEntry, 0, batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), writeTO)
		if err := q.w.InsertAuditBatch(ctx, batch); err != nil {
			log.Printf("[auditqueue] insert %d rows failed: %v", len(batch), err)
		}
		cancel()
		batch = batch[:0]
	}

	for {
		select {
		case <-q.done:
			for {
				select {
				case e := <-q.ch:
					batch = append(batch, e)
					if len(batch) >= batchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		case e := <-q.ch:
			batch = append(batch, e)
			if len(batch) >= batchSize {
				flush()
			}
		case <-tk.C:
			flush()
		}
	}
}
