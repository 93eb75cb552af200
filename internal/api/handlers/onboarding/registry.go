package onboarding

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/5w1tchy/books-admin/internal/onboarding"
	"github.com/5w1tchy/books-admin/internal/store/wizardsnap"
	"github.com/google/uuid"
)

// Snapshots persist wizard state between requests and restarts.
type Snapshots interface {
	Save(ctx context.Context, snap wizardsnap.Snapshot) error
	Load(ctx context.Context, owner string) (wizardsnap.Snapshot, bool, error)
	Delete(ctx context.Context, owner string) error
}

// Config wires a Registry.
type Config struct {
	Catalog       onboarding.CategoryProvider
	Store         onboarding.Persister
	Previews      onboarding.PreviewStore
	Audit         onboarding.AuditSink
	Snapshots     Snapshots
	MaxCopies     int
	SubmitTimeout time.Duration
	Describe      func(error) string
}

// Registry holds one wizard per admin. A miss falls back to the admin's
// snapshot before a fresh wizard is created. Snapshot and catalog I/O run
// outside mu; the map is re-checked before a loaded wizard is adopted.
type Registry struct {
	cfg Config

	mu      sync.Mutex
	wizards map[string]*onboarding.Controller
	// gen counts teardowns per admin so a load that straddles one is
	// discarded instead of reviving the wizard.
	gen map[string]uint64
}

func NewRegistry(cfg Config) *Registry {
	return &Registry{
		cfg:     cfg,
		wizards: map[string]*onboarding.Controller{},
		gen:     map[string]uint64{},
	}
}

// ErrNoWizard means the admin has neither a live wizard nor a snapshot.
var ErrNoWizard = errors.New("no onboarding wizard for this user")

// Start returns the admin's wizard, resuming or creating it as needed.
func (r *Registry) Start(ctx context.Context, owner string) (*onboarding.Controller, error) {
	for {
		c, gen := r.live(owner)
		if c != nil {
			return c, nil
		}
		c, err := r.resume(ctx, owner)
		if err != nil {
			return nil, err
		}
		fresh := c == nil
		if fresh {
			rules, err := onboarding.LoadRules(ctx, r.cfg.Catalog, r.cfg.MaxCopies)
			if err != nil {
				return nil, err
			}
			id := uuid.NewString()
			c = onboarding.NewController(id, owner, rules, r.deps(id, owner))
		}
		got, ok := r.adopt(owner, c, gen)
		if !ok {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			continue
		}
		if got == c {
			r.save(c.ID(), owner, c.State())
			if !fresh {
				log.Printf("[onboarding] resumed wizard=%s for %s at stage %s", c.ID(), owner, c.State().Stage)
			}
		}
		return got, nil
	}
}

// Get returns the admin's live or snapshotted wizard, or ErrNoWizard.
func (r *Registry) Get(ctx context.Context, owner string) (*onboarding.Controller, error) {
	c, gen := r.live(owner)
	if c != nil {
		return c, nil
	}
	c, err := r.resume(ctx, owner)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNoWizard
	}
	got, ok := r.adopt(owner, c, gen)
	if !ok {
		return nil, ErrNoWizard
	}
	if got == c {
		r.save(c.ID(), owner, c.State())
		log.Printf("[onboarding] resumed wizard=%s for %s at stage %s", c.ID(), owner, c.State().Stage)
	}
	return got, nil
}

// Teardown closes the admin's wizard, releasing its preview, and forgets
// its snapshot. A wizard with a submission in flight is left alone and
// onboarding.ErrBusy is returned.
func (r *Registry) Teardown(ctx context.Context, owner string) error {
	c, _ := r.live(owner)
	if c != nil {
		if err := c.Close(ctx); err != nil {
			return err
		}
	}

	r.mu.Lock()
	if cur, ok := r.wizards[owner]; ok && cur == c {
		delete(r.wizards, owner)
	}
	r.gen[owner]++
	r.mu.Unlock()

	if r.cfg.Snapshots == nil {
		return nil
	}
	return r.cfg.Snapshots.Delete(ctx, owner)
}

// CloseAll releases every idle wizard's preview. Snapshots are kept so
// the wizards resume after a restart.
func (r *Registry) CloseAll(ctx context.Context) {
	r.mu.Lock()
	live := r.wizards
	r.wizards = map[string]*onboarding.Controller{}
	r.mu.Unlock()

	for owner, c := range live {
		if err := c.Close(ctx); err != nil {
			log.Printf("[onboarding] close wizard=%s for %s: %v", c.ID(), owner, err)
		}
	}
}

// live returns the admin's wizard, if any, and the teardown generation
// observed with it.
func (r *Registry) live(owner string) (*onboarding.Controller, uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.wizards[owner], r.gen[owner]
}

// adopt installs c unless another request got there first, in which case
// the earlier wizard is returned. ok is false when the admin tore the
// wizard down since gen was observed.
func (r *Registry) adopt(owner string, c *onboarding.Controller, gen uint64) (*onboarding.Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.wizards[owner]; ok {
		return cur, true
	}
	if r.gen[owner] != gen {
		return nil, false
	}
	r.wizards[owner] = c
	return c, true
}

// resume rebuilds a wizard from the admin's snapshot. A failed load is
// treated as no snapshot.
func (r *Registry) resume(ctx context.Context, owner string) (*onboarding.Controller, error) {
	if r.cfg.Snapshots == nil {
		return nil, nil
	}
	snap, ok, err := r.cfg.Snapshots.Load(ctx, owner)
	if err != nil {
		log.Printf("[onboarding] snapshot load for %s failed: %v", owner, err)
		return nil, nil
	}
	if !ok {
		return nil, nil
	}
	id := snap.WizardID
	if id == "" {
		id = uuid.NewString()
	}
	return onboarding.ResumeController(id, owner, snap.State, r.deps(id, owner)), nil
}

func (r *Registry) deps(wizardID, owner string) onboarding.Deps {
	return onboarding.Deps{
		Store:         r.cfg.Store,
		Previews:      r.cfg.Previews,
		Audit:         r.cfg.Audit,
		SubmitTimeout: r.cfg.SubmitTimeout,
		Describe:      r.cfg.Describe,
		OnCommit: func(s onboarding.State) {
			r.save(wizardID, owner, s)
		},
	}
}

func (r *Registry) save(wizardID, owner string, s onboarding.State) {
	if r.cfg.Snapshots == nil {
		return
	}
	err := r.cfg.Snapshots.Save(context.Background(), wizardsnap.Snapshot{WizardID: wizardID, Owner: owner, State: s})
	if err != nil {
		log.Printf("[onboarding] snapshot save for %s failed: %v", owner, err)
	}
}
