package onboarding

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// Deps are the collaborators of one wizard.
type Deps struct {
	Store         Persister
	Previews      PreviewStore
	Audit         AuditSink
	SubmitTimeout time.Duration

	// Describe turns a submission failure into banner text.
	Describe func(error) string

	// OnCommit runs under the controller lock after every committed
	// state change, including entering Submitting.
	OnCommit func(State)
}

// Controller owns one wizard. Events are processed one at a time; while a
// submission is pending every user action gets ErrBusy.
type Controller struct {
	id    string
	owner string

	mu       sync.Mutex
	state    State
	preview  *Preview
	closed   bool
	coord    *Coordinator
	previews PreviewStore
	describe func(error) string
	onCommit func(State)
}

func NewController(id, owner string, rules Rules, deps Deps) *Controller {
	return newController(id, owner, Initial(rules), deps)
}

// ResumeController rebuilds a wizard from a saved state.
func ResumeController(id, owner string, s State, deps Deps) *Controller {
	return newController(id, owner, Restore(s), deps)
}

func newController(id, owner string, s State, deps Deps) *Controller {
	describe := deps.Describe
	if describe == nil {
		describe = DescribeSubmitError
	}
	return &Controller{
		id:       id,
		owner:    owner,
		state:    s,
		coord:    NewCoordinator(deps.Store, deps.Audit, deps.SubmitTimeout),
		previews: deps.Previews,
		describe: describe,
		onCommit: deps.OnCommit,
	}
}

func (c *Controller) ID() string    { return c.id }
func (c *Controller) Owner() string { return c.owner }

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// Dispatch applies one user event. A confirmed review triggers the
// persistence call before Dispatch returns; the call does not observe
// cancellation of ctx and is bounded by the submit timeout instead.
func (c *Controller) Dispatch(ctx context.Context, ev Event) (View, error) {
	c.mu.Lock()
	if c.closed {
		defer c.mu.Unlock()
		return c.viewLocked(), ErrClosed
	}
	if c.state.Stage == StageSubmitting {
		defer c.mu.Unlock()
		return c.viewLocked(), ErrBusy
	}
	switch ev.(type) {
	case SubmitSucceeded, SubmitFailed, StartOver:
		defer c.mu.Unlock()
		return c.viewLocked(), fmt.Errorf("%w: %s is not a user action", ErrInvalidTransition, ev.EventName())
	}

	next, err := Transition(c.state, ev)
	if err != nil && !IsValidation(err) {
		defer c.mu.Unlock()
		return c.viewLocked(), err
	}
	c.commitLocked(next)
	if err != nil || next.Stage != StageSubmitting {
		defer c.mu.Unlock()
		return c.viewLocked(), err
	}

	draft, locations := next.Draft, next.Copies.Locations()
	c.mu.Unlock()

	id, serr := c.coord.Submit(context.WithoutCancel(ctx), c.id, c.owner, draft, locations)

	c.mu.Lock()
	defer c.mu.Unlock()
	if serr != nil {
		failed, _ := Transition(c.state, SubmitFailed{Err: errors.New(c.describe(serr))})
		c.commitLocked(failed)
		return c.viewLocked(), serr
	}

	done, _ := Transition(c.state, SubmitSucceeded{ID: id})
	v := ViewOf(c.id, done, nil)
	c.releasePreviewLocked(ctx)
	fresh, _ := Transition(done, StartOver{})
	c.commitLocked(fresh)
	return v, nil
}

// SelectImage replaces the current preview. The new preview is created
// first; the old one is released only after that succeeds.
func (c *Controller) SelectImage(ctx context.Context, img ImageUpload) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return c.viewLocked(), ErrClosed
	}
	if c.state.Stage == StageSubmitting {
		return c.viewLocked(), ErrBusy
	}
	if c.state.Stage != StageCollectingBookDetails {
		return c.viewLocked(), fmt.Errorf("%w: select_image in stage %s", ErrInvalidTransition, c.state.Stage)
	}
	if c.previews == nil {
		return c.viewLocked(), errors.New("onboarding: image previews are not configured")
	}

	p, err := c.previews.Create(ctx, c.id, img)
	if err != nil {
		return c.viewLocked(), fmt.Errorf("create preview: %w", err)
	}
	c.releasePreviewLocked(ctx)
	c.preview = &p
	return c.viewLocked(), nil
}

// Close tears the wizard down and releases its preview. Like every other
// user action it is refused with ErrBusy while a submission is pending.
// Closing twice is a no-op.
func (c *Controller) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	if c.state.Stage == StageSubmitting {
		return ErrBusy
	}
	c.releasePreviewLocked(ctx)
	c.closed = true
	return nil
}

// commitLocked installs s. A closed wizard no longer reports commits, so
// it can never overwrite the snapshot of a wizard that replaced it.
func (c *Controller) commitLocked(s State) {
	c.state = s
	if c.onCommit != nil && !c.closed {
		c.onCommit(s.clone())
	}
}

func (c *Controller) releasePreviewLocked(ctx context.Context) {
	if c.preview == nil || c.previews == nil {
		c.preview = nil
		return
	}
	p := *c.preview
	c.preview = nil
	if err := c.previews.Release(context.WithoutCancel(ctx), p); err != nil {
		log.Printf("[onboarding] wizard=%s release preview %s failed: %v", c.id, p.Key, err)
	}
}

func (c *Controller) viewLocked() View {
	return ViewOf(c.id, c.state, c.preview)
}
