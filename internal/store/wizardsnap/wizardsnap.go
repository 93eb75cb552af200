// Package wizardsnap persists onboarding wizard state in Redis so a
// wizard survives process restarts and registry eviction.
package wizardsnap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/5w1tchy/books-admin/internal/onboarding"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "onb:wiz:"
	DefaultTTL = 24 * time.Hour
	opTimeout  = 500 * time.Millisecond
)

type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type Snapshot struct {
	WizardID string           `json:"wizard_id"`
	Owner    string           `json:"owner"`
	State    onboarding.State `json:"state"`
	SavedAt  time.Time        `json:"saved_at"`
}

type Store struct {
	rdb kv
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *Store {
	return newStore(rdb, ttl)
}

func newStore(rdb kv, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{rdb: rdb, ttl: ttl}
}

func Key(owner string) string { return keyPrefix + owner }

// Save overwrites the owner's snapshot and refreshes its TTL.
func (s *Store) Save(ctx context.Context, snap Snapshot) error {
	if snap.Owner == "" {
		return errors.New("wizardsnap: empty owner")
	}
	if snap.SavedAt.IsZero() {
		snap.SavedAt = time.Now().UTC()
	}
	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("wizardsnap: encode: %w", err)
	}
	cctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := s.rdb.Set(cctx, Key(snap.Owner), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("wizardsnap: save %s: %w", snap.Owner, err)
	}
	return nil
}

// Load returns the owner's snapshot. ok is false when none is stored.
func (s *Store) Load(ctx context.Context, owner string) (snap Snapshot, ok bool, err error) {
	cctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	raw, err := s.rdb.Get(cctx, Key(owner)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("wizardsnap: load %s: %w", owner, err)
	}
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, false, fmt.Errorf("wizardsnap: decode %s: %w", owner, err)
	}
	return snap, true, nil
}

func (s *Store) Delete(ctx context.Context, owner string) error {
	cctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := s.rdb.Del(cctx, Key(owner)).Err(); err != nil {
		return fmt.Errorf("wizardsnap: delete %s: %w", owner, err)
	}
	return nil
}
