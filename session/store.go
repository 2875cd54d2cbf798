package session

import (
	"context"
	"time"
)

// Store persists session state. Update is conditional on the revision
// recorded in the passed state: it only commits when the persisted
// revision still matches, then bumps it by one. That makes a lost race
// visible as ErrRevisionConflict instead of a silent overwrite.
type Store interface {
	Get(ctx context.Context, sessionID string) (*State, error)
	Put(ctx context.Context, state *State) error
	Update(ctx context.Context, state *State) error
	Delete(ctx context.Context, sessionID string) error
}

// Locker grants a short exclusive lease per session so only one spin
// can be in flight at a time. Acquire returns ErrLocked when the lease
// is already held; the returned release frees it early.
type Locker interface {
	Acquire(ctx context.Context, sessionID string, ttl time.Duration) (release func(), err error)
}
