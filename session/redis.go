package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Digital-Creators-Team/velvet-slots/db/redis"
)

const (
	stateKeyPrefix = "game:session:velvet-nights:"
	leaseKeyPrefix = "game:lease:velvet-nights:"

	// StateTTL is how long an idle session survives before Redis
	// evicts it. A day covers every realistic resume window.
	StateTTL = 24 * time.Hour
)

// casScript commits a new state only when the stored revision still
// matches the caller's. Returns 1 on commit, -1 on revision mismatch
// and 0 when the key is gone.
const casScript = `
local cur = redis.call('GET', KEYS[1])
if not cur then
  return 0
end
local obj = cjson.decode(cur)
if tostring(obj.revision) ~= ARGV[1] then
  return -1
end
redis.call('SET', KEYS[1], ARGV[2], 'EX', ARGV[3])
return 1
`

// releaseScript frees a lease only if the holder's token still owns it,
// so a slow request cannot release a lease that already expired and was
// re-acquired by someone else.
const releaseScript = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
  return redis.call('DEL', KEYS[1])
end
return 0
`

// RedisStore persists session state as JSON documents and implements
// both Store and Locker on a shared Redis client.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func stateKey(sessionID string) string { return stateKeyPrefix + sessionID }
func leaseKey(sessionID string) string { return leaseKeyPrefix + sessionID }

func (r *RedisStore) Get(ctx context.Context, sessionID string) (*State, error) {
	var st State
	err := r.client.GetJSON(ctx, stateKey(sessionID), &st)
	if errors.Is(err, redis.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	return &st, nil
}

func (r *RedisStore) Put(ctx context.Context, state *State) error {
	state.UpdatedAt = time.Now().UTC()
	if err := r.client.SetJSON(ctx, stateKey(state.SessionID), state, StateTTL); err != nil {
		return fmt.Errorf("store session %s: %w", state.SessionID, err)
	}
	return nil
}

func (r *RedisStore) Update(ctx context.Context, state *State) error {
	prev := state.Revision
	next := *state
	next.Revision = prev + 1
	next.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(&next)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", state.SessionID, err)
	}

	res, err := r.client.Eval(ctx, casScript, []string{stateKey(state.SessionID)},
		prev, string(data), int(StateTTL.Seconds()))
	if err != nil {
		return fmt.Errorf("update session %s: %w", state.SessionID, err)
	}

	switch v, _ := res.(int64); v {
	case 1:
		state.Revision = next.Revision
		state.UpdatedAt = next.UpdatedAt
		return nil
	case 0:
		return ErrNotFound
	default:
		return ErrRevisionConflict
	}
}

func (r *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return r.client.Delete(ctx, stateKey(sessionID))
}

// Acquire takes the session's spin lease via SETNX. The lease TTL
// bounds how long a crashed request can block the session.
func (r *RedisStore) Acquire(ctx context.Context, sessionID string, ttl time.Duration) (func(), error) {
	token := uuid.New().String()
	ok, err := r.client.SetNX(ctx, leaseKey(sessionID), token, ttl)
	if err != nil {
		return nil, fmt.Errorf("acquire lease %s: %w", sessionID, err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_, _ = r.client.Eval(ctx, releaseScript, []string{leaseKey(sessionID)}, token)
	}, nil
}
