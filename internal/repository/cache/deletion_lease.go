package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go-todo-backend/internal/domain"

	goredis "github.com/redis/go-redis/v9"
)

const (
	leasePrefix     = "delete-user:"
	pendingLeaseTTL = 7 * 24 * time.Hour
)

// KEYS[1] = lease key, ARGV[1] = ttl seconds.
// Takes the lease when it is free or pending and reports what was there.
const acquireLeaseScript = `
local cur = redis.call('GET', KEYS[1])
if (not cur) or cur == 'pending' then
    redis.call('SET', KEYS[1], 'running', 'EX', ARGV[1])
    if not cur then
        return 'acquired'
    end
    return cur
end
return cur
`

type leaseEntry struct {
	state   domain.LeaseState
	expires time.Time
}

// DeletionLease is the per-user idempotency record for the deletion routine.
type DeletionLease struct {
	client *goredis.Client

	mu      sync.Mutex
	entries map[string]leaseEntry
	now     func() time.Time
}

func NewDeletionLease(client *goredis.Client) *DeletionLease {
	return &DeletionLease{
		client:  client,
		entries: make(map[string]leaseEntry),
		now:     time.Now,
	}
}

func (l *DeletionLease) Acquire(ctx context.Context, userID string, ttl time.Duration) (domain.LeaseState, error) {
	key := leasePrefix + userID

	if l.client != nil {
		res, err := l.client.Eval(ctx, acquireLeaseScript, []string{key}, int(ttl.Seconds())).Text()
		if err != nil {
			return "", fmt.Errorf("acquire deletion lease: %w", err)
		}
		return domain.LeaseState(res), nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if ok && !l.now().Before(e.expires) {
		ok = false
	}
	switch {
	case !ok:
		l.entries[key] = leaseEntry{state: domain.LeaseBusy, expires: l.now().Add(ttl)}
		return domain.LeaseAcquired, nil
	case e.state == domain.LeasePending:
		l.entries[key] = leaseEntry{state: domain.LeaseBusy, expires: l.now().Add(ttl)}
		return domain.LeasePending, nil
	}
	return e.state, nil
}

func (l *DeletionLease) MarkPending(ctx context.Context, userID string) error {
	return l.set(ctx, userID, domain.LeasePending, pendingLeaseTTL)
}

func (l *DeletionLease) Complete(ctx context.Context, userID string, ttl time.Duration) error {
	return l.set(ctx, userID, domain.LeaseDone, ttl)
}

func (l *DeletionLease) Release(ctx context.Context, userID string) error {
	key := leasePrefix + userID
	if l.client != nil {
		if err := l.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("release deletion lease: %w", err)
		}
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key)
	return nil
}

func (l *DeletionLease) set(ctx context.Context, userID string, state domain.LeaseState, ttl time.Duration) error {
	key := leasePrefix + userID
	if l.client != nil {
		if err := l.client.Set(ctx, key, string(state), ttl).Err(); err != nil {
			return fmt.Errorf("set deletion lease %s: %w", state, err)
		}
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[key] = leaseEntry{state: state, expires: l.now().Add(ttl)}
	return nil
}

var _ domain.DeletionLease = (*DeletionLease)(nil)
