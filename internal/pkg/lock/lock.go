// Package lock serializes critical sections per key, either across processes
// through Redis or within one process.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrNotAcquired is returned when the lock could not be taken before the wait expired.
	ErrNotAcquired = errors.New("lock not acquired")
	// ErrNotHeld is returned by Release when the lock already expired or was taken by someone else.
	ErrNotHeld = errors.New("lock not held")
)

// Release frees a lock obtained from Acquire.
type Release func(ctx context.Context) error

// Locker hands out exclusive locks keyed by an arbitrary string.
type Locker interface {
	Acquire(ctx context.Context, key string) (Release, error)
}

// releaseScript deletes the key only when it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements Locker with SET NX PX and a token-checked release.
type RedisLocker struct {
	client     *redis.Client
	prefix     string
	ttl        time.Duration
	maxWait    time.Duration
	retryDelay time.Duration
}

// NewRedisLocker creates a RedisLocker. ttl bounds how long a crashed holder can block others;
// callers wait at most ttl to acquire.
func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		client:     client,
		prefix:     "lock:",
		ttl:        ttl,
		maxWait:    ttl,
		retryDelay: 25 * time.Millisecond,
	}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (Release, error) {
	redisKey := l.prefix + key
	token := uuid.NewString()

	deadline := time.NewTimer(l.maxWait)
	defer deadline.Stop()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %q: %w", key, err)
		}
		if ok {
			return func(ctx context.Context) error {
				n, err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Int()
				if err != nil {
					return fmt.Errorf("release lock %q: %w", key, err)
				}
				if n == 0 {
					return ErrNotHeld
				}
				return nil
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %q: %v", ErrNotAcquired, key, ctx.Err())
		case <-deadline.C:
			return nil, fmt.Errorf("%w: %q: waited %s", ErrNotAcquired, key, l.maxWait)
		case <-time.After(l.retryDelay):
		}
	}
}

// LocalLocker implements Locker for a single process. A key's slot lives only
// while someone holds or waits for it.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]*localSlot
}

type localSlot struct {
	ch   chan struct{}
	refs int
}

// NewLocalLocker creates an in-process Locker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[string]*localSlot)}
}

func (l *LocalLocker) Acquire(ctx context.Context, key string) (Release, error) {
	l.mu.Lock()
	slot, ok := l.slots[key]
	if !ok {
		slot = &localSlot{ch: make(chan struct{}, 1)}
		l.slots[key] = slot
	}
	slot.refs++
	l.mu.Unlock()

	select {
	case slot.ch <- struct{}{}:
	case <-ctx.Done():
		l.unref(key, slot)
		return nil, fmt.Errorf("%w: %q: %v", ErrNotAcquired, key, ctx.Err())
	}

	var once sync.Once
	return func(context.Context) error {
		released := false
		once.Do(func() {
			<-slot.ch
			l.unref(key, slot)
			released = true
		})
		if !released {
			return ErrNotHeld
		}
		return nil
	}, nil
}

func (l *LocalLocker) unref(key string, slot *localSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, key)
	}
}

func (l *LocalLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}
