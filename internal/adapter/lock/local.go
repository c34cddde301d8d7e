package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/srgjo27/hotel_booking/internal/core/domain"
	"github.com/srgjo27/hotel_booking/internal/core/ports"
)

// LocalLocker serializes writers inside one process. ttl is ignored: a local
// lease lives until it is released.
type LocalLocker struct {
	mu      sync.Mutex
	slots   map[string]chan struct{}
	maxWait time.Duration
}

func NewLocalLocker(maxWait time.Duration) *LocalLocker {
	return &LocalLocker{
		slots:   make(map[string]chan struct{}),
		maxWait: maxWait,
	}
}

func (l *LocalLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch, ok := l.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[key] = ch
	}

	return ch
}

func (l *LocalLocker) Acquire(ctx context.Context, key string, _ time.Duration) (ports.Lease, error) {
	ch := l.slot(key)

	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		return &localLease{ch: ch}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, fmt.Errorf("%w: %s", domain.ErrLockNotAcquired, key)
	}
}

type localLease struct {
	once sync.Once
	ch   chan struct{}
}

func (l *localLease) Release(context.Context) error {
	l.once.Do(func() { <-l.ch })
	return nil
}
