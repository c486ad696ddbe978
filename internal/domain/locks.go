package domain

import (
	"fmt"
	"sync"
	"time"
)

// keyedLocks hands out one advisory mutex per key. Acquire waits up to the
// given budget before giving up with ErrAlreadyInProgress, so a stuck
// operation never wedges callers indefinitely.
type keyedLocks struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{slots: map[string]chan struct{}{}}
}

func (l *keyedLocks) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[key] = ch
	}
	return ch
}

// Acquire returns a release func on success. A zero or negative wait means
// try-once.
func (l *keyedLocks) Acquire(key string, wait time.Duration) (func(), error) {
	ch := l.slot(key)

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	default:
	}

	if wait <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyInProgress, key)
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-timer.C:
		return nil, fmt.Errorf("%w: %s", ErrAlreadyInProgress, key)
	}
}
