package lock

import (
	"context"
	"sync"
	"time"
)

type localSlot struct {
	ch   chan struct{}
	refs int
}

// LocalLocker is an in-process keyed mutex. It only serializes writers of
// the same process.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]*localSlot
	wait  time.Duration
}

func NewLocalLocker(wait time.Duration) *LocalLocker {
	return &LocalLocker{
		slots: make(map[string]*localSlot),
		wait:  wait,
	}
}

func (l *LocalLocker) Acquire(ctx context.Context, key string) (Release, error) {
	slot := l.ref(key)

	waitCtx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	select {
	case slot.ch <- struct{}{}:
	case <-waitCtx.Done():
		l.unref(key, slot)
		return nil, waitError(ctx)
	}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			<-slot.ch
			l.unref(key, slot)
		})
		return nil
	}, nil
}

func (l *LocalLocker) ref(key string) *localSlot {
	l.mu.Lock()
	defer l.mu.Unlock()

	slot, ok := l.slots[key]
	if !ok {
		slot = &localSlot{ch: make(chan struct{}, 1)}
		l.slots[key] = slot
	}
	slot.refs++
	return slot
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
