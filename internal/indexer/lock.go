package indexer

import "sync/atomic"

// IndexLock is a non-blocking lock; a second index run fails fast instead
// of queueing behind the first.
type IndexLock struct {
	state atomic.Int32 // 0 = unlocked, 1 = locked
}

// TryAcquire reports whether the lock was acquired
func (l *IndexLock) TryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Release releases the lock.
// Must only be called by the goroutine that acquired it.
func (l *IndexLock) Release() {
	l.state.Store(0)
}
