package ledger

import "sync"

// borrowerLocks hands out one mutex per borrower and forgets it once no
// caller holds or waits on it.
type borrowerLocks struct {
	mu    sync.Mutex
	locks map[string]*borrowerLock
}

type borrowerLock struct {
	mu   sync.Mutex
	refs int
}

func newBorrowerLocks() *borrowerLocks {
	return &borrowerLocks{locks: make(map[string]*borrowerLock)}
}

func (b *borrowerLocks) lock(borrower string) (unlock func()) {
	b.mu.Lock()
	l, ok := b.locks[borrower]
	if !ok {
		l = &borrowerLock{}
		b.locks[borrower] = l
	}
	l.refs++
	b.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		b.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(b.locks, borrower)
		}
		b.mu.Unlock()
	}
}
