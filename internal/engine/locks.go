package engine

import "sync"

// accountLocks hands out one mutex per account, freed when unused.
type accountLocks struct {
	mu    sync.Mutex
	locks map[int64]*accountLock
}

type accountLock struct {
	sync.Mutex
	refs int
}

func (l *accountLocks) lock(accountID int64) (unlock func()) {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[int64]*accountLock)
	}
	al, ok := l.locks[accountID]
	if !ok {
		al = &accountLock{}
		l.locks[accountID] = al
	}
	al.refs++
	l.mu.Unlock()

	al.Lock()
	return func() {
		al.Unlock()
		l.mu.Lock()
		al.refs--
		if al.refs == 0 {
			delete(l.locks, accountID)
		}
		l.mu.Unlock()
	}
}
