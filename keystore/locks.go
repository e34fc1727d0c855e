package keystore

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// addressLocks hands out one RWMutex per address, dropped when nobody holds it.
type addressLocks struct {
	mu    sync.Mutex
	locks map[common.Address]*addressLock
}

type addressLock struct {
	sync.RWMutex
	refs int
}

func newAddressLocks() *addressLocks {
	return &addressLocks{locks: make(map[common.Address]*addressLock)}
}

// Lock takes the write side for addr and returns the matching unlock.
func (l *addressLocks) Lock(addr common.Address) (unlock func()) {
	lk := l.acquire(addr)
	lk.Lock()
	return func() {
		lk.Unlock()
		l.release(addr, lk)
	}
}

// RLock takes the read side for addr and returns the matching unlock.
func (l *addressLocks) RLock(addr common.Address) (unlock func()) {
	lk := l.acquire(addr)
	lk.RLock()
	return func() {
		lk.RUnlock()
		l.release(addr, lk)
	}
}

func (l *addressLocks) acquire(addr common.Address) *addressLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	lk, ok := l.locks[addr]
	if !ok {
		lk = &addressLock{}
		l.locks[addr] = lk
	}
	lk.refs++
	return lk
}

func (l *addressLocks) release(addr common.Address, lk *addressLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lk.refs--
	if lk.refs == 0 {
		delete(l.locks, addr)
	}
}
