package storage

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/AlexZinkM/ether-keystore/internal/model"

	"github.com/ethereum/go-ethereum/common"
)

// Memory is a Store that lives in process memory
type Memory struct {
	mu      sync.RWMutex
	wallets []model.Wallet
	keys    map[common.Address][]byte
	recent  *common.Address
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{keys: make(map[common.Address][]byte)}
}

func (m *Memory) Wallets(context.Context) ([]model.Wallet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.wallets), nil
}

func (m *Memory) AddWallet(_ context.Context, w model.Wallet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if slices.ContainsFunc(m.wallets, func(existing model.Wallet) bool { return existing.Address == w.Address }) {
		return fmt.Errorf("%w: %s", model.ErrDuplicateAccount, w.Address.Hex())
	}
	m.wallets = append(m.wallets, w)
	return nil
}

func (m *Memory) RemoveWallet(_ context.Context, addr common.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := slices.IndexFunc(m.wallets, func(w model.Wallet) bool { return w.Address == addr })
	if i < 0 {
		return ErrNotFound
	}
	m.wallets = slices.Delete(m.wallets, i, i+1)
	return nil
}

func (m *Memory) RecentlyUsed(context.Context) (*common.Address, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.recent == nil {
		return nil, nil
	}
	addr := *m.recent
	return &addr, nil
}

func (m *Memory) SetRecentlyUsed(_ context.Context, addr *common.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if addr == nil {
		m.recent = nil
		return nil
	}
	a := *addr
	m.recent = &a
	return nil
}

func (m *Memory) Key(_ context.Context, addr common.Address) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	blob, ok := m.keys[addr]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(blob), true, nil
}

func (m *Memory) PutKey(_ context.Context, addr common.Address, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[addr] = slices.Clone(blob)
	return nil
}

func (m *Memory) DeleteKey(_ context.Context, addr common.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.keys[addr]; !ok {
		return ErrNotFound
	}
	delete(m.keys, addr)
	return nil
}

func (m *Memory) Close() error {
	return nil
}
