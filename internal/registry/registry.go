// Package registry keeps the ordered list of wallets and the recently used pointer.
// State lives in memory and is written through to a storage.WalletStore.
package registry

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/AlexZinkM/ether-keystore/internal/model"
	"github.com/AlexZinkM/ether-keystore/internal/storage"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Registry holds at most one wallet per address, in insertion order.
type Registry struct {
	mu      sync.RWMutex
	store   storage.WalletStore
	wallets []model.Wallet
	recent  *common.Address
	log     *zap.Logger
}

// Open loads the registry from store. A persisted recently used address that no
// longer matches a wallet is dropped.
func Open(ctx context.Context, store storage.WalletStore, log *zap.Logger) (*Registry, error) {
	if log == nil {
		log = zap.NewNop()
	}

	wallets, err := store.Wallets(ctx)
	if err != nil {
		return nil, &model.StorageError{Op: "load wallets", Err: err}
	}
	recent, err := store.RecentlyUsed(ctx)
	if err != nil {
		return nil, &model.StorageError{Op: "load recently used", Err: err}
	}

	r := &Registry{store: store, wallets: wallets, log: log}
	if recent != nil {
		if r.indexOf(*recent) >= 0 {
			r.recent = recent
		} else {
			log.Warn("dropping stale recently used wallet", zap.String("address", recent.Hex()))
			if err := store.SetRecentlyUsed(ctx, nil); err != nil {
				return nil, &model.StorageError{Op: "clear recently used", Err: err}
			}
		}
	}

	log.Debug("wallet registry loaded", zap.Int("wallets", len(wallets)))
	return r, nil
}

// Wallets returns a copy of all wallets in insertion order
func (r *Registry) Wallets() []model.Wallet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.wallets)
}

// HasWallets reports whether any wallet is registered
func (r *Registry) HasWallets() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.wallets) > 0
}

// Lookup returns the wallet registered at addr
func (r *Registry) Lookup(addr common.Address) (model.Wallet, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexOf(addr)
	if i < 0 {
		return model.Wallet{}, false
	}
	return r.wallets[i], true
}

// Add appends w. Fails with ErrDuplicateAccount if any wallet, real or watch, has the same address.
func (r *Registry) Add(ctx context.Context, w model.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(w.Address) >= 0 {
		return fmt.Errorf("%w: %s", model.ErrDuplicateAccount, w.Address.Hex())
	}
	if err := r.store.AddWallet(ctx, w); err != nil {
		return &model.StorageError{Op: "add wallet", Err: err}
	}
	r.wallets = append(r.wallets, w)
	return nil
}

// AddWatch registers a watch-only wallet for addr
func (r *Registry) AddWatch(ctx context.Context, addr common.Address) (model.Wallet, error) {
	w := model.WatchWallet(addr)
	if err := r.Add(ctx, w); err != nil {
		return model.Wallet{}, err
	}
	return w, nil
}

// Remove deletes w. Fails with ErrUnknownWallet unless exactly w is registered.
// The recently used pointer is cleared when it refers to w.
func (r *Registry) Remove(ctx context.Context, w model.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(w.Address)
	if i < 0 || r.wallets[i] != w {
		return fmt.Errorf("%w: %s", model.ErrUnknownWallet, w.Address.Hex())
	}

	if err := r.store.RemoveWallet(ctx, w.Address); err != nil {
		return &model.StorageError{Op: "remove wallet", Err: err}
	}
	r.wallets = slices.Delete(r.wallets, i, i+1)

	if r.recent != nil && *r.recent == w.Address {
		r.recent = nil
		// a stale persisted pointer is dropped on the next Open
		if err := r.store.SetRecentlyUsed(ctx, nil); err != nil {
			r.log.Warn("failed to clear recently used wallet", zap.String("address", w.Address.Hex()), zap.Error(err))
		}
	}
	return nil
}

// RecentlyUsed returns the recently used wallet, ok is false when unset
func (r *Registry) RecentlyUsed() (model.Wallet, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.recent == nil {
		return model.Wallet{}, false
	}
	return r.wallets[r.indexOf(*r.recent)], true
}

// SetRecentlyUsed points the recently used wallet at w, which must be registered.
func (r *Registry) SetRecentlyUsed(ctx context.Context, w model.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(w.Address)
	if i < 0 || r.wallets[i] != w {
		return fmt.Errorf("%w: %s", model.ErrUnknownWallet, w.Address.Hex())
	}
	addr := w.Address
	if err := r.store.SetRecentlyUsed(ctx, &addr); err != nil {
		return &model.StorageError{Op: "set recently used", Err: err}
	}
	r.recent = &addr
	return nil
}

// ClearRecentlyUsed unsets the recently used wallet
func (r *Registry) ClearRecentlyUsed(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.SetRecentlyUsed(ctx, nil); err != nil {
		return &model.StorageError{Op: "clear recently used", Err: err}
	}
	r.recent = nil
	return nil
}

func (r *Registry) indexOf(addr common.Address) int {
	return slices.IndexFunc(r.wallets, func(w model.Wallet) bool { return w.Address == addr })
}
