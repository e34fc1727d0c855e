// Package keystore manages password-protected Ethereum accounts: it creates,
// imports, exports and deletes them, and signs with keys that are decrypted
// only for the duration of one call.
//
// Encrypted keys go to a storage.KeyStore, passwords to a vault.Vault and
// wallets to a registry.Registry. Operations on one address are serialized;
// different addresses proceed independently.
package keystore

import (
	"context"
	"fmt"
	"runtime"

	"github.com/AlexZinkM/ether-keystore/internal/crypto"
	"github.com/AlexZinkM/ether-keystore/internal/model"
	"github.com/AlexZinkM/ether-keystore/internal/registry"
	"github.com/AlexZinkM/ether-keystore/internal/storage"
	"github.com/AlexZinkM/ether-keystore/internal/vault"
	"github.com/AlexZinkM/ether-keystore/internal/worker"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Config tunes a Keystore. Zero values pick defaults.
type Config struct {
	// Params are the scrypt costs for newly encrypted keys (default crypto.StandardParams).
	Params crypto.Params
	// Workers bounds concurrent async operations (default GOMAXPROCS).
	Workers int
	Logger  *zap.Logger
}

// Keystore is the account vault.
type Keystore struct {
	codec    *crypto.Codec
	keys     storage.KeyStore
	vault    vault.Vault
	registry *registry.Registry
	locks    *addressLocks
	pool     *worker.Pool
	log      *zap.Logger
}

// New assembles a Keystore from its collaborators.
func New(keys storage.KeyStore, reg *registry.Registry, v vault.Vault, cfg Config) *Keystore {
	if cfg.Params == (crypto.Params{}) {
		cfg.Params = crypto.StandardParams
	}
	if cfg.Workers < 1 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Keystore{
		codec:    crypto.NewCodec(cfg.Params),
		keys:     keys,
		vault:    v,
		registry: reg,
		locks:    newAddressLocks(),
		pool:     worker.NewPool(cfg.Workers),
		log:      cfg.Logger,
	}
}

// Open loads the wallet registry from store and returns a Keystore keeping keys in the same store.
func Open(ctx context.Context, store storage.Store, v vault.Vault, cfg Config) (*Keystore, error) {
	reg, err := registry.Open(ctx, store, cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open wallet registry: %w", err)
	}
	return New(store, reg, v, cfg), nil
}

// Registry gives read access to wallets and the recently used pointer.
// Changes go through the Keystore so they take the address lock.
func (k *Keystore) Registry() RegistryView {
	return RegistryView{reg: k.registry}
}

// RegistryView is a read-only view of the wallet registry.
type RegistryView struct {
	reg *registry.Registry
}

// Wallets returns all wallets in insertion order.
func (v RegistryView) Wallets() []model.Wallet { return v.reg.Wallets() }

// HasWallets reports whether any wallet is registered.
func (v RegistryView) HasWallets() bool { return v.reg.HasWallets() }

// Lookup returns the wallet registered for addr.
func (v RegistryView) Lookup(addr common.Address) (model.Wallet, bool) { return v.reg.Lookup(addr) }

// RecentlyUsed returns the recently used wallet, ok is false when unset.
func (v RegistryView) RecentlyUsed() (model.Wallet, bool) { return v.reg.RecentlyUsed() }

// SetRecentlyUsed points the recently used wallet at w, which must be registered.
func (k *Keystore) SetRecentlyUsed(ctx context.Context, w model.Wallet) error {
	unlock := k.locks.RLock(w.Address)
	defer unlock()

	return k.registry.SetRecentlyUsed(ctx, w)
}

// ClearRecentlyUsed unsets the recently used wallet.
func (k *Keystore) ClearRecentlyUsed(ctx context.Context) error {
	return k.registry.ClearRecentlyUsed(ctx)
}

// Wait blocks until all async operations have finished.
func (k *Keystore) Wait() {
	k.pool.Wait()
}

// AddWatch registers a watch-only wallet for addr.
func (k *Keystore) AddWatch(ctx context.Context, addr common.Address) (model.Wallet, error) {
	unlock := k.locks.Lock(addr)
	defer unlock()

	w, err := k.registry.AddWatch(ctx, addr)
	if err != nil {
		return model.Wallet{}, err
	}
	k.log.Info("watch wallet added", zap.String("address", addr.Hex()))
	return w, nil
}

// SetPassword stores password for account in the vault. false means the vault refused it.
func (k *Keystore) SetPassword(account model.Account, password []byte) bool {
	unlock := k.locks.Lock(account.Address)
	defer unlock()

	if err := k.vault.Set(account.Address.Hex(), password); err != nil {
		k.log.Error("failed to store password", zap.String("address", account.String()), zap.Error(err))
		return false
	}
	return true
}

// GetPassword returns the password on file for account.
// ok is false when there is none. Caller should zero the returned slice after use.
func (k *Keystore) GetPassword(account model.Account) ([]byte, bool) {
	password, ok, err := k.vault.Get(account.Address.Hex())
	if err != nil {
		k.log.Error("failed to read password", zap.String("address", account.String()), zap.Error(err))
		return nil, false
	}
	return password, ok
}

// loadBlob returns the stored blob for account along with its raw JSON.
func (k *Keystore) loadBlob(ctx context.Context, account model.Account) (*crypto.Blob, []byte, error) {
	if w, ok := k.registry.Lookup(account.Address); ok && w.Type == model.WalletTypeWatch {
		return nil, nil, fmt.Errorf("%w: %s", model.ErrWatchOnlyAccount, account)
	}

	data, ok, err := k.keys.Key(ctx, account.Address)
	if err != nil {
		return nil, nil, &model.StorageError{Op: "read key", Err: err}
	}
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", model.ErrUnknownAccount, account)
	}

	blob, err := crypto.Parse(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: stored key for %s: %v", model.ErrCorruptBlob, account, err)
	}
	return blob, data, nil
}

// commit writes blob, password and the real wallet for a new account.
// Must be called with the address lock held. Nothing is left behind on failure.
func (k *Keystore) commit(ctx context.Context, blob *crypto.Blob, password []byte) (model.Account, error) {
	account := blob.Account()

	if _, ok := k.registry.Lookup(account.Address); ok {
		return model.Account{}, fmt.Errorf("%w: %s", model.ErrDuplicateAccount, account)
	}
	if err := ctx.Err(); err != nil {
		return model.Account{}, err
	}
	// past this point the operation runs to completion
	ctx = context.WithoutCancel(ctx)

	data, err := blob.Marshal()
	if err != nil {
		return model.Account{}, fmt.Errorf("failed to marshal keystore: %w", err)
	}

	if err := k.keys.PutKey(ctx, account.Address, data); err != nil {
		return model.Account{}, &model.StorageError{Op: "write key", Err: err}
	}
	if err := k.vault.Set(account.Address.Hex(), password); err != nil {
		k.rollbackKey(ctx, account)
		return model.Account{}, &model.StorageError{Op: "write password", Err: err}
	}
	if err := k.registry.Add(ctx, model.RealWallet(account)); err != nil {
		k.rollbackKey(ctx, account)
		if _, verr := k.vault.Delete(account.Address.Hex()); verr != nil {
			k.log.Error("rollback: failed to delete password", zap.String("address", account.String()), zap.Error(verr))
		}
		return model.Account{}, err
	}
	return account, nil
}

func (k *Keystore) rollbackKey(ctx context.Context, account model.Account) {
	if err := k.keys.DeleteKey(ctx, account.Address); err != nil {
		k.log.Error("rollback: failed to delete key", zap.String("address", account.String()), zap.Error(err))
	}
}
