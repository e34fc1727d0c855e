// Package storage persists non-secret keystore data: the ordered wallet list,
// the recently used wallet and the encrypted key blobs. Passwords never go here.
package storage

import (
	"context"
	"errors"

	"github.com/AlexZinkM/ether-keystore/internal/model"

	"github.com/ethereum/go-ethereum/common"
)

// ErrNotFound is returned when removing a wallet or key that is not stored
var ErrNotFound = errors.New("not found")

// WalletStore persists the wallet registry.
type WalletStore interface {
	// Wallets returns all wallets in insertion order.
	Wallets(ctx context.Context) ([]model.Wallet, error)
	// AddWallet appends w.
	AddWallet(ctx context.Context, w model.Wallet) error
	// RemoveWallet deletes the wallet at addr.
	RemoveWallet(ctx context.Context, addr common.Address) error
	// RecentlyUsed returns the recently used address, nil if unset.
	RecentlyUsed(ctx context.Context) (*common.Address, error)
	// SetRecentlyUsed stores addr; nil clears it.
	SetRecentlyUsed(ctx context.Context, addr *common.Address) error
}

// KeyStore persists encrypted key blobs keyed by address.
type KeyStore interface {
	Key(ctx context.Context, addr common.Address) (blob []byte, ok bool, err error)
	PutKey(ctx context.Context, addr common.Address, blob []byte) error
	DeleteKey(ctx context.Context, addr common.Address) error
}

// Store is a WalletStore and a KeyStore backed by the same medium.
type Store interface {
	WalletStore
	KeyStore
	Close() error
}
