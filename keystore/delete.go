package keystore

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlexZinkM/ether-keystore/internal/model"
	"github.com/AlexZinkM/ether-keystore/internal/storage"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Delete removes w from the registry. For a real wallet the stored key and
// the password on file are removed first and put back if the registry write
// fails. Deleting a wallet that is not registered fails with ErrUnknownWallet.
func (k *Keystore) Delete(ctx context.Context, w model.Wallet) error {
	unlock := k.locks.Lock(w.Address)
	defer unlock()

	if registered, ok := k.registry.Lookup(w.Address); !ok || registered != w {
		return fmt.Errorf("%w: %s", model.ErrUnknownWallet, w.Address.Hex())
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx = context.WithoutCancel(ctx)

	var purged *purgedSecrets
	if w.Type == model.WalletTypeReal {
		var err error
		if purged, err = k.purgeSecrets(ctx, w); err != nil {
			return err
		}
		defer clear(purged.password)
	}

	if err := k.registry.Remove(ctx, w); err != nil {
		if purged != nil {
			k.restoreSecrets(ctx, purged)
		}
		return err
	}

	k.log.Info("wallet deleted", zap.String("address", w.Address.Hex()), zap.Stringer("type", w.Type))
	return nil
}

// purgedSecrets is what purgeSecrets removed, kept until the registry entry is gone.
type purgedSecrets struct {
	address     common.Address
	key         []byte
	hadKey      bool
	password    []byte
	hadPassword bool
}

// purgeSecrets deletes the key and the password of a real wallet.
// A missing key or password is not an error so that a half-finished delete can be retried.
func (k *Keystore) purgeSecrets(ctx context.Context, w model.Wallet) (*purgedSecrets, error) {
	id := w.Address.Hex()
	p := &purgedSecrets{address: w.Address}

	var err error
	if p.key, p.hadKey, err = k.keys.Key(ctx, w.Address); err != nil {
		return nil, &model.StorageError{Op: "read key", Err: err}
	}
	if p.password, p.hadPassword, err = k.vault.Get(id); err != nil {
		return nil, &model.StorageError{Op: "read password", Err: err}
	}

	if p.hadKey {
		if err := k.keys.DeleteKey(ctx, w.Address); err != nil && !errors.Is(err, storage.ErrNotFound) {
			clear(p.password)
			return nil, &model.StorageError{Op: "delete key", Err: err}
		}
	}
	if _, err := k.vault.Delete(id); err != nil {
		p.hadPassword = false // still on file
		k.restoreSecrets(ctx, p)
		clear(p.password)
		return nil, &model.StorageError{Op: "delete password", Err: err}
	}
	return p, nil
}

// restoreSecrets puts back what purgeSecrets removed.
func (k *Keystore) restoreSecrets(ctx context.Context, p *purgedSecrets) {
	if p.hadKey {
		if err := k.keys.PutKey(ctx, p.address, p.key); err != nil {
			k.log.Error("rollback: failed to restore key", zap.String("address", p.address.Hex()), zap.Error(err))
		}
	}
	if p.hadPassword {
		if err := k.vault.Set(p.address.Hex(), p.password); err != nil {
			k.log.Error("rollback: failed to restore password", zap.String("address", p.address.Hex()), zap.Error(err))
		}
	}
}
