package keystore

import (
	"context"
	"fmt"

	"github.com/AlexZinkM/ether-keystore/internal/model"

	"go.uber.org/zap"
)

// Export returns the account's key as a keystore document encrypted under
// newPassword. password must open the stored key. The stored key and the
// password on file are left unchanged.
func (k *Keystore) Export(ctx context.Context, account model.Account, password, newPassword []byte) ([]byte, error) {
	unlock := k.locks.Lock(account.Address)
	defer unlock()

	blob, _, err := k.loadBlob(ctx, account)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	exported, err := k.codec.Reencrypt(blob, password, newPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to export %s: %w", account, err)
	}

	k.log.Info("account exported", zap.String("address", account.String()))
	return exported.Marshal()
}

// UpdatePassword re-encrypts the stored key under newPassword and replaces
// the password on file.
func (k *Keystore) UpdatePassword(ctx context.Context, account model.Account, password, newPassword []byte) error {
	unlock := k.locks.Lock(account.Address)
	defer unlock()

	blob, oldData, err := k.loadBlob(ctx, account)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	updated, err := k.codec.Reencrypt(blob, password, newPassword)
	if err != nil {
		return fmt.Errorf("failed to update password for %s: %w", account, err)
	}
	data, err := updated.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal keystore: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	ctx = context.WithoutCancel(ctx)

	if err := k.keys.PutKey(ctx, account.Address, data); err != nil {
		return &model.StorageError{Op: "write key", Err: err}
	}
	if err := k.vault.Set(account.Address.Hex(), newPassword); err != nil {
		if rerr := k.keys.PutKey(ctx, account.Address, oldData); rerr != nil {
			k.log.Error("rollback: failed to restore key", zap.String("address", account.String()), zap.Error(rerr))
		}
		return &model.StorageError{Op: "write password", Err: err}
	}

	k.log.Info("password updated", zap.String("address", account.String()))
	return nil
}
