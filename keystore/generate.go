package keystore

import (
	"context"
	"fmt"

	"github.com/AlexZinkM/ether-keystore/internal/model"

	"go.uber.org/zap"
)

// CreateAccount generates a new key, stores it encrypted under password,
// keeps password in the vault and registers a real wallet.
// password must be []byte for security (caller should zero it after use)
func (k *Keystore) CreateAccount(ctx context.Context, password []byte) (model.Account, error) {
	if err := ctx.Err(); err != nil {
		return model.Account{}, err
	}

	blob, account, err := k.codec.Generate(password)
	if err != nil {
		return model.Account{}, fmt.Errorf("failed to generate account: %w", err)
	}

	unlock := k.locks.Lock(account.Address)
	defer unlock()

	if _, err := k.commit(ctx, blob, password); err != nil {
		return model.Account{}, err
	}

	k.log.Info("account created", zap.String("address", account.String()))
	return account, nil
}
