package keystore

import (
	"context"
	"fmt"

	"github.com/AlexZinkM/ether-keystore/internal/crypto"
	"github.com/AlexZinkM/ether-keystore/internal/model"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// ImportKeystore imports a v3 keystore document encrypted under password and
// stores it under newPassword. The address must not be registered yet.
//
// Fails with ErrMalformedFormat, ErrCorruptBlob, ErrInvalidPassword or
// ErrDuplicateAccount and changes nothing in that case.
func (k *Keystore) ImportKeystore(ctx context.Context, keyJSON, password, newPassword []byte) (model.Account, error) {
	blob, err := crypto.Parse(keyJSON)
	if err != nil {
		return model.Account{}, err
	}
	return k.importBlob(ctx, blob, password, newPassword)
}

// ImportPrivateKey imports a raw 32-byte secp256k1 key and stores it under
// newPassword. passphrase is accepted for symmetry with ConvertPrivateKey and
// does not affect the stored blob.
func (k *Keystore) ImportPrivateKey(ctx context.Context, rawKey, passphrase, newPassword []byte) (model.Account, error) {
	if err := ctx.Err(); err != nil {
		return model.Account{}, err
	}
	key, err := ethcrypto.ToECDSA(rawKey)
	if err != nil {
		return model.Account{}, fmt.Errorf("%w: invalid private key: %v", model.ErrMalformedFormat, err)
	}
	defer crypto.ZeroKey(key)

	blob, err := k.codec.Encrypt(key, newPassword)
	if err != nil {
		return model.Account{}, fmt.Errorf("failed to import private key: %w", err)
	}

	account := blob.Account()
	unlock := k.locks.Lock(account.Address)
	defer unlock()

	if _, err := k.commit(ctx, blob, newPassword); err != nil {
		return model.Account{}, err
	}

	k.log.Info("private key imported", zap.String("address", account.String()))
	return account, nil
}

// ConvertPrivateKey wraps a raw 32-byte key in a keystore document encrypted
// under passphrase. Nothing is stored.
func (k *Keystore) ConvertPrivateKey(rawKey, passphrase []byte) ([]byte, error) {
	blob, err := k.codec.PrivateKeyToBlob(rawKey, passphrase)
	if err != nil {
		return nil, err
	}
	return blob.Marshal()
}

func (k *Keystore) importBlob(ctx context.Context, blob *crypto.Blob, password, newPassword []byte) (model.Account, error) {
	if err := ctx.Err(); err != nil {
		return model.Account{}, err
	}

	// validates password as a side effect
	reencrypted, err := k.codec.Reencrypt(blob, password, newPassword)
	if err != nil {
		return model.Account{}, fmt.Errorf("failed to import keystore: %w", err)
	}

	account := reencrypted.Account()
	unlock := k.locks.Lock(account.Address)
	defer unlock()

	if _, err := k.commit(ctx, reencrypted, newPassword); err != nil {
		return model.Account{}, err
	}

	k.log.Info("account imported", zap.String("address", account.String()))
	return account, nil
}
