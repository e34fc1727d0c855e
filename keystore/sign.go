package keystore

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/AlexZinkM/ether-keystore/internal/crypto"
	"github.com/AlexZinkM/ether-keystore/internal/model"

	"github.com/ethereum/go-ethereum/accounts"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// ErrInvalidHashLength is returned by SignHash for digests that are not 32 bytes.
var ErrInvalidHashLength = errors.New("hash must be 32 bytes")

// SignMessage signs message as an EIP-191 personal message
// (keccak256("\x19Ethereum Signed Message:\n" + len(message) + message)).
// The signature is 65 bytes [R || S || V] with V 27 or 28.
func (k *Keystore) SignMessage(ctx context.Context, message []byte, account model.Account) ([]byte, error) {
	return k.SignHash(ctx, accounts.TextHash(message), account)
}

// SignHash signs a precomputed 32-byte digest with the account's key, unlocked
// with the password on file. Signatures are deterministic (RFC 6979).
func (k *Keystore) SignHash(ctx context.Context, hash []byte, account model.Account) ([]byte, error) {
	if len(hash) != 32 {
		return nil, ErrInvalidHashLength
	}

	unlock := k.locks.RLock(account.Address)
	defer unlock()

	key, err := k.unlockKey(ctx, account)
	if err != nil {
		return nil, err
	}
	defer crypto.ZeroKey(key)

	sig, err := ethcrypto.Sign(hash, key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign: %w", err)
	}
	sig[ethcrypto.RecoveryIDOffset] += 27
	return sig, nil
}

// unlockKey decrypts the account's key with the password on file.
// Caller must ZeroKey the result.
func (k *Keystore) unlockKey(ctx context.Context, account model.Account) (*ecdsa.PrivateKey, error) {
	blob, _, err := k.loadBlob(ctx, account)
	if err != nil {
		return nil, err
	}

	password, ok, err := k.vault.Get(account.Address.Hex())
	if err != nil {
		return nil, &model.StorageError{Op: "read password", Err: err}
	}
	if !ok {
		return nil, fmt.Errorf("%w: no password on file for %s", model.ErrInvalidPassword, account)
	}
	defer clear(password)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return k.codec.Decrypt(blob, password)
}
