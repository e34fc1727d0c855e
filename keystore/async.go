package keystore

import (
	"bytes"
	"context"

	"github.com/AlexZinkM/ether-keystore/internal/model"
	"github.com/AlexZinkM/ether-keystore/internal/worker"
)

// The Async variants run the operation on the keystore's worker pool.
// Secret arguments are copied, so the caller may zero its slices as soon as
// the call returns. Cancelling ctx aborts the operation only until it starts
// writing; after that it completes regardless.

// CreateAccountAsync is the asynchronous form of CreateAccount.
func (k *Keystore) CreateAccountAsync(ctx context.Context, password []byte) *worker.Future[model.Account] {
	password = bytes.Clone(password)
	return worker.Go(k.pool, ctx, func(ctx context.Context) (model.Account, error) {
		defer clear(password)
		return k.CreateAccount(ctx, password)
	})
}

// ImportKeystoreAsync is the asynchronous form of ImportKeystore.
func (k *Keystore) ImportKeystoreAsync(ctx context.Context, keyJSON, password, newPassword []byte) *worker.Future[model.Account] {
	keyJSON, password, newPassword = bytes.Clone(keyJSON), bytes.Clone(password), bytes.Clone(newPassword)
	return worker.Go(k.pool, ctx, func(ctx context.Context) (model.Account, error) {
		defer clear(password)
		defer clear(newPassword)
		return k.ImportKeystore(ctx, keyJSON, password, newPassword)
	})
}

// ImportPrivateKeyAsync is the asynchronous form of ImportPrivateKey.
func (k *Keystore) ImportPrivateKeyAsync(ctx context.Context, rawKey, passphrase, newPassword []byte) *worker.Future[model.Account] {
	rawKey, passphrase, newPassword = bytes.Clone(rawKey), bytes.Clone(passphrase), bytes.Clone(newPassword)
	return worker.Go(k.pool, ctx, func(ctx context.Context) (model.Account, error) {
		defer clear(rawKey)
		defer clear(passphrase)
		defer clear(newPassword)
		return k.ImportPrivateKey(ctx, rawKey, passphrase, newPassword)
	})
}

// ExportAsync is the asynchronous form of Export.
func (k *Keystore) ExportAsync(ctx context.Context, account model.Account, password, newPassword []byte) *worker.Future[[]byte] {
	password, newPassword = bytes.Clone(password), bytes.Clone(newPassword)
	return worker.Go(k.pool, ctx, func(ctx context.Context) ([]byte, error) {
		defer clear(password)
		defer clear(newPassword)
		return k.Export(ctx, account, password, newPassword)
	})
}

// UpdatePasswordAsync is the asynchronous form of UpdatePassword.
func (k *Keystore) UpdatePasswordAsync(ctx context.Context, account model.Account, password, newPassword []byte) *worker.Future[struct{}] {
	password, newPassword = bytes.Clone(password), bytes.Clone(newPassword)
	return worker.Go(k.pool, ctx, func(ctx context.Context) (struct{}, error) {
		defer clear(password)
		defer clear(newPassword)
		return struct{}{}, k.UpdatePassword(ctx, account, password, newPassword)
	})
}

// SignMessageAsync is the asynchronous form of SignMessage.
func (k *Keystore) SignMessageAsync(ctx context.Context, message []byte, account model.Account) *worker.Future[[]byte] {
	message = bytes.Clone(message)
	return worker.Go(k.pool, ctx, func(ctx context.Context) ([]byte, error) {
		return k.SignMessage(ctx, message, account)
	})
}

// SignHashAsync is the asynchronous form of SignHash.
func (k *Keystore) SignHashAsync(ctx context.Context, hash []byte, account model.Account) *worker.Future[[]byte] {
	hash = bytes.Clone(hash)
	return worker.Go(k.pool, ctx, func(ctx context.Context) ([]byte, error) {
		return k.SignHash(ctx, hash, account)
	})
}
