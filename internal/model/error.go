package model

import (
	"errors"
	"fmt"
)

// ErrorResponse is the consistent JSON structure for all API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

var (
	// ErrInvalidPassword is returned when the keystore MAC does not verify under the given password.
	// A wrong password and a tampered ciphertext are reported the same way.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrMalformedFormat is returned for keystore text that is not a valid v3 keystore document.
	ErrMalformedFormat = errors.New("malformed keystore")
	// ErrCorruptBlob is returned when a parsed keystore cannot be used (unsupported cipher or KDF,
	// bad parameters, key material that is not a valid private key).
	ErrCorruptBlob = errors.New("corrupt keystore")
	// ErrDuplicateAccount is returned when the address is already registered.
	ErrDuplicateAccount = errors.New("account already exists")
	// ErrUnknownAccount is returned when no encrypted key is on file for the address.
	ErrUnknownAccount = errors.New("unknown account")
	// ErrUnknownWallet is returned when the wallet is not registered.
	ErrUnknownWallet = errors.New("unknown wallet")
	// ErrWatchOnlyAccount is returned when a key operation targets a watch-only wallet.
	ErrWatchOnlyAccount = errors.New("watch-only account has no private key")
)

// StorageError is an infrastructure failure of the key store, the wallet store or the secret vault.
// It fails the operation it happened in and nothing else.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageError checks if err is or wraps a StorageError
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// ErrorCode returns the stable API code for err, or "internal" for anything unclassified.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidPassword):
		return "invalid_password"
	case errors.Is(err, ErrMalformedFormat):
		return "malformed_format"
	case errors.Is(err, ErrCorruptBlob):
		return "corrupt_blob"
	case errors.Is(err, ErrDuplicateAccount):
		return "duplicate_account"
	case errors.Is(err, ErrUnknownAccount):
		return "unknown_account"
	case errors.Is(err, ErrUnknownWallet):
		return "unknown_wallet"
	case errors.Is(err, ErrWatchOnlyAccount):
		return "watch_only_account"
	case IsStorageError(err):
		return "storage"
	default:
		return "internal"
	}
}
