// Package vault stores account passwords in an OS-level secret store.
// Secrets are keyed by the checksummed account address.
package vault

import (
	"errors"
	"fmt"
	"sync"

	"github.com/99designs/keyring"
)

// Vault is a per-identifier secret store.
// Get reports ok=false for a missing identifier; err is reserved for backend failures.
type Vault interface {
	Get(id string) (secret []byte, ok bool, err error)
	Set(id string, secret []byte) error
	Delete(id string) (removed bool, err error)
}

// Config selects and configures the keyring backend
type Config struct {
	ServiceName string
	// Backend is a keyring backend name: file, keychain, secret-service, kwallet, wincred, pass, keyctl.
	Backend string
	// FileDir and Password are used by the file backend only.
	FileDir  string
	Password func() (string, error)
}

// KeyringVault keeps secrets in a github.com/99designs/keyring backend.
// Returned and stored secrets are copies, so callers may clear their slices.
type KeyringVault struct {
	mu   sync.Mutex
	ring keyring.Keyring
}

// NewKeyringVault wraps an opened keyring
func NewKeyringVault(ring keyring.Keyring) *KeyringVault {
	return &KeyringVault{ring: ring}
}

// NewMemoryVault returns a vault that lives only in process memory
func NewMemoryVault() *KeyringVault {
	return NewKeyringVault(keyring.NewArrayKeyring(nil))
}

// Open opens the configured keyring backend
func Open(cfg Config) (*KeyringVault, error) {
	ringCfg := keyring.Config{
		ServiceName:     cfg.ServiceName,
		AllowedBackends: []keyring.BackendType{keyring.BackendType(cfg.Backend)},
		FileDir:         cfg.FileDir,
	}
	if cfg.Password != nil {
		ringCfg.FilePasswordFunc = func(string) (string, error) {
			return cfg.Password()
		}
	}

	ring, err := keyring.Open(ringCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s keyring: %w", cfg.Backend, err)
	}
	return NewKeyringVault(ring), nil
}

// Get returns a copy of the secret stored under id
func (v *KeyringVault) Get(id string) ([]byte, bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	item, err := v.ring.Get(id)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read secret: %w", err)
	}

	out := make([]byte, len(item.Data))
	copy(out, item.Data)
	return out, true, nil
}

// Set stores a copy of secret under id, replacing any previous value
func (v *KeyringVault) Set(id string, secret []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	data := make([]byte, len(secret))
	copy(data, secret)

	if err := v.ring.Set(keyring.Item{
		Key:   id,
		Data:  data,
		Label: "ether-keystore password " + id,
	}); err != nil {
		return fmt.Errorf("failed to write secret: %w", err)
	}
	return nil
}

// Delete removes the secret under id. removed is false if there was none.
func (v *KeyringVault) Delete(id string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, err := v.ring.Get(id); err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read secret: %w", err)
	}
	if err := v.ring.Remove(id); err != nil {
		return false, fmt.Errorf("failed to delete secret: %w", err)
	}
	return true, nil
}
