package model

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Account is a handle to a private key that is kept encrypted elsewhere.
// It never carries key material.
type Account struct {
	Address common.Address `json:"address"`
}

// String returns the EIP-55 checksummed address
func (a Account) String() string {
	return a.Address.Hex()
}

// WalletType tells a key-backed wallet from a watch-only one
type WalletType int

const (
	WalletTypeReal WalletType = iota + 1
	WalletTypeWatch
)

func (t WalletType) String() string {
	switch t {
	case WalletTypeReal:
		return "real"
	case WalletTypeWatch:
		return "watch"
	default:
		return fmt.Sprintf("WalletType(%d)", int(t))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t WalletType) MarshalText() ([]byte, error) {
	switch t {
	case WalletTypeReal, WalletTypeWatch:
		return []byte(t.String()), nil
	default:
		return nil, fmt.Errorf("unknown wallet type %d", int(t))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *WalletType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "real":
		*t = WalletTypeReal
	case "watch":
		*t = WalletTypeWatch
	default:
		return fmt.Errorf("unknown wallet type %q", text)
	}
	return nil
}

// Wallet is either a Real wallet backed by an Account or a Watch wallet that only tracks an address.
// Call sites that depend on key presence switch on Type.
type Wallet struct {
	Type    WalletType     `json:"type"`
	Address common.Address `json:"address"`
}

// RealWallet wraps an account
func RealWallet(account Account) Wallet {
	return Wallet{Type: WalletTypeReal, Address: account.Address}
}

// WatchWallet tracks an address without a key
func WatchWallet(address common.Address) Wallet {
	return Wallet{Type: WalletTypeWatch, Address: address}
}

// Account returns the account behind a Real wallet. ok is false for Watch wallets.
func (w Wallet) Account() (account Account, ok bool) {
	switch w.Type {
	case WalletTypeReal:
		return Account{Address: w.Address}, true
	case WalletTypeWatch:
		return Account{}, false
	default:
		return Account{}, false
	}
}

// KeystoreFile represents the v3 keystore document (Web3 Secret Storage).
// Pointer fields distinguish a missing member from a zero one.
type KeystoreFile struct {
	Address *string     `json:"address,omitempty"`
	Crypto  *CryptoJSON `json:"crypto"`
	ID      *string     `json:"id,omitempty"`
	Version *int        `json:"version"`
}

// CryptoJSON is the "crypto" member of a keystore file
type CryptoJSON struct {
	Cipher       *string           `json:"cipher"`
	CipherText   *string           `json:"ciphertext"`
	CipherParams *CipherParamsJSON `json:"cipherparams"`
	KDF          *string           `json:"kdf"`
	KDFParams    *KDFParamsJSON    `json:"kdfparams"`
	MAC          *string           `json:"mac"`
}

// CipherParamsJSON holds the cipher IV
type CipherParamsJSON struct {
	IV *string `json:"iv"`
}

// KDFParamsJSON holds scrypt (n, r, p) or pbkdf2 (c, prf) parameters
type KDFParamsJSON struct {
	DKLen *int    `json:"dklen"`
	Salt  *string `json:"salt"`
	N     int     `json:"n,omitempty"`
	R     int     `json:"r,omitempty"`
	P     int     `json:"p,omitempty"`
	C     int     `json:"c,omitempty"`
	PRF   string  `json:"prf,omitempty"`
}
