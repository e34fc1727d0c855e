package model

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

// SignRequest represents request for POST /accounts/{address}/sign.
// Exactly one of Message (signed as an EIP-191 personal message) and Hash (0x-hex, 32 bytes) is set.
type SignRequest struct {
	Message *string `json:"message,omitempty"`
	Hash    *string `json:"hash,omitempty"`
}

// Validate checks that exactly one payload is present.
func (r *SignRequest) Validate() error {
	if (r.Message == nil) == (r.Hash == nil) {
		return errors.New("exactly one of message or hash must be set")
	}
	return nil
}

// SignResponse represents response for POST /accounts/{address}/sign
type SignResponse struct {
	Address   string `json:"address"`
	Signature string `json:"signature"` // 0x-hex r||s||v
}

// WatchRequest represents request for POST /wallets/watch
type WatchRequest struct {
	Address string `json:"address"`
}

// WalletResponse is a wallet as rendered by the API
type WalletResponse struct {
	Type    string `json:"type"`
	Address string `json:"address"`
}

// NewWalletResponse renders w with a checksummed address
func NewWalletResponse(w Wallet) WalletResponse {
	return WalletResponse{Type: w.Type.String(), Address: w.Address.Hex()}
}

// WalletsResponse represents response for GET /wallets
type WalletsResponse struct {
	Wallets []WalletResponse `json:"wallets"`
}

// RecentRequest represents request for PUT /wallets/recent
type RecentRequest struct {
	Address string `json:"address"`
}

// ParseAddress validates a hex address in either case, with or without 0x.
func ParseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, errors.New("invalid address")
	}
	return common.HexToAddress(s), nil
}
