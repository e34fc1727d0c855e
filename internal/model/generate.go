package model

import (
	"bytes"
	"encoding/json"
)

// CreateAccountRequest represents request for POST /accounts
type CreateAccountRequest struct {
	Password string `json:"password"`
}

// AccountResponse represents response for account create/import endpoints
type AccountResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Address string `json:"address,omitempty"`
	QR      string `json:"QR,omitempty"` // base64 PNG of the address
}

// ImportKeystoreRequest represents request for POST /accounts/import.
// Keystore is the v3 document, either inline as an object or as a JSON string.
type ImportKeystoreRequest struct {
	Keystore    json.RawMessage `json:"keystore" swaggertype:"object"`
	Password    string          `json:"password"`
	NewPassword string          `json:"newPassword"`
}

// ImportPrivateKeyRequest represents request for POST /accounts/import/private-key
type ImportPrivateKeyRequest struct {
	PrivateKey  string `json:"privateKey"`
	Passphrase  string `json:"passphrase"`
	NewPassword string `json:"newPassword"`
}

// ExportRequest represents request for POST /accounts/{address}/export
// and PUT /accounts/{address}/password
type ExportRequest struct {
	Password    string `json:"password"`
	NewPassword string `json:"newPassword"`
}

// KeystoreBytes returns the keystore document carried by the request
func (r *ImportKeystoreRequest) KeystoreBytes() ([]byte, error) {
	raw := bytes.TrimSpace(r.Keystore)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return []byte(s), nil
	}
	return raw, nil
}
