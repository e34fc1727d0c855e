package crypto

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AlexZinkM/ether-keystore/internal/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Blob is a decoded v3 keystore: KDF and cipher parameters, ciphertext, MAC and the derived address.
// A zero Address or ID means the source document did not carry one.
type Blob struct {
	ID         uuid.UUID
	Address    common.Address
	Cipher     string
	CipherText []byte
	IV         []byte
	KDF        string
	KDFParams  KDFParams
	MAC        []byte
}

// KDFParams holds scrypt (N, R, P) or pbkdf2 (C, PRF) parameters
type KDFParams struct {
	DKLen int
	Salt  []byte
	N     int
	R     int
	P     int
	C     int
	PRF   string
}

// Account returns the account the blob is addressed to
func (b *Blob) Account() model.Account {
	return model.Account{Address: b.Address}
}

// Parse decodes keystore text. Structural problems are reported as ErrMalformedFormat.
// Unknown cipher or KDF names are accepted here and rejected by Decrypt.
func Parse(data []byte) (*Blob, error) {
	// Skip UTF-8 BOM if present
	data = bytes.TrimPrefix(data, utf8BOM)

	var file model.KeystoreFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, malformed("failed to unmarshal keystore: %v", err)
	}

	if file.Version == nil {
		return nil, malformed("missing version")
	}
	if *file.Version != version {
		return nil, malformed("unsupported version %d", *file.Version)
	}
	if file.Crypto == nil {
		return nil, malformed("missing crypto")
	}

	blob := &Blob{}

	if file.Address != nil {
		addr, err := parseAddress(*file.Address)
		if err != nil {
			return nil, err
		}
		blob.Address = addr
	}

	if file.ID != nil {
		id, err := uuid.Parse(*file.ID)
		if err != nil {
			return nil, malformed("invalid id: %v", err)
		}
		blob.ID = id
	}

	c := file.Crypto
	if c.Cipher == nil || *c.Cipher == "" {
		return nil, malformed("missing cipher")
	}
	if c.KDF == nil || *c.KDF == "" {
		return nil, malformed("missing kdf")
	}
	if c.CipherParams == nil || c.CipherParams.IV == nil {
		return nil, malformed("missing cipherparams.iv")
	}
	if c.KDFParams == nil {
		return nil, malformed("missing kdfparams")
	}
	if c.KDFParams.DKLen == nil {
		return nil, malformed("missing kdfparams.dklen")
	}
	if c.KDFParams.Salt == nil {
		return nil, malformed("missing kdfparams.salt")
	}
	blob.Cipher = *c.Cipher
	blob.KDF = *c.KDF

	var err error
	if blob.CipherText, err = decodeHexField("ciphertext", c.CipherText); err != nil {
		return nil, err
	}
	if blob.IV, err = decodeHexField("cipherparams.iv", c.CipherParams.IV); err != nil {
		return nil, err
	}
	if blob.MAC, err = decodeHexField("mac", c.MAC); err != nil {
		return nil, err
	}
	salt, err := decodeHexField("kdfparams.salt", c.KDFParams.Salt)
	if err != nil {
		return nil, err
	}

	blob.KDFParams = KDFParams{
		DKLen: *c.KDFParams.DKLen,
		Salt:  salt,
		N:     c.KDFParams.N,
		R:     c.KDFParams.R,
		P:     c.KDFParams.P,
		C:     c.KDFParams.C,
		PRF:   c.KDFParams.PRF,
	}
	return blob, nil
}

// Marshal encodes the blob as v3 keystore JSON. The address is written in
// lower-case hex without 0x, which is what other wallets expect.
func (b *Blob) Marshal() ([]byte, error) {
	v := version
	cipherText := hex.EncodeToString(b.CipherText)
	iv := hex.EncodeToString(b.IV)
	mac := hex.EncodeToString(b.MAC)
	salt := hex.EncodeToString(b.KDFParams.Salt)
	dkLen := b.KDFParams.DKLen
	cipherName := b.Cipher
	kdf := b.KDF

	file := model.KeystoreFile{
		Version: &v,
		Crypto: &model.CryptoJSON{
			Cipher:       &cipherName,
			CipherText:   &cipherText,
			CipherParams: &model.CipherParamsJSON{IV: &iv},
			KDF:          &kdf,
			KDFParams: &model.KDFParamsJSON{
				DKLen: &dkLen,
				Salt:  &salt,
				N:     b.KDFParams.N,
				R:     b.KDFParams.R,
				P:     b.KDFParams.P,
				C:     b.KDFParams.C,
				PRF:   b.KDFParams.PRF,
			},
			MAC: &mac,
		},
	}
	if b.Address != (common.Address{}) {
		addr := hex.EncodeToString(b.Address[:])
		file.Address = &addr
	}
	if b.ID != uuid.Nil {
		id := b.ID.String()
		file.ID = &id
	}

	data, err := json.Marshal(file)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal keystore: %w", err)
	}
	return data, nil
}

// ReadAddress reads only the address from keystore text (without decryption)
func ReadAddress(data []byte) (common.Address, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	var file model.KeystoreFile
	if err := json.Unmarshal(data, &file); err != nil {
		return common.Address{}, malformed("failed to unmarshal keystore: %v", err)
	}
	if file.Address == nil {
		return common.Address{}, malformed("missing address")
	}
	return parseAddress(*file.Address)
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, malformed("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

func decodeHexField(name string, value *string) ([]byte, error) {
	if value == nil || *value == "" {
		return nil, malformed("missing %s", name)
	}
	b, err := hex.DecodeString(strings.TrimPrefix(*value, "0x"))
	if err != nil {
		return nil, malformed("invalid %s: %v", name, err)
	}
	return b, nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", model.ErrMalformedFormat, fmt.Sprintf(format, args...))
}
