package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdsa"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/AlexZinkM/ether-keystore/internal/model"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"golang.org/x/crypto/scrypt"
)

const (
	version = 3

	cipherAES128CTR = "aes-128-ctr"
	kdfScrypt       = "scrypt"
	kdfPBKDF2       = "pbkdf2"
	prfHMACSHA256   = "hmac-sha256"

	derivedKeyLen = 32
	saltLen       = 32
)

// Params are the scrypt cost parameters used for newly encrypted keys.
// Decryption always uses the parameters stored in the blob.
type Params struct {
	ScryptN int
	ScryptR int
	ScryptP int
}

var (
	// StandardParams: N=2^18 (~256MB RAM, 0.5-2s).
	// Works on phones and desktops alike while keeping brute force expensive.
	StandardParams = Params{ScryptN: 1 << 18, ScryptR: 8, ScryptP: 1}

	// LightParams trade security for speed (~4MB RAM). Tests and low-memory devices only.
	LightParams = Params{ScryptN: 1 << 12, ScryptR: 8, ScryptP: 6}
)

// Codec produces and opens encrypted key blobs
type Codec struct {
	params Params
	rand   io.Reader
}

// NewCodec creates a codec that encrypts new keys with params
func NewCodec(params Params) *Codec {
	return &Codec{params: params, rand: rand.Reader}
}

// Params returns the cost parameters used for new blobs
func (c *Codec) Params() Params {
	return c.params
}

// Generate creates a fresh secp256k1 key and returns it encrypted under password.
// password must be []byte for security (caller should zero it after use)
func (c *Codec) Generate(password []byte) (*Blob, model.Account, error) {
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		return nil, model.Account{}, fmt.Errorf("failed to generate key: %w", err)
	}
	defer ZeroKey(key)

	blob, err := c.Encrypt(key, password)
	if err != nil {
		return nil, model.Account{}, err
	}
	return blob, model.Account{Address: blob.Address}, nil
}

// PrivateKeyToBlob wraps a raw 32-byte secp256k1 key in the keystore format.
func (c *Codec) PrivateKeyToBlob(rawKey, passphrase []byte) (*Blob, error) {
	key, err := ethcrypto.ToECDSA(rawKey)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid private key: %v", model.ErrMalformedFormat, err)
	}
	defer ZeroKey(key)

	return c.Encrypt(key, passphrase)
}

// Encrypt encrypts key under password with a fresh salt, IV and id.
func (c *Codec) Encrypt(key *ecdsa.PrivateKey, password []byte) (*Blob, error) {
	keyBytes := ethcrypto.FromECDSA(key)
	defer clear(keyBytes) // wipe plaintext key bytes from memory

	// Generate salt and IV
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(c.rand, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(c.rand, iv); err != nil {
		return nil, fmt.Errorf("failed to generate iv: %w", err)
	}

	id, err := uuid.NewRandomFromReader(c.rand)
	if err != nil {
		return nil, fmt.Errorf("failed to generate id: %w", err)
	}

	// Derive key from password
	derived, err := scrypt.Key(password, salt, c.params.ScryptN, c.params.ScryptR, c.params.ScryptP, derivedKeyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	defer clear(derived)

	cipherText, err := aesCTRXOR(derived[:16], keyBytes, iv)
	if err != nil {
		return nil, err
	}

	return &Blob{
		ID:         id,
		Address:    ethcrypto.PubkeyToAddress(key.PublicKey),
		Cipher:     cipherAES128CTR,
		CipherText: cipherText,
		IV:         iv,
		KDF:        kdfScrypt,
		KDFParams: KDFParams{
			DKLen: derivedKeyLen,
			Salt:  salt,
			N:     c.params.ScryptN,
			R:     c.params.ScryptR,
			P:     c.params.ScryptP,
		},
		MAC: ethcrypto.Keccak256(derived[16:32], cipherText),
	}, nil
}

func aesCTRXOR(key, in, iv []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	out := make([]byte, len(in))
	cipher.NewCTR(block, iv).XORKeyStream(out, in)
	return out, nil
}

// ZeroKey overwrites the private scalar of k. Best effort: copies made by
// the signing backend are outside our reach.
func ZeroKey(k *ecdsa.PrivateKey) {
	if k == nil || k.D == nil {
		return
	}
	clear(k.D.Bits())
}
