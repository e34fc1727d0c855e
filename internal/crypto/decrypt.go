package crypto

import (
	"crypto/aes"
	"crypto/ecdsa"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"github.com/AlexZinkM/ether-keystore/internal/model"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
)

const (
	maxDerivedKeyLen = 64
	// scrypt needs 128*N*r bytes; refuse blobs asking for more than 1GiB.
	maxScryptMemory = 1 << 30
	// scrypt mixes 128*N*r bytes p times. 16x StandardParams.
	maxScryptWork = 1 << 32
	// 64x the usual 262144.
	maxPBKDF2Iterations = 1 << 24
)

// Decrypt opens blob with password and returns the private key.
// Caller must ZeroKey the result after use.
func (c *Codec) Decrypt(blob *Blob, password []byte) (*ecdsa.PrivateKey, error) {
	if blob.Cipher != cipherAES128CTR {
		return nil, fmt.Errorf("%w: unsupported cipher %q", model.ErrCorruptBlob, blob.Cipher)
	}
	if len(blob.IV) != aes.BlockSize {
		return nil, fmt.Errorf("%w: iv must be %d bytes", model.ErrCorruptBlob, aes.BlockSize)
	}

	derived, err := deriveKey(blob, password)
	if err != nil {
		return nil, err
	}
	defer clear(derived)

	mac := ethcrypto.Keccak256(derived[16:32], blob.CipherText)
	if subtle.ConstantTimeCompare(mac, blob.MAC) != 1 {
		return nil, model.ErrInvalidPassword
	}

	plaintext, err := aesCTRXOR(derived[:16], blob.CipherText, blob.IV)
	if err != nil {
		return nil, err
	}
	defer clear(plaintext) // wipe decrypted bytes from memory

	key, err := ethcrypto.ToECDSA(plaintext)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid key material: %v", model.ErrCorruptBlob, err)
	}

	if blob.Address != (common.Address{}) && ethcrypto.PubkeyToAddress(key.PublicKey) != blob.Address {
		ZeroKey(key)
		return nil, fmt.Errorf("%w: key does not match address %s", model.ErrCorruptBlob, blob.Address.Hex())
	}
	return key, nil
}

// Reencrypt decrypts blob with oldPassword and encrypts the key again under newPassword
// with fresh KDF salt, IV and id. A wrong oldPassword yields ErrInvalidPassword.
func (c *Codec) Reencrypt(blob *Blob, oldPassword, newPassword []byte) (*Blob, error) {
	key, err := c.Decrypt(blob, oldPassword)
	if err != nil {
		return nil, err
	}
	defer ZeroKey(key)

	return c.Encrypt(key, newPassword)
}

func deriveKey(blob *Blob, password []byte) ([]byte, error) {
	p := blob.KDFParams
	if p.DKLen < derivedKeyLen || p.DKLen > maxDerivedKeyLen {
		return nil, fmt.Errorf("%w: dklen %d out of range", model.ErrCorruptBlob, p.DKLen)
	}

	switch blob.KDF {
	case kdfScrypt:
		if p.N <= 1 || p.R <= 0 || p.P <= 0 {
			return nil, fmt.Errorf("%w: bad scrypt parameters n=%d r=%d p=%d", model.ErrCorruptBlob, p.N, p.R, p.P)
		}
		mem := 128 * uint64(p.N) * uint64(p.R)
		if mem > maxScryptMemory || mem*uint64(p.P) > maxScryptWork {
			return nil, fmt.Errorf("%w: scrypt parameters too costly n=%d r=%d p=%d", model.ErrCorruptBlob, p.N, p.R, p.P)
		}
		key, err := scrypt.Key(password, p.Salt, p.N, p.R, p.P, p.DKLen)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to derive key: %v", model.ErrCorruptBlob, err)
		}
		return key, nil
	case kdfPBKDF2:
		if p.PRF != prfHMACSHA256 {
			return nil, fmt.Errorf("%w: unsupported prf %q", model.ErrCorruptBlob, p.PRF)
		}
		if p.C <= 0 || p.C > maxPBKDF2Iterations {
			return nil, fmt.Errorf("%w: bad pbkdf2 iteration count %d", model.ErrCorruptBlob, p.C)
		}
		return pbkdf2.Key(password, p.Salt, p.C, p.DKLen, sha256.New), nil
	default:
		return nil, fmt.Errorf("%w: unsupported kdf %q", model.ErrCorruptBlob, blob.KDF)
	}
}
