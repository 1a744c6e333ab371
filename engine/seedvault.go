package engine

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Seed vault parameters. The key is derived with Argon2id; the blob
// layout is salt(16) || nonce(12) || AES-256-GCM(seed || checksum),
// where checksum is the first 4 bytes of SHA-256(seed).
const (
	vaultSaltSize     = 16
	vaultNonceSize    = 12
	vaultChecksumSize = 4
	vaultKeySize      = 32

	argonTime    = 3
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// EncryptSeed encrypts a wallet seed under a password for at-rest
// storage. The engine never persists the seed itself; clients hold the
// blob and decrypt locally when deriving keys.
func EncryptSeed(seed []byte, password string) ([]byte, error) {
	if len(seed) == 0 {
		return nil, ErrInvalidSeed
	}

	salt := make([]byte, vaultSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("engine: vault salt: %w", err)
	}

	gcm, err := vaultCipher(password, salt)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, vaultNonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("engine: vault nonce: %w", err)
	}

	checksum := sha256.Sum256(seed)
	plaintext := make([]byte, 0, len(seed)+vaultChecksumSize)
	plaintext = append(plaintext, seed...)
	plaintext = append(plaintext, checksum[:vaultChecksumSize]...)

	blob := make([]byte, 0, vaultSaltSize+vaultNonceSize+len(plaintext)+gcm.Overhead())
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	return gcm.Seal(blob, nonce, plaintext, nil), nil
}

// DecryptSeed recovers a seed from a vault blob. A wrong password
// fails authentication; a checksum mismatch after a successful
// decryption indicates a corrupted blob.
func DecryptSeed(blob []byte, password string) ([]byte, error) {
	if len(blob) < vaultSaltSize+vaultNonceSize+vaultChecksumSize {
		return nil, ErrSeedDecryptFailed
	}

	salt := blob[:vaultSaltSize]
	nonce := blob[vaultSaltSize : vaultSaltSize+vaultNonceSize]
	ciphertext := blob[vaultSaltSize+vaultNonceSize:]

	gcm, err := vaultCipher(password, salt)
	if err != nil {
		return nil, err
	}
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSeedDecryptFailed, err)
	}
	if len(plaintext) < vaultChecksumSize {
		return nil, ErrSeedDecryptFailed
	}

	seed := plaintext[:len(plaintext)-vaultChecksumSize]
	checksum := sha256.Sum256(seed)
	if !bytes.Equal(plaintext[len(plaintext)-vaultChecksumSize:], checksum[:vaultChecksumSize]) {
		return nil, ErrSeedChecksumMismatch
	}
	return seed, nil
}

func vaultCipher(password string, salt []byte) (cipher.AEAD, error) {
	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, vaultKeySize)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("engine: vault cipher: %w", err)
	}
	return cipher.NewGCM(block)
}
