package keys

import (
	"crypto/sha256"

	"golang.org/x/crypto/ripemd160"
)

// Sha256d computes SHA256(SHA256(data)), Bitcoin's double hash.
func Sha256d(data []byte) []byte {
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	return second[:]
}

// Hash160 computes RIPEMD160(SHA256(data)), used for addresses and
// P2PKH locking scripts.
func Hash160(data []byte) []byte {
	sha := sha256.Sum256(data)
	h := ripemd160.New()
	h.Write(sha[:])
	return h.Sum(nil)
}
