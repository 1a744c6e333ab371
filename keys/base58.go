package keys

import (
	"bytes"
	"fmt"
	"math/big"
)

const b58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

var b58Index = func() [256]int8 {
	var idx [256]int8
	for i := range idx {
		idx[i] = -1
	}
	for i := 0; i < len(b58Alphabet); i++ {
		idx[b58Alphabet[i]] = int8(i)
	}
	return idx
}()

var b58Radix = big.NewInt(58)

// Base58Encode encodes raw bytes to Base58 (no checksum).
// Leading zero bytes are preserved as leading '1' characters.
func Base58Encode(payload []byte) string {
	n := new(big.Int).SetBytes(payload)
	mod := new(big.Int)

	var out []byte
	for n.Sign() > 0 {
		n.DivMod(n, b58Radix, mod)
		out = append(out, b58Alphabet[mod.Int64()])
	}
	for _, b := range payload {
		if b != 0 {
			break
		}
		out = append(out, b58Alphabet[0])
	}

	// Digits were produced least-significant first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}

// Base58Decode decodes a Base58 string to raw bytes (no checksum).
// Leading '1' characters are preserved as leading zero bytes.
func Base58Decode(s string) ([]byte, error) {
	n := new(big.Int)
	for i := 0; i < len(s); i++ {
		d := b58Index[s[i]]
		if d < 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidBase58, s[i])
		}
		n.Mul(n, b58Radix)
		n.Add(n, big.NewInt(int64(d)))
	}

	var padding int
	for padding < len(s) && s[padding] == '1' {
		padding++
	}

	var body []byte
	if n.Sign() > 0 {
		body = n.Bytes()
	}
	out := make([]byte, padding+len(body))
	copy(out[padding:], body)
	return out, nil
}

// Base58CheckEncode appends a 4-byte double-SHA256 checksum and encodes
// the result as Base58.
func Base58CheckEncode(payload []byte) string {
	checksum := Sha256d(payload)[:4]
	full := make([]byte, 0, len(payload)+4)
	full = append(full, payload...)
	full = append(full, checksum...)
	return Base58Encode(full)
}

// Base58CheckDecode decodes a Base58Check string and verifies its checksum.
func Base58CheckDecode(s string) ([]byte, error) {
	raw, err := Base58Decode(s)
	if err != nil {
		return nil, err
	}
	if len(raw) < 4 {
		return nil, fmt.Errorf("%w: too short", ErrInvalidChecksum)
	}
	payload, checksum := raw[:len(raw)-4], raw[len(raw)-4:]
	if !bytes.Equal(checksum, Sha256d(payload)[:4]) {
		return nil, ErrInvalidChecksum
	}
	return payload, nil
}
