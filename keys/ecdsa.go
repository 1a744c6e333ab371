package keys

import (
	"fmt"
	"math/big"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
)

// Sign signs a 32-byte message hash with a 32-byte private key scalar,
// returning a DER-encoded signature.
func Sign(privKey, hash []byte) ([]byte, error) {
	if len(privKey) != 32 {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidPrivateKey, len(privKey))
	}
	priv, _ := ec.PrivateKeyFromBytes(privKey)
	sig, err := priv.Sign(hash)
	if err != nil {
		return nil, fmt.Errorf("keys: sign failed: %w", err)
	}
	return sig.Serialize(), nil
}

// Verify checks a DER-encoded signature against a public key and message
// hash. The public key may be 33-byte compressed, 65-byte uncompressed,
// or 64-byte raw (X||Y). A malformed key or signature verifies as false.
func Verify(pubKey, hash, derSig []byte) bool {
	normalized := pubKey
	if len(pubKey) == 64 {
		normalized = make([]byte, 65)
		normalized[0] = 0x04
		copy(normalized[1:], pubKey)
	}
	pub, err := ec.PublicKeyFromBytes(normalized)
	if err != nil {
		return false
	}
	sig, err := ec.ParseSignature(derSig)
	if err != nil {
		return false
	}
	return sig.Verify(hash, pub)
}

// CompressPublicKey converts a 65-byte uncompressed or 64-byte raw public
// key to the 33-byte compressed form. An already-compressed key is
// returned unchanged.
func CompressPublicKey(pubKey []byte) ([]byte, error) {
	raw := pubKey
	if len(raw) == 65 && raw[0] == 0x04 {
		raw = raw[1:]
	}
	if len(raw) == 33 && (raw[0] == 0x02 || raw[0] == 0x03) {
		out := make([]byte, 33)
		copy(out, raw)
		return out, nil
	}
	if len(raw) != 64 {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidPublicKey, len(pubKey))
	}
	x := new(big.Int).SetBytes(raw[:32])
	y := new(big.Int).SetBytes(raw[32:])
	return compressPoint(x, y), nil
}

// DecompressPublicKey converts a 33-byte compressed public key to the
// 65-byte uncompressed form by solving y^2 = x^3 + 7 mod p.
func DecompressPublicKey(compressed []byte) ([]byte, error) {
	if len(compressed) != 33 {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidPublicKey, len(compressed))
	}
	prefix := compressed[0]
	if prefix != 0x02 && prefix != 0x03 {
		return nil, fmt.Errorf("%w: prefix 0x%02x", ErrInvalidPublicKey, prefix)
	}

	p := ec.S256().Params().P
	x := new(big.Int).SetBytes(compressed[1:])

	// y = (x^3 + 7) ^ ((p+1)/4) mod p, valid since p = 3 mod 4.
	ySq := new(big.Int).Exp(x, big.NewInt(3), p)
	ySq.Add(ySq, big.NewInt(7))
	ySq.Mod(ySq, p)
	exp := new(big.Int).Add(p, big.NewInt(1))
	exp.Rsh(exp, 2)
	y := new(big.Int).Exp(ySq, exp, p)

	if (y.Bit(0) == 0) != (prefix == 0x02) {
		y.Sub(p, y)
	}

	out := make([]byte, 65)
	out[0] = 0x04
	x.FillBytes(out[1:33])
	y.FillBytes(out[33:])
	return out, nil
}
