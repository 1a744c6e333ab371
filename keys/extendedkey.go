// Package keys implements BIP32 hierarchical deterministic keys for BSV:
// Base58Check encoding, the 78-byte extended key format, child derivation
// (normal and hardened), ECDSA signing, and P2PKH address encoding.
//
// Extended keys are immutable values; derivation returns new keys and
// never mutates the parent.
package keys

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
)

const (
	// HardenedOffset is the index boundary for hardened derivation.
	HardenedOffset = 0x80000000

	// Chain indices.
	ExternalChain = 0 // Receive addresses
	InternalChain = 1 // Change addresses

	// serializedKeyLen is the BIP32 extended key payload size.
	serializedKeyLen = 78
)

// BIP32 version bytes.
var (
	xprvVersion = []byte{0x04, 0x88, 0xad, 0xe4} // mainnet private
	xpubVersion = []byte{0x04, 0x88, 0xb2, 0x1e} // mainnet public
	tprvVersion = []byte{0x04, 0x35, 0x83, 0x94} // testnet private
	tpubVersion = []byte{0x04, 0x35, 0x87, 0xcf} // testnet public
)

// masterHMACKey seeds the HMAC-SHA512 used for master key generation.
var masterHMACKey = []byte("Bitcoin seed")

// ExtendedKey is a BIP32 extended key, public or private.
//
// Key holds a 32-byte private scalar when Private, else a 33-byte
// compressed public point.
type ExtendedKey struct {
	Key               []byte
	ChainCode         []byte
	Depth             uint8
	ParentFingerprint [4]byte
	ChildIndex        uint32
	Private           bool
	Testnet           bool
}

// MasterFromSeed creates a master private extended key from a 16-64 byte
// seed. It fails if the derived scalar is zero or not below the curve order.
func MasterFromSeed(seed []byte, testnet bool) (*ExtendedKey, error) {
	if len(seed) < 16 || len(seed) > 64 {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidSeed, len(seed))
	}

	mac := hmac.New(sha512.New, masterHMACKey)
	mac.Write(seed)
	sum := mac.Sum(nil)
	il, ir := sum[:32], sum[32:]

	ilInt := new(big.Int).SetBytes(il)
	if ilInt.Sign() == 0 || ilInt.Cmp(ec.S256().Params().N) >= 0 {
		return nil, fmt.Errorf("%w: master scalar out of range", ErrInvalidPrivateKey)
	}

	return &ExtendedKey{
		Key:       il,
		ChainCode: ir,
		Depth:     0,
		Private:   true,
		Testnet:   testnet,
	}, nil
}

// PublicKey returns the 33-byte compressed public key.
func (k *ExtendedKey) PublicKey() []byte {
	if !k.Private {
		out := make([]byte, len(k.Key))
		copy(out, k.Key)
		return out
	}
	_, pub := ec.PrivateKeyFromBytes(k.Key)
	return pub.Compressed()
}

// Fingerprint returns the first 4 bytes of Hash160(compressed pubkey).
func (k *ExtendedKey) Fingerprint() [4]byte {
	var fp [4]byte
	copy(fp[:], Hash160(k.PublicKey())[:4])
	return fp
}

// Neuter strips private material, returning the public extended key.
// Neutering an already-public key returns it unchanged.
func (k *ExtendedKey) Neuter() *ExtendedKey {
	if !k.Private {
		return k
	}
	return &ExtendedKey{
		Key:               k.PublicKey(),
		ChainCode:         k.ChainCode,
		Depth:             k.Depth,
		ParentFingerprint: k.ParentFingerprint,
		ChildIndex:        k.ChildIndex,
		Private:           false,
		Testnet:           k.Testnet,
	}
}

// Child derives the child key at index. Indices at or above HardenedOffset
// use hardened derivation, which requires a private key.
//
// Derivation fails when the HMAC scalar is not below the curve order, the
// child scalar is zero, or the child point is at infinity. The caller
// should move on to the next index.
func (k *ExtendedKey) Child(index uint32) (*ExtendedKey, error) {
	hardened := index >= HardenedOffset
	if hardened && !k.Private {
		return nil, ErrDeriveHardenedFromPublic
	}

	var data []byte
	if hardened {
		// 0x00 || private key || index
		data = make([]byte, 0, 37)
		data = append(data, 0x00)
		data = append(data, k.Key...)
	} else {
		// compressed public key || index
		data = make([]byte, 0, 37)
		data = append(data, k.PublicKey()...)
	}
	data = binary.BigEndian.AppendUint32(data, index)

	mac := hmac.New(sha512.New, k.ChainCode)
	mac.Write(data)
	sum := mac.Sum(nil)
	il, ir := sum[:32], sum[32:]

	curve := ec.S256()
	ilInt := new(big.Int).SetBytes(il)
	if ilInt.Cmp(curve.Params().N) >= 0 {
		return nil, fmt.Errorf("%w: scalar not below curve order", ErrInvalidChild)
	}

	child := &ExtendedKey{
		ChainCode:         ir,
		Depth:             k.Depth + 1,
		ParentFingerprint: k.Fingerprint(),
		ChildIndex:        index,
		Private:           k.Private,
		Testnet:           k.Testnet,
	}

	if k.Private {
		// child = (IL + parent) mod N
		keyInt := new(big.Int).SetBytes(k.Key)
		keyInt.Add(keyInt, ilInt)
		keyInt.Mod(keyInt, curve.Params().N)
		if keyInt.Sign() == 0 {
			return nil, fmt.Errorf("%w: child scalar is zero", ErrInvalidChild)
		}
		childKey := make([]byte, 32)
		keyInt.FillBytes(childKey)
		child.Key = childKey
		return child, nil
	}

	// child = IL*G + parent
	parent, err := ec.PublicKeyFromBytes(k.Key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPublicKey, err)
	}
	ilX, ilY := curve.ScalarBaseMult(il)
	childX, childY := curve.Add(parent.X, parent.Y, ilX, ilY)
	if childX.Sign() == 0 && childY.Sign() == 0 {
		return nil, fmt.Errorf("%w: child point at infinity", ErrInvalidChild)
	}
	child.Key = compressPoint(childX, childY)
	return child, nil
}

// DerivePath derives a descendant key from a BIP32 path string such as
// "m/44'/236'/0'/0/0". Apostrophe, h, or H marks hardened derivation.
func (k *ExtendedKey) DerivePath(path string) (*ExtendedKey, error) {
	current := k
	for _, part := range strings.Split(strings.TrimSpace(path), "/") {
		if part == "m" || part == "M" || part == "" {
			continue
		}
		hardened := strings.HasSuffix(part, "'") || strings.HasSuffix(part, "h") || strings.HasSuffix(part, "H")
		idxStr := strings.TrimRight(part, "'hH")
		idx, err := strconv.ParseUint(idxStr, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, part)
		}
		if hardened {
			if idx >= HardenedOffset {
				return nil, fmt.Errorf("%w: hardened index %d out of range", ErrInvalidPath, idx)
			}
			idx += HardenedOffset
		}
		current, err = current.Child(uint32(idx))
		if err != nil {
			return nil, err
		}
	}
	return current, nil
}

// Serialize encodes the key in the 78-byte BIP32 layout:
// version(4) depth(1) parentFingerprint(4) childIndex(4) chainCode(32) key(33).
func (k *ExtendedKey) Serialize() []byte {
	out := make([]byte, 0, serializedKeyLen)
	switch {
	case k.Private && k.Testnet:
		out = append(out, tprvVersion...)
	case k.Private:
		out = append(out, xprvVersion...)
	case k.Testnet:
		out = append(out, tpubVersion...)
	default:
		out = append(out, xpubVersion...)
	}
	out = append(out, k.Depth)
	out = append(out, k.ParentFingerprint[:]...)
	out = binary.BigEndian.AppendUint32(out, k.ChildIndex)
	out = append(out, k.ChainCode...)
	if k.Private {
		out = append(out, 0x00) // pad private scalar to 33 bytes
	}
	out = append(out, k.Key...)
	return out
}

// String encodes the key as a Base58Check xprv/xpub (or tprv/tpub) string.
func (k *ExtendedKey) String() string {
	return Base58CheckEncode(k.Serialize())
}

// ParseExtendedKey decodes a Base58Check extended key string, dispatching
// on the version bytes (xprv/xpub/tprv/tpub).
func ParseExtendedKey(s string) (*ExtendedKey, error) {
	data, err := Base58CheckDecode(s)
	if err != nil {
		return nil, err
	}
	if len(data) != serializedKeyLen {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidKeyLength, len(data))
	}

	var private, testnet bool
	switch {
	case bytes.Equal(data[:4], xprvVersion):
		private = true
	case bytes.Equal(data[:4], xpubVersion):
	case bytes.Equal(data[:4], tprvVersion):
		private, testnet = true, true
	case bytes.Equal(data[:4], tpubVersion):
		testnet = true
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownVersion, hex.EncodeToString(data[:4]))
	}

	k := &ExtendedKey{
		Depth:      data[4],
		ChildIndex: binary.BigEndian.Uint32(data[9:13]),
		ChainCode:  append([]byte(nil), data[13:45]...),
		Private:    private,
		Testnet:    testnet,
	}
	copy(k.ParentFingerprint[:], data[5:9])
	if private {
		if data[45] != 0x00 {
			return nil, fmt.Errorf("%w: missing private key padding", ErrInvalidPrivateKey)
		}
		k.Key = append([]byte(nil), data[46:78]...)
	} else {
		k.Key = append([]byte(nil), data[45:78]...)
	}
	return k, nil
}

// XPubID computes the stable owner identifier for an extended public key:
// the SHA-256 hex digest of its Base58Check text form.
func XPubID(xpub string) string {
	sum := sha256.Sum256([]byte(xpub))
	return hex.EncodeToString(sum[:])
}

// compressPoint encodes a curve point as a 33-byte compressed public key.
func compressPoint(x, y *big.Int) []byte {
	out := make([]byte, 33)
	if y.Bit(0) == 0 {
		out[0] = 0x02
	} else {
		out[0] = 0x03
	}
	x.FillBytes(out[1:])
	return out
}
