// Package script builds and classifies BSV locking scripts. Scope is the
// standard wallet patterns: P2PKH lock/unlock, OP_RETURN data outputs,
// and type detection for incoming outputs.
package script

import (
	"encoding/binary"
	"fmt"

	"github.com/openspv/walletengine-go/keys"
)

// Opcodes used by the standard script patterns.
const (
	OpFalse       = 0x00
	Op0           = 0x00
	OpPushData1   = 0x4c
	OpPushData2   = 0x4d
	OpPushData4   = 0x4e
	OpReturn      = 0x6a
	OpDup         = 0x76
	OpEqual       = 0x87
	OpEqualVerify = 0x88
	OpHash160     = 0xa9
	OpCheckSig    = 0xac
)

// Type identifies a locking script pattern.
type Type string

const (
	TypeP2PKH    Type = "pubkeyhash"
	TypeP2PK     Type = "pubkey"
	TypeNullData Type = "nulldata"
	TypeUnknown  Type = "unknown"
)

// PushData encodes a minimal data push: OP_0 for empty data, a bare
// length byte up to 75 bytes, then PUSHDATA1/2/4 with little-endian
// lengths.
func PushData(data []byte) []byte {
	length := len(data)
	switch {
	case length == 0:
		return []byte{Op0}
	case length <= 0x4b:
		return append([]byte{byte(length)}, data...)
	case length <= 0xff:
		return append([]byte{OpPushData1, byte(length)}, data...)
	case length <= 0xffff:
		out := []byte{OpPushData2}
		out = binary.LittleEndian.AppendUint16(out, uint16(length))
		return append(out, data...)
	default:
		out := []byte{OpPushData4}
		out = binary.LittleEndian.AppendUint32(out, uint32(length))
		return append(out, data...)
	}
}

// P2PKHLock builds the 25-byte P2PKH locking script
// OP_DUP OP_HASH160 <20-byte hash> OP_EQUALVERIFY OP_CHECKSIG.
func P2PKHLock(pubKeyHash []byte) ([]byte, error) {
	if len(pubKeyHash) != 20 {
		return nil, fmt.Errorf("%w: pubkey hash is %d bytes", ErrInvalidPubKeyHash, len(pubKeyHash))
	}
	out := make([]byte, 0, 25)
	out = append(out, OpDup, OpHash160)
	out = append(out, PushData(pubKeyHash)...)
	out = append(out, OpEqualVerify, OpCheckSig)
	return out, nil
}

// P2PKHLockFromPubKey builds a P2PKH locking script from a compressed or
// uncompressed public key.
func P2PKHLockFromPubKey(pubKey []byte) ([]byte, error) {
	return P2PKHLock(keys.Hash160(pubKey))
}

// P2PKHUnlock builds the unlocking script <sig> <pubkey>. The signature
// is DER encoded with the sighash byte appended.
func P2PKHUnlock(signature, pubKey []byte) []byte {
	out := PushData(signature)
	return append(out, PushData(pubKey)...)
}

// OpReturnScript builds a data output script:
// OP_FALSE OP_RETURN <push part1> <push part2> ...
func OpReturnScript(parts ...[]byte) []byte {
	out := []byte{OpFalse, OpReturn}
	for _, part := range parts {
		out = append(out, PushData(part)...)
	}
	return out
}

// Classify detects the locking script pattern. P2PKH requires the exact
// 25-byte pattern; null data matches a leading OP_RETURN with or without
// OP_FALSE; P2PK matches a pushed 33 or 65 byte key plus OP_CHECKSIG.
func Classify(script []byte) Type {
	if len(script) == 0 {
		return TypeUnknown
	}

	if len(script) == 25 &&
		script[0] == OpDup &&
		script[1] == OpHash160 &&
		script[2] == 0x14 &&
		script[23] == OpEqualVerify &&
		script[24] == OpCheckSig {
		return TypeP2PKH
	}

	if script[0] == OpReturn {
		return TypeNullData
	}
	if len(script) >= 2 && script[0] == OpFalse && script[1] == OpReturn {
		return TypeNullData
	}

	if len(script) == 35 && script[0] == 0x21 && script[34] == OpCheckSig {
		return TypeP2PK
	}
	if len(script) == 67 && script[0] == 0x41 && script[66] == OpCheckSig {
		return TypeP2PK
	}

	return TypeUnknown
}

// ExtractPubKeyHash returns the 20-byte hash from a P2PKH locking script,
// or nil if the script is not P2PKH.
func ExtractPubKeyHash(script []byte) []byte {
	if Classify(script) != TypeP2PKH {
		return nil
	}
	out := make([]byte, 20)
	copy(out, script[3:23])
	return out
}
