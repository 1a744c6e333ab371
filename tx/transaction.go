// Package tx implements the raw Bitcoin transaction binary codec:
// inputs, outputs, varint-prefixed lists, and txid computation.
//
// Byte order convention: PrevTxID and TxIDBytes are internal order
// (the double-SHA256 output); TxID and PrevTxIDHex are display order
// (reversed hex), the form used everywhere outside the codec.
package tx

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/openspv/walletengine-go/keys"
)

// DefaultSequence is the final sequence number (no replacement signaling).
const DefaultSequence = 0xffffffff

// coinbasePrevIndex marks the null outpoint of a coinbase input.
const coinbasePrevIndex = 0xffffffff

// Input is a transaction input referencing a previous output.
type Input struct {
	PrevTxID        [32]byte // internal byte order
	PrevIndex       uint32
	UnlockingScript []byte
	Sequence        uint32
}

// PrevTxIDHex returns the referenced txid in display (reversed) hex.
func (in *Input) PrevTxIDHex() string {
	return hex.EncodeToString(reverseBytes(in.PrevTxID[:]))
}

// IsCoinbase reports whether this input spends the null outpoint.
func (in *Input) IsCoinbase() bool {
	if in.PrevIndex != coinbasePrevIndex {
		return false
	}
	return in.PrevTxID == [32]byte{}
}

func (in *Input) serialize(buf []byte) []byte {
	buf = append(buf, in.PrevTxID[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, in.PrevIndex)
	buf = AppendVarInt(buf, uint64(len(in.UnlockingScript)))
	buf = append(buf, in.UnlockingScript...)
	return binary.LittleEndian.AppendUint32(buf, in.Sequence)
}

func readInput(r *bytes.Reader) (*Input, error) {
	in := &Input{}
	if _, err := io.ReadFull(r, in.PrevTxID[:]); err != nil {
		return nil, fmt.Errorf("%w: reading prev txid", ErrTruncated)
	}
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, fmt.Errorf("%w: reading prev index", ErrTruncated)
	}
	in.PrevIndex = binary.LittleEndian.Uint32(buf[:])

	scriptLen, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	// Length prefixes come from the wire; never allocate past the data.
	if scriptLen > uint64(r.Len()) {
		return nil, fmt.Errorf("%w: unlocking script length %d exceeds remaining data", ErrTruncated, scriptLen)
	}
	in.UnlockingScript = make([]byte, scriptLen)
	if _, err := io.ReadFull(r, in.UnlockingScript); err != nil {
		return nil, fmt.Errorf("%w: reading unlocking script", ErrTruncated)
	}

	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, fmt.Errorf("%w: reading sequence", ErrTruncated)
	}
	in.Sequence = binary.LittleEndian.Uint32(buf[:])
	return in, nil
}

// Output is a transaction output carrying value and a locking script.
type Output struct {
	Satoshis      int64
	LockingScript []byte
}

func (out *Output) serialize(buf []byte) []byte {
	buf = binary.LittleEndian.AppendUint64(buf, uint64(out.Satoshis))
	buf = AppendVarInt(buf, uint64(len(out.LockingScript)))
	return append(buf, out.LockingScript...)
}

func readOutput(r *bytes.Reader) (*Output, error) {
	out := &Output{}
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, fmt.Errorf("%w: reading output value", ErrTruncated)
	}
	out.Satoshis = int64(binary.LittleEndian.Uint64(buf[:]))

	scriptLen, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if scriptLen > uint64(r.Len()) {
		return nil, fmt.Errorf("%w: locking script length %d exceeds remaining data", ErrTruncated, scriptLen)
	}
	out.LockingScript = make([]byte, scriptLen)
	if _, err := io.ReadFull(r, out.LockingScript); err != nil {
		return nil, fmt.Errorf("%w: reading locking script", ErrTruncated)
	}
	return out, nil
}

// Transaction is a raw Bitcoin transaction.
type Transaction struct {
	Version  int32
	Inputs   []*Input
	Outputs  []*Output
	LockTime uint32
}

// New returns an empty version-1 transaction.
func New() *Transaction {
	return &Transaction{Version: 1}
}

// AddInput appends an unsigned input spending the given outpoint and
// returns it for further configuration.
func (t *Transaction) AddInput(prevTxID [32]byte, prevIndex uint32) *Input {
	in := &Input{
		PrevTxID:  prevTxID,
		PrevIndex: prevIndex,
		Sequence:  DefaultSequence,
	}
	t.Inputs = append(t.Inputs, in)
	return in
}

// AddOutput appends an output and returns it.
func (t *Transaction) AddOutput(satoshis int64, lockingScript []byte) *Output {
	out := &Output{Satoshis: satoshis, LockingScript: lockingScript}
	t.Outputs = append(t.Outputs, out)
	return out
}

// Serialize encodes the transaction in the raw wire layout:
// version(i32 LE), varint input count, inputs, varint output count,
// outputs, locktime(u32 LE).
func (t *Transaction) Serialize() []byte {
	buf := make([]byte, 0, t.Size())
	buf = binary.LittleEndian.AppendUint32(buf, uint32(t.Version))
	buf = AppendVarInt(buf, uint64(len(t.Inputs)))
	for _, in := range t.Inputs {
		buf = in.serialize(buf)
	}
	buf = AppendVarInt(buf, uint64(len(t.Outputs)))
	for _, out := range t.Outputs {
		buf = out.serialize(buf)
	}
	return binary.LittleEndian.AppendUint32(buf, t.LockTime)
}

// Hex returns the serialized transaction as a hex string.
func (t *Transaction) Hex() string {
	return hex.EncodeToString(t.Serialize())
}

// Size returns the serialized size in bytes.
func (t *Transaction) Size() int {
	size := 4 + 4 // version + locktime
	size += VarIntSize(uint64(len(t.Inputs)))
	for _, in := range t.Inputs {
		size += 32 + 4 + VarIntSize(uint64(len(in.UnlockingScript))) + len(in.UnlockingScript) + 4
	}
	size += VarIntSize(uint64(len(t.Outputs)))
	for _, out := range t.Outputs {
		size += 8 + VarIntSize(uint64(len(out.LockingScript))) + len(out.LockingScript)
	}
	return size
}

// TxID computes the transaction ID in display order:
// reverse(doubleSHA256(serialized)) as hex.
func (t *Transaction) TxID() string {
	return hex.EncodeToString(reverseBytes(t.TxIDBytes()))
}

// TxIDBytes computes the 32-byte transaction hash in internal order.
func (t *Transaction) TxIDBytes() []byte {
	return keys.Sha256d(t.Serialize())
}

// FromBytes decodes a raw transaction.
func FromBytes(data []byte) (*Transaction, error) {
	r := bytes.NewReader(data)

	t := &Transaction{}
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, fmt.Errorf("%w: reading version", ErrTruncated)
	}
	t.Version = int32(binary.LittleEndian.Uint32(buf[:]))

	inputCount, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	// Each input occupies at least 41 bytes, so a count beyond the
	// remaining data is malformed. Checking before make keeps hostile
	// counts from allocating.
	if inputCount > uint64(r.Len()) {
		return nil, fmt.Errorf("%w: input count %d exceeds remaining data", ErrTruncated, inputCount)
	}
	t.Inputs = make([]*Input, 0, inputCount)
	for i := uint64(0); i < inputCount; i++ {
		in, err := readInput(r)
		if err != nil {
			return nil, err
		}
		t.Inputs = append(t.Inputs, in)
	}

	outputCount, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if outputCount > uint64(r.Len()) {
		return nil, fmt.Errorf("%w: output count %d exceeds remaining data", ErrTruncated, outputCount)
	}
	t.Outputs = make([]*Output, 0, outputCount)
	for i := uint64(0); i < outputCount; i++ {
		out, err := readOutput(r)
		if err != nil {
			return nil, err
		}
		t.Outputs = append(t.Outputs, out)
	}

	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, fmt.Errorf("%w: reading locktime", ErrTruncated)
	}
	t.LockTime = binary.LittleEndian.Uint32(buf[:])
	return t, nil
}

// FromHex decodes a raw transaction from its hex encoding.
func FromHex(s string) (*Transaction, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHex, err)
	}
	return FromBytes(raw)
}

// ParseTxIDHex converts a display-order txid hex string to the 32-byte
// internal-order hash.
func ParseTxIDHex(txid string) ([32]byte, error) {
	var out [32]byte
	raw, err := hex.DecodeString(txid)
	if err != nil {
		return out, fmt.Errorf("%w: %w", ErrInvalidHex, err)
	}
	if len(raw) != 32 {
		return out, fmt.Errorf("%w: txid is %d bytes", ErrInvalidHex, len(raw))
	}
	copy(out[:], reverseBytes(raw))
	return out, nil
}

func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
