// Package datastore persists wallet engine state in a bbolt database:
// registered xpubs, derived destinations, the UTXO ledger, transaction
// drafts, and recorded transactions.
//
// Entity IDs are strings. XPub, destination, draft and transaction IDs
// are 64-character hex digests; UTXO IDs are "<txid>:<vout>". Records
// are soft-deleted via the DeletedAt tombstone and every read filters
// tombstoned rows.
package datastore

import (
	"time"

	"github.com/openspv/walletengine-go/script"
)

// DraftStatus is the lifecycle state of a DraftTransaction.
type DraftStatus string

const (
	DraftStatusDraft    DraftStatus = "draft"
	DraftStatusComplete DraftStatus = "complete"
	DraftStatusCanceled DraftStatus = "canceled"
)

// TxStatus is the lifecycle state of a recorded Transaction.
type TxStatus string

const (
	TxStatusCreated       TxStatus = "created"
	TxStatusBroadcast     TxStatus = "broadcast"
	TxStatusSeenOnNetwork TxStatus = "seen_on_network"
	TxStatusMined         TxStatus = "mined"
	TxStatusRejected      TxStatus = "rejected"
)

// XPub is a registered extended public key, the ownership root for
// destinations and UTXOs. ID is the SHA-256 hex of the raw xpub string.
type XPub struct {
	ID              string
	RawXPub         string
	CurrentBalance  uint64
	NextExternalNum uint32
	NextInternalNum uint32
	CreatedAt       time.Time
	DeletedAt       time.Time
}

// Destination is a derived locking script owned by an xpub. ID is the
// SHA-256 hex of the locking script hex, so re-deriving the same
// xpub/chain/num yields the same destination.
type Destination struct {
	ID            string
	XPubID        string
	LockingScript string // hex
	Type          script.Type
	Chain         uint32
	Num           uint32
	Address       string
	CreatedAt     time.Time
	DeletedAt     time.Time
}

// UTXO is one spendable transaction output. DraftID marks a soft
// reservation by an in-flight draft; SpendingTxID marks the output as
// spent once the spending transaction is recorded.
type UTXO struct {
	ID           string // "<txid>:<vout>"
	XPubID       string
	TxID         string // display hex
	OutputIndex  uint32
	Satoshis     uint64
	ScriptPubKey string // hex
	Type         script.Type
	DraftID      string
	ReservedAt   time.Time
	SpendingTxID string
	CreatedAt    time.Time
	DeletedAt    time.Time
}

// Reserved reports whether the UTXO is held by an in-flight draft.
func (u *UTXO) Reserved() bool { return u.DraftID != "" }

// Spent reports whether the UTXO has been consumed by a recorded
// transaction.
func (u *UTXO) Spent() bool { return u.SpendingTxID != "" }

// DraftInput is one UTXO selected to fund a draft. It carries the
// outpoint, value, and locking script the signer needs: BSV sighash
// commits to the input value, and the unsigned hex alone does not
// carry it.
type DraftInput struct {
	ID           string // "<txid>:<vout>"
	TxID         string // display hex
	OutputIndex  uint32
	Satoshis     uint64
	ScriptPubKey string // hex
}

// DraftTransaction is a prepared-but-unsigned transaction. It holds the
// inputs reserved for it until it is completed, canceled, or reaped
// after ExpiresAt.
type DraftTransaction struct {
	ID             string
	XPubID         string
	Status         DraftStatus
	Hex            string // unsigned transaction hex
	SelectedInputs []DraftInput
	TotalValue     uint64 // satoshis sent to the requested outputs
	Fee            uint64
	ChangeSatoshis uint64
	FinalTxID      string // set when the signed transaction is recorded
	ExpiresAt      time.Time
	CreatedAt      time.Time
	DeletedAt      time.Time
}

// Transaction is a recorded (signed) transaction and its confirmation
// state as reported by the broadcast service.
type Transaction struct {
	ID            string // txid, display hex
	XPubID        string
	Hex           string
	Status        TxStatus
	DraftID       string
	BlockHash     string
	BlockHeight   uint64
	MerklePathHex string
	CompetingTxs  []string
	TotalValue    uint64
	Fee           uint64
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     time.Time
}
