package datastore

import "time"

// Store is the persistence contract the engine depends on. All methods
// are safe for concurrent use and every read excludes tombstoned rows.
type Store interface {
	// XPubs.
	PutXPub(x *XPub) error
	GetXPub(id string) (*XPub, error)

	// IncrementChainNum reserves count derivation indexes on the given
	// chain (0 external, 1 internal) and returns the first reserved
	// index. Read-increment-write happens in one database transaction.
	IncrementChainNum(xpubID string, chain uint32, count uint32) (uint32, error)

	// Destinations.
	PutDestination(d *Destination) error
	GetDestination(id string) (*Destination, error)
	GetDestinationByAddress(address string) (*Destination, error)
	ListDestinations(xpubID string) ([]*Destination, error)

	// UTXOs.
	PutUTXO(u *UTXO) error
	GetUTXO(id string) (*UTXO, error)

	// ListUnspentUTXOs returns all live, unspent UTXOs owned by xpubID,
	// including ones reserved by drafts. Callers filter reservations.
	ListUnspentUTXOs(xpubID string) ([]*UTXO, error)

	// ReserveUTXOs marks the given UTXOs as held by draftID. The
	// reservation is all-or-nothing: if any target is missing, spent,
	// or reserved by another draft, no UTXO is touched.
	ReserveUTXOs(draftID string, ids []string) error

	// ReleaseUTXOs clears every reservation held by draftID.
	ReleaseUTXOs(draftID string) error

	// MarkUTXOSpent sets the spending txid on a live, unspent UTXO.
	MarkUTXOSpent(id string, spendingTxID string) error

	// Drafts.
	PutDraft(d *DraftTransaction) error
	GetDraft(id string) (*DraftTransaction, error)
	ListExpiredDrafts(now time.Time) ([]*DraftTransaction, error)

	// Transactions.
	PutTransaction(t *Transaction) error
	GetTransaction(id string) (*Transaction, error)
	ListTransactionsByStatus(status TxStatus) ([]*Transaction, error)

	// RecordTransactionAtomic persists a recorded transaction and its
	// ledger effects in one database transaction: the transaction row,
	// spent input UTXOs, newly created output UTXOs, owner balance
	// adjustments, and draft completion.
	RecordTransactionAtomic(rec *TransactionRecord) error

	Close() error
}

// TransactionRecord bundles everything RecordTransactionAtomic applies.
type TransactionRecord struct {
	Transaction *Transaction

	// SpentUTXOIDs are input UTXO IDs to mark spent. IDs not present in
	// the store refer to outputs the wallet never owned and are skipped.
	SpentUTXOIDs []string

	// NewUTXOs are outputs of the recorded transaction that pay known
	// destinations.
	NewUTXOs []*UTXO

	// DraftID, when set, names the draft to complete.
	DraftID string
}
