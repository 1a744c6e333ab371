package datastore

import "errors"

var (
	// ErrNilParam indicates a required parameter was nil or empty.
	ErrNilParam = errors.New("datastore: nil parameter")

	// ErrXPubNotFound indicates no live xpub exists for the given ID.
	ErrXPubNotFound = errors.New("datastore: xpub not found")

	// ErrDestinationNotFound indicates no live destination matched.
	ErrDestinationNotFound = errors.New("datastore: destination not found")

	// ErrUTXONotFound indicates no live UTXO exists for the given ID.
	ErrUTXONotFound = errors.New("datastore: utxo not found")

	// ErrUTXOSpent indicates the UTXO is already consumed by a recorded
	// transaction.
	ErrUTXOSpent = errors.New("datastore: utxo already spent")

	// ErrUTXOReserved indicates the UTXO is held by another draft.
	ErrUTXOReserved = errors.New("datastore: utxo reserved by another draft")

	// ErrDraftNotFound indicates no live draft exists for the given ID.
	ErrDraftNotFound = errors.New("datastore: draft not found")

	// ErrDraftCanceled indicates the draft was canceled and cannot be
	// completed.
	ErrDraftCanceled = errors.New("datastore: draft canceled")

	// ErrDraftCompleted indicates the draft was already completed by a
	// recorded transaction.
	ErrDraftCompleted = errors.New("datastore: draft already completed")

	// ErrTxNotFound indicates no live transaction exists for the txid.
	ErrTxNotFound = errors.New("datastore: transaction not found")

	// ErrDuplicateTx indicates the txid is already recorded.
	ErrDuplicateTx = errors.New("datastore: transaction already recorded")
)
