package datastore

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

var (
	bucketXPubs        = []byte("xpubs")
	bucketDestinations = []byte("destinations")
	bucketDestAddress  = []byte("destinations_address")
	bucketDestXPub     = []byte("destinations_xpub")
	bucketUTXOs        = []byte("utxos")
	bucketUTXOXPub     = []byte("utxos_xpub")
	bucketDrafts       = []byte("drafts")
	bucketTransactions = []byte("transactions")
	bucketTxXPub       = []byte("transactions_xpub")
)

// BoltStore implements Store on top of a bbolt database.
type BoltStore struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ Store = (*BoltStore)(nil)

// OpenBoltStore opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("datastore: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("datastore: open bolt db: %w", err)
	}

	err = db.Update(func(btx *bbolt.Tx) error {
		for _, name := range [][]byte{
			bucketXPubs, bucketDestinations, bucketDestAddress, bucketDestXPub,
			bucketUTXOs, bucketUTXOXPub, bucketDrafts, bucketTransactions, bucketTxXPub,
		} {
			if _, err := btx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("boltstore: create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("datastore: create buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// compositeKey joins an owner xpub ID and an entity ID for prefix
// scanning. XPub IDs are fixed-width (64 hex chars), so the prefix
// boundary is unambiguous.
func compositeKey(xpubID, id string) []byte {
	k := make([]byte, 0, len(xpubID)+len(id))
	k = append(k, xpubID...)
	return append(k, id...)
}

// encodeGob serializes a value using gob encoding.
func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeGob deserializes gob-encoded data into a value.
func decodeGob(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

// putGob gob-encodes v and stores it under key.
func putGob(b *bbolt.Bucket, key string, v interface{}) error {
	data, err := encodeGob(v)
	if err != nil {
		return fmt.Errorf("boltstore: encode %q: %w", key, err)
	}
	if err := b.Put([]byte(key), data); err != nil {
		return fmt.Errorf("boltstore: put %q: %w", key, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// XPubs
// ---------------------------------------------------------------------------

// PutXPub inserts or overwrites an xpub row.
func (s *BoltStore) PutXPub(x *XPub) error {
	if x == nil || x.ID == "" {
		return fmt.Errorf("%w: xpub", ErrNilParam)
	}
	return s.db.Update(func(btx *bbolt.Tx) error {
		return putGob(btx.Bucket(bucketXPubs), x.ID, x)
	})
}

// GetXPub retrieves a live xpub by ID.
func (s *BoltStore) GetXPub(id string) (*XPub, error) {
	var x XPub
	err := s.db.View(func(btx *bbolt.Tx) error {
		return loadXPub(btx, id, &x)
	})
	if err != nil {
		return nil, err
	}
	return &x, nil
}

func loadXPub(btx *bbolt.Tx, id string, x *XPub) error {
	data := btx.Bucket(bucketXPubs).Get([]byte(id))
	if data == nil {
		return fmt.Errorf("%w: %s", ErrXPubNotFound, id)
	}
	if err := decodeGob(data, x); err != nil {
		return fmt.Errorf("boltstore: decode xpub: %w", err)
	}
	if !x.DeletedAt.IsZero() {
		return fmt.Errorf("%w: %s", ErrXPubNotFound, id)
	}
	return nil
}

// IncrementChainNum reserves count derivation indexes and returns the
// first one. The read-increment-write runs in a single bolt transaction
// so concurrent callers never receive overlapping ranges.
func (s *BoltStore) IncrementChainNum(xpubID string, chain uint32, count uint32) (uint32, error) {
	var start uint32
	err := s.db.Update(func(btx *bbolt.Tx) error {
		var x XPub
		if err := loadXPub(btx, xpubID, &x); err != nil {
			return err
		}
		switch chain {
		case 0:
			start = x.NextExternalNum
			x.NextExternalNum += count
		case 1:
			start = x.NextInternalNum
			x.NextInternalNum += count
		default:
			return fmt.Errorf("boltstore: invalid chain %d", chain)
		}
		return putGob(btx.Bucket(bucketXPubs), x.ID, &x)
	})
	if err != nil {
		return 0, err
	}
	return start, nil
}

// ---------------------------------------------------------------------------
// Destinations
// ---------------------------------------------------------------------------

// PutDestination inserts or overwrites a destination and its address
// and owner indexes.
func (s *BoltStore) PutDestination(d *Destination) error {
	if d == nil || d.ID == "" || d.XPubID == "" {
		return fmt.Errorf("%w: destination", ErrNilParam)
	}
	return s.db.Update(func(btx *bbolt.Tx) error {
		if err := putGob(btx.Bucket(bucketDestinations), d.ID, d); err != nil {
			return err
		}
		if d.Address != "" {
			if err := btx.Bucket(bucketDestAddress).Put([]byte(d.Address), []byte(d.ID)); err != nil {
				return fmt.Errorf("boltstore: put destination address index: %w", err)
			}
		}
		if err := btx.Bucket(bucketDestXPub).Put(compositeKey(d.XPubID, d.ID), []byte{}); err != nil {
			return fmt.Errorf("boltstore: put destination xpub index: %w", err)
		}
		return nil
	})
}

// GetDestination retrieves a live destination by ID.
func (s *BoltStore) GetDestination(id string) (*Destination, error) {
	var d Destination
	err := s.db.View(func(btx *bbolt.Tx) error {
		return loadDestination(btx, id, &d)
	})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func loadDestination(btx *bbolt.Tx, id string, d *Destination) error {
	data := btx.Bucket(bucketDestinations).Get([]byte(id))
	if data == nil {
		return fmt.Errorf("%w: %s", ErrDestinationNotFound, id)
	}
	if err := decodeGob(data, d); err != nil {
		return fmt.Errorf("boltstore: decode destination: %w", err)
	}
	if !d.DeletedAt.IsZero() {
		return fmt.Errorf("%w: %s", ErrDestinationNotFound, id)
	}
	return nil
}

// GetDestinationByAddress retrieves a live destination by its address.
func (s *BoltStore) GetDestinationByAddress(address string) (*Destination, error) {
	if address == "" {
		return nil, fmt.Errorf("%w: address", ErrNilParam)
	}
	var d Destination
	err := s.db.View(func(btx *bbolt.Tx) error {
		id := btx.Bucket(bucketDestAddress).Get([]byte(address))
		if id == nil {
			return fmt.Errorf("%w: address %s", ErrDestinationNotFound, address)
		}
		return loadDestination(btx, string(id), &d)
	})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDestinations returns all live destinations owned by xpubID.
func (s *BoltStore) ListDestinations(xpubID string) ([]*Destination, error) {
	var out []*Destination
	err := s.db.View(func(btx *bbolt.Tx) error {
		destBucket := btx.Bucket(bucketDestinations)
		prefix := []byte(xpubID)

		c := btx.Bucket(bucketDestXPub).Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			data := destBucket.Get(k[len(prefix):])
			if data == nil {
				continue // stale index entry
			}
			var d Destination
			if err := decodeGob(data, &d); err != nil {
				return fmt.Errorf("boltstore: decode destination in list: %w", err)
			}
			if !d.DeletedAt.IsZero() {
				continue
			}
			out = append(out, &d)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// UTXOs
// ---------------------------------------------------------------------------

// PutUTXO inserts or overwrites a UTXO and its owner index.
func (s *BoltStore) PutUTXO(u *UTXO) error {
	if u == nil || u.ID == "" || u.XPubID == "" {
		return fmt.Errorf("%w: utxo", ErrNilParam)
	}
	return s.db.Update(func(btx *bbolt.Tx) error {
		return putUTXOTx(btx, u)
	})
}

func putUTXOTx(btx *bbolt.Tx, u *UTXO) error {
	if err := putGob(btx.Bucket(bucketUTXOs), u.ID, u); err != nil {
		return err
	}
	if err := btx.Bucket(bucketUTXOXPub).Put(compositeKey(u.XPubID, u.ID), []byte{}); err != nil {
		return fmt.Errorf("boltstore: put utxo xpub index: %w", err)
	}
	return nil
}

// GetUTXO retrieves a live UTXO by ID.
func (s *BoltStore) GetUTXO(id string) (*UTXO, error) {
	var u UTXO
	err := s.db.View(func(btx *bbolt.Tx) error {
		return loadUTXO(btx, id, &u)
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func loadUTXO(btx *bbolt.Tx, id string, u *UTXO) error {
	data := btx.Bucket(bucketUTXOs).Get([]byte(id))
	if data == nil {
		return fmt.Errorf("%w: %s", ErrUTXONotFound, id)
	}
	if err := decodeGob(data, u); err != nil {
		return fmt.Errorf("boltstore: decode utxo: %w", err)
	}
	if !u.DeletedAt.IsZero() {
		return fmt.Errorf("%w: %s", ErrUTXONotFound, id)
	}
	return nil
}

// ListUnspentUTXOs returns all live, unspent UTXOs owned by xpubID.
func (s *BoltStore) ListUnspentUTXOs(xpubID string) ([]*UTXO, error) {
	var out []*UTXO
	err := s.db.View(func(btx *bbolt.Tx) error {
		utxoBucket := btx.Bucket(bucketUTXOs)
		prefix := []byte(xpubID)

		c := btx.Bucket(bucketUTXOXPub).Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			data := utxoBucket.Get(k[len(prefix):])
			if data == nil {
				continue // stale index entry
			}
			var u UTXO
			if err := decodeGob(data, &u); err != nil {
				return fmt.Errorf("boltstore: decode utxo in list: %w", err)
			}
			if !u.DeletedAt.IsZero() || u.Spent() {
				continue
			}
			out = append(out, &u)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReserveUTXOs marks the given UTXOs as held by draftID. The operation
// is all-or-nothing: any conflict rolls back the whole reservation.
func (s *BoltStore) ReserveUTXOs(draftID string, ids []string) error {
	if draftID == "" {
		return fmt.Errorf("%w: draft id", ErrNilParam)
	}
	return s.db.Update(func(btx *bbolt.Tx) error {
		now := time.Now().UTC()
		for _, id := range ids {
			var u UTXO
			if err := loadUTXO(btx, id, &u); err != nil {
				return err
			}
			if u.Spent() {
				return fmt.Errorf("%w: %s", ErrUTXOSpent, id)
			}
			if u.Reserved() && u.DraftID != draftID {
				return fmt.Errorf("%w: %s", ErrUTXOReserved, id)
			}
			u.DraftID = draftID
			u.ReservedAt = now
			if err := putUTXOTx(btx, &u); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReleaseUTXOs clears every unspent reservation held by draftID.
func (s *BoltStore) ReleaseUTXOs(draftID string) error {
	if draftID == "" {
		return fmt.Errorf("%w: draft id", ErrNilParam)
	}
	return s.db.Update(func(btx *bbolt.Tx) error {
		var held []*UTXO
		err := btx.Bucket(bucketUTXOs).ForEach(func(k, v []byte) error {
			var u UTXO
			if err := decodeGob(v, &u); err != nil {
				return fmt.Errorf("boltstore: decode utxo in release: %w", err)
			}
			if u.DraftID == draftID && !u.Spent() {
				held = append(held, &u)
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, u := range held {
			u.DraftID = ""
			u.ReservedAt = time.Time{}
			if err := putUTXOTx(btx, u); err != nil {
				return err
			}
		}
		return nil
	})
}

// MarkUTXOSpent sets the spending txid on a live, unspent UTXO and
// drops its reservation.
func (s *BoltStore) MarkUTXOSpent(id string, spendingTxID string) error {
	if spendingTxID == "" {
		return fmt.Errorf("%w: spending txid", ErrNilParam)
	}
	return s.db.Update(func(btx *bbolt.Tx) error {
		var u UTXO
		if err := loadUTXO(btx, id, &u); err != nil {
			return err
		}
		if u.Spent() {
			return fmt.Errorf("%w: %s", ErrUTXOSpent, id)
		}
		u.SpendingTxID = spendingTxID
		u.DraftID = ""
		u.ReservedAt = time.Time{}
		return putUTXOTx(btx, &u)
	})
}

// ---------------------------------------------------------------------------
// Drafts
// ---------------------------------------------------------------------------

// PutDraft inserts or overwrites a draft row.
func (s *BoltStore) PutDraft(d *DraftTransaction) error {
	if d == nil || d.ID == "" {
		return fmt.Errorf("%w: draft", ErrNilParam)
	}
	return s.db.Update(func(btx *bbolt.Tx) error {
		return putGob(btx.Bucket(bucketDrafts), d.ID, d)
	})
}

// GetDraft retrieves a live draft by ID.
func (s *BoltStore) GetDraft(id string) (*DraftTransaction, error) {
	var d DraftTransaction
	err := s.db.View(func(btx *bbolt.Tx) error {
		return loadDraft(btx, id, &d)
	})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func loadDraft(btx *bbolt.Tx, id string, d *DraftTransaction) error {
	data := btx.Bucket(bucketDrafts).Get([]byte(id))
	if data == nil {
		return fmt.Errorf("%w: %s", ErrDraftNotFound, id)
	}
	if err := decodeGob(data, d); err != nil {
		return fmt.Errorf("boltstore: decode draft: %w", err)
	}
	if !d.DeletedAt.IsZero() {
		return fmt.Errorf("%w: %s", ErrDraftNotFound, id)
	}
	return nil
}

// ListExpiredDrafts returns live drafts still in the draft state whose
// expiry is in the past.
func (s *BoltStore) ListExpiredDrafts(now time.Time) ([]*DraftTransaction, error) {
	var out []*DraftTransaction
	err := s.db.View(func(btx *bbolt.Tx) error {
		return btx.Bucket(bucketDrafts).ForEach(func(k, v []byte) error {
			var d DraftTransaction
			if err := decodeGob(v, &d); err != nil {
				return fmt.Errorf("boltstore: decode draft in list: %w", err)
			}
			if !d.DeletedAt.IsZero() || d.Status != DraftStatusDraft {
				return nil
			}
			if d.ExpiresAt.IsZero() || !d.ExpiresAt.Before(now) {
				return nil
			}
			out = append(out, &d)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Transactions
// ---------------------------------------------------------------------------

// PutTransaction inserts or overwrites a transaction row and its owner
// index.
func (s *BoltStore) PutTransaction(t *Transaction) error {
	if t == nil || t.ID == "" {
		return fmt.Errorf("%w: transaction", ErrNilParam)
	}
	return s.db.Update(func(btx *bbolt.Tx) error {
		return putTransactionTx(btx, t)
	})
}

func putTransactionTx(btx *bbolt.Tx, t *Transaction) error {
	if err := putGob(btx.Bucket(bucketTransactions), t.ID, t); err != nil {
		return err
	}
	if t.XPubID != "" {
		if err := btx.Bucket(bucketTxXPub).Put(compositeKey(t.XPubID, t.ID), []byte{}); err != nil {
			return fmt.Errorf("boltstore: put transaction xpub index: %w", err)
		}
	}
	return nil
}

// GetTransaction retrieves a live transaction by txid.
func (s *BoltStore) GetTransaction(id string) (*Transaction, error) {
	var t Transaction
	err := s.db.View(func(btx *bbolt.Tx) error {
		data := btx.Bucket(bucketTransactions).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrTxNotFound, id)
		}
		if err := decodeGob(data, &t); err != nil {
			return fmt.Errorf("boltstore: decode transaction: %w", err)
		}
		if !t.DeletedAt.IsZero() {
			return fmt.Errorf("%w: %s", ErrTxNotFound, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTransactionsByStatus returns all live transactions in the given
// state.
func (s *BoltStore) ListTransactionsByStatus(status TxStatus) ([]*Transaction, error) {
	var out []*Transaction
	err := s.db.View(func(btx *bbolt.Tx) error {
		return btx.Bucket(bucketTransactions).ForEach(func(k, v []byte) error {
			var t Transaction
			if err := decodeGob(v, &t); err != nil {
				return fmt.Errorf("boltstore: decode transaction in list: %w", err)
			}
			if !t.DeletedAt.IsZero() || t.Status != status {
				return nil
			}
			out = append(out, &t)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RecordTransactionAtomic applies the full ledger effect of a recorded
// transaction in one bolt transaction. Any failure rolls back all of
// it, including balance adjustments.
func (s *BoltStore) RecordTransactionAtomic(rec *TransactionRecord) error {
	if rec == nil || rec.Transaction == nil || rec.Transaction.ID == "" {
		return fmt.Errorf("%w: transaction record", ErrNilParam)
	}
	txid := rec.Transaction.ID

	return s.db.Update(func(btx *bbolt.Tx) error {
		if btx.Bucket(bucketTransactions).Get([]byte(txid)) != nil {
			return fmt.Errorf("%w: %s", ErrDuplicateTx, txid)
		}
		if err := putTransactionTx(btx, rec.Transaction); err != nil {
			return err
		}

		// Per-owner satoshi deltas, applied at the end.
		deltas := make(map[string]int64)

		for _, id := range rec.SpentUTXOIDs {
			var u UTXO
			if err := loadUTXO(btx, id, &u); err != nil {
				// Inputs the wallet never owned are not in the ledger.
				continue
			}
			if u.Spent() {
				return fmt.Errorf("%w: %s", ErrUTXOSpent, id)
			}
			u.SpendingTxID = txid
			u.DraftID = ""
			u.ReservedAt = time.Time{}
			if err := putUTXOTx(btx, &u); err != nil {
				return err
			}
			deltas[u.XPubID] -= int64(u.Satoshis)
		}

		for _, u := range rec.NewUTXOs {
			if u == nil || u.ID == "" || u.XPubID == "" {
				return fmt.Errorf("%w: new utxo", ErrNilParam)
			}
			if err := putUTXOTx(btx, u); err != nil {
				return err
			}
			deltas[u.XPubID] += int64(u.Satoshis)
		}

		if rec.DraftID != "" {
			var d DraftTransaction
			if err := loadDraft(btx, rec.DraftID, &d); err != nil {
				return err
			}
			// Re-checked here, inside the write transaction: callers
			// validate drafts in a separate read, so two concurrent
			// records naming the same draft could both pass validation.
			switch d.Status {
			case DraftStatusCanceled:
				return fmt.Errorf("%w: %s", ErrDraftCanceled, d.ID)
			case DraftStatusComplete:
				return fmt.Errorf("%w: %s", ErrDraftCompleted, d.ID)
			}
			d.Status = DraftStatusComplete
			d.FinalTxID = txid
			if err := putGob(btx.Bucket(bucketDrafts), d.ID, &d); err != nil {
				return err
			}
		}

		for xpubID, delta := range deltas {
			var x XPub
			if err := loadXPub(btx, xpubID, &x); err != nil {
				continue
			}
			balance := int64(x.CurrentBalance) + delta
			if balance < 0 {
				balance = 0
			}
			x.CurrentBalance = uint64(balance)
			if err := putGob(btx.Bucket(bucketXPubs), x.ID, &x); err != nil {
				return err
			}
		}

		return nil
	})
}
