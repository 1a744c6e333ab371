package engine

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/openspv/walletengine-go/chain"
	"github.com/openspv/walletengine-go/datastore"
	"github.com/openspv/walletengine-go/script"
	"github.com/openspv/walletengine-go/tx"
)

// RecordTransaction ingests a signed transaction for an owner: it
// validates the draft (when one is referenced), marks the spent UTXOs,
// creates UTXOs for outputs paying known destinations, completes the
// draft, and adjusts balances, all in one datastore transaction. The
// recorded transaction is then broadcast best effort; a broadcast
// failure keeps the local record and is only logged.
//
// Recording is idempotent on txid: resubmitting the same hex returns
// the existing record.
func (e *Engine) RecordTransaction(ctx context.Context, xpubID, signedHex, draftID string) (*datastore.Transaction, error) {
	parsed, err := tx.FromHex(signedHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTxHex, err)
	}
	txid := parsed.TxID()

	if existing, err := e.store.GetTransaction(txid); err == nil {
		return existing, nil
	}

	var fee uint64
	if draftID != "" {
		draft, err := e.validateDraft(draftID, xpubID)
		if err != nil {
			return nil, err
		}
		fee = draft.Fee
	}

	var totalValue uint64
	for _, out := range parsed.Outputs {
		if out.Satoshis < 0 {
			return nil, fmt.Errorf("%w: negative output value %d", ErrInvalidTxHex, out.Satoshis)
		}
		totalValue += uint64(out.Satoshis)
	}

	spentIDs := make([]string, 0, len(parsed.Inputs))
	for _, in := range parsed.Inputs {
		if in.IsCoinbase() {
			continue
		}
		spentIDs = append(spentIDs, fmt.Sprintf("%s:%d", in.PrevTxIDHex(), in.PrevIndex))
	}

	now := time.Now().UTC()
	newUTXOs := e.utxosForOutputs(parsed, txid, now)

	record := &datastore.Transaction{
		ID:         txid,
		XPubID:     xpubID,
		Hex:        signedHex,
		Status:     datastore.TxStatusCreated,
		DraftID:    draftID,
		TotalValue: totalValue,
		Fee:        fee,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err = e.store.RecordTransactionAtomic(&datastore.TransactionRecord{
		Transaction:  record,
		SpentUTXOIDs: spentIDs,
		NewUTXOs:     newUTXOs,
		DraftID:      draftID,
	})
	if err != nil {
		switch {
		case errors.Is(err, datastore.ErrDuplicateTx):
			return e.store.GetTransaction(txid)
		// The draft state is re-checked inside the atomic record, so a
		// concurrent record racing past validateDraft surfaces here.
		case errors.Is(err, datastore.ErrDraftCanceled):
			return nil, fmt.Errorf("%w: %s", ErrDraftCanceled, draftID)
		case errors.Is(err, datastore.ErrDraftCompleted):
			return nil, fmt.Errorf("%w: %s", ErrDraftAlreadyUsed, draftID)
		}
		return nil, err
	}
	e.invalidateXPub(xpubID)
	for _, u := range newUTXOs {
		if u.XPubID != xpubID {
			e.invalidateXPub(u.XPubID)
		}
	}

	e.log.WithFields(map[string]interface{}{
		"txid":    txid,
		"xpub_id": xpubID,
		"inputs":  len(spentIDs),
		"outputs": len(parsed.Outputs),
	}).Info("transaction recorded")

	e.broadcastRecorded(ctx, record)
	return record, nil
}

// validateDraft checks that a referenced draft exists, belongs to the
// owner, and is still open.
func (e *Engine) validateDraft(draftID, xpubID string) (*datastore.DraftTransaction, error) {
	draft, err := e.store.GetDraft(draftID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDraftNotFound, draftID)
	}
	if draft.XPubID != xpubID {
		return nil, fmt.Errorf("%w: %s", ErrDraftNotFound, draftID)
	}
	switch draft.Status {
	case datastore.DraftStatusCanceled:
		return nil, fmt.Errorf("%w: %s", ErrDraftCanceled, draftID)
	case datastore.DraftStatusComplete:
		return nil, fmt.Errorf("%w: %s", ErrDraftAlreadyUsed, draftID)
	}
	return draft, nil
}

// utxosForOutputs creates UTXO records for the outputs paying known
// destinations. Data outputs and outputs to unknown scripts are
// skipped; the latter belong to external wallets.
func (e *Engine) utxosForOutputs(parsed *tx.Transaction, txid string, now time.Time) []*datastore.UTXO {
	var utxos []*datastore.UTXO
	for vout, out := range parsed.Outputs {
		scriptType := script.Classify(out.LockingScript)
		if scriptType == script.TypeNullData {
			continue
		}
		scriptHex := hex.EncodeToString(out.LockingScript)
		dest, err := e.store.GetDestination(destinationID(scriptHex))
		if err != nil {
			continue
		}
		utxos = append(utxos, &datastore.UTXO{
			ID:           fmt.Sprintf("%s:%d", txid, vout),
			XPubID:       dest.XPubID,
			TxID:         txid,
			OutputIndex:  uint32(vout),
			Satoshis:     uint64(out.Satoshis),
			ScriptPubKey: scriptHex,
			Type:         scriptType,
			CreatedAt:    now,
		})
	}
	return utxos
}

// broadcastRecorded submits a freshly recorded transaction to the
// network. Failures keep the local record; a later sync retries via
// the miner's status endpoint.
func (e *Engine) broadcastRecorded(ctx context.Context, t *datastore.Transaction) {
	if e.arc == nil {
		return
	}

	info, err := e.arc.Broadcast(ctx, t.Hex)
	if err != nil {
		e.log.WithField("txid", t.ID).WithError(err).Warn("broadcast failed, transaction kept local")
		return
	}

	switch info.TXStatus {
	case chain.StatusSeenOnNetwork, chain.StatusAcceptedByNetwork:
		t.Status = datastore.TxStatusBroadcast
		t.UpdatedAt = time.Now().UTC()
		if err := e.store.PutTransaction(t); err != nil {
			e.log.WithField("txid", t.ID).WithError(err).Warn("failed to store broadcast status")
		}
	default:
		e.log.WithFields(map[string]interface{}{
			"txid":   t.ID,
			"status": info.TXStatus,
		}).Debug("broadcast accepted, awaiting network confirmation")
	}
}

// GetTransaction looks up a recorded transaction by txid.
func (e *Engine) GetTransaction(txid string) (*datastore.Transaction, error) {
	t, err := e.store.GetTransaction(txid)
	if err != nil {
		if errors.Is(err, datastore.ErrTxNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, txid)
		}
		return nil, err
	}
	return t, nil
}
