package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openspv/walletengine-go/chain"
	"github.com/openspv/walletengine-go/datastore"
	"github.com/openspv/walletengine-go/merkle"
)

// HandleConfirmationCallback applies an ARC status update to a
// recorded transaction. Block data from the update is stored, and a
// mined status with a Merkle path triggers a local root recomputation
// plus an external check against the header oracle. Verification
// failures are logged, never fatal: the status update itself is the
// source of truth and a flaky oracle must not wedge confirmations.
func (e *Engine) HandleConfirmationCallback(ctx context.Context, info *chain.TXInfo) error {
	t, err := e.store.GetTransaction(info.TxID)
	if err != nil {
		if errors.Is(err, datastore.ErrTxNotFound) {
			return fmt.Errorf("%w: %s", ErrTransactionNotFound, info.TxID)
		}
		return err
	}

	switch info.TXStatus {
	case chain.StatusSeenOnNetwork:
		t.Status = datastore.TxStatusSeenOnNetwork
	case chain.StatusMined, chain.StatusConfirmed:
		t.Status = datastore.TxStatusMined
	case chain.StatusRejected:
		t.Status = datastore.TxStatusRejected
		if len(info.CompetingTxs) > 0 {
			t.CompetingTxs = info.CompetingTxs
		}
	case chain.StatusSentToNetwork, chain.StatusAcceptedByNetwork:
		t.Status = datastore.TxStatusBroadcast
	default:
		// Intermediate queue statuses carry no state change.
	}

	if info.BlockHash != "" {
		t.BlockHash = info.BlockHash
	}
	if info.BlockHeight != 0 {
		t.BlockHeight = info.BlockHeight
	}
	if info.MerklePath != "" {
		t.MerklePathHex = info.MerklePath
	}

	if t.Status == datastore.TxStatusMined && t.MerklePathHex != "" {
		e.verifyMerklePath(ctx, t)
	}

	t.UpdatedAt = time.Now().UTC()
	if err := e.store.PutTransaction(t); err != nil {
		return err
	}

	e.log.WithFields(map[string]interface{}{
		"txid":   t.ID,
		"status": t.Status,
	}).Debug("transaction status updated")
	return nil
}

// verifyMerklePath recomputes the Merkle root from the stored path and
// checks it against the header oracle when one is configured.
func (e *Engine) verifyMerklePath(ctx context.Context, t *datastore.Transaction) {
	path, err := merkle.ParsePathHex(t.MerklePathHex)
	if err != nil {
		e.log.WithField("txid", t.ID).WithError(err).Warn("merkle path unparseable")
		return
	}
	root, err := path.ComputeRoot(t.ID)
	if err != nil {
		e.log.WithField("txid", t.ID).WithError(err).Warn("merkle root computation failed")
		return
	}

	if e.headers == nil {
		e.log.WithField("txid", t.ID).Debug("merkle root computed, no header oracle configured")
		return
	}

	resp, err := e.headers.VerifyMerkleRoots(ctx, []chain.MerkleRootVerification{{
		MerkleRoot:  root,
		BlockHeight: uint64(path.BlockHeight),
	}})
	if err != nil {
		e.log.WithField("txid", t.ID).WithError(err).Warn("merkle root verification unavailable")
		return
	}
	if !resp.AllConfirmed() {
		e.log.WithFields(map[string]interface{}{
			"txid":  t.ID,
			"root":  root,
			"state": resp.ConfirmationState,
		}).Warn("merkle root not confirmed by header oracle")
		return
	}

	e.log.WithFields(map[string]interface{}{
		"txid":   t.ID,
		"root":   root,
		"height": path.BlockHeight,
	}).Debug("merkle root confirmed")
}

// SyncPendingTransactions queries the broadcaster for every
// transaction still in broadcast status and applies the returned
// statuses. It returns the number of transactions whose status was
// refreshed. Callback delivery is not guaranteed, so deployments run
// this periodically as a safety net.
func (e *Engine) SyncPendingTransactions(ctx context.Context) (int, error) {
	if e.arc == nil {
		return 0, nil
	}

	pending, err := e.store.ListTransactionsByStatus(datastore.TxStatusBroadcast)
	if err != nil {
		return 0, err
	}

	synced := 0
	for _, t := range pending {
		info, err := e.arc.QueryTransaction(ctx, t.ID)
		if err != nil {
			e.log.WithField("txid", t.ID).WithError(err).Warn("status query failed")
			continue
		}
		if err := e.HandleConfirmationCallback(ctx, info); err != nil {
			e.log.WithField("txid", t.ID).WithError(err).Warn("status update failed")
			continue
		}
		synced++
	}
	return synced, nil
}
