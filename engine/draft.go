package engine

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/openspv/walletengine-go/chain"
	"github.com/openspv/walletengine-go/datastore"
	"github.com/openspv/walletengine-go/keys"
	"github.com/openspv/walletengine-go/script"
	"github.com/openspv/walletengine-go/tx"
)

// OutputSpec describes one requested output of a draft transaction.
// Exactly one destination form is used, in order of precedence:
// OpReturn data parts, a raw locking Script in hex, or a P2PKH address
// in To. OpReturn outputs carry zero satoshis.
type OutputSpec struct {
	To       string
	Satoshis uint64
	Script   string
	OpReturn [][]byte
}

// NewDraftTransaction builds an unsigned draft spending the owner's
// UTXOs to cover the requested outputs plus fee. Inputs are selected
// greedily, reserved for the draft, and a change output on the
// internal chain is appended when needed. The caller signs the
// returned hex and submits it to RecordTransaction; drafts not
// recorded before ExpiresAt are reaped and their inputs released.
//
// A nil feeUnit uses the broadcaster's policy rate, falling back to
// the configured default.
func (e *Engine) NewDraftTransaction(ctx context.Context, xpubID string, outputs []OutputSpec, feeUnit *chain.FeeUnit) (*datastore.DraftTransaction, error) {
	if _, err := e.GetXPubByID(xpubID); err != nil {
		return nil, err
	}

	built, totalOut, err := buildOutputs(outputs)
	if err != nil {
		return nil, err
	}
	unit := e.resolveFeeUnit(ctx, feeUnit)

	// First pass assumes one input; the real count re-prices below.
	// The output count includes the potential change output either way.
	outputCount := len(built) + 1
	fee := EstimateFee(unit, 1, outputCount)
	selected, err := e.selectUTXOs(xpubID, totalOut+fee)
	if err != nil {
		return nil, err
	}
	fee = EstimateFee(unit, len(selected), outputCount)

	var totalIn uint64
	for _, u := range selected {
		totalIn += u.Satoshis
	}
	if totalIn < totalOut+fee {
		return nil, fmt.Errorf("%w: need %d, selected %d", ErrNotEnoughFunds, totalOut+fee, totalIn)
	}

	t := tx.New()
	for _, u := range selected {
		prevTxID, err := tx.ParseTxIDHex(u.TxID)
		if err != nil {
			return nil, fmt.Errorf("engine: utxo %s: %w", u.ID, err)
		}
		t.AddInput(prevTxID, u.OutputIndex)
	}
	for _, out := range built {
		t.AddOutput(out.Satoshis, out.LockingScript)
	}

	change := totalIn - totalOut - fee
	if change > 0 {
		changeDest, err := e.newChangeDestination(xpubID)
		if err != nil {
			return nil, err
		}
		changeScript, err := hex.DecodeString(changeDest.LockingScript)
		if err != nil {
			return nil, err
		}
		t.AddOutput(int64(change), changeScript)
	}

	draftID, err := newDraftID()
	if err != nil {
		return nil, err
	}
	// Signers need the selected inputs' values and locking scripts; the
	// unsigned hex does not carry them.
	inputs := make([]datastore.DraftInput, len(selected))
	ids := make([]string, len(selected))
	for i, u := range selected {
		inputs[i] = datastore.DraftInput{
			ID:           u.ID,
			TxID:         u.TxID,
			OutputIndex:  u.OutputIndex,
			Satoshis:     u.Satoshis,
			ScriptPubKey: u.ScriptPubKey,
		}
		ids[i] = u.ID
	}

	now := time.Now().UTC()
	draft := &datastore.DraftTransaction{
		ID:             draftID,
		XPubID:         xpubID,
		Status:         datastore.DraftStatusDraft,
		Hex:            t.Hex(),
		SelectedInputs: inputs,
		TotalValue:     totalOut,
		Fee:            fee,
		ChangeSatoshis: change,
		ExpiresAt:      now.Add(e.cfg.DraftTTL),
		CreatedAt:      now,
	}
	if err := e.store.ReserveUTXOs(draftID, ids); err != nil {
		return nil, err
	}
	if err := e.store.PutDraft(draft); err != nil {
		if relErr := e.store.ReleaseUTXOs(draftID); relErr != nil {
			e.log.WithField("draft_id", draftID).WithError(relErr).Warn("failed to release utxos after draft store failure")
		}
		return nil, err
	}

	e.log.WithFields(map[string]interface{}{
		"draft_id": draftID,
		"xpub_id":  xpubID,
		"inputs":   len(selected),
		"outputs":  len(t.Outputs),
		"fee":      fee,
	}).Debug("draft created")
	return draft, nil
}

// CancelDraft cancels a live draft owned by xpubID and releases its
// reserved inputs.
func (e *Engine) CancelDraft(draftID, xpubID string) error {
	draft, err := e.store.GetDraft(draftID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrDraftNotFound, draftID)
	}
	if draft.XPubID != xpubID {
		return fmt.Errorf("%w: %s", ErrDraftNotFound, draftID)
	}

	draft.Status = datastore.DraftStatusCanceled
	if err := e.store.PutDraft(draft); err != nil {
		return err
	}
	return e.store.ReleaseUTXOs(draftID)
}

// ReapExpiredDrafts cancels every draft whose ExpiresAt has passed and
// releases the UTXOs it reserved. It returns the number of drafts
// reaped.
func (e *Engine) ReapExpiredDrafts(now time.Time) (int, error) {
	expired, err := e.store.ListExpiredDrafts(now)
	if err != nil {
		return 0, err
	}

	reaped := 0
	for _, draft := range expired {
		draft.Status = datastore.DraftStatusCanceled
		if err := e.store.PutDraft(draft); err != nil {
			return reaped, err
		}
		if err := e.store.ReleaseUTXOs(draft.ID); err != nil {
			return reaped, err
		}
		reaped++
	}
	if reaped > 0 {
		e.log.WithField("count", reaped).Info("expired drafts reaped")
	}
	return reaped, nil
}

// buildOutputs converts the requested output specs to wire outputs and
// returns them with the total requested satoshis.
func buildOutputs(specs []OutputSpec) ([]*tx.Output, uint64, error) {
	if len(specs) == 0 {
		return nil, 0, fmt.Errorf("%w: no outputs requested", ErrInvalidOutputSpec)
	}

	outputs := make([]*tx.Output, 0, len(specs))
	var total uint64
	for i, spec := range specs {
		switch {
		case len(spec.OpReturn) > 0:
			outputs = append(outputs, &tx.Output{
				Satoshis:      0,
				LockingScript: script.OpReturnScript(spec.OpReturn...),
			})

		case spec.Script != "":
			lockingScript, err := hex.DecodeString(spec.Script)
			if err != nil {
				return nil, 0, fmt.Errorf("%w: output %d script: %w", ErrInvalidOutputSpec, i, err)
			}
			outputs = append(outputs, &tx.Output{
				Satoshis:      int64(spec.Satoshis),
				LockingScript: lockingScript,
			})
			total += spec.Satoshis

		case spec.To != "":
			pubKeyHash, err := keys.PubKeyHashFromAddress(spec.To)
			if err != nil {
				return nil, 0, fmt.Errorf("%w: output %d: %w", ErrInvalidOutputSpec, i, err)
			}
			lockingScript, err := script.P2PKHLock(pubKeyHash)
			if err != nil {
				return nil, 0, fmt.Errorf("%w: output %d: %w", ErrInvalidOutputSpec, i, err)
			}
			outputs = append(outputs, &tx.Output{
				Satoshis:      int64(spec.Satoshis),
				LockingScript: lockingScript,
			})
			total += spec.Satoshis

		default:
			return nil, 0, fmt.Errorf("%w: output %d names no destination", ErrInvalidOutputSpec, i)
		}
	}
	return outputs, total, nil
}

// resolveFeeUnit picks the fee rate for a draft: the caller's explicit
// rate, then the broadcaster's policy, then the configured default.
func (e *Engine) resolveFeeUnit(ctx context.Context, feeUnit *chain.FeeUnit) chain.FeeUnit {
	if feeUnit != nil {
		return *feeUnit
	}
	if e.arc != nil {
		unit, err := e.arc.GetFeeUnit(ctx)
		if err == nil {
			return unit
		}
		e.log.WithError(err).Warn("fee quote failed, using configured fee unit")
	}
	return e.defaultFeeUnit()
}

func newDraftID() (string, error) {
	var raw [32]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", fmt.Errorf("engine: draft id: %w", err)
	}
	return hex.EncodeToString(raw[:]), nil
}
