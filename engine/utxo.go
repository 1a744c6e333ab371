package engine

import (
	"errors"
	"fmt"
	"sort"

	"github.com/openspv/walletengine-go/datastore"
)

// GetBalance returns the total unspent, unreserved-or-not satoshis
// owned by an xpub. Reserved UTXOs still count toward the balance
// until they are actually spent.
func (e *Engine) GetBalance(xpubID string) (uint64, error) {
	utxos, err := e.store.ListUnspentUTXOs(xpubID)
	if err != nil {
		return 0, err
	}
	var total uint64
	for _, u := range utxos {
		total += u.Satoshis
	}
	return total, nil
}

// GetUTXO looks up a UTXO by its "<txid>:<vout>" ID.
func (e *Engine) GetUTXO(id string) (*datastore.UTXO, error) {
	u, err := e.store.GetUTXO(id)
	if err != nil {
		if errors.Is(err, datastore.ErrUTXONotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUTXONotFound, id)
		}
		return nil, err
	}
	return u, nil
}

// selectUTXOs picks unspent, unreserved UTXOs covering at least
// required satoshis: greedy, largest first, ties broken by ID so the
// selection is deterministic.
func (e *Engine) selectUTXOs(xpubID string, required uint64) ([]*datastore.UTXO, error) {
	utxos, err := e.store.ListUnspentUTXOs(xpubID)
	if err != nil {
		return nil, err
	}

	candidates := utxos[:0]
	for _, u := range utxos {
		if !u.Reserved() {
			candidates = append(candidates, u)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Satoshis != candidates[j].Satoshis {
			return candidates[i].Satoshis > candidates[j].Satoshis
		}
		return candidates[i].ID < candidates[j].ID
	})

	var selected []*datastore.UTXO
	var total uint64
	for _, u := range candidates {
		selected = append(selected, u)
		total += u.Satoshis
		if total >= required {
			return selected, nil
		}
	}

	return nil, fmt.Errorf("%w: need %d, have %d unreserved", ErrNotEnoughFunds, required, total)
}
