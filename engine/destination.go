package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/openspv/walletengine-go/datastore"
	"github.com/openspv/walletengine-go/keys"
	"github.com/openspv/walletengine-go/script"
)

// destinationID derives the destination ID from the locking script
// hex: SHA-256 of the hex string. Re-deriving the same xpub/chain/num
// therefore always yields the same ID.
func destinationID(lockingScriptHex string) string {
	sum := sha256.Sum256([]byte(lockingScriptHex))
	return hex.EncodeToString(sum[:])
}

// NewDestination derives the next destination for an xpub on the given
// chain (keys.ExternalChain for receiving, keys.InternalChain for
// change) and persists it. The chain counter increment is atomic, so
// concurrent callers receive distinct indexes.
func (e *Engine) NewDestination(rawXPub string, chainNum uint32) (*datastore.Destination, error) {
	xpubID := keys.XPubID(rawXPub)

	num, err := e.store.IncrementChainNum(xpubID, chainNum, 1)
	if err != nil {
		if errors.Is(err, datastore.ErrXPubNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrXPubNotFound, xpubID)
		}
		return nil, err
	}
	e.invalidateXPub(xpubID)

	dest, err := e.deriveDestination(rawXPub, xpubID, chainNum, num)
	if err != nil {
		return nil, err
	}
	if err := e.store.PutDestination(dest); err != nil {
		return nil, err
	}

	e.log.WithFields(map[string]interface{}{
		"xpub_id": xpubID,
		"chain":   chainNum,
		"num":     num,
		"address": dest.Address,
	}).Debug("destination derived")
	return dest, nil
}

// NewDestinationAt derives the destination at an explicit chain/num
// without touching the counters. It is idempotent: if the destination
// was derived before, the existing record is returned.
func (e *Engine) NewDestinationAt(rawXPub string, chainNum, num uint32) (*datastore.Destination, error) {
	xpubID := keys.XPubID(rawXPub)

	dest, err := e.deriveDestination(rawXPub, xpubID, chainNum, num)
	if err != nil {
		return nil, err
	}

	if existing, err := e.store.GetDestination(dest.ID); err == nil {
		return existing, nil
	}

	if err := e.store.PutDestination(dest); err != nil {
		return nil, err
	}
	return dest, nil
}

// GetDestination looks up a destination by ID.
func (e *Engine) GetDestination(id string) (*datastore.Destination, error) {
	return e.store.GetDestination(id)
}

// deriveDestination computes the P2PKH destination xpub/chain/num.
func (e *Engine) deriveDestination(rawXPub, xpubID string, chainNum, num uint32) (*datastore.Destination, error) {
	key, err := keys.ParseExtendedKey(rawXPub)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidXPub, err)
	}
	if key.Private {
		return nil, fmt.Errorf("%w: private keys are not accepted", ErrInvalidXPub)
	}

	chainKey, err := key.Child(chainNum)
	if err != nil {
		return nil, fmt.Errorf("engine: derive chain %d: %w", chainNum, err)
	}
	child, err := chainKey.Child(num)
	if err != nil {
		return nil, fmt.Errorf("engine: derive index %d: %w", num, err)
	}

	pubKey := child.PublicKey()
	lockingScript, err := script.P2PKHLockFromPubKey(pubKey)
	if err != nil {
		return nil, err
	}
	scriptHex := hex.EncodeToString(lockingScript)

	return &datastore.Destination{
		ID:            destinationID(scriptHex),
		XPubID:        xpubID,
		LockingScript: scriptHex,
		Type:          script.TypeP2PKH,
		Chain:         chainNum,
		Num:           num,
		Address:       keys.AddressFromPublicKey(pubKey, e.cfg.Testnet()),
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// newChangeDestination derives the next internal-chain destination for
// an owner, used for draft change outputs.
func (e *Engine) newChangeDestination(xpubID string) (*datastore.Destination, error) {
	x, err := e.GetXPubByID(xpubID)
	if err != nil {
		return nil, err
	}
	return e.NewDestination(x.RawXPub, keys.InternalChain)
}
