package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/openspv/walletengine-go/datastore"
	"github.com/openspv/walletengine-go/keys"
)

const xpubCacheKeyPrefix = "xpub:"

// cachedXPub is the compact cache representation of an owner record.
type cachedXPub struct {
	ID              string `json:"id"`
	RawXPub         string `json:"raw_xpub"`
	CurrentBalance  uint64 `json:"current_balance"`
	NextExternalNum uint32 `json:"next_external_num"`
	NextInternalNum uint32 `json:"next_internal_num"`
}

// RegisterXPub validates and registers an extended public key as a
// wallet owner. Registration is idempotent: re-registering the same
// xpub returns the existing record.
func (e *Engine) RegisterXPub(rawXPub string) (*datastore.XPub, error) {
	if rawXPub == "" {
		return nil, ErrMissingXPub
	}

	key, err := keys.ParseExtendedKey(rawXPub)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidXPub, err)
	}
	if key.Private {
		return nil, fmt.Errorf("%w: private keys are not accepted", ErrInvalidXPub)
	}

	id := keys.XPubID(rawXPub)
	if existing, err := e.GetXPubByID(id); err == nil {
		return existing, nil
	}

	x := &datastore.XPub{
		ID:        id,
		RawXPub:   rawXPub,
		CreatedAt: time.Now().UTC(),
	}
	if err := e.store.PutXPub(x); err != nil {
		return nil, err
	}
	e.cacheXPub(x)

	e.log.WithField("xpub_id", id).Info("xpub registered")
	return x, nil
}

// GetXPub looks up an owner by the raw xpub string.
func (e *Engine) GetXPub(rawXPub string) (*datastore.XPub, error) {
	return e.GetXPubByID(keys.XPubID(rawXPub))
}

// GetXPubByID looks up an owner by xPubID, reading through the cache.
func (e *Engine) GetXPubByID(id string) (*datastore.XPub, error) {
	if raw := e.cache.Get(xpubCacheKeyPrefix + id); raw != nil {
		var c cachedXPub
		if json.Unmarshal(raw, &c) == nil {
			return &datastore.XPub{
				ID:              c.ID,
				RawXPub:         c.RawXPub,
				CurrentBalance:  c.CurrentBalance,
				NextExternalNum: c.NextExternalNum,
				NextInternalNum: c.NextInternalNum,
			}, nil
		}
	}

	x, err := e.store.GetXPub(id)
	if err != nil {
		if errors.Is(err, datastore.ErrXPubNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrXPubNotFound, id)
		}
		return nil, err
	}
	e.cacheXPub(x)
	return x, nil
}

func (e *Engine) cacheXPub(x *datastore.XPub) {
	raw, err := json.Marshal(cachedXPub{
		ID:              x.ID,
		RawXPub:         x.RawXPub,
		CurrentBalance:  x.CurrentBalance,
		NextExternalNum: x.NextExternalNum,
		NextInternalNum: x.NextInternalNum,
	})
	if err != nil {
		return
	}
	e.cache.Set(xpubCacheKeyPrefix+x.ID, raw, e.cfg.CacheTTL)
}

func (e *Engine) invalidateXPub(id string) {
	e.cache.Delete(xpubCacheKeyPrefix + id)
}
