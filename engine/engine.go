// Package engine implements the transaction lifecycle of a
// non-custodial wallet service: xpub registration, destination
// derivation, UTXO accounting and selection, draft creation, signed
// transaction recording, broadcast, and confirmation handling.
//
// The engine never holds private keys. Clients register an extended
// public key, receive unsigned drafts, sign locally, and submit the
// signed hex back for recording.
package engine

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/openspv/walletengine-go/cache"
	"github.com/openspv/walletengine-go/chain"
	"github.com/openspv/walletengine-go/config"
	"github.com/openspv/walletengine-go/datastore"
)

// Engine coordinates the datastore, cache, and chain services.
type Engine struct {
	cfg     config.Config
	store   datastore.Store
	cache   cache.Cache
	arc     chain.Broadcaster
	headers chain.HeaderOracle
	log     *logrus.Logger
}

// New creates an Engine. The datastore is required. A nil cache gets
// an in-memory one; a nil broadcaster disables broadcasting and status
// sync; a nil header oracle disables external Merkle root checks; a
// nil logger disables logging.
func New(
	cfg config.Config,
	store datastore.Store,
	cacheStore cache.Cache,
	broadcaster chain.Broadcaster,
	headers chain.HeaderOracle,
	log *logrus.Logger,
) (*Engine, error) {
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("%w: datastore", ErrNilDependency)
	}
	if cacheStore == nil {
		cacheStore = cache.NewMemoryCache()
	}
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}

	return &Engine{
		cfg:     cfg,
		store:   store,
		cache:   cacheStore,
		arc:     broadcaster,
		headers: headers,
		log:     log,
	}, nil
}

// Store exposes the underlying datastore, mainly for API layers that
// need read access beyond the lifecycle operations.
func (e *Engine) Store() datastore.Store { return e.store }

// defaultFeeUnit is the configured fallback fee rate.
func (e *Engine) defaultFeeUnit() chain.FeeUnit {
	return chain.FeeUnit{Satoshis: e.cfg.FeeUnitSatoshis, Bytes: e.cfg.FeeUnitBytes}
}
