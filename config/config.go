// Copyright (c) 2025 The OpenSPV developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

// Package config holds the wallet engine configuration and its
// validation rules.
package config

import "time"

// ARCSettings configures the ARC broadcast service connection.
type ARCSettings struct {
	URL           string
	Token         string
	DeploymentID  string
	CallbackURL   string
	CallbackToken string
	WaitFor       string
}

// BHSSettings configures the Block Headers Service connection. An
// empty URL disables Merkle root verification.
type BHSSettings struct {
	URL       string
	AuthToken string
}

// Config is the full engine configuration.
type Config struct {
	// Network selects address and key version bytes: "mainnet",
	// "testnet", or "regtest".
	Network string

	// DataDir is where the bbolt database lives.
	DataDir string

	LogLevel string

	ARC ARCSettings
	BHS BHSSettings

	// FeeUnitSatoshis/FeeUnitBytes is the fallback fee rate used when
	// ARC policy is unavailable.
	FeeUnitSatoshis uint64
	FeeUnitBytes    uint64

	// DraftTTL is how long a draft holds its input reservation before
	// it can be reaped.
	DraftTTL time.Duration

	// CacheTTL bounds the xpub read-through cache.
	CacheTTL time.Duration
}

// DefaultConfig returns a mainnet configuration with the network
// default fee rate.
func DefaultConfig() Config {
	return Config{
		Network:         "mainnet",
		DataDir:         "data",
		LogLevel:        "info",
		ARC:             ARCSettings{WaitFor: "SEEN_ON_NETWORK"},
		FeeUnitSatoshis: 1,
		FeeUnitBytes:    1000,
		DraftTTL:        20 * time.Minute,
		CacheTTL:        10 * time.Minute,
	}
}

// Testnet reports whether the configured network uses testnet version
// bytes. Regtest shares them.
func (c Config) Testnet() bool {
	return c.Network == "testnet" || c.Network == "regtest"
}
