// Copyright (c) 2025 The OpenSPV developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import "errors"

var (
	// ErrInvalidNetwork indicates the network name is not recognized.
	ErrInvalidNetwork = errors.New("config: invalid network (must be \"mainnet\", \"testnet\", or \"regtest\")")

	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("config: invalid log level (must be \"debug\", \"info\", \"warn\", or \"error\")")

	// ErrEmptyDataDir indicates the data directory path is empty.
	ErrEmptyDataDir = errors.New("config: data directory must not be empty")

	// ErrEmptyARCURL indicates the ARC base URL is missing.
	ErrEmptyARCURL = errors.New("config: ARC URL must not be empty")

	// ErrInvalidARCURL indicates the ARC base URL is malformed.
	ErrInvalidARCURL = errors.New("config: invalid ARC URL")

	// ErrInvalidBHSURL indicates the BHS base URL is malformed.
	ErrInvalidBHSURL = errors.New("config: invalid BHS URL")

	// ErrInvalidFeeUnit indicates the fallback fee rate is malformed.
	ErrInvalidFeeUnit = errors.New("config: fee unit bytes must be positive")

	// ErrInvalidDraftTTL indicates the draft expiry window is malformed.
	ErrInvalidDraftTTL = errors.New("config: draft TTL must be positive")
)
