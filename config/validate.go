// Copyright (c) 2025 The OpenSPV developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// validLogLevels lists the accepted log level strings.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// ValidateConfig checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid.
func ValidateConfig(cfg Config) error {
	if cfg.DataDir == "" {
		return ErrEmptyDataDir
	}

	if cfg.Network != "mainnet" && cfg.Network != "testnet" && cfg.Network != "regtest" {
		return ErrInvalidNetwork
	}

	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return ErrInvalidLogLevel
	}

	if cfg.ARC.URL == "" {
		return ErrEmptyARCURL
	}
	if err := validateURL(cfg.ARC.URL); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidARCURL, err)
	}

	// BHS is optional; when unset, Merkle root verification is skipped.
	if cfg.BHS.URL != "" {
		if err := validateURL(cfg.BHS.URL); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidBHSURL, err)
		}
	}

	if cfg.FeeUnitBytes == 0 {
		return ErrInvalidFeeUnit
	}

	if cfg.DraftTTL <= 0 {
		return ErrInvalidDraftTTL
	}

	return nil
}

// validateURL checks that raw is an absolute http(s) URL.
func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}
