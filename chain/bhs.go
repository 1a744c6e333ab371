package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// BHSConfig configures the Block Headers Service client.
type BHSConfig struct {
	URL       string // base URL, e.g. "http://localhost:8080"
	AuthToken string // bearer token, optional
}

// BHSClient talks to the Block Headers Service API:
// POST /api/v1/chain/merkleroot/verify.
type BHSClient struct {
	cfg    BHSConfig
	client *http.Client
	log    *logrus.Logger
}

// Compile-time interface check.
var _ HeaderOracle = (*BHSClient)(nil)

// NewBHSClient creates a BHS client. A nil logger disables logging.
func NewBHSClient(cfg BHSConfig, log *logrus.Logger) *BHSClient {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	return &BHSClient{
		cfg: cfg,
		log: log,
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				MaxIdleConnsPerHost: 10,
			},
		},
	}
}

// VerifyMerkleRoots checks the given roots against the service's view
// of the longest chain.
func (c *BHSClient) VerifyMerkleRoots(ctx context.Context, roots []MerkleRootVerification) (*VerifyMerkleRootsResponse, error) {
	body, err := json.Marshal(roots)
	if err != nil {
		return nil, fmt.Errorf("chain: marshal verify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.URL+"/api/v1/chain/merkleroot/verify", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("chain: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.AuthToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("%w: HTTP %d", ErrUnauthorized, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrRequestFailed, resp.StatusCode, string(respBody))
	}

	var out VerifyMerkleRootsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrInvalidResponse, err)
	}
	return &out, nil
}

// Healthcheck reports whether the service is reachable and healthy.
func (c *BHSClient) Healthcheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.URL+"/api/v1/chain/healthcheck", nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}
