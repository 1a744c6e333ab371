package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ARCConfig configures the ARC broadcast client.
type ARCConfig struct {
	URL           string // base URL, e.g. "https://arc.taal.com"
	Token         string // bearer token, optional
	DeploymentID  string // XDeployment-ID header, optional
	CallbackURL   string // status callback endpoint, optional
	CallbackToken string // bearer token ARC presents on callbacks
	WaitFor       string // X-WaitFor status, e.g. "SEEN_ON_NETWORK"
}

// ARCClient talks to the ARC v1 API: POST /v1/tx, GET /v1/tx/{txid},
// GET /v1/policy.
type ARCClient struct {
	cfg    ARCConfig
	client *http.Client
	log    *logrus.Logger

	mu        sync.Mutex
	cachedFee *FeeUnit
}

// Compile-time interface check.
var _ Broadcaster = (*ARCClient)(nil)

// NewARCClient creates an ARC client with a pooled HTTP transport.
// A nil logger disables logging.
func NewARCClient(cfg ARCConfig, log *logrus.Logger) *ARCClient {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	return &ARCClient{
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

// Broadcast submits a raw transaction hex to ARC.
func (c *ARCClient) Broadcast(ctx context.Context, rawHex string) (*TXInfo, error) {
	body, err := json.Marshal(map[string]string{"rawTx": rawHex})
	if err != nil {
		return nil, fmt.Errorf("chain: marshal broadcast request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/v1/tx", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if c.cfg.WaitFor != "" {
		req.Header.Set("X-WaitFor", c.cfg.WaitFor)
	}
	if c.cfg.CallbackURL != "" {
		req.Header.Set("X-CallbackUrl", c.cfg.CallbackURL)
	}
	if c.cfg.CallbackToken != "" {
		req.Header.Set("X-CallbackToken", c.cfg.CallbackToken)
	}

	var info TXInfo
	if err := c.do(req, &info); err != nil {
		return nil, err
	}
	c.log.WithFields(logrus.Fields{
		"txid":   info.TxID,
		"status": info.TXStatus,
	}).Debug("arc broadcast accepted")
	return &info, nil
}

// QueryTransaction returns the current ARC status of a txid.
func (c *ARCClient) QueryTransaction(ctx context.Context, txid string) (*TXInfo, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/v1/tx/"+txid, nil)
	if err != nil {
		return nil, err
	}

	var info TXInfo
	if err := c.do(req, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// GetPolicy fetches the current ARC mining policy.
func (c *ARCClient) GetPolicy(ctx context.Context) (*PolicyResponse, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/v1/policy", nil)
	if err != nil {
		return nil, err
	}

	var policy PolicyResponse
	if err := c.do(req, &policy); err != nil {
		return nil, err
	}

	c.mu.Lock()
	fee := policy.Policy.MiningFee
	c.cachedFee = &fee
	c.mu.Unlock()
	return &policy, nil
}

// GetFeeUnit returns the mining fee rate from the last fetched policy,
// fetching it on first use.
func (c *ARCClient) GetFeeUnit(ctx context.Context) (FeeUnit, error) {
	c.mu.Lock()
	cached := c.cachedFee
	c.mu.Unlock()
	if cached != nil {
		return *cached, nil
	}

	policy, err := c.GetPolicy(ctx)
	if err != nil {
		return FeeUnit{}, err
	}
	return policy.Policy.MiningFee, nil
}

func (c *ARCClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.URL+path, body)
	if err != nil {
		return nil, fmt.Errorf("chain: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
	if c.cfg.DeploymentID != "" {
		req.Header.Set("XDeployment-ID", c.cfg.DeploymentID)
	}
	return req, nil
}

// do executes the request and decodes a 2xx response into result.
// Non-2xx responses are mapped to the ARC sentinel errors.
func (c *ARCClient) do(req *http.Request, result interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var arcErr arcError
		detail := string(respBody)
		if json.Unmarshal(respBody, &arcErr) == nil && (arcErr.Detail != "" || arcErr.Title != "") {
			detail = arcErr.Detail
			if detail == "" {
				detail = arcErr.Title
			}
		}
		return mapARCStatus(resp.StatusCode, detail)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: decode response: %w", ErrInvalidResponse, err)
		}
	}
	return nil
}
