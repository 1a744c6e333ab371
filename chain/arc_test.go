package chain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTxID = "f4184fc596403b9d638783cf57adfe4c75c605f6356fbc91338530e9831e9e16"

func TestARCClient_Broadcast(t *testing.T) {
	var gotBody map[string]string
	var gotHeaders http.Header

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/tx", r.URL.Path)
		gotHeaders = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(TXInfo{
			TxID:     testTxID,
			TXStatus: StatusSeenOnNetwork,
		})
	}))
	defer srv.Close()

	c := NewARCClient(ARCConfig{
		URL:           srv.URL,
		Token:         "secret",
		DeploymentID:  "wallet-1",
		CallbackURL:   "https://wallet.example/callback",
		CallbackToken: "cb-secret",
		WaitFor:       string(StatusSeenOnNetwork),
	}, nil)

	info, err := c.Broadcast(context.Background(), "0100deadbeef")
	require.NoError(t, err)
	assert.Equal(t, testTxID, info.TxID)
	assert.Equal(t, StatusSeenOnNetwork, info.TXStatus)

	assert.Equal(t, "0100deadbeef", gotBody["rawTx"])
	assert.Equal(t, "Bearer secret", gotHeaders.Get("Authorization"))
	assert.Equal(t, "wallet-1", gotHeaders.Get("XDeployment-ID"))
	assert.Equal(t, "SEEN_ON_NETWORK", gotHeaders.Get("X-WaitFor"))
	assert.Equal(t, "https://wallet.example/callback", gotHeaders.Get("X-CallbackUrl"))
	assert.Equal(t, "cb-secret", gotHeaders.Get("X-CallbackToken"))
}

func TestARCClient_BroadcastErrorMapping(t *testing.T) {
	tests := []struct {
		code int
		want error
	}{
		{401, ErrUnauthorized},
		{409, ErrTxConflict},
		{460, ErrNotExtendedFormat},
		{461, ErrMalformedTransaction},
		{465, ErrFeeTooLow},
		{473, ErrCumulativeFeeTooLow},
		{500, ErrRequestFailed},
	}

	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.code)
			_ = json.NewEncoder(w).Encode(arcError{Status: tt.code, Detail: "nope"})
		}))

		c := NewARCClient(ARCConfig{URL: srv.URL}, nil)
		_, err := c.Broadcast(context.Background(), "0100")
		assert.ErrorIs(t, err, tt.want, "HTTP %d", tt.code)
		srv.Close()
	}
}

func TestARCClient_QueryTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/v1/tx/"+testTxID, r.URL.Path)
		_ = json.NewEncoder(w).Encode(TXInfo{
			TxID:        testTxID,
			TXStatus:    StatusMined,
			BlockHash:   "00000000a-block",
			BlockHeight: 850000,
			MerklePath:  "fe12",
		})
	}))
	defer srv.Close()

	c := NewARCClient(ARCConfig{URL: srv.URL}, nil)
	info, err := c.QueryTransaction(context.Background(), testTxID)
	require.NoError(t, err)
	assert.Equal(t, StatusMined, info.TXStatus)
	assert.True(t, info.Mined())
	assert.Equal(t, uint64(850000), info.BlockHeight)
}

func TestARCClient_GetFeeUnitCachesPolicy(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/policy", r.URL.Path)
		calls++
		_, _ = w.Write([]byte(`{"policy":{"maxTxSizePolicy":10000000,"miningFee":{"satoshis":5,"bytes":1000}}}`))
	}))
	defer srv.Close()

	c := NewARCClient(ARCConfig{URL: srv.URL}, nil)

	fee, err := c.GetFeeUnit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, FeeUnit{Satoshis: 5, Bytes: 1000}, fee)

	// Second call served from cache.
	fee, err = c.GetFeeUnit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(5), fee.Satoshis)
	assert.Equal(t, 1, calls)
}

func TestARCClient_ConnectionFailure(t *testing.T) {
	c := NewARCClient(ARCConfig{URL: "http://127.0.0.1:1"}, nil)
	_, err := c.Broadcast(context.Background(), "0100")
	assert.ErrorIs(t, err, ErrConnectionFailed)
}
