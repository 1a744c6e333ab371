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

func TestBHSClient_VerifyMerkleRoots(t *testing.T) {
	var gotBody []MerkleRootVerification

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/chain/merkleroot/verify", r.URL.Path)
		require.Equal(t, "Bearer bhs-secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		_ = json.NewEncoder(w).Encode(VerifyMerkleRootsResponse{
			ConfirmationState: ConfirmationConfirmed,
			Confirmations: []MerkleRootConfirmation{
				{MerkleRoot: "aa", BlockHeight: 100, Confirmation: ConfirmationConfirmed},
			},
		})
	}))
	defer srv.Close()

	c := NewBHSClient(BHSConfig{URL: srv.URL, AuthToken: "bhs-secret"}, nil)
	resp, err := c.VerifyMerkleRoots(context.Background(), []MerkleRootVerification{
		{MerkleRoot: "aa", BlockHeight: 100},
	})
	require.NoError(t, err)
	assert.True(t, resp.AllConfirmed())
	require.Len(t, gotBody, 1)
	assert.Equal(t, "aa", gotBody[0].MerkleRoot)
	assert.Equal(t, uint64(100), gotBody[0].BlockHeight)
}

func TestBHSClient_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewBHSClient(BHSConfig{URL: srv.URL}, nil)
	_, err := c.VerifyMerkleRoots(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestBHSClient_Healthcheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/chain/healthcheck" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewBHSClient(BHSConfig{URL: srv.URL}, nil)
	assert.True(t, c.Healthcheck(context.Background()))

	down := NewBHSClient(BHSConfig{URL: "http://127.0.0.1:1"}, nil)
	assert.False(t, down.Healthcheck(context.Background()))
}

func TestFeeUnit_FeeForSize(t *testing.T) {
	tests := []struct {
		fee  FeeUnit
		size uint64
		want uint64
	}{
		{FeeUnit{1, 1000}, 0, 1},
		{FeeUnit{1, 1000}, 1, 1},
		{FeeUnit{1, 1000}, 1000, 1},
		{FeeUnit{1, 1000}, 1001, 2},
		{FeeUnit{5, 1000}, 200, 1},
		{FeeUnit{5, 1000}, 201, 2},
		{FeeUnit{50, 1000}, 226, 12},
		{FeeUnit{}, 500, 1}, // zero value falls back to the default rate
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.fee.FeeForSize(tt.size), "fee %+v size %d", tt.fee, tt.size)
	}
}
