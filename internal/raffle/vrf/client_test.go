package vrf

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raffle/internal/raffle/models"
	"raffle/pkg/platform/sentinel"
)

func coordinatorConfig() models.RoundConfig {
	return models.RoundConfig{
		MinimumStake:         1,
		MinimumInterval:      30 * time.Second,
		KeyHash:              "0x9fe0eebf5e446e3c998ec9bb19951541aee00bb90ea201ae456421a2ded86805",
		SubscriptionID:       12,
		CallbackGasLimit:     250_000,
		RequestConfirmations: 3,
		NumWords:             1,
		NativePayment:        true,
	}
}

func TestClientDispatchesRequest(t *testing.T) {
	req := NewWordsRequest(coordinatorConfig(), "https://raffle.example.com/vrf/fulfillments")

	var received WordsRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/requests", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	require.NoError(t, client.RequestRandomWords(context.Background(), req))

	assert.Equal(t, req.RequestID, received.RequestID)
	assert.Equal(t, req.KeyHash, received.KeyHash)
	assert.Equal(t, uint64(12), received.SubscriptionID)
	assert.Equal(t, uint16(3), received.RequestConfirmations)
	assert.Equal(t, uint32(250_000), received.CallbackGasLimit)
	assert.Equal(t, uint32(1), received.NumWords)
	assert.True(t, received.NativePayment)
	assert.Equal(t, "https://raffle.example.com/vrf/fulfillments", received.CallbackURL)
}

func TestClientRejectedRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "subscription not funded", http.StatusPaymentRequired)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	err := client.RequestRandomWords(context.Background(), NewWordsRequest(coordinatorConfig(), ""))
	require.Error(t, err)
	assert.True(t, errors.Is(err, sentinel.ErrUnavailable))
	assert.Contains(t, err.Error(), "subscription not funded")
}

func TestClientUnreachableCoordinator(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL)
	err := client.RequestRandomWords(context.Background(), NewWordsRequest(coordinatorConfig(), ""))
	require.Error(t, err)
	assert.True(t, errors.Is(err, sentinel.ErrUnavailable))
}

func TestCorrelation(t *testing.T) {
	req := NewWordsRequest(coordinatorConfig(), "")
	roundID := uuid.New()
	now := time.Unix(1_700_000_000, 0)

	rec := req.Correlation(roundID, now)
	assert.Equal(t, req.RequestID, rec.ID)
	assert.Equal(t, roundID, rec.RoundID)
	assert.Equal(t, now, rec.RequestedAt)
}
