package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("RAFFLE_MIN_STAKE", "100")
	t.Setenv("RAFFLE_VRF_KEY_HASH", "0x9fe0eebf5e446e3c998ec9bb19951541aee00bb90ea201ae456421a2ded86805")
	t.Setenv("RAFFLE_VRF_SUBSCRIPTION_ID", "42")
	t.Setenv("RAFFLE_VRF_COORDINATOR_URL", "http://coordinator:9000")
	t.Setenv("RAFFLE_PROVIDER_SECRET", "secret")
	t.Setenv("RAFFLE_JWT_SIGNING_KEY", "signing-key")
}

func TestFromEnvDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, uint64(100), cfg.Round.MinimumStake)
	assert.Equal(t, 30*time.Second, cfg.Round.MinimumInterval)
	assert.Equal(t, uint32(500_000), cfg.Round.CallbackGasLimit)
	assert.Equal(t, uint16(3), cfg.Round.RequestConfirmations)
	assert.Equal(t, uint32(1), cfg.Round.NumWords)
	assert.False(t, cfg.Round.NativePayment)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Empty(t, cfg.Redis.URL)
	assert.Empty(t, cfg.Postgres.DSN)
}

func TestFromEnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RAFFLE_ADDR", ":9090")
	t.Setenv("RAFFLE_MIN_INTERVAL", "5m")
	t.Setenv("RAFFLE_VRF_NATIVE_PAYMENT", "true")
	t.Setenv("RAFFLE_VRF_CONFIRMATIONS", "6")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Minute, cfg.Round.MinimumInterval)
	assert.True(t, cfg.Round.NativePayment)
	assert.Equal(t, uint16(6), cfg.Round.RequestConfirmations)
}

func TestFromEnvBrokerList(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RAFFLE_KAFKA_BROKERS", "broker-1:9092, broker-2:9092 ,,broker-3:9092")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092", "broker-3:9092"}, cfg.Kafka.Brokers)
}

func TestFromEnvRejectsZeroStake(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RAFFLE_MIN_STAKE", "0")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RAFFLE_MIN_STAKE")
}

func TestFromEnvRejectsMissingRouting(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RAFFLE_VRF_KEY_HASH", "")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RAFFLE_VRF_KEY_HASH")
}

func TestFromEnvRejectsBadInterval(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RAFFLE_MIN_INTERVAL", "not-a-duration")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RAFFLE_MIN_INTERVAL")
}

func TestFromEnvRejectsBadNumber(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RAFFLE_VRF_SUBSCRIPTION_ID", "forty-two")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RAFFLE_VRF_SUBSCRIPTION_ID")
}
