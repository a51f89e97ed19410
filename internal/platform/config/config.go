// Package config builds the deployment configuration from environment
// variables so main stays lean. Configuration is immutable after FromEnv
// returns; invalid values are rejected here, not at first use.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr string
	// CallbackURL is the externally reachable URL of the fulfillment
	// endpoint, forwarded to the coordinator with each request.
	CallbackURL string
	// ProviderSecret guards the fulfillment callback endpoint. Only the
	// configured randomness provider knows it.
	ProviderSecret string
	// JWTSigningKey validates depositor bearer tokens.
	JWTSigningKey string
}

// Round captures the raffle's immutable round parameters.
type Round struct {
	MinimumStake         uint64
	MinimumInterval      time.Duration
	KeyHash              string
	SubscriptionID       uint64
	CallbackGasLimit     uint32
	RequestConfirmations uint16
	NumWords             uint32
	NativePayment        bool
}

// Coordinator captures how to reach the randomness coordinator.
type Coordinator struct {
	URL string
}

// RedisConfig captures the optional Redis backing for request correlation.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig captures the optional Postgres backing for the bank and
// round history.
type PostgresConfig struct {
	DSN string
}

// KafkaConfig captures the optional Kafka backing for notifications.
type KafkaConfig struct {
	Brokers []string
}

type Config struct {
	Server      Server
	Round       Round
	Coordinator Coordinator
	Redis       RedisConfig
	Postgres    PostgresConfig
	Kafka       KafkaConfig
}

// FromEnv builds the configuration from environment variables and validates
// it. A zero minimum stake, a missing interval, or missing coordinator
// routing parameters are construction-time errors.
func FromEnv() (Config, error) {
	cfg := Config{
		Server: Server{
			Addr:           getenv("RAFFLE_ADDR", ":8080"),
			CallbackURL:    os.Getenv("RAFFLE_CALLBACK_URL"),
			ProviderSecret: os.Getenv("RAFFLE_PROVIDER_SECRET"),
			JWTSigningKey:  os.Getenv("RAFFLE_JWT_SIGNING_KEY"),
		},
		Coordinator: Coordinator{
			URL: os.Getenv("RAFFLE_VRF_COORDINATOR_URL"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("RAFFLE_REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Postgres: PostgresConfig{
			DSN: os.Getenv("RAFFLE_POSTGRES_DSN"),
		},
	}

	if brokers := os.Getenv("RAFFLE_KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.Kafka.Brokers = append(cfg.Kafka.Brokers, b)
			}
		}
	}

	var err error
	if cfg.Round.MinimumStake, err = uintEnv("RAFFLE_MIN_STAKE", 0); err != nil {
		return Config{}, err
	}
	interval := getenv("RAFFLE_MIN_INTERVAL", "30s")
	if cfg.Round.MinimumInterval, err = time.ParseDuration(interval); err != nil {
		return Config{}, fmt.Errorf("RAFFLE_MIN_INTERVAL: %w", err)
	}
	cfg.Round.KeyHash = os.Getenv("RAFFLE_VRF_KEY_HASH")
	if cfg.Round.SubscriptionID, err = uintEnv("RAFFLE_VRF_SUBSCRIPTION_ID", 0); err != nil {
		return Config{}, err
	}
	gasLimit, err := uintEnv("RAFFLE_VRF_CALLBACK_GAS_LIMIT", 500_000)
	if err != nil {
		return Config{}, err
	}
	cfg.Round.CallbackGasLimit = uint32(gasLimit)
	confirmations, err := uintEnv("RAFFLE_VRF_CONFIRMATIONS", 3)
	if err != nil {
		return Config{}, err
	}
	cfg.Round.RequestConfirmations = uint16(confirmations)
	numWords, err := uintEnv("RAFFLE_VRF_NUM_WORDS", 1)
	if err != nil {
		return Config{}, err
	}
	cfg.Round.NumWords = uint32(numWords)
	cfg.Round.NativePayment = os.Getenv("RAFFLE_VRF_NATIVE_PAYMENT") == "true"

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Round.MinimumStake == 0 {
		return fmt.Errorf("RAFFLE_MIN_STAKE must be a positive integer")
	}
	if c.Round.MinimumInterval <= 0 {
		return fmt.Errorf("RAFFLE_MIN_INTERVAL must be positive")
	}
	if c.Round.KeyHash == "" {
		return fmt.Errorf("RAFFLE_VRF_KEY_HASH is required")
	}
	if c.Round.SubscriptionID == 0 {
		return fmt.Errorf("RAFFLE_VRF_SUBSCRIPTION_ID is required")
	}
	if c.Coordinator.URL == "" {
		return fmt.Errorf("RAFFLE_VRF_COORDINATOR_URL is required")
	}
	if c.Server.ProviderSecret == "" {
		return fmt.Errorf("RAFFLE_PROVIDER_SECRET is required")
	}
	if c.Server.JWTSigningKey == "" {
		return fmt.Errorf("RAFFLE_JWT_SIGNING_KEY is required")
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func uintEnv(key string, fallback uint64) (uint64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, nil
}
