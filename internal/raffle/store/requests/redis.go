package requests

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"raffle/internal/raffle/models"
	"raffle/pkg/platform/sentinel"
)

const outstandingKey = "raffle:vrf:outstanding"

// Redis keeps the outstanding request in Redis so duplicate fulfillment
// callbacks are rejected across process restarts. SET NX enforces the
// single-outstanding invariant; Consume uses an optimistic transaction so a
// concurrent consume of the same ID wins exactly once.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (s *Redis) Put(ctx context.Context, req models.RandomnessRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal randomness request: %w", err)
	}

	ok, err := s.client.SetNX(ctx, outstandingKey, payload, 0).Result()
	if err != nil {
		return fmt.Errorf("store randomness request: %w", err)
	}
	if !ok {
		return fmt.Errorf("randomness request already outstanding: %w", sentinel.ErrConflict)
	}
	return nil
}

func (s *Redis) Outstanding(ctx context.Context) (models.RandomnessRequest, error) {
	payload, err := s.client.Get(ctx, outstandingKey).Bytes()
	if err == redis.Nil {
		return models.RandomnessRequest{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.RandomnessRequest{}, fmt.Errorf("load randomness request: %w", err)
	}

	var req models.RandomnessRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return models.RandomnessRequest{}, fmt.Errorf("decode randomness request: %w", err)
	}
	return req, nil
}

func (s *Redis) Consume(ctx context.Context, id uuid.UUID) (models.RandomnessRequest, error) {
	var consumed models.RandomnessRequest

	txn := func(tx *redis.Tx) error {
		payload, err := tx.Get(ctx, outstandingKey).Bytes()
		if err == redis.Nil {
			return fmt.Errorf("request %s: %w", id, sentinel.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("load randomness request: %w", err)
		}

		var req models.RandomnessRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return fmt.Errorf("decode randomness request: %w", err)
		}
		if req.ID != id {
			return fmt.Errorf("request %s does not match outstanding %s: %w", id, req.ID, sentinel.ErrNotFound)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, outstandingKey)
			return nil
		})
		if err != nil {
			return err
		}
		consumed = req
		return nil
	}

	err := s.client.Watch(ctx, txn, outstandingKey)
	if errors.Is(err, redis.TxFailedErr) {
		// Lost the race to another consumer; for this ID that means the
		// request was already consumed.
		return models.RandomnessRequest{}, fmt.Errorf("request %s: %w", id, sentinel.ErrNotFound)
	}
	if err != nil {
		return models.RandomnessRequest{}, err
	}
	return consumed, nil
}
