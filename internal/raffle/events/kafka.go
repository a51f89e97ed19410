// Package events publishes the raffle's externally observable notifications.
// Notifications are append-only facts, not state: consumers cannot query
// them back out of the service.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"raffle/internal/raffle/models"
)

const (
	// TopicEntries carries Entered notifications, keyed by depositor so a
	// depositor's entries stay ordered per partition.
	TopicEntries = "raffle.entries"
	// TopicWinners carries Winner notifications, keyed by round ID.
	TopicWinners = "raffle.winners"
)

// Kafka publishes notifications to Kafka. Produces are synchronous so the
// caller knows whether the notification reached the broker; the service
// treats a failed publish as a degraded notification, never as a failed
// round operation.
type Kafka struct {
	client *kgo.Client
}

func NewKafka(brokers []string) (*Kafka, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Kafka{client: client}, nil
}

// EnsureTopics creates the notification topics if they do not exist yet.
func (k *Kafka) EnsureTopics(ctx context.Context) error {
	adm := kadm.NewClient(k.client)
	resps, err := adm.CreateTopics(ctx, 1, 1, nil, TopicEntries, TopicWinners)
	if err != nil {
		return fmt.Errorf("create topics: %w", err)
	}
	for _, resp := range resps {
		if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", resp.Topic, resp.Err)
		}
	}
	return nil
}

func (k *Kafka) PublishEntered(ctx context.Context, event models.EnteredEvent) error {
	return k.produce(ctx, TopicEntries, []byte(event.Depositor), event)
}

func (k *Kafka) PublishWinner(ctx context.Context, event models.WinnerEvent) error {
	return k.produce(ctx, TopicWinners, []byte(event.RoundID.String()), event)
}

func (k *Kafka) produce(ctx context.Context, topic string, key []byte, event any) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}

	record := &kgo.Record{Topic: topic, Key: key, Value: value}
	if err := k.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", topic, err)
	}
	return nil
}

func (k *Kafka) Close() {
	k.client.Close()
}
