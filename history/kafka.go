package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"github.com/GoCodeAlone/eventhub"
)

// kafkaSink persists records to a Kafka topic via a synchronous producer.
// Query and Evict are necessarily best-effort: Kafka is an append log, not an index, so
// queries only ever see what the producer itself has appended since
// startup (a bounded in-memory mirror), while eviction here only trims that
// mirror — the broker's own retention policy governs the topic itself.
type kafkaSink struct {
	cfg      Config
	producer sarama.SyncProducer
	mirror   *memorySink
}

func newKafkaSink(cfg Config) (*kafkaSink, error) {
	if len(cfg.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("history: kafka backend requires at least one broker")
	}
	topic := cfg.KafkaTopic
	if topic == "" {
		topic = "eventhub.history"
	}
	cfg.KafkaTopic = topic

	sc := sarama.NewConfig()
	sc.Producer.RequiredAcks = sarama.WaitForLocal
	sc.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(cfg.KafkaBrokers, sc)
	if err != nil {
		return nil, fmt.Errorf("history: kafka producer: %w", err)
	}

	return &kafkaSink{cfg: cfg, producer: producer, mirror: newMemorySink(cfg.RetentionWindow)}, nil
}

func (k *kafkaSink) Append(ctx context.Context, rec Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("history: marshaling kafka record: %w", err)
	}
	msg := &sarama.ProducerMessage{
		Topic: k.cfg.KafkaTopic,
		Key:   sarama.StringEncoder(fmt.Sprintf("%d", rec.Fingerprint)),
		Value: sarama.ByteEncoder(payload),
	}
	if _, _, err := k.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("history: kafka send: %w", err)
	}
	return k.mirror.Append(ctx, rec)
}

func (k *kafkaSink) Query(ctx context.Context, q eventhub.HistoryQuery) ([]Record, error) {
	return k.mirror.Query(ctx, q)
}

func (k *kafkaSink) Evict(ctx context.Context, olderThan time.Time) int {
	return k.mirror.Evict(ctx, olderThan)
}

func (k *kafkaSink) Close() error {
	return k.producer.Close()
}
