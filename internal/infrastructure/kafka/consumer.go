package kafka

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/Chrissie21/GrowSafeWebApp/internal/infrastructure/observability"
	"github.com/segmentio/kafka-go"
)

// Consumer feeds business metrics from the committed ledger event stream, so
// counters survive restarts of the request path.
type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 10e3,
			MaxBytes: 10e6,
		}),
	}
}

func (c *Consumer) Consume(ctx context.Context) {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Error("failed to read Kafka message", "topic", c.reader.Config().Topic, "error", err)
			continue
		}

		var event LedgerEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			slog.Error("failed to unmarshal ledger event", "error", err)
			continue
		}

		observability.LedgerEvents.WithLabelValues(event.Event, event.Type).Inc()
		slog.Info("ledger event consumed",
			"event", event.Event,
			"user_id", event.UserID,
			"type", event.Type,
			"amount", event.Amount,
			"status", event.Status)
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
