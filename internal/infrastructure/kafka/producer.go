package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// LedgerEvent is the envelope published after every committed status change
// or balance-affecting operation.
type LedgerEvent struct {
	Event         string `json:"event"`
	TransactionID string `json:"transaction_id,omitempty"`
	UserID        int64  `json:"user_id"`
	Type          string `json:"type,omitempty"`
	Amount        string `json:"amount,omitempty"`
	Status        string `json:"status,omitempty"`
	ProcessedBy   *int64 `json:"processed_by,omitempty"`
	CreatedAt     string `json:"created_at"`
}

const (
	EventTransactionCreated  = "transaction_created"
	EventTransactionApproved = "transaction_approved"
	EventTransactionDeclined = "transaction_declined"
	EventTransactionReset    = "transaction_reset"
	EventInvestmentCreated   = "investment_created"
	EventInvestmentSold      = "investment_sold"
	EventEarningsAccrued     = "earnings_accrued"
	EventUserRegistered      = "user_registered"
)

type LedgerProducer interface {
	Publish(ctx context.Context, event LedgerEvent) error
	Close() error
}

type Producer struct {
	writer *kafka.Writer
	topic  string
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		Async:        true,
		RequiredAcks: kafka.RequireOne,
	}
	return &Producer{writer: writer, topic: topic}
}

// Publish keys messages by user so per-account events stay ordered within a
// partition.
func (p *Producer) Publish(ctx context.Context, event LedgerEvent) error {
	if event.CreatedAt == "" {
		event.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	value, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal ledger event", "event", event.Event, "error", err)
		return fmt.Errorf("failed to marshal ledger event: %w", err)
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(fmt.Sprintf("%d", event.UserID)),
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		slog.Error("failed to send ledger event", "topic", p.topic, "event", event.Event, "user_id", event.UserID, "error", err)
		return err
	}

	slog.Info("ledger event sent", "topic", p.topic, "event", event.Event, "user_id", event.UserID)
	return nil
}

func (p *Producer) Close() error {
	if err := p.writer.Close(); err != nil {
		slog.Error("failed to close Kafka writer", "error", err)
		return err
	}
	slog.Info("Kafka writer closed")
	return nil
}
