package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	OrderCreatedTopic       = "order.created"
	OrderStatusChangedTopic = "order.status_changed"
)

type OrderEvent struct {
	OrderID        string          `json:"order_id"`
	OrderNumber    string          `json:"order_number"`
	Status         string          `json:"status"`
	PreviousStatus string          `json:"previous_status,omitempty"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	CustomerEmail  string          `json:"customer_email,omitempty"`
	EventTime      time.Time       `json:"event_time"`
}

// Publisher delivers order events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, topic string, event OrderEvent) error
	Close() error
}

type KafkaProducer struct {
	producer sarama.SyncProducer
	logger   *zap.Logger
}

// ParseBrokers splits a comma separated broker list, dropping blanks.
func ParseBrokers(raw string) []string {
	var out []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func NewKafkaProducer(brokers []string, logger *zap.Logger) (*KafkaProducer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Version = sarama.V2_6_0_0

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}
	return NewKafkaProducerFrom(producer, logger), nil
}

// NewKafkaProducerFrom wraps an existing producer.
func NewKafkaProducerFrom(producer sarama.SyncProducer, logger *zap.Logger) *KafkaProducer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaProducer{producer: producer, logger: logger.Named("events")}
}

func (p *KafkaProducer) Publish(ctx context.Context, topic string, event OrderEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if event.EventTime.IsZero() {
		event.EventTime = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(event.OrderID),
		Value: sarama.ByteEncoder(data),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.Error("failed to send message to kafka", zap.String("topic", topic), zap.Error(err))
		return err
	}

	p.logger.Info("event published",
		zap.String("topic", topic),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
		zap.String("order_id", event.OrderID),
	)
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.producer.Close()
}

// Nop discards every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, OrderEvent) error { return nil }
func (Nop) Close() error                                     { return nil }
