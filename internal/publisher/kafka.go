package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer  messageWriter
	breaker *gobreaker.CircuitBreaker[struct{}]
	log     *slog.Logger
}

func NewKafkaPublisher(log *slog.Logger, topic string, brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		WriteTimeout:           5 * time.Second,
	}
	return newKafkaPublisher(log, w)
}

func newKafkaPublisher(log *slog.Logger, w messageWriter) *KafkaPublisher {
	settings := gobreaker.Settings{
		Name:        "kafka-orders",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed", slog.String("name", name),
				slog.String("from", from.String()), slog.String("to", to.String()))
		},
	}
	return &KafkaPublisher{
		writer:  w,
		breaker: gobreaker.NewCircuitBreaker[struct{}](settings),
		log:     log,
	}
}

// PublishOrderPlaced writes the event keyed by order id. While the breaker is
// open it fails fast with gobreaker.ErrOpenState.
func (p *KafkaPublisher) PublishOrderPlaced(ctx context.Context, event domain.OrderPlaced) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order event failed: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventOrderPlaced)},
		},
	}

	_, err = p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.writer.WriteMessages(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("publish order event failed: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
