package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/logging"
)

// PaymentEventType represents the type of payment event.
type PaymentEventType string

const (
	PaymentEventCompleted PaymentEventType = "payment.completed"
	PaymentEventFailed    PaymentEventType = "payment.failed"
)

// PaymentEvent is the payment service's event envelope.
type PaymentEvent struct {
	ID        string           `json:"id"`
	Type      PaymentEventType `json:"type"`
	PaymentID string           `json:"payment_id"`
	OrderID   string           `json:"order_id"`
	Reason    string           `json:"reason,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// PaymentResultHandler applies payment outcomes to checkout orders.
type PaymentResultHandler interface {
	MarkOrderPaid(ctx context.Context, orderID, paymentID string) error
	MarkOrderFailed(ctx context.Context, orderID, reason string) error
}

// KafkaConsumer consumes payment events from Kafka and settles the
// matching checkout orders.
type KafkaConsumer struct {
	reader  *kafka.Reader
	handler PaymentResultHandler
	logger  *logging.LoggerV2
	stopCh  chan struct{}
}

// NewKafkaConsumer creates a new Kafka-based payment event consumer.
func NewKafkaConsumer(cfg config.KafkaConfig, handler PaymentResultHandler, logger *logging.LoggerV2) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.PaymentsTopic,
		GroupID:  cfg.ConsumerGroup,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})

	return &KafkaConsumer{
		reader:  reader,
		handler: handler,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}
}

// Start begins consuming events. It blocks until the context is
// cancelled or Stop is called.
func (c *KafkaConsumer) Start(ctx context.Context) error {
	c.logger.Info("Starting payment event consumer")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.stopCh:
			c.logger.Info("Payment event consumer stopped")
			return nil
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.logger.Error("Failed to read message", logging.Fields{"error": err.Error()})
				continue
			}

			c.handleMessage(ctx, msg)
		}
	}
}

// Stop stops the consumer.
func (c *KafkaConsumer) Stop() {
	close(c.stopCh)
	c.reader.Close()
}

func (c *KafkaConsumer) handleMessage(ctx context.Context, msg kafka.Message) {
	c.logger.Debug("Received message", logging.Fields{
		"topic":     msg.Topic,
		"partition": msg.Partition,
		"offset":    msg.Offset,
	})

	var event PaymentEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.logger.Error("Failed to parse payment event", logging.Fields{
			"error":  err.Error(),
			"offset": msg.Offset,
		})
		return
	}

	if event.OrderID == "" {
		c.logger.Warn("Payment event without order id", logging.Fields{"event_id": event.ID})
		return
	}

	var err error
	switch event.Type {
	case PaymentEventCompleted:
		err = c.handler.MarkOrderPaid(ctx, event.OrderID, event.PaymentID)
	case PaymentEventFailed:
		err = c.handler.MarkOrderFailed(ctx, event.OrderID, event.Reason)
	default:
		c.logger.Debug("Ignoring payment event", logging.Fields{"event_type": event.Type})
		return
	}

	if err != nil {
		c.logger.Error("Failed to apply payment event", logging.Fields{
			"event_id":   event.ID,
			"event_type": event.Type,
			"order_id":   event.OrderID,
			"error":      err.Error(),
		})
	}
}
