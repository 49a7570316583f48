package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/models"
)

// EventType represents the type of checkout event.
type EventType string

const (
	EventTypeCheckoutCompleted  EventType = "checkout.completed"
	EventTypeOrderStatusChanged EventType = "checkout.order_status_changed"
	EventTypeOrderCancelled     EventType = "checkout.order_cancelled"
)

// CheckoutEvent is the envelope published for checkout activity.
type CheckoutEvent struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	OrderID   string          `json:"order_id"`
	CartID    string          `json:"cart_id,omitempty"`
	UserID    string          `json:"user_id"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// KafkaPublisher publishes checkout events to Kafka.
type KafkaPublisher struct {
	writer *kafka.Writer
	topic  string
	logger *logging.LoggerV2
}

// NewKafkaPublisher creates a new Kafka-based event publisher.
func NewKafkaPublisher(cfg config.KafkaConfig, logger *logging.LoggerV2) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.CheckoutTopic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaPublisher{
		writer: writer,
		topic:  cfg.CheckoutTopic,
		logger: logger,
	}
}

// PublishCheckoutCompleted publishes a checkout completed event.
func (p *KafkaPublisher) PublishCheckoutCompleted(ctx context.Context, order *models.CheckoutOrder) error {
	p.logger.Debug("Publishing checkout completed event", logging.Fields{
		"order_id": order.ID,
	})

	data, err := json.Marshal(order)
	if err != nil {
		return err
	}

	return p.publish(ctx, p.newEvent(EventTypeCheckoutCompleted, order, data))
}

// PublishOrderStatusChanged publishes an order status change event.
func (p *KafkaPublisher) PublishOrderStatusChanged(ctx context.Context, order *models.CheckoutOrder, previousStatus models.OrderStatus) error {
	payload := struct {
		Order          *models.CheckoutOrder `json:"order"`
		PreviousStatus models.OrderStatus    `json:"previous_status"`
		NewStatus      models.OrderStatus    `json:"new_status"`
	}{
		Order:          order,
		PreviousStatus: previousStatus,
		NewStatus:      order.Status,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return p.publish(ctx, p.newEvent(EventTypeOrderStatusChanged, order, data))
}

// PublishOrderCancelled publishes an order cancellation event.
func (p *KafkaPublisher) PublishOrderCancelled(ctx context.Context, order *models.CheckoutOrder, reason string) error {
	payload := struct {
		Order  *models.CheckoutOrder `json:"order"`
		Reason string                `json:"reason"`
	}{
		Order:  order,
		Reason: reason,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return p.publish(ctx, p.newEvent(EventTypeOrderCancelled, order, data))
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func (p *KafkaPublisher) newEvent(eventType EventType, order *models.CheckoutOrder, data json.RawMessage) CheckoutEvent {
	return CheckoutEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		OrderID:   order.ID,
		CartID:    order.CartID,
		UserID:    order.UserID,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

func (p *KafkaPublisher) publish(ctx context.Context, event CheckoutEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: value,
		Time:  event.Timestamp,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish event", logging.Fields{
			"event_id":   event.ID,
			"event_type": event.Type,
			"error":      err.Error(),
		})
		return err
	}

	p.logger.Info("Event published", logging.Fields{
		"event_id":   event.ID,
		"event_type": event.Type,
		"order_id":   event.OrderID,
	})
	return nil
}
