package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"voucher-service/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishProductCreated publishes ProductCreated event
func (ep *EventPublisher) PublishProductCreated(ctx context.Context, event *models.ProductCreatedEvent) error {
	key := fmt.Sprintf("product-%s", event.ProductID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishStockAdjusted publishes StockAdjusted event
func (ep *EventPublisher) PublishStockAdjusted(ctx context.Context, event *models.StockAdjustedEvent) error {
	key := fmt.Sprintf("product-%s", event.ProductID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishTicketsIssued publishes TicketsIssued event
func (ep *EventPublisher) PublishTicketsIssued(ctx context.Context, event *models.TicketsIssuedEvent) error {
	key := fmt.Sprintf("product-%s", event.ProductID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishTicketRedeemed publishes TicketRedeemed event
func (ep *EventPublisher) PublishTicketRedeemed(ctx context.Context, event *models.TicketRedeemedEvent) error {
	key := fmt.Sprintf("ticket-%d", event.TicketNumber)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishTicketRefunded publishes TicketRefunded event
func (ep *EventPublisher) PublishTicketRefunded(ctx context.Context, event *models.TicketRefundedEvent) error {
	key := fmt.Sprintf("product-%s", event.ProductID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler handles incoming events
type EventHandler struct {
	onProductCreated func(context.Context, *models.ProductCreatedEvent) error
	onStockAdjusted  func(context.Context, *models.StockAdjustedEvent) error
	onTicketsIssued  func(context.Context, *models.TicketsIssuedEvent) error
	onTicketRedeemed func(context.Context, *models.TicketRedeemedEvent) error
	onTicketRefunded func(context.Context, *models.TicketRefundedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnProductCreated registers a handler for ProductCreated events
func (eh *EventHandler) OnProductCreated(handler func(context.Context, *models.ProductCreatedEvent) error) {
	eh.onProductCreated = handler
}

// OnStockAdjusted registers a handler for StockAdjusted events
func (eh *EventHandler) OnStockAdjusted(handler func(context.Context, *models.StockAdjustedEvent) error) {
	eh.onStockAdjusted = handler
}

// OnTicketsIssued registers a handler for TicketsIssued events
func (eh *EventHandler) OnTicketsIssued(handler func(context.Context, *models.TicketsIssuedEvent) error) {
	eh.onTicketsIssued = handler
}

// OnTicketRedeemed registers a handler for TicketRedeemed events
func (eh *EventHandler) OnTicketRedeemed(handler func(context.Context, *models.TicketRedeemedEvent) error) {
	eh.onTicketRedeemed = handler
}

// OnTicketRefunded registers a handler for TicketRefunded events
func (eh *EventHandler) OnTicketRefunded(handler func(context.Context, *models.TicketRefundedEvent) error) {
	eh.onTicketRefunded = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	log.Printf("Handling event: type=%s, id=%s", baseEvent.EventType, baseEvent.EventID)

	switch baseEvent.EventType {
	case models.EventTypeProductCreated:
		if eh.onProductCreated != nil {
			var event models.ProductCreatedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal ProductCreated event: %w", err)
			}
			return eh.onProductCreated(ctx, &event)
		}

	case models.EventTypeStockAdjusted:
		if eh.onStockAdjusted != nil {
			var event models.StockAdjustedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal StockAdjusted event: %w", err)
			}
			return eh.onStockAdjusted(ctx, &event)
		}

	case models.EventTypeTicketsIssued:
		if eh.onTicketsIssued != nil {
			var event models.TicketsIssuedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal TicketsIssued event: %w", err)
			}
			return eh.onTicketsIssued(ctx, &event)
		}

	case models.EventTypeTicketRedeemed:
		if eh.onTicketRedeemed != nil {
			var event models.TicketRedeemedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal TicketRedeemed event: %w", err)
			}
			return eh.onTicketRedeemed(ctx, &event)
		}

	case models.EventTypeTicketRefunded:
		if eh.onTicketRefunded != nil {
			var event models.TicketRefundedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal TicketRefunded event: %w", err)
			}
			return eh.onTicketRefunded(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
