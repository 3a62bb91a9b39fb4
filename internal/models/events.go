package models

import "time"

// Event types
const (
	EventTypeProductCreated = "PRODUCT_CREATED"
	EventTypeStockAdjusted  = "STOCK_ADJUSTED"
	EventTypeTicketsIssued  = "TICKETS_ISSUED"
	EventTypeTicketRedeemed = "TICKET_REDEEMED"
	EventTypeTicketRefunded = "TICKET_REFUNDED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// ProductCreatedEvent published when a product is registered
type ProductCreatedEvent struct {
	BaseEvent
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	Stock     int     `json:"stock"`
}

// StockAdjustedEvent published when stock is changed outside issuance
type StockAdjustedEvent struct {
	BaseEvent
	ProductID string `json:"product_id"`
	Delta     int    `json:"delta"`
	Stock     int    `json:"stock"`
}

// TicketsIssuedEvent published when a batch of tickets is minted.
// Stock is the product's stock after the decrement.
type TicketsIssuedEvent struct {
	BaseEvent
	ProductID     string  `json:"product_id"`
	Quantity      int     `json:"quantity"`
	TicketNumbers []int64 `json:"ticket_numbers"`
	Stock         int     `json:"stock"`
}

// TicketRedeemedEvent published when a ticket is consumed
type TicketRedeemedEvent struct {
	BaseEvent
	TicketID     string `json:"ticket_id"`
	TicketNumber int64  `json:"ticket_number"`
	ProductID    string `json:"product_id"`
}

// TicketRefundedEvent published when an unredeemed ticket is cancelled
// and its unit of stock credited back to the product
type TicketRefundedEvent struct {
	BaseEvent
	TicketID     string `json:"ticket_id"`
	TicketNumber int64  `json:"ticket_number"`
	ProductID    string `json:"product_id"`
	Stock        int    `json:"stock"`
}
