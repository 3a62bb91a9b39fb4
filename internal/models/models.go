package models

import "time"

// Product statuses
const (
	ProductStatusActive   = "ACTIVE"
	ProductStatusInactive = "INACTIVE"
)

// Product represents a catalog entry with a stock counter
type Product struct {
	ID          string    `db:"id" json:"id"`
	ProductID   string    `db:"product_id" json:"product_id"`
	Name        string    `db:"name" json:"name"`
	Value       float64   `db:"value" json:"value"`
	Stock       int       `db:"stock" json:"stock"`
	Status      string    `db:"status" json:"status"`
	QRCodeData  string    `db:"qr_code_data" json:"qr_code_data"`
	QRCodeImage string    `db:"-" json:"qr_code_image,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Ticket is a single-use voucher minted against a product's stock.
// ticket_number comes from a global sequence and is unique across the
// whole ledger; product_name and product_value are snapshots taken at
// issuance time and do not track later product edits.
type Ticket struct {
	ID           string     `db:"id" json:"id"`
	TicketNumber int64      `db:"ticket_number" json:"ticket_number"`
	ProductID    string     `db:"product_id" json:"product_id"`
	ProductName  string     `db:"product_name" json:"product_name"`
	ProductValue float64    `db:"product_value" json:"product_value"`
	IsRedeemed   bool       `db:"is_redeemed" json:"is_redeemed"`
	IsRefunded   bool       `db:"is_refunded" json:"is_refunded"`
	QRCodeData   string     `db:"qr_code_data" json:"qr_code_data"`
	QRCodeImage  string     `db:"-" json:"qr_code_image,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	RedeemedAt   *time.Time `db:"redeemed_at" json:"redeemed_at,omitempty"`
	RefundedAt   *time.Time `db:"refunded_at" json:"refunded_at,omitempty"`
}

// ProcessedEvent for consumer idempotency
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
