package store

import (
	"context"
	"database/sql"
	"fmt"

	"voucher-service/internal/models"
	"voucher-service/internal/qr"

	"github.com/google/uuid"
)

// IssueTicketsTx converts quantity units of stock into quantity
// tickets as one transaction. The product row is locked FOR UPDATE so
// the stock check, the decrement and the ticket inserts are
// indivisible relative to concurrent issuance or stock adjustment on
// the same product. On any failure nothing is persisted.
func (s *Store) IssueTicketsTx(ctx context.Context, productID string, quantity int) (*models.Product, []models.Ticket, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	var product models.Product
	err = tx.GetContext(ctx, &product,
		"SELECT * FROM products WHERE product_id = $1 FOR UPDATE", productID)
	if err == sql.ErrNoRows {
		return nil, nil, fmt.Errorf("product %s: %w", productID, models.ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lock product: %w", err)
	}

	if product.Status != models.ProductStatusActive {
		return nil, nil, fmt.Errorf("product %s: %w", productID, models.ErrInactiveProduct)
	}
	if product.Stock < quantity {
		return nil, nil, fmt.Errorf("stock %d, requested %d: %w",
			product.Stock, quantity, models.ErrInsufficientStock)
	}

	err = tx.GetContext(ctx, &product,
		"UPDATE products SET stock = stock - $1, updated_at = NOW() WHERE product_id = $2 RETURNING *",
		quantity, productID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decrement stock: %w", err)
	}

	var numbers []int64
	err = tx.SelectContext(ctx, &numbers,
		"SELECT nextval('ticket_number_seq') FROM generate_series(1, $1)", quantity)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to allocate ticket numbers: %w", err)
	}

	tickets := make([]models.Ticket, 0, quantity)
	insert := `
		INSERT INTO tickets (id, ticket_number, product_id, product_name, product_value, qr_code_data)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING *`

	for _, number := range numbers {
		var ticket models.Ticket
		err = tx.GetContext(ctx, &ticket, insert,
			uuid.New().String(), number, product.ProductID,
			product.Name, product.Value, qr.TicketPayload(number))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to insert ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return &product, tickets, nil
}

// GetTicketByID retrieves a ticket by its id
func (s *Store) GetTicketByID(ctx context.Context, id string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := s.db.GetContext(ctx, &ticket, "SELECT * FROM tickets WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("ticket %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// GetTicketByNumber retrieves a ticket by its ledger number
func (s *Store) GetTicketByNumber(ctx context.Context, number int64) (*models.Ticket, error) {
	var ticket models.Ticket
	err := s.db.GetContext(ctx, &ticket, "SELECT * FROM tickets WHERE ticket_number = $1", number)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("ticket %d: %w", number, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// ListTickets retrieves all tickets
func (s *Store) ListTickets(ctx context.Context) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := s.db.SelectContext(ctx, &tickets, "SELECT * FROM tickets ORDER BY ticket_number")
	return tickets, err
}

// ListTicketsByProduct retrieves all tickets minted against a product
func (s *Store) ListTicketsByProduct(ctx context.Context, productID string) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := s.db.SelectContext(ctx, &tickets,
		"SELECT * FROM tickets WHERE product_id = $1 ORDER BY ticket_number", productID)
	return tickets, err
}

// RedeemTicket flips a ticket to redeemed exactly once. The WHERE
// clause is the compare-and-set: of any number of concurrent attempts
// on the same ticket, exactly one UPDATE matches a row.
func (s *Store) RedeemTicket(ctx context.Context, id string) (*models.Ticket, error) {
	query := `
		UPDATE tickets
		SET is_redeemed = TRUE, redeemed_at = NOW()
		WHERE id = $1 AND is_redeemed = FALSE AND is_refunded = FALSE
		RETURNING *`

	var ticket models.Ticket
	err := s.db.GetContext(ctx, &ticket, query, id)
	if err == sql.ErrNoRows {
		return nil, s.classifyTicketConflict(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// RefundTicketTx cancels an unredeemed ticket and credits one unit of
// stock back to its product, as one transaction. Returns the updated
// ticket and the product's new stock.
func (s *Store) RefundTicketTx(ctx context.Context, id string) (*models.Ticket, int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback()

	query := `
		UPDATE tickets
		SET is_refunded = TRUE, refunded_at = NOW()
		WHERE id = $1 AND is_redeemed = FALSE AND is_refunded = FALSE
		RETURNING *`

	var ticket models.Ticket
	err = tx.GetContext(ctx, &ticket, query, id)
	if err == sql.ErrNoRows {
		return nil, 0, s.classifyTicketConflict(ctx, id)
	}
	if err != nil {
		return nil, 0, err
	}

	var stock int
	err = tx.GetContext(ctx, &stock,
		"UPDATE products SET stock = stock + 1, updated_at = NOW() WHERE product_id = $1 RETURNING stock",
		ticket.ProductID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to credit stock back: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, err
	}
	return &ticket, stock, nil
}

// classifyTicketConflict distinguishes a missing ticket from one whose
// compare-and-set lost: absent, already redeemed, or already refunded.
func (s *Store) classifyTicketConflict(ctx context.Context, id string) error {
	ticket, err := s.GetTicketByID(ctx, id)
	if err != nil {
		return err
	}
	if ticket.IsRedeemed {
		return fmt.Errorf("ticket %s: %w", id, models.ErrAlreadyRedeemed)
	}
	if ticket.IsRefunded {
		return fmt.Errorf("ticket %s: %w", id, models.ErrAlreadyRefunded)
	}
	return fmt.Errorf("ticket %s: %w", id, models.ErrNotFound)
}
