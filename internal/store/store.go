package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"voucher-service/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// CreateProduct persists a new product record
func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}

	query := `
		INSERT INTO products (id, product_id, name, value, stock, status, qr_code_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := s.db.QueryRowxContext(ctx, query,
		product.ID, product.ProductID, product.Name, product.Value,
		product.Stock, product.Status, product.QRCodeData,
	).Scan(&product.CreatedAt, &product.UpdatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return models.ErrDuplicateID
	}
	return err
}

// GetProduct retrieves a product by its product_id
func (s *Store) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE product_id = $1", productID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product %s: %w", productID, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListProducts retrieves all products
func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products, "SELECT * FROM products ORDER BY created_at")
	return products, err
}

// ProductPatch carries the optional fields of a partial update. Nil
// fields are left untouched. Stock is deliberately absent; it changes
// only through AdjustStockTx and IssueTicketsTx.
type ProductPatch struct {
	Name   *string
	Value  *float64
	Status *string
}

// UpdateProduct applies a partial update to a product
func (s *Store) UpdateProduct(ctx context.Context, productID string, patch ProductPatch) (*models.Product, error) {
	query := `
		UPDATE products
		SET name = COALESCE($1, name),
		    value = COALESCE($2, value),
		    status = COALESCE($3, status),
		    updated_at = NOW()
		WHERE product_id = $4
		RETURNING *`

	var product models.Product
	err := s.db.GetContext(ctx, &product, query, patch.Name, patch.Value, patch.Status, productID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product %s: %w", productID, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// AdjustStockTx atomically applies a stock delta within a transaction
// (FOR UPDATE lock). The same row lock serializes this against
// concurrent issuance on the same product.
func (s *Store) AdjustStockTx(ctx context.Context, productID string, delta int) (*models.Product, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var stock int
	err = tx.GetContext(ctx, &stock,
		"SELECT stock FROM products WHERE product_id = $1 FOR UPDATE", productID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product %s: %w", productID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock product: %w", err)
	}

	if stock+delta < 0 {
		return nil, fmt.Errorf("stock %d, delta %d: %w", stock, delta, models.ErrInsufficientStock)
	}

	var product models.Product
	err = tx.GetContext(ctx, &product,
		"UPDATE products SET stock = stock + $1, updated_at = NOW() WHERE product_id = $2 RETURNING *",
		delta, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to adjust stock: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &product, nil
}

// IsEventProcessed checks if an event has been processed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, err
}

// MarkEventProcessed marks an event as processed
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return err
}
