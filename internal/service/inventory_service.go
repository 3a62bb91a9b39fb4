package service

import (
	"context"
	"fmt"
	"time"

	"voucher-service/internal/broker"
	"voucher-service/internal/models"
	"voucher-service/internal/qr"
	"voucher-service/internal/redisclient"
	"voucher-service/internal/store"
	"voucher-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InventoryService handles product catalog and stock business logic
type InventoryService struct {
	store          *store.Store
	redis          *redisclient.Client
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewInventoryService creates a new inventory service
func NewInventoryService(
	store *store.Store,
	redis *redisclient.Client,
	eventPublisher *broker.EventPublisher,
) *InventoryService {
	return &InventoryService{
		store:          store,
		redis:          redis,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// CreateProductRequest represents a request to register a product
type CreateProductRequest struct {
	ProductID string  `json:"product_id" binding:"required"`
	Name      string  `json:"name" binding:"required"`
	Value     float64 `json:"value"`
	Stock     int     `json:"stock"`
}

// CreateProduct registers a new product with a derived QR payload
func (s *InventoryService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "InventoryService.CreateProduct")
	defer span.End()

	if req.Value < 0 {
		return nil, fmt.Errorf("value must not be negative: %w", models.ErrInvalidInput)
	}
	if req.Stock < 0 {
		return nil, fmt.Errorf("stock must not be negative: %w", models.ErrInvalidInput)
	}

	product := &models.Product{
		ProductID:  req.ProductID,
		Name:       req.Name,
		Value:      req.Value,
		Stock:      req.Stock,
		Status:     models.ProductStatusActive,
		QRCodeData: qr.ProductPayload(req.ProductID),
	}

	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	util.ProductsCreatedTotal.Inc()
	s.logger.Info("Product created",
		zap.String("product_id", product.ProductID),
		zap.Int("stock", product.Stock))

	if err := s.redis.SetStock(ctx, product.ProductID, product.Stock); err != nil {
		s.logger.Warn("Failed to seed stock cache",
			zap.String("product_id", product.ProductID),
			zap.Error(err))
	}

	event := &models.ProductCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeProductCreated,
			Timestamp: time.Now(),
		},
		ProductID: product.ProductID,
		Name:      product.Name,
		Value:     product.Value,
		Stock:     product.Stock,
	}
	if err := s.eventPublisher.PublishProductCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish ProductCreated event", zap.Error(err))
	}

	attachProductQR(product, s.logger)
	return product, nil
}

// UpdateProductRequest represents a partial product update. Stock is
// intentionally not updatable here; use AdjustStock.
type UpdateProductRequest struct {
	Name   *string  `json:"name,omitempty"`
	Value  *float64 `json:"value,omitempty"`
	Status *string  `json:"status,omitempty"`
}

// UpdateProduct applies the supplied fields to a product
func (s *InventoryService) UpdateProduct(ctx context.Context, productID string, req *UpdateProductRequest) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "InventoryService.UpdateProduct")
	defer span.End()

	if req.Value != nil && *req.Value < 0 {
		return nil, fmt.Errorf("value must not be negative: %w", models.ErrInvalidInput)
	}
	if req.Status != nil &&
		*req.Status != models.ProductStatusActive &&
		*req.Status != models.ProductStatusInactive {
		return nil, fmt.Errorf("unknown status %q: %w", *req.Status, models.ErrInvalidInput)
	}

	product, err := s.store.UpdateProduct(ctx, productID, store.ProductPatch{
		Name:   req.Name,
		Value:  req.Value,
		Status: req.Status,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Product updated", zap.String("product_id", productID))
	attachProductQR(product, s.logger)
	return product, nil
}

// AdjustStock atomically applies a stock delta. This is the only path
// besides issuance and refund that changes stock.
func (s *InventoryService) AdjustStock(ctx context.Context, productID string, delta int) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "InventoryService.AdjustStock")
	defer span.End()

	if delta == 0 {
		return nil, fmt.Errorf("delta must not be zero: %w", models.ErrInvalidInput)
	}

	product, err := s.store.AdjustStockTx(ctx, productID, delta)
	if err != nil {
		return nil, err
	}

	util.StockAdjustmentsTotal.Inc()
	s.logger.Info("Stock adjusted",
		zap.String("product_id", productID),
		zap.Int("delta", delta),
		zap.Int("stock", product.Stock))

	if err := s.redis.SetStock(ctx, productID, product.Stock); err != nil {
		s.logger.Warn("Failed to sync stock cache",
			zap.String("product_id", productID),
			zap.Error(err))
	}

	event := &models.StockAdjustedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeStockAdjusted,
			Timestamp: time.Now(),
		},
		ProductID: productID,
		Delta:     delta,
		Stock:     product.Stock,
	}
	if err := s.eventPublisher.PublishStockAdjusted(ctx, event); err != nil {
		s.logger.Error("Failed to publish StockAdjusted event", zap.Error(err))
	}

	attachProductQR(product, s.logger)
	return product, nil
}

// GetProduct retrieves a single product
func (s *InventoryService) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	product, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	attachProductQR(product, s.logger)
	return product, nil
}

// ListProducts retrieves all products
func (s *InventoryService) ListProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		attachProductQR(&products[i], s.logger)
	}
	return products, nil
}
