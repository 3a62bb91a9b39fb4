package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"voucher-service/internal/broker"
	"voucher-service/internal/models"
	"voucher-service/internal/redisclient"
	"voucher-service/internal/store"
	"voucher-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IssuanceService converts product stock into uniquely numbered
// tickets. The stock check, the decrement and the ticket inserts
// happen in one database transaction; the Redis counter is a fast
// pre-filter that sheds hopeless requests before they reach the
// database.
type IssuanceService struct {
	store          *store.Store
	redis          *redisclient.Client
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
	maxBatchSize   int
	idempotencyTTL time.Duration
}

// NewIssuanceService creates a new issuance service
func NewIssuanceService(
	store *store.Store,
	redis *redisclient.Client,
	eventPublisher *broker.EventPublisher,
	maxBatchSize int,
	idempotencyTTL time.Duration,
) *IssuanceService {
	return &IssuanceService{
		store:          store,
		redis:          redis,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
		maxBatchSize:   maxBatchSize,
		idempotencyTTL: idempotencyTTL,
	}
}

// IssueTicketsRequest represents a request to mint tickets
type IssueTicketsRequest struct {
	ProductID      string `json:"product_id" binding:"required"`
	Quantity       int    `json:"quantity" binding:"required,min=1"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// IssueTickets mints req.Quantity tickets against a product's stock,
// all-or-nothing. Tickets are returned in ascending ticket-number
// order.
func (s *IssuanceService) IssueTickets(ctx context.Context, req *IssueTicketsRequest) ([]models.Ticket, error) {
	ctx, span := util.StartSpan(ctx, "IssuanceService.IssueTickets")
	defer span.End()

	start := time.Now()
	defer func() {
		util.IssuanceLatency.Observe(time.Since(start).Seconds())
	}()

	if req.Quantity < 1 {
		util.IssuanceFailedTotal.WithLabelValues("invalid_quantity").Inc()
		return nil, fmt.Errorf("quantity must be at least 1: %w", models.ErrInvalidInput)
	}
	if req.Quantity > s.maxBatchSize {
		util.IssuanceFailedTotal.WithLabelValues("invalid_quantity").Inc()
		return nil, fmt.Errorf("quantity %d exceeds batch limit %d: %w",
			req.Quantity, s.maxBatchSize, models.ErrInvalidInput)
	}

	if req.IdempotencyKey != "" {
		tickets, err := s.replayIssuance(ctx, req.IdempotencyKey)
		if err != nil {
			s.logger.Warn("Idempotency replay check failed",
				zap.String("idempotency_key", req.IdempotencyKey),
				zap.Error(err))
		}
		if tickets != nil {
			s.logger.Info("Duplicate issuance request detected",
				zap.String("idempotency_key", req.IdempotencyKey),
				zap.String("product_id", req.ProductID))
			return tickets, nil
		}
	}

	decremented := false
	allowed, dec, err := s.redis.TryIssueStock(ctx, req.ProductID, req.Quantity)
	if err != nil {
		s.logger.Warn("Stock cache unavailable, relying on database check",
			zap.String("product_id", req.ProductID),
			zap.Error(err))
	} else {
		decremented = dec
		if !allowed {
			util.IssuanceFailedTotal.WithLabelValues("insufficient_stock").Inc()
			return nil, fmt.Errorf("product %s: %w", req.ProductID, models.ErrInsufficientStock)
		}
	}

	product, tickets, err := s.store.IssueTicketsTx(ctx, req.ProductID, req.Quantity)
	if err != nil {
		if decremented {
			s.compensateCache(req.ProductID, req.Quantity)
		}
		util.IssuanceFailedTotal.WithLabelValues(issueFailureReason(err)).Inc()
		return nil, err
	}

	util.TicketsIssuedTotal.Add(float64(len(tickets)))
	s.logger.Info("Tickets issued",
		zap.String("product_id", product.ProductID),
		zap.Int("quantity", len(tickets)),
		zap.Int("stock", product.Stock))

	if err := s.redis.SetStock(ctx, product.ProductID, product.Stock); err != nil {
		s.logger.Warn("Failed to sync stock cache",
			zap.String("product_id", product.ProductID),
			zap.Error(err))
	}

	numbers := make([]int64, len(tickets))
	ticketIDs := make([]string, len(tickets))
	for i := range tickets {
		numbers[i] = tickets[i].TicketNumber
		ticketIDs[i] = tickets[i].ID
		attachTicketQR(&tickets[i], s.logger)
	}

	if req.IdempotencyKey != "" {
		if err := s.redis.SetIssuanceResult(ctx, req.IdempotencyKey, ticketIDs, s.idempotencyTTL); err != nil {
			s.logger.Warn("Failed to record idempotency key",
				zap.String("idempotency_key", req.IdempotencyKey),
				zap.Error(err))
		}
	}

	event := &models.TicketsIssuedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeTicketsIssued,
			Timestamp: time.Now(),
		},
		ProductID:     product.ProductID,
		Quantity:      len(tickets),
		TicketNumbers: numbers,
		Stock:         product.Stock,
	}
	if err := s.eventPublisher.PublishTicketsIssued(ctx, event); err != nil {
		s.logger.Error("Failed to publish TicketsIssued event", zap.Error(err))
	}

	return tickets, nil
}

// replayIssuance returns the previously minted batch for an
// idempotency key, or nil when the key is unknown
func (s *IssuanceService) replayIssuance(ctx context.Context, key string) ([]models.Ticket, error) {
	ticketIDs, err := s.redis.GetIssuanceResult(ctx, key)
	if err != nil || ticketIDs == nil {
		return nil, err
	}

	tickets := make([]models.Ticket, 0, len(ticketIDs))
	for _, id := range ticketIDs {
		ticket, err := s.store.GetTicketByID(ctx, id)
		if err != nil {
			return nil, err
		}
		attachTicketQR(ticket, s.logger)
		tickets = append(tickets, *ticket)
	}
	return tickets, nil
}

// compensateCache credits the pre-filter decrement back after a failed
// database transaction
func (s *IssuanceService) compensateCache(productID string, quantity int) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.redis.RestoreStock(ctx, productID, quantity); err != nil {
		s.logger.Error("Failed to compensate stock cache",
			zap.String("product_id", productID),
			zap.Error(err))
	}
}

func issueFailureReason(err error) string {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	case errors.Is(err, models.ErrInactiveProduct):
		return "inactive_product"
	case errors.Is(err, models.ErrInsufficientStock):
		return "insufficient_stock"
	default:
		return "db_error"
	}
}

// GetTicket retrieves a single ticket by id
func (s *IssuanceService) GetTicket(ctx context.Context, id string) (*models.Ticket, error) {
	ticket, err := s.store.GetTicketByID(ctx, id)
	if err != nil {
		return nil, err
	}
	attachTicketQR(ticket, s.logger)
	return ticket, nil
}

// ListTickets retrieves all tickets in the ledger
func (s *IssuanceService) ListTickets(ctx context.Context) ([]models.Ticket, error) {
	tickets, err := s.store.ListTickets(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tickets {
		attachTicketQR(&tickets[i], s.logger)
	}
	return tickets, nil
}

// ListTicketsByProduct retrieves all tickets minted against a product
func (s *IssuanceService) ListTicketsByProduct(ctx context.Context, productID string) ([]models.Ticket, error) {
	tickets, err := s.store.ListTicketsByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	for i := range tickets {
		attachTicketQR(&tickets[i], s.logger)
	}
	return tickets, nil
}
