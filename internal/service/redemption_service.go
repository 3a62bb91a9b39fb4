package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
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

// RedemptionService consumes tickets exactly once. The input string is
// whatever a scanner or operator supplied and is never trusted beyond
// lookup: a QR payload, a bare ticket number, or a ticket id.
type RedemptionService struct {
	store          *store.Store
	redis          *redisclient.Client
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewRedemptionService creates a new redemption service
func NewRedemptionService(
	store *store.Store,
	redis *redisclient.Client,
	eventPublisher *broker.EventPublisher,
) *RedemptionService {
	return &RedemptionService{
		store:          store,
		redis:          redis,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// RedeemTicket transitions a ticket from issued to redeemed. Of any
// number of concurrent attempts on the same ticket exactly one
// succeeds; the rest fail with ErrAlreadyRedeemed.
func (s *RedemptionService) RedeemTicket(ctx context.Context, rawID string) (*models.Ticket, error) {
	ctx, span := util.StartSpan(ctx, "RedemptionService.RedeemTicket")
	defer span.End()

	start := time.Now()
	defer func() {
		util.RedemptionLatency.Observe(time.Since(start).Seconds())
	}()

	ticket, err := s.resolveTicket(ctx, rawID)
	if err != nil {
		util.RedemptionsFailedTotal.WithLabelValues(redeemFailureReason(err)).Inc()
		return nil, err
	}

	redeemed, err := s.store.RedeemTicket(ctx, ticket.ID)
	if err != nil {
		util.RedemptionsFailedTotal.WithLabelValues(redeemFailureReason(err)).Inc()
		return nil, err
	}

	util.TicketsRedeemedTotal.Inc()
	s.logger.Info("Ticket redeemed",
		zap.Int64("ticket_number", redeemed.TicketNumber),
		zap.String("product_id", redeemed.ProductID))

	event := &models.TicketRedeemedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeTicketRedeemed,
			Timestamp: time.Now(),
		},
		TicketID:     redeemed.ID,
		TicketNumber: redeemed.TicketNumber,
		ProductID:    redeemed.ProductID,
	}
	if err := s.eventPublisher.PublishTicketRedeemed(ctx, event); err != nil {
		s.logger.Error("Failed to publish TicketRedeemed event", zap.Error(err))
	}

	attachTicketQR(redeemed, s.logger)
	return redeemed, nil
}

// RefundTicket cancels an unredeemed ticket and credits one unit of
// stock back to its product. Redemption stays a pure state transition;
// this is the explicit, separately-audited stock-reversal path.
func (s *RedemptionService) RefundTicket(ctx context.Context, rawID string) (*models.Ticket, error) {
	ctx, span := util.StartSpan(ctx, "RedemptionService.RefundTicket")
	defer span.End()

	ticket, err := s.resolveTicket(ctx, rawID)
	if err != nil {
		return nil, err
	}

	refunded, stock, err := s.store.RefundTicketTx(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}

	util.TicketsRefundedTotal.Inc()
	s.logger.Info("Ticket refunded",
		zap.Int64("ticket_number", refunded.TicketNumber),
		zap.String("product_id", refunded.ProductID),
		zap.Int("stock", stock))

	if err := s.redis.SetStock(ctx, refunded.ProductID, stock); err != nil {
		s.logger.Warn("Failed to sync stock cache",
			zap.String("product_id", refunded.ProductID),
			zap.Error(err))
	}

	event := &models.TicketRefundedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeTicketRefunded,
			Timestamp: time.Now(),
		},
		TicketID:     refunded.ID,
		TicketNumber: refunded.TicketNumber,
		ProductID:    refunded.ProductID,
		Stock:        stock,
	}
	if err := s.eventPublisher.PublishTicketRefunded(ctx, event); err != nil {
		s.logger.Error("Failed to publish TicketRefunded event", zap.Error(err))
	}

	attachTicketQR(refunded, s.logger)
	return refunded, nil
}

// resolveTicket maps an untrusted scanner string onto a ledger row. A
// QR payload that decodes but names a product is operator error, not a
// missing ticket.
func (s *RedemptionService) resolveTicket(ctx context.Context, raw string) (*models.Ticket, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty ticket reference: %w", models.ErrInvalidInput)
	}

	if identity, err := qr.DecodePayload(raw); err == nil {
		if identity.Kind != qr.KindTicket {
			return nil, fmt.Errorf("scanned a %s code, not a ticket: %w",
				identity.Kind, models.ErrInvalidInput)
		}
		number, err := strconv.ParseInt(identity.Value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad ticket number %q: %w", identity.Value, models.ErrInvalidInput)
		}
		return s.store.GetTicketByNumber(ctx, number)
	}

	if number, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return s.store.GetTicketByNumber(ctx, number)
	}

	return s.store.GetTicketByID(ctx, raw)
}

func redeemFailureReason(err error) string {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	case errors.Is(err, models.ErrAlreadyRedeemed):
		return "already_redeemed"
	case errors.Is(err, models.ErrAlreadyRefunded):
		return "already_refunded"
	case errors.Is(err, models.ErrInvalidInput):
		return "invalid_input"
	default:
		return "db_error"
	}
}
