package worker

import (
	"context"
	"log"

	"voucher-service/internal/broker"
	"voucher-service/internal/models"
	"voucher-service/internal/redisclient"
	"voucher-service/internal/store"
	"voucher-service/internal/util"

	"go.uber.org/zap"
)

// CacheSyncWorker consumes ticket and stock events and keeps the Redis
// stock counters aligned with the database, so every instance's
// issuance pre-filter sees the authoritative numbers. Events are
// deduplicated through the processed_events table.
type CacheSyncWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	store        *store.Store
	redis        *redisclient.Client
	logger       *zap.Logger
}

// NewCacheSyncWorker creates a new cache sync worker
func NewCacheSyncWorker(
	consumer *broker.Consumer,
	store *store.Store,
	redis *redisclient.Client,
) *CacheSyncWorker {
	w := &CacheSyncWorker{
		consumer: consumer,
		store:    store,
		redis:    redis,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnProductCreated(w.handleProductCreated)
	eventHandler.OnStockAdjusted(w.handleStockAdjusted)
	eventHandler.OnTicketsIssued(w.handleTicketsIssued)
	eventHandler.OnTicketRedeemed(w.handleTicketRedeemed)
	eventHandler.OnTicketRefunded(w.handleTicketRefunded)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *CacheSyncWorker) Start(ctx context.Context) error {
	log.Println("Starting cache sync worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *CacheSyncWorker) Stop() error {
	log.Println("Stopping cache sync worker...")
	return w.consumer.Close()
}

func (w *CacheSyncWorker) handleProductCreated(ctx context.Context, event *models.ProductCreatedEvent) error {
	return w.syncStock(ctx, event.EventID, event.EventType, event.ProductID, event.Stock)
}

func (w *CacheSyncWorker) handleStockAdjusted(ctx context.Context, event *models.StockAdjustedEvent) error {
	return w.syncStock(ctx, event.EventID, event.EventType, event.ProductID, event.Stock)
}

func (w *CacheSyncWorker) handleTicketsIssued(ctx context.Context, event *models.TicketsIssuedEvent) error {
	return w.syncStock(ctx, event.EventID, event.EventType, event.ProductID, event.Stock)
}

// handleTicketRedeemed records the event for the audit trail;
// redemption has no stock effect
func (w *CacheSyncWorker) handleTicketRedeemed(ctx context.Context, event *models.TicketRedeemedEvent) error {
	processed, err := w.store.IsEventProcessed(ctx, event.EventID)
	if err != nil || processed {
		return err
	}
	return w.store.MarkEventProcessed(ctx, event.EventID, event.EventType)
}

func (w *CacheSyncWorker) handleTicketRefunded(ctx context.Context, event *models.TicketRefundedEvent) error {
	return w.syncStock(ctx, event.EventID, event.EventType, event.ProductID, event.Stock)
}

// syncStock writes the post-event stock counter into the cache,
// re-reading the database when the event is older than the row
func (w *CacheSyncWorker) syncStock(ctx context.Context, eventID, eventType, productID string, stock int) error {
	processed, err := w.store.IsEventProcessed(ctx, eventID)
	if err != nil {
		return err
	}
	if processed {
		w.logger.Debug("Event already processed", zap.String("event_id", eventID))
		return nil
	}

	// The event carries the stock value at publish time; the row may
	// have moved on since, so prefer the current database value.
	if product, err := w.store.GetProduct(ctx, productID); err == nil {
		stock = product.Stock
	}

	if err := w.redis.SetStock(ctx, productID, stock); err != nil {
		w.logger.Error("Failed to sync stock cache",
			zap.String("product_id", productID),
			zap.Error(err))
		return err
	}

	if err := w.store.MarkEventProcessed(ctx, eventID, eventType); err != nil {
		w.logger.Error("Failed to mark event processed",
			zap.String("event_id", eventID),
			zap.Error(err))
	}

	w.logger.Debug("Stock cache synced",
		zap.String("product_id", productID),
		zap.Int("stock", stock))
	return nil
}
