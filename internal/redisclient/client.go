package redisclient

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

//go:embed scripts/issue_stock.lua
var issueStockScript string

//go:embed scripts/restore_stock.lua
var restoreStockScript string

type Client struct {
	rdb           *redis.Client
	issueScript   *redis.Script
	restoreScript *redis.Script
}

// NewClient creates a new Redis client with Lua scripts loaded
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{
		rdb:           rdb,
		issueScript:   redis.NewScript(issueStockScript),
		restoreScript: redis.NewScript(restoreStockScript),
	}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func stockKey(productID string) string {
	return fmt.Sprintf("stock:%s", productID)
}

// TryIssueStock atomically decrements the cached stock counter using a
// Lua script. allowed reports whether issuance may proceed and
// decremented whether the counter was actually reduced; a cold cache
// key yields allowed without a decrement and the database transaction
// stays the authority.
func (c *Client) TryIssueStock(ctx context.Context, productID string, quantity int) (allowed, decremented bool, err error) {
	result, err := c.issueScript.Run(ctx, c.rdb, []string{stockKey(productID)}, quantity).Result()
	if err != nil {
		return false, false, fmt.Errorf("issue stock script failed: %w", err)
	}

	code, ok := result.(int64)
	if !ok {
		return false, false, fmt.Errorf("unexpected script result type")
	}

	switch code {
	case 1:
		return true, true, nil
	case 0:
		return false, false, nil
	default: // cache miss
		return true, false, nil
	}
}

// RestoreStock atomically credits units back to the cached counter
// (compensation for a failed issuance, or a refund)
func (c *Client) RestoreStock(ctx context.Context, productID string, quantity int) error {
	_, err := c.restoreScript.Run(ctx, c.rdb, []string{stockKey(productID)}, quantity).Result()
	if err != nil {
		return fmt.Errorf("restore stock script failed: %w", err)
	}
	return nil
}

// SetStock overwrites the cached stock counter with the authoritative
// value from the database
func (c *Client) SetStock(ctx context.Context, productID string, stock int) error {
	return c.rdb.Set(ctx, stockKey(productID), stock, 0).Err()
}

// GetStock retrieves the cached stock counter
func (c *Client) GetStock(ctx context.Context, productID string) (int, error) {
	stock, err := c.rdb.Get(ctx, stockKey(productID)).Int()
	if err != nil {
		return 0, err
	}
	return stock, nil
}

// SetIssuanceResult stores the ticket ids minted for an idempotency
// key so a replayed request can return the same batch
func (c *Client) SetIssuanceResult(ctx context.Context, key string, ticketIDs []string, ttl time.Duration) error {
	payload, err := json.Marshal(ticketIDs)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, fmt.Sprintf("issuance:%s", key), payload, ttl).Err()
}

// GetIssuanceResult retrieves the ticket ids for an idempotency key.
// Returns nil when the key is unknown.
func (c *Client) GetIssuanceResult(ctx context.Context, key string) ([]string, error) {
	payload, err := c.rdb.Get(ctx, fmt.Sprintf("issuance:%s", key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var ticketIDs []string
	if err := json.Unmarshal(payload, &ticketIDs); err != nil {
		return nil, err
	}
	return ticketIDs, nil
}
