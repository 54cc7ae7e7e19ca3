package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
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

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// PayoutSummary is the cached month-level view served to dashboards
type PayoutSummary struct {
	ReportMonth  string  `json:"report_month"`
	CreatorCount int     `json:"creator_count"`
	TotalNet     float64 `json:"total_net"`
	TotalFees    float64 `json:"total_fees"`
	ComputedAt   int64   `json:"computed_at"`
}

// SetPayoutSummary caches the summary of a completed recalculation run
func (c *Client) SetPayoutSummary(ctx context.Context, summary *PayoutSummary, ttl time.Duration) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal payout summary: %w", err)
	}
	return c.rdb.Set(ctx, payoutKey(summary.ReportMonth), data, ttl).Err()
}

// GetPayoutSummary retrieves the cached summary, nil on a miss
func (c *Client) GetPayoutSummary(ctx context.Context, month string) (*PayoutSummary, error) {
	data, err := c.rdb.Get(ctx, payoutKey(month)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var summary PayoutSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payout summary: %w", err)
	}
	return &summary, nil
}

// InvalidatePayoutSummary drops the cached summary before a recomputation
// run so readers never see figures from stale inputs
func (c *Client) InvalidatePayoutSummary(ctx context.Context, month string) error {
	return c.rdb.Del(ctx, payoutKey(month)).Err()
}

// SetImportKey stores an import idempotency key with TTL. Returns false if
// the key was already present (duplicate commit).
func (c *Client) SetImportKey(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, importKey(key), "1", ttl).Result()
}

// DeleteImportKey releases an idempotency key claimed by a commit that
// failed before writing, so the retry is not rejected as a duplicate
func (c *Client) DeleteImportKey(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, importKey(key)).Err()
}

func importKey(key string) string {
	return fmt.Sprintf("import:%s", key)
}

func payoutKey(month string) string {
	return fmt.Sprintf("payouts:%s", month)
}
