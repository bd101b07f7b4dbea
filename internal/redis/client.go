package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/saviobatista/launch-dashboard/internal/types"
)

// SnapshotKey holds the JSON encoded launch records
const SnapshotKey = "dataset:launch_records"

// ErrSnapshotNotFound is returned when no snapshot has been stored
var ErrSnapshotNotFound = errors.New("launch record snapshot not found")

// RedisClientInterface defines the Redis operations used by our client
type RedisClientInterface interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

// Client manages the dataset snapshot in Redis
type Client struct {
	client RedisClientInterface
}

// New creates a new Redis client
func New(addr string) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{client: client}, nil
}

// NewWithClient creates a new Redis client with a custom RedisClientInterface (useful for testing)
func NewWithClient(client RedisClientInterface) *Client {
	return &Client{client: client}
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.client.Close()
}

// StoreRecords replaces the snapshot. A zero ttl keeps it forever.
func (c *Client) StoreRecords(ctx context.Context, records []types.LaunchRecord, ttl time.Duration) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal launch records: %w", err)
	}
	if err := c.client.Set(ctx, SnapshotKey, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store launch records: %w", err)
	}
	return nil
}

// GetRecords reads the snapshot back
func (c *Client) GetRecords(ctx context.Context) ([]types.LaunchRecord, error) {
	data, err := c.client.Get(ctx, SnapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get launch records: %w", err)
	}

	var records []types.LaunchRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal launch records: %w", err)
	}
	return records, nil
}

// DeleteRecords removes the snapshot
func (c *Client) DeleteRecords(ctx context.Context) error {
	return c.client.Del(ctx, SnapshotKey).Err()
}
