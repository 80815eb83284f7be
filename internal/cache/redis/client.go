package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bu-planner/backend/internal/metrics"
	"github.com/bu-planner/backend/pkg/logger"
)

// Client is an optional read-through cache for plan recommendations and
// professor research lookups. The service runs fine without it.
type Client struct {
	client *redis.Client
}

func NewClient(host string, port int, password string, db int) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))

	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) SetPlan(ctx context.Context, key string, plan interface{}, ttl time.Duration) error {
	return c.setJSON(ctx, "plan:"+key, plan, ttl)
}

func (c *Client) GetPlan(ctx context.Context, key string, plan interface{}) (bool, error) {
	return c.getJSON(ctx, "plan:"+key, "plan", plan)
}

func (c *Client) SetResearch(ctx context.Context, key string, research interface{}, ttl time.Duration) error {
	return c.setJSON(ctx, "research:"+key, research, ttl)
}

func (c *Client) GetResearch(ctx context.Context, key string, research interface{}) (bool, error) {
	return c.getJSON(ctx, "research:"+key, "research", research)
}

func (c *Client) setJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache key: %w", err)
	}

	logger.Debug("Cache entry stored", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

func (c *Client) getJSON(ctx context.Context, key, cacheType string, out interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		metrics.CacheMisses.WithLabelValues(cacheType).Inc()
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get cache key: %w", err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	metrics.CacheHits.WithLabelValues(cacheType).Inc()
	logger.Debug("Cache hit", zap.String("key", key))
	return true, nil
}
