package dbredis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/tdex-network/incubator-tracker/internal/core/domain"
)

const (
	keyPrefix      = "incubator:deposit"
	pingTimeout    = 5 * time.Second
	defaultTTL     = 5 * time.Minute
	staleRetention = 30 * 24 * time.Hour
)

// Config defines how to reach the redis server.
type Config struct {
	Addr     string
	Password string
	DB       int
	// TTL is the expiration set on fresh deposits. Redis takes care of
	// evicting them, hence PurgeExpired is a no-op for this implementation.
	TTL time.Duration
}

type depositCache struct {
	client     *redis.Client
	ownsClient bool
	ttl        time.Duration
}

// NewDepositCache connects to the redis server and returns a redis
// implementation of domain.DepositCache that can be shared among instances.
func NewDepositCache(cfg Config) (domain.DepositCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return newDepositCache(client, true, cfg.TTL), nil
}

// NewDepositCacheWithClient returns a cache on top of an existing client.
// The caller retains ownership of the client.
func NewDepositCacheWithClient(
	client *redis.Client, ttl time.Duration,
) domain.DepositCache {
	return newDepositCache(client, false, ttl)
}

func newDepositCache(
	client *redis.Client, ownsClient bool, ttl time.Duration,
) *depositCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &depositCache{client, ownsClient, ttl}
}

func (c *depositCache) PurgeExpired(
	context.Context, time.Time, time.Duration,
) error {
	return nil
}

func (c *depositCache) GetDeposit(
	ctx context.Context, user string,
) (*domain.Deposit, error) {
	return c.get(ctx, freshKey(user))
}

func (c *depositCache) PutDeposit(
	ctx context.Context, user string, amount decimal.Decimal, now time.Time,
) error {
	data, err := json.Marshal(domain.Deposit{
		User:      user,
		Amount:    amount,
		Timestamp: now,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal deposit: %w", err)
	}

	// Both copies are written atomically, the stale one outlives the fresh one.
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, freshKey(user), data, c.ttl)
		pipe.Set(ctx, staleKey(user), data, staleRetention)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store deposit: %w", err)
	}
	return nil
}

func (c *depositCache) GetStaleDeposit(
	ctx context.Context, user string,
) (*domain.Deposit, error) {
	return c.get(ctx, staleKey(user))
}

func (c *depositCache) Close() {
	if c.ownsClient {
		c.client.Close()
	}
}

func (c *depositCache) get(
	ctx context.Context, key string,
) (*domain.Deposit, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deposit: %w", err)
	}

	var deposit domain.Deposit
	if err := json.Unmarshal(data, &deposit); err != nil {
		// Drop the corrupted entry so that it gets recomputed.
		c.client.Del(ctx, key)
		return nil, fmt.Errorf("failed to unmarshal deposit: %w", err)
	}
	return &deposit, nil
}

func freshKey(user string) string {
	return fmt.Sprintf("%s:%s", keyPrefix, user)
}

func staleKey(user string) string {
	return fmt.Sprintf("%s:stale:%s", keyPrefix, user)
}
