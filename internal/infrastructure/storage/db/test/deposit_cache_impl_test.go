package db_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/incubator-tracker/internal/core/domain"
	dbbadger "github.com/tdex-network/incubator-tracker/internal/infrastructure/storage/db/badger"
	"github.com/tdex-network/incubator-tracker/internal/infrastructure/storage/db/inmemory"
	dbredis "github.com/tdex-network/incubator-tracker/internal/infrastructure/storage/db/redis"
	"github.com/thanhpk/randstr"
)

const ttl = time.Minute

type depositCache struct {
	Name  string
	Cache domain.DepositCache
	// NativeExpiry is true for caches that rely on the server to evict fresh
	// deposits instead of PurgeExpired.
	NativeExpiry bool
}

func TestDepositCacheImplementations(t *testing.T) {
	caches := createDepositCaches(t)

	for i := range caches {
		c := caches[i]

		t.Run(c.Name, func(t *testing.T) {
			t.Run("get_and_put_deposit", func(t *testing.T) {
				testGetAndPutDeposit(t, c)
			})
			t.Run("stale_deposit_includes_fresh", func(t *testing.T) {
				testStaleDepositIncludesFresh(t, c)
			})
			t.Run("concurrent_access", func(t *testing.T) {
				testConcurrentAccess(t, c)
			})
			if c.NativeExpiry {
				return
			}
			t.Run("purge_expired", func(t *testing.T) {
				testPurgeExpired(t, c)
			})
			t.Run("put_after_purge", func(t *testing.T) {
				testPutAfterPurge(t, c)
			})
		})
	}
}

func testGetAndPutDeposit(t *testing.T, c depositCache) {
	ctx := context.Background()
	user := randomUser()
	now := time.Now()

	deposit, err := c.Cache.GetDeposit(ctx, user)
	require.NoError(t, err)
	require.Nil(t, deposit)

	deposit, err = c.Cache.GetStaleDeposit(ctx, user)
	require.NoError(t, err)
	require.Nil(t, deposit)

	err = c.Cache.PutDeposit(ctx, user, decimal.NewFromInt(70), now)
	require.NoError(t, err)

	deposit, err = c.Cache.GetDeposit(ctx, user)
	require.NoError(t, err)
	require.NotNil(t, deposit)
	require.Equal(t, user, deposit.User)
	require.True(t, decimal.NewFromInt(70).Equal(deposit.Amount))
	require.True(t, now.Equal(deposit.Timestamp))

	later := now.Add(time.Second)
	err = c.Cache.PutDeposit(ctx, user, decimal.RequireFromString("70.5"), later)
	require.NoError(t, err)

	deposit, err = c.Cache.GetDeposit(ctx, user)
	require.NoError(t, err)
	require.NotNil(t, deposit)
	require.True(t, decimal.RequireFromString("70.5").Equal(deposit.Amount))
	require.True(t, later.Equal(deposit.Timestamp))
}

func testStaleDepositIncludesFresh(t *testing.T, c depositCache) {
	ctx := context.Background()
	user := randomUser()

	err := c.Cache.PutDeposit(ctx, user, decimal.NewFromInt(10), time.Now())
	require.NoError(t, err)

	deposit, err := c.Cache.GetStaleDeposit(ctx, user)
	require.NoError(t, err)
	require.NotNil(t, deposit)
	require.True(t, decimal.NewFromInt(10).Equal(deposit.Amount))
}

func testPurgeExpired(t *testing.T, c depositCache) {
	ctx := context.Background()
	oldUser, youngUser := randomUser(), randomUser()
	now := time.Now()

	err := c.Cache.PutDeposit(ctx, oldUser, decimal.NewFromInt(70), now.Add(-2*ttl))
	require.NoError(t, err)
	err = c.Cache.PutDeposit(ctx, youngUser, decimal.NewFromInt(5), now.Add(-ttl/2))
	require.NoError(t, err)

	err = c.Cache.PurgeExpired(ctx, now, ttl)
	require.NoError(t, err)

	deposit, err := c.Cache.GetDeposit(ctx, oldUser)
	require.NoError(t, err)
	require.Nil(t, deposit)

	deposit, err = c.Cache.GetStaleDeposit(ctx, oldUser)
	require.NoError(t, err)
	require.NotNil(t, deposit)
	require.True(t, decimal.NewFromInt(70).Equal(deposit.Amount))

	deposit, err = c.Cache.GetDeposit(ctx, youngUser)
	require.NoError(t, err)
	require.NotNil(t, deposit)
	require.True(t, decimal.NewFromInt(5).Equal(deposit.Amount))

	// Purging again must be harmless.
	err = c.Cache.PurgeExpired(ctx, now, ttl)
	require.NoError(t, err)
	deposit, err = c.Cache.GetStaleDeposit(ctx, oldUser)
	require.NoError(t, err)
	require.NotNil(t, deposit)
}

func testPutAfterPurge(t *testing.T, c depositCache) {
	ctx := context.Background()
	user := randomUser()
	now := time.Now()

	err := c.Cache.PutDeposit(ctx, user, decimal.NewFromInt(1), now.Add(-2*ttl))
	require.NoError(t, err)
	err = c.Cache.PurgeExpired(ctx, now, ttl)
	require.NoError(t, err)

	err = c.Cache.PutDeposit(ctx, user, decimal.NewFromInt(2), now)
	require.NoError(t, err)

	deposit, err := c.Cache.GetDeposit(ctx, user)
	require.NoError(t, err)
	require.NotNil(t, deposit)
	require.True(t, decimal.NewFromInt(2).Equal(deposit.Amount))

	deposit, err = c.Cache.GetStaleDeposit(ctx, user)
	require.NoError(t, err)
	require.NotNil(t, deposit)
	require.True(t, decimal.NewFromInt(2).Equal(deposit.Amount))
}

func testConcurrentAccess(t *testing.T, c depositCache) {
	ctx := context.Background()
	users := []string{randomUser(), randomUser(), randomUser()}
	now := time.Now()

	wg := &sync.WaitGroup{}
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := users[i%len(users)]
			amount := decimal.NewFromInt(int64(i))

			// Badger transactions may conflict under contention, the
			// orchestrator treats it as any other cache failure.
			//nolint
			c.Cache.PutDeposit(ctx, user, amount, now)
			//nolint
			c.Cache.PurgeExpired(ctx, now, ttl)
			//nolint
			c.Cache.GetDeposit(ctx, user)
		}(i)
	}
	wg.Wait()

	for _, user := range users {
		deposit, err := c.Cache.GetStaleDeposit(ctx, user)
		require.NoError(t, err)
		require.NotNil(t, deposit)
	}
}

func createDepositCaches(t *testing.T) []depositCache {
	badgerCache, err := dbbadger.NewDepositCache("", nil)
	require.NoError(t, err)

	caches := []depositCache{
		{
			Name:  "inmemory",
			Cache: inmemory.NewDepositCache(0),
		},
		{
			Name:  "badger",
			Cache: badgerCache,
		},
	}

	if addr := os.Getenv("INCUBATOR_TEST_REDIS_ADDR"); addr != "" {
		redisCache, err := dbredis.NewDepositCache(dbredis.Config{
			Addr: addr,
			TTL:  ttl,
		})
		require.NoError(t, err)
		caches = append(caches, depositCache{
			Name:         "redis",
			Cache:        redisCache,
			NativeExpiry: true,
		})
	}

	t.Cleanup(func() {
		for _, c := range caches {
			c.Cache.Close()
		}
	})
	return caches
}

func randomUser() string {
	return randstr.Hex(32)
}
