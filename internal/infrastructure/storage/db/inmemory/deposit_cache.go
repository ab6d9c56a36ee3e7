package inmemory

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tdex-network/incubator-tracker/internal/core/domain"
)

// DefaultCapacity is the default max number of stale deposits retained.
const DefaultCapacity = 10000

type depositCache struct {
	locker *sync.Mutex
	// deposits are those served by GetDeposit.
	deposits map[string]domain.Deposit
	// staleDeposits are those purged from deposits, kept for fallback.
	staleDeposits map[string]domain.Deposit
	// byAge orders deposits by timestamp so that purging is not a full scan.
	byAge    *depositHeap
	capacity int
}

// NewDepositCache returns an empty in-memory domain.DepositCache retaining at
// most capacity stale deposits.
func NewDepositCache(capacity int) domain.DepositCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &depositCache{
		locker:        &sync.Mutex{},
		deposits:      make(map[string]domain.Deposit),
		staleDeposits: make(map[string]domain.Deposit),
		byAge:         &depositHeap{},
		capacity:      capacity,
	}
}

func (c *depositCache) PurgeExpired(
	_ context.Context, now time.Time, ttl time.Duration,
) error {
	c.locker.Lock()
	defer c.locker.Unlock()

	for c.byAge.Len() > 0 {
		oldest := (*c.byAge)[0]
		if now.Sub(oldest.timestamp) <= ttl {
			break
		}
		heap.Pop(c.byAge)

		deposit, ok := c.deposits[oldest.user]
		// The deposit has been overwritten after this item was pushed.
		if !ok || !deposit.Timestamp.Equal(oldest.timestamp) {
			continue
		}
		delete(c.deposits, oldest.user)
		c.addStale(deposit)
	}
	return nil
}

func (c *depositCache) GetDeposit(
	_ context.Context, user string,
) (*domain.Deposit, error) {
	c.locker.Lock()
	defer c.locker.Unlock()

	deposit, ok := c.deposits[user]
	if !ok {
		return nil, nil
	}
	return &deposit, nil
}

func (c *depositCache) PutDeposit(
	_ context.Context, user string, amount decimal.Decimal, now time.Time,
) error {
	c.locker.Lock()
	defer c.locker.Unlock()

	c.deposits[user] = domain.Deposit{
		User:      user,
		Amount:    amount,
		Timestamp: now,
	}
	delete(c.staleDeposits, user)
	heap.Push(c.byAge, ageItem{user, now})
	return nil
}

func (c *depositCache) GetStaleDeposit(
	_ context.Context, user string,
) (*domain.Deposit, error) {
	c.locker.Lock()
	defer c.locker.Unlock()

	if deposit, ok := c.deposits[user]; ok {
		return &deposit, nil
	}
	if deposit, ok := c.staleDeposits[user]; ok {
		return &deposit, nil
	}
	return nil, nil
}

func (c *depositCache) Close() {}

// addStale must be called with the lock held.
func (c *depositCache) addStale(deposit domain.Deposit) {
	c.staleDeposits[deposit.User] = deposit
	if len(c.staleDeposits) <= c.capacity {
		return
	}

	var oldest *domain.Deposit
	for _, d := range c.staleDeposits {
		d := d
		if oldest == nil || d.Timestamp.Before(oldest.Timestamp) {
			oldest = &d
		}
	}
	delete(c.staleDeposits, oldest.User)
}

type ageItem struct {
	user      string
	timestamp time.Time
}

type depositHeap []ageItem

func (h depositHeap) Len() int           { return len(h) }
func (h depositHeap) Less(i, j int) bool { return h[i].timestamp.Before(h[j].timestamp) }
func (h depositHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *depositHeap) Push(x interface{}) {
	*h = append(*h, x.(ageItem))
}

func (h *depositHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
