package dbbadger

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/incubator-tracker/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const (
	cacheDir   = "deposits"
	gcInterval = 30 * time.Minute
)

// freshDeposit and staleDeposit have the same shape but different type names
// so that badgerhold stores them under different key prefixes.
type freshDeposit struct {
	User      string
	Amount    decimal.Decimal
	Timestamp time.Time
}

type staleDeposit freshDeposit

func (d freshDeposit) toDomain() *domain.Deposit {
	return &domain.Deposit{User: d.User, Amount: d.Amount, Timestamp: d.Timestamp}
}

type depositCache struct {
	store  *badgerhold.Store
	stopGC chan struct{}
}

// NewDepositCache returns a badger implementation of domain.DepositCache.
// Deposits are persisted under baseDbDir, or kept in memory if it's empty.
func NewDepositCache(
	baseDbDir string, logger badger.Logger,
) (domain.DepositCache, error) {
	var dbDir string
	if len(baseDbDir) > 0 {
		dbDir = filepath.Join(baseDbDir, cacheDir)
	}

	store, err := createDb(dbDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening deposits db: %w", err)
	}

	c := &depositCache{store: store, stopGC: make(chan struct{})}
	if len(dbDir) > 0 {
		go c.runValueLogGC()
	}
	return c, nil
}

func (c *depositCache) PurgeExpired(
	_ context.Context, now time.Time, ttl time.Duration,
) error {
	query := badgerhold.Where("Timestamp").Lt(now.Add(-ttl))

	return c.store.Badger().Update(func(tx *badger.Txn) error {
		var expired []freshDeposit
		if err := c.store.TxFind(tx, &expired, query); err != nil {
			return err
		}

		for _, d := range expired {
			stale := staleDeposit(d)
			if err := c.store.TxUpsert(tx, d.User, &stale); err != nil {
				return err
			}
			if err := c.store.TxDelete(tx, d.User, freshDeposit{}); err != nil &&
				err != badgerhold.ErrNotFound {
				return err
			}
		}
		return nil
	})
}

func (c *depositCache) GetDeposit(
	_ context.Context, user string,
) (*domain.Deposit, error) {
	var deposit freshDeposit
	if err := c.store.Get(user, &deposit); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return deposit.toDomain(), nil
}

func (c *depositCache) PutDeposit(
	_ context.Context, user string, amount decimal.Decimal, now time.Time,
) error {
	deposit := &freshDeposit{User: user, Amount: amount, Timestamp: now}

	return c.store.Badger().Update(func(tx *badger.Txn) error {
		if err := c.store.TxUpsert(tx, user, deposit); err != nil {
			return err
		}
		if err := c.store.TxDelete(tx, user, staleDeposit{}); err != nil &&
			err != badgerhold.ErrNotFound {
			return err
		}
		return nil
	})
}

func (c *depositCache) GetStaleDeposit(
	ctx context.Context, user string,
) (*domain.Deposit, error) {
	deposit, err := c.GetDeposit(ctx, user)
	if err != nil || deposit != nil {
		return deposit, err
	}

	var stale staleDeposit
	if err := c.store.Get(user, &stale); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return freshDeposit(stale).toDomain(), nil
}

func (c *depositCache) Close() {
	close(c.stopGC)
	c.store.Close()
}

func (c *depositCache) runValueLogGC() {
	ticker := time.NewTicker(gcInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.store.Badger().RunValueLogGC(0.5); err != nil &&
				err != badger.ErrNoRewrite {
				log.Error(err)
			}
		case <-c.stopGC:
			return
		}
	}
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	return badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
}
