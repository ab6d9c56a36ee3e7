package application

import (
	"context"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/incubator-tracker/internal/core/domain"
	"github.com/tdex-network/incubator-tracker/pkg/explorer"
	"github.com/tdex-network/incubator-tracker/pkg/stats"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultTTL           = 5 * time.Minute
	DefaultActivityLimit = 1000
	DefaultBatchSize     = 10
	// DefaultPipelineTimeout bounds a single aggregation run, which outlives
	// the callers waiting for it.
	DefaultPipelineTimeout = 2 * time.Minute
)

// DepositService defines the methods of the application layer to retrieve
// the amount users deposited to the incubator.
type DepositService interface {
	GetUserDeposit(ctx context.Context, user string) (decimal.Decimal, error)
	GetUserDepositInfo(ctx context.Context, user string) (*DepositInfo, error)
}

// DepositServiceOpts holds the dependencies and the parameters of the
// deposit service. Zero values of TTL, ActivityLimit, BatchSize and
// PipelineTimeout are replaced with defaults.
type DepositServiceOpts struct {
	Explorer         explorer.Service
	Cache            domain.DepositCache
	IncubatorAddress string
	AssetMint        string
	TTL              time.Duration
	ActivityLimit    int
	BatchSize        int
	PipelineTimeout  time.Duration
	// Now is used in place of time.Now if defined.
	Now func() time.Time
}

func (o *DepositServiceOpts) validate() error {
	if o.Explorer == nil {
		return ErrMissingExplorer
	}
	if o.Cache == nil {
		return ErrMissingDepositCache
	}
	return validation.ValidateStruct(
		o,
		validation.Field(
			&o.IncubatorAddress, validation.Required, validation.By(isAccount),
		),
		validation.Field(&o.AssetMint, validation.Required, validation.By(isAccount)),
		validation.Field(&o.TTL, validation.Min(time.Duration(0))),
		validation.Field(&o.ActivityLimit, validation.Min(0)),
		validation.Field(&o.BatchSize, validation.Min(0)),
		validation.Field(&o.PipelineTimeout, validation.Min(time.Duration(0))),
	)
}

type depositService struct {
	explorer      explorer.Service
	cache         domain.DepositCache
	incubator     string
	asset         string
	ttl           time.Duration
	activityLimit int
	batchSize     int
	timeout       time.Duration
	now           func() time.Time

	group singleflight.Group
}

func NewDepositService(opts DepositServiceOpts) (DepositService, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	ttl := opts.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}
	activityLimit := opts.ActivityLimit
	if activityLimit == 0 {
		activityLimit = DefaultActivityLimit
	}
	batchSize := opts.BatchSize
	if batchSize == 0 {
		batchSize = DefaultBatchSize
	}
	timeout := opts.PipelineTimeout
	if timeout == 0 {
		timeout = DefaultPipelineTimeout
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &depositService{
		explorer:      opts.Explorer,
		cache:         opts.Cache,
		incubator:     opts.IncubatorAddress,
		asset:         opts.AssetMint,
		ttl:           ttl,
		activityLimit: activityLimit,
		batchSize:     batchSize,
		timeout:       timeout,
		now:           now,
	}, nil
}

func (s *depositService) GetUserDeposit(
	ctx context.Context, user string,
) (decimal.Decimal, error) {
	info, err := s.GetUserDepositInfo(ctx, user)
	if err != nil {
		return decimal.Zero, err
	}
	return info.Amount, nil
}

// GetUserDepositInfo returns the deposit of the given user, either from cache
// or by scanning the most recent activity of the incubator. If the scan
// fails, the last known deposit is returned regardless of its age.
func (s *depositService) GetUserDepositInfo(
	ctx context.Context, user string,
) (*DepositInfo, error) {
	if err := validateAccount(user); err != nil {
		stats.DepositLookups.WithLabelValues(stats.OutcomeInvalid).Inc()
		return nil, err
	}

	now := s.now()
	if err := s.cache.PurgeExpired(ctx, now, s.ttl); err != nil {
		log.WithError(err).Warn("failed to purge expired deposits")
	}

	deposit, err := s.cache.GetDeposit(ctx, user)
	if err != nil {
		log.WithError(err).Warnf("failed to get cached deposit of %s", user)
	}
	if deposit != nil && deposit.IsFresh(now, s.ttl) {
		stats.DepositLookups.WithLabelValues(stats.OutcomeCacheHit).Inc()
		return newDepositInfo(*deposit, false), nil
	}

	// The aggregation is shared by concurrent callers for the same user and
	// must not depend on the context of the one that started it. Each caller
	// stops waiting when its own context is done.
	ch := s.group.DoChan(user, func() (interface{}, error) {
		pipelineCtx, cancel := context.WithTimeout(
			context.WithoutCancel(ctx), s.timeout,
		)
		defer cancel()
		return s.computeDeposit(pipelineCtx, user)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	err = res.Err
	if err == nil {
		if !res.Shared {
			stats.DepositLookups.WithLabelValues(stats.OutcomeComputed).Inc()
		}
		return res.Val.(*DepositInfo), nil
	}

	log.WithError(err).Warnf("failed to compute deposit of %s", user)

	stale, staleErr := s.cache.GetStaleDeposit(ctx, user)
	if staleErr != nil {
		log.WithError(staleErr).Warnf("failed to get stale deposit of %s", user)
	}
	if stale == nil {
		stats.DepositLookups.WithLabelValues(stats.OutcomeNoData).Inc()
		return nil, fmt.Errorf("%w: %w", ErrNoDataAvailable, err)
	}

	stats.DepositLookups.WithLabelValues(stats.OutcomeStale).Inc()
	log.Debugf(
		"serving deposit of %s computed at %s", user, stale.Timestamp.Format(time.RFC3339),
	)
	return newDepositInfo(*stale, !stale.IsFresh(now, s.ttl)), nil
}

func (s *depositService) computeDeposit(
	ctx context.Context, user string,
) (*DepositInfo, error) {
	start := time.Now()
	defer func() {
		stats.AggregationDuration.Observe(time.Since(start).Seconds())
	}()

	signatures, err := fetchRecentActivity(
		ctx, s.explorer, s.incubator, s.activityLimit,
	)
	if err != nil {
		return nil, err
	}

	txs, err := fetchTransactions(ctx, s.explorer, signatures, s.batchSize)
	if err != nil {
		return nil, err
	}

	total := domain.AggregateDeposits(txs, user, s.incubator, s.asset)
	now := s.now()

	if err := s.cache.PutDeposit(ctx, user, total, now); err != nil {
		log.WithError(err).Warnf("failed to cache deposit of %s", user)
	}

	log.Debugf(
		"computed deposit of %s over %d transactions: %s",
		user, len(signatures), total,
	)

	return &DepositInfo{
		User:      user,
		Amount:    total,
		Timestamp: now,
	}, nil
}
