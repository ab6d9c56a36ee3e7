package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DepositCache is the abstraction for any kind of store intended to memoize
// the deposits computed for every user. At most one deposit per user is
// served by GetDeposit, while expired ones are kept aside to be served by
// GetStaleDeposit when the ledger can't be queried.
type DepositCache interface {
	// PurgeExpired removes from the lookup tier every deposit older than ttl.
	PurgeExpired(ctx context.Context, now time.Time, ttl time.Duration) error
	// GetDeposit returns the not yet purged deposit of the given user, or nil.
	GetDeposit(ctx context.Context, user string) (*Deposit, error)
	// PutDeposit unconditionally overwrites the deposit of the given user.
	PutDeposit(
		ctx context.Context, user string, amount decimal.Decimal, now time.Time,
	) error
	// GetStaleDeposit returns the last known deposit of the given user, or nil,
	// regardless of its age.
	GetStaleDeposit(ctx context.Context, user string) (*Deposit, error)
	Close()
}
