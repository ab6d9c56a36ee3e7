package application

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tdex-network/incubator-tracker/internal/core/domain"
)

// DepositInfo is the deposit of a user as returned by the service. Stale is
// true if the ledger could not be queried and Amount is the last known value,
// computed at Timestamp.
type DepositInfo struct {
	User      string
	Amount    decimal.Decimal
	Timestamp time.Time
	Stale     bool
}

func newDepositInfo(deposit domain.Deposit, stale bool) *DepositInfo {
	return &DepositInfo{
		User:      deposit.User,
		Amount:    deposit.Amount,
		Timestamp: deposit.Timestamp,
		Stale:     stale,
	}
}
