package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Deposit holds the total amount of the tracked asset a user has transferred
// to the incubator, as computed at Timestamp.
type Deposit struct {
	User      string
	Amount    decimal.Decimal
	Timestamp time.Time
}

// IsFresh returns whether the deposit is younger than the given ttl.
func (d Deposit) IsFresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(d.Timestamp) < ttl
}

// IsExpired returns whether the deposit is older than the given ttl.
// A deposit exactly ttl old is neither fresh nor expired.
func (d Deposit) IsExpired(now time.Time, ttl time.Duration) bool {
	return now.Sub(d.Timestamp) > ttl
}
