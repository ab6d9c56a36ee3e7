package explorer

import (
	"time"

	"github.com/shopspring/decimal"
)

// TokenBalance is a per-account, per-mint balance snapshot attached to a
// transaction, taken either right before or right after its execution.
type TokenBalance struct {
	// AccountIndex is the position of the token account among the keys of the
	// transaction. Pre and post snapshots of the same slot share it.
	AccountIndex int
	Owner        string
	Mint         string
	// Amount is the display-precision amount, already scaled by the mint
	// decimals. It's invalid when the source didn't report it.
	Amount decimal.NullDecimal
}

// Value returns the balance amount, zero if missing.
func (b TokenBalance) Value() decimal.Decimal {
	if !b.Amount.Valid {
		return decimal.Zero
	}
	return b.Amount.Decimal
}

// Transaction is the parsed detail of a confirmed transaction.
type Transaction struct {
	Signature string
	Slot      uint64
	BlockTime time.Time
	// AccountKeys lists all the accounts taking part in the transaction,
	// including those loaded from lookup tables.
	AccountKeys       []string
	PreTokenBalances  []TokenBalance
	PostTokenBalances []TokenBalance
}

// HasParticipant returns whether the given account is listed among the keys
// of the transaction.
func (t *Transaction) HasParticipant(account string) bool {
	for _, key := range t.AccountKeys {
		if key == account {
			return true
		}
	}
	return false
}

// PreTokenBalance returns the balance snapshot taken before the execution of
// the transaction for the given slot, if any.
func (t *Transaction) PreTokenBalance(accountIndex int) (TokenBalance, bool) {
	for _, b := range t.PreTokenBalances {
		if b.AccountIndex == accountIndex {
			return b, true
		}
	}
	return TokenBalance{}, false
}
