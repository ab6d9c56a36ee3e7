package domain

import (
	"github.com/shopspring/decimal"
	"github.com/tdex-network/incubator-tracker/pkg/explorer"
)

// AggregateDeposits returns the sum of the amounts of asset the given user
// transferred to the incubator within the given transactions.
//
// A transaction counts only if the user is one of its participants. For every
// token balance of the incubator in the given asset, the post-balance is
// compared with the pre-balance of the same slot and only positive deltas are
// summed up, withdrawals are ignored. Nil and duplicated transactions are
// skipped.
func AggregateDeposits(
	txs []*explorer.Transaction, user, incubator, asset string,
) decimal.Decimal {
	total := decimal.Zero
	seen := make(map[string]struct{}, len(txs))

	for _, tx := range txs {
		if tx == nil {
			continue
		}
		if _, ok := seen[tx.Signature]; ok {
			continue
		}
		seen[tx.Signature] = struct{}{}

		if !tx.HasParticipant(user) {
			continue
		}

		total = total.Add(depositedAmount(tx, incubator, asset))
	}

	return total
}

func depositedAmount(
	tx *explorer.Transaction, incubator, asset string,
) decimal.Decimal {
	amount := decimal.Zero
	for _, post := range tx.PostTokenBalances {
		if post.Owner != incubator || post.Mint != asset {
			continue
		}

		preAmount := decimal.Zero
		if pre, ok := tx.PreTokenBalance(post.AccountIndex); ok {
			preAmount = pre.Value()
		}

		if delta := post.Value().Sub(preAmount); delta.IsPositive() {
			amount = amount.Add(delta)
		}
	}
	return amount
}
