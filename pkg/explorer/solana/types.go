package solana

import (
	"errors"

	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
	"github.com/tdex-network/incubator-tracker/pkg/explorer"
)

var (
	// ErrMissingEndpoint ...
	ErrMissingEndpoint = errors.New("missing rpc endpoint")
	// ErrInvalidEndpointScheme ...
	ErrInvalidEndpointScheme = errors.New("rpc endpoint scheme must be http or https")
	// ErrUnknownCommitment ...
	ErrUnknownCommitment = errors.New(
		"commitment must be one of processed, confirmed, finalized",
	)
	// ErrInvalidRequestsPerSecond ...
	ErrInvalidRequestsPerSecond = errors.New(
		"requests per second must not be negative",
	)
)

func newTransaction(
	signature string, result *rpc.GetTransactionResult, tx *solana.Transaction,
) *explorer.Transaction {
	t := &explorer.Transaction{
		Signature:         signature,
		Slot:              result.Slot,
		AccountKeys:       accountKeys(tx, result.Meta),
		PreTokenBalances:  parseTokenBalances(result.Meta.PreTokenBalances),
		PostTokenBalances: parseTokenBalances(result.Meta.PostTokenBalances),
	}
	if result.BlockTime != nil {
		t.BlockTime = result.BlockTime.Time()
	}
	return t
}

// accountKeys returns the static keys of the message followed by those loaded
// from address lookup tables, writable first, as the node indexes them.
func accountKeys(tx *solana.Transaction, meta *rpc.TransactionMeta) []string {
	keys := make([]string, 0, len(tx.Message.AccountKeys))
	for _, k := range tx.Message.AccountKeys {
		keys = append(keys, k.String())
	}
	if meta == nil {
		return keys
	}
	for _, k := range meta.LoadedAddresses.Writable {
		keys = append(keys, k.String())
	}
	for _, k := range meta.LoadedAddresses.ReadOnly {
		keys = append(keys, k.String())
	}
	return keys
}

func parseTokenBalances(balances []rpc.TokenBalance) []explorer.TokenBalance {
	res := make([]explorer.TokenBalance, 0, len(balances))
	for _, b := range balances {
		balance := explorer.TokenBalance{
			AccountIndex: int(b.AccountIndex),
			Mint:         b.Mint.String(),
			Amount:       parseUiAmount(b.UiTokenAmount),
		}
		if b.Owner != nil {
			balance.Owner = b.Owner.String()
		}
		res = append(res, balance)
	}
	return res
}

// parseUiAmount prefers the string representation of the display amount to
// avoid float rounding.
func parseUiAmount(amount *rpc.UiTokenAmount) decimal.NullDecimal {
	if amount == nil {
		return decimal.NullDecimal{}
	}
	if amount.UiAmountString != "" {
		d, err := decimal.NewFromString(amount.UiAmountString)
		if err == nil {
			return decimal.NewNullDecimal(d)
		}
	}
	if amount.UiAmount != nil {
		return decimal.NewNullDecimal(decimal.NewFromFloat(*amount.UiAmount))
	}
	return decimal.NullDecimal{}
}
