package explorer

import (
	"context"
)

// Service is representation of a ledger explorer that allows to fetch the
// history of an address and the details of the transactions it took part in.
// Implementations report failures as opaque errors (network, rate limit,
// malformed response), callers are expected to wrap them.
type Service interface {
	// GetSignaturesForAddress returns at most limit signatures of the
	// transactions involving the given address, most recent first.
	GetSignaturesForAddress(
		ctx context.Context, address string, limit int,
	) (signatures []string, err error)
	// GetTransaction returns the parsed detail of the transaction identified by
	// the given signature. A nil transaction with nil error is returned when the
	// source can't resolve it (pruned, unconfirmed or failed transaction).
	GetTransaction(ctx context.Context, signature string) (*Transaction, error)
	// GetSlot returns the current slot of the ledger. Used as health check.
	GetSlot(ctx context.Context) (uint64, error)
}
