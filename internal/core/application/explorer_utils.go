package application

import (
	"context"
	"fmt"

	"github.com/tdex-network/incubator-tracker/pkg/explorer"
	"github.com/tdex-network/incubator-tracker/pkg/stats"
	"golang.org/x/sync/errgroup"
)

// fetchRecentActivity returns the signatures of the most recent transactions
// involving the given address, most recent first.
func fetchRecentActivity(
	ctx context.Context, explorerSvc explorer.Service, address string, limit int,
) ([]string, error) {
	signatures, err := explorerSvc.GetSignaturesForAddress(ctx, address, limit)
	if err != nil {
		stats.SourceErrors.WithLabelValues(stats.StageActivity).Inc()
		return nil, fmt.Errorf(
			"%w: failed to list activity of %s: %w", ErrSourceUnavailable, address, err,
		)
	}
	return signatures, nil
}

// fetchTransactions fetches the details of the given signatures in
// sequential batches of batchSize concurrent requests. The i-th returned
// transaction refers to the i-th signature and is nil if the source could not
// resolve it. Any failed request fails the whole call.
func fetchTransactions(
	ctx context.Context, explorerSvc explorer.Service,
	signatures []string, batchSize int,
) ([]*explorer.Transaction, error) {
	txs := make([]*explorer.Transaction, len(signatures))

	for start := 0; start < len(signatures); start += batchSize {
		end := start + batchSize
		if end > len(signatures) {
			end = len(signatures)
		}

		eg, egCtx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			i := i
			eg.Go(func() error {
				tx, err := explorerSvc.GetTransaction(egCtx, signatures[i])
				if err != nil {
					return fmt.Errorf(
						"failed to fetch transaction %s: %w", signatures[i], err,
					)
				}
				txs[i] = tx
				return nil
			})
		}
		stats.DetailBatches.Inc()

		if err := eg.Wait(); err != nil {
			stats.SourceErrors.WithLabelValues(stats.StageDetails).Inc()
			return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
		}
	}

	return txs, nil
}
