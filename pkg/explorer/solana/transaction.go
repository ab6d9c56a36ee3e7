package solana

import (
	"context"
	"errors"
	"fmt"

	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/tdex-network/incubator-tracker/pkg/explorer"
)

// maxSupportedTransactionVersion makes the node return versioned (v0)
// transactions instead of failing on them.
var maxSupportedTransactionVersion uint64 = 0

func (s *service) GetSignaturesForAddress(
	ctx context.Context, address string, limit int,
) ([]string, error) {
	account, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, fmt.Errorf("invalid address: %w", err)
	}
	if limit <= 0 {
		return []string{}, nil
	}

	signatures := make([]string, 0, limit)
	var before solana.Signature
	for len(signatures) < limit {
		pageSize := limit - len(signatures)
		if pageSize > maxSignaturesPerPage {
			pageSize = maxSignaturesPerPage
		}

		page, err := s.getSignaturesPage(ctx, account, pageSize, before)
		if err != nil {
			return nil, err
		}
		for _, sig := range page {
			signatures = append(signatures, sig.Signature.String())
		}
		if len(page) < pageSize {
			break
		}
		before = page[len(page)-1].Signature
	}

	return signatures, nil
}

func (s *service) GetTransaction(
	ctx context.Context, signature string,
) (*explorer.Transaction, error) {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return nil, fmt.Errorf("invalid signature: %w", err)
	}

	res, err := s.execute(ctx, func() (interface{}, error) {
		result, err := s.client.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
			Encoding:                       solana.EncodingBase64,
			Commitment:                     s.commitment,
			MaxSupportedTransactionVersion: &maxSupportedTransactionVersion,
		})
		// A missing transaction is not a failure of the node.
		if errors.Is(err, rpc.ErrNotFound) {
			return (*rpc.GetTransactionResult)(nil), nil
		}
		return result, err
	})
	if err != nil {
		return nil, err
	}

	result := res.(*rpc.GetTransactionResult)
	if result == nil || result.Meta == nil || result.Transaction == nil {
		return nil, nil
	}
	if result.Meta.Err != nil {
		return nil, nil
	}

	tx, err := result.Transaction.GetTransaction()
	if err != nil {
		return nil, fmt.Errorf("decode transaction %s: %w", signature, err)
	}

	return newTransaction(signature, result, tx), nil
}

func (s *service) getSignaturesPage(
	ctx context.Context, account solana.PublicKey, limit int,
	before solana.Signature,
) ([]*rpc.TransactionSignature, error) {
	opts := &rpc.GetSignaturesForAddressOpts{
		Limit:      &limit,
		Commitment: s.commitment,
	}
	if before != (solana.Signature{}) {
		opts.Before = before
	}

	res, err := s.execute(ctx, func() (interface{}, error) {
		return s.client.GetSignaturesForAddressWithOpts(ctx, account, opts)
	})
	if err != nil {
		return nil, err
	}
	return res.([]*rpc.TransactionSignature), nil
}
