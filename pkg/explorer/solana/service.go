package solana

import (
	"context"
	"fmt"
	"net/url"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sony/gobreaker"
	"github.com/tdex-network/incubator-tracker/pkg/circuitbreaker"
	"github.com/tdex-network/incubator-tracker/pkg/explorer"
	"go.uber.org/ratelimit"
)

const (
	// maxSignaturesPerPage is the max number of signatures returned by a single
	// getSignaturesForAddress call.
	maxSignaturesPerPage = 1000
	// DefaultRequestsPerSecond matches the rate limit of the public endpoints.
	DefaultRequestsPerSecond = 10
)

var supportedCommitments = map[string]rpc.CommitmentType{
	string(rpc.CommitmentProcessed): rpc.CommitmentProcessed,
	string(rpc.CommitmentConfirmed): rpc.CommitmentConfirmed,
	string(rpc.CommitmentFinalized): rpc.CommitmentFinalized,
}

// ServiceOpts defines the parameters of the Solana explorer.
type ServiceOpts struct {
	// Endpoint is the URL of the JSON-RPC interface of a node.
	Endpoint string
	// Commitment is the confirmation level used for every query, one of
	// processed, confirmed or finalized. Defaults to confirmed.
	Commitment string
	// RequestsPerSecond caps the rate of requests sent to the node.
	RequestsPerSecond int
	// SkipHealthCheck disables the slot query made at construction time.
	SkipHealthCheck bool
}

func (o ServiceOpts) validate() error {
	if o.Endpoint == "" {
		return ErrMissingEndpoint
	}
	u, err := url.Parse(o.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidEndpointScheme
	}
	if o.Commitment != "" {
		if _, ok := supportedCommitments[o.Commitment]; !ok {
			return ErrUnknownCommitment
		}
	}
	if o.RequestsPerSecond < 0 {
		return ErrInvalidRequestsPerSecond
	}
	return nil
}

type service struct {
	client     *rpc.Client
	commitment rpc.CommitmentType
	limiter    ratelimit.Limiter
	cb         *gobreaker.CircuitBreaker
}

// NewService returns the Solana implementation of the Explorer interface.
// Every request goes through a rate limiter and a circuit breaker so that a
// misbehaving node is not flooded with requests.
func NewService(opts ServiceOpts) (explorer.Service, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	commitment := rpc.CommitmentConfirmed
	if opts.Commitment != "" {
		commitment = supportedCommitments[opts.Commitment]
	}
	rps := opts.RequestsPerSecond
	if rps == 0 {
		rps = DefaultRequestsPerSecond
	}

	svc := &service{
		client:     rpc.New(opts.Endpoint),
		commitment: commitment,
		limiter:    ratelimit.New(rps),
		cb:         circuitbreaker.NewCircuitBreaker("solana-rpc"),
	}

	if !opts.SkipHealthCheck {
		if _, err := svc.GetSlot(context.Background()); err != nil {
			return nil, fmt.Errorf("health check: %w", err)
		}
	}
	return svc, nil
}

func (s *service) GetSlot(ctx context.Context) (uint64, error) {
	res, err := s.execute(ctx, func() (interface{}, error) {
		return s.client.GetSlot(ctx, s.commitment)
	})
	if err != nil {
		return 0, err
	}
	return res.(uint64), nil
}

// execute throttles the given request and runs it through the breaker.
// Requests whose context is done are not sent to the node.
func (s *service) execute(
	ctx context.Context, req func() (interface{}, error),
) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.limiter.Take()
	return circuitbreaker.Execute(ctx, s.cb, req)
}
