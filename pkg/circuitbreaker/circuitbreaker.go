package circuitbreaker

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

var (
	// MaxNumOfFailingRequests is the minimum number of requests in the current
	// interval before the breaker is allowed to trip.
	MaxNumOfFailingRequests = 10
	// FailingRatio is the ratio of failing requests that trips the breaker.
	FailingRatio = 0.6
	// OpenTimeout is how long the breaker stays open before letting a trial
	// request through.
	OpenTimeout = 30 * time.Second
	// Interval is the cyclic period after which the counts of a closed breaker
	// are cleared.
	Interval = time.Minute
)

// NewCircuitBreaker is a factory function returning a *gobreaker.CircuitBreaker
// with a default state-changing function that activates if the overall number
// of failing requests have reached a tweakable MaxNumOfFailingRequests cap and
// the failing ratio has met the FailingRatio.
func NewCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     name,
		Interval: Interval,
		Timeout:  OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return int(counts.Requests) > MaxNumOfFailingRequests && ratio >= FailingRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(log.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker changed state")
		},
	})
}

// Execute runs req through the given breaker. Errors caused by the
// cancellation of ctx are returned as ctx.Err() and are not counted as
// failures.
func Execute(
	ctx context.Context, cb *gobreaker.CircuitBreaker,
	req func() (interface{}, error),
) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var ctxErr error
	res, err := cb.Execute(func() (interface{}, error) {
		res, err := req()
		if err != nil && ctx.Err() != nil {
			ctxErr = ctx.Err()
			return nil, nil
		}
		return res, err
	})
	if ctxErr != nil {
		return nil, ctxErr
	}
	return res, err
}
