package application_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/tdex-network/incubator-tracker/pkg/explorer"
)

// **** Explorer ****

type mockExplorer struct {
	mock.Mock
}

func (m *mockExplorer) GetSignaturesForAddress(
	_ context.Context, address string, limit int,
) ([]string, error) {
	args := m.Called(address, limit)

	var res []string
	if a := args.Get(0); a != nil {
		res = a.([]string)
	}
	return res, args.Error(1)
}

func (m *mockExplorer) GetTransaction(
	_ context.Context, signature string,
) (*explorer.Transaction, error) {
	args := m.Called(signature)

	var res *explorer.Transaction
	if a := args.Get(0); a != nil {
		res = a.(*explorer.Transaction)
	}
	return res, args.Error(1)
}

func (m *mockExplorer) GetSlot(_ context.Context) (uint64, error) {
	args := m.Called()

	var res uint64
	if a := args.Get(0); a != nil {
		res = a.(uint64)
	}
	return res, args.Error(1)
}

// **** Instrumented explorer ****

// instrumentedExplorer is an explorer that records how many transaction requests are
// in flight and how many completed whenever a new one starts.
type instrumentedExplorer struct {
	signatures []string
	index      map[string]int
	latency    time.Duration

	// release, if not nil, blocks the activity listing until closed.
	release chan struct{}

	lock              sync.Mutex
	activityCalls     int
	inFlight          int
	maxInFlight       int
	completed         int
	completedAtStart  map[int]int
	transactionsCalls int
}

func newInstrumentedExplorer(numOfSignatures int, latency time.Duration) *instrumentedExplorer {
	signatures := make([]string, 0, numOfSignatures)
	index := make(map[string]int, numOfSignatures)
	for i := 0; i < numOfSignatures; i++ {
		sig := randomSignature()
		signatures = append(signatures, sig)
		index[sig] = i
	}
	return &instrumentedExplorer{
		signatures:       signatures,
		index:            index,
		latency:          latency,
		completedAtStart: make(map[int]int),
	}
}

func (p *instrumentedExplorer) GetSignaturesForAddress(
	ctx context.Context, _ string, limit int,
) ([]string, error) {
	p.lock.Lock()
	p.activityCalls++
	p.lock.Unlock()

	if p.release != nil {
		select {
		case <-p.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if limit < len(p.signatures) {
		return p.signatures[:limit], nil
	}
	return p.signatures, nil
}

func (p *instrumentedExplorer) numOfActivityCalls() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.activityCalls
}

func (p *instrumentedExplorer) GetTransaction(
	_ context.Context, signature string,
) (*explorer.Transaction, error) {
	p.lock.Lock()
	p.transactionsCalls++
	p.inFlight++
	if p.inFlight > p.maxInFlight {
		p.maxInFlight = p.inFlight
	}
	p.completedAtStart[p.index[signature]] = p.completed
	p.lock.Unlock()

	time.Sleep(p.latency)

	p.lock.Lock()
	p.inFlight--
	p.completed++
	p.lock.Unlock()

	return &explorer.Transaction{Signature: signature}, nil
}

func (p *instrumentedExplorer) GetSlot(context.Context) (uint64, error) {
	return 0, nil
}
