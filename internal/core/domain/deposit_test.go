package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/incubator-tracker/internal/core/domain"
	"github.com/tdex-network/incubator-tracker/pkg/explorer"
)

const (
	user      = "user"
	otherUser = "otherUser"
	incubator = "incubator"
	usdt      = "usdt"
	usdc      = "usdc"
)

func TestAggregateDeposits(t *testing.T) {
	tests := []struct {
		name     string
		txs      []*explorer.Transaction
		expected string
	}{
		{
			name:     "no transactions",
			txs:      nil,
			expected: "0",
		},
		{
			name: "two deposits and a foreign withdrawal",
			txs: []*explorer.Transaction{
				newTransfer("tx3", otherUser, "120", "90"),
				newTransfer("tx2", user, "50", "120"),
				newTransfer("tx1", user, "0", "50"),
			},
			expected: "120",
		},
		{
			name: "duplicated transaction counted once",
			txs: []*explorer.Transaction{
				newTransfer("tx1", user, "0", "50"),
				newTransfer("tx1", user, "0", "50"),
			},
			expected: "50",
		},
		{
			name: "user not participant",
			txs: []*explorer.Transaction{
				newTransfer("tx1", otherUser, "0", "50"),
			},
			expected: "0",
		},
		{
			name: "withdrawal by user ignored",
			txs: []*explorer.Transaction{
				newTransfer("tx1", user, "100", "40"),
			},
			expected: "0",
		},
		{
			name: "no-op ignored",
			txs: []*explorer.Transaction{
				newTransfer("tx1", user, "100", "100"),
			},
			expected: "0",
		},
		{
			name: "nil transaction skipped",
			txs: []*explorer.Transaction{
				nil,
				newTransfer("tx1", user, "0", "12.345678"),
			},
			expected: "12.345678",
		},
		{
			name: "missing pre balance counts as zero",
			txs: []*explorer.Transaction{
				{
					Signature:   "tx1",
					AccountKeys: []string{user, incubator},
					PostTokenBalances: []explorer.TokenBalance{
						balance(1, incubator, usdt, "25"),
					},
				},
			},
			expected: "25",
		},
		{
			name: "missing post amount counts as zero",
			txs: []*explorer.Transaction{
				{
					Signature:   "tx1",
					AccountKeys: []string{user, incubator},
					PreTokenBalances: []explorer.TokenBalance{
						balance(1, incubator, usdt, "25"),
					},
					PostTokenBalances: []explorer.TokenBalance{
						{AccountIndex: 1, Owner: incubator, Mint: usdt},
					},
				},
			},
			expected: "0",
		},
		{
			name: "other asset ignored",
			txs: []*explorer.Transaction{
				{
					Signature:   "tx1",
					AccountKeys: []string{user, incubator},
					PreTokenBalances: []explorer.TokenBalance{
						balance(1, incubator, usdc, "0"),
					},
					PostTokenBalances: []explorer.TokenBalance{
						balance(1, incubator, usdc, "30"),
					},
				},
			},
			expected: "0",
		},
		{
			name: "balance of other owner ignored",
			txs: []*explorer.Transaction{
				{
					Signature:   "tx1",
					AccountKeys: []string{user, incubator},
					PreTokenBalances: []explorer.TokenBalance{
						balance(1, user, usdt, "0"),
					},
					PostTokenBalances: []explorer.TokenBalance{
						balance(1, user, usdt, "30"),
					},
				},
			},
			expected: "0",
		},
		{
			name: "multiple slots in one transaction",
			txs: []*explorer.Transaction{
				{
					Signature:   "tx1",
					AccountKeys: []string{user, incubator},
					PreTokenBalances: []explorer.TokenBalance{
						balance(1, user, usdt, "100"),
						balance(2, incubator, usdt, "10"),
						balance(3, incubator, usdt, "5"),
					},
					PostTokenBalances: []explorer.TokenBalance{
						balance(1, user, usdt, "70"),
						balance(2, incubator, usdt, "30"),
						balance(3, incubator, usdt, "15"),
					},
				},
			},
			expected: "30",
		},
		{
			name: "slots matched by account index",
			txs: []*explorer.Transaction{
				{
					Signature:   "tx1",
					AccountKeys: []string{user, incubator},
					PreTokenBalances: []explorer.TokenBalance{
						balance(3, incubator, usdt, "5"),
						balance(2, incubator, usdt, "40"),
					},
					PostTokenBalances: []explorer.TokenBalance{
						balance(2, incubator, usdt, "50"),
						balance(3, incubator, usdt, "5"),
					},
				},
			},
			expected: "10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total := domain.AggregateDeposits(tt.txs, user, incubator, usdt)
			require.Equal(t, decimal.RequireFromString(tt.expected).String(), total.String())
		})
	}
}

func TestAggregateDepositsIsIdempotent(t *testing.T) {
	txs := []*explorer.Transaction{
		newTransfer("tx1", user, "0", "50"),
		newTransfer("tx2", user, "50", "120"),
		newTransfer("tx1", user, "0", "50"),
	}

	first := domain.AggregateDeposits(txs, user, incubator, usdt)
	second := domain.AggregateDeposits(txs, user, incubator, usdt)
	require.True(t, first.Equal(second))
	require.Equal(t, "120", first.String())
}

func TestDepositFreshness(t *testing.T) {
	now := time.Now()
	ttl := time.Minute

	tests := []struct {
		name            string
		age             time.Duration
		expectedFresh   bool
		expectedExpired bool
	}{
		{"young", 30 * time.Second, true, false},
		{"exactly ttl old", ttl, false, false},
		{"old", 2 * time.Minute, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := domain.Deposit{
				User:      user,
				Amount:    decimal.NewFromInt(1),
				Timestamp: now.Add(-tt.age),
			}
			require.Equal(t, tt.expectedFresh, d.IsFresh(now, ttl))
			require.Equal(t, tt.expectedExpired, d.IsExpired(now, ttl))
		})
	}
}

func newTransfer(sig, sender, pre, post string) *explorer.Transaction {
	return &explorer.Transaction{
		Signature:   sig,
		AccountKeys: []string{sender, "senderTokenAccount", "incubatorTokenAccount", incubator},
		PreTokenBalances: []explorer.TokenBalance{
			balance(1, sender, usdt, "1000"),
			balance(2, incubator, usdt, pre),
		},
		PostTokenBalances: []explorer.TokenBalance{
			balance(1, sender, usdt, "900"),
			balance(2, incubator, usdt, post),
		},
	}
}

func balance(index int, owner, mint, amount string) explorer.TokenBalance {
	return explorer.TokenBalance{
		AccountIndex: index,
		Owner:        owner,
		Mint:         mint,
		Amount:       decimal.NewNullDecimal(decimal.RequireFromString(amount)),
	}
}
