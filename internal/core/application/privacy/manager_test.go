package privacy

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/bitcoin-wallet/internal/core/domain"
	"github.com/tdex-network/bitcoin-wallet/pkg/mathutil"
)

var ctx = context.Background()

func TestNextUnused(t *testing.T) {
	m, err := NewManager(ctx, nil)
	require.NoError(t, err)

	addresses := []string{
		"tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx",
		"mrCDrCybB6J1vRfbwM5hemdJz73FwDBC8r",
	}

	first, err := m.NextUnused(ctx, addresses)
	require.NoError(t, err)
	second, err := m.NextUnused(ctx, addresses)
	require.NoError(t, err)
	require.NotEqual(t, first, second)
	require.True(t, m.IsUsed(first))
	require.True(t, m.IsUsed(second))

	_, err = m.NextUnused(ctx, addresses)
	require.ErrorIs(t, err, domain.ErrNoUnusedAddress)

	_, err = m.NextUnused(ctx, nil)
	require.ErrorIs(t, err, domain.ErrNoUnusedAddress)
}

func TestMarkUsed(t *testing.T) {
	m, err := NewManager(ctx, nil)
	require.NoError(t, err)

	require.NoError(t, m.MarkUsed(ctx, "a", "b"))
	require.True(t, m.IsUsed("a"))
	require.False(t, m.IsUsed("c"))

	next, err := m.NextUnused(ctx, []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Equal(t, "c", next)
}

func TestNextUnusedConcurrently(t *testing.T) {
	m, err := NewManager(ctx, nil)
	require.NoError(t, err)

	numOfAddresses := 50
	addresses := make([]string, 0, numOfAddresses)
	for i := 0; i < numOfAddresses; i++ {
		addresses = append(addresses, fmt.Sprintf("address-%d", i))
	}

	results := make(chan string, numOfAddresses)
	wg := &sync.WaitGroup{}
	for i := 0; i < numOfAddresses; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			addr, err := m.NextUnused(ctx, addresses)
			if err == nil {
				results <- addr
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool)
	for addr := range results {
		require.False(t, seen[addr], "address %s handed out twice", addr)
		seen[addr] = true
	}
	require.Len(t, seen, numOfAddresses)
}

func TestPerturbAmount(t *testing.T) {
	m, err := newManager(ctx, nil, rand.NewSource(42))
	require.NoError(t, err)

	amount := decimal.RequireFromString("0.01")
	sats := mathutil.ToSatoshi(amount)
	maxVariance := int64(1000)

	for i := 0; i < 1000; i++ {
		perturbed := mathutil.ToSatoshi(
			m.PerturbAmount(amount, DefaultVariancePercent),
		)
		require.GreaterOrEqual(t, perturbed, sats-maxVariance)
		require.LessOrEqual(t, perturbed, sats+maxVariance)
	}

	require.True(t, m.PerturbAmount(decimal.Zero, DefaultVariancePercent).IsZero())

	tiny := decimal.RequireFromString("0.00000500")
	require.True(t, tiny.Equal(m.PerturbAmount(tiny, DefaultVariancePercent)))
}

func TestPerturbFeeRate(t *testing.T) {
	m, err := newManager(ctx, nil, rand.NewSource(7))
	require.NoError(t, err)

	seen := make(map[uint64]bool)
	for i := 0; i < 300; i++ {
		rate := m.PerturbFeeRate(10)
		require.GreaterOrEqual(t, rate, uint64(9))
		require.LessOrEqual(t, rate, uint64(11))
		seen[rate] = true

		require.GreaterOrEqual(t, m.PerturbFeeRate(1), uint64(1))
	}
	require.Len(t, seen, 3)
}

func TestManagerWithRepository(t *testing.T) {
	t.Run("restores and mirrors used addresses", func(t *testing.T) {
		repo := &mockRepository{}
		repo.On("GetUsedAddresses", mock.Anything).Return([]string{"a"}, nil)
		repo.On("AddUsedAddresses", mock.Anything, []string{"b"}).Return(nil)

		m, err := NewManager(ctx, repo)
		require.NoError(t, err)
		require.True(t, m.IsUsed("a"))

		next, err := m.NextUnused(ctx, []string{"a", "b"})
		require.NoError(t, err)
		require.Equal(t, "b", next)

		require.NoError(t, m.MarkUsed(ctx, "a", "b"))
		repo.AssertNumberOfCalls(t, "AddUsedAddresses", 1)
	})

	t.Run("fails to restore", func(t *testing.T) {
		repo := &mockRepository{}
		repo.On("GetUsedAddresses", mock.Anything).Return(nil, errors.New("db closed"))

		_, err := NewManager(ctx, repo)
		require.ErrorIs(t, err, domain.ErrStorage)
	})

	t.Run("fails to persist", func(t *testing.T) {
		repo := &mockRepository{}
		repo.On("GetUsedAddresses", mock.Anything).Return([]string{}, nil)
		repo.On("AddUsedAddresses", mock.Anything, mock.Anything).
			Return(errors.New("db closed"))

		m, err := NewManager(ctx, repo)
		require.NoError(t, err)

		_, err = m.NextUnused(ctx, []string{"a"})
		require.ErrorIs(t, err, domain.ErrStorage)
	})
}

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) AddUsedAddresses(
	ctx context.Context, addresses ...string,
) error {
	args := m.Called(ctx, addresses)
	return args.Error(0)
}

func (m *mockRepository) IsUsedAddress(
	ctx context.Context, address string,
) (bool, error) {
	args := m.Called(ctx, address)
	return args.Bool(0), args.Error(1)
}

func (m *mockRepository) GetUsedAddresses(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	var res []string
	if a := args.Get(0); a != nil {
		res = a.([]string)
	}
	return res, args.Error(1)
}

func (m *mockRepository) Close() {}
