package application_test

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/tdex-network/bitcoin-wallet/pkg/explorer"
)

// **** Explorer ****

type mockExplorer struct {
	mock.Mock
}

func (m *mockExplorer) GetBalance(
	ctx context.Context, address string,
) (*explorer.Balance, error) {
	args := m.Called(ctx, address)

	var res *explorer.Balance
	if a := args.Get(0); a != nil {
		res = a.(*explorer.Balance)
	}
	return res, args.Error(1)
}

func (m *mockExplorer) GetUtxos(
	ctx context.Context, address string,
) ([]explorer.Utxo, error) {
	args := m.Called(ctx, address)

	var res []explorer.Utxo
	if a := args.Get(0); a != nil {
		res = a.([]explorer.Utxo)
	}
	return res, args.Error(1)
}

func (m *mockExplorer) GetRecommendedFeeRates(
	ctx context.Context,
) (*explorer.FeeRates, error) {
	args := m.Called(ctx)

	var res *explorer.FeeRates
	if a := args.Get(0); a != nil {
		res = a.(*explorer.FeeRates)
	}
	return res, args.Error(1)
}

func (m *mockExplorer) Broadcast(
	ctx context.Context, txHex string,
) (string, error) {
	args := m.Called(ctx, txHex)
	return args.String(0), args.Error(1)
}

func (m *mockExplorer) GetTransactionHistory(
	ctx context.Context, address string, limit int,
) ([]explorer.TxSummary, error) {
	args := m.Called(ctx, address, limit)

	var res []explorer.TxSummary
	if a := args.Get(0); a != nil {
		res = a.([]explorer.TxSummary)
	}
	return res, args.Error(1)
}

func (m *mockExplorer) GetBlockHeight(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
