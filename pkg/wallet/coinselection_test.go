package wallet

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/bitcoin-wallet/pkg/explorer"
)

func newTestUtxos(values ...uint64) []explorer.Utxo {
	utxos := make([]explorer.Utxo, 0, len(values))
	for i, v := range values {
		utxos = append(utxos, explorer.Utxo{
			TxID:  fmt.Sprintf("%064x", i+1),
			Vout:  uint32(i),
			Value: v,
		})
	}
	return utxos
}

func TestSelectUtxos(t *testing.T) {
	t.Run("two segwit inputs", func(t *testing.T) {
		selection, err := SelectUtxos(SelectUtxosOpts{
			Utxos:        newTestUtxos(30000, 50000),
			TargetAmount: 60000,
			FeeRate:      5,
			ScriptType:   P2WPKH,
		})
		require.NoError(t, err)

		expectedFee := EstimateFee(2, 2, P2WPKH, 5)
		require.Len(t, selection.Utxos, 2)
		assert.Equal(t, uint64(50000), selection.Utxos[0].Value)
		assert.Equal(t, uint64(30000), selection.Utxos[1].Value)
		assert.Equal(t, expectedFee, selection.Fee)
		assert.Equal(t, uint64(80000-60000)-expectedFee.Fee, selection.Change)
		assert.Equal(t, uint64(18955), selection.Change)
	})

	t.Run("largest first", func(t *testing.T) {
		selection, err := SelectUtxos(SelectUtxosOpts{
			Utxos:        newTestUtxos(1000, 200000, 5000),
			TargetAmount: 10000,
			FeeRate:      10,
			ScriptType:   P2PKH,
		})
		require.NoError(t, err)
		require.Len(t, selection.Utxos, 1)
		assert.Equal(t, uint64(200000), selection.Utxos[0].Value)
		assert.Equal(t, uint64(2260), selection.Fee.Fee)
		assert.Equal(t, uint64(200000-10000-2260), selection.Change)
	})

	t.Run("fee grows with inputs", func(t *testing.T) {
		// 3 inputs of 1000 can't pay 2500 plus the fee of a 3 inputs tx
		_, err := SelectUtxos(SelectUtxosOpts{
			Utxos:        newTestUtxos(1000, 1000, 1000),
			TargetAmount: 2500,
			FeeRate:      1,
			ScriptType:   P2PKH,
		})
		require.Error(t, err)

		var insufficient *InsufficientFundsError
		require.True(t, errors.As(err, &insufficient))
		assert.ErrorIs(t, err, ErrInsufficientFunds)
		fee := EstimateFee(3, 2, P2PKH, 1).Fee
		assert.Equal(t, uint64(3000), insufficient.Available)
		assert.Equal(t, 2500+fee, insufficient.Needed)
		assert.Equal(t, fee, insufficient.Fee)
	})

	t.Run("empty set", func(t *testing.T) {
		_, err := SelectUtxos(SelectUtxosOpts{
			TargetAmount: 1000,
			FeeRate:      2,
			ScriptType:   P2WPKH,
		})
		var insufficient *InsufficientFundsError
		require.True(t, errors.As(err, &insufficient))
		assert.Zero(t, insufficient.Available)
		assert.Equal(t, 1000+EstimateFee(1, 2, P2WPKH, 2).Fee, insufficient.Needed)
	})

	t.Run("deterministic", func(t *testing.T) {
		opts := SelectUtxosOpts{
			Utxos:        newTestUtxos(4000, 4000, 9000, 4000),
			TargetAmount: 15000,
			FeeRate:      3,
			ScriptType:   P2WPKH,
		}
		first, err := SelectUtxos(opts)
		require.NoError(t, err)
		for i := 0; i < 5; i++ {
			again, err := SelectUtxos(opts)
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
		// input list is not reordered
		assert.Equal(t, uint64(4000), opts.Utxos[0].Value)
	})

	t.Run("invalid args", func(t *testing.T) {
		_, err := SelectUtxos(SelectUtxosOpts{FeeRate: 1})
		assert.ErrorIs(t, err, ErrZeroOutputAmount)
		_, err = SelectUtxos(SelectUtxosOpts{TargetAmount: 1})
		assert.ErrorIs(t, err, ErrInvalidFeeRate)
	})
}

func TestSelectUtxosCoversTarget(t *testing.T) {
	sets := [][]uint64{
		{100000},
		{20000, 20000, 20000, 20000},
		{546, 1000, 75000, 3000, 12000},
	}
	targets := []uint64{1000, 30000, 59000, 70000, 100000}

	for _, values := range sets {
		utxos := newTestUtxos(values...)
		total := sumUtxos(utxos)
		for _, target := range targets {
			for _, scriptType := range []int{P2PKH, P2WPKH} {
				selection, err := SelectUtxos(SelectUtxosOpts{
					Utxos:        utxos,
					TargetAmount: target,
					FeeRate:      2,
					ScriptType:   scriptType,
				})
				if total >= target+EstimateFee(len(utxos), 2, scriptType, 2).Fee {
					require.NoError(t, err)
				}
				if err != nil {
					assert.ErrorIs(t, err, ErrInsufficientFunds)
					continue
				}
				assert.GreaterOrEqual(t, selection.Total(), target+selection.Fee.Fee)
				assert.Equal(t, selection.Total(), target+selection.Fee.Fee+selection.Change)
			}
		}
	}
}
