package domain_test

import (
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/bitcoin-wallet/internal/core/domain"
	"github.com/tdex-network/bitcoin-wallet/pkg/wallet"
)

func TestNewWalletState(t *testing.T) {
	wif := newTestWIF(t)
	now := time.Unix(1700000000, 0)

	t.Run("encrypted", func(t *testing.T) {
		state, err := domain.NewWalletState(domain.NewWalletStateArgs{
			PrivateKey:  wif,
			Network:     wallet.TestNet,
			AddressType: wallet.Segwit,
			Addresses:   []domain.AddressSummary{{Index: 0, Address: "tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx"}},
			Password:    "x",
			Encrypt:     true,
			Now:         now,
		})
		require.NoError(t, err)
		require.True(t, state.Encrypted)
		require.NotEqual(t, wif, state.PrivateKey)
		require.Equal(t, now.Unix(), state.Timestamp)
		require.Equal(t, wallet.Segwit, state.Kind())
		require.NoError(t, state.Validate())

		revealed, err := state.RevealPrivateKey("x")
		require.NoError(t, err)
		require.Equal(t, wif, revealed)

		_, err = state.RevealPrivateKey("y")
		require.ErrorIs(t, err, domain.ErrInvalidPassword)

		_, err = state.RevealPrivateKey("")
		require.ErrorIs(t, err, domain.ErrNullPassword)
	})

	t.Run("plaintext", func(t *testing.T) {
		state, err := domain.NewWalletState(domain.NewWalletStateArgs{
			PrivateKey:  wif,
			Network:     wallet.TestNet,
			AddressType: wallet.Both,
			Now:         now,
		})
		require.NoError(t, err)
		require.False(t, state.Encrypted)

		revealed, err := state.RevealPrivateKey("")
		require.NoError(t, err)
		require.Equal(t, wif, revealed)
	})
}

func TestFailingNewWalletState(t *testing.T) {
	wif := newTestWIF(t)

	tests := []struct {
		name string
		args domain.NewWalletStateArgs
		err  error
	}{
		{"no key", domain.NewWalletStateArgs{Network: wallet.TestNet}, domain.ErrNullPrivateKey},
		{
			"wrong network key",
			domain.NewWalletStateArgs{PrivateKey: wif, Network: wallet.MainNet, AddressType: wallet.Segwit},
			wallet.ErrInvalidKey,
		},
		{
			"bad address type",
			domain.NewWalletStateArgs{PrivateKey: wif, Network: wallet.TestNet, AddressType: "p2tr"},
			wallet.ErrInvalidAddressKind,
		},
		{
			"no password",
			domain.NewWalletStateArgs{PrivateKey: wif, Network: wallet.TestNet, AddressType: wallet.Segwit, Encrypt: true},
			domain.ErrNullPassword,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewWalletState(tt.args)
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestWalletStateExpiry(t *testing.T) {
	now := time.Unix(1700000000, 0)
	state := &domain.WalletState{Timestamp: now.Unix()}

	require.False(t, state.IsExpired(now.Add(29*time.Minute), domain.DefaultSessionTimeout))
	require.False(t, state.IsExpired(now.Add(30*time.Minute), domain.DefaultSessionTimeout))
	require.True(t, state.IsExpired(now.Add(31*time.Minute), domain.DefaultSessionTimeout))

	state.Touch(now.Add(31 * time.Minute))
	require.False(t, state.IsExpired(now.Add(31*time.Minute), domain.DefaultSessionTimeout))
}

func TestWalletStateAddresses(t *testing.T) {
	state := &domain.WalletState{
		Addresses: domain.AddressSummaries([]wallet.Address{
			{Index: 0, Address: "tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx"},
			{Index: 0, Address: "mrCDrCybB6J1vRfbwM5hemdJz73FwDBC8r"},
		}),
	}
	require.Len(t, state.AddressList(), 2)
	require.Equal(t,
		[]string{"mrCDrCybB6J1vRfbwM5hemdJz73FwDBC8r"},
		state.AddressesOfKind(wallet.Legacy),
	)
}

func newTestWIF(t *testing.T) string {
	t.Helper()
	key, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	params, _ := wallet.NetworkParams(wallet.TestNet)
	wif, err := wallet.EncodeWIF(key, params)
	require.NoError(t, err)
	return wif
}
