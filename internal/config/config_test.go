package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/bitcoin-wallet/pkg/wallet"
)

func TestInitConfig(t *testing.T) {
	datadir := t.TempDir()
	t.Setenv("BTCWALLET_DATA_DIR_PATH", datadir)

	require.NoError(t, InitConfig())
	require.Equal(t, wallet.TestNet, GetNetwork())
	require.Equal(t, wallet.Segwit, GetAddressKind())
	require.Equal(t, 30*time.Second, GetExplorerRequestTimeout())
	require.Equal(t, 30*time.Minute, GetDuration(SessionTimeoutKey))
	require.Equal(t, uint64(546), GetUint64(DustThresholdKey))
	require.Equal(t, filepath.Join(datadir, StateFilename), GetStatePath())

	info, err := os.Stat(GetDbDir())
	require.NoError(t, err)
	require.True(t, info.IsDir())

	cfg := GetNetworkConfig()
	require.Equal(t, "https://blockstream.info/testnet/api", cfg.APIURL)
	require.Equal(t, uint64(5), cfg.FeeLevels.Medium)
}

func TestInitConfigOverrides(t *testing.T) {
	t.Setenv("BTCWALLET_DATA_DIR_PATH", t.TempDir())
	t.Setenv("BTCWALLET_NETWORK", "mainnet")
	t.Setenv("BTCWALLET_EXPLORER_ENDPOINT", "http://localhost:3000")
	t.Setenv("BTCWALLET_USED_ADDRESS_DB", "false")

	require.NoError(t, InitConfig())
	cfg := GetNetworkConfig()
	require.Equal(t, wallet.MainNet, cfg.Network)
	require.Equal(t, "http://localhost:3000", cfg.APIURL)
	require.Equal(t, uint64(20), cfg.FeeLevels.High)
	require.Empty(t, GetDbDir())
}

func TestFailingInitConfig(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"BTCWALLET_NETWORK", "liquid"},
		{"BTCWALLET_NETWORK", "regtest"},
		{"BTCWALLET_ADDRESS_TYPE", "taproot"},
		{"BTCWALLET_FEE_PRIORITY", "urgent"},
		{"BTCWALLET_MAX_FEE_RATE", "0"},
		{"BTCWALLET_ADDRESS_COUNT", "0"},
		{"BTCWALLET_EXPLORER_RATE_LIMIT", "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv("BTCWALLET_DATA_DIR_PATH", t.TempDir())
			t.Setenv(tt.key, tt.value)
			require.Error(t, InitConfig())
		})
	}
}
