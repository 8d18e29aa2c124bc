package config

import (
	"fmt"

	"github.com/tdex-network/bitcoin-wallet/pkg/explorer"
	"github.com/tdex-network/bitcoin-wallet/pkg/wallet"
)

// NetworkConfig groups the endpoints and defaults of a network.
type NetworkConfig struct {
	Network     string
	APIURL      string
	ExplorerURL string
	FeeURL      string
	// FeeLevels are used when the fee endpoint can't be reached
	FeeLevels     explorer.FeeRates
	AddressPrefix string
}

var networkPresets = map[string]NetworkConfig{
	wallet.MainNet: {
		Network:       wallet.MainNet,
		APIURL:        "https://blockstream.info/api",
		ExplorerURL:   "https://blockstream.info",
		FeeURL:        "https://mempool.space/api/v1/fees/recommended",
		FeeLevels:     explorer.FeeRates{High: 20, Medium: 10, Low: 5},
		AddressPrefix: "bc1",
	},
	wallet.TestNet: {
		Network:       wallet.TestNet,
		APIURL:        "https://blockstream.info/testnet/api",
		ExplorerURL:   "https://blockstream.info/testnet",
		FeeURL:        "https://mempool.space/testnet/api/v1/fees/recommended",
		FeeLevels:     explorer.FeeRates{High: 10, Medium: 5, Low: 1},
		AddressPrefix: "tb1",
	},
	wallet.SigNet: {
		Network:       wallet.SigNet,
		APIURL:        "https://blockstream.info/signet/api",
		ExplorerURL:   "https://blockstream.info/signet",
		FeeURL:        "https://mempool.space/signet/api/v1/fees/recommended",
		FeeLevels:     explorer.FeeRates{High: 10, Medium: 5, Low: 1},
		AddressPrefix: "tb1",
	},
	wallet.RegTest: {
		Network:       wallet.RegTest,
		FeeLevels:     explorer.FeeRates{High: 10, Medium: 5, Low: 1},
		AddressPrefix: "bcrt1",
	},
}

// GetNetworkPreset returns the default configuration of the given network.
func GetNetworkPreset(network string) (NetworkConfig, error) {
	cfg, ok := networkPresets[network]
	if !ok {
		return NetworkConfig{}, fmt.Errorf("%w: %s", wallet.ErrUnknownNetwork, network)
	}
	return cfg, nil
}
