package wallet

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
)

const (
	// MainNet ...
	MainNet = "mainnet"
	// TestNet ...
	TestNet = "testnet"
	// SigNet ...
	SigNet = "signet"
	// RegTest ...
	RegTest = "regtest"
)

var paramsByNetwork = map[string]*chaincfg.Params{
	MainNet: &chaincfg.MainNetParams,
	TestNet: &chaincfg.TestNet3Params,
	SigNet:  &chaincfg.SigNetParams,
	RegTest: &chaincfg.RegressionNetParams,
}

// NetworkParams returns the chain params for the given network name.
func NetworkParams(network string) (*chaincfg.Params, error) {
	params, ok := paramsByNetwork[network]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNetwork, network)
	}
	return params, nil
}

// IsValidNetwork returns whether the given name is one of the supported networks.
func IsValidNetwork(network string) bool {
	_, ok := paramsByNetwork[network]
	return ok
}

// CoinType returns the BIP44 coin type for the network, 0 for mainnet and 1
// for every test network.
func CoinType(network string) uint32 {
	if network == MainNet {
		return 0
	}
	return 1
}
