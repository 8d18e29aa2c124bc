package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/spf13/viper"
	"github.com/tdex-network/bitcoin-wallet/pkg/explorer"
	"github.com/tdex-network/bitcoin-wallet/pkg/wallet"
)

const (
	// NetworkKey is the bitcoin network, one of mainnet, testnet, signet or regtest
	NetworkKey = "NETWORK"
	// DatadirKey is the local data directory where the session state and the used addresses db are stored
	DatadirKey = "DATA_DIR_PATH"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// ExplorerEndpointKey is the endpoint of the esplora REST API. Defaults to blockstream.info for the configured network
	ExplorerEndpointKey = "EXPLORER_ENDPOINT"
	// FeeEndpointKey is the mempool.space endpoint for recommended fee rates
	FeeEndpointKey = "FEE_ENDPOINT"
	// ExplorerRequestTimeoutKey are the milliseconds to wait for HTTP responses before timeouts
	ExplorerRequestTimeoutKey = "EXPLORER_REQUEST_TIMEOUT"
	// ExplorerRateLimitKey is the max number of requests per second made to the explorer
	ExplorerRateLimitKey = "EXPLORER_RATE_LIMIT"
	// FeePriorityKey is the default fee priority, one of high, medium or low
	FeePriorityKey = "FEE_PRIORITY"
	// PrivacyEnabledKey enables change address rotation and amount/fee randomization
	PrivacyEnabledKey = "PRIVACY_ENABLED"
	// DustThresholdKey is the min value in satoshis of a change output
	DustThresholdKey = "DUST_THRESHOLD"
	// MaxFeeRateKey is the max fee rate in sat/vB the wallet accepts to pay
	MaxFeeRateKey = "MAX_FEE_RATE"
	// AddressTypeKey is the default address type, one of legacy, segwit or both
	AddressTypeKey = "ADDRESS_TYPE"
	// AddressCountKey is the number of addresses derived per type for new wallets
	AddressCountKey = "ADDRESS_COUNT"
	// SessionTimeoutKey is the inactivity time after which the loaded wallet is discarded
	SessionTimeoutKey = "SESSION_TIMEOUT"
	// UsedAddressDBKey persists the set of used addresses in a badger db in the datadir, in-memory otherwise
	UsedAddressDBKey = "USED_ADDRESS_DB"

	// DbLocation is the subfolder of the datadir for the used addresses db
	DbLocation = "db"
	// StateFilename is the name of the session state file in the datadir
	StateFilename = "wallet_state.json"
)

var (
	vip            *viper.Viper
	defaultDatadir = btcutil.AppDataDir("bitcoin-wallet", false)
)

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("BTCWALLET")
	vip.AutomaticEnv()

	vip.SetDefault(NetworkKey, wallet.TestNet)
	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(ExplorerRequestTimeoutKey, 30000)
	vip.SetDefault(ExplorerRateLimitKey, 10)
	vip.SetDefault(FeePriorityKey, explorer.MediumPriority)
	vip.SetDefault(PrivacyEnabledKey, false)
	vip.SetDefault(DustThresholdKey, wallet.DefaultDustThreshold)
	vip.SetDefault(MaxFeeRateKey, 100)
	vip.SetDefault(AddressTypeKey, string(wallet.Segwit))
	vip.SetDefault(AddressCountKey, wallet.DefaultAddressCount)
	vip.SetDefault(SessionTimeoutKey, 30*time.Minute)
	vip.SetDefault(UsedAddressDBKey, true)

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

// Set overrides the value of the given key, used to apply command line flags.
func Set(key string, value interface{}) {
	vip.Set(key, value)
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetUint64(key string) uint64 {
	return vip.GetUint64(key)
}

func GetDuration(key string) time.Duration {
	return vip.GetDuration(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

func GetNetwork() string {
	return GetString(NetworkKey)
}

// GetNetworkConfig returns the preset of the configured network with the
// endpoints eventually overridden by the env.
func GetNetworkConfig() NetworkConfig {
	cfg, _ := GetNetworkPreset(GetNetwork())
	if endpoint := GetString(ExplorerEndpointKey); endpoint != "" {
		cfg.APIURL = endpoint
	}
	if endpoint := GetString(FeeEndpointKey); endpoint != "" {
		cfg.FeeURL = endpoint
	}
	return cfg
}

func GetAddressKind() wallet.AddressKind {
	return wallet.AddressKind(GetString(AddressTypeKey))
}

func GetExplorerRequestTimeout() time.Duration {
	return time.Duration(GetInt(ExplorerRequestTimeoutKey)) * time.Millisecond
}

func GetStatePath() string {
	return filepath.Join(GetDatadir(), StateFilename)
}

func GetDbDir() string {
	if !GetBool(UsedAddressDBKey) {
		return ""
	}
	return filepath.Join(GetDatadir(), DbLocation)
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	network := GetString(NetworkKey)
	if _, err := GetNetworkPreset(network); err != nil {
		return err
	}
	if network == wallet.RegTest && GetString(ExplorerEndpointKey) == "" {
		return fmt.Errorf("%s is required for network %s", ExplorerEndpointKey, network)
	}

	if _, err := wallet.ParseAddressKind(GetString(AddressTypeKey)); err != nil {
		return err
	}
	if _, err := (explorer.FeeRates{}).ForPriority(GetString(FeePriorityKey)); err != nil {
		return err
	}

	if GetInt(ExplorerRequestTimeoutKey) <= 0 {
		return fmt.Errorf("%s must be greater than zero", ExplorerRequestTimeoutKey)
	}
	if GetInt(ExplorerRateLimitKey) <= 0 {
		return fmt.Errorf("%s must be greater than zero", ExplorerRateLimitKey)
	}
	if GetInt(MaxFeeRateKey) <= 0 {
		return fmt.Errorf("%s must be greater than zero", MaxFeeRateKey)
	}
	if GetInt(DustThresholdKey) < 0 {
		return fmt.Errorf("%s must not be negative", DustThresholdKey)
	}
	if GetInt(AddressCountKey) <= 0 {
		return fmt.Errorf("%s must be greater than zero", AddressCountKey)
	}
	if GetDuration(SessionTimeoutKey) <= 0 {
		return fmt.Errorf("%s must be greater than zero", SessionTimeoutKey)
	}
	return nil
}

func initDatadir() error {
	datadir := GetDatadir()
	if err := makeDirectoryIfNotExists(datadir); err != nil {
		return err
	}
	if dbDir := GetDbDir(); dbDir != "" {
		return makeDirectoryIfNotExists(dbDir)
	}
	return nil
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0700)
	}
	return nil
}
