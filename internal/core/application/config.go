package application

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/bitcoin-wallet/internal/core/application/privacy"
	"github.com/tdex-network/bitcoin-wallet/internal/core/ports"
	dbbadger "github.com/tdex-network/bitcoin-wallet/internal/infrastructure/storage/db/badger"
	"github.com/tdex-network/bitcoin-wallet/internal/infrastructure/storage/db/inmemory"
	filestore "github.com/tdex-network/bitcoin-wallet/internal/infrastructure/storage/file"
	"github.com/tdex-network/bitcoin-wallet/pkg/explorer"
)

const (
	DBBadger   = "badger"
	DBInMemory = "inmemory"
)

var (
	SupportedDBType = map[string]struct{}{
		DBBadger:   {},
		DBInMemory: {},
	}
)

// Config holds everything needed to build the services of the wallet. They
// are created lazily and shared.
type Config struct {
	// DBType is the type of the used address repository
	DBType string
	// DBConfig is the base db directory for DBBadger
	DBConfig interface{}

	Network        string
	Datadir        string
	SessionTimeout time.Duration
	Explorer       ports.Explorer

	PrivacyEnabled   bool
	FallbackFeeRates explorer.FeeRates
	FeePriority      string
	MaxFeeRate       uint64
	DustThreshold    uint64
	AddressCount     int

	repo    ports.UsedAddressRepository
	store   ports.WalletStateStore
	privacy *privacy.Manager
	wallet  WalletService
}

func (c *Config) Validate() error {
	if _, ok := SupportedDBType[c.DBType]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDBType, c.DBType)
	}
	if _, err := c.walletService(); err != nil {
		return err
	}
	return nil
}

func (c *Config) UsedAddressRepository() ports.UsedAddressRepository {
	repo, _ := c.usedAddressRepository()
	return repo
}

func (c *Config) StateStore() ports.WalletStateStore {
	store, _ := c.stateStore()
	return store
}

func (c *Config) PrivacyManager() *privacy.Manager {
	m, _ := c.privacyManager()
	return m
}

func (c *Config) WalletService() WalletService {
	svc, _ := c.walletService()
	return svc
}

// Close releases the resources held by the services.
func (c *Config) Close() {
	if c.repo != nil {
		c.repo.Close()
		c.repo = nil
	}
}

func (c *Config) usedAddressRepository() (ports.UsedAddressRepository, error) {
	if c.repo == nil {
		switch c.DBType {
		case DBBadger:
			dbDir, _ := c.DBConfig.(string)
			repo, err := dbbadger.NewUsedAddressRepository(dbDir, nil)
			if err != nil {
				return nil, err
			}
			c.repo = repo
		case DBInMemory:
			c.repo = inmemory.NewUsedAddressRepository()
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownDBType, c.DBType)
		}
		log.Debugf("used address repository: %s", c.DBType)
	}
	return c.repo, nil
}

func (c *Config) stateStore() (ports.WalletStateStore, error) {
	if c.store == nil {
		store, err := filestore.NewStateStore(filestore.StoreOpts{
			Datadir: c.Datadir,
			Timeout: c.SessionTimeout,
		})
		if err != nil {
			return nil, err
		}
		c.store = store
	}
	return c.store, nil
}

func (c *Config) privacyManager() (*privacy.Manager, error) {
	if c.privacy == nil {
		repo, err := c.usedAddressRepository()
		if err != nil {
			return nil, err
		}
		m, err := privacy.NewManager(context.Background(), repo)
		if err != nil {
			return nil, err
		}
		c.privacy = m
	}
	return c.privacy, nil
}

func (c *Config) walletService() (WalletService, error) {
	if c.wallet == nil {
		store, err := c.stateStore()
		if err != nil {
			return nil, err
		}
		privacyManager, err := c.privacyManager()
		if err != nil {
			return nil, err
		}
		svc, err := NewWalletService(WalletServiceOpts{
			Network:          c.Network,
			Explorer:         c.Explorer,
			StateStore:       store,
			Privacy:          privacyManager,
			PrivacyEnabled:   c.PrivacyEnabled,
			FallbackFeeRates: c.FallbackFeeRates,
			FeePriority:      c.FeePriority,
			MaxFeeRate:       c.MaxFeeRate,
			DustThreshold:    c.DustThreshold,
			AddressCount:     c.AddressCount,
		})
		if err != nil {
			return nil, err
		}
		c.wallet = svc
	}
	return c.wallet, nil
}
