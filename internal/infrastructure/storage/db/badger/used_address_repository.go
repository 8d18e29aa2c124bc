package dbbadger

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/bitcoin-wallet/internal/core/ports"
	"github.com/timshannon/badgerhold/v4"
)

const usedAddressDir = "used-addresses"

type usedAddress struct {
	Address   string
	CreatedAt int64
}

type usedAddressRepository struct {
	store *badgerhold.Store
	quit  chan struct{}
}

// NewUsedAddressRepository opens (or creates if not exists) the used address
// db in a dedicated directory of baseDbDir. An empty baseDbDir makes the db
// in-memory.
func NewUsedAddressRepository(
	baseDbDir string, logger badger.Logger,
) (ports.UsedAddressRepository, error) {
	var dbDir string
	if len(baseDbDir) > 0 {
		dbDir = filepath.Join(baseDbDir, usedAddressDir)
	}

	quit := make(chan struct{})
	store, err := createDb(dbDir, logger, quit)
	if err != nil {
		return nil, fmt.Errorf("opening used address db: %w", err)
	}
	return &usedAddressRepository{store, quit}, nil
}

func (r *usedAddressRepository) AddUsedAddresses(
	_ context.Context, addresses ...string,
) error {
	now := time.Now().Unix()
	return r.store.Badger().Update(func(tx *badger.Txn) error {
		for _, addr := range addresses {
			err := r.store.TxInsert(tx, addr, &usedAddress{addr, now})
			if err != nil && err != badgerhold.ErrKeyExists {
				return err
			}
		}
		return nil
	})
}

func (r *usedAddressRepository) IsUsedAddress(
	_ context.Context, address string,
) (bool, error) {
	var addr usedAddress
	if err := r.store.Get(address, &addr); err != nil {
		if err == badgerhold.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *usedAddressRepository) GetUsedAddresses(
	_ context.Context,
) ([]string, error) {
	var list []usedAddress
	query := (&badgerhold.Query{}).SortBy("CreatedAt", "Address")
	if err := r.store.Find(&list, query); err != nil {
		return nil, err
	}

	addresses := make([]string, 0, len(list))
	for _, addr := range list {
		addresses = append(addresses, addr.Address)
	}
	return addresses, nil
}

func (r *usedAddressRepository) Close() {
	close(r.quit)
	r.store.Close()
}

func createDb(
	dbDir string, logger badger.Logger, quit chan struct{},
) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	db, err := badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, err
	}

	if !isInMemory {
		ticker := time.NewTicker(30 * time.Minute)

		go func() {
			defer ticker.Stop()
			for {
				select {
				case <-quit:
					return
				case <-ticker.C:
					if err := db.Badger().RunValueLogGC(0.5); err != nil &&
						err != badger.ErrNoRewrite {
						log.Error(err)
					}
				}
			}
		}()
	}

	return db, nil
}
