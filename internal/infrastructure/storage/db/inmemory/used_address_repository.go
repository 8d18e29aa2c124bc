package inmemory

import (
	"context"
	"sync"

	"github.com/tdex-network/bitcoin-wallet/internal/core/ports"
)

type usedAddressRepository struct {
	lock      *sync.RWMutex
	used      map[string]struct{}
	addresses []string
}

// NewUsedAddressRepository returns a used address repository that lives in
// the memory of the process.
func NewUsedAddressRepository() ports.UsedAddressRepository {
	return &usedAddressRepository{
		lock: &sync.RWMutex{},
		used: make(map[string]struct{}),
	}
}

func (r *usedAddressRepository) AddUsedAddresses(
	_ context.Context, addresses ...string,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	for _, addr := range addresses {
		if _, ok := r.used[addr]; ok {
			continue
		}
		r.used[addr] = struct{}{}
		r.addresses = append(r.addresses, addr)
	}
	return nil
}

func (r *usedAddressRepository) IsUsedAddress(
	_ context.Context, address string,
) (bool, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	_, ok := r.used[address]
	return ok, nil
}

func (r *usedAddressRepository) GetUsedAddresses(
	_ context.Context,
) ([]string, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return append([]string{}, r.addresses...), nil
}

func (r *usedAddressRepository) Close() {}
