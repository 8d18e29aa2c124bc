package ports

import "context"

// UsedAddressRepository persists the set of addresses already handed out
// for receiving or change.
type UsedAddressRepository interface {
	AddUsedAddresses(ctx context.Context, addresses ...string) error
	IsUsedAddress(ctx context.Context, address string) (bool, error)
	GetUsedAddresses(ctx context.Context) ([]string, error)
	Close()
}
