package ports

import (
	"context"

	"github.com/tdex-network/bitcoin-wallet/internal/core/domain"
)

// WalletStateStore holds the active wallet of a session.
// Load returns domain.ErrNoActiveWallet if no wallet is loaded or the
// session expired.
type WalletStateStore interface {
	Save(
		ctx context.Context, args domain.NewWalletStateArgs,
	) (*domain.WalletState, error)
	Load(ctx context.Context) (*domain.WalletState, error)
	Unload(ctx context.Context) error
	IsLoaded(ctx context.Context) bool
	Touch(ctx context.Context) error
	UpdateAddresses(ctx context.Context, addresses []domain.AddressSummary) error
}
