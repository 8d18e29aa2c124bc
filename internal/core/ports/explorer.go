package ports

import "github.com/tdex-network/bitcoin-wallet/pkg/explorer"

// Explorer is the block explorer the wallet queries for balances, utxos,
// fee rates and history, and uses to broadcast transactions.
type Explorer interface {
	explorer.Service
}
