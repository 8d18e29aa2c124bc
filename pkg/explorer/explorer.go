package explorer

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNetwork wraps every failure talking to the explorer
	ErrNetwork = errors.New("explorer request failed")
	// ErrUnknownFeePriority ...
	ErrUnknownFeePriority = errors.New(
		"fee priority must be one of high, medium or low",
	)
)

// NetworkError is returned by Service implementations for transport failures
// and non 2xx responses.
type NetworkError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s: status %d: %s", ErrNetwork, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", ErrNetwork, e.Op, e.Err)
}

func (e *NetworkError) Unwrap() []error { return []error{ErrNetwork, e.Err} }

// Utxo is an unspent output of an address.
type Utxo struct {
	TxID          string `json:"txid"`
	Vout          uint32 `json:"vout"`
	Value         uint64 `json:"value"`
	Address       string `json:"address,omitempty"`
	Confirmed     bool   `json:"confirmed"`
	BlockHeight   int64  `json:"block_height,omitempty"`
	Confirmations int64  `json:"confirmations"`
}

// Key returns the outpoint of the utxo in the form txid:vout.
func (u Utxo) Key() string {
	return fmt.Sprintf("%s:%d", u.TxID, u.Vout)
}

// Balance of an address in satoshis. Unconfirmed can be negative when
// mempool txs spend confirmed coins.
type Balance struct {
	Address     string
	Confirmed   int64
	Unconfirmed int64
	TxCount     int
}

// Total returns the sum of confirmed and unconfirmed balance.
func (b Balance) Total() int64 {
	return b.Confirmed + b.Unconfirmed
}

const (
	// HighPriority targets the next block
	HighPriority = "high"
	// MediumPriority targets ~30 minutes
	MediumPriority = "medium"
	// LowPriority targets ~1 hour
	LowPriority = "low"
)

// FeeRates are recommended fee rates in sat/vB.
type FeeRates struct {
	High   uint64 `json:"high"`
	Medium uint64 `json:"medium"`
	Low    uint64 `json:"low"`
}

// ForPriority returns the fee rate for the given priority.
func (f FeeRates) ForPriority(priority string) (uint64, error) {
	switch priority {
	case HighPriority:
		return f.High, nil
	case MediumPriority, "":
		return f.Medium, nil
	case LowPriority:
		return f.Low, nil
	default:
		return 0, ErrUnknownFeePriority
	}
}

const (
	// Received ...
	Received = "received"
	// Sent ...
	Sent = "sent"
)

// TxSummary is a transaction as seen from one address.
type TxSummary struct {
	TxID          string    `json:"txid"`
	Address       string    `json:"address"`
	Direction     string    `json:"type"`
	Amount        int64     `json:"amount_sat"`
	Fee           uint64    `json:"fee_sat"`
	Confirmed     bool      `json:"confirmed"`
	Confirmations int64     `json:"confirmations"`
	BlockHeight   int64     `json:"block_height,omitempty"`
	BlockHash     string    `json:"block_hash,omitempty"`
	BlockTime     time.Time `json:"block_time,omitempty"`
	ExplorerURL   string    `json:"explorer_url,omitempty"`
}

// Status returns confirmed or pending.
func (t TxSummary) Status() string {
	if t.Confirmed {
		return "confirmed"
	}
	return "pending"
}

// Service is representation of an explorer that allows to fetch data from the
// blockchain and to broadcast transactions. Implementations never retry.
type Service interface {
	// GetBalance returns confirmed and unconfirmed balance of the address.
	GetBalance(ctx context.Context, address string) (*Balance, error)
	// GetUtxos returns the unspents of the given address.
	GetUtxos(ctx context.Context, address string) ([]Utxo, error)
	// GetRecommendedFeeRates returns the high/medium/low fee rates in sat/vB.
	GetRecommendedFeeRates(ctx context.Context) (*FeeRates, error)
	// Broadcast attempts to add the given tx in hex format to the mempool and
	// returns its tx hash.
	Broadcast(ctx context.Context, txHex string) (string, error)
	// GetTransactionHistory returns at most limit txs of the address, newest
	// first.
	GetTransactionHistory(
		ctx context.Context, address string, limit int,
	) ([]TxSummary, error)
	// GetBlockHeight returns the current chain tip height.
	GetBlockHeight(ctx context.Context) (int64, error)
}
