package application

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tdex-network/bitcoin-wallet/internal/core/domain"
	"github.com/tdex-network/bitcoin-wallet/pkg/explorer"
	"github.com/tdex-network/bitcoin-wallet/pkg/wallet"
)

// GenerateWalletRequest is the request to create, or restore from mnemonic,
// an HD wallet and make it the active one.
type GenerateWalletRequest struct {
	Mnemonic    []string
	AddressKind wallet.AddressKind
	Count       int
	// Password encrypts the session state. If empty, the state is kept
	// unencrypted and only lives in memory
	Password string
}

// ImportWalletRequest is the request to make a WIF private key the active
// wallet.
type ImportWalletRequest struct {
	PrivateKey  string
	AddressKind wallet.AddressKind
	Password    string
}

// WalletInfo describes the active wallet, without any key material.
type WalletInfo struct {
	Network     string
	AddressType wallet.AddressKind
	Encrypted   bool
	PublicKey   string
	Addresses   []domain.AddressSummary
	LastAccess  time.Time
}

// WalletBalance is the balance of every address of the requested kind, plus
// their sum.
type WalletBalance struct {
	Addresses   []explorer.Balance
	Confirmed   int64
	Unconfirmed int64
	TxCount     int
}

// Total returns the sum of confirmed and unconfirmed balance.
func (b WalletBalance) Total() int64 {
	return b.Confirmed + b.Unconfirmed
}

// ReceiveRequest is the request for a payment request URI.
type ReceiveRequest struct {
	// NewAddress picks the next unused address instead of the first one
	NewAddress bool
	// Amount in BTC, optional
	Amount  *decimal.Decimal
	Message string
}

// PaymentRequest is the address to receive to and its BIP21 URI.
type PaymentRequest struct {
	Address string
	URI     string
}

// SendRequest is the request to pay Amount satoshis to ToAddress.
type SendRequest struct {
	ToAddress string
	Amount    uint64
	// FeeRate in sat/vB, if zero the recommended rate for FeePriority is used
	FeeRate     uint64
	FeePriority string
	// AddressKind selects the address to spend from when the active key
	// controls both a segwit and a legacy address
	AddressKind wallet.AddressKind
	Password    string
}

// SendResult describes a broadcasted transaction.
type SendResult struct {
	TxID          string
	TxHex         string
	FromAddress   string
	ToAddress     string
	Amount        uint64
	Fee           uint64
	FeeRate       uint64
	Change        uint64
	ChangeAddress string
	NumInputs     int
}
