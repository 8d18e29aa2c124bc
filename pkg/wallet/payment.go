package wallet

import (
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"
)

const (
	mainnetURIScheme = "bitcoin"
	testnetURIScheme = "bitcoin-testnet"
)

// PaymentRequestOpts is the struct given to PaymentRequestURI method
type PaymentRequestOpts struct {
	Address string
	// Amount in BTC, optional
	Amount  *decimal.Decimal
	Message string
	Network string
}

func (o PaymentRequestOpts) validate() error {
	if o.Network == "" {
		return ErrNullNetwork
	}
	params, err := NetworkParams(o.Network)
	if err != nil {
		return err
	}
	if _, err := DecodeAddress(o.Address, params); err != nil {
		return err
	}
	if o.Amount != nil && !o.Amount.IsPositive() {
		return ErrZeroOutputAmount
	}
	return nil
}

// PaymentRequestURI returns a BIP21 payment request for the given address.
// Test networks use the bitcoin-testnet scheme.
func PaymentRequestURI(opts PaymentRequestOpts) (string, error) {
	if err := opts.validate(); err != nil {
		return "", err
	}

	scheme := testnetURIScheme
	if opts.Network == MainNet {
		scheme = mainnetURIScheme
	}

	params := url.Values{}
	if opts.Amount != nil {
		params.Set("amount", opts.Amount.StringFixed(8))
	}
	if opts.Message != "" {
		params.Set("message", opts.Message)
	}

	uri := fmt.Sprintf("%s:%s", scheme, opts.Address)
	if len(params) > 0 {
		uri = fmt.Sprintf("%s?%s", uri, params.Encode())
	}
	return uri, nil
}
