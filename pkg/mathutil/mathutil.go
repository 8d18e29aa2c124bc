package mathutil

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var (
	// BigOne is the number of satoshis in one bitcoin
	BigOne = uint64(math.Pow10(8))
	// BigOneDecimal is BigOne as decimal.Decimal
	BigOneDecimal = decimal.NewFromInt(int64(BigOne))

	// ErrInvalidAmount is returned when an amount can't be represented in sats
	ErrInvalidAmount = errors.New("amount must be a positive number with at most 8 decimals")
)

// ToSatoshi converts an amount in BTC to satoshis, truncating anything past
// the 8th decimal.
func ToSatoshi(btc decimal.Decimal) int64 {
	return btc.Mul(BigOneDecimal).IntPart()
}

// ToBitcoin converts an amount in satoshis to BTC.
func ToBitcoin(sats int64) decimal.Decimal {
	return decimal.NewFromInt(sats).Div(BigOneDecimal)
}

// ParseBitcoin parses a BTC amount like "0.0015" into satoshis.
func ParseBitcoin(amount string) (uint64, error) {
	btc, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}
	if !btc.IsPositive() || !btc.Equal(btc.Truncate(8)) {
		return 0, fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}
	return uint64(ToSatoshi(btc)), nil
}

// FormatBitcoin formats an amount in satoshis as BTC with 8 decimals.
func FormatBitcoin(sats int64) string {
	return ToBitcoin(sats).StringFixed(8)
}
