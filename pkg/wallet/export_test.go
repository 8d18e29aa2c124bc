package wallet

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletExport(t *testing.T) {
	material := newTestMaterial(t, Both)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	export, err := NewWalletExport(material, now)
	require.NoError(t, err)
	assert.Equal(t, ExportVersion, export.Version)
	assert.Equal(t, "2024-03-01T12:00:00Z", export.CreatedAt)
	assert.Equal(t, 4, export.Metadata.TotalAddresses)
	assert.Equal(t, []string{"segwit", "legacy"}, export.Metadata.AddressTypes)

	data, err := export.Marshal()
	require.NoError(t, err)

	raw := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{
		"version", "created_at", "network", "private_key", "public_key",
		"mnemonic", "addresses", "metadata",
	} {
		assert.Contains(t, raw, key)
	}

	parsed, err := ParseWalletExport(data)
	require.NoError(t, err)
	assert.Equal(t, export, parsed)
}

func TestFailingParseWalletExport(t *testing.T) {
	tests := []struct {
		name string
		data string
		err  error
	}{
		{"not json", "{", ErrInvalidExport},
		{"no key", `{"network":"testnet"}`, ErrInvalidExport},
		{"unknown network", `{"network":"liquid","private_key":"x"}`, ErrInvalidExport},
		{"bad key", `{"network":"testnet","private_key":"x"}`, ErrInvalidKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseWalletExport([]byte(tt.data))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestPaymentRequestURI(t *testing.T) {
	amount := decimal.RequireFromString("0.0015")

	tests := []struct {
		opts     PaymentRequestOpts
		expected string
	}{
		{
			PaymentRequestOpts{Address: recipientAddress, Network: TestNet},
			"bitcoin-testnet:" + recipientAddress,
		},
		{
			PaymentRequestOpts{
				Address: "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4",
				Amount:  &amount,
				Message: "coffee & cake",
				Network: MainNet,
			},
			"bitcoin:bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4" +
				"?amount=0.00150000&message=coffee+%26+cake",
		},
	}
	for _, tt := range tests {
		uri, err := PaymentRequestURI(tt.opts)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, uri)
		assert.False(t, strings.Contains(uri, " "))
	}

	_, err := PaymentRequestURI(PaymentRequestOpts{
		Address: "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4",
		Network: TestNet,
	})
	assert.ErrorIs(t, err, ErrInvalidAddress)

	zero := decimal.Zero
	_, err = PaymentRequestURI(PaymentRequestOpts{
		Address: recipientAddress, Amount: &zero, Network: TestNet,
	})
	assert.ErrorIs(t, err, ErrZeroOutputAmount)
}
