package wallet

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtendedPublicKey(t *testing.T) {
	wallet, err := NewWalletFromMnemonic(NewWalletFromMnemonicOpts{
		SigningMnemonic: strings.Split(testMnemonic, " "),
		Network:         MainNet,
	})
	require.NoError(t, err)

	xpub, err := wallet.ExtendedPublicKey(ExtendedKeyOpts{Kind: Segwit})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(xpub, "xpub"))

	otherXpub, err := wallet.ExtendedPublicKey(ExtendedKeyOpts{Kind: Legacy})
	require.NoError(t, err)
	assert.NotEqual(t, xpub, otherXpub)

	_, err = wallet.ExtendedPublicKey(ExtendedKeyOpts{Kind: Both})
	assert.ErrorIs(t, err, ErrInvalidAddressKind)
}

func TestDeriveSigningKeyPair(t *testing.T) {
	wallet, err := newTestWallet()
	require.NoError(t, err)

	opts := DeriveSigningKeyPairOpts{
		DerivationPath: "m/84'/1'/0'/0/0",
	}
	keyPair, err := wallet.DeriveSigningKeyPair(opts)
	require.NoError(t, err)
	require.NotNil(t, keyPair.PrivateKey)
	require.NotNil(t, keyPair.PublicKey)
	assert.True(t, keyPair.PrivateKey.PubKey().IsEqual(keyPair.PublicKey))

	again, err := wallet.DeriveSigningKeyPair(opts)
	require.NoError(t, err)
	assert.Equal(t,
		keyPair.PrivateKey.Serialize(), again.PrivateKey.Serialize(),
	)

	other, err := wallet.DeriveSigningKeyPair(DeriveSigningKeyPairOpts{
		DerivationPath: "m/84'/1'/0'/0/1",
	})
	require.NoError(t, err)
	assert.False(t, keyPair.PublicKey.IsEqual(other.PublicKey))
}

func TestFailingDeriveSigningKeyPair(t *testing.T) {
	wallet, err := newTestWallet()
	require.NoError(t, err)

	tests := []struct {
		path string
		err  error
	}{
		{"", ErrNullDerivationPath},
		{"m/84'/1'/0'/0", ErrInvalidDerivationPathLength},
		{"m/84/1'/0'/0/0", ErrInvalidDerivationPathPurpose},
		{"m/84'/1'/0/0/0", ErrInvalidDerivationPathPurpose},
	}
	for _, tt := range tests {
		_, err := wallet.DeriveSigningKeyPair(DeriveSigningKeyPairOpts{
			DerivationPath: tt.path,
		})
		assert.Equal(t, tt.err, err, tt.path)
	}
}

func TestParseWIF(t *testing.T) {
	privkeyBytes, _ := hex.DecodeString(
		"0c28fca386c7a227600b2fe50b7cae11ec86d3bf1fbe471be89827e19d72aa1d",
	)
	privkey, pubkey := btcec.PrivKeyFromBytes(privkeyBytes)

	for _, params := range []*chaincfg.Params{
		&chaincfg.MainNetParams, &chaincfg.TestNet3Params,
	} {
		wif, err := EncodeWIF(privkey, params)
		require.NoError(t, err)

		keyPair, err := ParseWIF(wif, params)
		require.NoError(t, err)
		assert.Equal(t, privkeyBytes, keyPair.PrivateKey.Serialize())
		assert.True(t, pubkey.IsEqual(keyPair.PublicKey))
		assert.Equal(t,
			hex.EncodeToString(pubkey.SerializeCompressed()),
			PublicKeyHex(keyPair.PublicKey),
		)
	}
}

func TestFailingParseWIF(t *testing.T) {
	privkey, _ := btcec.NewPrivateKey()
	mainnetWIF, err := EncodeWIF(privkey, &chaincfg.MainNetParams)
	require.NoError(t, err)

	tests := []struct {
		name   string
		wif    string
		params *chaincfg.Params
	}{
		{"empty", "", &chaincfg.MainNetParams},
		{"not base58", "0OIl", &chaincfg.MainNetParams},
		{"truncated", mainnetWIF[:len(mainnetWIF)-2], &chaincfg.MainNetParams},
		{"wrong network", mainnetWIF, &chaincfg.TestNet3Params},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseWIF(tt.wif, tt.params)
			var keyErr *InvalidKeyError
			require.ErrorAs(t, err, &keyErr)
			assert.NotEmpty(t, keyErr.Reason)
			assert.ErrorIs(t, err, ErrInvalidKey)
		})
	}
}
