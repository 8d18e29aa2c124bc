package wallet

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecrypt(t *testing.T) {
	tests := []struct {
		plaintext  string
		passphrase string
	}{
		{"cVt4o7BGAig1UXywgGSmARhxMdzP5qvQsxKkSsc1XEkw3tDTQFpy", "x"},
		{"super secret message", "supersecurekey"},
		{"L1aW4aubDFB7yfras2S1mN3bqg9nwySY8nkoLmJebSLD5BWv3ENZ", "pässwörd with spaces"},
	}
	for _, tt := range tests {
		cyphertext, err := Encrypt(EncryptOpts{
			PlainText:  tt.plaintext,
			Passphrase: tt.passphrase,
		})
		require.NoError(t, err)

		raw, err := base64.StdEncoding.DecodeString(cyphertext)
		require.NoError(t, err)
		assert.Greater(t, len(raw), SaltSize+len(tt.plaintext))

		revealedtext, err := Decrypt(DecryptOpts{
			CypherText: cyphertext,
			Passphrase: tt.passphrase,
		})
		require.NoError(t, err)
		assert.Equal(t, tt.plaintext, revealedtext)
	}
}

func TestEncryptUsesFreshSalt(t *testing.T) {
	opts := EncryptOpts{PlainText: "super secret message", Passphrase: "x"}
	first, err := Encrypt(opts)
	require.NoError(t, err)
	second, err := Encrypt(opts)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	rawFirst, _ := base64.StdEncoding.DecodeString(first)
	rawSecond, _ := base64.StdEncoding.DecodeString(second)
	assert.NotEqual(t, rawFirst[:SaltSize], rawSecond[:SaltSize])
}

func TestDecryptWrongPassphrase(t *testing.T) {
	cyphertext, err := Encrypt(EncryptOpts{
		PlainText:  "super secret message",
		Passphrase: "right",
	})
	require.NoError(t, err)

	_, err = Decrypt(DecryptOpts{CypherText: cyphertext, Passphrase: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidPassphrase)
}

func TestFailingEncrypt(t *testing.T) {
	tests := []struct {
		opts EncryptOpts
		err  error
	}{
		{
			opts: EncryptOpts{
				PlainText:  "",
				Passphrase: "supersecurekey",
			},
			err: ErrNullPlainText,
		},
		{
			opts: EncryptOpts{
				PlainText:  "super secret message",
				Passphrase: "",
			},
			err: ErrNullPassphrase,
		},
	}
	for _, tt := range tests {
		_, err := Encrypt(tt.opts)
		assert.Equal(t, tt.err, err)
	}
}

func TestFailingDecrypt(t *testing.T) {
	tests := []struct {
		opts DecryptOpts
		err  error
	}{
		{
			opts: DecryptOpts{
				CypherText: "",
				Passphrase: "supersecurekey",
			},
			err: ErrNullCypherText,
		},
		{
			opts: DecryptOpts{
				CypherText: "supersecretmessage",
				Passphrase: "supersecurekey",
			},
			err: ErrInvalidCypherText,
		},
		{
			opts: DecryptOpts{
				CypherText: "c2hvcnQ=",
				Passphrase: "supersecurekey",
			},
			err: ErrInvalidCypherText,
		},
		{
			opts: DecryptOpts{
				CypherText: "fUzjTyxipK6fGrGXTLYFCb6oFHEOtqfdJTvXM5XMBx+YbK1EgFv+1PqkmZ2A3skaIyqQ0jJjA4gzKGw/dxtK0rRKL0ud8bq8BPImQvXAaYk=",
				Passphrase: "",
			},
			err: ErrNullPassphrase,
		},
	}
	for _, tt := range tests {
		_, err := Decrypt(tt.opts)
		assert.Equal(t, tt.err, err)
	}
}
