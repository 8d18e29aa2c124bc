package wallet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
)

const (
	// DefaultAddressCount is the number of addresses derived per kind
	DefaultAddressCount = 10
	// ImportedKeyMnemonic replaces the mnemonic of wallets built from an
	// imported private key
	ImportedKeyMnemonic = "N/A (provided private key)"

	// maxSkippedIndexes bounds the indexes skipped for a single batch
	maxSkippedIndexes = 1000
)

// Address is a derived (or imported) key pair with its encoded address.
type Address struct {
	Index      int         `json:"index"`
	Kind       AddressKind `json:"kind"`
	Path       string      `json:"path,omitempty"`
	PrivateKey string      `json:"private_key"`
	PublicKey  string      `json:"public_key"`
	Address    string      `json:"address"`
}

// WalletMaterial is the result of GenerateWallet.
type WalletMaterial struct {
	PrivateKey  string
	PublicKey   string
	Mnemonic    string
	Network     string
	AddressKind AddressKind
	Addresses   []Address
}

// Imported returns whether the material comes from an imported key.
func (m *WalletMaterial) Imported() bool {
	return m.Mnemonic == ImportedKeyMnemonic
}

// AddressesOfKind returns the addresses of the given concrete kind.
func (m *WalletMaterial) AddressesOfKind(kind AddressKind) []Address {
	list := make([]Address, 0, len(m.Addresses))
	for _, a := range m.Addresses {
		if a.Kind == kind {
			list = append(list, a)
		}
	}
	return list
}

// GenerateWalletOpts is the struct given to GenerateWallet method
type GenerateWalletOpts struct {
	// PrivateKey is an optional WIF key to import
	PrivateKey string
	// Mnemonic optionally restores a wallet instead of creating a new one
	Mnemonic    []string
	Network     string
	AddressKind AddressKind
	// Count defaults to DefaultAddressCount, ignored for imported keys
	Count int
}

func (o GenerateWalletOpts) validate() error {
	if o.Network == "" {
		return ErrNullNetwork
	}
	if !IsValidNetwork(o.Network) {
		return fmt.Errorf("%w: %s", ErrUnknownNetwork, o.Network)
	}
	if _, err := ParseAddressKind(string(o.AddressKind)); err != nil {
		return err
	}
	if o.Count < 0 {
		return ErrInvalidAddressCount
	}
	if len(o.Mnemonic) > 0 && !isMnemonicValid(o.Mnemonic) {
		return ErrInvalidSigningMnemonic
	}
	return nil
}

// GenerateWallet either derives a fresh HD wallet (or restores it from
// Mnemonic) or imports PrivateKey. HD wallets get Count addresses for every
// requested kind along m/84'/coin'/0'/0/i and m/44'/coin'/0'/0/i, imported
// keys get exactly one address per kind. The base key pair is the one of the
// first address.
func GenerateWallet(opts GenerateWalletOpts) (*WalletMaterial, error) {
	if opts.AddressKind == "" {
		opts.AddressKind = Segwit
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.PrivateKey != "" {
		return importWallet(opts)
	}

	count := opts.Count
	if count == 0 {
		count = DefaultAddressCount
	}

	var (
		w   *Wallet
		err error
	)
	if len(opts.Mnemonic) > 0 {
		w, err = NewWalletFromMnemonic(NewWalletFromMnemonicOpts{
			SigningMnemonic: opts.Mnemonic,
			Network:         opts.Network,
		})
	} else {
		w, err = NewWallet(NewWalletOpts{Network: opts.Network})
	}
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	addresses := make([]Address, 0, count*len(opts.AddressKind.Kinds()))
	for _, kind := range opts.AddressKind.Kinds() {
		list, err := w.deriveAddresses(kind, count, seen)
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, list...)
	}
	if len(addresses) <= 0 {
		return nil, fmt.Errorf("no address could be derived")
	}

	return &WalletMaterial{
		PrivateKey:  addresses[0].PrivateKey,
		PublicKey:   addresses[0].PublicKey,
		Mnemonic:    joinWords(w.signingMnemonic),
		Network:     opts.Network,
		AddressKind: opts.AddressKind,
		Addresses:   addresses,
	}, nil
}

// DeriveAddresses derives count addresses of the given kind. Indexes failing
// derivation and duplicated addresses are skipped, so the result always has
// count distinct entries.
func (w *Wallet) DeriveAddresses(kind AddressKind, count int) ([]Address, error) {
	if err := w.validate(); err != nil {
		return nil, err
	}
	if kind != Legacy && kind != Segwit {
		return nil, ErrInvalidAddressKind
	}
	return w.deriveAddresses(kind, count, make(map[string]struct{}))
}

func (w *Wallet) deriveAddresses(
	kind AddressKind, count int, seen map[string]struct{},
) ([]Address, error) {
	params, _ := NetworkParams(w.network)
	addresses := make([]Address, 0, count)

	skipped := 0
	for i := uint32(0); len(addresses) < count; i++ {
		if skipped > maxSkippedIndexes {
			return nil, fmt.Errorf(
				"too many indexes skipped while deriving %s addresses", kind,
			)
		}

		path, err := NewAddressDerivationPath(kind, w.network, i)
		if err != nil {
			return nil, err
		}
		keyPair, err := w.DeriveSigningKeyPair(DeriveSigningKeyPairOpts{
			DerivationPath: path.String(),
		})
		if err != nil {
			if errors.Is(err, hdkeychain.ErrInvalidChild) {
				skipped++
				continue
			}
			return nil, err
		}

		addr, err := newAddress(int(i), kind, path.String(), keyPair, params)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[addr.Address]; ok {
			skipped++
			continue
		}
		seen[addr.Address] = struct{}{}
		addresses = append(addresses, *addr)
	}
	return addresses, nil
}

func importWallet(opts GenerateWalletOpts) (*WalletMaterial, error) {
	params, _ := NetworkParams(opts.Network)
	keyPair, err := ParseWIF(opts.PrivateKey, params)
	if err != nil {
		return nil, err
	}

	addresses := make([]Address, 0, 2)
	for _, kind := range opts.AddressKind.Kinds() {
		addr, err := newAddress(0, kind, "", keyPair, params)
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, *addr)
	}

	return &WalletMaterial{
		PrivateKey:  addresses[0].PrivateKey,
		PublicKey:   addresses[0].PublicKey,
		Mnemonic:    ImportedKeyMnemonic,
		Network:     opts.Network,
		AddressKind: opts.AddressKind,
		Addresses:   addresses,
	}, nil
}

func newAddress(
	index int, kind AddressKind, path string, keyPair *KeyPair,
	params *chaincfg.Params,
) (*Address, error) {
	addr, err := EncodeAddress(keyPair.PublicKey, kind, params)
	if err != nil {
		return nil, err
	}
	wif, err := EncodeWIF(keyPair.PrivateKey, params)
	if err != nil {
		return nil, err
	}
	return &Address{
		Index:      index,
		Kind:       kind,
		Path:       path,
		PrivateKey: wif,
		PublicKey:  PublicKeyHex(keyPair.PublicKey),
		Address:    addr,
	}, nil
}

func joinWords(words []string) string {
	return strings.Join(words, " ")
}
