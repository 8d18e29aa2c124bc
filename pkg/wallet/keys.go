package wallet

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
)

// KeyPair is a secp256k1 key pair.
type KeyPair struct {
	PrivateKey *btcec.PrivateKey
	PublicKey  *btcec.PublicKey
}

// ExtendedKeyOpts is the struct given to ExtendedPublicKey method
type ExtendedKeyOpts struct {
	Kind    AddressKind
	Account uint32
}

func (o ExtendedKeyOpts) validate() error {
	if o.Kind != Legacy && o.Kind != Segwit {
		return ErrInvalidAddressKind
	}
	if o.Account > MaxHardenedValue {
		return ErrInvalidDerivationPath
	}
	return nil
}

// ExtendedPublicKey returns the account extended public key in base58 format
// for the purpose of the provided address kind
func (w *Wallet) ExtendedPublicKey(opts ExtendedKeyOpts) (string, error) {
	if err := opts.validate(); err != nil {
		return "", err
	}
	if err := w.validate(); err != nil {
		return "", err
	}

	path, _ := NewAddressDerivationPath(opts.Kind, w.network, 0)
	path = path[:3]
	path[2] += opts.Account

	hdNode, err := w.deriveNode(path)
	if err != nil {
		return "", err
	}
	xpub, err := hdNode.Neuter()
	if err != nil {
		return "", err
	}
	return xpub.String(), nil
}

// DeriveSigningKeyPairOpts is the struct given to DeriveSigningKeyPair method
type DeriveSigningKeyPairOpts struct {
	DerivationPath string
}

func (o DeriveSigningKeyPairOpts) validate() error {
	derivationPath, err := ParseDerivationPath(o.DerivationPath)
	if err != nil {
		return err
	}

	return checkDerivationPath(derivationPath)
}

// DeriveSigningKeyPair derives the key pair of the provided derivation path.
// A failing child derivation is returned as hdkeychain.ErrInvalidChild so that
// callers can skip the index.
func (w *Wallet) DeriveSigningKeyPair(opts DeriveSigningKeyPairOpts) (
	*KeyPair, error,
) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if err := w.validate(); err != nil {
		return nil, err
	}

	derivationPath, _ := ParseDerivationPath(opts.DerivationPath)
	hdNode, err := w.deriveNode(derivationPath)
	if err != nil {
		return nil, err
	}

	privateKey, err := hdNode.ECPrivKey()
	if err != nil {
		return nil, err
	}
	publicKey, err := hdNode.ECPubKey()
	if err != nil {
		return nil, err
	}

	return &KeyPair{privateKey, publicKey}, nil
}

func (w *Wallet) deriveNode(path DerivationPath) (*hdkeychain.ExtendedKey, error) {
	hdNode, err := hdkeychain.NewKeyFromString(
		base58.Encode(w.signingMasterKey),
	)
	if err != nil {
		return nil, err
	}

	for _, step := range path {
		hdNode, err = hdNode.Derive(step)
		if err != nil {
			return nil, err
		}
	}
	return hdNode, nil
}

// ParseWIF decodes the given WIF private key and checks it belongs to the
// network. Errors are always of type *InvalidKeyError.
func ParseWIF(wif string, params *chaincfg.Params) (*KeyPair, error) {
	if wif == "" {
		return nil, &InvalidKeyError{Reason: ErrNullPrivateKey.Error()}
	}
	decoded, err := btcutil.DecodeWIF(wif)
	if err != nil {
		return nil, &InvalidKeyError{Reason: err.Error()}
	}
	if !decoded.IsForNet(params) {
		return nil, &InvalidKeyError{
			Reason: "key is not for network " + params.Name,
		}
	}
	return &KeyPair{decoded.PrivKey, decoded.PrivKey.PubKey()}, nil
}

// EncodeWIF returns the compressed WIF encoding of the private key.
func EncodeWIF(key *btcec.PrivateKey, params *chaincfg.Params) (string, error) {
	wif, err := btcutil.NewWIF(key, params, true)
	if err != nil {
		return "", err
	}
	return wif.String(), nil
}

// PublicKeyHex returns the hex encoding of the compressed public key.
func PublicKeyHex(key *btcec.PublicKey) string {
	return hex.EncodeToString(key.SerializeCompressed())
}

func checkDerivationPath(path DerivationPath) error {
	if len(path) != 5 {
		return ErrInvalidDerivationPathLength
	}
	for _, step := range path[:3] {
		if step < hdkeychain.HardenedKeyStart {
			return ErrInvalidDerivationPathPurpose
		}
	}
	return nil
}
