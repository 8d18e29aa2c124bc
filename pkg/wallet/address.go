package wallet

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
)

// AddressKind is the script kind of an address. Both is only meaningful as a
// request for derivation, every derived address is either Legacy or Segwit.
type AddressKind string

const (
	// Legacy is a base58check P2PKH address
	Legacy AddressKind = "legacy"
	// Segwit is a bech32 witness v0 P2WPKH address
	Segwit AddressKind = "segwit"
	// Both requests addresses of both kinds
	Both AddressKind = "both"
)

// ParseAddressKind converts the given string to an AddressKind.
func ParseAddressKind(kind string) (AddressKind, error) {
	switch k := AddressKind(kind); k {
	case Legacy, Segwit, Both:
		return k, nil
	default:
		return "", ErrInvalidAddressKind
	}
}

// Kinds expands the receiver to the list of concrete kinds it stands for.
// Segwit always comes first.
func (k AddressKind) Kinds() []AddressKind {
	switch k {
	case Legacy:
		return []AddressKind{Legacy}
	case Segwit:
		return []AddressKind{Segwit}
	case Both:
		return []AddressKind{Segwit, Legacy}
	default:
		return nil
	}
}

// Includes returns whether the concrete kind is covered by the receiver.
func (k AddressKind) Includes(kind AddressKind) bool {
	for _, kk := range k.Kinds() {
		if kk == kind {
			return true
		}
	}
	return false
}

// ScriptType maps the address kind to the script type used for size
// estimation.
func (k AddressKind) ScriptType() int {
	if k == Legacy {
		return P2PKH
	}
	return P2WPKH
}

// EncodeAddress returns the address of the given kind for the compressed
// public key.
func EncodeAddress(
	pubkey *btcec.PublicKey, kind AddressKind, params *chaincfg.Params,
) (string, error) {
	hash := btcutil.Hash160(pubkey.SerializeCompressed())

	var (
		addr btcutil.Address
		err  error
	)
	switch kind {
	case Legacy:
		addr, err = btcutil.NewAddressPubKeyHash(hash, params)
	case Segwit:
		addr, err = btcutil.NewAddressWitnessPubKeyHash(hash, params)
	default:
		return "", ErrInvalidAddressKind
	}
	if err != nil {
		return "", err
	}
	return addr.EncodeAddress(), nil
}

// DecodedAddress is the result of DecodeAddress.
type DecodedAddress struct {
	Kind         AddressKind
	Address      btcutil.Address
	ScriptPubKey []byte
}

// DecodeAddress parses the given address for the given network and returns
// its kind and output script. Only P2PKH and P2WPKH addresses are accepted,
// anything else is reported as an *InvalidAddressError.
func DecodeAddress(addr string, params *chaincfg.Params) (*DecodedAddress, error) {
	if addr == "" {
		return nil, &InvalidAddressError{Address: addr, Reason: "empty address"}
	}

	decoded, err := btcutil.DecodeAddress(addr, params)
	if err != nil {
		return nil, &InvalidAddressError{Address: addr, Reason: err.Error()}
	}
	if !decoded.IsForNet(params) {
		return nil, &InvalidAddressError{
			Address: addr, Reason: "address is not for network " + params.Name,
		}
	}

	var kind AddressKind
	switch decoded.(type) {
	case *btcutil.AddressPubKeyHash:
		kind = Legacy
	case *btcutil.AddressWitnessPubKeyHash:
		kind = Segwit
	default:
		return nil, &InvalidAddressError{
			Address: addr, Reason: "unsupported address type",
		}
	}

	script, err := txscript.PayToAddrScript(decoded)
	if err != nil {
		return nil, &InvalidAddressError{Address: addr, Reason: err.Error()}
	}

	return &DecodedAddress{
		Kind:         kind,
		Address:      decoded,
		ScriptPubKey: script,
	}, nil
}

// AddressKindOf guesses the kind of an address by its encoding, without
// validating it. Bech32 addresses start with the network HRP followed by 1.
func AddressKindOf(addr string) AddressKind {
	for _, hrp := range []string{"bc1", "tb1", "bcrt1"} {
		if len(addr) > len(hrp) && addr[:len(hrp)] == hrp {
			return Segwit
		}
	}
	return Legacy
}
