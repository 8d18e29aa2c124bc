package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ExportVersion is the version of the wallet export format.
const ExportVersion = "1.0"

var (
	// ErrNullWalletMaterial ...
	ErrNullWalletMaterial = errors.New("wallet material must not be null")
	// ErrInvalidExport ...
	ErrInvalidExport = errors.New("invalid wallet export")
)

// ExportedAddress is an entry of WalletExport.Addresses.
type ExportedAddress struct {
	Index      int    `json:"index"`
	PrivateKey string `json:"private_key"`
	PublicKey  string `json:"public_key"`
	Address    string `json:"address"`
}

// ExportMetadata summarizes the content of a WalletExport.
type ExportMetadata struct {
	TotalAddresses int      `json:"total_addresses"`
	AddressTypes   []string `json:"address_types"`
}

// WalletExport is the plaintext backup of a wallet. Private keys are in clear
// text, it's up to the owner to store it safely.
type WalletExport struct {
	Version    string            `json:"version"`
	CreatedAt  string            `json:"created_at"`
	Network    string            `json:"network"`
	PrivateKey string            `json:"private_key"`
	PublicKey  string            `json:"public_key"`
	Mnemonic   string            `json:"mnemonic"`
	Addresses  []ExportedAddress `json:"addresses"`
	Metadata   ExportMetadata    `json:"metadata"`
}

// NewWalletExport returns the export of the given wallet material.
func NewWalletExport(material *WalletMaterial, now time.Time) (*WalletExport, error) {
	if material == nil {
		return nil, ErrNullWalletMaterial
	}

	addresses := make([]ExportedAddress, 0, len(material.Addresses))
	for _, a := range material.Addresses {
		addresses = append(addresses, ExportedAddress{
			Index:      a.Index,
			PrivateKey: a.PrivateKey,
			PublicKey:  a.PublicKey,
			Address:    a.Address,
		})
	}
	types := make([]string, 0, 2)
	for _, kind := range material.AddressKind.Kinds() {
		types = append(types, string(kind))
	}

	return &WalletExport{
		Version:    ExportVersion,
		CreatedAt:  now.UTC().Format(time.RFC3339),
		Network:    material.Network,
		PrivateKey: material.PrivateKey,
		PublicKey:  material.PublicKey,
		Mnemonic:   material.Mnemonic,
		Addresses:  addresses,
		Metadata: ExportMetadata{
			TotalAddresses: len(addresses),
			AddressTypes:   types,
		},
	}, nil
}

// ParseWalletExport decodes and validates a JSON wallet export. The base
// private key is checked against the export network.
func ParseWalletExport(data []byte) (*WalletExport, error) {
	export := &WalletExport{}
	if err := json.Unmarshal(data, export); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidExport, err)
	}
	if export.Network == "" {
		export.Network = TestNet
	}
	params, err := NetworkParams(export.Network)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidExport, err)
	}
	if export.PrivateKey == "" {
		return nil, fmt.Errorf("%w: missing private key", ErrInvalidExport)
	}
	if _, err := ParseWIF(export.PrivateKey, params); err != nil {
		return nil, err
	}
	return export, nil
}

// Marshal returns the indented JSON encoding of the export.
func (e *WalletExport) Marshal() ([]byte, error) {
	return json.MarshalIndent(e, "", "  ")
}
