package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/tdex-network/bitcoin-wallet/pkg/wallet"
)

// DefaultSessionTimeout is the inactivity time after which a loaded wallet
// is discarded.
const DefaultSessionTimeout = 30 * time.Minute

// AddressSummary is the public part of a wallet address, private keys of
// derived addresses are never part of the state.
type AddressSummary struct {
	Index   int    `json:"index"`
	Address string `json:"address"`
}

// WalletState is the active wallet of a session. PrivateKey is either the
// base64 encrypted WIF key or, if Encrypted is false, the WIF key itself.
type WalletState struct {
	PrivateKey  string           `json:"private_key"`
	PublicKey   string           `json:"public_key,omitempty"`
	Network     string           `json:"network"`
	Encrypted   bool             `json:"encrypted"`
	AddressType string           `json:"address_type"`
	Addresses   []AddressSummary `json:"addresses"`
	Timestamp   int64            `json:"timestamp"`
}

// NewWalletStateArgs is the struct given to NewWalletState method
type NewWalletStateArgs struct {
	PrivateKey  string
	PublicKey   string
	Network     string
	AddressType wallet.AddressKind
	Addresses   []AddressSummary
	Password    string
	Encrypt     bool
	Now         time.Time
}

func (a NewWalletStateArgs) validate() error {
	if a.PrivateKey == "" {
		return ErrNullPrivateKey
	}
	params, err := wallet.NetworkParams(a.Network)
	if err != nil {
		return err
	}
	if _, err := wallet.ParseWIF(a.PrivateKey, params); err != nil {
		return err
	}
	if _, err := wallet.ParseAddressKind(string(a.AddressType)); err != nil {
		return err
	}
	if a.Encrypt && a.Password == "" {
		return ErrNullPassword
	}
	return nil
}

// NewWalletState returns a new state for the given key, encrypted with the
// password unless Encrypt is false.
func NewWalletState(args NewWalletStateArgs) (*WalletState, error) {
	if err := args.validate(); err != nil {
		return nil, err
	}

	privateKey := args.PrivateKey
	if args.Encrypt {
		encrypted, err := wallet.Encrypt(wallet.EncryptOpts{
			PlainText:  args.PrivateKey,
			Passphrase: args.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrStorage, err)
		}
		privateKey = encrypted
	}

	now := args.Now
	if now.IsZero() {
		now = time.Now()
	}

	addresses := make([]AddressSummary, len(args.Addresses))
	copy(addresses, args.Addresses)

	return &WalletState{
		PrivateKey:  privateKey,
		PublicKey:   args.PublicKey,
		Network:     args.Network,
		Encrypted:   args.Encrypt,
		AddressType: string(args.AddressType),
		Addresses:   addresses,
		Timestamp:   now.Unix(),
	}, nil
}

// AddressSummaries returns the summaries of the given addresses.
func AddressSummaries(addresses []wallet.Address) []AddressSummary {
	list := make([]AddressSummary, 0, len(addresses))
	for _, a := range addresses {
		list = append(list, AddressSummary{Index: a.Index, Address: a.Address})
	}
	return list
}

// IsExpired returns whether the last access is older than timeout.
func (s *WalletState) IsExpired(now time.Time, timeout time.Duration) bool {
	return now.Sub(time.Unix(s.Timestamp, 0)) > timeout
}

// Touch refreshes the last access timestamp.
func (s *WalletState) Touch(now time.Time) {
	s.Timestamp = now.Unix()
}

// RevealPrivateKey returns the WIF private key, decrypting it with the
// password if the state is encrypted.
func (s *WalletState) RevealPrivateKey(password string) (string, error) {
	if !s.Encrypted {
		return s.PrivateKey, nil
	}
	if password == "" {
		return "", ErrNullPassword
	}

	privateKey, err := wallet.Decrypt(wallet.DecryptOpts{
		CypherText: s.PrivateKey,
		Passphrase: password,
	})
	if err != nil {
		if errors.Is(err, wallet.ErrInvalidPassphrase) {
			return "", ErrInvalidPassword
		}
		return "", fmt.Errorf("%w: %s", ErrStorage, err)
	}
	return privateKey, nil
}

// Kind returns the address type of the state as AddressKind.
func (s *WalletState) Kind() wallet.AddressKind {
	kind, err := wallet.ParseAddressKind(s.AddressType)
	if err != nil {
		return wallet.Segwit
	}
	return kind
}

// AddressList returns the encoded addresses of the state.
func (s *WalletState) AddressList() []string {
	list := make([]string, 0, len(s.Addresses))
	for _, a := range s.Addresses {
		list = append(list, a.Address)
	}
	return list
}

// AddressesOfKind returns the addresses of the state of the given concrete
// kind, in order.
func (s *WalletState) AddressesOfKind(kind wallet.AddressKind) []string {
	list := make([]string, 0, len(s.Addresses))
	for _, a := range s.Addresses {
		if wallet.AddressKindOf(a.Address) == kind {
			list = append(list, a.Address)
		}
	}
	return list
}

// Validate checks a state read from storage is well formed.
func (s *WalletState) Validate() error {
	if s.PrivateKey == "" {
		return ErrNullPrivateKey
	}
	if !wallet.IsValidNetwork(s.Network) {
		return fmt.Errorf("%w: %s", wallet.ErrUnknownNetwork, s.Network)
	}
	return nil
}
