package wallet

import (
	"errors"
	"fmt"
)

var (
	// ErrNullNetwork ...
	ErrNullNetwork = errors.New("network must not be null")
	// ErrNullSigningMnemonic ...
	ErrNullSigningMnemonic = errors.New("signing mnemonic is null")
	// ErrNullSigningMasterKey ...
	ErrNullSigningMasterKey = errors.New("signing master key is null")
	// ErrNullPassphrase ...
	ErrNullPassphrase = errors.New("passphrase must not be null")
	// ErrNullPlainText ...
	ErrNullPlainText = errors.New("text to encrypt must not be null")
	// ErrNullCypherText ...
	ErrNullCypherText = errors.New("cypher to decrypt must not be null")
	// ErrNullDerivationPath ...
	ErrNullDerivationPath = errors.New("derivation path must not be null")
	// ErrNullPrivateKey ...
	ErrNullPrivateKey = errors.New("private key must not be null")
	// ErrNullFromAddress ...
	ErrNullFromAddress = errors.New("from address must not be null")
	// ErrNullToAddress ...
	ErrNullToAddress = errors.New("recipient address must not be null")

	// ErrUnknownNetwork ...
	ErrUnknownNetwork = errors.New("unknown network")
	// ErrInvalidSigningMnemonic ...
	ErrInvalidSigningMnemonic = errors.New("signing mnemonic is invalid")
	// ErrInvalidEntropySize ...
	ErrInvalidEntropySize = errors.New(
		"entropy size must be a multiple of 32 in the range [128,256]",
	)
	// ErrInvalidCypherText ...
	ErrInvalidCypherText = errors.New("cypher must be in base64 format")
	// ErrInvalidPassphrase ...
	ErrInvalidPassphrase = errors.New("passphrase is not valid")
	// ErrInvalidDerivationPath ...
	ErrInvalidDerivationPath = errors.New("invalid derivation path")
	// ErrInvalidDerivationPathLength ...
	ErrInvalidDerivationPathLength = errors.New(
		"derivation path must be an absolute path in the form " +
			"\"m/purpose'/coin'/account'/branch/index\"",
	)
	// ErrInvalidDerivationPathPurpose ...
	ErrInvalidDerivationPathPurpose = errors.New(
		"derivation path's purpose, coin type and account must be hardened " +
			"(suffix \"'\")",
	)
	// ErrInvalidAddressKind ...
	ErrInvalidAddressKind = errors.New(
		"address kind must be one of legacy, segwit or both",
	)
	// ErrInvalidAddressCount ...
	ErrInvalidAddressCount = errors.New("address count must not be negative")
	// ErrInvalidFeeRate ...
	ErrInvalidFeeRate = errors.New("fee rate must be greater than zero")

	// ErrInvalidKey is returned for malformed or wrong-network private keys.
	ErrInvalidKey = errors.New("invalid private key")
	// ErrInvalidAddress is returned for undecodable or wrong-network addresses.
	ErrInvalidAddress = errors.New("invalid address")
	// ErrInsufficientFunds is returned when the inputs can't cover amount and fee.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrSigningFailure is returned when an input can't be signed.
	ErrSigningFailure = errors.New("signing failure")

	// ErrEmptyInputs ...
	ErrEmptyInputs = errors.New("input list must not be empty")
	// ErrDuplicatedInput ...
	ErrDuplicatedInput = errors.New("input list must not contain duplicates")
	// ErrMalformedDerivationPath ...
	ErrMalformedDerivationPath = errors.New(
		"path must not start or end with a '/' and " +
			"can optionally start with 'm/' for absolute paths",
	)
	// ErrZeroOutputAmount ...
	ErrZeroOutputAmount = errors.New("output amount must not be zero")
	// ErrKeyAddressMismatch ...
	ErrKeyAddressMismatch = fmt.Errorf(
		"%w: key does not control the from address", ErrInvalidKey,
	)
)

// Wallet data structure allows to create a new HD wallet from a mnemonic and
// derive signing key pairs and addresses for the configured network.
type Wallet struct {
	network          string
	signingMnemonic  []string
	signingMasterKey []byte
}

// NewWalletOpts is the struct given to the NewWallet method
type NewWalletOpts struct {
	EntropySize int
	Network     string
}

func (o NewWalletOpts) validate() error {
	if o.EntropySize != 0 {
		if o.EntropySize < 128 || o.EntropySize > 256 || o.EntropySize%32 != 0 {
			return ErrInvalidEntropySize
		}
	}
	if o.Network == "" {
		return ErrNullNetwork
	}
	if !IsValidNetwork(o.Network) {
		return fmt.Errorf("%w: %s", ErrUnknownNetwork, o.Network)
	}
	return nil
}

// NewWallet creates a new wallet from a freshly generated mnemonic. The entropy
// size defaults to 256 bits.
func NewWallet(opts NewWalletOpts) (*Wallet, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.EntropySize == 0 {
		opts.EntropySize = 256
	}

	mnemonic, err := generateMnemonic(opts.EntropySize)
	if err != nil {
		return nil, err
	}

	return NewWalletFromMnemonic(NewWalletFromMnemonicOpts{
		SigningMnemonic: mnemonic,
		Network:         opts.Network,
	})
}

// NewWalletFromMnemonicOpts is the struct given to the NewWalletFromMnemonic method
type NewWalletFromMnemonicOpts struct {
	SigningMnemonic []string
	Network         string
}

func (o NewWalletFromMnemonicOpts) validate() error {
	if len(o.SigningMnemonic) <= 0 {
		return ErrNullSigningMnemonic
	}
	if !isMnemonicValid(o.SigningMnemonic) {
		return ErrInvalidSigningMnemonic
	}
	if o.Network == "" {
		return ErrNullNetwork
	}
	if !IsValidNetwork(o.Network) {
		return fmt.Errorf("%w: %s", ErrUnknownNetwork, o.Network)
	}
	return nil
}

// NewWalletFromMnemonic generates the signing seed and master key from the
// provided mnemonic
func NewWalletFromMnemonic(opts NewWalletFromMnemonicOpts) (*Wallet, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	signingSeed := generateSeedFromMnemonic(opts.SigningMnemonic)
	defer zero(signingSeed)

	params, _ := NetworkParams(opts.Network)
	signingMasterKey, err := generateSigningMasterKey(signingSeed, params)
	if err != nil {
		return nil, err
	}

	return &Wallet{
		network:          opts.Network,
		signingMnemonic:  opts.SigningMnemonic,
		signingMasterKey: signingMasterKey,
	}, nil
}

func (w *Wallet) validate() error {
	if len(w.signingMasterKey) <= 0 {
		return ErrNullSigningMasterKey
	}
	if len(w.signingMnemonic) <= 0 {
		return ErrNullSigningMnemonic
	}
	if !isMnemonicValid(w.signingMnemonic) {
		return ErrInvalidSigningMnemonic
	}
	return nil
}

// SigningMnemonic is getter for signing mnemonic
func (w *Wallet) SigningMnemonic() ([]string, error) {
	if err := w.validate(); err != nil {
		return nil, err
	}
	return w.signingMnemonic, nil
}

// Network returns the name of the network the wallet derives addresses for.
func (w *Wallet) Network() string {
	return w.network
}
