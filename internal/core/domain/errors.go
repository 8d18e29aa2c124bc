package domain

import "errors"

var (
	// ErrNoActiveWallet is returned when no wallet is loaded, or the session
	// expired, or the persisted state could not be read
	ErrNoActiveWallet = errors.New("no active wallet, load or import one first")
	// ErrNoUnusedAddress is returned when address rotation exhausted the pool
	ErrNoUnusedAddress = errors.New("no unused address available")
	// ErrStorage wraps encryption, decryption and file I/O failures
	ErrStorage = errors.New("wallet storage error")
	// ErrNullPrivateKey ...
	ErrNullPrivateKey = errors.New("private key must not be null")
	// ErrNullPassword is returned when trying to encrypt without a password
	ErrNullPassword = errors.New("password is required to encrypt the wallet")
	// ErrInvalidPassword ...
	ErrInvalidPassword = errors.New("password is not valid")
)
