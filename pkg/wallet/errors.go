package wallet

import "fmt"

// InvalidKeyError names the reason an imported private key was rejected.
type InvalidKeyError struct {
	Reason string
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidKey, e.Reason)
}

func (e *InvalidKeyError) Unwrap() error { return ErrInvalidKey }

// InvalidAddressError carries the offending address and the decoding failure.
type InvalidAddressError struct {
	Address string
	Reason  string
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("%s %q: %s", ErrInvalidAddress, e.Address, e.Reason)
}

func (e *InvalidAddressError) Unwrap() error { return ErrInvalidAddress }

// InsufficientFundsError reports the total needed (amount plus fee), the fee
// component of it and what is actually available, all in satoshis.
type InsufficientFundsError struct {
	Needed    uint64
	Available uint64
	Fee       uint64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf(
		"%s: need %d sats (including %d sats fee), available %d sats, missing %d sats",
		ErrInsufficientFunds, e.Needed, e.Fee, e.Available, e.Shortfall(),
	)
}

func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }

// Shortfall returns how many satoshis are missing.
func (e *InsufficientFundsError) Shortfall() uint64 {
	if e.Available >= e.Needed {
		return 0
	}
	return e.Needed - e.Available
}

// SigningError wraps the failure that occurred while signing an input.
type SigningError struct {
	InputIndex int
	Err        error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("%s: input %d: %s", ErrSigningFailure, e.InputIndex, e.Err)
}

func (e *SigningError) Unwrap() []error { return []error{ErrSigningFailure, e.Err} }
