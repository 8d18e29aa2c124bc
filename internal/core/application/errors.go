package application

import "errors"

var (
	// ErrNullExplorer ...
	ErrNullExplorer = errors.New("explorer service must not be null")
	// ErrNullStateStore ...
	ErrNullStateStore = errors.New("wallet state store must not be null")
	// ErrNullPrivacyManager ...
	ErrNullPrivacyManager = errors.New("privacy manager must not be null")
	// ErrFeeRateTooHigh is returned when the requested fee rate exceeds the
	// configured maximum
	ErrFeeRateTooHigh = errors.New("fee rate exceeds the maximum allowed")
	// ErrZeroAmount ...
	ErrZeroAmount = errors.New("amount must be greater than zero")
	// ErrNoSpendableAddress is returned when none of the wallet addresses is
	// controlled by the active private key
	ErrNoSpendableAddress = errors.New(
		"no wallet address is controlled by the active private key",
	)
	// ErrInvalidHistoryLimit ...
	ErrInvalidHistoryLimit = errors.New("history limit must be positive")
	// ErrNetworkMismatch ...
	ErrNetworkMismatch = errors.New("network mismatch")
	// ErrUnknownDBType ...
	ErrUnknownDBType = errors.New("unknown db type")
)
