package treasury

import "errors"

// Every failure aborts the whole operation; callers can rely on errors.Is
// against these sentinels to tell permission problems from balance
// problems from external-venue problems.
var (
	ErrUnauthorized                = errors.New("only admin allowed")
	ErrInvalidShare                = errors.New("share out of range")
	ErrProtocolRegistered          = errors.New("protocol already registered")
	ErrRecipientRegistered         = errors.New("recipient already registered")
	ErrUnknownProtocol             = errors.New("unknown protocol")
	ErrUnsupportedAsset            = errors.New("unsupported asset")
	ErrInvalidAmount               = errors.New("amount must be positive")
	ErrInsufficientAllocation      = errors.New("not in your balance")
	ErrInsufficientTreasuryBalance = errors.New("treasury: insufficient balance")
	ErrTransferFailed              = errors.New("asset transfer failed")
	ErrSwapFailed                  = errors.New("swap failed")
	ErrNotCompounding              = errors.New("protocol not flagged for compounding")
	ErrOperationInProgress         = errors.New("operation already in progress")
)
