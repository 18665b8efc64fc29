package ledger

import "errors"

var (
	ErrInvalidAmount     = errors.New("ledger: invalid amount")
	ErrAccountNotFound   = errors.New("ledger: account not found")
	ErrAccountInactive   = errors.New("ledger: account inactive")
	ErrInsufficientFunds = errors.New("ledger: insufficient funds")
	ErrLimitExceeded     = errors.New("ledger: exposure limit exceeded")
)
