package loan

import "errors"

var (
	ErrNotFound          = errors.New("loan not found")
	ErrInvalidTransition = errors.New("invalid loan state transition")
	ErrInvalidAmount     = errors.New("payment amount must be positive")
	ErrForbidden         = errors.New("produce does not belong to farmer")
	ErrPledgeConflict    = errors.New("produce already pledged to another loan")
)
