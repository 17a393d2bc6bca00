package tactics

import "errors"

var (
	ErrUnsupportedOrder = errors.New("unsupported group order")
	ErrParamsMismatch   = errors.New("params do not match order")
	ErrMissingPosition  = errors.New("'pos' is required for this order")
	ErrUnknownLabel     = errors.New("unknown label")
	ErrUnknownCommander = errors.New("commander not found")
)
