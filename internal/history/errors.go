package history

import "errors"

var (
	ErrUnknownShape     = errors.New("unknown row shape")
	ErrUnknownClearMode = errors.New("unknown clear mode")
	ErrOperatorRequired = errors.New("operator ID is required")
	ErrReservedColumn   = errors.New("machine name collides with a history column")
)
