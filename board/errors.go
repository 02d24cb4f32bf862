package board

import "errors"

var (
	ErrOutOfBounds   = errors.New("coordinate out of bounds")
	ErrInvalidConfig = errors.New("invalid board config")
)
