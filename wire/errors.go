package wire

import (
	"errors"
	"fmt"
)

// ErrMalformed matches every decode failure.
var ErrMalformed = errors.New("malformed frame")

// DecodeError describes a rejected frame. Frames are never partially decoded.
type DecodeError struct {
	Tag    byte
	Len    int
	Reason string
}

func (e *DecodeError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("decode frame(tag=%d len=%d): %s", e.Tag, e.Len, e.Reason)
}

func (e *DecodeError) Unwrap() error { return ErrMalformed }

func malformed(frame []byte, reason string) error {
	err := &DecodeError{Len: len(frame), Reason: reason}
	if len(frame) > 0 {
		err.Tag = frame[0]
	}
	return err
}
