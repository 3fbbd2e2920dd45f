package ltc

import (
	"errors"
	"fmt"
)

var (
	ErrFrameOutOfRange  = errors.New("frame out of range")
	ErrTimecodeRange    = errors.New("timecode field out of range")
	ErrTimecodeSyntax   = errors.New("malformed timecode")
	ErrInvalidFPS       = errors.New("fps must be positive")
	ErrSampleRateTooLow = errors.New("sample rate too low")
	ErrDuration         = errors.New("duration out of range")
	ErrSyncWord         = errors.New("sync word not found")
	ErrBCD              = errors.New("invalid bcd digit")
	ErrSignal           = errors.New("not a biphase-mark signal")
)

// UserBitsFieldRangeError is returned when a user bits nibble is
// outside of 0-15 or addresses a field other than 1-8
type UserBitsFieldRangeError struct {
	Field int
	Value int
}

func (e *UserBitsFieldRangeError) Error() string {
	if e.Field < 1 || e.Field > userBitsFields {
		return fmt.Sprintf("user bits: no such field %d", e.Field)
	}
	return fmt.Sprintf("user bits: field%d value %d not in 0-15", e.Field, e.Value)
}
