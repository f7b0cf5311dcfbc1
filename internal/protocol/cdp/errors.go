package cdp

import (
	"errors"
	"fmt"

	"github.com/danmuck/cdpctl/internal/protocol/cea708"
)

var (
	ErrWrongMagic             = errors.New("cdp: wrong magic")
	ErrUnknownFramerate       = errors.New("cdp: unknown framerate")
	ErrInvalidFixedBits       = errors.New("cdp: invalid fixed bits")
	ErrCea608AfterCea708      = errors.New("cdp: cea-608 data after cea-708 data")
	ErrChecksumFailed         = errors.New("cdp: checksum failed")
	ErrSequenceCountMismatch  = errors.New("cdp: sequence count mismatch")
	ErrServiceNumberMismatch  = errors.New("cdp: service number mismatch")
	ErrInvalidServiceNumber   = errors.New("cdp: invalid service number")
	ErrServiceFlagsMismatched = errors.New("cdp: service flags mismatched")
	ErrWouldOverflow          = errors.New("cdp: would overflow")
	ErrPacketTooLong          = errors.New("cdp: packet too long")
	ErrTimeCodeOutOfRange     = errors.New("cdp: time code out of range")
)

// LengthMismatchError reports a buffer that disagrees with a declared or minimum size.
type LengthMismatchError struct {
	Expected int
	Actual   int
}

func (e LengthMismatchError) Error() string {
	return fmt.Sprintf("cdp: length mismatch: expected %d bytes, got %d", e.Expected, e.Actual)
}

// fromCCDataError maps cc_data codec errors onto this package's errors.
func fromCCDataError(err error) error {
	var lenErr cea708.LengthMismatchError
	if errors.As(err, &lenErr) {
		return LengthMismatchError{Expected: lenErr.Expected, Actual: lenErr.Actual}
	}
	var orderErr cea708.Cea608AfterCea708Error
	if errors.As(err, &orderErr) {
		return fmt.Errorf("%w: cc_data byte %d", ErrCea608AfterCea708, orderErr.BytePos)
	}
	return fmt.Errorf("cdp: cc_data: %w", err)
}

// Kind names the error class of err for metrics and API responses.
func Kind(err error) string {
	var lenErr LengthMismatchError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &lenErr):
		return "length_mismatch"
	case errors.Is(err, ErrWrongMagic):
		return "wrong_magic"
	case errors.Is(err, ErrUnknownFramerate):
		return "unknown_framerate"
	case errors.Is(err, ErrInvalidFixedBits):
		return "invalid_fixed_bits"
	case errors.Is(err, ErrCea608AfterCea708):
		return "cea608_after_cea708"
	case errors.Is(err, ErrChecksumFailed):
		return "checksum_failed"
	case errors.Is(err, ErrSequenceCountMismatch):
		return "sequence_count_mismatch"
	case errors.Is(err, ErrServiceNumberMismatch):
		return "service_number_mismatch"
	case errors.Is(err, ErrInvalidServiceNumber):
		return "invalid_service_number"
	case errors.Is(err, ErrServiceFlagsMismatched):
		return "service_flags_mismatched"
	case errors.Is(err, ErrWouldOverflow):
		return "would_overflow"
	case errors.Is(err, ErrPacketTooLong):
		return "packet_too_long"
	case errors.Is(err, ErrTimeCodeOutOfRange):
		return "time_code_out_of_range"
	default:
		return "other"
	}
}
