package cea708

import (
	"errors"
	"fmt"
)

var (
	ErrWouldOverflow        = errors.New("cea708: would overflow")
	ErrInvalidServiceNumber = errors.New("cea708: invalid service number")
	ErrTruncatedCode        = errors.New("cea708: truncated code")
	ErrUnsupportedRune      = errors.New("cea708: rune has no single-byte code")
)

// LengthMismatchError reports data that is shorter than a declared size.
type LengthMismatchError struct {
	Expected int
	Actual   int
}

func (e LengthMismatchError) Error() string {
	return fmt.Sprintf("cea708: length mismatch: expected %d bytes, got %d", e.Expected, e.Actual)
}

// Cea608AfterCea708Error reports a CEA-608 triple following CEA-708 data in one cc_data section.
type Cea608AfterCea708Error struct {
	BytePos int
}

func (e Cea608AfterCea708Error) Error() string {
	return fmt.Sprintf("cea708: cea-608 triple after cea-708 data at byte %d", e.BytePos)
}
