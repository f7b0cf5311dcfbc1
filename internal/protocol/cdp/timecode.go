package cdp

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	timeCodeID  uint8 = 0x71
	timeCodeLen       = 5
)

// TimeCode is an SMPTE time code carried BCD-packed in the time code section.
// Frames is not bounded by the framerate here.
type TimeCode struct {
	Hours     uint8
	Minutes   uint8
	Seconds   uint8
	Frames    uint8
	Field     bool
	DropFrame bool
}

func NewTimeCode(hours, minutes, seconds, frames uint8, field, dropFrame bool) TimeCode {
	return TimeCode{
		Hours:     hours,
		Minutes:   minutes,
		Seconds:   seconds,
		Frames:    frames,
		Field:     field,
		DropFrame: dropFrame,
	}
}

func bcd(b, tensMask uint8) uint8 {
	return ((b&tensMask)>>4)*10 + b&0x0f
}

func toBCD(v, tensMask uint8) uint8 {
	return ((v/10)<<4)&tensMask | (v%10)&0x0f
}

func decodeTimeCode(b []byte) (TimeCode, error) {
	if len(b) < timeCodeLen {
		return TimeCode{}, LengthMismatchError{Expected: timeCodeLen, Actual: len(b)}
	}
	if b[0] != timeCodeID {
		return TimeCode{}, fmt.Errorf("%w: time code id %#02x", ErrWrongMagic, b[0])
	}
	if b[1]&0xc0 != 0xc0 {
		return TimeCode{}, fmt.Errorf("%w: time code hours %#02x", ErrInvalidFixedBits, b[1])
	}
	if b[2]&0x80 != 0x80 {
		return TimeCode{}, fmt.Errorf("%w: time code minutes %#02x", ErrInvalidFixedBits, b[2])
	}
	if b[4]&0x40 != 0 {
		return TimeCode{}, fmt.Errorf("%w: time code frames %#02x", ErrInvalidFixedBits, b[4])
	}
	return TimeCode{
		Hours:     bcd(b[1], 0x30),
		Minutes:   bcd(b[2], 0x70),
		Seconds:   bcd(b[3], 0x70),
		Frames:    bcd(b[4], 0x30),
		Field:     b[3]&0x80 != 0,
		DropFrame: b[4]&0x80 != 0,
	}, nil
}

func (tc TimeCode) appendTo(dst []byte) []byte {
	seconds := toBCD(tc.Seconds, 0x70)
	if tc.Field {
		seconds |= 0x80
	}
	frames := toBCD(tc.Frames, 0x30)
	if tc.DropFrame {
		frames |= 0x80
	}
	return append(dst,
		timeCodeID,
		0xc0|toBCD(tc.Hours, 0x30),
		0x80|toBCD(tc.Minutes, 0x70),
		seconds,
		frames,
	)
}

// String formats hh:mm:ss:ff, using ';' before the frames when drop frame is set.
func (tc TimeCode) String() string {
	sep := ":"
	if tc.DropFrame {
		sep = ";"
	}
	return fmt.Sprintf("%02d:%02d:%02d%s%02d", tc.Hours, tc.Minutes, tc.Seconds, sep, tc.Frames)
}

// Validate checks hours 0-23, minutes and seconds 0-59 and frames 0-39.
// Frames is bounded by its BCD field, not by the framerate.
func (tc TimeCode) Validate() error {
	switch {
	case tc.Hours > 23:
		return fmt.Errorf("%w: hours %d", ErrTimeCodeOutOfRange, tc.Hours)
	case tc.Minutes > 59:
		return fmt.Errorf("%w: minutes %d", ErrTimeCodeOutOfRange, tc.Minutes)
	case tc.Seconds > 59:
		return fmt.Errorf("%w: seconds %d", ErrTimeCodeOutOfRange, tc.Seconds)
	case tc.Frames > 39:
		return fmt.Errorf("%w: frames %d", ErrTimeCodeOutOfRange, tc.Frames)
	}
	return nil
}

// ParseTimeCode reads the String form. Field is left unset.
func ParseTimeCode(s string) (TimeCode, error) {
	dropFrame := strings.Contains(s, ";")
	parts := strings.Split(strings.ReplaceAll(s, ";", ":"), ":")
	if len(parts) != 4 {
		return TimeCode{}, fmt.Errorf("cdp: time code %q: want hh:mm:ss:ff", s)
	}
	var vals [4]uint8
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 10, 8)
		if err != nil {
			return TimeCode{}, fmt.Errorf("cdp: time code %q: %w", s, err)
		}
		vals[i] = uint8(v)
	}
	tc := NewTimeCode(vals[0], vals[1], vals[2], vals[3], false, dropFrame)
	if err := tc.Validate(); err != nil {
		return TimeCode{}, fmt.Errorf("cdp: time code %q: %w", s, err)
	}
	return tc, nil
}
