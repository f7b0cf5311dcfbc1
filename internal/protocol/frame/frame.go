// Package frame splits a byte stream of back-to-back CDPs into packets
// using the magic and length bytes of each header.
package frame

import (
	"errors"
	"fmt"
	"io"
)

const (
	Magic0 uint8 = 0x96
	Magic1 uint8 = 0x69

	// PrefixLen covers the magic and the length byte.
	PrefixLen = 3
	// MinFrameLen is the smallest CDP: header and footer only.
	MinFrameLen = 11
)

var (
	ErrShortHeader    = errors.New("frame: short cdp prefix")
	ErrShortFrame     = errors.New("frame: short cdp body")
	ErrBadMagic       = errors.New("frame: bad cdp magic")
	ErrLengthTooSmall = errors.New("frame: cdp length smaller than header and footer")
	ErrLengthMismatch = errors.New("frame: cdp length byte does not match packet size")
)

// ReadFrame returns the next packet. io.EOF is returned only at a clean boundary.
func ReadFrame(r io.Reader) ([]byte, error) {
	var prefix [PrefixLen]byte
	n, err := io.ReadFull(r, prefix[:])
	if err != nil {
		if errors.Is(err, io.EOF) && n == 0 {
			return nil, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrShortHeader
		}
		return nil, err
	}
	if prefix[0] != Magic0 || prefix[1] != Magic1 {
		return nil, fmt.Errorf("%w: %#02x %#02x", ErrBadMagic, prefix[0], prefix[1])
	}
	size := int(prefix[2])
	if size < MinFrameLen {
		return nil, fmt.Errorf("%w: %d", ErrLengthTooSmall, size)
	}

	buf := make([]byte, size)
	copy(buf, prefix[:])
	if _, err := io.ReadFull(r, buf[PrefixLen:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrShortFrame
		}
		return nil, err
	}
	return buf, nil
}

// ReadAll reads frames until a clean EOF.
func ReadAll(r io.Reader) ([][]byte, error) {
	var out [][]byte
	for {
		f, err := ReadFrame(r)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("frame %d: %w", len(out), err)
		}
		out = append(out, f)
	}
}

// WriteFrame writes one packet after checking its prefix.
func WriteFrame(w io.Writer, pkt []byte) error {
	if len(pkt) < MinFrameLen {
		return fmt.Errorf("%w: %d", ErrLengthTooSmall, len(pkt))
	}
	if pkt[0] != Magic0 || pkt[1] != Magic1 {
		return ErrBadMagic
	}
	if int(pkt[2]) != len(pkt) {
		return fmt.Errorf("%w: byte says %d, packet has %d", ErrLengthMismatch, pkt[2], len(pkt))
	}
	_, err := w.Write(pkt)
	return err
}
