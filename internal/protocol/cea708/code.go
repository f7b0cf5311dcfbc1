package cea708

import (
	"fmt"
	"strings"
)

const (
	codeExt1  byte = 0x10
	codeP16   byte = 0x18
	g0Music   byte = 0x7f
	musicNote      = '♪'
)

// c1ParamLen lists the parameter byte count of each C1 command (0x80-0x9f).
var c1ParamLen = [32]int{
	0, 0, 0, 0, 0, 0, 0, 0, // CW0-CW7
	1, 1, 1, 1, 1, 1, 0, 0, // CLW DSW HDW TGW DLW DLY DLC RST
	2, 3, 2, 0, 0, 0, 0, 4, // SPA SPC SPL reserved SWA
	6, 6, 6, 6, 6, 6, 6, 6, // DF0-DF7
}

// Code is one CEA-708 code as it appears in service block data, including any
// EXT1 prefix and parameter bytes. Codes are comparable.
type Code struct {
	raw string
}

// CodeFromBytes validates that b holds exactly one code.
func CodeFromBytes(b []byte) (Code, error) {
	n, err := codeLen(b)
	if err != nil {
		return Code{}, err
	}
	if n != len(b) {
		return Code{}, fmt.Errorf("cea708: %d trailing bytes after code", len(b)-n)
	}
	return Code{raw: string(b)}, nil
}

// CodeFromRune returns the G0 or G1 code for a printable character.
func CodeFromRune(r rune) (Code, error) {
	switch {
	case r == musicNote:
		return Code{raw: string([]byte{g0Music})}, nil
	case r >= 0x20 && r < 0x7f:
		return Code{raw: string([]byte{byte(r)})}, nil
	case r >= 0xa0 && r <= 0xff:
		return Code{raw: string([]byte{byte(r)})}, nil
	default:
		return Code{}, fmt.Errorf("%w: %q", ErrUnsupportedRune, r)
	}
}

// CodesFromText converts text to G0/G1 codes.
func CodesFromText(text string) ([]Code, error) {
	codes := make([]Code, 0, len(text))
	for _, r := range text {
		c, err := CodeFromRune(r)
		if err != nil {
			return nil, err
		}
		codes = append(codes, c)
	}
	return codes, nil
}

// ParseCodes splits service block data into codes.
func ParseCodes(data []byte) ([]Code, error) {
	codes := make([]Code, 0, len(data))
	for off := 0; off < len(data); {
		n, err := codeLen(data[off:])
		if err != nil {
			return nil, fmt.Errorf("code at offset %d: %w", off, err)
		}
		codes = append(codes, Code{raw: string(data[off : off+n])})
		off += n
	}
	return codes, nil
}

func (c Code) Bytes() []byte {
	return []byte(c.raw)
}

func (c Code) Len() int {
	return len(c.raw)
}

// Rune returns the character for G0 and G1 codes.
func (c Code) Rune() (rune, bool) {
	if len(c.raw) != 1 {
		return 0, false
	}
	b := c.raw[0]
	switch {
	case b == g0Music:
		return musicNote, true
	case b >= 0x20 && b < 0x7f:
		return rune(b), true
	case b >= 0xa0:
		return rune(b), true
	}
	return 0, false
}

func (c Code) String() string {
	if r, ok := c.Rune(); ok {
		return string(r)
	}
	var sb strings.Builder
	sb.WriteByte('[')
	for i := 0; i < len(c.raw); i++ {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02x", c.raw[i])
	}
	sb.WriteByte(']')
	return sb.String()
}

// Text renders the printable codes of codes, dropping commands.
func Text(codes []Code) string {
	var sb strings.Builder
	for _, c := range codes {
		if r, ok := c.Rune(); ok {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func codeLen(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, ErrTruncatedCode
	}
	b := data[0]
	var n int
	switch {
	case b == codeExt1:
		if len(data) < 2 {
			return 0, ErrTruncatedCode
		}
		n = 1 + extCodeLen(data[1])
		if data[1] >= 0x90 && data[1] <= 0x9f {
			// variable length C3 command, length in the low 5 bits
			if len(data) < 3 {
				return 0, ErrTruncatedCode
			}
			n = 3 + int(data[2]&0x1f)
		}
	case b < codeExt1:
		n = 1
	case b < codeP16:
		n = 2
	case b < 0x20:
		n = 3
	case b < 0x80:
		n = 1
	case b < 0xa0:
		n = 1 + c1ParamLen[b-0x80]
	default:
		n = 1
	}
	if len(data) < n {
		return 0, ErrTruncatedCode
	}
	return n, nil
}

// extCodeLen is the length of an EXT1-prefixed code, excluding the prefix.
func extCodeLen(b byte) int {
	switch {
	case b < 0x08:
		return 1
	case b < 0x10:
		return 2
	case b < 0x18:
		return 3
	case b < 0x20:
		return 4
	case b < 0x80:
		return 1
	case b < 0x88:
		return 5
	case b < 0x90:
		return 6
	case b < 0xa0:
		return 2
	default:
		return 1
	}
}
