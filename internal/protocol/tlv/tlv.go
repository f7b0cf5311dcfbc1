package tlv

import (
	"errors"
	"fmt"
)

// HeaderLen is the id byte plus the length byte.
const HeaderLen = 2

// MaxValueLen is the largest value a one-byte length can describe.
const MaxValueLen = 0xff

var (
	ErrShortFieldHeader = errors.New("tlv: short field header")
	ErrShortFieldValue  = errors.New("tlv: short field value")
	ErrValueTooLong     = errors.New("tlv: value too long")
)

// Field is one id/length/value section.
type Field struct {
	ID    uint8
	Value []byte
}

// Len is the encoded size of f.
func (f Field) Len() int {
	return HeaderLen + len(f.Value)
}

func EncodeField(f Field) ([]byte, error) {
	if len(f.Value) > MaxValueLen {
		return nil, fmt.Errorf("%w: field %#02x has %d bytes", ErrValueTooLong, f.ID, len(f.Value))
	}
	buf := make([]byte, HeaderLen+len(f.Value))
	buf[0] = f.ID
	buf[1] = uint8(len(f.Value))
	copy(buf[HeaderLen:], f.Value)
	return buf, nil
}

// EncodeFields concatenates the encoded fields in order.
func EncodeFields(fields []Field) ([]byte, error) {
	size := 0
	for _, f := range fields {
		size += f.Len()
	}
	out := make([]byte, 0, size)
	for _, f := range fields {
		b, err := EncodeField(f)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

// DecodeField reads one field from the start of b and returns the bytes consumed.
func DecodeField(b []byte) (Field, int, error) {
	if len(b) < HeaderLen {
		return Field{}, 0, ErrShortFieldHeader
	}
	l := int(b[1])
	if len(b)-HeaderLen < l {
		return Field{}, 0, ErrShortFieldValue
	}
	val := make([]byte, l)
	copy(val, b[HeaderLen:HeaderLen+l])
	return Field{ID: b[0], Value: val}, HeaderLen + l, nil
}
