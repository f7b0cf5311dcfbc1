package cea708

import "fmt"

// Field is the CEA-608 field a byte pair belongs to.
type Field uint8

const (
	Field1 Field = 1
	Field2 Field = 2
)

// Cea608 is one CEA-608 byte pair. Parity bits are carried as-is.
type Cea608 struct {
	Field Field
	Byte0 byte
	Byte1 byte
}

func NewCea608Field1(b0, b1 byte) Cea608 {
	return Cea608{Field: Field1, Byte0: b0, Byte1: b1}
}

func NewCea608Field2(b0, b1 byte) Cea608 {
	return Cea608{Field: Field2, Byte0: b0, Byte1: b1}
}

func (c Cea608) String() string {
	return fmt.Sprintf("field%d(%#02x,%#02x)", c.Field, c.Byte0, c.Byte1)
}

func (f Field) ccType() byte {
	if f == Field2 {
		return ccTypeField2
	}
	return ccTypeField1
}

func (f Field) other() Field {
	if f == Field1 {
		return Field2
	}
	return Field1
}
