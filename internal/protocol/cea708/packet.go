package cea708

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

const maxPacketLen = 128

// DTVCCPacket is one CEA-708 caption channel packet.
type DTVCCPacket struct {
	sequence uint8
	services []Service
}

// NewDTVCCPacket creates an empty packet. Only the low two bits of sequence are kept.
func NewDTVCCPacket(sequence uint8) *DTVCCPacket {
	return &DTVCCPacket{sequence: sequence & 0x3}
}

func (p *DTVCCPacket) SequenceNo() uint8 {
	return p.sequence
}

func (p *DTVCCPacket) Services() []Service {
	return p.services
}

// PushService appends s unless the packet would exceed 128 bytes.
func (p *DTVCCPacket) PushService(s Service) error {
	if s.number == 0 || s.number > maxServiceNumber {
		return fmt.Errorf("%w: %d", ErrInvalidServiceNumber, s.number)
	}
	if p.dataLen()+s.Len() > maxPacketLen {
		return fmt.Errorf("%w: packet data", ErrWouldOverflow)
	}
	p.services = append(p.services, s)
	return nil
}

// Len is the encoded size, padded to an even number of bytes.
func (p *DTVCCPacket) Len() int {
	n := p.dataLen()
	if n%2 != 0 {
		n++
	}
	return n
}

func (p *DTVCCPacket) dataLen() int {
	n := 1
	for _, s := range p.services {
		n += s.Len()
	}
	return n
}

// Encode serializes the packet, header included.
func (p *DTVCCPacket) Encode() ([]byte, error) {
	size := p.Len()
	out := make([]byte, 0, size)
	out = append(out, p.sequence<<6|byte(size/2)&0x3f)
	for _, s := range p.services {
		var err error
		if out, err = s.appendTo(out); err != nil {
			return nil, err
		}
	}
	for len(out) < size {
		out = append(out, 0x00)
	}
	return out, nil
}

// packetSize is the full packet size advertised by a DTVCC packet header byte.
func packetSize(header byte) int {
	code := int(header & 0x3f)
	if code == 0 {
		return maxPacketLen
	}
	return code * 2
}

// ParseDTVCCPacket decodes one packet. Bytes past the advertised size are ignored.
func ParseDTVCCPacket(data []byte) (*DTVCCPacket, error) {
	if len(data) == 0 {
		return nil, LengthMismatchError{Expected: 1, Actual: 0}
	}
	size := packetSize(data[0])
	if len(data) < size {
		return nil, LengthMismatchError{Expected: size, Actual: len(data)}
	}
	p := NewDTVCCPacket(data[0] >> 6)
	for off := 1; off < size; {
		if data[off] == 0x00 {
			// null service block header, remainder is padding
			break
		}
		s, n, err := parseService(data[off:size])
		if err != nil {
			return nil, err
		}
		log.Trace().Uint8("service", s.number).Int("codes", len(s.codes)).Msg("cea708: parsed service block")
		p.services = append(p.services, s)
		off += n
	}
	return p, nil
}
