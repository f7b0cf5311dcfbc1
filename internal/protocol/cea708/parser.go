package cea708

import (
	"github.com/rs/zerolog/log"
)

// CCDataParser reassembles DTVCC packets from consecutive cc_data sections.
// Packet bytes are carried across Push calls; CEA-608 pairs are per section.
type CCDataParser struct {
	pending      []byte
	packets      []*DTVCCPacket
	cea608       []Cea608
	handleCea608 bool
}

func NewCCDataParser() *CCDataParser {
	return &CCDataParser{}
}

// HandleCea608 enables collecting CEA-608 byte pairs.
func (p *CCDataParser) HandleCea608() {
	p.handleCea608 = true
}

// Push consumes one cc_data section: the header byte, em_data, then cc_count triples.
// Nothing is retained when an error is returned.
func (p *CCDataParser) Push(data []byte) error {
	if len(data) < 2 {
		return LengthMismatchError{Expected: 2, Actual: len(data)}
	}
	count := int(data[0] & maxCCCount)
	if len(data) < 2+count*3 {
		return LengthMismatchError{Expected: 2 + count*3, Actual: len(data)}
	}

	pending := append([]byte(nil), p.pending...)
	var packets []*DTVCCPacket
	var pairs []Cea608
	seen708 := false

	for i := 0; i < count; i++ {
		off := 2 + i*3
		b0, b1, b2 := data[off], data[off+1], data[off+2]
		if b0&ccValid == 0 {
			continue
		}
		switch b0 & ccTypeMask {
		case ccTypeField1, ccTypeField2:
			if seen708 {
				return Cea608AfterCea708Error{BytePos: off}
			}
			if !p.handleCea608 {
				continue
			}
			field := Field1
			if b0&ccTypeMask == ccTypeField2 {
				field = Field2
			}
			pairs = append(pairs, Cea608{Field: field, Byte0: b1, Byte1: b2})
		case ccTypeDTVCCSt:
			seen708 = true
			if len(pending) > 0 {
				log.Debug().Int("bytes", len(pending)).Msg("cea708: dropping incomplete packet")
			}
			pending = append(pending[:0], b1, b2)
		case ccTypeDTVCC:
			seen708 = true
			if len(pending) == 0 {
				log.Trace().Int("offset", off).Msg("cea708: continuation without packet start")
				continue
			}
			pending = append(pending, b1, b2)
		}

		if len(pending) > 0 && len(pending) >= packetSize(pending[0]) {
			pkt, err := ParseDTVCCPacket(pending)
			if err != nil {
				log.Debug().Err(err).Msg("cea708: dropping malformed packet")
			} else {
				packets = append(packets, pkt)
			}
			pending = pending[:0]
		}
	}

	p.pending = pending
	p.packets = append(p.packets, packets...)
	p.cea608 = pairs
	return nil
}

// PopPacket removes and returns the oldest complete packet, or nil.
func (p *CCDataParser) PopPacket() *DTVCCPacket {
	if len(p.packets) == 0 {
		return nil
	}
	pkt := p.packets[0]
	p.packets[0] = nil
	p.packets = p.packets[1:]
	return pkt
}

// Cea608 returns the byte pairs found by the most recent Push.
func (p *CCDataParser) Cea608() []Cea608 {
	return p.cea608
}

// Flush drops buffered packet bytes, queued packets and byte pairs.
func (p *CCDataParser) Flush() {
	p.pending = nil
	p.packets = nil
	p.cea608 = nil
}
