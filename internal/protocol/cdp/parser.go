package cdp

import (
	"github.com/danmuck/cdpctl/internal/protocol/cea708"
)

// Parser keeps the envelope state of the last successfully parsed packet
// and feeds cc_data sections into a cea708.CCDataParser.
type Parser struct {
	cc *cea708.CCDataParser

	parsed      bool
	framerate   Framerate
	timeCode    *TimeCode
	sequence    uint16
	serviceInfo *ServiceInfo
	last        *Packet
}

func NewParser() *Parser {
	return &Parser{cc: cea708.NewCCDataParser()}
}

// HandleCea608 enables collecting CEA-608 byte pairs from cc_data.
func (p *Parser) HandleCea608() {
	p.cc.HandleCea608()
}

// Parse consumes one complete CDP. On error the previous state is kept.
func (p *Parser) Parse(data []byte) error {
	pkt, err := Decode(data)
	if err != nil {
		return err
	}
	if pkt.CCData != nil {
		if err := p.cc.Push(pkt.ccDataSection()); err != nil {
			return fromCCDataError(err)
		}
	}

	p.parsed = true
	p.framerate = pkt.Framerate
	p.timeCode = pkt.TimeCode
	p.sequence = pkt.Sequence
	p.serviceInfo = pkt.ServiceInfo
	p.last = pkt
	return nil
}

// TimeCode of the last parsed packet, if it carried one.
func (p *Parser) TimeCode() (TimeCode, bool) {
	if p.timeCode == nil {
		return TimeCode{}, false
	}
	return *p.timeCode, true
}

func (p *Parser) Framerate() (Framerate, bool) {
	return p.framerate, p.parsed
}

// Sequence is 0 before the first successful parse.
func (p *Parser) Sequence() uint16 {
	return p.sequence
}

// ServiceInfo of the last parsed packet or nil.
func (p *Parser) ServiceInfo() *ServiceInfo {
	return p.serviceInfo
}

// FutureSections of the last parsed packet.
func (p *Parser) FutureSections() []FutureSection {
	if p.last == nil {
		return nil
	}
	return p.last.FutureSections
}

// Packet is the last successfully parsed packet or nil.
func (p *Parser) Packet() *Packet {
	return p.last
}

// PopPacket returns the next complete DTVCC packet, or nil.
func (p *Parser) PopPacket() *cea708.DTVCCPacket {
	return p.cc.PopPacket()
}

// Cea608 returns the byte pairs of the last parsed packet.
func (p *Parser) Cea608() []cea708.Cea608 {
	if p.last == nil || p.last.CCData == nil {
		return nil
	}
	return p.cc.Cea608()
}

// Flush resets the parser, including partially assembled DTVCC packets.
// CEA-608 collection stays enabled.
func (p *Parser) Flush() {
	p.cc.Flush()
	p.parsed = false
	p.framerate = Framerate{}
	p.timeCode = nil
	p.sequence = 0
	p.serviceInfo = nil
	p.last = nil
}
