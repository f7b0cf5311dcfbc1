package cdp

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/cdpctl/internal/protocol/cea708"
	"github.com/danmuck/cdpctl/internal/protocol/tlv"
)

const (
	magic0 uint8 = 0x96
	magic1 uint8 = 0x69

	headerLen    = 7
	footerLen    = 4
	minPacketLen = 11

	ccDataID     uint8 = 0x72
	ccDataMarker uint8 = 0xe0
	footerID     uint8 = 0x74

	futureSectionMin uint8 = 0x75
	futureSectionMax uint8 = 0xef
)

// FutureSection is an extension section carried but not interpreted.
type FutureSection struct {
	ID   uint8
	Data []byte
}

// Packet is one decoded CDP.
// CCData holds the cc_data triples and is nil when the section is absent.
type Packet struct {
	Framerate            Framerate
	Sequence             uint16
	CaptionServiceActive bool
	TimeCode             *TimeCode
	CCData               []byte
	ServiceInfo          *ServiceInfo
	FutureSections       []FutureSection
	Checksum             uint8
}

// CCCount is the number of cc_data triples.
func (p *Packet) CCCount() int {
	return len(p.CCData) / 3
}

// ccDataSection rebuilds the section in the form the cea708 parser consumes.
func (p *Packet) ccDataSection() []byte {
	hdr := cea708.CCDataHeader(p.CCCount())
	out := make([]byte, 0, len(hdr)+len(p.CCData))
	out = append(out, hdr[:]...)
	return append(out, p.CCData...)
}

// checksum returns the byte that brings the wrapping sum of b to zero.
func checksum(b []byte) uint8 {
	var sum uint8
	for _, v := range b {
		sum += v
	}
	return ^sum + 1
}

func short(expected, actual int) error {
	return LengthMismatchError{Expected: expected, Actual: actual}
}

// Decode validates one complete CDP and returns its sections.
// It does not interpret the cc_data triples.
func Decode(data []byte) (*Packet, error) {
	log.Trace().Hex("data", data).Msg("cdp: decoding packet")

	if len(data) < minPacketLen {
		return nil, short(minPacketLen, len(data))
	}
	if data[0] != magic0 || data[1] != magic1 {
		return nil, fmt.Errorf("%w: %#02x %#02x", ErrWrongMagic, data[0], data[1])
	}
	if declared := int(data[2]); declared != len(data) {
		return nil, short(declared, len(data))
	}
	framerate, ok := FramerateFromID(data[3] >> 4)
	if !ok {
		return nil, fmt.Errorf("%w: id %#x", ErrUnknownFramerate, data[3]>>4)
	}
	fl := decodeFlags(data[4])
	pkt := &Packet{
		Framerate:            framerate,
		Sequence:             binary.BigEndian.Uint16(data[5:7]),
		CaptionServiceActive: fl.captionServiceActive,
	}

	idx := headerLen
	if fl.timeCode {
		if len(data) < idx+timeCodeLen {
			return nil, short(idx+timeCodeLen, len(data))
		}
		tc, err := decodeTimeCode(data[idx : idx+timeCodeLen])
		if err != nil {
			return nil, err
		}
		pkt.TimeCode = &tc
		idx += timeCodeLen
	}

	if fl.ccData {
		if len(data) < idx+2 {
			return nil, short(idx+2, len(data))
		}
		if data[idx] != ccDataID {
			return nil, fmt.Errorf("%w: cc_data id %#02x", ErrWrongMagic, data[idx])
		}
		if data[idx+1]&ccDataMarker != ccDataMarker {
			return nil, fmt.Errorf("%w: cc_count %#02x", ErrInvalidFixedBits, data[idx+1])
		}
		n := int(data[idx+1]&0x1f) * 3
		idx += 2
		if len(data) < idx+n {
			return nil, short(idx+n, len(data))
		}
		pkt.CCData = append(make([]byte, 0, n), data[idx:idx+n]...)
		idx += n
	}

	if fl.svcInfo {
		if len(data) < idx+svcInfoHeaderLen {
			return nil, short(idx+svcInfoHeaderLen, len(data))
		}
		if data[idx] != svcInfoID {
			return nil, fmt.Errorf("%w: service info id %#02x", ErrWrongMagic, data[idx])
		}
		size := svcInfoHeaderLen + int(data[idx+1]&0x0f)*svcEntryLen
		if len(data) < idx+size {
			return nil, short(idx+size, len(data))
		}
		info, err := ParseServiceInfo(data[idx : idx+size])
		if err != nil {
			return nil, err
		}
		if info.start != fl.svcInfoStart || info.change != fl.svcInfoChange || info.complete != fl.svcInfoComplete {
			return nil, ErrServiceFlagsMismatched
		}
		pkt.ServiceInfo = info
		idx += size
	}

	if len(data) < idx+2 {
		return nil, short(idx+2, len(data))
	}
	for data[idx] != footerID {
		id := data[idx]
		if id < futureSectionMin || id > futureSectionMax {
			return nil, fmt.Errorf("%w: section id %#02x", ErrWrongMagic, id)
		}
		f, n, err := tlv.DecodeField(data[idx:])
		if errors.Is(err, tlv.ErrShortFieldValue) {
			return nil, short(idx+tlv.HeaderLen+int(data[idx+1]), len(data))
		}
		if err != nil {
			return nil, err
		}
		log.Trace().Uint8("id", f.ID).Int("len", len(f.Value)).Msg("cdp: skipping future section")
		pkt.FutureSections = append(pkt.FutureSections, FutureSection{ID: f.ID, Data: f.Value})
		idx += n
		if len(data) < idx+2 {
			return nil, short(idx+2, len(data))
		}
	}

	if len(data) != idx+footerLen {
		return nil, short(idx+footerLen, len(data))
	}
	if footerSeq := binary.BigEndian.Uint16(data[idx+1 : idx+3]); footerSeq != pkt.Sequence {
		return nil, fmt.Errorf("%w: header %#04x, footer %#04x", ErrSequenceCountMismatch, pkt.Sequence, footerSeq)
	}

	want := checksum(data[:len(data)-1])
	pkt.Checksum = data[len(data)-1]
	log.Trace().Uint8("calculated", want).Uint8("actual", pkt.Checksum).Msg("cdp: checksum")
	if want != pkt.Checksum {
		return nil, fmt.Errorf("%w: calculated %#02x, packet %#02x", ErrChecksumFailed, want, pkt.Checksum)
	}
	return pkt, nil
}
