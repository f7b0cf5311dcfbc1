package cdp

import (
	"bytes"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/cdpctl/internal/protocol/cea708"
	"github.com/danmuck/cdpctl/internal/protocol/tlv"
)

const maxPacketLen = 0xff

// Writer produces one CDP per Write from queued caption data and pending
// time code and service information. Pending values persist across writes.
type Writer struct {
	cc             *cea708.CCDataWriter
	timeCode       *TimeCode
	serviceInfo    *ServiceInfo
	futureSections []tlv.Field
	sequence       uint16
}

// NewWriter returns a writer with cc_data and CEA-608 padding enabled.
func NewWriter() *Writer {
	cc := cea708.NewCCDataWriter()
	cc.SetOutputPadding(true)
	cc.SetOutputCea608Padding(true)
	return &Writer{cc: cc}
}

func (w *Writer) PushPacket(p *cea708.DTVCCPacket) error {
	return w.cc.PushPacket(p)
}

func (w *Writer) PushCea608(c cea708.Cea608) {
	w.cc.PushCea608(c)
}

// Pending reports queued caption data not yet written.
func (w *Writer) Pending() bool {
	return w.cc.Pending()
}

// SetTimeCode sets the time code for following packets; nil clears it.
// Write rejects a time code that fails Validate.
func (w *Writer) SetTimeCode(tc *TimeCode) {
	if tc == nil {
		w.timeCode = nil
		return
	}
	v := *tc
	w.timeCode = &v
}

// SetServiceInfo sets the service descriptor for following packets; nil clears it.
func (w *Writer) SetServiceInfo(info *ServiceInfo) {
	if info == nil {
		w.serviceInfo = nil
		return
	}
	w.serviceInfo = info.Clone()
}

// SetFutureSections sets extension sections written before the footer of
// following packets; nil clears them. Ids must be in 0x75..0xef.
func (w *Writer) SetFutureSections(sections []FutureSection) error {
	fields := make([]tlv.Field, 0, len(sections))
	for _, f := range sections {
		if f.ID < futureSectionMin || f.ID > futureSectionMax {
			return fmt.Errorf("%w: future section id %#02x", ErrWrongMagic, f.ID)
		}
		if len(f.Data) > tlv.MaxValueLen {
			return fmt.Errorf("%w: future section %#02x has %d bytes", ErrPacketTooLong, f.ID, len(f.Data))
		}
		fields = append(fields, tlv.Field{ID: f.ID, Value: append([]byte(nil), f.Data...)})
	}
	if len(fields) == 0 {
		fields = nil
	}
	w.futureSections = fields
	return nil
}

func (w *Writer) SetSequenceCount(seq uint16) {
	w.sequence = seq
}

func (w *Writer) SequenceCount() uint16 {
	return w.sequence
}

// SetOutputPadding fills cc_data up to the framerate's maximum count.
func (w *Writer) SetOutputPadding(v bool) {
	w.cc.SetOutputPadding(v)
}

// SetOutputCea608Padding writes invalid CEA-608 pairs in empty 608 slots.
func (w *Writer) SetOutputCea608Padding(v bool) {
	w.cc.SetOutputCea608Padding(v)
}

// Flush drops queued caption data and pending state.
func (w *Writer) Flush() {
	w.cc.Flush()
	w.timeCode = nil
	w.serviceInfo = nil
	w.futureSections = nil
	w.sequence = 0
}

// Write emits the next packet at framerate.
// It fails before consuming queued caption data when the framerate is not in
// the table, the time code does not fit its BCD fields, or the packet could
// exceed 255 bytes with a full cc_data section.
func (w *Writer) Write(framerate Framerate, out io.Writer) error {
	if _, ok := FramerateFromID(framerate.id); !ok {
		return fmt.Errorf("%w: id %#x", ErrUnknownFramerate, framerate.id)
	}
	if w.timeCode != nil {
		if err := w.timeCode.Validate(); err != nil {
			return err
		}
	}
	future, err := tlv.EncodeFields(w.futureSections)
	if err != nil {
		return fmt.Errorf("cdp: future sections: %w", err)
	}

	fixed := headerLen + len(future) + footerLen
	if w.timeCode != nil {
		fixed += timeCodeLen
	}
	if w.serviceInfo != nil {
		fixed += w.serviceInfo.ByteLen()
	}
	if worst := fixed + 2 + framerate.cea708().MaxCCCount()*3; worst > maxPacketLen {
		return fmt.Errorf("%w: up to %d bytes", ErrPacketTooLong, worst)
	}

	var cc bytes.Buffer
	if err := w.cc.Write(framerate.cea708(), &cc); err != nil {
		return err
	}
	ccData := cc.Bytes()
	ccData[1] = ccDataMarker | ccData[0]&0x1f
	ccData[0] = ccDataID
	size := fixed + len(ccData)

	fl := flags{
		ccData:               true,
		captionServiceActive: true,
		timeCode:             w.timeCode != nil,
		svcInfo:              w.serviceInfo != nil,
	}
	if w.serviceInfo != nil {
		fl.svcInfoStart = w.serviceInfo.start
		fl.svcInfoChange = w.serviceInfo.change
		fl.svcInfoComplete = w.serviceInfo.complete
	}

	buf := make([]byte, 0, size)
	buf = append(buf,
		magic0, magic1,
		uint8(size),
		framerate.id<<4|0x0f,
		fl.encode(),
		uint8(w.sequence>>8), uint8(w.sequence),
	)
	if w.timeCode != nil {
		buf = w.timeCode.appendTo(buf)
	}
	buf = append(buf, ccData...)
	if w.serviceInfo != nil {
		if buf, err = w.serviceInfo.AppendBinary(buf); err != nil {
			return err
		}
	}
	buf = append(buf, future...)
	buf = append(buf, footerID, uint8(w.sequence>>8), uint8(w.sequence))
	buf = append(buf, checksum(buf))

	log.Trace().Uint16("sequence", w.sequence).Int("len", len(buf)).Msg("cdp: wrote packet")
	_, err = out.Write(buf)
	return err
}
