package cea708

import (
	"io"
)

// CCDataWriter paces queued CEA-608 pairs and DTVCC packets into per-frame cc_data sections.
// A packet that does not fit in one frame continues in the next.
// CEA-608 slots alternate between fields across frames.
type CCDataWriter struct {
	packets       [][]byte
	offset        int
	cea608        []Cea608
	nextField     Field
	outputPadding bool
	cea608Padding bool
}

func NewCCDataWriter() *CCDataWriter {
	return &CCDataWriter{nextField: Field1}
}

// SetOutputPadding fills every frame up to its maximum cc_count.
func (w *CCDataWriter) SetOutputPadding(v bool) {
	w.outputPadding = v
}

// SetOutputCea608Padding emits invalid CEA-608 pairs for empty 608 slots.
func (w *CCDataWriter) SetOutputCea608Padding(v bool) {
	w.cea608Padding = v
}

// PushPacket queues p; nothing is queued when it fails to encode.
func (w *CCDataWriter) PushPacket(p *DTVCCPacket) error {
	b, err := p.Encode()
	if err != nil {
		return err
	}
	w.packets = append(w.packets, b)
	return nil
}

func (w *CCDataWriter) PushCea608(c Cea608) {
	w.cea608 = append(w.cea608, c)
}

// Pending reports whether any packet bytes or byte pairs are still queued.
func (w *CCDataWriter) Pending() bool {
	return len(w.packets) > 0 || len(w.cea608) > 0
}

func (w *CCDataWriter) Flush() {
	w.packets = nil
	w.offset = 0
	w.cea608 = nil
	w.nextField = Field1
}

// Write emits one cc_data section for a frame at framerate.
func (w *CCDataWriter) Write(framerate Framerate, out io.Writer) error {
	maxCount := framerate.MaxCCCount()
	triples := make([]byte, 0, maxCount*3)
	count := 0

	for slot := 0; slot < framerate.Cea608PairsPerFrame() && count < maxCount; slot++ {
		field := w.nextField
		w.nextField = field.other()
		switch {
		case len(w.cea608) > 0 && w.cea608[0].Field == field:
			pair := w.cea608[0]
			w.cea608 = w.cea608[1:]
			triples = append(triples, ccMarker|ccValid|field.ccType(), pair.Byte0, pair.Byte1)
		case w.cea608Padding:
			triples = append(triples, ccMarker|field.ccType(), 0x80, 0x80)
		default:
			continue
		}
		count++
	}

	for count < maxCount && len(w.packets) > 0 {
		head := w.packets[0]
		typ := ccTypeDTVCC
		if w.offset == 0 {
			typ = ccTypeDTVCCSt
		}
		triples = append(triples, ccMarker|ccValid|typ, head[w.offset], head[w.offset+1])
		count++
		w.offset += 2
		if w.offset >= len(head) {
			w.packets[0] = nil
			w.packets = w.packets[1:]
			w.offset = 0
		}
	}

	if w.outputPadding {
		for ; count < maxCount; count++ {
			triples = append(triples, ccMarker|ccTypeDTVCC, 0x00, 0x00)
		}
	}

	hdr := CCDataHeader(count)
	if _, err := out.Write(hdr[:]); err != nil {
		return err
	}
	_, err := out.Write(triples)
	return err
}
