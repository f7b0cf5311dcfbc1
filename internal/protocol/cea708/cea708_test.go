package cea708

import (
	"bytes"
	"errors"
	"testing"
)

func mustCode(t *testing.T, b ...byte) Code {
	t.Helper()
	c, err := CodeFromBytes(b)
	if err != nil {
		t.Fatalf("code %x: %v", b, err)
	}
	return c
}

func singleServicePacket(t *testing.T, seq, number uint8, text string) *DTVCCPacket {
	t.Helper()
	svc := NewService(number)
	if err := svc.PushText(text); err != nil {
		t.Fatalf("push text: %v", err)
	}
	pkt := NewDTVCCPacket(seq)
	if err := pkt.PushService(svc); err != nil {
		t.Fatalf("push service: %v", err)
	}
	return pkt
}

func TestFramerateBudgets(t *testing.T) {
	cases := []struct {
		fr       Framerate
		maxCount int
		pairs    int
	}{
		{NewFramerate(24000, 1001), 25, 3},
		{NewFramerate(25, 1), 24, 2},
		{NewFramerate(30000, 1001), 20, 2},
		{NewFramerate(30, 1), 20, 2},
		{NewFramerate(50, 1), 12, 1},
		{NewFramerate(60000, 1001), 10, 1},
		{NewFramerate(60, 1), 10, 1},
	}
	for _, tc := range cases {
		if got := tc.fr.MaxCCCount(); got != tc.maxCount {
			t.Fatalf("%d/%d max cc_count: got=%d want=%d", tc.fr.Numer, tc.fr.Denom, got, tc.maxCount)
		}
		if got := tc.fr.Cea608PairsPerFrame(); got != tc.pairs {
			t.Fatalf("%d/%d 608 pairs: got=%d want=%d", tc.fr.Numer, tc.fr.Denom, got, tc.pairs)
		}
	}
}

func TestParseCodesLengths(t *testing.T) {
	data := []byte{
		0x41,                                     // G0 'A'
		0x0d,                                     // CR
		0x18, 0x12, 0x34,                         // P16
		0x98, 0x38, 0x00, 0x00, 0x1f, 0x12, 0x00, // DF0
		0x10, 0x25,                               // EXT1 G2
		0xe9,                                     // G1
		0x8c, 0xff,                               // DLW
	}
	codes, err := ParseCodes(data)
	if err != nil {
		t.Fatalf("parse codes: %v", err)
	}
	want := []int{1, 1, 3, 7, 2, 1, 2}
	if len(codes) != len(want) {
		t.Fatalf("expected %d codes, got %d: %v", len(want), len(codes), codes)
	}
	for i, c := range codes {
		if c.Len() != want[i] {
			t.Fatalf("code %d len: got=%d want=%d", i, c.Len(), want[i])
		}
	}
	if Text(codes) != "Aé" {
		t.Fatalf("unexpected text: %q", Text(codes))
	}
}

func TestParseCodesTruncated(t *testing.T) {
	_, err := ParseCodes([]byte{0x41, 0x98, 0x01})
	if !errors.Is(err, ErrTruncatedCode) {
		t.Fatalf("expected ErrTruncatedCode, got %v", err)
	}
}

func TestCodeFromRune(t *testing.T) {
	c, err := CodeFromRune('♪')
	if err != nil {
		t.Fatalf("music note: %v", err)
	}
	if !bytes.Equal(c.Bytes(), []byte{0x7f}) {
		t.Fatalf("unexpected music note code: %x", c.Bytes())
	}
	if _, err := CodeFromRune('€'); !errors.Is(err, ErrUnsupportedRune) {
		t.Fatalf("expected ErrUnsupportedRune, got %v", err)
	}
}

func TestParseDTVCCPacketSingleService(t *testing.T) {
	pkt, err := ParseDTVCCPacket([]byte{0x02, 0x21, 0x41, 0x00})
	if err != nil {
		t.Fatalf("parse packet: %v", err)
	}
	if pkt.SequenceNo() != 0 {
		t.Fatalf("unexpected sequence: %d", pkt.SequenceNo())
	}
	services := pkt.Services()
	if len(services) != 1 || services[0].Number() != 1 {
		t.Fatalf("unexpected services: %+v", services)
	}
	codes := services[0].Codes()
	if len(codes) != 1 || codes[0] != mustCode(t, 'A') {
		t.Fatalf("unexpected codes: %v", codes)
	}
}

func TestDTVCCPacketEncodeRoundTrip(t *testing.T) {
	pkt := NewDTVCCPacket(3)
	basic := NewService(1)
	if err := basic.PushText("Hi"); err != nil {
		t.Fatalf("push text: %v", err)
	}
	if err := basic.PushCode(mustCode(t, 0x0d)); err != nil {
		t.Fatalf("push code: %v", err)
	}
	extended := NewService(42)
	if err := extended.PushText("ok"); err != nil {
		t.Fatalf("push text: %v", err)
	}
	for _, s := range []Service{basic, extended} {
		if err := pkt.PushService(s); err != nil {
			t.Fatalf("push service: %v", err)
		}
	}

	encoded, err := pkt.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := []byte{0xc5, 0x23, 'H', 'i', 0x0d, 0xe2, 0x2a, 'o', 'k', 0x00}
	if !bytes.Equal(encoded, want) {
		t.Fatalf("encoded mismatch: got=% x want=% x", encoded, want)
	}

	parsed, err := ParseDTVCCPacket(encoded)
	if err != nil {
		t.Fatalf("parse encoded: %v", err)
	}
	if parsed.SequenceNo() != 3 || len(parsed.Services()) != 2 {
		t.Fatalf("unexpected parsed packet: %+v", parsed)
	}
	if parsed.Services()[1].Number() != 42 || Text(parsed.Services()[1].Codes()) != "ok" {
		t.Fatalf("extended service mismatch: %+v", parsed.Services()[1])
	}
}

func TestServiceOverflow(t *testing.T) {
	svc := NewService(1)
	for i := 0; i < maxServiceBlockData; i++ {
		if err := svc.PushCode(mustCode(t, 'a')); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	if err := svc.PushCode(mustCode(t, 'a')); !errors.Is(err, ErrWouldOverflow) {
		t.Fatalf("expected ErrWouldOverflow, got %v", err)
	}

	pkt := NewDTVCCPacket(0)
	for i := 0; i < 3; i++ {
		if err := pkt.PushService(svc); err != nil {
			t.Fatalf("push service %d: %v", i, err)
		}
	}
	if err := pkt.PushService(svc); !errors.Is(err, ErrWouldOverflow) {
		t.Fatalf("expected ErrWouldOverflow, got %v", err)
	}
	tail := NewService(2)
	for i := 0; i < 29; i++ {
		if err := tail.PushCode(mustCode(t, 'b')); err != nil {
			t.Fatalf("push tail %d: %v", i, err)
		}
	}
	if err := pkt.PushService(tail); err != nil {
		t.Fatalf("push tail service: %v", err)
	}
	full, err := pkt.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if pkt.Len() != maxPacketLen || full[0]&0x3f != 0 {
		t.Fatalf("full packet should use size code 0, len=%d", pkt.Len())
	}
	if err := pkt.PushService(NewService(0)); !errors.Is(err, ErrInvalidServiceNumber) {
		t.Fatalf("expected ErrInvalidServiceNumber, got %v", err)
	}
}

func TestCCDataParserSplitsCea608AndPackets(t *testing.T) {
	p := NewCCDataParser()
	p.HandleCea608()
	data := []byte{
		0xc0 | 4, 0xff,
		0xfc, 0x20, 0x41,
		0xfd, 0x42, 0x43,
		0xff, 0x02, 0x21,
		0xfe, 0x41, 0x00,
	}
	if err := p.Push(data); err != nil {
		t.Fatalf("push: %v", err)
	}
	pairs := p.Cea608()
	want := []Cea608{NewCea608Field1(0x20, 0x41), NewCea608Field2(0x42, 0x43)}
	if len(pairs) != len(want) || pairs[0] != want[0] || pairs[1] != want[1] {
		t.Fatalf("unexpected pairs: %v", pairs)
	}
	pkt := p.PopPacket()
	if pkt == nil || Text(pkt.Services()[0].Codes()) != "A" {
		t.Fatalf("unexpected packet: %+v", pkt)
	}
	if p.PopPacket() != nil {
		t.Fatalf("expected packet queue drained")
	}
}

func TestCCDataParserPacketSpansSections(t *testing.T) {
	p := NewCCDataParser()
	if err := p.Push([]byte{0xc0 | 1, 0xff, 0xff, 0x02, 0x21}); err != nil {
		t.Fatalf("push first: %v", err)
	}
	if p.PopPacket() != nil {
		t.Fatalf("packet should still be incomplete")
	}
	if err := p.Push([]byte{0xc0 | 1, 0xff, 0xfe, 0x41, 0x00}); err != nil {
		t.Fatalf("push second: %v", err)
	}
	if pkt := p.PopPacket(); pkt == nil {
		t.Fatalf("expected completed packet")
	}
}

func TestCCDataParserRejectsCea608After708(t *testing.T) {
	p := NewCCDataParser()
	p.HandleCea608()
	data := []byte{0xc0 | 2, 0xff, 0xff, 0x02, 0x21, 0xfc, 0x20, 0x41}
	err := p.Push(data)
	var orderErr Cea608AfterCea708Error
	if !errors.As(err, &orderErr) {
		t.Fatalf("expected Cea608AfterCea708Error, got %v", err)
	}
	if orderErr.BytePos != 5 {
		t.Fatalf("unexpected byte pos: %d", orderErr.BytePos)
	}
}

func TestCCDataParserLengthMismatch(t *testing.T) {
	p := NewCCDataParser()
	err := p.Push([]byte{0xc0 | 2, 0xff, 0xfc, 0x20, 0x41})
	var lenErr LengthMismatchError
	if !errors.As(err, &lenErr) {
		t.Fatalf("expected LengthMismatchError, got %v", err)
	}
	if lenErr.Expected != 8 || lenErr.Actual != 5 {
		t.Fatalf("unexpected mismatch: %+v", lenErr)
	}
}

func TestCCDataWriterPaddedFrame(t *testing.T) {
	w := NewCCDataWriter()
	w.SetOutputPadding(true)
	w.SetOutputCea608Padding(true)
	if err := w.PushPacket(singleServicePacket(t, 0, 1, "A")); err != nil {
		t.Fatalf("push packet: %v", err)
	}

	var buf bytes.Buffer
	if err := w.Write(NewFramerate(25, 1), &buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := []byte{0xc0 | 0x18, 0xff, 0xf8, 0x80, 0x80, 0xf9, 0x80, 0x80, 0xff, 0x02, 0x21, 0xfe, 0x41, 0x00}
	for i := 0; i < 20; i++ {
		want = append(want, 0xfa, 0x00, 0x00)
	}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("frame mismatch:\ngot=  % x\nwant= % x", buf.Bytes(), want)
	}
	if w.Pending() {
		t.Fatalf("writer should be drained")
	}
}

func TestCCDataWriterUnpaddedCea608(t *testing.T) {
	w := NewCCDataWriter()
	w.PushCea608(NewCea608Field2(0x14, 0x2c))

	var buf bytes.Buffer
	if err := w.Write(NewFramerate(30000, 1001), &buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := []byte{0xc0 | 1, 0xff, 0xfd, 0x14, 0x2c}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("frame mismatch: got=% x want=% x", buf.Bytes(), want)
	}
}

func TestCCDataWriterPacketContinuesNextFrame(t *testing.T) {
	w := NewCCDataWriter()
	pkt := NewDTVCCPacket(1)
	for i := 0; i < 3; i++ {
		svc := NewService(uint8(i + 1))
		if err := svc.PushText("abcdefghijklmnopqrstuvwxyz"); err != nil {
			t.Fatalf("push text: %v", err)
		}
		if err := pkt.PushService(svc); err != nil {
			t.Fatalf("push service: %v", err)
		}
	}
	if err := w.PushPacket(pkt); err != nil {
		t.Fatalf("push packet: %v", err)
	}

	p := NewCCDataParser()
	fr := NewFramerate(60, 1)
	frames := 0
	for w.Pending() {
		var buf bytes.Buffer
		if err := w.Write(fr, &buf); err != nil {
			t.Fatalf("write: %v", err)
		}
		if err := p.Push(buf.Bytes()); err != nil {
			t.Fatalf("push frame %d: %v", frames, err)
		}
		frames++
	}
	if frames != 5 {
		t.Fatalf("expected packet spread over 5 frames, got %d", frames)
	}
	got := p.PopPacket()
	if got == nil || len(got.Services()) != 3 || got.SequenceNo() != 1 {
		t.Fatalf("unexpected reassembled packet: %+v", got)
	}
	if Text(got.Services()[2].Codes()) != "abcdefghijklmnopqrstuvwxyz" {
		t.Fatalf("unexpected text: %q", Text(got.Services()[2].Codes()))
	}
}

func TestCCDataParserFlush(t *testing.T) {
	p := NewCCDataParser()
	if err := p.Push([]byte{0xc0 | 1, 0xff, 0xff, 0x02, 0x21}); err != nil {
		t.Fatalf("push: %v", err)
	}
	p.Flush()
	if err := p.Push([]byte{0xc0 | 1, 0xff, 0xfe, 0x41, 0x00}); err != nil {
		t.Fatalf("push: %v", err)
	}
	if p.PopPacket() != nil {
		t.Fatalf("flushed partial packet must not complete")
	}
}

func TestCCDataWriterAlternatesFieldsAcrossFrames(t *testing.T) {
	w := NewCCDataWriter()
	w.PushCea608(NewCea608Field1(0x14, 0x20))
	w.PushCea608(NewCea608Field2(0x15, 0x20))

	fr := NewFramerate(60, 1)
	var frames [][]byte
	for w.Pending() && len(frames) < 4 {
		var buf bytes.Buffer
		if err := w.Write(fr, &buf); err != nil {
			t.Fatalf("write: %v", err)
		}
		frames = append(frames, buf.Bytes())
	}
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	if !bytes.Equal(frames[0], []byte{0xc1, 0xff, 0xfc, 0x14, 0x20}) {
		t.Fatalf("frame 0: % x", frames[0])
	}
	if !bytes.Equal(frames[1], []byte{0xc1, 0xff, 0xfd, 0x15, 0x20}) {
		t.Fatalf("frame 1: % x", frames[1])
	}
}
