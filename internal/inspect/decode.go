package inspect

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/cdpctl/internal/observability"
	"github.com/danmuck/cdpctl/internal/protocol/cdp"
	"github.com/danmuck/cdpctl/internal/protocol/cea708"
	"github.com/danmuck/cdpctl/internal/protocol/frame"
)

// Decoder renders a stream of CDPs. DTVCC packets may span CDPs, so one
// Decoder must see a stream's packets in order.
type Decoder struct {
	parser *cdp.Parser
}

func NewDecoder() *Decoder {
	p := cdp.NewParser()
	p.HandleCea608()
	return &Decoder{parser: p}
}

// Decode parses one complete CDP.
func (d *Decoder) Decode(data []byte) (PacketView, error) {
	err := d.parser.Parse(data)
	observability.RecordCDP("decode", cdp.Kind(err), len(data))
	if err != nil {
		return PacketView{}, err
	}
	var packets []*cea708.DTVCCPacket
	for pkt := d.parser.PopPacket(); pkt != nil; pkt = d.parser.PopPacket() {
		packets = append(packets, pkt)
	}
	pairs := d.parser.Cea608()
	observability.RecordCaptions("decode", len(packets), len(pairs))
	return NewPacketView(d.parser.Packet(), pairs, packets), nil
}

// DecodeStream decodes back-to-back CDPs from r until EOF.
// Views decoded before an error are returned with it.
func (d *Decoder) DecodeStream(r io.Reader) ([]PacketView, error) {
	frames, frameErr := frame.ReadAll(r)
	views := make([]PacketView, 0, len(frames))
	for i, pkt := range frames {
		v, err := d.Decode(pkt)
		if err != nil {
			log.Debug().Err(err).Int("packet", i).Hex("data", pkt).Msg("inspect: decode failed")
			return views, fmt.Errorf("packet %d: %w", i, err)
		}
		views = append(views, v)
	}
	return views, frameErr
}

func (d *Decoder) Flush() {
	d.parser.Flush()
}

// ReadInput returns raw bytes, decoding hex text when asHex is set.
// Whitespace in hex input is ignored.
func ReadInput(r io.Reader, asHex bool) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if !asHex {
		return data, nil
	}
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, string(data))
	out, err := hex.DecodeString(compact)
	if err != nil {
		return nil, fmt.Errorf("hex input: %w", err)
	}
	return out, nil
}

// LooksHex reports whether data is printable hex text rather than a binary CDP.
func LooksHex(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return false
	}
	for _, b := range trimmed {
		switch {
		case b >= '0' && b <= '9', b >= 'a' && b <= 'f', b >= 'A' && b <= 'F':
		case b == ' ', b == '\n', b == '\r', b == '\t':
		default:
			return false
		}
	}
	return true
}
