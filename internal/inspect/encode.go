package inspect

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/danmuck/cdpctl/internal/config"
	"github.com/danmuck/cdpctl/internal/observability"
	"github.com/danmuck/cdpctl/internal/protocol/cdp"
	"github.com/danmuck/cdpctl/internal/protocol/cea708"
	"github.com/danmuck/cdpctl/internal/protocol/frame"
)

// maxFrames bounds the CDPs produced for one request.
const maxFrames = 256

// EncodeRequest describes captions to carry in a run of CDPs.
// Zero values fall back to the writer configuration.
type EncodeRequest struct {
	Text        string       `json:"text"`
	Service     uint8        `json:"service,omitempty"`
	Sequence    uint16       `json:"sequence,omitempty"`
	FramerateID uint8        `json:"framerate_id,omitempty"`
	TimeCode    string       `json:"time_code,omitempty"`
	Language    string       `json:"language,omitempty"`
	Descriptor  bool         `json:"descriptor,omitempty"`
	Cea608      []Cea608View `json:"cea608,omitempty"`

	FutureSections []FutureSectionView `json:"future_sections,omitempty"`
}

// Encoder builds CDPs with the padding and defaults of a writer configuration.
type Encoder struct {
	cfg config.WriterConfig
}

func NewEncoder(cfg config.WriterConfig) *Encoder {
	return &Encoder{cfg: cfg}
}

// textPackets splits text over service blocks and DTVCC packets.
func textPackets(service uint8, text string) ([]*cea708.DTVCCPacket, error) {
	codes, err := cea708.CodesFromText(text)
	if err != nil {
		return nil, err
	}
	var packets []*cea708.DTVCCPacket
	pkt := cea708.NewDTVCCPacket(0)
	svc := cea708.NewService(service)
	flushService := func() error {
		if len(svc.Codes()) == 0 {
			return nil
		}
		if err := pkt.PushService(svc); err != nil {
			if !errors.Is(err, cea708.ErrWouldOverflow) {
				return err
			}
			packets = append(packets, pkt)
			pkt = cea708.NewDTVCCPacket(uint8(len(packets)))
			if err := pkt.PushService(svc); err != nil {
				return err
			}
		}
		svc = cea708.NewService(service)
		return nil
	}
	for _, c := range codes {
		if err := svc.PushCode(c); err != nil {
			if !errors.Is(err, cea708.ErrWouldOverflow) {
				return nil, err
			}
			if err := flushService(); err != nil {
				return nil, err
			}
			if err := svc.PushCode(c); err != nil {
				return nil, err
			}
		}
	}
	if err := flushService(); err != nil {
		return nil, err
	}
	if len(pkt.Services()) > 0 {
		packets = append(packets, pkt)
	}
	return packets, nil
}

func (e *Encoder) framerate(id uint8) (cdp.Framerate, error) {
	if id == 0 {
		return e.cfg.Framerate()
	}
	fr, ok := cdp.FramerateFromID(id)
	if !ok {
		return cdp.Framerate{}, fmt.Errorf("%w: framerate_id %d", cdp.ErrUnknownFramerate, id)
	}
	return fr, nil
}

func (e *Encoder) descriptor(req EncodeRequest, service uint8) (*cdp.ServiceInfo, error) {
	langText := req.Language
	if langText == "" {
		langText = e.cfg.Language
	}
	lang, err := cdp.LanguageFromString(langText)
	if err != nil {
		return nil, err
	}
	digital, err := cdp.NewDigitalServiceEntry(service, false, false)
	if err != nil {
		return nil, err
	}
	info := cdp.NewServiceInfo()
	info.SetStart(true)
	info.SetComplete(true)
	if len(req.Cea608) > 0 {
		if err := info.AddService(cdp.NewServiceEntry(lang, cdp.Field1)); err != nil {
			return nil, err
		}
	}
	if err := info.AddService(cdp.NewServiceEntry(lang, digital)); err != nil {
		return nil, err
	}
	return info, nil
}

// Encode returns one CDP per frame until the request's captions are drained.
func (e *Encoder) Encode(req EncodeRequest) ([][]byte, error) {
	out, err := e.encode(req)
	size := 0
	for _, pkt := range out {
		size += len(pkt)
	}
	observability.RecordCDP("encode", cdp.Kind(err), size)
	return out, err
}

func (e *Encoder) encode(req EncodeRequest) ([][]byte, error) {
	fr, err := e.framerate(req.FramerateID)
	if err != nil {
		return nil, err
	}
	service := req.Service
	if service == 0 {
		service = 1
	}

	w := e.cfg.NewWriter()
	w.SetSequenceCount(req.Sequence)
	if req.TimeCode != "" {
		tc, err := cdp.ParseTimeCode(req.TimeCode)
		if err != nil {
			return nil, err
		}
		w.SetTimeCode(&tc)
	}
	if req.Descriptor {
		info, err := e.descriptor(req, service)
		if err != nil {
			return nil, err
		}
		w.SetServiceInfo(info)
	}

	if len(req.FutureSections) > 0 {
		sections := make([]cdp.FutureSection, 0, len(req.FutureSections))
		for i, v := range req.FutureSections {
			f, err := v.futureSection()
			if err != nil {
				return nil, fmt.Errorf("future_sections[%d]: %w", i, err)
			}
			sections = append(sections, f)
		}
		if err := w.SetFutureSections(sections); err != nil {
			return nil, err
		}
	}

	packets, err := textPackets(service, req.Text)
	if err != nil {
		return nil, err
	}
	for _, pkt := range packets {
		if err := w.PushPacket(pkt); err != nil {
			return nil, err
		}
	}
	for i, p := range req.Cea608 {
		pair, err := p.cea608()
		if err != nil {
			return nil, fmt.Errorf("cea608[%d]: %w", i, err)
		}
		w.PushCea608(pair)
	}
	observability.RecordCaptions("encode", len(packets), len(req.Cea608))

	var frames [][]byte
	for {
		var buf bytes.Buffer
		if err := w.Write(fr, &buf); err != nil {
			return nil, err
		}
		frames = append(frames, buf.Bytes())
		if !w.Pending() {
			return frames, nil
		}
		if len(frames) >= maxFrames {
			return nil, fmt.Errorf("inspect: captions need more than %d frames", maxFrames)
		}
		w.SetSequenceCount(w.SequenceCount() + 1)
	}
}

// WriteFrames writes packets back to back.
func WriteFrames(w io.Writer, packets [][]byte) error {
	for _, pkt := range packets {
		if err := frame.WriteFrame(w, pkt); err != nil {
			return err
		}
	}
	return nil
}
