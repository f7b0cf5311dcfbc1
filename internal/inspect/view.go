// Package inspect turns CDPs into JSON documents and builds CDPs from
// encode requests. The CLI and the HTTP surface share it.
package inspect

import (
	"encoding/hex"
	"fmt"

	"github.com/danmuck/cdpctl/internal/protocol/cdp"
	"github.com/danmuck/cdpctl/internal/protocol/cea708"
)

type FramerateView struct {
	ID    uint8  `json:"id"`
	Numer uint32 `json:"numer"`
	Denom uint32 `json:"denom"`
}

type TimeCodeView struct {
	Text      string `json:"text"`
	Hours     uint8  `json:"hours"`
	Minutes   uint8  `json:"minutes"`
	Seconds   uint8  `json:"seconds"`
	Frames    uint8  `json:"frames"`
	Field     bool   `json:"field"`
	DropFrame bool   `json:"drop_frame"`
}

type ServiceEntryView struct {
	Language string `json:"language"`
	// Field is 1 or 2 for CEA-608 entries.
	Field           int   `json:"field,omitempty"`
	Service         uint8 `json:"service,omitempty"`
	EasyReader      bool  `json:"easy_reader,omitempty"`
	WideAspectRatio bool  `json:"wide_aspect_ratio,omitempty"`
}

type ServiceInfoView struct {
	Start    bool               `json:"start"`
	Change   bool               `json:"change"`
	Complete bool               `json:"complete"`
	Services []ServiceEntryView `json:"services"`
}

type FutureSectionView struct {
	ID   uint8  `json:"id"`
	Data string `json:"data"`
}

type Cea608View struct {
	Field int    `json:"field"`
	Bytes string `json:"bytes"`
}

type ServiceBlockView struct {
	Number uint8  `json:"number"`
	Text   string `json:"text"`
	Codes  string `json:"codes"`
}

type DTVCCView struct {
	Sequence uint8              `json:"sequence"`
	Services []ServiceBlockView `json:"services"`
}

// PacketView is one decoded CDP with the captions completed by it.
type PacketView struct {
	Sequence             uint16              `json:"sequence"`
	Framerate            FramerateView       `json:"framerate"`
	CaptionServiceActive bool                `json:"caption_service_active"`
	TimeCode             *TimeCodeView       `json:"time_code,omitempty"`
	CCCount              int                 `json:"cc_count"`
	ServiceInfo          *ServiceInfoView    `json:"service_info,omitempty"`
	FutureSections       []FutureSectionView `json:"future_sections,omitempty"`
	Cea608               []Cea608View        `json:"cea608,omitempty"`
	DTVCC                []DTVCCView         `json:"dtvcc,omitempty"`
	Checksum             uint8               `json:"checksum"`
}

func framerateView(fr cdp.Framerate) FramerateView {
	return FramerateView{ID: fr.ID(), Numer: fr.Numer(), Denom: fr.Denom()}
}

func timeCodeView(tc *cdp.TimeCode) *TimeCodeView {
	if tc == nil {
		return nil
	}
	return &TimeCodeView{
		Text:      tc.String(),
		Hours:     tc.Hours,
		Minutes:   tc.Minutes,
		Seconds:   tc.Seconds,
		Frames:    tc.Frames,
		Field:     tc.Field,
		DropFrame: tc.DropFrame,
	}
}

func serviceInfoView(info *cdp.ServiceInfo) *ServiceInfoView {
	if info == nil {
		return nil
	}
	v := &ServiceInfoView{
		Start:    info.Start(),
		Change:   info.Change(),
		Complete: info.Complete(),
		Services: make([]ServiceEntryView, 0, len(info.Services())),
	}
	for _, e := range info.Services() {
		ev := ServiceEntryView{Language: e.LanguageString()}
		switch s := e.Service.(type) {
		case cdp.Field:
			ev.Field = 2
			if s == cdp.Field1 {
				ev.Field = 1
			}
		case cdp.DigitalServiceEntry:
			ev.Service = s.Service
			ev.EasyReader = s.EasyReader
			ev.WideAspectRatio = s.WideAspectRatio
		}
		v.Services = append(v.Services, ev)
	}
	return v
}

func dtvccView(pkt *cea708.DTVCCPacket) DTVCCView {
	v := DTVCCView{Sequence: pkt.SequenceNo()}
	for _, svc := range pkt.Services() {
		var raw []byte
		for _, c := range svc.Codes() {
			raw = append(raw, c.Bytes()...)
		}
		v.Services = append(v.Services, ServiceBlockView{
			Number: svc.Number(),
			Text:   cea708.Text(svc.Codes()),
			Codes:  hex.EncodeToString(raw),
		})
	}
	return v
}

// NewPacketView renders pkt with the caption data the parser produced for it.
func NewPacketView(pkt *cdp.Packet, pairs []cea708.Cea608, packets []*cea708.DTVCCPacket) PacketView {
	v := PacketView{
		Sequence:             pkt.Sequence,
		Framerate:            framerateView(pkt.Framerate),
		CaptionServiceActive: pkt.CaptionServiceActive,
		TimeCode:             timeCodeView(pkt.TimeCode),
		CCCount:              pkt.CCCount(),
		ServiceInfo:          serviceInfoView(pkt.ServiceInfo),
		Checksum:             pkt.Checksum,
	}
	for _, f := range pkt.FutureSections {
		v.FutureSections = append(v.FutureSections, FutureSectionView{ID: f.ID, Data: hex.EncodeToString(f.Data)})
	}
	for _, p := range pairs {
		v.Cea608 = append(v.Cea608, Cea608View{Field: int(p.Field), Bytes: hex.EncodeToString([]byte{p.Byte0, p.Byte1})})
	}
	for _, p := range packets {
		v.DTVCC = append(v.DTVCC, dtvccView(p))
	}
	return v
}

func (v Cea608View) cea608() (cea708.Cea608, error) {
	b, err := hex.DecodeString(v.Bytes)
	if err != nil {
		return cea708.Cea608{}, err
	}
	if len(b) != 2 {
		return cea708.Cea608{}, fmt.Errorf("want 2 bytes, got %d", len(b))
	}
	switch v.Field {
	case 1:
		return cea708.NewCea608Field1(b[0], b[1]), nil
	case 2:
		return cea708.NewCea608Field2(b[0], b[1]), nil
	default:
		return cea708.Cea608{}, fmt.Errorf("field %d is not 1 or 2", v.Field)
	}
}

func (v FutureSectionView) futureSection() (cdp.FutureSection, error) {
	b, err := hex.DecodeString(v.Data)
	if err != nil {
		return cdp.FutureSection{}, err
	}
	return cdp.FutureSection{ID: v.ID, Data: b}, nil
}
