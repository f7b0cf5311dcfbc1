package cdp

import (
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/charmap"
)

const (
	svcInfoID        uint8 = 0x73
	svcInfoHeaderLen       = 2
	svcEntryLen            = 7
	maxServices            = 15
	maxDigitalService      = 31
)

// ServiceInfo is the caption service descriptor section.
// The zero value is an empty descriptor with no flags set.
type ServiceInfo struct {
	start    bool
	change   bool
	complete bool
	services []ServiceEntry
}

func NewServiceInfo() *ServiceInfo {
	return &ServiceInfo{}
}

// ParseServiceInfo decodes a complete section, id byte included.
func ParseServiceInfo(data []byte) (*ServiceInfo, error) {
	if len(data) < svcInfoHeaderLen {
		return nil, LengthMismatchError{Expected: svcInfoHeaderLen, Actual: len(data)}
	}
	if data[0] != svcInfoID {
		return nil, fmt.Errorf("%w: service info id %#02x", ErrWrongMagic, data[0])
	}
	if data[1]&0x80 != 0x80 {
		return nil, fmt.Errorf("%w: service info header %#02x", ErrInvalidFixedBits, data[1])
	}
	count := int(data[1] & 0x0f)
	expected := svcInfoHeaderLen + count*svcEntryLen
	if len(data) != expected {
		return nil, LengthMismatchError{Expected: expected, Actual: len(data)}
	}

	info := &ServiceInfo{
		start:    data[1]&0x40 != 0,
		change:   data[1]&0x20 != 0,
		complete: data[1]&0x10 != 0,
		services: make([]ServiceEntry, 0, count),
	}
	for off := svcInfoHeaderLen; off < len(data); off += svcEntryLen {
		entry := data[off : off+svcEntryLen]
		log.Trace().Hex("entry", entry).Msg("cdp: parsing service entry")

		hdr := entry[0]
		if hdr&0x80 != 0x80 {
			return nil, fmt.Errorf("%w: service entry header %#02x", ErrInvalidFixedBits, hdr)
		}
		var number uint8
		if hdr&0x40 != 0 {
			if hdr&0x20 != 0x20 {
				return nil, fmt.Errorf("%w: service entry header %#02x", ErrInvalidFixedBits, hdr)
			}
			number = hdr & 0x1f
		} else {
			number = hdr & 0x3f
		}

		svc, err := ParseServiceEntry(entry[1:])
		if err != nil {
			return nil, err
		}
		switch s := svc.Service.(type) {
		case DigitalServiceEntry:
			if s.Service != number {
				return nil, fmt.Errorf("%w: header %d, descriptor %d", ErrServiceNumberMismatch, number, s.Service)
			}
		case Field:
			if number != 0 {
				return nil, fmt.Errorf("%w: header %d for a cea-608 field", ErrServiceNumberMismatch, number)
			}
		default:
			return nil, fmt.Errorf("cdp: unhandled service type %T", s)
		}
		info.services = append(info.services, svc)
	}
	return info, nil
}

// Start reports whether this block begins a complete set of service information.
func (s *ServiceInfo) Start() bool {
	return s.start
}

func (s *ServiceInfo) SetStart(start bool) {
	s.start = start
}

// Change reports an update to previously sent service information.
func (s *ServiceInfo) Change() bool {
	return s.change
}

// SetChange also sets start when change is true.
func (s *ServiceInfo) SetChange(change bool) {
	s.change = change
	if change {
		s.start = true
	}
}

// Complete reports whether this block concludes a complete set of service information.
func (s *ServiceInfo) Complete() bool {
	return s.complete
}

func (s *ServiceInfo) SetComplete(complete bool) {
	s.complete = complete
}

func (s *ServiceInfo) Services() []ServiceEntry {
	return s.services
}

func (s *ServiceInfo) ClearServices() {
	s.services = s.services[:0]
}

// AddService appends an entry; a block holds at most 15.
func (s *ServiceInfo) AddService(entry ServiceEntry) error {
	if len(s.services) >= maxServices {
		return fmt.Errorf("%w: service info already holds %d entries", ErrWouldOverflow, maxServices)
	}
	s.services = append(s.services, entry)
	return nil
}

// ByteLen is the encoded size including the id byte.
func (s *ServiceInfo) ByteLen() int {
	return svcInfoHeaderLen + len(s.services)*svcEntryLen
}

// Clone returns a deep copy.
func (s *ServiceInfo) Clone() *ServiceInfo {
	out := *s
	out.services = append([]ServiceEntry(nil), s.services...)
	return &out
}

// Equal compares flags and entries in order.
func (s *ServiceInfo) Equal(o *ServiceInfo) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.start != o.start || s.change != o.change || s.complete != o.complete {
		return false
	}
	if len(s.services) != len(o.services) {
		return false
	}
	for i := range s.services {
		if s.services[i] != o.services[i] {
			return false
		}
	}
	return true
}

func (s *ServiceInfo) header() uint8 {
	b := uint8(0x80)
	if s.start {
		b |= 0x40
	}
	if s.change {
		b |= 0x20
	}
	if s.complete {
		b |= 0x10
	}
	return b | uint8(len(s.services))&0x0f
}

// AppendBinary appends the encoded section to dst.
func (s *ServiceInfo) AppendBinary(dst []byte) ([]byte, error) {
	dst = append(dst, svcInfoID, s.header())
	for _, svc := range s.services {
		var err error
		if dst, err = svc.appendTo(dst); err != nil {
			return nil, err
		}
	}
	return dst, nil
}

func (s *ServiceInfo) WriteTo(w io.Writer) (int64, error) {
	b, err := s.AppendBinary(make([]byte, 0, s.ByteLen()))
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	return int64(n), err
}

// FieldOrService is either a Field or a DigitalServiceEntry.
type FieldOrService interface {
	fieldOrService()
}

// Field names a CEA-608 field.
type Field bool

const (
	Field1 Field = true
	Field2 Field = false
)

func (Field) fieldOrService() {}

func (f Field) String() string {
	if f {
		return "field1"
	}
	return "field2"
}

// DigitalServiceEntry names a CEA-708 service.
type DigitalServiceEntry struct {
	Service         uint8
	EasyReader      bool
	WideAspectRatio bool
}

func (DigitalServiceEntry) fieldOrService() {}

// NewDigitalServiceEntry accepts services 1 through 31.
func NewDigitalServiceEntry(service uint8, easyReader, wideAspectRatio bool) (DigitalServiceEntry, error) {
	if service == 0 || service > maxDigitalService {
		return DigitalServiceEntry{}, fmt.Errorf("%w: %d", ErrInvalidServiceNumber, service)
	}
	return DigitalServiceEntry{
		Service:         service,
		EasyReader:      easyReader,
		WideAspectRatio: wideAspectRatio,
	}, nil
}

// ServiceEntry is an ATSC A/65 caption service descriptor entry.
// Language is an ISO 639.2/B code in ISO 8859-1.
type ServiceEntry struct {
	Language [3]byte
	Service  FieldOrService
}

func NewServiceEntry(language [3]byte, service FieldOrService) ServiceEntry {
	return ServiceEntry{Language: language, Service: service}
}

// ParseServiceEntry decodes the six byte ATSC descriptor entry.
// Digital services outside 1 through 31 are rejected.
func ParseServiceEntry(data []byte) (ServiceEntry, error) {
	if len(data) != svcEntryLen-1 {
		return ServiceEntry{}, LengthMismatchError{Expected: svcEntryLen - 1, Actual: len(data)}
	}
	if data[3]&0x40 != 0x40 {
		return ServiceEntry{}, fmt.Errorf("%w: service entry number %#02x", ErrInvalidFixedBits, data[3])
	}
	number := data[3] & 0x3f

	var svc FieldOrService
	if data[3]&0x80 != 0 {
		if number == 0 || number > maxDigitalService {
			return ServiceEntry{}, fmt.Errorf("%w: %d", ErrInvalidServiceNumber, number)
		}
		svc = DigitalServiceEntry{
			Service:         number,
			EasyReader:      data[4]&0x80 != 0,
			WideAspectRatio: data[4]&0x40 != 0,
		}
	} else {
		if data[3]&0x3e != 0x3e {
			return ServiceEntry{}, fmt.Errorf("%w: service entry field %#02x", ErrInvalidFixedBits, data[3])
		}
		svc = Field(number&0x01 == 0)
	}
	if data[4]&0x3f != 0x3f {
		return ServiceEntry{}, fmt.Errorf("%w: service entry flags %#02x", ErrInvalidFixedBits, data[4])
	}
	if data[5] != 0xff {
		return ServiceEntry{}, fmt.Errorf("%w: service entry reserved %#02x", ErrInvalidFixedBits, data[5])
	}
	return ServiceEntry{
		Language: [3]byte{data[0], data[1], data[2]},
		Service:  svc,
	}, nil
}

// appendTo writes the outer header byte and the descriptor entry.
// Field entries always carry service number 0 in the outer header.
func (e ServiceEntry) appendTo(dst []byte) ([]byte, error) {
	switch s := e.Service.(type) {
	case Field:
		b3 := uint8(0x7e)
		if !s {
			b3 |= 0x01
		}
		return append(dst, 0x80, e.Language[0], e.Language[1], e.Language[2], b3, 0x3f, 0xff), nil
	case DigitalServiceEntry:
		if s.Service == 0 || s.Service > maxDigitalService {
			return nil, fmt.Errorf("%w: %d", ErrInvalidServiceNumber, s.Service)
		}
		b4 := uint8(0x3f)
		if s.EasyReader {
			b4 |= 0x80
		}
		if s.WideAspectRatio {
			b4 |= 0x40
		}
		return append(dst, 0x80|s.Service, e.Language[0], e.Language[1], e.Language[2], 0xc0|s.Service, b4, 0xff), nil
	default:
		return nil, fmt.Errorf("cdp: unhandled service type %T", s)
	}
}

// LanguageString decodes Language from ISO 8859-1.
func (e ServiceEntry) LanguageString() string {
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(e.Language[:])
	if err != nil {
		return string(e.Language[:])
	}
	return string(s)
}

// LanguageFromString encodes a three character code to ISO 8859-1.
func LanguageFromString(s string) ([3]byte, error) {
	var lang [3]byte
	b, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return lang, fmt.Errorf("cdp: language %q: %w", s, err)
	}
	if len(b) != len(lang) {
		return lang, fmt.Errorf("cdp: language %q: want 3 characters, got %d", s, len(b))
	}
	copy(lang[:], b)
	return lang, nil
}
