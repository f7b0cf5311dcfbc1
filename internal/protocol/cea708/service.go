package cea708

import (
	"bytes"
	"fmt"

	"github.com/icza/bitio"
)

const (
	maxServiceBlockData = 0x1f
	maxServiceNumber    = 0x3f
	extendedServiceNo   = 7
)

// Service is one service block: a service number and the codes addressed to it.
type Service struct {
	number uint8
	codes  []Code
}

func NewService(number uint8) Service {
	return Service{number: number}
}

func (s Service) Number() uint8 {
	return s.number
}

func (s Service) Codes() []Code {
	return s.codes
}

// PushCode appends c unless the block data would exceed 31 bytes.
func (s *Service) PushCode(c Code) error {
	if s.dataLen()+c.Len() > maxServiceBlockData {
		return fmt.Errorf("%w: service %d block data", ErrWouldOverflow, s.number)
	}
	s.codes = append(s.codes, c)
	return nil
}

// PushText appends the codes for text, all or nothing.
func (s *Service) PushText(text string) error {
	codes, err := CodesFromText(text)
	if err != nil {
		return err
	}
	n := s.dataLen()
	for _, c := range codes {
		n += c.Len()
	}
	if n > maxServiceBlockData {
		return fmt.Errorf("%w: service %d block data", ErrWouldOverflow, s.number)
	}
	s.codes = append(s.codes, codes...)
	return nil
}

// Len is the encoded size of the block, header included.
func (s Service) Len() int {
	return s.headerLen() + s.dataLen()
}

func (s Service) headerLen() int {
	if s.number >= extendedServiceNo {
		return 2
	}
	return 1
}

func (s Service) dataLen() int {
	n := 0
	for _, c := range s.codes {
		n += c.Len()
	}
	return n
}

func (s Service) appendTo(dst []byte) ([]byte, error) {
	var hdr bytes.Buffer
	w := bitio.NewWriter(&hdr)
	size := uint64(s.dataLen())
	if s.number >= extendedServiceNo {
		w.TryWriteBits(extendedServiceNo, 3)
		w.TryWriteBits(size, 5)
		w.TryWriteBits(0, 2)
		w.TryWriteBits(uint64(s.number), 6)
	} else {
		w.TryWriteBits(uint64(s.number), 3)
		w.TryWriteBits(size, 5)
	}
	if w.TryError != nil {
		return nil, fmt.Errorf("cea708: service %d header: %w", s.number, w.TryError)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("cea708: service %d header: %w", s.number, err)
	}
	dst = append(dst, hdr.Bytes()...)
	for _, c := range s.codes {
		dst = append(dst, c.raw...)
	}
	return dst, nil
}

// parseService decodes one service block from the start of data and returns the
// number of bytes consumed.
func parseService(data []byte) (Service, int, error) {
	r := bitio.NewReader(bytes.NewReader(data))
	number, err := r.ReadBits(3)
	if err != nil {
		return Service{}, 0, LengthMismatchError{Expected: 1, Actual: len(data)}
	}
	size, err := r.ReadBits(5)
	if err != nil {
		return Service{}, 0, LengthMismatchError{Expected: 1, Actual: len(data)}
	}
	hdrLen := 1
	if number == extendedServiceNo {
		if _, err := r.ReadBits(2); err != nil {
			return Service{}, 0, LengthMismatchError{Expected: 2, Actual: len(data)}
		}
		ext, err := r.ReadBits(6)
		if err != nil {
			return Service{}, 0, LengthMismatchError{Expected: 2, Actual: len(data)}
		}
		if ext < extendedServiceNo {
			return Service{}, 0, fmt.Errorf("%w: extended header carries %d", ErrInvalidServiceNumber, ext)
		}
		number = ext
		hdrLen = 2
	}
	end := hdrLen + int(size)
	if len(data) < end {
		return Service{}, 0, LengthMismatchError{Expected: end, Actual: len(data)}
	}
	codes, err := ParseCodes(data[hdrLen:end])
	if err != nil {
		return Service{}, 0, fmt.Errorf("service %d: %w", number, err)
	}
	return Service{number: uint8(number), codes: codes}, end, nil
}
