package cdp

const (
	flagTimeCodePresent      uint8 = 0x80
	flagCCDataPresent        uint8 = 0x40
	flagSvcInfoPresent       uint8 = 0x20
	flagSvcInfoStart         uint8 = 0x10
	flagSvcInfoChange        uint8 = 0x08
	flagSvcInfoComplete      uint8 = 0x04
	flagCaptionServiceActive uint8 = 0x02
	flagReserved             uint8 = 0x01
)

// flags is the decoded header flags byte.
type flags struct {
	timeCode             bool
	ccData               bool
	svcInfo              bool
	svcInfoStart         bool
	svcInfoChange        bool
	svcInfoComplete      bool
	captionServiceActive bool
	reserved             bool
}

func decodeFlags(b uint8) flags {
	return flags{
		timeCode:             b&flagTimeCodePresent != 0,
		ccData:               b&flagCCDataPresent != 0,
		svcInfo:              b&flagSvcInfoPresent != 0,
		svcInfoStart:         b&flagSvcInfoStart != 0,
		svcInfoChange:        b&flagSvcInfoChange != 0,
		svcInfoComplete:      b&flagSvcInfoComplete != 0,
		captionServiceActive: b&flagCaptionServiceActive != 0,
		reserved:             b&flagReserved != 0,
	}
}

// encode always sets the reserved bit.
func (f flags) encode() uint8 {
	b := flagReserved
	set := func(on bool, bit uint8) {
		if on {
			b |= bit
		}
	}
	set(f.timeCode, flagTimeCodePresent)
	set(f.ccData, flagCCDataPresent)
	set(f.svcInfo, flagSvcInfoPresent)
	set(f.svcInfoStart, flagSvcInfoStart)
	set(f.svcInfoChange, flagSvcInfoChange)
	set(f.svcInfoComplete, flagSvcInfoComplete)
	set(f.captionServiceActive, flagCaptionServiceActive)
	return b
}
