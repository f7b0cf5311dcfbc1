package cea708

// Framerate is the video rate a cc_data section is paced against.
type Framerate struct {
	Numer uint32
	Denom uint32
}

func NewFramerate(numer, denom uint32) Framerate {
	return Framerate{Numer: numer, Denom: denom}
}

// MaxCCCount is the number of cc_data triples one frame may carry (9600 bit/s budget).
func (f Framerate) MaxCCCount() int {
	if f.Numer == 0 {
		return 0
	}
	n := int(600 * uint64(f.Denom) / uint64(f.Numer))
	if n > maxCCCount {
		n = maxCCCount
	}
	return n
}

// Cea608PairsPerFrame is the number of CEA-608 slots per frame, alternating field 1 and 2.
func (f Framerate) Cea608PairsPerFrame() int {
	if f.Numer == 0 {
		return 0
	}
	// round(60 * denom / numer), halves rounded up
	return int((120*uint64(f.Denom)/uint64(f.Numer) + 1) / 2)
}
