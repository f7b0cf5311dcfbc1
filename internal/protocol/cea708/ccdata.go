package cea708

const (
	maxCCCount = 0x1f

	ccMarker      byte = 0xf8
	ccValid       byte = 0x04
	ccTypeMask    byte = 0x03
	ccTypeField1  byte = 0x00
	ccTypeField2  byte = 0x01
	ccTypeDTVCC   byte = 0x02
	ccTypeDTVCCSt byte = 0x03

	// cc_data header: process_em_data_flag | process_cc_data_flag | cc_count
	ccDataFlags byte = 0x80 | 0x40
	emData      byte = 0xff
)

// CCDataHeader builds the two-byte header that precedes count triples.
func CCDataHeader(count int) [2]byte {
	return [2]byte{ccDataFlags | byte(count)&maxCCCount, emData}
}
