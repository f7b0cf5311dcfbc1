// Package cdp reads and writes Caption Distribution Packets (SMPTE 334-2).
//
// Ownership boundary:
// - packet header, flags, time code, service descriptor and footer sections
// - length, checksum and cross-section consistency checks
// - handing cc_data triples to and from the cea708 codec
//
// Parser and Writer are single-stream sessions and are not safe for concurrent use.
package cdp
