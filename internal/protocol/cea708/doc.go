// Package cea708 frames and unframes the caption payload carried in a cc_data section.
//
// Ownership boundary:
// - cc_data triples (CEA-608 byte pairs and CEA-708 DTVCC packet bytes)
// - DTVCC packet and service block headers
// - tokenizing service block data into CEA-708 codes
//
// Caption text semantics (window commands, pen attributes, 608 control codes) are not
// interpreted here.
package cea708
