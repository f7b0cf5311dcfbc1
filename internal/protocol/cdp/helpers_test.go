package cdp

import (
	"encoding/hex"
	"strings"
	"testing"
)

const (
	vecTimeCode = "9669183fc1123471d7d9d79872e2ff0221fe4100741234a4"
	vecNoTC     = "9669133f41123472e2ff0221fe4100741234b9"
	vecSvcInfo  = "9669143f3512347" + "3d180656e677e3fff741234bf"
	vecFuture   = "96690f3f011234750245677412348f"
	vecCea608   = "9669133f41123472e2fc2041fd4280741234fe"
)

var eng = [3]byte{'e', 'n', 'g'}

func mustHex(t testing.TB, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
	if err != nil {
		t.Fatalf("hex %q: %v", s, err)
	}
	return b
}

// fixChecksum rewrites the trailing byte after a test mutates a packet.
func fixChecksum(b []byte) []byte {
	b[len(b)-1] = checksum(b[:len(b)-1])
	return b
}

func mutate(t *testing.T, vec string, idx int, v byte) []byte {
	t.Helper()
	b := mustHex(t, vec)
	b[idx] = v
	return fixChecksum(b)
}

func byteSum(b []byte) uint8 {
	var sum uint8
	for _, v := range b {
		sum += v
	}
	return sum
}
