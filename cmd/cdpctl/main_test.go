package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/cdpctl/internal/protocol/cdp"
	"github.com/danmuck/cdpctl/internal/testutil/testlog"
)

const vecFuture = "96690f3f011234750245677412348f"

func TestDecodeHexFile(t *testing.T) {
	testlog.Start(t)

	path := filepath.Join(t.TempDir(), "in.hex")
	if err := os.WriteFile(path, []byte(vecFuture+"\n"+vecFuture+"\n"), 0o600); err != nil {
		t.Fatalf("write input: %v", err)
	}
	var stdout, stderr bytes.Buffer
	if err := run([]string{"decode", path}, nil, &stdout, &stderr); err != nil {
		t.Fatalf("decode: %v stderr=%s", err, stderr.String())
	}
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 json lines, got %d: %s", len(lines), stdout.String())
	}
	var v struct {
		Sequence       uint16 `json:"sequence"`
		FutureSections []struct {
			ID   uint8  `json:"id"`
			Data string `json:"data"`
		} `json:"future_sections"`
	}
	if err := json.Unmarshal([]byte(lines[0]), &v); err != nil {
		t.Fatalf("json: %v", err)
	}
	if v.Sequence != 0x1234 || len(v.FutureSections) != 1 || v.FutureSections[0].Data != "4567" {
		t.Fatalf("view: %+v", v)
	}
}

func TestEncodeThenDecodeStdin(t *testing.T) {
	var raw, stderr bytes.Buffer
	args := []string{"encode", "-text", "Caption", "-sequence", "42", "-timecode", "00:00:10:05", "-framerate", "4"}
	if err := run(args, nil, &raw, &stderr); err != nil {
		t.Fatalf("encode: %v stderr=%s", err, stderr.String())
	}
	pkt, err := cdp.Decode(raw.Bytes())
	if err != nil {
		t.Fatalf("encoded packet does not decode: %v", err)
	}
	if pkt.Sequence != 42 || pkt.Framerate.ID() != 4 || pkt.TimeCode.String() != "00:00:10:05" {
		t.Fatalf("packet: %+v", pkt)
	}

	var out bytes.Buffer
	if err := run([]string{"decode", "-"}, bytes.NewReader(raw.Bytes()), &out, &stderr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(out.String(), `"text":"Caption"`) {
		t.Fatalf("decoded output: %s", out.String())
	}
}

func TestEncodeHexOutput(t *testing.T) {
	var out, stderr bytes.Buffer
	if err := run([]string{"encode", "-hex", "-text", "x"}, nil, &out, &stderr); err != nil {
		t.Fatalf("encode: %v", err)
	}
	line := strings.TrimSpace(out.String())
	b, err := hex.DecodeString(line)
	if err != nil {
		t.Fatalf("hex output: %v", err)
	}
	if _, err := cdp.Decode(b); err != nil {
		t.Fatalf("decode hex output: %v", err)
	}
}

func TestDecodeReportsBadPacket(t *testing.T) {
	bad := vecFuture[:len(vecFuture)-2] + "00"
	var out, stderr bytes.Buffer
	err := run([]string{"decode", "-hex"}, strings.NewReader(bad), &out, &stderr)
	if !errors.Is(err, cdp.ErrChecksumFailed) {
		t.Fatalf("expected checksum error, got %v", err)
	}
}

func TestConfigWriteAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cdpctl.yaml")
	var out, stderr bytes.Buffer
	if err := run([]string{"config", "-output", path}, nil, &out, &stderr); err != nil {
		t.Fatalf("config write: %v", err)
	}
	if err := run([]string{"config", "-output", path}, nil, &out, &stderr); err == nil {
		t.Fatalf("expected refusal to overwrite")
	}
	if err := run([]string{"config", "-validate", "-input", path}, nil, &out, &stderr); err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(out.String(), "validated config") {
		t.Fatalf("output: %s", out.String())
	}
}

func TestUnknownCommand(t *testing.T) {
	var out, stderr bytes.Buffer
	if err := run(nil, nil, &out, &stderr); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if err := run([]string{"bogus"}, nil, &out, &stderr); err == nil {
		t.Fatalf("expected error for unknown command")
	}
	if !strings.Contains(stderr.String(), "usage: cdpctl") {
		t.Fatalf("usage not printed: %s", stderr.String())
	}
}
