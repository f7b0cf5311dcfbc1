package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/danmuck/cdpctl/internal/protocol/cdp"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadTomlAppliesDefaults(t *testing.T) {
	path := writeFile(t, "cdpctl.toml", `
[writer]
framerate_id = 4
output_padding = false

[log]
level = "debug"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Writer.FramerateID != 4 || cfg.Writer.OutputPadding || !cfg.Writer.Cea608Padding {
		t.Fatalf("writer: %+v", cfg.Writer)
	}
	if cfg.Writer.Language != "eng" || cfg.Server.Addr != ":9300" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.Log.ZerologLevel() != zerolog.DebugLevel {
		t.Fatalf("log level: %v", cfg.Log.ZerologLevel())
	}
	fr, err := cfg.Writer.Framerate()
	if err != nil || fr.Numer() != 30000 {
		t.Fatalf("framerate: %v %v", fr, err)
	}
}

func TestLoadYaml(t *testing.T) {
	path := writeFile(t, "cdpctl.yaml", `
writer:
  framerate_id: 8
  language: spa
server:
  addr: "127.0.0.1:9400"
  cors_origins: ["https://captions.example"]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Writer.FramerateID != 8 || cfg.Writer.Language != "spa" {
		t.Fatalf("writer: %+v", cfg.Writer)
	}
	if cfg.Server.Addr != "127.0.0.1:9400" || len(cfg.Server.CorsOrigins) != 1 {
		t.Fatalf("server: %+v", cfg.Server)
	}
	lang, err := cfg.Writer.LanguageCode()
	if err != nil || lang != [3]byte{'s', 'p', 'a'} {
		t.Fatalf("language: %v %v", lang, err)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		file string
		body string
	}{
		{"framerate", "bad.toml", "[writer]\nframerate_id = 9\n"},
		{"language", "bad.toml", "[writer]\nlanguage = \"en\"\n"},
		{"addr", "bad.yml", "server:\n  addr: \"  \"\n"},
		{"level", "bad.toml", "[log]\nlevel = \"loud\"\n"},
		{"extension", "bad.json", "{}"},
		{"syntax", "bad.toml", "[writer\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeFile(t, tc.file, tc.body)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}

	_, err := Load(writeFile(t, "rate.toml", "[writer]\nframerate_id = 0\n"))
	if !errors.Is(err, cdp.ErrUnknownFramerate) {
		t.Fatalf("expected ErrUnknownFramerate, got %v", err)
	}
}

func TestTemplatesLoadBack(t *testing.T) {
	for _, name := range []string{"cdpctl.toml", "cdpctl.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := WriteTemplate(path, false); err != nil {
				t.Fatalf("write template: %v", err)
			}
			if err := WriteTemplate(path, false); err == nil {
				t.Fatalf("expected refusal to overwrite")
			}
			if err := WriteTemplate(path, true); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			cfg, err := Load(path)
			if err != nil {
				t.Fatalf("load template: %v", err)
			}
			def := Default()
			if cfg.Writer != def.Writer || cfg.Server.Addr != def.Server.Addr || cfg.Log != def.Log {
				t.Fatalf("template drifted from defaults: %+v", cfg)
			}
		})
	}
}

func TestTemplateFormats(t *testing.T) {
	out, err := Template("toml")
	if err != nil {
		t.Fatalf("toml: %v", err)
	}
	if !strings.Contains(out, "framerate_id = 3") {
		t.Fatalf("toml template:\n%s", out)
	}
	if _, err := Template("ini"); err == nil {
		t.Fatalf("expected unknown format error")
	}
}

func TestWriterConfigNewWriter(t *testing.T) {
	wc := Default().Writer
	wc.OutputPadding = false
	wc.Cea608Padding = false
	fr, _ := wc.Framerate()
	var buf strings.Builder
	if err := wc.NewWriter().Write(fr, &buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(buf.String()) != 13 {
		t.Fatalf("unpadded packet length: got=%d", len(buf.String()))
	}
}
