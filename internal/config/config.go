package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/danmuck/cdpctl/internal/logging"
	"github.com/danmuck/cdpctl/internal/protocol/cdp"
)

type Config struct {
	Writer WriterConfig `toml:"writer" yaml:"writer"`
	Server ServerConfig `toml:"server" yaml:"server"`
	Log    LogConfig    `toml:"log" yaml:"log"`
}

// WriterConfig drives CDP encoding.
type WriterConfig struct {
	FramerateID   uint8  `toml:"framerate_id" yaml:"framerate_id"`
	OutputPadding bool   `toml:"output_padding" yaml:"output_padding"`
	Cea608Padding bool   `toml:"cea608_padding" yaml:"cea608_padding"`
	Language      string `toml:"language" yaml:"language"`
}

type ServerConfig struct {
	Addr        string   `toml:"addr" yaml:"addr"`
	CorsOrigins []string `toml:"cors_origins" yaml:"cors_origins"`
}

type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
}

func Default() Config {
	return Config{
		Writer: WriterConfig{
			FramerateID:   3,
			OutputPadding: true,
			Cea608Padding: true,
			Language:      "eng",
		},
		Server: ServerConfig{
			Addr:        ":9300",
			CorsOrigins: []string{"http://localhost:3000"},
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads a TOML or YAML file over the defaults, chosen by extension.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return Config{}, fmt.Errorf("config load failed (%s): unsupported extension %q", path, ext)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	cfg.Writer.Language = strings.TrimSpace(cfg.Writer.Language)
	cfg.Server.Addr = strings.TrimSpace(cfg.Server.Addr)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if _, err := cfg.Writer.Framerate(); err != nil {
		return err
	}
	if _, err := cfg.Writer.LanguageCode(); err != nil {
		return fmt.Errorf("writer config: %w", err)
	}
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return fmt.Errorf("server config missing addr")
	}
	for i, origin := range cfg.Server.CorsOrigins {
		if strings.TrimSpace(origin) == "" {
			return fmt.Errorf("server config cors_origins[%d] is empty", i)
		}
	}
	if cfg.Log.Level != "" {
		if _, ok := logging.ParseLevel(cfg.Log.Level); !ok {
			return fmt.Errorf("log config: unknown level %q", cfg.Log.Level)
		}
	}
	return nil
}

func (w WriterConfig) Framerate() (cdp.Framerate, error) {
	fr, ok := cdp.FramerateFromID(w.FramerateID)
	if !ok {
		return cdp.Framerate{}, fmt.Errorf("writer config: %w: framerate_id %d", cdp.ErrUnknownFramerate, w.FramerateID)
	}
	return fr, nil
}

func (w WriterConfig) LanguageCode() ([3]byte, error) {
	return cdp.LanguageFromString(w.Language)
}

// NewWriter builds a cdp.Writer with the configured padding.
func (w WriterConfig) NewWriter() *cdp.Writer {
	out := cdp.NewWriter()
	out.SetOutputPadding(w.OutputPadding)
	out.SetOutputCea608Padding(w.Cea608Padding)
	return out
}

func (l LogConfig) ZerologLevel() zerolog.Level {
	lvl, _ := logging.ParseLevel(l.Level)
	return lvl
}
