package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/cdpctl/internal/config"
	"github.com/danmuck/cdpctl/internal/inspect"
	"github.com/danmuck/cdpctl/internal/logging"
	"github.com/danmuck/cdpctl/internal/observability"
	"github.com/danmuck/cdpctl/internal/server"
)

const usage = `usage: cdpctl <command> [flags]

commands:
  decode   decode CDPs from a file or stdin into JSON
  encode   build CDPs carrying caption text
  serve    run the HTTP decode/encode service
  config   write or validate a configuration file
`

var errUsage = errors.New("usage")

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) && !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "cdpctl: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errUsage
	}
	switch args[0] {
	case "decode":
		return runDecode(args[1:], stdin, stdout, stderr)
	case "encode":
		return runEncode(args[1:], stdout, stderr)
	case "serve":
		return runServe(args[1:], stderr)
	case "config":
		return runConfig(args[1:], stdout, stderr)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// applyLogLevel uses the configured level unless the environment sets one.
func applyLogLevel(cfg config.Config) {
	if os.Getenv(logging.EnvLogLevel) != "" {
		return
	}
	zerolog.SetGlobalLevel(cfg.Log.ZerologLevel())
}

func runDecode(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	fs.SetOutput(stderr)
	asHex := fs.Bool("hex", false, "input is hex text (detected automatically when omitted)")
	pretty := fs.Bool("pretty", false, "indent JSON output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	logging.ConfigureRuntime()

	var in io.Reader = stdin
	if path := fs.Arg(0); path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	if *asHex || inspect.LooksHex(data) {
		if data, err = inspect.ReadInput(bytes.NewReader(data), true); err != nil {
			return err
		}
	}

	views, decodeErr := inspect.NewDecoder().DecodeStream(bytes.NewReader(data))
	enc := json.NewEncoder(stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	for _, v := range views {
		if err := enc.Encode(v); err != nil {
			return err
		}
	}
	return decodeErr
}

func runEncode(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "", "config file (.toml or .yaml)")
	text := fs.String("text", "", "caption text for the CEA-708 service")
	service := fs.Uint("service", 1, "CEA-708 service number")
	sequence := fs.Uint("sequence", 0, "first CDP sequence count")
	framerate := fs.Uint("framerate", 0, "cdp_frame_rate id, 1-8 (config default when 0)")
	timeCode := fs.String("timecode", "", "time code hh:mm:ss:ff, ';' before frames for drop frame")
	descriptor := fs.Bool("descriptor", false, "include a caption service descriptor")
	asHex := fs.Bool("hex", false, "write one hex line per CDP instead of raw bytes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *service > 63 || *sequence > 0xffff || *framerate > 0xff {
		return fmt.Errorf("encode: flag out of range")
	}
	logging.ConfigureRuntime()

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	applyLogLevel(cfg)

	packets, err := inspect.NewEncoder(cfg.Writer).Encode(inspect.EncodeRequest{
		Text:        *text,
		Service:     uint8(*service),
		Sequence:    uint16(*sequence),
		FramerateID: uint8(*framerate),
		TimeCode:    *timeCode,
		Descriptor:  *descriptor,
	})
	if err != nil {
		return err
	}
	log.Debug().Int("packets", len(packets)).Msg("cdpctl: encoded")

	if !*asHex {
		return inspect.WriteFrames(stdout, packets)
	}
	for _, pkt := range packets {
		if _, err := fmt.Fprintln(stdout, hex.EncodeToString(pkt)); err != nil {
			return err
		}
	}
	return nil
}

func runServe(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "", "config file (.toml or .yaml)")
	addr := fs.String("addr", "", "listen address override")
	if err := fs.Parse(args); err != nil {
		return err
	}

	observability.InitLogger("cdpctl")
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	applyLogLevel(cfg)
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	return server.New(cfg).Serve()
}

func runConfig(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(stderr)
	output := fs.String("output", "cdpctl.toml", "output path for config template (.toml or .yaml)")
	force := fs.Bool("force", false, "overwrite existing config file")
	validate := fs.Bool("validate", false, "validate an existing config file")
	input := fs.String("input", "cdpctl.toml", "config path for validation")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *validate {
		if _, err := config.Load(*input); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "validated config at %s\n", *input)
		return nil
	}
	if err := config.WriteTemplate(*output, *force); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote config template to %s\n", *output)
	return nil
}
