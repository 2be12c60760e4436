package main

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/dogmatiq/mcpbridge/transport/httptransport"
	"github.com/joeshaw/envdecode"
	"github.com/spf13/pflag"
	"go.uber.org/zap/zapcore"
)

// config is the configuration of the bridge.
//
// Values are read from the environment first, then overridden by flags and
// the positional URL argument.
type config struct {
	URL      string        `env:"MCPBRIDGE_URL"`
	Timeout  time.Duration `env:"MCPBRIDGE_TIMEOUT"`
	LogLevel string        `env:"MCPBRIDGE_LOG_LEVEL,default=warn"`
	Trace    bool          `env:"MCPBRIDGE_TRACE"`
	Metrics  bool          `env:"MCPBRIDGE_METRICS"`

	// Level is the parsed form of LogLevel.
	Level zapcore.Level

	// ShowVersion is true if the --version flag was given.
	ShowVersion bool
}

// errHelp is returned by loadConfig when usage information was requested and
// has been written.
var errHelp = pflag.ErrHelp

// loadConfig builds the configuration from the environment and args.
//
// Usage information and flag errors are written to stderr.
func loadConfig(args []string, stderr io.Writer) (config, error) {
	var cfg config

	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return config{}, fmt.Errorf("invalid environment: %w", err)
	}

	if cfg.URL == "" {
		cfg.URL = httptransport.DefaultURL
	}

	flags := pflag.NewFlagSet("mcpbridge", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "maximum time to wait for each HTTP exchange, 0 means no timeout")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "minimum level of log messages written to stderr (debug, info, warn, error)")
	flags.BoolVar(&cfg.Trace, "trace", cfg.Trace, "write OpenTelemetry spans for each exchange to stderr")
	flags.BoolVar(&cfg.Metrics, "metrics", cfg.Metrics, "write OpenTelemetry metrics to stderr periodically and at exit")
	flags.BoolVar(&cfg.ShowVersion, "version", false, "print the version and exit")
	flags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: mcpbridge [flags] [url]\n\n")
		fmt.Fprintf(stderr, "Bridges newline-delimited JSON-RPC messages on stdin to a streamable HTTP\n")
		fmt.Fprintf(stderr, "endpoint, writing each response to stdout. The default URL is %s.\n\n", httptransport.DefaultURL)
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		return config{}, err
	}

	switch flags.NArg() {
	case 0:
	case 1:
		cfg.URL = flags.Arg(0)
	default:
		return config{}, fmt.Errorf("unexpected argument: %s", flags.Arg(1))
	}

	if err := validateURL(cfg.URL); err != nil {
		return config{}, err
	}

	if cfg.Timeout < 0 {
		return config{}, fmt.Errorf("invalid timeout: %s", cfg.Timeout)
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return config{}, fmt.Errorf("invalid log level: %w", err)
	}
	cfg.Level = level

	return cfg, nil
}

// validateURL returns an error if u is not an absolute HTTP or HTTPS URL.
func validateURL(u string) error {
	parsed, err := url.Parse(u)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid URL (%s): scheme must be http or https", u)
	}

	if parsed.Host == "" {
		return fmt.Errorf("invalid URL (%s): host is required", u)
	}

	return nil
}
