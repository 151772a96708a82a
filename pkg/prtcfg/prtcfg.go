// Package prtcfg loads parrot configuration from a YAML (or JSON) file.
package prtcfg

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/txn2/parrot/pkg/prtreducer"
)

// Config is the parrot configuration. Key names follow the config.json
// used by existing repeater installs, so that file can be loaded as is.
type Config struct {
	// Station callsign shown in the header
	Callsign string `yaml:"callsign"`

	// Log server (parrot serve)
	LogDir          string   `yaml:"log_dir"`
	LogFile         string   `yaml:"log_file"`
	LogPrefix       string   `yaml:"log_prefix"`
	SecondaryPrefix string   `yaml:"secondary_prefix"`
	Host            string   `yaml:"host"`
	APIPort         int      `yaml:"api_port"`
	WebPort         int      `yaml:"web_port"`
	CORSOrigins     []string `yaml:"cors_origins"`

	// Monitor (parrot watch)
	ServerURL     string        `yaml:"server_url"`
	TickInterval  time.Duration `yaml:"tick_interval"`
	BlinkInterval time.Duration `yaml:"blink_interval"`
	Dedup         string        `yaml:"dedup"`
	HistoryLimit  int           `yaml:"history_limit"`
	Theme         string        `yaml:"theme"`

	Debug bool `yaml:"debug"`
}

// Defaults
const (
	DefaultHost            = "0.0.0.0"
	DefaultAPIPort         = 8000
	DefaultWebPort         = 8080
	DefaultLogDir          = "/var/log/pi-star"
	DefaultLogPrefix       = "MMDVM"
	DefaultSecondaryPrefix = "YSFGateway"
	DefaultTickInterval    = 100 * time.Millisecond
	DefaultBlinkInterval   = 500 * time.Millisecond
)

// Default returns a configuration with every default applied
func Default() *Config {
	return &Config{
		LogDir:          DefaultLogDir,
		LogPrefix:       DefaultLogPrefix,
		SecondaryPrefix: DefaultSecondaryPrefix,
		Host:            DefaultHost,
		APIPort:         DefaultAPIPort,
		WebPort:         DefaultWebPort,
		TickInterval:    DefaultTickInterval,
		BlinkInterval:   DefaultBlinkInterval,
		Dedup:           prtreducer.DedupFull.String(),
		Theme:           "auto",
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}

	if err := Parse(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	return cfg, nil
}

// Parse unmarshals YAML or JSON data into cfg, keeping values that the
// data does not set
func Parse(data []byte, cfg *Config) error {
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}
	return raw.apply(cfg)
}

// rawConfig accepts the loose typing of hand-written config.json files,
// where booleans may be the strings "True"/"False" and durations may be
// given in milliseconds
type rawConfig struct {
	Callsign        *string  `yaml:"callsign"`
	LogDir          *string  `yaml:"log_dir"`
	LogFile         *string  `yaml:"log_file"`
	LogPrefix       *string  `yaml:"log_prefix"`
	SecondaryPrefix *string  `yaml:"secondary_prefix"`
	Host            *string  `yaml:"host"`
	APIPort         *int     `yaml:"api_port"`
	WebPort         *int     `yaml:"web_port"`
	CORSOrigins     []string `yaml:"cors_origins"`
	ServerURL       *string  `yaml:"server_url"`
	TickInterval    *string  `yaml:"tick_interval"`
	BlinkInterval   *string  `yaml:"blink_interval"`
	Dedup           *string  `yaml:"dedup"`
	HistoryLimit    *int     `yaml:"history_limit"`
	Theme           *string  `yaml:"theme"`
	Debug           *string  `yaml:"debug"`
}

func (r rawConfig) apply(cfg *Config) error {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setString(&cfg.Callsign, r.Callsign)
	setString(&cfg.LogDir, r.LogDir)
	setString(&cfg.LogFile, r.LogFile)
	setString(&cfg.LogPrefix, r.LogPrefix)
	setString(&cfg.SecondaryPrefix, r.SecondaryPrefix)
	setString(&cfg.Host, r.Host)
	setString(&cfg.ServerURL, r.ServerURL)
	setString(&cfg.Dedup, r.Dedup)
	setString(&cfg.Theme, r.Theme)

	if r.APIPort != nil {
		cfg.APIPort = *r.APIPort
	}
	if r.WebPort != nil {
		cfg.WebPort = *r.WebPort
	}
	if r.HistoryLimit != nil {
		cfg.HistoryLimit = *r.HistoryLimit
	}
	if r.CORSOrigins != nil {
		cfg.CORSOrigins = r.CORSOrigins
	}

	if r.TickInterval != nil {
		d, err := ParseDuration(*r.TickInterval)
		if err != nil {
			return errors.Wrap(err, "tick_interval")
		}
		cfg.TickInterval = d
	}
	if r.BlinkInterval != nil {
		d, err := ParseDuration(*r.BlinkInterval)
		if err != nil {
			return errors.Wrap(err, "blink_interval")
		}
		cfg.BlinkInterval = d
	}
	if r.Debug != nil {
		b, err := ParseBool(*r.Debug)
		if err != nil {
			return errors.Wrap(err, "debug")
		}
		cfg.Debug = b
	}
	return nil
}

// ParseDuration accepts Go durations ("250ms") or bare milliseconds ("250")
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	d, err := time.ParseDuration(s + "ms")
	if err != nil {
		return 0, errors.Errorf("invalid duration %q", s)
	}
	return d, nil
}

// ParseBool accepts true/false in any case, including "True" and "False"
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1", "on":
		return true, nil
	case "false", "no", "0", "off", "":
		return false, nil
	default:
		return false, errors.Errorf("invalid boolean %q", s)
	}
}

// Validate checks values that cannot be defaulted
func (c *Config) Validate() error {
	if c.APIPort < 0 || c.APIPort > 65535 {
		return errors.Errorf("api_port %d out of range", c.APIPort)
	}
	if c.WebPort < 0 || c.WebPort > 65535 {
		return errors.Errorf("web_port %d out of range", c.WebPort)
	}
	if c.TickInterval < 0 || c.BlinkInterval < 0 {
		return errors.New("intervals must not be negative")
	}
	if c.HistoryLimit < 0 {
		return errors.Errorf("history_limit %d must not be negative", c.HistoryLimit)
	}
	if _, ok := prtreducer.ParseDedupMode(c.Dedup); !ok {
		return errors.Errorf("unknown dedup mode %q (use full or ignore-timestamp)", c.Dedup)
	}
	switch strings.ToLower(c.Theme) {
	case "", "auto", "dark", "light":
	default:
		return errors.Errorf("unknown theme %q (use auto, dark or light)", c.Theme)
	}
	return nil
}

// DedupMode returns the parsed dedup mode
func (c *Config) DedupMode() prtreducer.DedupMode {
	mode, _ := prtreducer.ParseDedupMode(c.Dedup)
	return mode
}

// PrimaryLog returns the explicit primary log file, or empty when the
// newest LogPrefix file in LogDir should be used
func (c *Config) PrimaryLog() string {
	return c.LogFile
}

// ResolveDir returns the directory override logs are searched in. When only
// LogFile is set its directory is used.
func (c *Config) ResolveDir() string {
	if c.LogDir != "" {
		return c.LogDir
	}
	if c.LogFile != "" {
		return filepath.Dir(c.LogFile)
	}
	return DefaultLogDir
}
