package config

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	FormatText = "text"
	FormatJSON = "json"

	DefaultTimeout  = 5 * time.Second
	DefaultLogLevel = "warn"

	// MaxTimeout caps the per-query timeout; a single hardware query that
	// needs longer than this is treated as broken.
	MaxTimeout = 2 * time.Minute
)

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Config struct {
	Format       string        `mapstructure:"format"`
	QueryTimeout time.Duration `mapstructure:"timeout"`
	Logging      LoggingConfig `mapstructure:"logging"`

	Version string `mapstructure:"-"` // set from ldflags at build time; empty in dev builds
}

// Default returns the configuration used when no file or flag overrides it.
func Default() *Config {
	return &Config{
		Format:       FormatText,
		QueryTimeout: DefaultTimeout,
		Logging:      LoggingConfig{Level: DefaultLogLevel, Format: FormatText},
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// command-line flags, in increasing order of precedence. Only flags that are
// defined in flags are bound; the environment is never consulted.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("format", d.Format)
	v.SetDefault("timeout", d.QueryTimeout)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"format":    "format",
	"timeout":   "timeout",
	"log-level": "logging.level",
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag --%s: %w", name, err)
		}
	}
	return nil
}

// Validate checks every field and fails fast on the first error.
func (c *Config) Validate() error {
	switch c.Format {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("unknown output format %q (expected %s or %s)", c.Format, FormatText, FormatJSON)
	}

	if c.QueryTimeout <= 0 {
		return errors.New("query timeout must be positive")
	}
	if c.QueryTimeout > MaxTimeout {
		return fmt.Errorf("query timeout %s exceeds the maximum of %s", c.QueryTimeout, MaxTimeout)
	}

	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("error parsing log level: %w", err)
	}
	switch strings.ToLower(c.Logging.Format) {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}

	return nil
}

// ConfigureLogger points the standard logrus logger at w with the configured
// level and format. The report itself never goes through the logger.
func (c *Config) ConfigureLogger(w io.Writer) error {
	level, err := logrus.ParseLevel(c.Logging.Level)
	if err != nil {
		return fmt.Errorf("error parsing log level: %w", err)
	}

	logrus.SetOutput(w)
	logrus.SetLevel(level)

	switch strings.ToLower(c.Logging.Format) {
	case FormatJSON:
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:          true,
			DisableLevelTruncation: true,
		})
	}

	logrus.WithFields(logrus.Fields{
		"format":    c.Format,
		"timeout":   c.QueryTimeout,
		"log_level": level.String(),
	}).Debug("Configuration loaded")

	return nil
}
