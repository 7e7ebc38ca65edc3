package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/derekprior/wcsched/internal/units"
)

// EnvPrefix prefixes every environment override, e.g. WCSCHED_UNIT=mi.
const EnvPrefix = "WCSCHED_"

// Settings are the runtime knobs of the CLI, separate from the tournament
// reference tables.
type Settings struct {
	// Tournament is a path to a tournament YAML file. Empty uses the
	// embedded default.
	Tournament string `koanf:"tournament"`

	// Official and Optimal are the baseline schedule files (.csv or .xlsx).
	Official string `koanf:"official"`
	Optimal  string `koanf:"optimal"`

	// Unit forces the distance unit ("km" or "mi"). Empty derives it from Locale.
	Unit string `koanf:"unit"`

	// Locale is a hint like "en_US.UTF-8"; defaults to $LANG.
	Locale string `koanf:"locale"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
}

// NewSettings returns Settings populated with defaults.
func NewSettings() *Settings {
	return &Settings{
		Official: "data/official.csv",
		Optimal:  "data/optimal.csv",
		Locale:   os.Getenv("LANG"),
		LogLevel: "warn",
	}
}

// LoadSettings layers defaults, an optional YAML file and WCSCHED_*
// environment variables, in increasing precedence.
func LoadSettings(path string) (*Settings, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading settings file: %w", err)
		}
	}

	// WCSCHED_LOG_LEVEL -> log_level
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("reading settings env: %w", err)
	}

	s := *NewSettings()
	if err := k.UnmarshalWithConf("", &s, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the settings values.
func (s Settings) Validate() error {
	switch strings.ToLower(s.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidSettings, s.LogLevel)
	}
	if s.Unit != "" {
		if _, err := units.Get(s.Unit); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
		}
	}
	return nil
}
