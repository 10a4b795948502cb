// Package options provides configuration management for maskfield.
package options

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tmc/maskfield"
)

// Defaults for the markup the widget produces.
const (
	DefaultShadowSuffix = "-unmasked"
	DefaultMaskedClass  = "masked"
)

// Config holds the configuration for a masked field.
type Config struct {
	// Symbol is the mask symbol. Only its first rune is used.
	Symbol string `yaml:"symbol"`

	// PollInterval is how often the caret guard checks a focused field.
	PollInterval time.Duration `yaml:"pollInterval"`
	// Confine is the caret rule: "selection" or "caret".
	Confine string `yaml:"confine"`
	// LiteralPolicy decides what a typed mask symbol at the tail means: "tail" or "drop".
	LiteralPolicy string `yaml:"literalPolicy"`

	// ShadowSuffix is appended to the original id to form the shadow field's id.
	ShadowSuffix string `yaml:"shadowSuffix"`
	// MaskedClass is appended to the visible field's class list.
	MaskedClass string `yaml:"maskedClass"`

	// Fields lists element ids to mask automatically.
	Fields []string `yaml:"fields"`

	Verbose bool `yaml:"verbose"`
	Debug   bool `yaml:"debug"`
}

// MaskSymbol returns the configured mask rune, or maskfield.DefaultSymbol.
func (c *Config) MaskSymbol() rune {
	if r, _ := utf8.DecodeRuneInString(c.Symbol); r != utf8.RuneError {
		return r
	}
	return maskfield.DefaultSymbol
}

// Rule returns the parsed caret rule.
func (c *Config) Rule() maskfield.ConfineRule { return maskfield.ParseConfineRule(c.Confine) }

// Policy returns the parsed literal policy.
func (c *Config) Policy() maskfield.LiteralPolicy {
	return maskfield.ParseLiteralPolicy(c.LiteralPolicy)
}

// Default returns a Config holding the default values.
func Default() *Config {
	return &Config{
		Symbol:        string(maskfield.DefaultSymbol),
		PollInterval:  maskfield.DefaultPollInterval,
		Confine:       maskfield.ConfineTailSelection.String(),
		LiteralPolicy: maskfield.LiteralAtTail.String(),
		ShadowSuffix:  DefaultShadowSuffix,
		MaskedClass:   DefaultMaskedClass,
	}
}

// LoadConfig loads the configuration from various sources in the following order of precedence:
// 1. Command-line flags (highest priority)
// 2. Environment variables (MASKFIELD_*)
// 3. Configuration file
// 4. Default values (lowest priority)
//
// If a config file is not found, it falls back to using defaults and flags.
func LoadConfig(path string, stderr io.Writer, flagSet *pflag.FlagSet) (*Config, error) {
	if flagSet == nil {
		flagSet = pflag.CommandLine
	}
	if stderr == nil {
		stderr = io.Discard
	}
	cfg := &Config{}
	v := viper.New()

	SetupViper(v, flagSet)
	SetupFlagNormalization(flagSet)
	if path != "" {
		v.SetConfigFile(path)
	}

	// Read config file first
	if err := HandleConfigFile(v, stderr, flagSet); err != nil {
		return nil, err
	}

	// Then bind flags (so they override config)
	if err := v.BindPFlags(flagSet); err != nil {
		return nil, fmt.Errorf("unable to bind flags: %w", err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %w", err)
	}
	if cfg.ShadowSuffix == "" {
		cfg.ShadowSuffix = DefaultShadowSuffix
	}
	if cfg.MaskedClass == "" {
		cfg.MaskedClass = DefaultMaskedClass
	}

	LogConfig(cfg, stderr, flagSet)
	return cfg, nil
}

// IsEnvSet checks if an environment variable is set
func IsEnvSet(key string) bool {
	_, exists := os.LookupEnv(key)
	return exists
}

// SetupViper configures viper with default values and settings
func SetupViper(v *viper.Viper, flagSet *pflag.FlagSet) {
	d := Default()
	v.SetDefault("symbol", d.Symbol)
	v.SetDefault("pollInterval", d.PollInterval)
	v.SetDefault("confine", d.Confine)
	v.SetDefault("literalPolicy", d.LiteralPolicy)
	v.SetDefault("shadowSuffix", d.ShadowSuffix)
	v.SetDefault("maskedClass", d.MaskedClass)

	v.AddConfigPath("/etc/maskfield/")
	v.AddConfigPath("$HOME/.maskfield")
	v.AddConfigPath(".")
	v.SetConfigName("config")

	v.SetEnvPrefix("MASKFIELD")
	v.AutomaticEnv()

	if flagConfigFilePath := flagSet.Lookup("config"); flagConfigFilePath != nil && flagConfigFilePath.Changed {
		v.SetConfigFile(flagConfigFilePath.Value.String())
	}

	_setupViper(v, flagSet)
}

// SetupFlagNormalization configures flag normalization to handle dashes in flag names
func SetupFlagNormalization(flagSet *pflag.FlagSet) {
	normalizeFunc := flagSet.GetNormalizeFunc()
	flagSet.SetNormalizeFunc(func(fs *pflag.FlagSet, name string) pflag.NormalizedName {
		result := normalizeFunc(fs, name)
		name = strings.ReplaceAll(string(result), "-", "")
		return pflag.NormalizedName(name)
	})
}

// HandleConfigFile handles loading the configuration file
func HandleConfigFile(v *viper.Viper, stderr io.Writer, flagSet *pflag.FlagSet) error {
	verbose, _ := flagSet.GetBool("verbose")
	if configFlag := flagSet.Lookup("config"); configFlag != nil && configFlag.Changed {
		configFile := configFlag.Value.String()
		if verbose {
			fmt.Fprintf(stderr, "maskfield: trying to read config file: %s\n", configFile)
		}
		if _, err := os.Stat(configFile); err != nil {
			if verbose {
				fmt.Fprintf(stderr, "maskfield: config file %s not accessible: %v\n", configFile, err)
			}
			return nil
		}
		v.SetConfigFile(configFile)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if verbose {
				fmt.Fprintln(stderr, "maskfield: config file not found, using defaults")
			}
			return nil
		}
		if os.IsNotExist(err) {
			if verbose {
				fmt.Fprintf(stderr, "maskfield: config file %s not found, using defaults\n", v.ConfigFileUsed())
			}
			return nil
		}
		return fmt.Errorf("unable to read config file: %w", err)
	}

	if verbose {
		fmt.Fprintf(stderr, "maskfield: successfully read config from %s\n", v.ConfigFileUsed())
	}
	return nil
}

// LogConfig logs the final configuration
func LogConfig(cfg *Config, stderr io.Writer, flagSet *pflag.FlagSet) {
	if verbose, _ := flagSet.GetBool("verbose"); verbose {
		fmt.Fprint(stderr, "maskfield-config: ")
		json.NewEncoder(stderr).Encode(cfg)
	}
}
