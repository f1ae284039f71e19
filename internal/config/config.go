// Package config provides the configuration of the filediff CLI.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// FileName is the optional config file looked up in ConfigPath, without extension.
const FileName = "filediff"

// EnvPrefix prefixes environment overrides, e.g. FILEDIFF_DEBUG=true.
const EnvPrefix = "FILEDIFF"

type Config struct {
	Debug      bool   `json:"debug" yaml:"debug" mapstructure:"debug"`
	ConfigPath string `json:"configPath" yaml:"configPath" mapstructure:"configPath"`
	Color      bool   `json:"color" yaml:"color" mapstructure:"color"`

	// Kind overrides the kind resolved from the input files.
	Kind            string `json:"kind" yaml:"kind" mapstructure:"kind"`
	DifferencesOnly bool   `json:"differencesOnly" yaml:"differencesOnly" mapstructure:"differencesOnly"`
	Validate        bool   `json:"validate" yaml:"validate" mapstructure:"validate"`
	MaxRows         int    `json:"maxRows" yaml:"maxRows" mapstructure:"maxRows"`

	Out           string `json:"out" yaml:"out" mapstructure:"out"`
	Bundle        string `json:"bundle" yaml:"bundle" mapstructure:"bundle"`
	Patch         string `json:"patch" yaml:"patch" mapstructure:"patch"`
	PatchContext  int    `json:"patchContext" yaml:"patchContext" mapstructure:"patchContext"`
	PatchNoPrefix bool   `json:"patchNoPrefix" yaml:"patchNoPrefix" mapstructure:"patchNoPrefix"`
	MaxPatchBytes int    `json:"maxPatchBytes" yaml:"maxPatchBytes" mapstructure:"maxPatchBytes"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		ConfigPath:    ".",
		Color:         true,
		Validate:      true,
		MaxRows:       50,
		PatchContext:  3,
		MaxPatchBytes: 8 << 20,
	}
}

// AddPersistentFlags registers the flags shared by every command.
func AddPersistentFlags(fs *pflag.FlagSet, cfg Config) {
	fs.Bool("debug", cfg.Debug, "Run in debug mode")
	fs.String("configPath", cfg.ConfigPath, "Directory holding "+FileName+".yaml")
	fs.Bool("color", cfg.Color, "Colour terminal output")
}

// AddCompareFlags registers the flags of the commands that produce a result.
func AddCompareFlags(fs *pflag.FlagSet, cfg Config) {
	fs.StringP("kind", "k", cfg.Kind, "File kind (csv, xlsx, xml); resolved from the inputs when empty")
	fs.BoolP("differencesOnly", "d", cfg.DifferencesOnly, "Show only records that contain a difference")
	fs.Bool("validate", cfg.Validate, "Check result invariants before writing")
	fs.Int("maxRows", cfg.MaxRows, "Rows to print in the terminal view (0 = all)")
	fs.StringP("out", "o", cfg.Out, "Write the result JSON to this path (a directory gets the dated download name)")
	fs.String("bundle", cfg.Bundle, "Write a ZIP report bundle to this path")
	fs.String("patch", cfg.Patch, "Write a unified patch of source vs target to this path")
	fs.Int("patchContext", cfg.PatchContext, "Context lines in the unified patch (0 = changed lines only)")
	fs.Bool("patchNoPrefix", cfg.PatchNoPrefix, "Omit the a/ and b/ prefixes from the patch headers")
	fs.Int("maxPatchBytes", cfg.MaxPatchBytes, "Replace the patch with a placeholder above this size (0 = no limit)")
}

// Load merges defaults, the optional config file, FILEDIFF_* environment
// variables and the flags that were set, in increasing precedence.
// A missing config file is not an error.
func Load(v *viper.Viper, flags *pflag.FlagSet) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("failed to bind flags to config: %w", err)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	configPath := v.GetString("configPath")
	if configPath == "" {
		configPath = "."
	}
	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal the config: %w", err)
	}
	if cfg.MaxRows < 0 {
		return nil, fmt.Errorf("maxRows must be >= 0 (got %d)", cfg.MaxRows)
	}
	if cfg.PatchContext < 0 {
		return nil, fmt.Errorf("patchContext must be >= 0 (got %d)", cfg.PatchContext)
	}
	return &cfg, nil
}

// ConfigFileUsed reports the config file viper read, if any.
func ConfigFileUsed(v *viper.Viper) string {
	if v == nil {
		return ""
	}
	return v.ConfigFileUsed()
}
