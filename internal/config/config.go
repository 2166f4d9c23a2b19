// Package config loads vibe-amr settings from a YAML file, environment
// variables and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix is the prefix for environment overrides, e.g. VIBE_AMR_LOG_LEVEL.
const EnvPrefix = "VIBE_AMR"

// FileName is the default config file name in the user's home directory.
const FileName = ".vibe-amr.yaml"

// Config holds all settings for a run.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Reference ReferenceConfig `mapstructure:"reference"`
	Targets   TargetsConfig   `mapstructure:"targets"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Report    ReportConfig    `mapstructure:"report"`
	Matching  MatchingConfig  `mapstructure:"matching"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
}

// LogConfig sets the log level and destination.
type LogConfig struct {
	Level string `mapstructure:"level"`
	// File is the log output path. Empty logs to stderr.
	File string `mapstructure:"file"`
}

// ReferenceConfig locates the graded reference mutation catalog.
type ReferenceConfig struct {
	Path string `mapstructure:"path"`
}

// TargetsConfig locates the comma-delimited genes-of-interest list.
type TargetsConfig struct {
	Path string `mapstructure:"path"`
}

// PipelineConfig names the pipeline recorded in each report.
type PipelineConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// ReportConfig holds report presentation settings.
type ReportConfig struct {
	Title string `mapstructure:"title"`
}

// MatchingConfig tunes resistance matching.
type MatchingConfig struct {
	// KeepSingleChangeGenes reports genes with a single nucleotide change
	// instead of dropping them.
	KeepSingleChangeGenes bool `mapstructure:"keep_single_change_genes"`
}

// ArchiveConfig locates the DuckDB report archive. Empty disables archiving.
type ArchiveConfig struct {
	Path string `mapstructure:"path"`
}

// New returns a viper instance with defaults and environment binding set.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// SetDefaults registers default values for every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("reference.path", "")
	v.SetDefault("targets.path", "")
	v.SetDefault("pipeline.name", "UVP")
	v.SetDefault("pipeline.version", "1.1")
	v.SetDefault("report.title", "Sample Surveillance Report")
	v.SetDefault("matching.keep_single_change_genes", false)
	v.SetDefault("archive.path", "")
}

// ReadFile reads the config file at path, or ~/.vibe-amr.yaml when path is
// empty. A missing default file is not an error.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		v.SetConfigFile(filepath.Join(home, FileName))
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || (path == "" && errors.Is(err, os.ErrNotExist)) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// Decode unmarshals v into a validated Config.
func Decode(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks values that cannot be checked by type alone.
func (c Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	return nil
}
