// Package config loads vulgata's YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/vulgata/core/errors"
	"github.com/FocuswithJustin/vulgata/internal/validation"
)

// DefaultSource is the Clementine Vulgate JSON published by scrollmapper.
const DefaultSource = "https://raw.githubusercontent.com/scrollmapper/bible_databases/master/sources/la/VulgClementine/VulgClementine.json"

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = "vulgata.yaml"

// Config holds all vulgata configuration.
type Config struct {
	// DataDir holds one <slug>.json file per book.
	DataDir string `yaml:"data_dir"`
	// OutDir is the root of the generated site.
	OutDir string `yaml:"out_dir"`
	// AssetDir is relative to OutDir and receives books.json and client assets.
	AssetDir string `yaml:"asset_dir"`
	// Template overrides the built-in page template when set.
	Template string `yaml:"template"`

	Source       string `yaml:"source"`
	FetchTimeout string `yaml:"fetch_timeout"`

	TitlePrefix string `yaml:"title_prefix"`
	HomeTitle   string `yaml:"home_title"`
	HomePrompt  string `yaml:"home_prompt"`

	EscapeHTML bool `yaml:"escape_html"`
	Clean      bool `yaml:"clean"`

	Log LogConfig `yaml:"log"`
}

// LogConfig configures internal/logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		DataDir:     "data",
		OutDir:      "docs",
		AssetDir:    "assets",
		Source:      DefaultSource,
		TitlePrefix: "Vulgata",
		HomeTitle:   "Vulgata — Seleção",
		HomePrompt:  "Selecione um livro e um capítulo para abrir o texto.",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.NewIO("read config", path, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewParse("YAML", path, err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.NewIO("create config directory", dir, err)
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.NewIO("write config", path, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("VULGATA_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("VULGATA_OUT_DIR"); v != "" {
		c.OutDir = v
	}
	if v := os.Getenv("VULGATA_SOURCE"); v != "" {
		c.Source = v
	}
	if v := os.Getenv("VULGATA_TEMPLATE"); v != "" {
		c.Template = v
	}
}

// GetFetchTimeout returns the import fetch timeout. Zero means no timeout.
func (c *Config) GetFetchTimeout() time.Duration {
	if c.FetchTimeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.FetchTimeout)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

var validLevels = []string{"debug", "info", "warn", "warning", "error"}

// Validate checks the configuration for values the builder cannot use.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.NewValidation("", "data_dir", "must not be empty")
	}
	if c.OutDir == "" {
		return errors.NewValidation("", "out_dir", "must not be empty")
	}
	if err := validation.ValidatePath(c.OutDir); err != nil {
		return &errors.ValidationError{Field: "out_dir", Message: err.Error(), Err: err}
	}
	if _, err := validation.SanitizePath(c.OutDir, c.AssetDir); err != nil {
		return &errors.ValidationError{Field: "asset_dir", Message: err.Error(), Err: err}
	}
	if filepath.Clean(c.AssetDir) == "." {
		return errors.NewValidation("", "asset_dir", "must name a directory below out_dir")
	}
	if c.FetchTimeout != "" {
		if d, err := time.ParseDuration(c.FetchTimeout); err != nil || d < 0 {
			return errors.NewValidation("", "fetch_timeout", fmt.Sprintf("invalid duration %q", c.FetchTimeout))
		}
	}

	level := strings.ToLower(c.Log.Level)
	valid := level == ""
	for _, l := range validLevels {
		if level == l {
			valid = true
			break
		}
	}
	if !valid {
		return errors.NewValidation("", "log.level", fmt.Sprintf("unknown level %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return errors.NewValidation("", "log.format", fmt.Sprintf("unknown format %q", c.Log.Format))
	}
	return nil
}
