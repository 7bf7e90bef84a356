package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/massikone/massikone/internal/model"
)

// FileName is the name of the project configuration file.
const FileName = "massikone.yaml"

// Config represents the top-level massikone.yaml configuration.
type Config struct {
	Organization OrganizationConfig `yaml:"organization"`
	Database     DatabaseConfig     `yaml:"database"`
	Period       PeriodConfig       `yaml:"period"`
	Chart        ChartConfig        `yaml:"chart"`
	AccountTypes []AccountTypeRule  `yaml:"account_types,omitempty"`
	Log          LogConfig          `yaml:"log"`
}

// OrganizationConfig names the organization whose books are kept.
type OrganizationConfig struct {
	FullName  string `yaml:"full_name"`
	ShortName string `yaml:"short_name"`
}

// DatabaseConfig locates the database. A postgres:// URL selects Postgres,
// anything else is a sqlite file.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// PeriodConfig bounds the default accounting period. Empty dates are open.
type PeriodConfig struct {
	Start string `yaml:"start,omitempty"` // YYYY-MM-DD
	End   string `yaml:"end,omitempty"`
}

// ChartConfig points at a chart-of-accounts file. An empty path uses the
// built-in chart.
type ChartConfig struct {
	Path string `yaml:"path,omitempty"`
}

// AccountTypeRule assigns a type to an inclusive range of account ids.
type AccountTypeRule struct {
	From int               `yaml:"from"`
	To   int               `yaml:"to"`
	Type model.AccountType `yaml:"type"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads a massikone.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(orgName string) *Config {
	return &Config{
		Organization: OrganizationConfig{
			FullName:  orgName,
			ShortName: orgName,
		},
		Database: DatabaseConfig{
			URL: "sqlite:massikone.db",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks the account type rules.
func (c *Config) Validate() error {
	for i, r := range c.AccountTypes {
		if r.From <= 0 || r.From > r.To {
			return &model.ValidationError{
				Field:  fmt.Sprintf("account_types[%d]", i),
				Reason: fmt.Sprintf("bad range %d-%d", r.From, r.To),
			}
		}
		if _, err := model.ParseAccountType(string(r.Type)); err != nil {
			return &model.ValidationError{Field: fmt.Sprintf("account_types[%d]", i), Reason: err.Error()}
		}
	}
	return nil
}

// LoadEnv loads variables from a .env file into the process environment.
// A missing file is not an error; variables already set are kept.
func LoadEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides configuration values from the environment.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("MASSIKONE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}
