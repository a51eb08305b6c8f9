// Package config loads ledger.yaml settings plus environment-sourced
// database credentials.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config represents the top-level ledger.yaml configuration.
type Config struct {
	Business   BusinessConfig   `yaml:"business"`
	Accounting AccountingConfig `yaml:"accounting"`
	Storage    StorageConfig    `yaml:"storage"`
	Retry      RetryConfig      `yaml:"retry"`
}

// BusinessConfig identifies the business entity.
type BusinessConfig struct {
	Name string `yaml:"name"`
}

// AccountingConfig holds chart-level settings consumed by the engines and
// their collaborators.
type AccountingConfig struct {
	RetainedEarningsCode string   `yaml:"retained_earnings_code"`
	MaterialityThreshold Money    `yaml:"materiality_threshold"`
	CashAccountCodes     []string `yaml:"cash_account_codes"`
}

// Money is a decimal amount that round-trips through YAML as a plain scalar.
type Money struct {
	decimal.Decimal
}

// MarshalYAML writes the amount as a string scalar.
func (m Money) MarshalYAML() (interface{}, error) {
	return m.String(), nil
}

// UnmarshalYAML parses a string or number scalar.
func (m *Money) UnmarshalYAML(value *yaml.Node) error {
	d, err := decimal.NewFromString(value.Value)
	if err != nil {
		return fmt.Errorf("parsing amount %q: %w", value.Value, err)
	}
	m.Decimal = d
	return nil
}

// StorageConfig selects the store adapter.
type StorageConfig struct {
	Driver string `yaml:"driver"` // "mysql" or "memory"
}

// RetryConfig bounds conflict retries in the mutating engines.
type RetryConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
}

// Load reads a ledger.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
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

// Default returns a Config with sensible defaults for a new ledger.
func Default(businessName string) *Config {
	return &Config{
		Business: BusinessConfig{Name: businessName},
		Accounting: AccountingConfig{
			RetainedEarningsCode: "3900",
			MaterialityThreshold: Money{decimal.NewFromInt(10000)},
			CashAccountCodes:     []string{"1000"},
		},
		Storage: StorageConfig{Driver: "mysql"},
		Retry:   RetryConfig{MaxAttempts: 3},
	}
}

// DatabaseDSN builds the MySQL DSN from the environment, loading a .env
// file first if one is present.
func DatabaseDSN() string {
	_ = godotenv.Load()

	if dsn := os.Getenv("LEDGER_DSN"); dsn != "" {
		return dsn
	}

	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	name := os.Getenv("DB_NAME")
	if host == "" {
		host = "127.0.0.1"
	}
	if port == "" {
		port = "3306"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", user, password, host, port, name)
}
