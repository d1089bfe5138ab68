// Package config loads engine settings from a YAML file, with remote
// credentials taken from the environment (optionally via a .env file).
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/openclearing/ledgerbridge/ledger"
)

// AccountSeed describes an account to ensure on the remote side.
type AccountSeed struct {
	Number   string `yaml:"number"`
	Name     string `yaml:"name"`
	Currency string `yaml:"currency"`
	TaxCode  string `yaml:"tax_code"`
	Group    string `yaml:"group"`
}

// Remote holds the connection settings for the bookkeeping service. The
// API key is never read from YAML.
type Remote struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"-"`
}

// Config is the engine configuration.
type Config struct {
	ReportingCurrency string            `yaml:"reporting_currency"`
	TransitoryAccount string            `yaml:"transitory_account"`
	Precision         []string          `yaml:"precision"`
	Rates             map[string]string `yaml:"rates"`
	Accounts          []AccountSeed     `yaml:"accounts"`
	Remote            Remote            `yaml:"remote"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{ReportingCurrency: "CHF"}
}

// Load reads the configuration from the named YAML file. Environment
// variables are loaded from .env first when present; LEDGERBRIDGE_API_KEY
// supplies the remote credential.
func Load(name string) (*Config, error) {
	// A missing .env is fine; explicit files are the only hard requirement.
	_ = godotenv.Load()

	cfg := Default()
	if name != "" {
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}

	cfg.Remote.APIKey = os.Getenv("LEDGERBRIDGE_API_KEY")
	if endpoint := os.Getenv("LEDGERBRIDGE_ENDPOINT"); endpoint != "" {
		cfg.Remote.Endpoint = endpoint
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ReportingCurrency == "" {
		return fmt.Errorf("reporting_currency is required")
	}
	for currency := range c.Rates {
		if _, err := decimal.NewFromString(c.Rates[currency]); err != nil {
			return fmt.Errorf("rate for %s: %w", currency, err)
		}
	}
	return nil
}

// PrecisionConfig builds the rounding configuration from the precision
// pairs, e.g. "JPY:1".
func (c *Config) PrecisionConfig() (*ledger.PrecisionConfig, error) {
	return ledger.ParsePrecisionConfig(c.Precision)
}

// RateLookup builds a static rate lookup from the configured rates, or nil
// when none are configured.
func (c *Config) RateLookup() (ledger.RateLookup, error) {
	if len(c.Rates) == 0 {
		return nil, nil
	}

	rates := make(map[string]decimal.Decimal, len(c.Rates))
	for currency, value := range c.Rates {
		rate, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("rate for %s: %w", currency, err)
		}
		rates[currency] = rate
	}
	return ledger.NewFixedRates(rates), nil
}
