package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
)

const sampleConfig = `
reporting_currency: CHF
transitory_account: "9999"
precision:
  - "JPY:1"
rates:
  EUR: "1.2"
  USD: "0.9"
accounts:
  - number: "1020"
    name: Bank
  - number: "6000"
    name: Expenses
    currency: EUR
    tax_code: VAT81
    group: /Expenses
remote:
  endpoint: https://remote.example.com/api/v1
`

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(contents), 0600))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	assert.NoError(t, err)

	assert.Equal(t, "CHF", cfg.ReportingCurrency)
	assert.Equal(t, "9999", cfg.TransitoryAccount)
	assert.Equal(t, "https://remote.example.com/api/v1", cfg.Remote.Endpoint)

	assert.Equal(t, 2, len(cfg.Accounts))
	assert.Equal(t, "VAT81", cfg.Accounts[1].TaxCode)

	precision, err := cfg.PrecisionConfig()
	assert.NoError(t, err)
	assert.True(t, precision.Unit("JPY").Equal(decimal.NewFromInt(1)))

	rates, err := cfg.RateLookup()
	assert.NoError(t, err)
	assert.NotZero(t, rates)

	reported, err := rates.ReportAmount(decimal.NewFromInt(100), "EUR", time.Now())
	assert.NoError(t, err)
	assert.True(t, reported.Equal(decimal.NewFromInt(120)))
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	assert.NoError(t, err)
	assert.Equal(t, "CHF", cfg.ReportingCurrency)
	assert.Equal(t, "", cfg.TransitoryAccount)

	rates, err := cfg.RateLookup()
	assert.NoError(t, err)
	assert.Zero(t, rates)
}

func TestLoadCredentialsFromEnvironment(t *testing.T) {
	t.Setenv("LEDGERBRIDGE_API_KEY", "secret-token")
	t.Setenv("LEDGERBRIDGE_ENDPOINT", "https://override.example.com")

	cfg, err := Load(writeConfig(t, sampleConfig))
	assert.NoError(t, err)

	assert.Equal(t, "secret-token", cfg.Remote.APIKey)
	// The environment wins over the file.
	assert.Equal(t, "https://override.example.com", cfg.Remote.Endpoint)
}

func TestLoadRejectsMissingReportingCurrency(t *testing.T) {
	_, err := Load(writeConfig(t, `reporting_currency: ""`))
	assert.Error(t, err)
}

func TestLoadRejectsBadRate(t *testing.T) {
	_, err := Load(writeConfig(t, `
reporting_currency: CHF
rates:
  EUR: "one point two"
`))
	assert.Error(t, err)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "reporting_currency: [unclosed"))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
