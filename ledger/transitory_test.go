package ledger

import (
	"fmt"
	"testing"

	"github.com/alecthomas/assert/v2"
)

// chartStub is an in-memory account chart for exercising the transitory
// account contract without a remote client.
type chartStub struct {
	currencies map[string]string
	names      map[string]string
	failCreate bool
}

func newChartStub() *chartStub {
	return &chartStub{
		currencies: make(map[string]string),
		names:      make(map[string]string),
	}
}

func (c *chartStub) AccountCurrency(account string) (string, bool) {
	currency, ok := c.currencies[account]
	return currency, ok
}

func (c *chartStub) CreateAccount(account, name, currency string) error {
	if c.failCreate {
		return fmt.Errorf("remote unavailable")
	}
	c.currencies[account] = currency
	c.names[account] = name
	return nil
}

func TestResolveTransitoryAccount(t *testing.T) {
	chart := newChartStub()
	chart.currencies["9999"] = "CHF"
	chart.currencies["9998"] = "EUR"

	tests := []struct {
		name    string
		account string
		wantErr string
	}{
		{"valid", "9999", ""},
		{"unset", "", "not set"},
		{"missing", "1234", "does not exist"},
		{"wrong currency", "9998", "reporting currency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account, err := ResolveTransitoryAccount(chart, tt.account, "CHF")
			if tt.wantErr == "" {
				assert.NoError(t, err)
				assert.Equal(t, tt.account, account)
				return
			}

			assert.Error(t, err)
			_, ok := err.(*ConfigurationError)
			assert.True(t, ok, "expected ConfigurationError, got %T", err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEnsureTransitoryAccountCreates(t *testing.T) {
	chart := newChartStub()

	err := EnsureTransitoryAccount(chart, "9999", "CHF")
	assert.NoError(t, err)

	currency, ok := chart.AccountCurrency("9999")
	assert.True(t, ok)
	assert.Equal(t, "CHF", currency)
	assert.Equal(t, transitoryAccountName, chart.names["9999"])
}

func TestEnsureTransitoryAccountExisting(t *testing.T) {
	chart := newChartStub()
	chart.currencies["9999"] = "CHF"
	chart.failCreate = true

	// An existing account is not re-created.
	assert.NoError(t, EnsureTransitoryAccount(chart, "9999", "CHF"))
}

func TestEnsureTransitoryAccountWrongCurrency(t *testing.T) {
	chart := newChartStub()
	chart.currencies["9999"] = "EUR"

	err := EnsureTransitoryAccount(chart, "9999", "CHF")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "reporting currency")
}

func TestEnsureTransitoryAccountCreateFails(t *testing.T) {
	chart := newChartStub()
	chart.failCreate = true

	err := EnsureTransitoryAccount(chart, "9999", "CHF")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "provisioning")
}
