package ledger

import "fmt"

// Error types raised by the sanitization engine. All of them indicate data
// correctness problems: they are surfaced immediately to the caller and are
// never retried, since retrying cannot make incoherent input coherent.

// IncoherentCurrencyError is returned when a collective transaction
// references more than one non-reporting currency. The remote system only
// supports the reporting currency plus a single foreign currency per
// collective transaction; such input must be split before it reaches the
// resolver.
type IncoherentCurrencyError struct {
	ID         string
	Currencies []string
}

func (e *IncoherentCurrencyError) Error() string {
	return fmt.Sprintf(
		"transaction %q: only the reporting currency plus a single foreign currency are permitted in a collective transaction, got %v",
		e.ID, e.Currencies)
}

// NewIncoherentCurrencyError creates an error for a collective transaction
// spanning multiple foreign currencies.
func NewIncoherentCurrencyError(id string, currencies []string) *IncoherentCurrencyError {
	return &IncoherentCurrencyError{ID: id, Currencies: currencies}
}

// IncoherentFXRateError is returned when no single exchange rate reconciles
// all lines of a collective transaction within tolerance.
type IncoherentFXRateError struct {
	ID     string
	Detail string
}

func (e *IncoherentFXRateError) Error() string {
	msg := fmt.Sprintf("transaction %q: incoherent exchange rates in collective transaction", e.ID)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// NewIncoherentFXRateError creates an error for a transaction without a
// coherent exchange rate.
func NewIncoherentFXRateError(id, detail string) *IncoherentFXRateError {
	return &IncoherentFXRateError{ID: id, Detail: detail}
}

// MissingAmountError is returned when a line reaches a stage that requires a
// resolved reporting-currency amount but none is set. This indicates a
// pipeline ordering bug, not bad input.
type MissingAmountError struct {
	ID      string
	Account string
}

func (e *MissingAmountError) Error() string {
	return fmt.Sprintf("transaction %q: reporting currency amount missing for account %q", e.ID, e.Account)
}

// NewMissingAmountError creates an error for a line lacking a reporting
// currency amount.
func NewMissingAmountError(id, account string) *MissingAmountError {
	return &MissingAmountError{ID: id, Account: account}
}

// ConfigurationError is returned when the transitory account is unset, does
// not exist on the remote, or is denominated in the wrong currency. It is
// raised before any transformation proceeds: no split or FX adjustment can
// be computed without a valid clearing account.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "transitory account: " + e.Reason
}

// NewConfigurationError creates a configuration error with the given reason.
func NewConfigurationError(format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// SanitizeErrors wraps the errors collected across all transaction groups of
// a single run. Groups are independent, so one incoherent transaction does
// not stop the remaining groups from being checked.
type SanitizeErrors struct {
	Errors []error
}

func (e *SanitizeErrors) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d transactions cannot be sanitized", len(e.Errors))
}

// Unwrap returns the underlying errors for error unwrapping
func (e *SanitizeErrors) Unwrap() []error {
	return e.Errors
}

// EmptyTransactionError is returned when a transaction group contains no
// lines. Well formed input never produces one.
type EmptyTransactionError struct {
	ID string
}

func (e *EmptyTransactionError) Error() string {
	return fmt.Sprintf("transaction %q: expecting at least one line", e.ID)
}

// NewEmptyTransactionError creates an error for an empty transaction group.
func NewEmptyTransactionError(id string) *EmptyTransactionError {
	return &EmptyTransactionError{ID: id}
}
