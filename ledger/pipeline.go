package ledger

import (
	"context"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/shopspring/decimal"

	"github.com/openclearing/ledgerbridge/telemetry"
)

// RateLookup converts an amount of a foreign currency into the reporting
// currency at a given date. It is an external collaborator: the engine makes
// no assumptions about where rates come from.
type RateLookup interface {
	ReportAmount(amount decimal.Decimal, currency string, date time.Time) (decimal.Decimal, error)
}

// Sanitizer is the sanitization pipeline. It is stateless between
// invocations: Sanitize is a pure function of its input rows, the reporting
// currency, the transitory account and the precision rules. The only side
// effect in the package is transitory account provisioning, which happens in
// EnsureTransitoryAccount, never here.
//
// A single Sanitizer may be shared across goroutines; it holds no mutable
// state.
type Sanitizer struct {
	reporting  string
	transitory string
	precision  *PrecisionConfig
	accounts   AccountResolver
	rates      RateLookup
}

// Option configures a Sanitizer.
type Option func(*Sanitizer)

// WithPrecision overrides the default per-currency precision rules.
func WithPrecision(precision *PrecisionConfig) Option {
	return func(s *Sanitizer) { s.precision = precision }
}

// WithRateLookup supplies the FX collaborator used to fill missing
// reporting amounts. Without it, input with unresolved foreign amounts is
// rejected.
func WithRateLookup(rates RateLookup) Option {
	return func(s *Sanitizer) { s.rates = rates }
}

// NewSanitizer creates a pipeline for the given reporting currency and
// transitory account. The account resolver is consulted once per invocation
// to validate the transitory account.
func NewSanitizer(reporting, transitory string, accounts AccountResolver, opts ...Option) *Sanitizer {
	s := &Sanitizer{
		reporting:  reporting,
		transitory: transitory,
		precision:  NewPrecisionConfig(),
		accounts:   accounts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Precision returns the pipeline's precision rules.
func (s *Sanitizer) Precision() *PrecisionConfig { return s.precision }

// ReportingCurrency returns the pipeline's reporting currency.
func (s *Sanitizer) ReportingCurrency() string { return s.reporting }

// Sanitize transforms journal rows into remote compatible rows. Per
// transaction id, in order: missing reporting amounts are filled via the
// rate collaborator, transactions spanning several foreign currencies are
// split into per-currency transactions, every transaction is checked for a
// coherent exchange rate, and FX precision adjustments are applied. The
// result is re-standardized before it is returned.
//
// Sanitize is all or nothing: the first error aborts the invocation and no
// partial output is returned. Running Sanitize on its own output is a no-op.
func (s *Sanitizer) Sanitize(ctx context.Context, lines []*Line) ([]*Line, error) {
	timer := telemetry.FromContext(ctx).Start("sanitize")
	defer timer.End()

	transitory, err := ResolveTransitoryAccount(s.accounts, s.transitory, s.reporting)
	if err != nil {
		return nil, err
	}

	t := timer.Child("standardize input")
	lines, err = Standardize(lines, s.reporting, s.precision)
	t.End()
	if err != nil {
		return nil, err
	}

	t = timer.Child("fill reporting amounts")
	lines, err = s.fillReportingAmounts(lines)
	t.End()
	if err != nil {
		return nil, err
	}

	t = timer.Child("split multi-currency")
	lines, err = s.splitMultiCurrency(lines, transitory)
	t.End()
	if err != nil {
		return nil, err
	}

	t = timer.Child("fx adjustments")
	lines, err = s.adjustTransactions(lines, transitory)
	t.End()
	if err != nil {
		return nil, err
	}

	return Standardize(lines, s.reporting, s.precision)
}

// Check runs the pipeline in dry run: every transaction group is sanitized
// independently and the output discarded. Unlike Sanitize, a failing group
// does not abort the run; failures are collected across groups into a single
// SanitizeErrors so one incoherent transaction does not mask the others.
func (s *Sanitizer) Check(ctx context.Context, lines []*Line) error {
	timer := telemetry.FromContext(ctx).Start("check")
	defer timer.End()

	if _, err := ResolveTransitoryAccount(s.accounts, s.transitory, s.reporting); err != nil {
		return err
	}

	lines, err := Standardize(lines, s.reporting, s.precision)
	if err != nil {
		return err
	}

	var errs []error
	for _, txn := range GroupByID(lines) {
		if _, err := s.Sanitize(ctx, txn.Lines); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return &SanitizeErrors{Errors: errs}
	}
	return nil
}

// fillReportingAmounts resolves the reporting amount of every foreign
// currency line that lacks one, using the rate collaborator for the
// transaction's date.
func (s *Sanitizer) fillReportingAmounts(lines []*Line) ([]*Line, error) {
	result := make([]*Line, 0, len(lines))
	for _, line := range lines {
		if line.ReportingAmount != nil {
			result = append(result, line)
			continue
		}

		line = line.Clone()
		switch {
		case line.Amount.IsZero():
			line.SetReportingAmount(decimal.Zero)
		case s.rates == nil:
			return nil, NewMissingAmountError(line.ID, line.Account)
		default:
			reported, err := s.rates.ReportAmount(line.Amount, line.Currency, line.Date)
			if err != nil {
				return nil, err
			}
			line.SetReportingAmount(s.precision.Round(reported, s.reporting))
		}
		result = append(result, line)
	}
	return result, nil
}

// splitMultiCurrency routes transactions that reference more than one
// foreign currency through the splitter and passes the rest through
// unchanged.
func (s *Sanitizer) splitMultiCurrency(lines []*Line, transitory string) ([]*Line, error) {
	var result []*Line
	for _, txn := range GroupByID(lines) {
		if len(foreignCurrencies(txn.Lines, s.reporting)) <= 1 {
			result = append(result, txn.Lines...)
			continue
		}

		log.Debugf("transaction %q: splitting %d lines across currencies", txn.ID, len(txn.Lines))
		split, err := SplitMultiCurrency(txn, s.reporting, transitory, s.precision)
		if err != nil {
			return nil, err
		}
		result = append(result, split...)
	}
	return result, nil
}

// adjustTransactions verifies each collective transaction against the
// strict resolver and applies the FX precision adjustment to every
// transaction. At this point every transaction covers at most one foreign
// currency, so genuinely incoherent input surfaces here as
// IncoherentFXRateError rather than being silently absorbed.
func (s *Sanitizer) adjustTransactions(lines []*Line, transitory string) ([]*Line, error) {
	var result []*Line
	for _, txn := range GroupByID(lines) {
		if len(txn.Lines) > 1 {
			if _, err := ResolveCollectiveRate(txn, s.reporting, s.precision, Strict); err != nil {
				return nil, err
			}
		}

		adjusted, err := AddFxAdjustment(txn, s.reporting, transitory, s.precision)
		if err != nil {
			return nil, err
		}
		result = append(result, adjusted...)
	}
	return result, nil
}
