// Package ledger implements the transaction normalization engine that maps
// arbitrary multi-currency journal transactions onto the restricted model of
// a remote double-entry bookkeeping service. The remote system allows at most
// one foreign currency per collective transaction and stores exchange rates
// with eight decimal digits; the engine splits and adjusts transactions so
// that every posted transaction satisfies both constraints while preserving
// the original financial result exactly.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Line is a single posting row of a journal transaction. All lines sharing
// the same ID form one logical transaction: exactly one line is an individual
// transaction (implicitly balanced against its counter account), two or more
// lines form a collective transaction that must net to zero in the reporting
// currency once resolved.
type Line struct {
	// ID identifies the logical transaction this line belongs to. Synthetic
	// lines produced by the engine carry derived ids such as "5:EUR" (split
	// sub-transaction) or "5:fx" (FX adjustment entry).
	ID string

	// Date of the transaction. All lines of one ID share the same date.
	Date time.Time

	// Account is the identifier of the posted account.
	Account string

	// CounterAccount is only set on individual (single line) transactions.
	CounterAccount string

	// Amount is the signed amount denominated in Currency.
	Amount decimal.Decimal

	// ReportingAmount is the signed amount expressed in the reporting
	// currency. Nil until the sanitization pipeline has resolved it.
	ReportingAmount *decimal.Decimal

	// Currency is the ISO code of the amount's currency. An empty value is
	// treated as the reporting currency.
	Currency string

	// TaxCode is the optional tax code applied to the posting.
	TaxCode string

	// Description is the free-text booking description.
	Description string

	// Document is an optional document reference. Within one transaction at
	// most one distinct non-empty value is allowed; Standardize propagates
	// the shared value onto every line of the transaction.
	Document string
}

// Clone returns a deep copy of the line. The engine never mutates its input;
// every transform operates on copies.
func (l *Line) Clone() *Line {
	c := *l
	if l.ReportingAmount != nil {
		ra := *l.ReportingAmount
		c.ReportingAmount = &ra
	}
	return &c
}

// SetReportingAmount stores a copy of the given amount on the line.
func (l *Line) SetReportingAmount(amount decimal.Decimal) {
	l.ReportingAmount = &amount
}

// Transaction is the ordered group of lines sharing one transaction id.
type Transaction struct {
	ID    string
	Lines []*Line
}

// GroupByID partitions lines into transactions, preserving the order in
// which each id first appears and the relative order of lines within it.
func GroupByID(lines []*Line) []*Transaction {
	var groups []*Transaction
	index := make(map[string]int, len(lines))

	for _, line := range lines {
		i, ok := index[line.ID]
		if !ok {
			i = len(groups)
			index[line.ID] = i
			groups = append(groups, &Transaction{ID: line.ID})
		}
		groups[i].Lines = append(groups[i].Lines, line)
	}

	return groups
}

// BaseID strips the derived suffix from a synthetic id, returning the id of
// the original transaction a clearing or adjustment line belongs to.
// "5:EUR" and "5:fx" both map back to "5".
func BaseID(id string) string {
	for i := 0; i < len(id); i++ {
		if id[i] == ':' {
			return id[:i]
		}
	}
	return id
}

// foreignCurrencies returns the distinct non-reporting currencies used by
// the given lines, in first-appearance order. Lines with a zero amount do
// not count: they carry no value in any currency.
func foreignCurrencies(lines []*Line, reporting string) []string {
	var currencies []string
	seen := make(map[string]bool)

	for _, line := range lines {
		if line.Currency == "" || line.Currency == reporting || line.Amount.IsZero() {
			continue
		}
		if !seen[line.Currency] {
			seen[line.Currency] = true
			currencies = append(currencies, line.Currency)
		}
	}

	return currencies
}
