package ledger

import (
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// splitDescription is the booking text of clearing lines introduced when a
// multi-currency transaction is decomposed into per-currency transactions.
const splitDescription = "Split multi-currency transaction into multiple transactions compatible with the remote system."

// SplitMultiCurrency decomposes a transaction whose lines span more than one
// non-reporting currency into separate per-currency transactions. The remote
// system restricts collective transactions to the reporting currency plus a
// single foreign currency, so each currency group is emitted under the
// derived id "<id>:<currency>". A group whose reporting amounts do not sum
// to zero receives one clearing line on the transitory account carrying the
// negated residual; because the original transaction nets to zero, the
// clearing lines across all groups net to zero as well.
//
// Every line must already carry a resolved reporting amount; lines in the
// reporting currency have it filled from their amount.
func SplitMultiCurrency(txn *Transaction, reporting, transitory string, precision *PrecisionConfig) ([]*Line, error) {
	if len(txn.Lines) == 0 {
		return nil, NewEmptyTransactionError(txn.ID)
	}

	groups := make(map[string][]*Line)
	for _, line := range txn.Lines {
		line = line.Clone()

		currency := line.Currency
		if currency == "" {
			currency = reporting
			line.Currency = reporting
		}
		if currency == reporting && line.ReportingAmount == nil {
			line.SetReportingAmount(line.Amount)
		}
		if line.ReportingAmount == nil {
			return nil, NewMissingAmountError(txn.ID, line.Account)
		}

		groups[currency] = append(groups[currency], line)
	}

	currencies := make([]string, 0, len(groups))
	for currency := range groups {
		currencies = append(currencies, currency)
	}
	slices.Sort(currencies)

	var result []*Line
	for _, currency := range currencies {
		group := groups[currency]
		subID := txn.ID + ":" + currency

		balance := decimal.Zero
		for _, line := range group {
			line.ID = subID
			balance = balance.Add(*line.ReportingAmount)
			result = append(result, line)
		}

		balance = precision.Round(balance, reporting)
		if balance.IsZero() {
			continue
		}

		clearing := &Line{
			ID:          subID,
			Date:        group[0].Date,
			Account:     transitory,
			Amount:      balance.Neg(),
			Currency:    reporting,
			Description: splitDescription,
		}
		clearing.SetReportingAmount(balance.Neg())
		result = append(result, clearing)
	}

	return result, nil
}
