package ledger

import (
	"github.com/shopspring/decimal"
)

// adjustDescription is the booking text of the clearing line appended to a
// collective transaction whose amounts had to be nudged onto the remote
// system's eight digit rate grid.
const adjustDescription = "Currency adjustments to match the remote exchange rate precision"

// adjustPrefix prefixes the description of every line in the secondary FX
// adjustment transaction.
const adjustPrefix = "Currency adjustments: "

// AddFxAdjustment ensures the reporting amounts of one transaction are
// consistent with an exchange rate stored at eight decimal digits.
//
// The remote system keeps a single rate per transaction; reapplying that
// rounded rate to each line's foreign amount can disagree with the supplied
// reporting amount by a rounding unit. The adjuster manufactures the minimal
// extra postings needed to reconcile that disagreement without changing the
// net financial effect. The transaction must reference at most one foreign
// currency; multi-currency transactions are split beforehand.
func AddFxAdjustment(txn *Transaction, reporting, transitory string, precision *PrecisionConfig) ([]*Line, error) {
	switch {
	case len(txn.Lines) == 0:
		return nil, NewEmptyTransactionError(txn.ID)
	case len(txn.Lines) == 1:
		return adjustIndividual(txn, reporting, transitory, precision)
	default:
		return adjustCollective(txn, reporting, transitory, precision)
	}
}

// adjustIndividual handles a single line transaction. If rounding the
// implied rate to eight digits shifts the reporting amount by a unit, the
// line's reporting amount is reduced by the residual and a zero amount line
// on the transitory account carries the residual under the id "<id>:fx".
func adjustIndividual(txn *Transaction, reporting, transitory string, precision *PrecisionConfig) ([]*Line, error) {
	line := txn.Lines[0]
	if line.Amount.IsZero() || line.Currency == "" || line.Currency == reporting {
		return txn.Lines, nil
	}
	if line.ReportingAmount == nil {
		return nil, NewMissingAmountError(txn.ID, line.Account)
	}

	amount := precision.Round(line.Amount, line.Currency)
	reported := precision.Round(*line.ReportingAmount, reporting)

	rate := reported.Div(amount).RoundBank(8)
	implied := precision.Round(amount.Mul(rate), reporting)
	residual := reported.Sub(implied)
	if residual.IsZero() {
		return txn.Lines, nil
	}

	adjusted := line.Clone()
	adjusted.Amount = amount
	adjusted.SetReportingAmount(implied)

	clearing := line.Clone()
	clearing.ID = txn.ID + ":fx"
	clearing.Account = transitory
	clearing.Amount = decimal.Zero
	clearing.SetReportingAmount(residual)

	return []*Line{adjusted, clearing}, nil
}

// adjustCollective handles a transaction with two or more lines. It resolves
// the transaction's rate leniently, computes a per line residual against the
// eight digit rate, and when any residual is nonzero emits three pieces:
//
//   - the original lines with residuals folded out of their amounts,
//   - one clearing line on the transitory account restoring the zero net,
//   - a secondary "<id>:fx" transaction that books each nonzero residual
//     against a mirrored transitory entry, netting to zero on its own.
func adjustCollective(txn *Transaction, reporting, transitory string, precision *PrecisionConfig) ([]*Line, error) {
	resolution, err := ResolveCollectiveRate(txn, reporting, precision, Lenient)
	if err != nil {
		return nil, err
	}
	if resolution.Currency == reporting {
		return txn.Lines, nil
	}
	rate := resolution.Rate.RoundBank(8)

	// Per line residual between the supplied reporting amount and the amount
	// the remote will derive from the eight digit rate. Reporting currency
	// lines are converted into the foreign currency and back, mirroring the
	// remote's storage model.
	residuals := make([]decimal.Decimal, len(txn.Lines))
	allZero := true
	for i, line := range txn.Lines {
		reported, err := reportedAmount(txn.ID, line, reporting, precision)
		if err != nil {
			return nil, err
		}
		amount := precision.Round(line.Amount, line.Currency)

		if line.Currency == "" || line.Currency == reporting {
			roundTrip := precision.Round(precision.Round(amount.Div(rate), reporting).Mul(rate), reporting)
			residuals[i] = amount.Sub(roundTrip)
		} else {
			residuals[i] = reported.Sub(precision.Round(amount.Mul(rate), reporting))
		}
		if !residuals[i].IsZero() {
			allZero = false
		}
	}
	if allZero {
		return txn.Lines, nil
	}

	total := decimal.Zero
	for _, r := range residuals {
		total = total.Add(r)
	}

	// Primary transaction: fold each residual out of its own line so the
	// stored rate reproduces every reporting amount exactly.
	primary := make([]*Line, 0, len(txn.Lines)+1)
	for i, line := range txn.Lines {
		adjusted := line.Clone()
		adjusted.Amount = precision.Round(line.Amount, line.Currency)
		reported, _ := reportedAmount(txn.ID, line, reporting, precision)
		if line.Currency == "" || line.Currency == reporting {
			adjusted.Amount = adjusted.Amount.Sub(residuals[i])
		}
		adjusted.SetReportingAmount(reported.Sub(residuals[i]))
		primary = append(primary, adjusted)
	}

	residualLines := primary
	residualValues := residuals
	if !total.IsZero() {
		clearing := &Line{
			ID:          txn.ID,
			Date:        txn.Lines[0].Date,
			Account:     transitory,
			Amount:      total,
			Currency:    reporting,
			Description: adjustDescription,
		}
		clearing.SetReportingAmount(total)
		primary = append(primary, clearing)

		residualLines = primary
		residualValues = append(append([]decimal.Decimal{}, residuals...), total.Neg())
	}

	// Secondary transaction: one line per nonzero residual, so the net
	// effect of the adjustment stays visible as its own booking.
	result := primary
	for i, line := range residualLines {
		residual := residualValues[i]
		if residual.IsZero() {
			continue
		}

		adjustment := line.Clone()
		adjustment.ID = txn.ID + ":fx"
		adjustment.Description = adjustPrefix + line.Description
		if line.Currency == "" || line.Currency == reporting {
			adjustment.Amount = residual
			adjustment.SetReportingAmount(residual)
		} else {
			adjustment.Amount = decimal.Zero
			adjustment.SetReportingAmount(residual)
		}
		result = append(result, adjustment)
	}

	return result, nil
}

// reportedAmount returns the line's reporting amount rounded to the
// reporting currency's precision. Reporting currency lines that have not
// been through the pipeline's fill step fall back to their own amount.
func reportedAmount(id string, line *Line, reporting string, precision *PrecisionConfig) (decimal.Decimal, error) {
	if line.ReportingAmount != nil {
		return precision.Round(*line.ReportingAmount, reporting), nil
	}
	if line.Currency == "" || line.Currency == reporting {
		return precision.Round(line.Amount, reporting), nil
	}
	return decimal.Zero, NewMissingAmountError(id, line.Account)
}
