package ledger

import "fmt"

// Standardize enforces the canonical row schema on a sequence of lines:
// empty currencies become the reporting currency, reporting currency lines
// get their reporting amount filled from the amount, every amount is rounded
// to its currency's precision, and document references are consolidated so
// all lines of a transaction share the single non-empty value.
//
// Standardize is applied to both pipeline input and pipeline output, after
// every structural transform. It never reorders lines.
func Standardize(lines []*Line, reporting string, precision *PrecisionConfig) ([]*Line, error) {
	result := make([]*Line, 0, len(lines))
	documents := make(map[string]string)

	for _, line := range lines {
		line = line.Clone()

		if line.Currency == "" {
			line.Currency = reporting
		}
		line.Amount = precision.Round(line.Amount, line.Currency)

		if line.Currency == reporting && line.ReportingAmount == nil {
			line.SetReportingAmount(line.Amount)
		}
		if line.ReportingAmount != nil {
			line.SetReportingAmount(precision.Round(*line.ReportingAmount, reporting))
		}

		if line.Document != "" {
			if existing, ok := documents[line.ID]; ok && existing != line.Document {
				return nil, fmt.Errorf(
					"transaction %q: conflicting document references %q and %q",
					line.ID, existing, line.Document)
			}
			documents[line.ID] = line.Document
		}

		result = append(result, line)
	}

	// Lines inherit the transaction's document reference forward and
	// backward.
	for _, line := range result {
		if line.Document == "" {
			line.Document = documents[line.ID]
		}
	}

	return result, nil
}
