// Package loader reads and writes journal lines in the canonical CSV
// column layout used to exchange ledgers with other tooling.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openclearing/ledgerbridge/ledger"
)

// DateLayout is the journal date format.
const DateLayout = "2006-01-02"

var columns = []string{
	"id",
	"date",
	"account",
	"counter_account",
	"amount",
	"reporting_amount",
	"currency",
	"tax_code",
	"description",
	"document",
}

// Read parses journal lines from CSV. The first record must be the header;
// column order is fixed.
func Read(r io.Reader) ([]*ledger.Line, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(columns)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, name := range columns {
		if header[i] != name {
			return nil, fmt.Errorf("unexpected column %q at position %d, want %q", header[i], i+1, name)
		}
	}

	var lines []*ledger.Line
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		line, err := parseRecord(record)
		if err != nil {
			row, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		lines = append(lines, line)
	}

	return lines, nil
}

func parseRecord(record []string) (*ledger.Line, error) {
	date, err := time.Parse(DateLayout, record[1])
	if err != nil {
		return nil, fmt.Errorf("parse date %q: %w", record[1], err)
	}

	amount, err := decimal.NewFromString(record[4])
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", record[4], err)
	}

	line := &ledger.Line{
		ID:             record[0],
		Date:           date,
		Account:        record[2],
		CounterAccount: record[3],
		Amount:         amount,
		Currency:       record[6],
		TaxCode:        record[7],
		Description:    record[8],
		Document:       record[9],
	}

	if record[5] != "" {
		reporting, err := decimal.NewFromString(record[5])
		if err != nil {
			return nil, fmt.Errorf("parse reporting amount %q: %w", record[5], err)
		}
		line.SetReportingAmount(reporting)
	}

	return line, nil
}

// ReadFile reads journal lines from the named file, or from stdin when the
// name is "-".
func ReadFile(name string) ([]*ledger.Line, error) {
	if name == "-" {
		return Read(os.Stdin)
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	lines, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return lines, nil
}

// Write emits journal lines as CSV in the canonical column layout.
func Write(w io.Writer, lines []*ledger.Line) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(columns); err != nil {
		return err
	}
	for _, line := range lines {
		reporting := ""
		if line.ReportingAmount != nil {
			reporting = line.ReportingAmount.String()
		}
		record := []string{
			line.ID,
			line.Date.Format(DateLayout),
			line.Account,
			line.CounterAccount,
			line.Amount.String(),
			reporting,
			line.Currency,
			line.TaxCode,
			line.Description,
			line.Document,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()

	return writer.Error()
}

// WriteFile writes journal lines to the named file, or to stdout when the
// name is "-".
func WriteFile(name string, lines []*ledger.Line) error {
	if name == "-" {
		return Write(os.Stdout, lines)
	}

	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := Write(f, lines); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
