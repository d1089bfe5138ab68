package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/openclearing/ledgerbridge/ledger"
	"github.com/openclearing/ledgerbridge/loader"
	"github.com/openclearing/ledgerbridge/remote"
)

// rightAligned marks columns whose cells are numeric.
type column struct {
	header       string
	rightAligned bool
}

// renderColumns writes rows as a plain aligned table. Cell widths are
// measured with runewidth so descriptions with wide characters keep the
// columns straight.
func renderColumns(w io.Writer, columns []column, rows [][]string) {
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = runewidth.StringWidth(col.header)
	}
	for _, row := range rows {
		for i, cell := range row {
			if width := runewidth.StringWidth(cell); width > widths[i] {
				widths[i] = width
			}
		}
	}

	writeRow := func(row []string) {
		parts := make([]string, len(row))
		for i, cell := range row {
			padding := strings.Repeat(" ", widths[i]-runewidth.StringWidth(cell))
			if columns[i].rightAligned {
				parts[i] = padding + cell
			} else {
				parts[i] = cell + padding
			}
		}
		_, _ = fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	headers := make([]string, len(columns))
	separators := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = col.header
		separators[i] = strings.Repeat("-", widths[i])
	}
	writeRow(headers)
	writeRow(separators)
	for _, row := range rows {
		writeRow(row)
	}
}

func renderTable(w io.Writer, lines []*ledger.Line) {
	columns := []column{
		{header: "id"},
		{header: "date"},
		{header: "account"},
		{header: "amount", rightAligned: true},
		{header: "reporting", rightAligned: true},
		{header: "currency"},
		{header: "description"},
	}

	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		reporting := ""
		if line.ReportingAmount != nil {
			reporting = line.ReportingAmount.String()
		}
		rows = append(rows, []string{
			line.ID,
			line.Date.Format(loader.DateLayout),
			line.Account,
			line.Amount.String(),
			reporting,
			line.Currency,
			line.Description,
		})
	}

	renderColumns(w, columns, rows)
}

func renderAccountTable(w io.Writer, accounts []remote.Account) {
	columns := []column{
		{header: "number"},
		{header: "name"},
		{header: "currency"},
		{header: "tax code"},
		{header: "group"},
	}

	rows := make([][]string, 0, len(accounts))
	for _, account := range accounts {
		rows = append(rows, []string{
			account.Number,
			account.Name,
			account.Currency,
			account.TaxCode,
			account.Group,
		})
	}

	renderColumns(w, columns, rows)
}
