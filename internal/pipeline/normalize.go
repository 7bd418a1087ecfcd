package pipeline

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/connections-cli/internal/model"
)

// Column names used by LinkedIn connection exports.
const (
	ColFirstName = "First Name"
	ColLastName  = "Last Name"
	ColCompany   = "Company"
	ColPosition  = "Position"
	ColURL       = "URL"
	ColNotes     = "Notes"
)

// NormalizedRow is the tagged result of normalizing one raw row:
// either a fully-built connection or a rejection reason. Rejected rows
// still carry Row and Columns so the writer can pass them through
// verbatim; the identity fields are left unset.
type NormalizedRow struct {
	Connection model.Connection
	Err        error
}

// Normalize converts raw CSV rows into NormalizedRows, one per input
// row, preserving input order.
func Normalize(header []string, rows [][]string) []NormalizedRow {
	colIdx := make(map[string]int, len(header))
	for i, col := range header {
		colIdx[strings.TrimSpace(col)] = i
	}

	out := make([]NormalizedRow, 0, len(rows))
	for i, row := range rows {
		out = append(out, NormalizeRow(i+1, colIdx, row))
	}
	return out
}

// NormalizeRow builds a connection from one raw row. The row is rejected
// when the first or last name is absent or blank; everything else is
// optional. Normalizing the same row twice yields identical results.
func NormalizeRow(rowNum int, colIdx map[string]int, row []string) NormalizedRow {
	columns := make(map[string]string, len(colIdx))
	for col, idx := range colIdx {
		if idx < len(row) {
			columns[col] = row[idx]
		} else {
			columns[col] = ""
		}
	}

	passthrough := model.Connection{Row: rowNum, Columns: columns}

	first := strings.TrimSpace(columns[ColFirstName])
	last := strings.TrimSpace(columns[ColLastName])
	if first == "" || last == "" {
		return NormalizedRow{
			Connection: passthrough,
			Err:        eris.Errorf("normalize: row %d: missing first or last name", rowNum),
		}
	}

	conn := passthrough
	conn.FirstName = first
	conn.LastName = last
	conn.FullName = strings.Join(strings.Fields(first+" "+last), " ")
	conn.Company = strings.TrimSpace(columns[ColCompany])
	conn.Position = strings.TrimSpace(columns[ColPosition])
	conn.ProfileURL = strings.TrimSpace(columns[ColURL])
	conn.Notes = strings.TrimSpace(columns[ColNotes])

	return NormalizedRow{Connection: conn}
}
