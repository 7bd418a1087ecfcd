package pipeline

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/sells-group/connections-cli/internal/model"
)

// maxPreambleRows is how many leading non-header rows a connections
// export may carry (LinkedIn prepends a "Notes:" block).
const maxPreambleRows = 2

// ParseConnectionsCSV reads a connections export and returns the header
// and raw data rows. It tolerates a UTF-8 BOM and a notes preamble
// before the real header, and requires the first- and last-name columns.
func ParseConnectionsCSV(csvPath string) ([]string, [][]string, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return nil, nil, eris.Wrap(err, "csv: open file")
	}
	defer f.Close() //nolint:errcheck

	// Excel and LinkedIn exports frequently lead with a UTF-8 BOM.
	decoder := unicode.UTF8BOM.NewDecoder()
	reader := csv.NewReader(transform.NewReader(f, decoder))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, eris.Wrap(err, "csv: read file")
	}

	records = skipPreamble(records)
	if len(records) < 2 {
		return nil, nil, eris.New("csv: no data rows")
	}

	header := make([]string, len(records[0]))
	for i, col := range records[0] {
		header[i] = strings.TrimSpace(col)
	}

	for _, col := range []string{ColFirstName, ColLastName} {
		if !containsColumn(header, col) {
			return nil, nil, eris.Errorf("csv: missing required column %q", col)
		}
	}

	return header, records[1:], nil
}

// skipPreamble drops leading rows that belong to a notes block rather
// than the table: short rows, or rows mentioning "note".
func skipPreamble(records [][]string) [][]string {
	for i := 0; i < maxPreambleRows && len(records) > 0; i++ {
		if !isPreambleRow(records[0]) {
			break
		}
		records = records[1:]
	}
	return records
}

func isPreambleRow(row []string) bool {
	// The real header mentions "Notes" too; never treat it as preamble.
	for _, cell := range row {
		if strings.TrimSpace(cell) == ColFirstName {
			return false
		}
	}
	if len(row) < 4 {
		return true
	}
	for _, cell := range row {
		if strings.Contains(strings.ToLower(cell), "note") {
			return true
		}
	}
	return false
}

func containsColumn(header []string, col string) bool {
	for _, h := range header {
		if h == col {
			return true
		}
	}
	return false
}

// ExportConnectionsCSV writes all connections to outputPath, preserving
// the original columns in order and appending the interests column last.
// Tags are joined with delimiter inside the single appended cell. The
// file is written to a temp path and renamed so a failed run never
// leaves a partial output file.
func ExportConnectionsCSV(header []string, conns []model.Connection, interestsCol, delimiter, outputPath string) error {
	if interestsCol == "" {
		interestsCol = "Interests"
	}
	if delimiter == "" {
		delimiter = ";"
	}

	tmpPath := filepath.Join(filepath.Dir(outputPath), "."+filepath.Base(outputPath)+".tmp")
	f, err := os.Create(tmpPath)
	if err != nil {
		return eris.Wrap(err, "export: create file")
	}

	w := csv.NewWriter(f)

	outHeader := append(append([]string{}, header...), interestsCol)
	if err := w.Write(outHeader); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return eris.Wrap(err, "export: write header")
	}

	for _, conn := range conns {
		row := make([]string, 0, len(header)+1)
		for _, col := range header {
			row = append(row, conn.Columns[col])
		}
		row = append(row, strings.Join(conn.Interests, delimiter))
		if err := w.Write(row); err != nil {
			_ = f.Close()
			_ = os.Remove(tmpPath)
			return eris.Wrap(err, "export: write row")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return eris.Wrap(err, "export: flush")
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return eris.Wrap(err, "export: close file")
	}

	if err := os.Rename(tmpPath, outputPath); err != nil {
		_ = os.Remove(tmpPath)
		return eris.Wrap(err, "export: rename into place")
	}
	return nil
}
