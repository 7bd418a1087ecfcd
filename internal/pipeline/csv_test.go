package pipeline

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/connections-cli/internal/model"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "connections.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseConnectionsCSV(t *testing.T) {
	path := writeTempCSV(t, `First Name,Last Name,URL,Company,Position,Notes
Jane,Doe,https://www.linkedin.com/in/janedoe,Acme,Data Scientist,met at conf
John,Smith,,Globex,Engineer,
`)

	header, rows, err := ParseConnectionsCSV(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"First Name", "Last Name", "URL", "Company", "Position", "Notes"}, header)
	require.Len(t, rows, 2)
	assert.Equal(t, "Jane", rows[0][0])
	assert.Equal(t, "Globex", rows[1][3])
}

func TestParseConnectionsCSV_NotesPreamble(t *testing.T) {
	path := writeTempCSV(t, `"Notes:","When exporting your connection data, you may notice that some of the email addresses are missing."

First Name,Last Name,URL,Company,Position
Jane,Doe,,Acme,Data Scientist
`)

	header, rows, err := ParseConnectionsCSV(path)
	require.NoError(t, err)
	assert.Equal(t, "First Name", header[0])
	require.Len(t, rows, 1)
	assert.Equal(t, "Jane", rows[0][0])
}

func TestParseConnectionsCSV_UTF8BOM(t *testing.T) {
	path := writeTempCSV(t, "\xef\xbb\xbfFirst Name,Last Name,URL,Company,Position\nJane,Doe,,Acme,Data Scientist\n")

	header, rows, err := ParseConnectionsCSV(path)
	require.NoError(t, err)
	assert.Equal(t, "First Name", header[0])
	require.Len(t, rows, 1)
}

func TestParseConnectionsCSV_MissingRequiredColumn(t *testing.T) {
	path := writeTempCSV(t, `First Name,Company,Position,Notes
Jane,Acme,Data Scientist,
`)

	_, _, err := ParseConnectionsCSV(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing required column "Last Name"`)
}

func TestParseConnectionsCSV_NoDataRows(t *testing.T) {
	path := writeTempCSV(t, "First Name,Last Name,URL,Company\n")

	_, _, err := ParseConnectionsCSV(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data rows")
}

func TestParseConnectionsCSV_FileNotFound(t *testing.T) {
	_, _, err := ParseConnectionsCSV(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open file")
}

func TestExportConnectionsCSV(t *testing.T) {
	header := []string{"First Name", "Last Name", "Company"}
	conns := []model.Connection{
		{
			Row:       1,
			Columns:   map[string]string{"First Name": "Jane", "Last Name": "Doe", "Company": "Acme"},
			Interests: []string{"machine learning", "NLP", "data science"},
			Tagged:    true,
		},
		{
			Row:     2,
			Columns: map[string]string{"First Name": "John", "Last Name": "Smith", "Company": "Globex"},
		},
	}

	outPath := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, ExportConnectionsCSV(header, conns, "Interests", ";", outPath))

	f, err := os.Open(outPath)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"First Name", "Last Name", "Company", "Interests"}, records[0])
	assert.Equal(t, []string{"Jane", "Doe", "Acme", "machine learning;NLP;data science"}, records[1])
	assert.Equal(t, []string{"John", "Smith", "Globex", ""}, records[2])
}

func TestExportConnectionsCSV_Overwrites(t *testing.T) {
	header := []string{"First Name", "Last Name"}
	conns := []model.Connection{
		{Row: 1, Columns: map[string]string{"First Name": "Jane", "Last Name": "Doe"}},
	}

	outPath := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(outPath, []byte("stale content"), 0o644))

	require.NoError(t, ExportConnectionsCSV(header, conns, "Interests", ";", outPath))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "stale content")
	assert.Contains(t, string(data), "Jane,Doe")
}

func TestExportConnectionsCSV_UnwritableDestination(t *testing.T) {
	header := []string{"First Name", "Last Name"}
	conns := []model.Connection{
		{Row: 1, Columns: map[string]string{"First Name": "Jane", "Last Name": "Doe"}},
	}

	err := ExportConnectionsCSV(header, conns, "Interests", ";", filepath.Join(t.TempDir(), "missing", "out.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "export: create file")
}

// Round-trip: every original column survives unchanged, with the
// interests column appended last.
func TestCSVRoundTrip(t *testing.T) {
	input := `First Name,Last Name,URL,Email Address,Company,Position,Connected On
Jane,Doe,https://www.linkedin.com/in/janedoe,jane@example.com,Acme,Data Scientist,01 Jan 2024
`
	path := writeTempCSV(t, input)

	header, rows, err := ParseConnectionsCSV(path)
	require.NoError(t, err)

	records := Normalize(header, rows)
	require.Len(t, records, 1)
	require.NoError(t, records[0].Err)

	conn := records[0].Connection
	conn.Interests = []string{"Data Science"}
	conn.Tagged = true

	outPath := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, ExportConnectionsCSV(header, []model.Connection{conn}, "Interests", ";", outPath))

	f, err := os.Open(outPath)
	require.NoError(t, err)
	defer f.Close()

	out, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, append([]string{"First Name", "Last Name", "URL", "Email Address", "Company", "Position", "Connected On"}, "Interests"), out[0])
	assert.Equal(t, []string{"Jane", "Doe", "https://www.linkedin.com/in/janedoe", "jane@example.com", "Acme", "Data Scientist", "01 Jan 2024", "Data Science"}, out[1])
}
