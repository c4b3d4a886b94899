package rejects

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendlens/spendlens/internal/importer"
)

func testEntry() Entry {
	return FromParseError("jan.csv", importer.ParseError{
		Row:    7,
		Field:  "date",
		Value:  "31/02/2025",
		Reason: "no known date layout matches",
	})
}

func readRecords(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestMarshalEntry(t *testing.T) {
	assert.Equal(t,
		[]string{"jan.csv", "7", "date", "31/02/2025", "no known date layout matches"},
		MarshalEntry(testEntry()))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "rejects.csv")

	second := testEntry()
	second.Row = 9
	second.Field = "amount"
	second.Value = "1,2,3 \"x\""
	require.NoError(t, WriteFile(path, []Entry{testEntry(), second}))

	records := readRecords(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"source", "row", "field", "value", "reason"}, records[0])
	assert.Equal(t, MarshalEntry(testEntry()), records[1])
	assert.Equal(t, "9", records[2][colRow])
	assert.Equal(t, "1,2,3 \"x\"", records[2][colValue])
}

func TestWriteFile_Replaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rejects.csv")
	require.NoError(t, WriteFile(path, []Entry{testEntry(), testEntry()}))
	require.NoError(t, WriteFile(path, []Entry{testEntry()}))

	assert.Len(t, readRecords(t, path), 2)
}

func TestWriteFile_HeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rejects.csv")
	require.NoError(t, WriteFile(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Header+"\n", string(data))
}
