package roster

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportCSV(t *testing.T) {
	players := []*Player{
		{ID: "jordan-miles-2012-04-09", Jersey: "7", FirstName: "Jordan", LastName: "Miles", DOB: "2012-04-09", School: "Lincoln Elementary", Position: "QB, WR"},
		{ID: "sam-okafor-2011-11-30", FirstName: "Sam", LastName: "Okafor", DOB: "2011-11-30", School: "Washington Middle", Position: "RB"},
	}
	notes := map[string]string{
		"jordan-miles-2012-04-09": "Alex: Good speed, strong arm",
	}

	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, players, notes))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, exportHeader, records[0])
	assert.Equal(t, []string{"7", "Jordan", "Miles", "2012-04-09", "Lincoln Elementary", "QB, WR", "Alex: Good speed, strong arm"}, records[1])
	assert.Empty(t, records[2][6], "player without notes exports an empty Notes column")
}

func TestExportCSVQuotesEmbeddedDelimiters(t *testing.T) {
	players := []*Player{
		{ID: "p1", FirstName: "Jordan", LastName: "Miles", Position: "QB, WR"},
	}
	notes := map[string]string{"p1": "Alex: line one\nline \"two\""}

	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, players, notes))

	out := buf.String()
	assert.True(t, strings.Contains(out, `"QB, WR"`))

	// Round-trip through a CSV reader keeps the multi-line quoted note intact.
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "Alex: line one\nline \"two\"", records[1][6])
}
