package roster

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRoster = "Jersey #\tFirst Name\tLast Name\tDate of Birth\tSchool\tPosition\n" +
	"7\tJordan\tMiles\t4/9/12\tLincoln Elementary\tQB, WR\n" +
	"\tSam\tOkafor\t2011-11-30\tWashington Middle\tRB\n" +
	"22\tAva\tReyes\t12/1/11\tLincoln Elementary\tWR\n"

func TestParseRoster(t *testing.T) {
	players, err := Parse(strings.NewReader(sampleRoster))
	require.NoError(t, err)
	require.Len(t, players, 3)

	first := players[0]
	assert.Equal(t, "Jordan", first.FirstName)
	assert.Equal(t, "Miles", first.LastName)
	assert.Equal(t, "2012-04-09", first.DOB)
	assert.Equal(t, "Lincoln Elementary", first.School)
	assert.Equal(t, "QB, WR", first.Position)
	assert.Equal(t, "7", first.Jersey)
	assert.Equal(t, "jordan-miles-2012-04-09", first.ID)
	assert.Equal(t, "player-0", first.LegacyID)

	second := players[1]
	assert.Empty(t, second.Jersey)
	assert.Equal(t, "2011-11-30", second.DOB)
	assert.Equal(t, "player-1", second.LegacyID)
}

func TestParseStableIDsSurviveReorder(t *testing.T) {
	players, err := Parse(strings.NewReader(sampleRoster))
	require.NoError(t, err)

	reordered := "First Name\tLast Name\tDate of Birth\tSchool\tPosition\tJersey #\n" +
		"Ava\tReyes\t12/1/11\tLincoln Elementary\tWR\t22\n" +
		"Jordan\tMiles\t4/9/12\tLincoln Elementary\tQB, WR\t7\n"
	again, err := Parse(strings.NewReader(reordered))
	require.NoError(t, err)
	require.Len(t, again, 2)

	// Stable IDs match across imports; legacy IDs follow row order.
	assert.Equal(t, players[2].ID, again[0].ID)
	assert.Equal(t, players[0].ID, again[1].ID)
	assert.Equal(t, "player-0", again[0].LegacyID)
}

func TestParseSkipsBlankRows(t *testing.T) {
	input := "First Name\tLast Name\tDate of Birth\n" +
		"Jordan\tMiles\t4/9/12\n" +
		"\t\t\n"
	players, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Len(t, players, 1)
}

func TestParseEmptyRoster(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyRoster)

	_, err = Parse(strings.NewReader("First Name\tLast Name\n"))
	assert.ErrorIs(t, err, ErrEmptyRoster)
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"2012-04-09", "2012-04-09"},
		{"2012-4-9", "2012-04-09"},
		{"4/9/12", "2012-04-09"},
		{"12/1/95", "1995-12-01"},
		{"4/9/2012", "2012-04-09"},
		{"", ""},
		{"not a date", "not a date"}, // returned unchanged
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeDate(tt.in), "input %q", tt.in)
	}
}
