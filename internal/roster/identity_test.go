package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveIDDeterminism(t *testing.T) {
	tests := []struct {
		name  string
		a, b  [3]string // firstName, lastName, dob
		equal bool
	}{
		{
			name:  "identical input",
			a:     [3]string{"Jordan", "Miles", "2012-04-09"},
			b:     [3]string{"Jordan", "Miles", "2012-04-09"},
			equal: true,
		},
		{
			name:  "case insensitive",
			a:     [3]string{"JORDAN", "miles", "2012-04-09"},
			b:     [3]string{"jordan", "MILES", "2012-04-09"},
			equal: true,
		},
		{
			name:  "surrounding whitespace trimmed",
			a:     [3]string{"  Jordan ", "Miles", " 2012-04-09 "},
			b:     [3]string{"Jordan", " Miles  ", "2012-04-09"},
			equal: true,
		},
		{
			name:  "different dob",
			a:     [3]string{"Jordan", "Miles", "2012-04-09"},
			b:     [3]string{"Jordan", "Miles", "2013-04-09"},
			equal: false,
		},
		{
			name:  "different last name",
			a:     [3]string{"Jordan", "Miles", "2012-04-09"},
			b:     [3]string{"Jordan", "Milles", "2012-04-09"},
			equal: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idA := ResolveID(tt.a[0], tt.a[1], tt.a[2])
			idB := ResolveID(tt.b[0], tt.b[1], tt.b[2])
			if tt.equal {
				assert.Equal(t, idA, idB)
			} else {
				assert.NotEqual(t, idA, idB)
			}
		})
	}
}

func TestResolveIDIgnoresMutableFields(t *testing.T) {
	// Jersey number is not part of identity: two imports of the same player
	// with different jersey numbers must resolve to the same ID.
	a := Player{FirstName: "Sam", LastName: "Okafor", DOB: "2011-11-30", Jersey: "12"}
	b := Player{FirstName: "Sam", LastName: "Okafor", DOB: "2011-11-30", Jersey: "44"}

	assert.Equal(t,
		ResolveID(a.FirstName, a.LastName, a.DOB),
		ResolveID(b.FirstName, b.LastName, b.DOB))
}

func TestResolveIDReplacesUnsafeKeyChars(t *testing.T) {
	id := ResolveID("J.R.", "O[Brien]", "4/9/12")
	assert.Equal(t, "j_r_-o_brien_-4_9_12", id)
	assert.NotContains(t, id, ".")
	assert.NotContains(t, id, "/")
	assert.NotContains(t, id, "[")
}

func TestLegacyID(t *testing.T) {
	assert.Equal(t, "player-0", LegacyID(0))
	assert.Equal(t, "player-17", LegacyID(17))
}
