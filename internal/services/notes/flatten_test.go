package notes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatFlattened(t *testing.T) {
	tests := []struct {
		name    string
		byCoach map[string]string
		want    string
	}{
		{
			name:    "empty map",
			byCoach: map[string]string{},
			want:    "",
		},
		{
			name:    "single author",
			byCoach: map[string]string{"Alex": "Good speed."},
			want:    "Alex: Good speed.",
		},
		{
			name: "authors in sorted order",
			byCoach: map[string]string{
				"Sam":  "Needs footwork work.",
				"Alex": "Good speed.",
			},
			want: "Alex: Good speed.\n\nSam: Needs footwork work.",
		},
		{
			name: "empty entries skipped",
			byCoach: map[string]string{
				"Alex": "Good speed.",
				"Sam":  "   ",
			},
			want: "Alex: Good speed.",
		},
		{
			name:    "entry text trimmed",
			byCoach: map[string]string{"Alex": "  Good speed.\n"},
			want:    "Alex: Good speed.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFlattened(tt.byCoach))
		})
	}
}

func TestParseFlattened(t *testing.T) {
	tests := []struct {
		name string
		flat string
		want map[string]string
	}{
		{
			name: "empty string",
			flat: "",
			want: map[string]string{},
		},
		{
			name: "single author",
			flat: "Alex: Good speed.",
			want: map[string]string{"Alex": "Good speed."},
		},
		{
			name: "two authors",
			flat: "Alex: Good speed.\n\nSam: Needs footwork work.",
			want: map[string]string{
				"Alex": "Good speed.",
				"Sam":  "Needs footwork work.",
			},
		},
		{
			name: "multi-line entry stays with its author",
			flat: "Alex: Good speed.\nStrong tackler.\n\nSam: Coachable.",
			want: map[string]string{
				"Alex": "Good speed.\nStrong tackler.",
				"Sam":  "Coachable.",
			},
		},
		{
			name: "unprefixed paragraph continues the current author",
			flat: "Alex: Good speed.\n\nStrong tackler too.",
			want: map[string]string{"Alex": "Good speed.\n\nStrong tackler too."},
		},
		{
			name: "fully unattributed legacy text",
			flat: "Great hands, quick release.",
			want: map[string]string{"Coach": "Great hands, quick release."},
		},
		{
			name: "windows line endings",
			flat: "Alex: Good speed.\r\n\r\nSam: Coachable.",
			want: map[string]string{"Alex": "Good speed.", "Sam": "Coachable."},
		},
		{
			name: "duplicate author blocks merge",
			flat: "Alex: Good speed.\n\nSam: Coachable.\n\nAlex: Strong arm.",
			want: map[string]string{
				"Alex": "Good speed.\n\nStrong arm.",
				"Sam":  "Coachable.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseFlattened(tt.flat))
		})
	}
}

// Round trip: parse(format(M)) == M for maps whose author names contain no
// colon or newline and whose entries don't open a line with "Word:". That is
// the documented boundary of the legacy heuristic.
func TestFlattenedRoundTrip(t *testing.T) {
	maps := []map[string]string{
		{"Alex": "Good speed."},
		{"Alex": "Good speed.", "Sam": "Needs footwork work."},
		{"Coach Alex": "Multi word name works."},
		{"Alex": "Line one.\nLine two.", "Sam": "Para one.\n\nPara two."},
	}

	for _, m := range maps {
		assert.Equal(t, m, ParseFlattened(FormatFlattened(m)))
	}
}

func TestNormalize(t *testing.T) {
	legacy := &NoteDocument{Notes: "Alex: Good speed."}
	legacy.Normalize()
	assert.Equal(t, map[string]string{"Alex": "Good speed."}, legacy.NotesByCoach)

	// A structured document is left alone even if the flattened string is
	// stale; the map is authoritative.
	structured := &NoteDocument{
		Notes:        "whatever",
		NotesByCoach: map[string]string{"Sam": "Coachable."},
	}
	structured.Normalize()
	assert.Equal(t, map[string]string{"Sam": "Coachable."}, structured.NotesByCoach)
}
