package notes

import "time"

// NoteDocument is the one-per-player scouting notes record.
//
// NotesByCoach is the authoritative representation; Notes is the flattened
// string kept for consumers that have not adopted the structured form. The
// two must never diverge: Notes is regenerated from NotesByCoach on every
// save, and legacy documents that only carry Notes are parsed back into
// NotesByCoach on load.
type NoteDocument struct {
	// DocID is the document key: the stable player ID for documents written
	// under the current scheme, or a position-based legacy ID for older ones.
	DocID        string            `bson:"_id" json:"-"`
	PlayerID     string            `bson:"playerId" json:"player_id"`
	LegacyID     string            `bson:"legacyId,omitempty" json:"legacy_id,omitempty"`
	PlayerName   string            `bson:"playerName,omitempty" json:"player_name,omitempty"`
	Notes        string            `bson:"notes" json:"notes"`
	NotesByCoach map[string]string `bson:"notesByCoach,omitempty" json:"notes_by_coach,omitempty"`
	// Timestamp is the last-write instant, used as the optimistic-concurrency
	// marker. Equality against a session's baseline is a heuristic, not a
	// fencing token.
	Timestamp     time.Time `bson:"timestamp" json:"timestamp"`
	LastUpdatedBy string    `bson:"lastUpdatedBy,omitempty" json:"last_updated_by,omitempty"`
}

// Normalize synthesizes NotesByCoach for legacy documents that only carry the
// flattened string. Call after every load, before the document is handed to
// the merge engine.
func (d *NoteDocument) Normalize() {
	if d.NotesByCoach != nil {
		return
	}
	d.NotesByCoach = ParseFlattened(d.Notes)
}

// CoachText returns the given coach's own entry, which seeds the edit buffer.
func (d *NoteDocument) CoachText(coach string) string {
	if d == nil || d.NotesByCoach == nil {
		return ""
	}
	return d.NotesByCoach[coach]
}
