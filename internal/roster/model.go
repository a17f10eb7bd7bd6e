package roster

import "time"

// Player is one roster row. Everything except Jersey (and the notes kept in
// the notes subsystem) is immutable after import.
type Player struct {
	ID         string    `bson:"_id" json:"id"`
	LegacyID   string    `bson:"legacyId" json:"legacy_id"`
	FirstName  string    `bson:"firstName" json:"first_name"`
	LastName   string    `bson:"lastName" json:"last_name"`
	DOB        string    `bson:"dob" json:"dob"` // YYYY-MM-DD
	School     string    `bson:"school" json:"school"`
	Position   string    `bson:"position" json:"position"` // comma-separated, e.g. "QB, WR"
	Jersey     string    `bson:"jersey" json:"jersey"`
	ImportedAt time.Time `bson:"importedAt" json:"imported_at"`
}

// FullName returns the display name used for note documents and exports.
func (p *Player) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	default:
		return p.FirstName + " " + p.LastName
	}
}

// Filter narrows a roster listing. Zero value matches everything.
type Filter struct {
	Position string `query:"position" validate:"omitempty,max=64"`
	School   string `query:"school" validate:"omitempty,max=128"`
	Search   string `query:"q" validate:"omitempty,max=128"`
}
