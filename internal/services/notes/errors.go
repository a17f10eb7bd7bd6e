package notes

import "errors"

// ErrLoadNotes is returned when a note document cannot be read.
var ErrLoadNotes = errors.New("failed to load notes")

// ErrSaveNotes is returned when a note document cannot be written.
var ErrSaveNotes = errors.New("failed to save notes")

// ErrIdentityRequired is returned when a session is opened without a coach name.
var ErrIdentityRequired = errors.New("coach identity required")

// ErrSessionNotFound is returned for an unknown or already-closed session.
var ErrSessionNotFound = errors.New("editing session not found")

// ErrSessionInterrupted is returned when the session's lock was taken over or
// force-released while it was open.
var ErrSessionInterrupted = errors.New("editing session interrupted")

// ErrCreateNotesRepo is returned when the notes repository cannot be created.
var ErrCreateNotesRepo = errors.New("failed to create notes repository")

// ErrPlayerLocked is returned when another coach holds the edit lock. Callers
// can recover the holder's name with AsLocked.
var ErrPlayerLocked = errors.New("player is locked by another coach")

// LockedError carries the holding coach's name alongside ErrPlayerLocked.
type LockedError struct {
	HeldBy string
}

func (e *LockedError) Error() string {
	return "player is locked by " + e.HeldBy
}

func (e *LockedError) Unwrap() error { return ErrPlayerLocked }

// AsLocked extracts the lock holder from an error chain, if present.
func AsLocked(err error) (*LockedError, bool) {
	var le *LockedError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}
