package notes

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// SessionState is the lifecycle phase of an editing session.
type SessionState string

const (
	StateClosed      SessionState = "closed"
	StateLocking     SessionState = "locking"
	StateLoaded      SessionState = "loaded"
	StateEditing     SessionState = "editing"
	StateSaving      SessionState = "saving"
	StateInterrupted SessionState = "interrupted"
)

// Session is one coach's open edit of one player's notes. It owns the edit
// lock from Open until Save or Cancel, with a heartbeat keeping the lock's
// TTL alive and a watcher converting foreign lock events into interruption.
type Session struct {
	ID         string    `json:"id"`
	PlayerID   string    `json:"player_id"`
	LegacyID   string    `json:"legacy_id,omitempty"`
	PlayerName string    `json:"player_name,omitempty"`
	Coach      string    `json:"coach"`
	Buffer     string    `json:"buffer"`
	OpenedAt   time.Time `json:"opened_at"`

	// baseline is the stored document's timestamp at open time; the merge
	// engine compares it against the current one to detect concurrent saves.
	baseline time.Time
	// known is a snapshot of NotesByCoach at open time.
	known map[string]string

	mu              sync.Mutex
	state           SessionState
	interruptReason string
	cancel          context.CancelFunc
}

func newSession(playerID, legacyID, playerName, coach string) *Session {
	return &Session{
		ID:         ulid.Make().String(),
		PlayerID:   playerID,
		LegacyID:   legacyID,
		PlayerName: playerName,
		Coach:      coach,
		OpenedAt:   time.Now().UTC(),
		state:      StateLocking,
	}
}

// State returns the current lifecycle phase.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Known returns a copy of the per-coach snapshot taken at open time.
func (s *Session) Known() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make(map[string]string, len(s.known))
	maps.Copy(cp, s.known)
	return cp
}

// Baseline returns the document timestamp observed at open time.
func (s *Session) Baseline() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseline
}

func (s *Session) setLoaded(known map[string]string, baseline time.Time, buffer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.known = known
	s.baseline = baseline
	s.Buffer = buffer
	s.state = StateLoaded
}

// markEditing is called on the first buffer change notification. It only
// moves Loaded forward; an interrupted session stays interrupted.
func (s *Session) markEditing() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateLoaded {
		s.state = StateEditing
	}
}

// beginSave transitions into Saving. It fails when another coach took the
// lock while the session was open, returning the recorded reason.
func (s *Session) beginSave() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateInterrupted {
		return s.interruptReason, false
	}
	s.state = StateSaving
	return "", true
}

func (s *Session) interrupt(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// A save already in flight wins the race against a takeover event.
	if s.state == StateSaving || s.state == StateClosed {
		return
	}
	s.state = StateInterrupted
	s.interruptReason = reason
}

// close stops the heartbeat and watcher goroutines and marks the session
// finished. Idempotent.
func (s *Session) close() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.state = StateClosed
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
