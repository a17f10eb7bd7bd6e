package locks

import "time"

// EditLock is the advisory, auto-expiring editing lock for one player.
// It lives only in the presence store, never in the durable database.
type EditLock struct {
	CoachName string `json:"coachName"`
	Timestamp int64  `json:"timestamp"` // epoch millis at acquisition
}

// AcquiredAt returns the acquisition instant.
func (l EditLock) AcquiredAt() time.Time {
	return time.UnixMilli(l.Timestamp)
}

// StaleAfter reports whether the lock is older than the staleness window at
// the given instant, making it reclaimable by any coach.
func (l EditLock) StaleAfter(window time.Duration, now time.Time) bool {
	return now.Sub(l.AcquiredAt()) >= window
}

// Acquisition is the outcome of an acquire attempt. When Granted is false,
// HeldBy identifies the coach whose fresh lock blocked the attempt.
type Acquisition struct {
	Granted bool      `json:"granted"`
	HeldBy  *EditLock `json:"held_by,omitempty"`
}

// EventType classifies a lock-state change.
type EventType string

const (
	// EventAcquired fires when any coach takes the lock, including takeovers.
	EventAcquired EventType = "acquired"
	// EventReleased fires on explicit release or stale-lock sweep.
	EventReleased EventType = "released"
	// EventExpired fires when the presence store expires the lock because its
	// holder stopped heartbeating (crash, closed tab, dropped connection).
	EventExpired EventType = "expired"
)

// Event is one lock-state change, delivered to subscribers of the player.
type Event struct {
	PlayerID string    `json:"player_id"`
	Type     EventType `json:"type"`
	Lock     *EditLock `json:"lock,omitempty"` // nil for released/expired
}
