// Package notes implements shared scouting-note editing: advisory locks,
// structured per-coach merge on save, and an offline queue for writes that
// could not reach the store.
package notes

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"roster-pulse/internal/offline"
	"roster-pulse/internal/services/locks"
	"roster-pulse/internal/utils/sanitize"
)

// SaveResult reports how a session's save ended.
type SaveResult struct {
	Document *NoteDocument `json:"document,omitempty"`
	// Merged is true when concurrent edits by other coaches were folded in.
	Merged bool `json:"merged"`
	// Queued is true when the store was unreachable and the edit went into
	// the pending queue instead.
	Queued bool `json:"queued"`
}

// Service coordinates editing sessions over the note store and lock manager.
type Service struct {
	repo  Repository
	locks LockManager
	queue PendingQueue
	merge *MergeEngine
	log   *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	byPlayer map[string]string
}

func NewService(repo Repository, lockMgr LockManager, queue PendingQueue, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		locks:    lockMgr,
		queue:    queue,
		merge:    NewMergeEngine(repo, log),
		log:      log,
		sessions: make(map[string]*Session),
		byPlayer: make(map[string]string),
	}
}

// Open starts an editing session: acquires the player's edit lock, loads the
// current document, and seeds the buffer with the coach's own entry.
//
// A load failure does not abort the session. The coach edits an empty buffer
// and the merge on save folds the stored entries back in.
func (s *Service) Open(ctx context.Context, playerID, legacyID, playerName, coach string) (*Session, error) {
	if coach == "" {
		return nil, ErrIdentityRequired
	}

	acq, err := s.locks.Acquire(ctx, playerID, coach)
	if err != nil {
		return nil, fmt.Errorf("acquire edit lock: %w", err)
	}
	if !acq.Granted {
		held := ""
		if acq.HeldBy != nil {
			held = acq.HeldBy.CoachName
		}
		return nil, &LockedError{HeldBy: held}
	}

	sess := newSession(playerID, legacyID, playerName, coach)

	var known map[string]string
	var baseline time.Time
	buffer := ""
	doc, err := s.repo.Load(ctx, playerID, legacyID)
	switch {
	case err != nil:
		s.log.Warn("notes load failed, editing from empty buffer",
			"player_id", playerID, "coach", coach, "error", err)
	case doc != nil:
		doc.Normalize()
		known = doc.NotesByCoach
		baseline = doc.Timestamp
		buffer = doc.CoachText(coach)
		if sess.PlayerName == "" {
			sess.PlayerName = doc.PlayerName
		}
	}
	sess.setLoaded(known, baseline, buffer)

	sessCtx, cancel := context.WithCancel(context.Background())
	sess.mu.Lock()
	sess.cancel = cancel
	sess.mu.Unlock()

	go s.locks.Heartbeat(sessCtx, playerID, coach)
	go s.watch(sessCtx, sess)

	s.mu.Lock()
	if oldID, ok := s.byPlayer[playerID]; ok {
		// A re-entrant open supersedes the previous session for the player.
		if old := s.sessions[oldID]; old != nil {
			old.close()
		}
		delete(s.sessions, oldID)
	}
	s.sessions[sess.ID] = sess
	s.byPlayer[playerID] = sess.ID
	s.mu.Unlock()

	return sess, nil
}

// Touch records that the coach changed the buffer since loading.
func (s *Service) Touch(sessionID string) error {
	sess, err := s.session(sessionID)
	if err != nil {
		return err
	}
	sess.markEditing()
	return nil
}

// Save merges the session's buffer into the stored document, releases the
// lock, and closes the session. When the store is unreachable the edit is
// queued for replay instead of being lost; the session still closes.
func (s *Service) Save(ctx context.Context, sessionID, text string) (*SaveResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	if reason, ok := sess.beginSave(); !ok {
		s.drop(sess, false)
		return nil, fmt.Errorf("%w: %s", ErrSessionInterrupted, reason)
	}

	clean := sanitize.Clean(text)
	known := sess.Known()
	result := &SaveResult{}

	res, err := s.merge.MergeAndSave(ctx, sess.PlayerID, sess.LegacyID, sess.PlayerName, sess.Coach, clean, known, sess.Baseline())
	if err != nil {
		update := offline.Update{
			PlayerID:     sess.PlayerID,
			PlayerName:   sess.PlayerName,
			CoachName:    sess.Coach,
			Field:        offline.FieldNotes,
			Value:        clean,
			NotesByCoach: known,
			Timestamp:    sess.Baseline(),
		}
		if qerr := s.queue.Put(update); qerr != nil {
			s.drop(sess, true)
			return nil, fmt.Errorf("save failed and could not queue offline: %w (queue: %w)", err, qerr)
		}
		s.log.Warn("notes save queued offline",
			"player_id", sess.PlayerID, "coach", sess.Coach, "error", err)
		result.Queued = true
	} else {
		result.Document = res.Document
		result.Merged = res.Merged
	}

	s.drop(sess, true)
	return result, nil
}

// Cancel abandons a session without saving.
func (s *Service) Cancel(_ context.Context, sessionID string) error {
	sess, err := s.session(sessionID)
	if err != nil {
		return err
	}
	// A lock lost to another coach is theirs now; only release our own.
	s.drop(sess, sess.State() != StateInterrupted)
	return nil
}

// Get returns the player's note document, normalized, or (nil, nil) when the
// player has no notes.
func (s *Service) Get(ctx context.Context, playerID, legacyID string) (*NoteDocument, error) {
	doc, err := s.repo.Load(ctx, playerID, legacyID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadNotes, err)
	}
	if doc != nil {
		doc.Normalize()
	}
	return doc, nil
}

// List returns all note documents, normalized.
func (s *Service) List(ctx context.Context) ([]*NoteDocument, error) {
	docs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadNotes, err)
	}
	for _, doc := range docs {
		doc.Normalize()
	}
	return docs, nil
}

// ReplayPending pushes queued offline updates through the merge engine.
// Entries that reach the store are removed from the queue; the rest stay for
// the next pass. Returns the number replayed.
func (s *Service) ReplayPending(ctx context.Context) (int, error) {
	updates, err := s.queue.All()
	if err != nil {
		return 0, fmt.Errorf("read pending queue: %w", err)
	}

	replayed := 0
	for _, u := range updates {
		if u.Field != offline.FieldNotes {
			s.log.Warn("skipping pending update with unknown field",
				"player_id", u.PlayerID, "field", u.Field)
			continue
		}
		_, err := s.merge.MergeAndSave(ctx, u.PlayerID, "", u.PlayerName, u.CoachName, u.Value, u.NotesByCoach, u.Timestamp)
		if err != nil {
			s.log.Warn("pending update replay failed, keeping queued",
				"player_id", u.PlayerID, "coach", u.CoachName, "error", err)
			continue
		}
		if err := s.queue.Remove(u.PlayerID); err != nil {
			s.log.Error("failed to remove replayed update from queue",
				"player_id", u.PlayerID, "error", err)
			continue
		}
		replayed++
	}
	return replayed, nil
}

// Sessions reports the number of open editing sessions.
func (s *Service) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Service) session(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// drop closes the session and forgets it, optionally releasing its lock.
func (s *Service) drop(sess *Session, release bool) {
	sess.close()

	s.mu.Lock()
	delete(s.sessions, sess.ID)
	if s.byPlayer[sess.PlayerID] == sess.ID {
		delete(s.byPlayer, sess.PlayerID)
	}
	s.mu.Unlock()

	if release {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.locks.Release(ctx, sess.PlayerID); err != nil {
			s.log.Warn("failed to release edit lock",
				"player_id", sess.PlayerID, "error", err)
		}
	}
}

// watch turns foreign lock events into session interruption. A takeover or
// expiry while the session is open means the local buffer can no longer be
// saved under the lock's protection.
func (s *Service) watch(ctx context.Context, sess *Session) {
	events, cancel := s.locks.Subscribe(sess.PlayerID)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Type {
			case locks.EventAcquired:
				if ev.Lock != nil && ev.Lock.CoachName != sess.Coach {
					sess.interrupt("lock taken over by " + ev.Lock.CoachName)
				}
			case locks.EventReleased, locks.EventExpired:
				sess.interrupt("edit lock was " + string(ev.Type))
			}
		}
	}
}
