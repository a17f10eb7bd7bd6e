// Package offline persists note updates that could not reach the store so
// they can be replayed once connectivity returns.
package offline

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Update is one queued note write. The queue keeps at most one entry per
// player; a newer save for the same player replaces the older one.
type Update struct {
	PlayerID     string            `json:"playerId"`
	PlayerName   string            `json:"playerName,omitempty"`
	CoachName    string            `json:"coachName"`
	Field        string            `json:"field"`
	Value        string            `json:"value"`
	NotesByCoach map[string]string `json:"notesByCoach,omitempty"`
	Timestamp    time.Time         `json:"timestamp"`
}

// FieldNotes is the only field currently queued offline.
const FieldNotes = "Notes"

// Queue is a file-backed pending-update store. All methods are safe for
// concurrent use; every mutation rewrites the backing file atomically.
type Queue struct {
	mu   sync.Mutex
	path string
}

// NewQueue opens (or lazily creates) the queue at path.
func NewQueue(path string) (*Queue, error) {
	if path == "" {
		return nil, errors.New("queue path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create queue dir: %w", err)
		}
	}
	return &Queue{path: path}, nil
}

// Put inserts or replaces the pending update for u.PlayerID.
func (q *Queue) Put(u Update) error {
	if u.PlayerID == "" {
		return errors.New("update has no player id")
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	m, err := q.load()
	if err != nil {
		return err
	}
	m[u.PlayerID] = u
	return q.store(m)
}

// All returns the queued updates ordered by timestamp, oldest first.
func (q *Queue) All() ([]Update, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	m, err := q.load()
	if err != nil {
		return nil, err
	}

	out := make([]Update, 0, len(m))
	for _, u := range m {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// Remove drops the pending update for playerID. Removing an absent entry is
// a no-op.
func (q *Queue) Remove(playerID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	m, err := q.load()
	if err != nil {
		return err
	}
	if _, ok := m[playerID]; !ok {
		return nil
	}
	delete(m, playerID)
	return q.store(m)
}

// Len reports the number of queued updates.
func (q *Queue) Len() (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	m, err := q.load()
	if err != nil {
		return 0, err
	}
	return len(m), nil
}

func (q *Queue) load() (map[string]Update, error) {
	data, err := os.ReadFile(q.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return make(map[string]Update), nil
		}
		return nil, fmt.Errorf("read queue: %w", err)
	}
	if len(data) == 0 {
		return make(map[string]Update), nil
	}

	var m map[string]Update
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode queue: %w", err)
	}
	return m, nil
}

// store writes via temp file + rename so a crash never leaves a torn queue.
func (q *Queue) store(m map[string]Update) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode queue: %w", err)
	}

	tmp := q.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write queue: %w", err)
	}
	if err := os.Rename(tmp, q.path); err != nil {
		return fmt.Errorf("replace queue: %w", err)
	}
	return nil
}
