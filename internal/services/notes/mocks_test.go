package notes

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"roster-pulse/internal/services/locks"
)

var silentLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// memRepo is an in-memory Repository for flows where the interplay of loads
// and saves matters more than call-by-call expectations.
type memRepo struct {
	mu      sync.Mutex
	docs    map[string]*NoteDocument
	loadErr error
	saveErr error
}

func newMemRepo() *memRepo {
	return &memRepo{docs: make(map[string]*NoteDocument)}
}

func (r *memRepo) Load(_ context.Context, playerID, legacyID string) (*NoteDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	if doc, ok := r.docs[playerID]; ok {
		cp := *doc
		return &cp, nil
	}
	if legacyID != "" {
		if doc, ok := r.docs[legacyID]; ok {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memRepo) Save(_ context.Context, doc *NoteDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	cp := *doc
	r.docs[doc.DocID] = &cp
	return nil
}

func (r *memRepo) List(_ context.Context) ([]*NoteDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*NoteDocument, 0, len(r.docs))
	for _, doc := range r.docs {
		cp := *doc
		out = append(out, &cp)
	}
	return out, nil
}

// fakeLocks grants every acquisition and records calls. Events pushed into
// its channel reach session watchers.
type fakeLocks struct {
	mu       sync.Mutex
	held     map[string]string
	denyWith string
	events   chan locks.Event
	released []string
}

func newFakeLocks() *fakeLocks {
	return &fakeLocks{
		held:   make(map[string]string),
		events: make(chan locks.Event, 16),
	}
}

func (f *fakeLocks) Acquire(_ context.Context, playerID, coachName string) (*locks.Acquisition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.denyWith != "" {
		return &locks.Acquisition{Granted: false, HeldBy: &locks.EditLock{CoachName: f.denyWith}}, nil
	}
	f.held[playerID] = coachName
	return &locks.Acquisition{Granted: true, HeldBy: &locks.EditLock{CoachName: coachName}}, nil
}

func (f *fakeLocks) Release(_ context.Context, playerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.held, playerID)
	f.released = append(f.released, playerID)
	return nil
}

func (f *fakeLocks) Subscribe(string) (<-chan locks.Event, func()) {
	return f.events, func() {}
}

func (f *fakeLocks) Heartbeat(ctx context.Context, _, _ string) {
	<-ctx.Done()
}

func (f *fakeLocks) releasedPlayers() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.released...)
}
