package notes

import (
	"context"

	"roster-pulse/internal/offline"
	"roster-pulse/internal/services/locks"
)

// Repository is the note-document store.
type Repository interface {
	// Load fetches the document for playerID, falling back to legacyID for
	// documents written under the old position-based scheme. Returns
	// (nil, nil) when the player has no notes yet.
	Load(ctx context.Context, playerID, legacyID string) (*NoteDocument, error)
	// Save upserts the document under doc.DocID.
	Save(ctx context.Context, doc *NoteDocument) error
	// List returns every note document.
	List(ctx context.Context) ([]*NoteDocument, error)
}

// PendingQueue buffers writes that failed to reach the store.
type PendingQueue interface {
	Put(u offline.Update) error
	All() ([]offline.Update, error)
	Remove(playerID string) error
}

// LockManager is the advisory-lock surface the editing service needs.
type LockManager interface {
	Acquire(ctx context.Context, playerID, coachName string) (*locks.Acquisition, error)
	Release(ctx context.Context, playerID string) error
	Subscribe(playerID string) (<-chan locks.Event, func())
	Heartbeat(ctx context.Context, playerID, coachName string)
}
