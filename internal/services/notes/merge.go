package notes

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"time"
)

// MergeResult reports what a save actually wrote.
type MergeResult struct {
	Document *NoteDocument
	// Merged is true when the store held writes newer than the session's
	// baseline and other coaches' entries were folded in.
	Merged bool
}

// MergeEngine folds one coach's edit into the shared note document without
// clobbering other coaches' entries. Each coach owns exactly one key in
// NotesByCoach; a save rewrites that key and that key only.
type MergeEngine struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

func NewMergeEngine(repo Repository, log *slog.Logger) *MergeEngine {
	return &MergeEngine{repo: repo, log: log, now: time.Now}
}

// MergeAndSave re-reads the stored document, applies the coach's edit on top
// of whatever is there now, and writes the result back.
//
// known is the per-coach map the session loaded when it opened; baseline is
// that document's timestamp. If the stored timestamp no longer matches the
// baseline, someone else saved while this session was editing, and their
// entries win for every key except the saving coach's own.
func (e *MergeEngine) MergeAndSave(ctx context.Context, playerID, legacyID, playerName, coach, localText string, known map[string]string, baseline time.Time) (*MergeResult, error) {
	if coach == "" {
		return nil, ErrIdentityRequired
	}

	fresh, err := e.repo.Load(ctx, playerID, legacyID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadNotes, err)
	}
	if fresh != nil {
		fresh.Normalize()
	}

	merged := make(map[string]string, len(known)+1)
	maps.Copy(merged, known)

	localText = strings.TrimSpace(localText)
	if localText == "" {
		// An emptied buffer retracts the coach's entry entirely.
		delete(merged, coach)
	} else {
		merged[coach] = localText
	}

	conflict := fresh != nil && !fresh.Timestamp.Equal(baseline)
	if conflict {
		for author, text := range fresh.NotesByCoach {
			if author == coach {
				continue
			}
			merged[author] = text
		}
		e.log.Info("merged concurrent note edits",
			"player_id", playerID,
			"coach", coach,
			"last_updated_by", fresh.LastUpdatedBy)
	}

	doc := &NoteDocument{
		DocID:         playerID,
		PlayerID:      playerID,
		LegacyID:      legacyID,
		PlayerName:    playerName,
		NotesByCoach:  merged,
		Notes:         FormatFlattened(merged),
		Timestamp:     e.now().UTC(),
		LastUpdatedBy: coach,
	}
	if fresh != nil {
		// Preserve identity fields the caller may not know.
		doc.DocID = fresh.DocID
		if doc.LegacyID == "" {
			doc.LegacyID = fresh.LegacyID
		}
		if doc.PlayerName == "" {
			doc.PlayerName = fresh.PlayerName
		}
	}

	if err := e.repo.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSaveNotes, err)
	}
	return &MergeResult{Document: doc, Merged: conflict}, nil
}
