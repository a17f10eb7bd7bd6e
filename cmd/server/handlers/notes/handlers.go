package notes

import (
	"context"
	"errors"

	"roster-pulse/cmd/server/handlers/handlerutil"
	"roster-pulse/cmd/server/handlers/httperr"
	"roster-pulse/internal/logger"
	"roster-pulse/internal/roster"
	"roster-pulse/internal/services/locks"
	"roster-pulse/internal/services/notes"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// EditorService defines the interface for note editing sessions
type EditorService interface {
	Open(ctx context.Context, playerID, legacyID, playerName, coach string) (*notes.Session, error)
	Touch(sessionID string) error
	Save(ctx context.Context, sessionID, text string) (*notes.SaveResult, error)
	Cancel(ctx context.Context, sessionID string) error
	Get(ctx context.Context, playerID, legacyID string) (*notes.NoteDocument, error)
}

// PlayerResolver looks up roster entries so note routes can carry the legacy
// ID and display name along.
type PlayerResolver interface {
	Get(ctx context.Context, id string) (*roster.Player, error)
}

// LockLister exposes the advisory-lock board.
type LockLister interface {
	List(ctx context.Context) (map[string]locks.EditLock, error)
	Sweep(ctx context.Context) (int, error)
}

// Handlers contains the note editing HTTP handlers
type Handlers struct {
	svc       EditorService
	players   PlayerResolver
	locks     LockLister
	validator *validator.Validate
}

// NewHandlers creates new note handlers
func NewHandlers(svc EditorService, players PlayerResolver, lockLister LockLister, v *validator.Validate) *Handlers {
	return &Handlers{svc: svc, players: players, locks: lockLister, validator: v}
}

// Get returns a player's note document. Players without notes yet get an
// empty document rather than a 404, since the editor treats both the same.
func (h *Handlers) Get(c *fiber.Ctx) error {
	coach, err := handlerutil.GetCoach(c)
	if err != nil {
		return err
	}

	playerID := c.Params("id")
	p, err := h.players.Get(c.Context(), playerID)
	if err != nil {
		return handlerutil.HandleServiceError(err, "GetNotes", coach, playerID, roster.ErrPlayerNotFound)
	}

	doc, err := h.svc.Get(c.Context(), p.ID, p.LegacyID)
	if err != nil {
		return handlerutil.HandleServiceError(err, "GetNotes", coach, playerID, nil)
	}
	if doc == nil {
		doc = &notes.NoteDocument{
			DocID:        p.ID,
			PlayerID:     p.ID,
			LegacyID:     p.LegacyID,
			PlayerName:   p.FullName(),
			NotesByCoach: map[string]string{},
		}
	}
	return c.JSON(doc)
}

// sessionResponse is what OpenSession returns to the editor client.
type sessionResponse struct {
	SessionID  string            `json:"session_id"`
	PlayerID   string            `json:"player_id"`
	PlayerName string            `json:"player_name,omitempty"`
	Coach      string            `json:"coach"`
	Buffer     string            `json:"buffer"`
	OtherNotes map[string]string `json:"other_notes,omitempty"`
}

// OpenSession acquires the player's edit lock and opens an editing session.
// The buffer holds only the coach's own entry; other coaches' entries come
// back read-only in other_notes.
func (h *Handlers) OpenSession(c *fiber.Ctx) error {
	coach, err := handlerutil.GetCoach(c)
	if err != nil {
		return err
	}

	playerID := c.Params("id")
	p, err := h.players.Get(c.Context(), playerID)
	if err != nil {
		return handlerutil.HandleServiceError(err, "OpenSession", coach, playerID, roster.ErrPlayerNotFound)
	}

	sess, err := h.svc.Open(c.Context(), p.ID, p.LegacyID, p.FullName(), coach)
	if err != nil {
		if le, ok := notes.AsLocked(err); ok {
			logger.L().Info("edit lock denied", "handler", "OpenSession", "coach", coach, "playerID", playerID, "held_by", le.HeldBy)
			return httperr.Fail(httperr.Locked(le.HeldBy))
		}
		if errors.Is(err, notes.ErrIdentityRequired) {
			return httperr.Fail(httperr.ErrIdentityRequired)
		}
		return handlerutil.HandleServiceError(err, "OpenSession", coach, playerID, nil)
	}

	other := sess.Known()
	delete(other, coach)

	return c.Status(201).JSON(sessionResponse{
		SessionID:  sess.ID,
		PlayerID:   sess.PlayerID,
		PlayerName: sess.PlayerName,
		Coach:      coach,
		Buffer:     sess.Buffer,
		OtherNotes: other,
	})
}

// SaveRequest is the body for saving a session's buffer.
type SaveRequest struct {
	Text string `json:"text" validate:"max=20000"`
}

// SaveSession merges the buffer into the stored notes, releases the lock,
// and closes the session. A store outage queues the edit instead of losing
// it; the response says which happened.
func (h *Handlers) SaveSession(c *fiber.Ctx) error {
	coach, err := handlerutil.GetCoach(c)
	if err != nil {
		return err
	}

	var req SaveRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "SaveSession"); err != nil {
		return err
	}

	sessionID := c.Params("sid")
	res, err := h.svc.Save(c.Context(), sessionID, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, notes.ErrSessionNotFound):
			return handlerutil.NotFoundError(notes.ErrSessionNotFound)
		case errors.Is(err, notes.ErrSessionInterrupted):
			logger.L().Info("save rejected, session interrupted", "handler", "SaveSession", "coach", coach, "sessionID", sessionID)
			return httperr.Fail(httperr.E{Status: 409, Message: err.Error()})
		default:
			return handlerutil.HandleServiceError(err, "SaveSession", coach, "", nil)
		}
	}
	return c.JSON(res)
}

// TouchSession marks the session's buffer as modified.
func (h *Handlers) TouchSession(c *fiber.Ctx) error {
	if _, err := handlerutil.GetCoach(c); err != nil {
		return err
	}

	if err := h.svc.Touch(c.Params("sid")); err != nil {
		return handlerutil.NotFoundError(notes.ErrSessionNotFound)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CancelSession abandons the session without saving and releases the lock.
func (h *Handlers) CancelSession(c *fiber.Ctx) error {
	coach, err := handlerutil.GetCoach(c)
	if err != nil {
		return err
	}

	sessionID := c.Params("sid")
	if err := h.svc.Cancel(c.Context(), sessionID); err != nil {
		if errors.Is(err, notes.ErrSessionNotFound) {
			return handlerutil.NotFoundError(notes.ErrSessionNotFound)
		}
		return handlerutil.HandleServiceError(err, "CancelSession", coach, "", nil)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListLocks returns the advisory-lock board after sweeping out stale
// entries, so the editor can badge players being edited right now.
func (h *Handlers) ListLocks(c *fiber.Ctx) error {
	coach, err := handlerutil.GetCoach(c)
	if err != nil {
		return err
	}

	if removed, err := h.locks.Sweep(c.Context()); err != nil {
		logger.L().Warn("stale lock sweep failed", "handler", "ListLocks", "coach", coach, "error", err)
	} else if removed > 0 {
		logger.L().Info("swept stale locks", "handler", "ListLocks", "removed", removed)
	}

	board, err := h.locks.List(c.Context())
	if err != nil {
		return handlerutil.HandleServiceError(err, "ListLocks", coach, "", nil)
	}
	return c.JSON(fiber.Map{"locks": board, "count": len(board)})
}
