package roster

import (
	"context"
	"os"
	"time"

	"roster-pulse/cmd/server/handlers/handlerutil"
	"roster-pulse/cmd/server/handlers/httperr"
	"roster-pulse/internal/clients/blob"
	"roster-pulse/internal/logger"
	"roster-pulse/internal/roster"
	"roster-pulse/internal/services/notes"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const photoURLExpiry = 15 * time.Minute

// RosterService defines the interface for roster operations
type RosterService interface {
	Sync(ctx context.Context, players []*roster.Player) (*roster.SyncResult, error)
	Get(ctx context.Context, id string) (*roster.Player, error)
	List(ctx context.Context, f roster.Filter) ([]*roster.Player, error)
	UpdateJersey(ctx context.Context, id, jersey string) (*roster.Player, error)
}

// NotesReader supplies flattened notes for the roster export.
type NotesReader interface {
	List(ctx context.Context) ([]*notes.NoteDocument, error)
}

// Handlers contains the roster HTTP handlers
type Handlers struct {
	svc        RosterService
	notes      NotesReader
	photos     *blob.Store
	rosterFile string
	validator  *validator.Validate
}

// NewHandlers creates new roster handlers. photos may be nil when no object
// store is configured; photo endpoints then return 404.
func NewHandlers(svc RosterService, notesReader NotesReader, photos *blob.Store, rosterFile string, v *validator.Validate) *Handlers {
	return &Handlers{
		svc:        svc,
		notes:      notesReader,
		photos:     photos,
		rosterFile: rosterFile,
		validator:  v,
	}
}

// List returns the roster, optionally filtered by position, school, or a
// free-text search over names and jersey numbers.
func (h *Handlers) List(c *fiber.Ctx) error {
	coach, err := handlerutil.GetCoach(c)
	if err != nil {
		return err
	}

	var f roster.Filter
	if err := handlerutil.ParseAndValidateQuery(c, &f, h.validator, "ListPlayers"); err != nil {
		return err
	}

	players, err := h.svc.List(c.Context(), f)
	if err != nil {
		return handlerutil.HandleServiceError(err, "ListPlayers", coach, "", nil)
	}
	if players == nil {
		players = []*roster.Player{}
	}

	return c.JSON(fiber.Map{"players": players, "count": len(players)})
}

// Get returns one player.
func (h *Handlers) Get(c *fiber.Ctx) error {
	coach, err := handlerutil.GetCoach(c)
	if err != nil {
		return err
	}

	id := c.Params("id")
	p, err := h.svc.Get(c.Context(), id)
	if err != nil {
		return handlerutil.HandleServiceError(err, "GetPlayer", coach, id, roster.ErrPlayerNotFound)
	}
	return c.JSON(p)
}

// Sync re-reads the configured roster file and upserts every row. Jersey
// numbers assigned since the last import are preserved, and notes are never
// touched.
func (h *Handlers) Sync(c *fiber.Ctx) error {
	coach, err := handlerutil.GetCoach(c)
	if err != nil {
		return err
	}

	f, err := os.Open(h.rosterFile)
	if err != nil {
		logger.L().Error("failed to open roster file", "handler", "SyncRoster", "file", h.rosterFile, "error", err)
		return httperr.Fail(httperr.E{Status: 500, Message: "roster file unavailable"})
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logger.L().Warn("failed to close roster file", "error", cerr)
		}
	}()

	players, err := roster.Parse(f)
	if err != nil {
		logger.L().Error("failed to parse roster file", "handler", "SyncRoster", "file", h.rosterFile, "error", err)
		return httperr.Fail(httperr.E{Status: 500, Message: "roster file invalid: " + err.Error()})
	}

	res, err := h.svc.Sync(c.Context(), players)
	if err != nil {
		return handlerutil.HandleServiceError(err, "SyncRoster", coach, "", nil)
	}
	return c.JSON(res)
}

// UpdateJerseyRequest is the body for assigning a jersey number.
type UpdateJerseyRequest struct {
	Jersey string `json:"jersey" validate:"max=8"`
}

// UpdateJersey assigns a jersey number to a player. An empty value clears it.
func (h *Handlers) UpdateJersey(c *fiber.Ctx) error {
	coach, err := handlerutil.GetCoach(c)
	if err != nil {
		return err
	}

	var req UpdateJerseyRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "UpdateJersey"); err != nil {
		return err
	}

	id := c.Params("id")
	p, err := h.svc.UpdateJersey(c.Context(), id, req.Jersey)
	if err != nil {
		return handlerutil.HandleServiceError(err, "UpdateJersey", coach, id, roster.ErrPlayerNotFound)
	}
	return c.JSON(p)
}

// Export streams the full roster as CSV, one row per player with the
// flattened notes in the last column.
func (h *Handlers) Export(c *fiber.Ctx) error {
	coach, err := handlerutil.GetCoach(c)
	if err != nil {
		return err
	}

	players, err := h.svc.List(c.Context(), roster.Filter{})
	if err != nil {
		return handlerutil.HandleServiceError(err, "ExportRoster", coach, "", nil)
	}

	docs, err := h.notes.List(c.Context())
	if err != nil {
		return handlerutil.HandleServiceError(err, "ExportRoster", coach, "", nil)
	}
	notesByPlayer := make(map[string]string, len(docs))
	for _, doc := range docs {
		// Documents still keyed by a legacy ID are matched through it.
		notesByPlayer[doc.DocID] = doc.Notes
		if doc.PlayerID != "" {
			notesByPlayer[doc.PlayerID] = doc.Notes
		}
	}
	for _, p := range players {
		if _, ok := notesByPlayer[p.ID]; !ok && p.LegacyID != "" {
			if text, ok := notesByPlayer[p.LegacyID]; ok {
				notesByPlayer[p.ID] = text
			}
		}
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="tryout-roster.csv"`)
	if err := roster.ExportCSV(c.Response().BodyWriter(), players, notesByPlayer); err != nil {
		logger.L().Error("roster export failed", "handler", "ExportRoster", "coach", coach, "error", err)
		return httperr.Fail(httperr.ErrInternal)
	}
	return nil
}

// UploadPhoto stores a player's photo in the object store.
func (h *Handlers) UploadPhoto(c *fiber.Ctx) error {
	coach, err := handlerutil.GetCoach(c)
	if err != nil {
		return err
	}
	if h.photos == nil {
		return httperr.Fail(httperr.ErrNotFound)
	}

	id := c.Params("id")
	if _, err := h.svc.Get(c.Context(), id); err != nil {
		return handlerutil.HandleServiceError(err, "UploadPhoto", coach, id, roster.ErrPlayerNotFound)
	}

	fh, err := c.FormFile("photo")
	if err != nil {
		logger.L().Warn("missing photo form file", "handler", "UploadPhoto", "coach", coach, "error", err)
		return httperr.Fail(httperr.ErrBadRequest)
	}

	file, err := fh.Open()
	if err != nil {
		logger.L().Error("failed to open uploaded photo", "handler", "UploadPhoto", "error", err)
		return httperr.Fail(httperr.ErrInternal)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			logger.L().Warn("failed to close uploaded photo", "error", cerr)
		}
	}()

	contentType := fh.Header.Get("Content-Type")
	if err := h.photos.PutPhoto(c.Context(), id, contentType, file, fh.Size); err != nil {
		logger.L().Error("photo upload failed", "handler", "UploadPhoto", "coach", coach, "playerID", id, "error", err)
		return httperr.Fail(httperr.ErrInternal)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// PhotoURL returns a short-lived URL for a player's photo.
func (h *Handlers) PhotoURL(c *fiber.Ctx) error {
	coach, err := handlerutil.GetCoach(c)
	if err != nil {
		return err
	}
	if h.photos == nil {
		return httperr.Fail(httperr.ErrNotFound)
	}

	id := c.Params("id")
	url, err := h.photos.PhotoURL(c.Context(), id, photoURLExpiry)
	if err != nil {
		logger.L().Error("failed to presign photo url", "handler", "PhotoURL", "coach", coach, "playerID", id, "error", err)
		return httperr.Fail(httperr.ErrInternal)
	}
	return c.JSON(fiber.Map{"url": url, "expires_in_sec": int(photoURLExpiry.Seconds())})
}
