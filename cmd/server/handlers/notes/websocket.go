package notes

import (
	"context"
	"time"

	"roster-pulse/cmd/server/ctxkeys"
	"roster-pulse/cmd/server/handlers/httperr"
	"roster-pulse/internal/logger"
	"roster-pulse/internal/services/locks"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

const (
	// WSClosePolicyViolation represents WebSocket close code for policy violation
	WSClosePolicyViolation = 1008

	// WebSocket timeout constants
	wsWriteTimeout     = 10 * time.Second // Timeout for writing messages to WebSocket
	wsPingInterval     = 25 * time.Second // Interval for sending ping messages
	wsPingWriteTimeout = 5 * time.Second  // Timeout for writing ping messages
)

// TokenVerifier validates a raw identity token and returns the coach name.
type TokenVerifier interface {
	Verify(raw string) (string, error)
}

// LockSubscriber provides per-player lock event streams.
type LockSubscriber interface {
	Subscribe(playerID string) (<-chan locks.Event, func())
}

// WebSocketHandlers streams lock events so editor clients can react to
// takeovers and releases in real time.
type WebSocketHandlers struct {
	locks         LockSubscriber
	tokens        TokenVerifier
	maxSessionSec int
}

// NewWebSocketHandlers creates new WebSocket handlers
func NewWebSocketHandlers(lockSub LockSubscriber, tokens TokenVerifier, maxSessionSec int) *WebSocketHandlers {
	return &WebSocketHandlers{
		locks:         lockSub,
		tokens:        tokens,
		maxSessionSec: maxSessionSec,
	}
}

// WSUpgrade upgrades the HTTP connection for the lock event stream. The
// identity token rides in the query string because browsers cannot set
// headers on WebSocket dials.
func (h *WebSocketHandlers) WSUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		token := c.Query("token")
		if token == "" {
			logger.L().Warn("missing token in websocket upgrade", "handler", "WSUpgrade", "path", c.Path())
			return httperr.Fail(httperr.E{
				Status:  401,
				Message: "Missing token",
			})
		}

		coach, err := h.tokens.Verify(token)
		if err != nil {
			logger.L().Warn("invalid token in websocket upgrade", "handler", "WSUpgrade", "path", c.Path(), "error", err)
			return httperr.Fail(httperr.E{
				Status:  401,
				Message: "Invalid token",
			})
		}

		c.Locals(ctxkeys.CoachKey, coach)
		// Use Fiber's request-bound context so the stream handler gets a
		// real context.Context.
		c.Locals(ctxkeys.ParentCtxKey, c.UserContext())

		return c.Next()
	}

	logger.L().Warn("websocket upgrade required", "handler", "WSUpgrade", "path", c.Path())
	return httperr.Fail(httperr.E{
		Status:  400,
		Message: "WebSocket upgrade required",
	})
}

// WSLockStream pushes one player's lock events to the client until the
// client hangs up or the session timer fires.
func (h *WebSocketHandlers) WSLockStream(c *websocket.Conn) {
	coach, _ := c.Locals(ctxkeys.CoachKey).(string)
	playerID := c.Params("id")
	if coach == "" || playerID == "" {
		h.closeConnection(c, coach)
		return
	}

	parentCtx, ok := c.Locals(ctxkeys.ParentCtxKey).(context.Context)
	if !ok {
		parentCtx = context.Background()
	}

	ctx, cancelCtx := context.WithCancel(parentCtx)
	defer cancelCtx()

	events, cancel := h.locks.Subscribe(playerID)
	defer cancel()

	logger.L().Info("lock stream opened", "coach", coach, "player_id", playerID)

	sessionTimer := time.AfterFunc(time.Duration(h.maxSessionSec)*time.Second, func() {
		logger.L().Info("lock stream session timeout", "coach", coach, "player_id", playerID)
		h.sendCloseMessage(c, coach)
		h.closeConnection(c, coach)
		cancelCtx()
	})
	defer sessionTimer.Stop()

	ping := h.startKeepAlive(c, coach)
	defer ping.Stop()

	go h.pumpEvents(ctx, c, coach, events)

	// Reads only serve to detect the client hanging up.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}

	logger.L().Info("lock stream closed", "coach", coach, "player_id", playerID)
}

// closeConnection safely closes the WebSocket connection
func (h *WebSocketHandlers) closeConnection(c *websocket.Conn, coach string) {
	if err := c.Close(); err != nil {
		logger.L().Error("failed to close WebSocket connection", "error", err, "coach", coach)
	}
}

// sendCloseMessage sends a close frame to the client
func (h *WebSocketHandlers) sendCloseMessage(c *websocket.Conn, coach string) {
	err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(WSClosePolicyViolation, "session timeout"))
	if err != nil {
		logger.L().Error("failed to send close message", "error", err, "coach", coach)
	}
}

// startKeepAlive starts the keep-alive ping mechanism
func (h *WebSocketHandlers) startKeepAlive(c *websocket.Conn, coach string) *time.Ticker {
	ping := time.NewTicker(wsPingInterval)
	go func() {
		for range ping.C {
			if err := c.SetWriteDeadline(time.Now().Add(wsPingWriteTimeout)); err != nil {
				return
			}
			if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.L().Warn("failed to write ping message", "error", err, "coach", coach)
				return
			}
		}
	}()
	return ping
}

// pumpEvents forwards lock events to the client until the stream ends.
func (h *WebSocketHandlers) pumpEvents(ctx context.Context, c *websocket.Conn, coach string, events <-chan locks.Event) {
	defer func() {
		if r := recover(); r != nil {
			logger.L().Error("panic in lock stream sender", "error", r, "coach", coach)
		}
	}()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := c.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
				return
			}
			if err := c.WriteJSON(ev); err != nil {
				logger.L().Error("failed to write lock event", "error", err, "coach", coach)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
