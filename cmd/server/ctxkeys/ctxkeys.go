// Package ctxkeys centralizes the fiber.Ctx.Locals keys shared between
// middlewares and handlers.
package ctxkeys

const (
	// CoachKey holds the verified coach display name.
	CoachKey = "coachName"
	// ParentCtxKey carries the request context across the WebSocket upgrade.
	ParentCtxKey = "parentCtx"
)
