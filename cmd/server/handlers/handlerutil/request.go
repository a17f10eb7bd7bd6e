package handlerutil

import (
	"errors"

	"roster-pulse/cmd/server/ctxkeys"
	"roster-pulse/cmd/server/handlers/httperr"
	"roster-pulse/internal/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

func NotFoundError(err error) error {
	return httperr.Fail(httperr.E{
		Status:  404,
		Message: err.Error(),
	})
}

// GetCoach extracts the verified coach name from fiber context.
func GetCoach(c *fiber.Ctx) (string, error) {
	coach, ok := c.Locals(ctxkeys.CoachKey).(string)
	if !ok || coach == "" {
		logger.L().Error("coach name not found in context", "handler", "getCoach", "path", c.Path())
		return "", httperr.Fail(httperr.ErrIdentityRequired)
	}
	return coach, nil
}

// ParseAndValidateBody parses request body and validates it
func ParseAndValidateBody(c *fiber.Ctx, req any, validator *validator.Validate, handlerName string) error {
	coach, _ := c.Locals(ctxkeys.CoachKey).(string)

	if err := c.BodyParser(req); err != nil {
		logger.L().Warn("failed to parse request body", "handler", handlerName, "coach", coach, "error", err)
		return httperr.Fail(httperr.ErrBadRequest)
	}

	if err := validator.Struct(req); err != nil {
		logger.L().Warn("request validation failed", "handler", handlerName, "coach", coach, "error", err)
		return httperr.InvalidInput(err)
	}

	return nil
}

// ParseAndValidateQuery parses query parameters and validates them
func ParseAndValidateQuery(c *fiber.Ctx, req any, validator *validator.Validate, handlerName string) error {
	coach, _ := c.Locals(ctxkeys.CoachKey).(string)

	if err := c.QueryParser(req); err != nil {
		logger.L().Warn("failed to parse query params", "handler", handlerName, "coach", coach, "error", err)
		return httperr.Fail(httperr.ErrBadRequest)
	}

	if err := validator.Struct(req); err != nil {
		logger.L().Warn("query validation failed", "handler", handlerName, "coach", coach, "error", err)
		return httperr.InvalidInput(err)
	}

	return nil
}

// HandleServiceError handles common service error responses
func HandleServiceError(err error, handlerName, coach, playerID string, notFoundErr error) error {
	logFields := []any{"handler", handlerName, "coach", coach, "error", err}
	if playerID != "" {
		logFields = append(logFields, "playerID", playerID)
	}

	if notFoundErr != nil && errors.Is(err, notFoundErr) {
		logger.L().Info("resource not found", logFields...)
		return NotFoundError(notFoundErr)
	}

	logger.L().Error("service operation failed", logFields...)
	return httperr.Fail(httperr.E{
		Status:  500,
		Message: err.Error(),
	})
}
