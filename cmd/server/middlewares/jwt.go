package middlewares

import (
	"roster-pulse/cmd/server/ctxkeys"
	"roster-pulse/cmd/server/handlers/httperr"
	"roster-pulse/internal/config"
	"roster-pulse/internal/services/identity"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// CoachIdentity returns a configured Fiber middleware that:
//
//   - validates the Bearer token signature using cfg.JWTSecret
//   - makes sure the token carries the coach name claim
//   - stores the name in ctx.Locals(ctxkeys.CoachKey) so downstream handlers
//     can attribute notes and locks to it.
//
// On any problem it bubbles up a 401 via the global httperr handler.
func CoachIdentity(cfg config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		SuccessHandler: func(c *fiber.Ctx) error {
			// Token already verified at this point.
			token := c.Locals("user").(*jwt.Token)
			claims, _ := token.Claims.(jwt.MapClaims)

			coach, ok := claims[identity.ClaimCoach].(string)
			if !ok || coach == "" {
				return httperr.Fail(httperr.ErrIdentityRequired)
			}

			c.Locals(ctxkeys.CoachKey, coach)
			return c.Next()
		},

		// Override the default "unauthorized" JSON to match the project style
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return httperr.Fail(httperr.E{Status: 401, Message: "Unauthorized: " + err.Error()})
		},
	})
}
