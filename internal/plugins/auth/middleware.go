package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/yojanahub/yojanahub/internal/apperror"
)

// userIDKey is the echo context key under which the authenticated user id
// is stored by RequireAuth.
const userIDKey = "auth.user_id"

// RequireAuth returns middleware that rejects requests without a valid
// session token. On success the bound user id is placed in the request
// context for handlers to read via GetUserID.
func RequireAuth(service AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := getSessionToken(c)
			if token == "" {
				return apperror.NewUnauthorized("authentication required")
			}

			userID, ok := service.VerifySession(token)
			if !ok {
				return apperror.NewUnauthorized("session is invalid or expired")
			}

			c.Set(userIDKey, userID)
			return next(c)
		}
	}
}

// GetUserID returns the authenticated user id set by RequireAuth, or the
// empty string on routes that did not pass through it.
func GetUserID(c echo.Context) string {
	id, _ := c.Get(userIDKey).(string)
	return id
}
