package auth

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/yojanahub/yojanahub/internal/middleware"
)

// RegisterRoutes wires the auth endpoints onto the Echo instance. The
// credential endpoints carry per-IP rate limits to slow down guessing.
func RegisterRoutes(e *echo.Echo, h *Handler, service AuthService) {
	g := e.Group("/auth")

	g.POST("/register", h.Register, middleware.RateLimit(5, time.Minute))
	g.POST("/login", h.Login, middleware.RateLimit(10, time.Minute))
	g.POST("/logout", h.Logout)
	g.POST("/forgot-password", h.ForgotPassword, middleware.RateLimit(5, time.Minute))
	g.POST("/reset-password", h.ResetPassword, middleware.RateLimit(5, time.Minute))

	authed := g.Group("", RequireAuth(service))
	authed.GET("/me", h.Me)
	authed.POST("/save-scheme", h.SaveScheme)
	authed.POST("/unsave-scheme", h.UnsaveScheme)
	authed.GET("/saved-schemes", h.SavedSchemes)
}
