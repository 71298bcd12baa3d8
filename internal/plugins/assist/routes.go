package assist

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/yojanahub/yojanahub/internal/middleware"
)

// RegisterRoutes wires the assistant endpoints. Both proxy to external
// services, so they carry per-IP rate limits.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.POST("/api/chat", h.Chat, middleware.RateLimit(20, time.Minute))
	e.POST("/api/translate", h.Translate, middleware.RateLimit(60, time.Minute))
}
