package schemes

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes wires the catalog endpoints. requireAuth guards mutations;
// reads are public.
func RegisterRoutes(e *echo.Echo, h *Handler, requireAuth echo.MiddlewareFunc) {
	g := e.Group("/api/schemes")

	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Create, requireAuth)
}
