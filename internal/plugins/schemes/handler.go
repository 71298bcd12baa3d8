package schemes

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/yojanahub/yojanahub/internal/apperror"
	"github.com/yojanahub/yojanahub/internal/sanitize"
)

// Handler handles HTTP requests for the scheme catalog.
type Handler struct {
	service SchemeService
}

// NewHandler creates a new catalog handler.
func NewHandler(service SchemeService) *Handler {
	return &Handler{service: service}
}

// List handles GET /api/schemes with optional category, state, and search
// query filters. The response is a bare array, which is what the search
// page consumes.
func (h *Handler) List(c echo.Context) error {
	filter := ListFilter{
		Category: sanitize.Plain(c.QueryParam("category")),
		State:    sanitize.Plain(c.QueryParam("state")),
		Search:   sanitize.Plain(c.QueryParam("search")),
	}

	schemes, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, schemes)
}

// Get handles GET /api/schemes/:id.
func (h *Handler) Get(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return apperror.NewInvalidInput("scheme id is required")
	}

	scheme, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, scheme)
}

// Create handles POST /api/schemes. Requires authentication.
func (h *Handler) Create(c echo.Context) error {
	var req CreateSchemeRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewInvalidInput("invalid request body")
	}
	if err := validateCreate(&req); err != nil {
		return err
	}

	scheme, err := h.service.Create(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"message": "scheme added successfully",
		"scheme":  scheme,
	})
}

func validateCreate(req *CreateSchemeRequest) error {
	switch {
	case strings.TrimSpace(req.ID) == "":
		return apperror.NewInvalidInput("id is required")
	case strings.TrimSpace(req.SchemeName) == "":
		return apperror.NewInvalidInput("schemeName is required")
	case strings.TrimSpace(req.Category) == "":
		return apperror.NewInvalidInput("category is required")
	case strings.TrimSpace(req.Ministry) == "":
		return apperror.NewInvalidInput("ministry is required")
	case strings.TrimSpace(req.State) == "":
		return apperror.NewInvalidInput("state is required")
	}
	return nil
}
