package auth

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/yojanahub/yojanahub/internal/apperror"
	"github.com/yojanahub/yojanahub/internal/plugins/schemes"
)

// minPasswordLen is the minimum accepted password length.
const minPasswordLen = 6

// emailPattern is a pragmatic sanity check, not a full RFC 5322 validator.
// The real authority on deliverability is the reset mail bouncing.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// SchemeLookup resolves saved scheme ids to full catalog records for the
// saved-schemes listing.
type SchemeLookup interface {
	FindByIDs(ctx context.Context, ids []string) ([]schemes.Scheme, error)
}

// Handler handles HTTP requests for authentication. All request bodies are
// JSON; all validation happens here at the boundary before the service is
// called.
type Handler struct {
	service       AuthService
	lookup        SchemeLookup
	devMode       bool
	secureCookies bool
}

// NewHandler creates a new auth handler. lookup may be nil; the
// saved-schemes listing then returns ids without catalog records.
func NewHandler(service AuthService, lookup SchemeLookup, devMode, secureCookies bool) *Handler {
	return &Handler{
		service:       service,
		lookup:        lookup,
		devMode:       devMode,
		secureCookies: secureCookies,
	}
}

// Register handles POST /auth/register.
func (h *Handler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewInvalidInput("invalid request body")
	}
	if err := validateRegister(&req); err != nil {
		return err
	}

	user, token, err := h.service.Register(c.Request().Context(), RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	setSessionCookie(c, token, h.service.SessionTTL(), h.secureCookies)

	return c.JSON(http.StatusCreated, map[string]any{
		"user": user.Public(),
	})
}

// Login handles POST /auth/login.
func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewInvalidInput("invalid request body")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return apperror.NewInvalidInput("email and password are required")
	}

	user, token, err := h.service.Login(c.Request().Context(), LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	setSessionCookie(c, token, h.service.SessionTTL(), h.secureCookies)

	return c.JSON(http.StatusOK, map[string]any{
		"user": user.Public(),
	})
}

// Logout handles POST /auth/logout. Tokens are stateless, so logout is
// purely clearing the cookie; an already expired session still succeeds.
func (h *Handler) Logout(c echo.Context) error {
	clearSessionCookie(c, h.secureCookies)
	return c.JSON(http.StatusOK, map[string]string{
		"message": "logged out",
	})
}

// Me handles GET /auth/me. Requires authentication.
func (h *Handler) Me(c echo.Context) error {
	user, err := h.service.GetUser(c.Request().Context(), GetUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"user": user.Public(),
	})
}

// ForgotPassword handles POST /auth/forgot-password. The response body is
// the same whether or not an account exists for the email. In development
// the raw reset token is included so the flow can be exercised without a
// mail server.
func (h *Handler) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewInvalidInput("invalid request body")
	}
	if !emailPattern.MatchString(strings.TrimSpace(req.Email)) {
		return apperror.NewInvalidInput("a valid email is required")
	}

	secret, err := h.service.InitiatePasswordReset(c.Request().Context(), req.Email)
	if err != nil {
		return err
	}

	resp := map[string]string{
		"message": "if an account exists for that email, a reset link has been sent",
	}
	if h.devMode && secret != "" {
		resp["devResetToken"] = secret
	}
	return c.JSON(http.StatusOK, resp)
}

// ResetPassword handles POST /auth/reset-password.
func (h *Handler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewInvalidInput("invalid request body")
	}
	if strings.TrimSpace(req.Token) == "" {
		return apperror.NewInvalidInput("reset token is required")
	}
	if len(req.Password) < minPasswordLen {
		return apperror.NewInvalidInput("password must be at least 6 characters")
	}

	if err := h.service.ResetPassword(c.Request().Context(), req.Token, req.Password); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "password has been reset, you can now log in",
	})
}

// SaveScheme handles POST /auth/save-scheme. Requires authentication.
func (h *Handler) SaveScheme(c echo.Context) error {
	var req SaveSchemeRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewInvalidInput("invalid request body")
	}
	if strings.TrimSpace(req.SchemeID) == "" {
		return apperror.NewInvalidInput("schemeId is required")
	}

	ids, err := h.service.SaveScheme(c.Request().Context(), GetUserID(c), strings.TrimSpace(req.SchemeID))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"savedSchemes": ids,
	})
}

// UnsaveScheme handles POST /auth/unsave-scheme. Requires authentication.
func (h *Handler) UnsaveScheme(c echo.Context) error {
	var req SaveSchemeRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewInvalidInput("invalid request body")
	}
	if strings.TrimSpace(req.SchemeID) == "" {
		return apperror.NewInvalidInput("schemeId is required")
	}

	ids, err := h.service.UnsaveScheme(c.Request().Context(), GetUserID(c), strings.TrimSpace(req.SchemeID))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"savedSchemes": ids,
	})
}

// SavedSchemes handles GET /auth/saved-schemes. Requires authentication.
// Returns the full catalog records alongside the raw ids so the client can
// render cards without a second round trip.
func (h *Handler) SavedSchemes(c echo.Context) error {
	ctx := c.Request().Context()
	ids, err := h.service.SavedSchemeIDs(ctx, GetUserID(c))
	if err != nil {
		return err
	}

	records := []schemes.Scheme{}
	if h.lookup != nil && len(ids) > 0 {
		records, err = h.lookup.FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"schemes":        records,
		"savedSchemeIds": ids,
		"count":          len(records),
	})
}

// validateRegister checks the registration payload before it reaches the
// service layer.
func validateRegister(req *RegisterRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return apperror.NewInvalidInput("name is required")
	}
	if !emailPattern.MatchString(strings.TrimSpace(req.Email)) {
		return apperror.NewInvalidInput("a valid email is required")
	}
	if len(req.Password) < minPasswordLen {
		return apperror.NewInvalidInput("password must be at least 6 characters")
	}
	return nil
}
