package app

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yojanahub/yojanahub/internal/mailer"
	"github.com/yojanahub/yojanahub/internal/plugins/assist"
	"github.com/yojanahub/yojanahub/internal/plugins/auth"
	"github.com/yojanahub/yojanahub/internal/plugins/schemes"
)

// registerRoutes constructs every plugin's repository, service, and handler
// and wires their routes. This is the single place where all routes are
// aggregated.
func (a *App) registerRoutes() error {
	e := a.Echo
	cfg := a.Config

	// Health check endpoint for container health monitoring.
	e.GET("/healthz", func(c echo.Context) error {
		if err := a.DB.PingContext(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// --- Scheme catalog plugin ---
	schemeRepo := schemes.NewSchemeRepository(a.DB)
	schemeService := schemes.NewSchemeService(schemeRepo, cfg.SchemesJSONPath, a.Redis)
	schemeHandler := schemes.NewHandler(schemeService)

	// --- Auth plugin ---
	tokens, err := auth.NewTokenService(cfg.Auth.SecretKey, cfg.Auth.SessionTTL)
	if err != nil {
		return fmt.Errorf("configuring session tokens: %w", err)
	}

	var mail mailer.MailSender
	if cfg.Mail.Enabled() {
		mail = mailer.New(cfg.Mail)
	}

	userRepo := auth.NewUserRepository(a.DB)
	authService := auth.NewAuthService(userRepo, tokens, mail, cfg.BaseURL, cfg.Auth.ResetTokenTTL)

	// Cookies ride plain HTTP only in development.
	secureCookies := !cfg.IsDevelopment()
	authHandler := auth.NewHandler(authService, schemeService, cfg.IsDevelopment(), secureCookies)
	auth.RegisterRoutes(e, authHandler, authService)

	requireAuth := auth.RequireAuth(authService)
	schemes.RegisterRoutes(e, schemeHandler, requireAuth)

	// --- Assistant plugin ---
	assistService := assist.NewAssistService(schemeService, cfg.Assist, a.Redis)
	assist.RegisterRoutes(e, assist.NewHandler(assistService))

	return nil
}
