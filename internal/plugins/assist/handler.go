package assist

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/yojanahub/yojanahub/internal/apperror"
	"github.com/yojanahub/yojanahub/internal/sanitize"
)

// maxMessageLen bounds user chat input before it reaches the prompt.
const maxMessageLen = 2000

// Handler handles HTTP requests for the assistant and translation proxy.
type Handler struct {
	service AssistService
}

// NewHandler creates a new assist handler.
func NewHandler(service AssistService) *Handler {
	return &Handler{service: service}
}

// truncateMessage caps a message at max bytes without splitting a rune.
// Chat input is frequently Devanagari or other multi-byte text.
func truncateMessage(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// Chat handles POST /api/chat.
func (h *Handler) Chat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewInvalidInput("invalid request body")
	}

	req.Message = sanitize.Plain(req.Message)
	if req.Message == "" {
		return apperror.NewInvalidInput("message is required")
	}
	req.Message = truncateMessage(req.Message, maxMessageLen)
	for i := range req.History {
		req.History[i].Content = sanitize.Plain(req.History[i].Content)
	}

	return c.JSON(http.StatusOK, h.service.Chat(c.Request().Context(), req))
}

// Translate handles POST /api/translate. Failures degrade to echoing the
// input, so the only error responses are validation ones.
func (h *Handler) Translate(c echo.Context) error {
	var req TranslateRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewInvalidInput("invalid request body")
	}

	req.Text = sanitize.Plain(req.Text)
	req.TargetLang = strings.ToLower(strings.TrimSpace(req.TargetLang))
	if req.Text == "" || req.TargetLang == "" {
		return apperror.NewInvalidInput("text and targetLang are required")
	}

	translated := h.service.Translate(c.Request().Context(), req.Text, req.TargetLang)
	return c.JSON(http.StatusOK, map[string]string{
		"translatedText": translated,
	})
}
