package assist

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// translateCacheTTL keeps translated strings around for a day; the source
// strings are static catalog text, so long retention is safe.
const translateCacheTTL = 24 * time.Hour

// translator proxies short texts to a hosted translation endpoint with a
// Redis cache in front. Translation is best-effort: any failure returns the
// original text untranslated.
type translator struct {
	baseURL string
	client  *http.Client
	cache   *redis.Client
}

func newTranslator(baseURL string, timeout time.Duration, cache *redis.Client) *translator {
	return &translator{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		cache:   cache,
	}
}

type translateResponse struct {
	ResponseStatus int `json:"responseStatus"`
	ResponseData   struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
}

// Translate converts English text into the target language. English targets
// echo the input unchanged.
func (t *translator) Translate(ctx context.Context, text, targetLang string) string {
	if targetLang == "" || targetLang == "en" {
		return text
	}

	cacheKey := translateCacheKey(text, targetLang)
	if t.cache != nil {
		if cached, err := t.cache.Get(ctx, cacheKey).Result(); err == nil && cached != "" {
			return cached
		}
	}

	translated, err := t.fetch(ctx, text, targetLang)
	if err != nil {
		slog.Warn("translation failed, returning original text",
			slog.String("target_lang", targetLang),
			slog.Any("error", err),
		)
		return text
	}

	if t.cache != nil {
		if err := t.cache.Set(ctx, cacheKey, translated, translateCacheTTL).Err(); err != nil {
			slog.Debug("caching translation failed", slog.Any("error", err))
		}
	}
	return translated
}

func (t *translator) fetch(ctx context.Context, text, targetLang string) (string, error) {
	endpoint := fmt.Sprintf("%s/get?q=%s&langpair=%s",
		t.baseURL, url.QueryEscape(text), url.QueryEscape("en|"+targetLang))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("building translation request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling translation endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading translation response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translation endpoint returned %d", resp.StatusCode)
	}

	var parsed translateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decoding translation response: %w", err)
	}
	if parsed.ResponseStatus != http.StatusOK {
		return "", fmt.Errorf("translation endpoint status %d", parsed.ResponseStatus)
	}

	translated := strings.Join(strings.Fields(parsed.ResponseData.TranslatedText), " ")
	if translated == "" || strings.EqualFold(translated, text) {
		return "", fmt.Errorf("translation endpoint returned no translation")
	}
	return translated, nil
}

func translateCacheKey(text, targetLang string) string {
	sum := sha256.Sum256([]byte(text))
	return "assist:translate:" + targetLang + ":" + hex.EncodeToString(sum[:])
}
