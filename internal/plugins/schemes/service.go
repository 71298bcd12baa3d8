package schemes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yojanahub/yojanahub/internal/apperror"
	"github.com/yojanahub/yojanahub/internal/sanitize"
)

// listCacheTTL bounds how stale a cached catalog listing may be.
const listCacheTTL = 5 * time.Minute

// SchemeService defines the business logic contract for the catalog.
type SchemeService interface {
	List(ctx context.Context, filter ListFilter) ([]Scheme, error)
	Get(ctx context.Context, id string) (*Scheme, error)
	Create(ctx context.Context, req *CreateSchemeRequest) (*Scheme, error)
	FindByIDs(ctx context.Context, ids []string) ([]Scheme, error)
}

// schemeService reads from the database first and falls back to the bundled
// JSON catalog when the database is unreachable or empty. Listings are
// cached in Redis under a generation counter that create bumps.
type schemeService struct {
	repo     SchemeRepository
	fallback *fileCatalog
	cache    *redis.Client
}

// NewSchemeService creates the catalog service. cache may be nil, in which
// case every listing hits the repository.
func NewSchemeService(repo SchemeRepository, fallbackPath string, cache *redis.Client) SchemeService {
	return &schemeService{
		repo:     repo,
		fallback: newFileCatalog(fallbackPath),
		cache:    cache,
	}
}

// List returns catalog entries matching the filter.
func (s *schemeService) List(ctx context.Context, filter ListFilter) ([]Scheme, error) {
	if cached, ok := s.cachedList(ctx, filter); ok {
		return cached, nil
	}

	schemes, err := s.repo.List(ctx, filter)
	if err != nil {
		slog.Warn("scheme listing from database failed, using file catalog",
			slog.Any("error", err),
		)
		return s.listFromFile(filter)
	}
	if len(schemes) == 0 {
		// Zero rows usually means the database was never seeded; the
		// bundled catalog answers instead, with the same filter applied
		// in memory.
		return s.listFromFile(filter)
	}

	s.storeList(ctx, filter, schemes)
	return schemes, nil
}

// Get returns a single scheme, consulting the file catalog when the
// database cannot answer.
func (s *schemeService) Get(ctx context.Context, id string) (*Scheme, error) {
	scheme, err := s.repo.FindByID(ctx, id)
	if err == nil {
		return scheme, nil
	}
	if appErr, ok := err.(*apperror.AppError); ok && appErr.Code != 500 {
		// Known absence in a healthy database; still give the bundled
		// catalog a chance before reporting not found.
		if fromFile := s.getFromFile(id); fromFile != nil {
			return fromFile, nil
		}
		return nil, appErr
	}

	slog.Warn("scheme lookup from database failed, using file catalog",
		slog.String("scheme_id", id),
		slog.Any("error", err),
	)
	if fromFile := s.getFromFile(id); fromFile != nil {
		return fromFile, nil
	}
	return nil, apperror.NewNotFound("scheme not found")
}

// Create adds a scheme to the catalog. All free-text fields are sanitized
// before storage; description-like fields keep basic formatting markup.
func (s *schemeService) Create(ctx context.Context, req *CreateSchemeRequest) (*Scheme, error) {
	scheme := &Scheme{
		ID:                sanitize.Plain(req.ID),
		SchemeName:        sanitize.Plain(req.SchemeName),
		Category:          sanitize.Plain(req.Category),
		Ministry:          sanitize.Plain(req.Ministry),
		State:             sanitize.Plain(req.State),
		TargetGroups:      sanitizeList(req.TargetGroups),
		Eligibility:       sanitize.HTML(req.Eligibility),
		Benefits:          sanitize.HTML(req.Benefits),
		DocumentsRequired: sanitizeList(req.DocumentsRequired),
		ApplyLink:         sanitize.Plain(req.ApplyLink),
		Description:       sanitize.HTML(req.Description),
		LanguageSupport:   sanitizeList(req.LanguageSupport),
	}

	if err := s.repo.Create(ctx, scheme); err != nil {
		if appErr, ok := err.(*apperror.AppError); ok {
			return nil, appErr
		}
		return nil, apperror.NewInternal(fmt.Errorf("creating scheme: %w", err))
	}

	s.invalidateListCache(ctx)

	slog.Info("scheme created",
		slog.String("scheme_id", scheme.ID),
		slog.String("category", scheme.Category),
	)
	return scheme, nil
}

// FindByIDs resolves scheme ids to full records, preserving availability by
// falling back to the file catalog per missing id.
func (s *schemeService) FindByIDs(ctx context.Context, ids []string) ([]Scheme, error) {
	if len(ids) == 0 {
		return []Scheme{}, nil
	}

	schemes, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		slog.Warn("scheme batch lookup from database failed, using file catalog",
			slog.Any("error", err),
		)
		schemes = nil
	}

	if len(schemes) < len(ids) {
		schemes = s.supplementFromFile(schemes, ids)
	}
	if schemes == nil {
		schemes = []Scheme{}
	}
	return schemes, nil
}

// --- File fallback helpers ---

func (s *schemeService) listFromFile(filter ListFilter) ([]Scheme, error) {
	schemes, err := s.fallback.Filter(filter)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("file catalog: %w", err))
	}
	return schemes, nil
}

func (s *schemeService) getFromFile(id string) *Scheme {
	all, err := s.fallback.Load()
	if err != nil {
		return nil
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i]
		}
	}
	return nil
}

// supplementFromFile fills in requested ids the database did not return.
func (s *schemeService) supplementFromFile(found []Scheme, ids []string) []Scheme {
	have := make(map[string]bool, len(found))
	for _, sc := range found {
		have[sc.ID] = true
	}
	for _, id := range ids {
		if have[id] {
			continue
		}
		if sc := s.getFromFile(id); sc != nil {
			found = append(found, *sc)
		}
	}
	return found
}

// --- Listing cache ---

// The cache key embeds a generation counter; Create bumps the counter so
// stale listings simply stop being addressed and expire on their own.
const listCacheGenKey = "schemes:list:gen"

func (s *schemeService) listCacheKey(ctx context.Context, filter ListFilter) string {
	gen, err := s.cache.Get(ctx, listCacheGenKey).Result()
	if err != nil {
		gen = "0"
	}
	return fmt.Sprintf("schemes:list:%s:%s|%s|%s|%s|%d",
		gen,
		strings.ToLower(filter.Category),
		strings.ToLower(filter.State),
		strings.ToLower(filter.Search),
		strings.ToLower(strings.Join(filter.TargetGroups, ",")),
		filter.Limit,
	)
}

func (s *schemeService) cachedList(ctx context.Context, filter ListFilter) ([]Scheme, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(ctx, s.listCacheKey(ctx, filter)).Bytes()
	if err != nil {
		return nil, false
	}
	var schemes []Scheme
	if err := json.Unmarshal(data, &schemes); err != nil {
		return nil, false
	}
	return schemes, true
}

func (s *schemeService) storeList(ctx context.Context, filter ListFilter, schemes []Scheme) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(schemes)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.listCacheKey(ctx, filter), data, listCacheTTL).Err(); err != nil {
		slog.Debug("caching scheme listing failed", slog.Any("error", err))
	}
}

func (s *schemeService) invalidateListCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Incr(ctx, listCacheGenKey).Err(); err != nil {
		slog.Debug("bumping scheme cache generation failed", slog.Any("error", err))
	}
}

func sanitizeList(values []string) StringList {
	var out StringList
	for _, v := range values {
		if cleaned := sanitize.Plain(v); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}
