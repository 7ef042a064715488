package images

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/estatehub/estatehub-backend/pkg/logger"
	"github.com/estatehub/estatehub-backend/pkg/metrics"
	"github.com/estatehub/estatehub-backend/pkg/storage"
	goredis "github.com/redis/go-redis/v9"
)

const fallbackBodyLimit int64 = 64 * 1024

// blobLocator is the slice of the object store the resolver needs.
type blobLocator interface {
	Stat(ctx context.Context, key string) (storage.ObjectInfo, error)
	PublicURL(key string) string
}

type urlCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	ResolvedURLKey(blobKey string) string
}

// ResolverConfig carries the knobs for reference resolution.
type ResolverConfig struct {
	PublicBaseURL    string
	FallbackEndpoint string
	FallbackToken    string
	FallbackTimeout  time.Duration
	CacheTTL         time.Duration
}

// Resolver turns stored image references into public URLs. It never fails:
// an unresolvable reference yields ok=false.
type Resolver struct {
	cfg        ResolverConfig
	locator    blobLocator
	cache      urlCache
	httpClient *http.Client
	metrics    *metrics.ImageMetrics
	logg       *logger.Logger
}

type ResolverOption func(*Resolver)

func WithResolverHTTPClient(client *http.Client) ResolverOption {
	return func(r *Resolver) {
		if client != nil {
			r.httpClient = client
		}
	}
}

// NewResolver builds a resolver. locator and cache are optional; without a
// locator blob keys go straight to the fallback endpoint.
func NewResolver(cfg ResolverConfig, locator blobLocator, cache urlCache, m *metrics.ImageMetrics, logg *logger.Logger, opts ...ResolverOption) *Resolver {
	timeout := cfg.FallbackTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	cfg.PublicBaseURL = strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	cfg.FallbackEndpoint = strings.TrimSpace(cfg.FallbackEndpoint)

	r := &Resolver{
		cfg:        cfg,
		locator:    locator,
		cache:      cache,
		httpClient: &http.Client{Timeout: timeout},
		metrics:    m,
		logg:       logg,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Resolve returns the public URL for ref, or ok=false when there is none.
func (r *Resolver) Resolve(ctx context.Context, ref string) (string, bool) {
	trimmed := strings.TrimSpace(ref)
	switch {
	case trimmed == "":
		r.metrics.IncResolve(metrics.ResolveEmpty)
		return "", false
	case isAbsoluteHTTP(trimmed):
		r.metrics.IncResolve(metrics.ResolvePassthrough)
		return ref, true
	case hasBlobScheme(trimmed):
		return r.resolveBlob(ctx, trimmed)
	case strings.HasPrefix(trimmed, "/") && !strings.HasPrefix(trimmed, "//"):
		r.metrics.IncResolve(metrics.ResolveRelative)
		if r.cfg.PublicBaseURL == "" {
			return trimmed, true
		}
		return r.cfg.PublicBaseURL + trimmed, true
	default:
		r.metrics.IncResolve(metrics.ResolvePassthrough)
		return ref, true
	}
}

// ResolveBlob resolves only blob:// references through the object store and
// the fallback endpoint. Any other reference yields ok=false.
func (r *Resolver) ResolveBlob(ctx context.Context, ref string) (string, bool) {
	trimmed := strings.TrimSpace(ref)
	if !hasBlobScheme(trimmed) {
		r.metrics.IncResolve(metrics.ResolveUnresolved)
		return "", false
	}
	return r.resolveBlob(ctx, trimmed)
}

// ResolveOrStored keeps the stored reference when resolution fails, so listings
// never drop an entry.
func (r *Resolver) ResolveOrStored(ctx context.Context, ref string) string {
	if resolved, ok := r.Resolve(ctx, ref); ok {
		return resolved
	}
	return ref
}

func (r *Resolver) resolveBlob(ctx context.Context, ref string) (string, bool) {
	key, ok := storage.BlobKey(ref)
	if !ok {
		r.metrics.IncResolve(metrics.ResolveUnresolved)
		r.warn(ctx, ref, errors.New("blob reference has no key"))
		return "", false
	}

	if cached, ok := r.cached(ctx, key); ok {
		r.metrics.IncResolve(metrics.ResolveCacheHit)
		return cached, true
	}

	providerErr := errors.New("no object store configured")
	if r.locator != nil {
		_, err := r.locator.Stat(ctx, key)
		if err == nil {
			resolved := r.locator.PublicURL(key)
			r.remember(ctx, key, resolved)
			r.metrics.IncResolve(metrics.ResolveProvider)
			return resolved, true
		}
		providerErr = err
	}

	resolved, err := r.fallback(ctx, key)
	if err == nil {
		r.remember(ctx, key, resolved)
		r.metrics.IncResolve(metrics.ResolveFallback)
		return resolved, true
	}

	r.metrics.IncResolve(metrics.ResolveUnresolved)
	r.warn(ctx, key, errors.Join(providerErr, err))
	return "", false
}

func (r *Resolver) cached(ctx context.Context, key string) (string, bool) {
	if r.cache == nil || r.cfg.CacheTTL <= 0 {
		return "", false
	}
	value, err := r.cache.Get(ctx, r.cache.ResolvedURLKey(key))
	if err != nil {
		if !errors.Is(err, goredis.Nil) && r.logg != nil {
			r.logg.Debug(r.logg.WithField(ctx, "error", err.Error()), "image.resolve.cache_read_failed")
		}
		return "", false
	}
	if strings.TrimSpace(value) == "" {
		return "", false
	}
	return value, true
}

func (r *Resolver) remember(ctx context.Context, key, resolved string) {
	if r.cache == nil || r.cfg.CacheTTL <= 0 {
		return
	}
	if err := r.cache.Set(ctx, r.cache.ResolvedURLKey(key), resolved, r.cfg.CacheTTL); err != nil && r.logg != nil {
		r.logg.Debug(r.logg.WithField(ctx, "error", err.Error()), "image.resolve.cache_write_failed")
	}
}

// Forget evicts the cached resolution of a blob reference once its object is gone.
func (r *Resolver) Forget(ctx context.Context, ref string) {
	if r.cache == nil || !hasBlobScheme(strings.TrimSpace(ref)) {
		return
	}
	key, ok := storage.BlobKey(strings.TrimSpace(ref))
	if !ok {
		return
	}
	if err := r.cache.Del(ctx, r.cache.ResolvedURLKey(key)); err != nil && r.logg != nil {
		r.logg.Debug(r.logg.WithField(ctx, "error", err.Error()), "image.resolve.cache_evict_failed")
	}
}

type fallbackResponse struct {
	URL string `json:"url"`
}

// fallback makes exactly one call to the blob REST endpoint.
func (r *Resolver) fallback(ctx context.Context, key string) (string, error) {
	if r.cfg.FallbackEndpoint == "" {
		return "", errors.New("no fallback endpoint configured")
	}
	endpoint, err := url.Parse(r.cfg.FallbackEndpoint)
	if err != nil {
		return "", fmt.Errorf("parse fallback endpoint: %w", err)
	}
	query := endpoint.Query()
	query.Set("key", key)
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return "", fmt.Errorf("build fallback request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token := strings.TrimSpace(r.cfg.FallbackToken); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fallback request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("fallback endpoint returned %d", resp.StatusCode)
	}

	var payload fallbackResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, fallbackBodyLimit)).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode fallback response: %w", err)
	}
	resolved := strings.TrimSpace(payload.URL)
	if resolved == "" {
		return "", errors.New("fallback response carried no url")
	}
	return resolved, nil
}

func (r *Resolver) warn(ctx context.Context, key string, err error) {
	if r.logg == nil {
		return
	}
	fields := map[string]any{"blob_key": key}
	if err != nil {
		fields["error"] = err.Error()
	}
	r.logg.Warn(r.logg.WithFields(ctx, fields), "image.resolve.unresolved")
}

func isAbsoluteHTTP(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func hasBlobScheme(ref string) bool {
	return len(ref) >= len(storage.BlobScheme) && strings.EqualFold(ref[:len(storage.BlobScheme)], storage.BlobScheme)
}
