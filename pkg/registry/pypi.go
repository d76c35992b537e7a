package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/depscout/depscout/pkg/cache"
	apperrors "github.com/depscout/depscout/pkg/errors"
	"github.com/depscout/depscout/pkg/observability"
)

const (
	// DefaultBaseURL is the PyPI JSON API endpoint.
	DefaultBaseURL = "https://pypi.org/pypi"

	// DefaultTimeout bounds a single metadata request.
	DefaultTimeout = 10 * time.Second

	// DefaultCacheTTL is how long fetched metadata stays fresh.
	DefaultCacheTTL = 24 * time.Hour
)

// Client fetches package metadata from the PyPI JSON API, with response
// caching and automatic retries for transient failures.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	baseURL string
	ttl     time.Duration
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the registry endpoint (used by tests and
// private index deployments).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) { c.baseURL = url }
}

// WithTimeout overrides the per-request HTTP timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.http.Timeout = d }
}

// WithCacheTTL overrides how long responses stay cached.
func WithCacheTTL(ttl time.Duration) ClientOption {
	return func(c *Client) { c.ttl = ttl }
}

// NewClient creates a PyPI client backed by the given cache.
// Pass cache.NewNullCache() to disable response caching.
func NewClient(backend cache.Cache, opts ...ClientOption) *Client {
	if backend == nil {
		backend = cache.NewNullCache()
	}
	c := &Client{
		http:    &http.Client{Timeout: DefaultTimeout},
		cache:   backend,
		baseURL: DefaultBaseURL,
		ttl:     DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch retrieves metadata for the named package. The name is
// normalized before lookup. Not-found results are cached so repeated
// analyses of a bad requirement don't re-query the index.
func (c *Client) Fetch(ctx context.Context, name string) (*Metadata, error) {
	name = NormalizeName(name)
	if err := apperrors.ValidatePythonPackageName(name); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	key := cache.Key("pypi", name)

	if data, hit, err := c.cache.Get(ctx, key); err == nil && hit {
		var entry cachedEntry
		if err := json.Unmarshal(data, &entry); err == nil {
			observability.Cache().OnCacheHit(ctx, "metadata")
			if entry.NotFound {
				return nil, apperrors.Wrap(apperrors.ErrCodePackageNotFound, ErrNotFound, "%s", name)
			}
			return entry.Meta, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "metadata")

	var meta *Metadata
	err := cache.RetryWithBackoff(ctx, func() error {
		var ferr error
		meta, ferr = c.fetch(ctx, name)
		return ferr
	})
	if err != nil {
		if apperrors.Is(err, apperrors.ErrCodePackageNotFound) {
			data, _ := json.Marshal(cachedEntry{NotFound: true})
			_ = c.cache.Set(ctx, key, data, c.ttl)
		}
		return nil, err
	}

	if data, merr := json.Marshal(cachedEntry{Meta: meta}); merr == nil {
		_ = c.cache.Set(ctx, key, data, c.ttl)
		observability.Cache().OnCacheSet(ctx, "metadata", len(data))
	}
	return meta, nil
}

type cachedEntry struct {
	Meta     *Metadata `json:"meta,omitempty"`
	NotFound bool      `json:"not_found,omitempty"`
}

func (c *Client) fetch(ctx context.Context, name string) (*Metadata, error) {
	url := fmt.Sprintf("%s/%s/json", c.baseURL, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	observability.HTTP().OnRequest(ctx, http.MethodGet, req.URL.Host, req.URL.Path)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, http.MethodGet, req.URL.Host, req.URL.Path, err)
		code := apperrors.ErrCodeNetwork
		if isTimeout(err) {
			code = apperrors.ErrCodeTimeout
		}
		return nil, cache.Retryable(apperrors.Wrap(code, ErrNetwork, "fetch %s: %v", name, err))
	}
	defer resp.Body.Close()
	observability.HTTP().OnResponse(ctx, http.MethodGet, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperrors.Wrap(apperrors.ErrCodePackageNotFound, ErrNotFound, "%s", name)
	case resp.StatusCode == http.StatusTooManyRequests:
		// The index asked us to back off; our retry delays are shorter
		// than any realistic Retry-After, so fail fast instead.
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return nil, &apperrors.RateLimitedError{RetryAfter: retryAfter, Message: name}
	case resp.StatusCode >= 500:
		return nil, cache.Retryable(apperrors.Wrap(apperrors.ErrCodeNetwork, ErrNetwork, "status %d fetching %s", resp.StatusCode, name))
	default:
		return nil, apperrors.Wrap(apperrors.ErrCodeNetwork, ErrNetwork, "status %d fetching %s", resp.StatusCode, name)
	}

	var data apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode pypi response for %s: %w", name, err)
	}

	releases := make(map[string]bool, len(data.Releases))
	for v := range data.Releases {
		releases[v] = true
	}

	return &Metadata{
		Name:                 data.Info.Name,
		LatestVersion:        data.Info.Version,
		KnownReleases:        releases,
		DeclaredDependencies: extractDeps(data.Info.RequiresDist),
	}, nil
}

// isTimeout distinguishes deadline and transport timeouts from other
// connection failures.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// extractDeps strips environment markers ("; python_version ...") from
// requires_dist entries and drops empty results. Inline version bounds
// stay attached to the dependency string.
func extractDeps(requires []string) []string {
	var deps []string
	for _, req := range requires {
		if i := strings.Index(req, ";"); i >= 0 {
			req = req[:i]
		}
		req = strings.TrimSpace(req)
		if req != "" {
			deps = append(deps, req)
		}
	}
	return deps
}

type apiResponse struct {
	Info     apiInfo                    `json:"info"`
	Releases map[string]json.RawMessage `json:"releases"`
}

type apiInfo struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	RequiresDist []string `json:"requires_dist"`
}
