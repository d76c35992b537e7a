package registry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/depscout/depscout/pkg/cache"
	apperrors "github.com/depscout/depscout/pkg/errors"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Flask", "flask"},
		{"typing_extensions", "typing-extensions"},
		{"  Django  ", "django"},
		{"zope.interface", "zope.interface"},
	}
	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractDeps(t *testing.T) {
	requires := []string{
		"werkzeug>=2.2",
		"click>=8.0 ; python_version >= \"3.7\"",
		"itsdangerous",
		"   ",
	}
	want := []string{"werkzeug>=2.2", "click>=8.0", "itsdangerous"}
	if got := extractDeps(requires); !reflect.DeepEqual(got, want) {
		t.Errorf("extractDeps = %v, want %v", got, want)
	}
}

func pypiHandler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/flask/json":
			fmt.Fprint(w, `{
				"info": {
					"name": "Flask",
					"version": "2.2.3",
					"requires_dist": ["Werkzeug>=2.2", "click>=8.0 ; python_version >= \"3.7\""]
				},
				"releases": {"2.2.2": [], "2.2.3": []}
			}`)
		default:
			http.NotFound(w, r)
		}
	})
}

func TestClientFetch(t *testing.T) {
	srv := httptest.NewServer(pypiHandler(t))
	defer srv.Close()

	c := NewClient(cache.NewNullCache(), WithBaseURL(srv.URL))
	meta, err := c.Fetch(context.Background(), "Flask")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if meta.LatestVersion != "2.2.3" {
		t.Errorf("LatestVersion = %q, want %q", meta.LatestVersion, "2.2.3")
	}
	if !meta.HasRelease("2.2.2") || meta.HasRelease("1.0") {
		t.Errorf("KnownReleases = %v, want {2.2.2, 2.2.3}", meta.KnownReleases)
	}
	want := []string{"Werkzeug>=2.2", "click>=8.0"}
	if !reflect.DeepEqual(meta.DeclaredDependencies, want) {
		t.Errorf("DeclaredDependencies = %v, want %v", meta.DeclaredDependencies, want)
	}
}

func TestClientFetchNotFound(t *testing.T) {
	srv := httptest.NewServer(pypiHandler(t))
	defer srv.Close()

	c := NewClient(cache.NewNullCache(), WithBaseURL(srv.URL))
	_, err := c.Fetch(context.Background(), "no-such-package")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if got := apperrors.GetCode(err); got != apperrors.ErrCodePackageNotFound {
		t.Errorf("code = %q, want %q", got, apperrors.ErrCodePackageNotFound)
	}
}

func TestClientCachesNotFound(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	backend, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	c := NewClient(backend, WithBaseURL(srv.URL))

	ctx := context.Background()
	for range 2 {
		if _, err := c.Fetch(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("registry calls = %d, want 1 (not-found results are cached)", n)
	}
}

func TestClientFetchRateLimited(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(cache.NewNullCache(), WithBaseURL(srv.URL))
	_, err := c.Fetch(context.Background(), "flask")

	var rl *apperrors.RateLimitedError
	if !errors.As(err, &rl) {
		t.Fatalf("err = %v, want RateLimitedError", err)
	}
	if rl.RetryAfter != 30 {
		t.Errorf("RetryAfter = %d, want 30", rl.RetryAfter)
	}
	if got := apperrors.GetCode(err); got != apperrors.ErrCodeRateLimited {
		t.Errorf("code = %q, want %q", got, apperrors.ErrCodeRateLimited)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("registry calls = %d, want 1 (rate limits are not retried)", n)
	}
}

// timeoutErr implements net.Error with Timeout() true.
type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestIsTimeout(t *testing.T) {
	if !isTimeout(context.DeadlineExceeded) {
		t.Error("deadline exceeded not classified as timeout")
	}
	if !isTimeout(fmt.Errorf("get metadata: %w", timeoutErr{})) {
		t.Error("wrapped net timeout not classified as timeout")
	}
	if isTimeout(errors.New("connection refused")) {
		t.Error("plain connection error classified as timeout")
	}
}

func TestClientCachesResponses(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		pypiHandler(t).ServeHTTP(w, r)
	}))
	defer srv.Close()

	backend, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	c := NewClient(backend, WithBaseURL(srv.URL))

	ctx := context.Background()
	if _, err := c.Fetch(ctx, "flask"); err != nil {
		t.Fatalf("first Fetch: %v", err)
	}
	if _, err := c.Fetch(ctx, "flask"); err != nil {
		t.Fatalf("second Fetch: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("registry calls = %d, want 1 (second fetch should hit cache)", n)
	}
}

// countingProvider counts Fetch calls per package name.
type countingProvider struct {
	mu    sync.Mutex
	calls map[string]int
	metas map[string]*Metadata
}

func (p *countingProvider) Fetch(ctx context.Context, name string) (*Metadata, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.calls == nil {
		p.calls = make(map[string]int)
	}
	p.calls[NormalizeName(name)]++
	if meta, ok := p.metas[NormalizeName(name)]; ok {
		return meta, nil
	}
	return nil, ErrNotFound
}

func TestMemoFetchesOnce(t *testing.T) {
	p := &countingProvider{metas: map[string]*Metadata{
		"flask": {Name: "Flask", LatestVersion: "2.2.3"},
	}}
	memo := NewMemo(p)
	ctx := context.Background()

	for range 3 {
		if _, err := memo.Fetch(ctx, "Flask"); err != nil {
			t.Fatalf("Fetch: %v", err)
		}
	}
	if p.calls["flask"] != 1 {
		t.Errorf("underlying calls = %d, want 1", p.calls["flask"])
	}
	if memo.Len() != 1 {
		t.Errorf("Len = %d, want 1", memo.Len())
	}
}

func TestMemoRemembersFailures(t *testing.T) {
	p := &countingProvider{}
	memo := NewMemo(p)
	ctx := context.Background()

	for range 2 {
		if _, err := memo.Fetch(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	}
	if p.calls["ghost"] != 1 {
		t.Errorf("underlying calls = %d, want 1 (failures are memoized)", p.calls["ghost"])
	}
}

func TestMemoConcurrent(t *testing.T) {
	p := &countingProvider{metas: map[string]*Metadata{
		"flask": {Name: "Flask"},
	}}
	memo := NewMemo(p)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = memo.Fetch(context.Background(), "flask")
		}()
	}
	wg.Wait()

	if memo.Len() != 1 {
		t.Errorf("Len = %d, want 1", memo.Len())
	}
}
