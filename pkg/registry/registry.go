// Package registry fetches package metadata from a package index.
//
// The analysis engine consumes the [Provider] interface and never
// talks to the network itself. The concrete [Client] targets the PyPI
// JSON API; [Memo] adds the in-process read-through memoization the
// engine relies on to fetch each distinct package at most once per run.
package registry

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a package doesn't exist in the index.
	ErrNotFound = errors.New("package not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection
	// errors, 5xx responses). The analysis engine treats it the same as
	// ErrNotFound: the package simply has no discoverable metadata.
	ErrNetwork = errors.New("network error")
)

// Metadata holds everything the analysis engine needs to know about a
// published package. It is read-only to callers.
type Metadata struct {
	Name          string          `json:"name"`
	LatestVersion string          `json:"latest_version"`
	KnownReleases map[string]bool `json:"known_releases"`
	// DeclaredDependencies are the package's first-level dependency
	// declarations with environment markers stripped, e.g.
	// "werkzeug>=2.2". Inline version bounds are retained.
	DeclaredDependencies []string `json:"declared_dependencies"`
}

// HasRelease reports whether version is a known release of the package.
func (m *Metadata) HasRelease(version string) bool {
	return m.KnownReleases[version]
}

// Provider is the metadata lookup capability consumed by the analysis
// engine. Implementations must be safe for concurrent use: the engine
// calls Fetch from many goroutines at once.
type Provider interface {
	// Fetch retrieves metadata for the named package. It returns
	// ErrNotFound if the package doesn't exist, or an error wrapping
	// ErrNetwork for transport failures.
	Fetch(ctx context.Context, name string) (*Metadata, error)
}

// NormalizeName converts a package name to its canonical registry form:
// lowercase with underscores replaced by hyphens (PEP 503).
func NormalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
}
