// Package pkg provides the core libraries for depscout requirement analysis.
//
// # Overview
//
// Depscout checks Python requirements files against the package index and
// reports conflicts before pip ever sees them. The pkg directory is organized
// into the following areas:
//
//  1. [requirements] - Requirement line parsing (operators, canonical names)
//  2. [registry] - PyPI JSON API client with caching and memoization
//  3. [analysis] - Conflict detection rules, worker pool, report assembly
//  4. [render] - Dependency graph output (DOT, SVG, PNG via Graphviz)
//  5. [cache] - Cache backends (file, Redis, null) and retry helpers
//  6. [config] - TOML configuration with working defaults
//  7. [errors] - Structured error codes and input validation
//  8. [observability] - Optional hooks for metrics and tracing backends
//
// # Architecture
//
// The typical data flow through depscout:
//
//	requirements.txt text
//	         ↓
//	    [requirements] package (parse declarations)
//	         ↓
//	    [analysis] package (conflict rules, fed by [registry])
//	         ↓
//	    [render] package (dependency graph image)
//	         ↓
//	    CLI output / JSON API response
//
// # Quick Start
//
// Analyze a requirements file:
//
//	import (
//	    "context"
//	    "github.com/depscout/depscout/pkg/analysis"
//	    "github.com/depscout/depscout/pkg/cache"
//	    "github.com/depscout/depscout/pkg/registry"
//	)
//
//	backend, _ := cache.NewFileCache("/tmp/depscout")
//	client := registry.NewClient(backend)
//	engine := analysis.NewEngine(registry.NewMemo(client), nil)
//
//	report, err := engine.Run(context.Background(), "Flask==2.2.3\nWerkzeug==1.0.1\n")
//	if err != nil {
//	    // empty or unusable input
//	}
//	for _, c := range report.Conflicts {
//	    fmt.Println(c.Message)
//	}
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/analysis/... # Specific package
//
// [requirements]: https://pkg.go.dev/github.com/depscout/depscout/pkg/requirements
// [registry]: https://pkg.go.dev/github.com/depscout/depscout/pkg/registry
// [analysis]: https://pkg.go.dev/github.com/depscout/depscout/pkg/analysis
// [render]: https://pkg.go.dev/github.com/depscout/depscout/pkg/render
// [cache]: https://pkg.go.dev/github.com/depscout/depscout/pkg/cache
// [config]: https://pkg.go.dev/github.com/depscout/depscout/pkg/config
// [errors]: https://pkg.go.dev/github.com/depscout/depscout/pkg/errors
// [observability]: https://pkg.go.dev/github.com/depscout/depscout/pkg/observability
package pkg
