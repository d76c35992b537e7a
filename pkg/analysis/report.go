package analysis

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/depscout/depscout/pkg/observability"
	"github.com/depscout/depscout/pkg/registry"
	"github.com/depscout/depscout/pkg/requirements"
)

// ErrNoPackages is returned when the input text contains no parseable
// requirement declarations (empty, or comments only). It is fatal to
// the analysis call and surfaced to the caller as a user-visible
// error; it is never retried.
var ErrNoPackages = errors.New("no valid packages found in the requirements")

// Report is the aggregated outcome of one analysis run. Fixed is empty
// unless at least one conflict was found: with nothing wrong there is
// no correction to offer.
type Report struct {
	Requirements []requirements.Requirement `json:"requirements"`
	Conflicts    []Conflict                 `json:"conflicts"`
	Suggestions  []string                   `json:"suggestions"`
	Fixed        []string                   `json:"fixed_requirements"`
	Tree         []TreeNode                 `json:"dependency_tree"`
	Elapsed      time.Duration              `json:"-"`
}

// HasConflicts reports whether any rule fired.
func (r *Report) HasConflicts() bool { return len(r.Conflicts) > 0 }

// Engine ties the analysis stages together behind one entry point.
// The Provider should already be memoized (see registry.NewMemo); the
// engine calls it by name at most once per distinct package per stage
// but tolerates duplicate calls.
type Engine struct {
	Provider registry.Provider
	Logger   *log.Logger
}

// NewEngine creates an engine with the given provider. A nil logger
// discards all output.
func NewEngine(provider registry.Provider, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Engine{Provider: provider, Logger: logger}
}

// Run parses the raw requirements text and produces a full report:
// conflicts, replacement suggestions, the corrected requirement list,
// and the depth-1 dependency tree. Conflicts are data, not errors; Run
// fails only for unusable input.
func (e *Engine) Run(ctx context.Context, text string) (*Report, error) {
	start := time.Now()

	reqs := requirements.ParseAll(text)
	if len(reqs) == 0 {
		return nil, ErrNoPackages
	}
	observability.Analysis().OnAnalysisStart(ctx, len(reqs))

	analyzer := &Analyzer{Detector: &Detector{Provider: e.Provider}}
	conflicts, suggestions := analyzer.Analyze(ctx, reqs)

	tree := BuildTree(ctx, e.Provider, reqs)

	var fixed []string
	if len(conflicts) > 0 {
		fixed = BuildFixed(reqs, suggestions)
	}

	report := &Report{
		Requirements: reqs,
		Conflicts:    conflicts,
		Suggestions:  suggestions,
		Fixed:        fixed,
		Tree:         tree,
		Elapsed:      time.Since(start),
	}

	observability.Analysis().OnAnalysisComplete(ctx, len(reqs), len(conflicts), report.Elapsed)
	e.Logger.Debug("analysis complete",
		"requirements", len(reqs),
		"conflicts", len(conflicts),
		"suggestions", len(suggestions),
		"duration", report.Elapsed)

	return report, nil
}
