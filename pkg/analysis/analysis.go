// Package analysis detects conflicts in a set of package requirement
// declarations and proposes corrective replacements.
//
// The engine applies four heuristic rules per requirement: the package
// must exist in the registry, an exactly pinned version must be a known
// release, the same package must not be pinned twice at different
// versions, and exact pins must not violate inline bounds declared by
// the first-level dependencies of other requirements.
//
// This is deliberately not a dependency resolver. There is no
// backtracking search and no semantic version range intersection;
// versions are compared as plain strings. The goal is fast, best-effort
// feedback on a requirements file, not a solved dependency set.
package analysis

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/depscout/depscout/pkg/registry"
	"github.com/depscout/depscout/pkg/requirements"
)

// Kind classifies a detected conflict.
type Kind string

// Conflict kinds, ordered by rule precedence.
const (
	KindMissingPackage     Kind = "missing_package"
	KindVersionNotFound    Kind = "version_not_found"
	KindDuplicatePackage   Kind = "duplicate_package"
	KindDependencyConflict Kind = "dependency_conflict"
)

// Conflict is one detected problem with a requirement. The Hint field
// is human-readable advice; machine-applicable replacements travel
// separately as suggestion strings.
type Conflict struct {
	Package string `json:"package"`
	Kind    Kind   `json:"type"`
	Message string `json:"error"`
	Hint    string `json:"suggestion,omitempty"`
}

// Detector applies the conflict rules to a single requirement against
// the full requirement set. It holds no mutable state and is safe for
// concurrent use.
type Detector struct {
	Provider registry.Provider
}

// Detect evaluates one requirement against the entire original set and
// returns the conflicts found plus any replacement declarations. The
// requirement itself is part of all and is skipped by raw-text
// equality where self-comparison would be meaningless.
//
// Rules short-circuit only as specified: a missing package or an
// unknown pinned version stops further evaluation for this
// requirement; duplicate and dependency checks both run otherwise.
func (d *Detector) Detect(ctx context.Context, req requirements.Requirement, all []requirements.Requirement) ([]Conflict, []string) {
	var conflicts []Conflict
	var suggestions []string

	// Rule 1: the package must exist. Any provider failure, network
	// included, downgrades to "no discoverable metadata" here.
	meta, err := d.Provider.Fetch(ctx, req.Name)
	if err != nil || meta == nil {
		conflicts = append(conflicts, Conflict{
			Package: req.Name,
			Kind:    KindMissingPackage,
			Message: fmt.Sprintf("Package %q not found in the registry", req.Name),
			Hint:    "Check that the package name is correct or whether it is a private package",
		})
		return conflicts, suggestions
	}

	// Rule 2: an exact pin must name a known release.
	if req.IsExact() && !meta.HasRelease(req.Version) {
		conflicts = append(conflicts, Conflict{
			Package: req.Name,
			Kind:    KindVersionNotFound,
			Message: fmt.Sprintf("Version %s not found for package %q", req.Version, req.Name),
			Hint:    fmt.Sprintf("Check the available releases of %q", req.Name),
		})
		if meta.LatestVersion != "" {
			suggestions = append(suggestions, req.Name+"=="+meta.LatestVersion)
		}
		return conflicts, suggestions
	}

	conflicts, suggestions = d.detectDuplicates(req, all, conflicts, suggestions)
	conflicts, suggestions = d.detectDependencyConflicts(req, meta, all, conflicts, suggestions)

	return conflicts, suggestions
}

// detectDuplicates implements rule 3: another requirement pinning the
// same package at a different exact version. The rule runs from each
// side independently, so a duplicate pair produces two symmetric
// conflict records; that multiplicity is expected.
func (d *Detector) detectDuplicates(req requirements.Requirement, all []requirements.Requirement, conflicts []Conflict, suggestions []string) ([]Conflict, []string) {
	for _, other := range all {
		if other.Raw == req.Raw {
			continue
		}
		if other.Name != req.Name || !req.IsExact() || !other.IsExact() {
			continue
		}
		if other.Version == req.Version {
			continue
		}

		conflicts = append(conflicts, Conflict{
			Package: req.Name,
			Kind:    KindDuplicatePackage,
			Message: fmt.Sprintf("Duplicate package %q with different versions: %s and %s", req.Name, req.Version, other.Version),
			Hint:    fmt.Sprintf("Use only one version or a compatible specifier like %s~=%s", req.Name, req.Version),
		})

		// Pin the larger version string. Plain descending string sort,
		// not semantic ordering.
		versions := []string{req.Version, other.Version}
		sort.Sort(sort.Reverse(sort.StringSlice(versions)))
		suggestions = append(suggestions, req.Name+"=="+versions[0])
	}
	return conflicts, suggestions
}

// detectDependencyConflicts implements rule 4: an exact pin elsewhere
// in the set violating an inline bound declared by one of this
// package's first-level dependencies.
func (d *Detector) detectDependencyConflicts(req requirements.Requirement, meta *registry.Metadata, all []requirements.Requirement, conflicts []Conflict, suggestions []string) ([]Conflict, []string) {
	for _, dep := range meta.DeclaredDependencies {
		depName := dependencyName(dep)

		for _, other := range all {
			if other.Name != depName || !other.IsExact() {
				continue
			}

			bound, ok := violatedBound(dep, other.Version)
			if !ok {
				continue
			}

			conflicts = append(conflicts, Conflict{
				Package: req.Name,
				Kind:    KindDependencyConflict,
				Message: fmt.Sprintf("%s requires %s, but found %s", req.Name, dep, other.Raw),
				Hint:    fmt.Sprintf("Adjust the %s version to be compatible with %s", other.Name, dep),
			})
			suggestions = append(suggestions, adjustBound(other.Name, bound))
		}
	}
	return conflicts, suggestions
}

// bound is an inline version constraint found inside a declared
// dependency string, e.g. the ">=2.2" of "werkzeug>=2.2".
type bound struct {
	op      byte   // '<' or '>'
	version string // text after the operator, trimmed
}

// dependencyName extracts the package a dependency declaration refers
// to: the first whitespace-delimited token with any operator suffix
// stripped. Handles both "Werkzeug>=2.2" and "Werkzeug >=2.2".
func dependencyName(dep string) string {
	fields := strings.Fields(dep)
	if len(fields) == 0 {
		return ""
	}
	return requirements.CanonicalName(fields[0])
}

// violatedBound reports whether version (an exact pin elsewhere in the
// set) violates an inline bound in dep. Comparison is lexicographic by
// design: a "<" bound is violated by any string >= the bound value, a
// ">" bound by any string <= it. The "<" check runs first, matching
// rule order.
func violatedBound(dep, version string) (bound, bool) {
	if i := strings.IndexByte(dep, '<'); i >= 0 {
		b := bound{op: '<', version: strings.TrimSpace(dep[i+1:])}
		if version >= b.version {
			return b, true
		}
	}
	if i := strings.IndexByte(dep, '>'); i >= 0 {
		b := bound{op: '>', version: strings.TrimSpace(dep[i+1:])}
		if version <= b.version {
			return b, true
		}
	}
	return bound{}, false
}

// adjustBound synthesizes a replacement declaration for name from a
// violated bound: the bound version is split on "." and the minor
// component stepped away from the violation (down for "<", up for
// ">"). When the bound has no integer minor component the original
// bound is reused unchanged.
func adjustBound(name string, b bound) string {
	parts := strings.SplitN(b.version, ".", 3)
	if len(parts) >= 2 {
		if minor, err := strconv.Atoi(parts[1]); err == nil {
			if b.op == '<' {
				minor--
			} else {
				minor++
			}
			return fmt.Sprintf("%s%c%s.%d", name, b.op, parts[0], minor)
		}
	}
	return fmt.Sprintf("%s%c%s", name, b.op, b.version)
}
