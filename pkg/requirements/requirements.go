// Package requirements parses pip-style requirement declarations.
//
// A declaration is a single line such as "Flask==2.2.3" or
// "requests>=2.28". Parsing is deliberately shallow: one operator per
// line is expected, and the package name is whatever precedes the first
// operator token. Blank lines and comments are skipped.
package requirements

import "strings"

// Op identifies the version operator of a requirement.
type Op string

// Version operators, in the priority order used for parsing.
const (
	OpExact      Op = "=="
	OpAtLeast    Op = ">="
	OpAtMost     Op = "<="
	OpGreater    Op = ">"
	OpLess       Op = "<"
	OpCompatible Op = "~="
	OpNone       Op = ""
)

// operators lists all operator tokens in fixed priority order.
// The order matters: two-character tokens must be tried before their
// one-character prefixes.
var operators = []Op{OpExact, OpAtLeast, OpAtMost, OpGreater, OpLess, OpCompatible}

// Requirement is a single parsed declaration. It is immutable once
// parsed; all analysis components share Requirements read-only.
type Requirement struct {
	Raw     string `json:"raw"`      // original line, trimmed
	Name    string `json:"name"`     // canonical package name
	Op      Op     `json:"operator"` // OpNone when no operator present
	Version string `json:"version"`  // empty when Op is OpNone
}

// IsExact reports whether the requirement pins an exact version.
func (r Requirement) IsExact() bool {
	return r.Op == OpExact && r.Version != ""
}

// String returns the original declaration text.
func (r Requirement) String() string { return r.Raw }

// CanonicalName strips any operator token and everything after it from
// s, in priority order, and trims surrounding whitespace. Equal raw
// names always canonicalize identically, and canonicalization is
// idempotent: a name with no operator comes back unchanged.
func CanonicalName(s string) string {
	for _, op := range operators {
		s = strings.SplitN(s, string(op), 2)[0]
	}
	return strings.TrimSpace(s)
}

// Parse parses one declaration line. It returns nil for blank lines and
// comments. Lines with no recognized operator become name-only
// requirements.
func Parse(line string) *Requirement {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	req := &Requirement{Raw: line, Name: CanonicalName(line), Op: OpNone}
	for _, op := range operators {
		if i := strings.Index(line, string(op)); i >= 0 {
			req.Op = op
			req.Version = strings.TrimSpace(line[i+len(op):])
			break
		}
	}
	return req
}

// ParseAll parses a block of requirements text, one declaration per
// line, skipping blanks and comments.
func ParseAll(text string) []Requirement {
	var reqs []Requirement
	for _, line := range strings.Split(text, "\n") {
		if r := Parse(line); r != nil {
			reqs = append(reqs, *r)
		}
	}
	return reqs
}
