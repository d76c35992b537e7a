package render

import (
	"context"
	"strings"
	"testing"

	"github.com/depscout/depscout/pkg/analysis"
	apperrors "github.com/depscout/depscout/pkg/errors"
)

func node(name string, deps ...string) analysis.TreeNode {
	children := make([]analysis.TreeNode, 0, len(deps))
	for _, d := range deps {
		children = append(children, analysis.TreeNode{PackageName: d, Dependencies: []analysis.TreeNode{}})
	}
	return analysis.TreeNode{PackageName: name, Dependencies: children}
}

func TestToDOT(t *testing.T) {
	tree := []analysis.TreeNode{
		node("Flask", "Werkzeug", "click"),
		node("requests", "urllib3"),
	}
	dot := ToDOT(tree, Options{})

	for _, want := range []string{
		"digraph dependencies {",
		`"Flask" [label="Flask"];`,
		`"Flask" -> "Werkzeug";`,
		`"Flask" -> "click";`,
		`"requests" -> "urllib3";`,
		`"Werkzeug" [shape=ellipse, fillcolor="lightgrey"];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT([]analysis.TreeNode{node("Flask", "Werkzeug", "click")}, Options{Detailed: true})
	if !strings.Contains(dot, `label="Flask\n2 deps"`) {
		t.Errorf("detailed label missing:\n%s", dot)
	}
}

func TestToDOTEmptyTree(t *testing.T) {
	dot := ToDOT(nil, Options{})
	if !strings.Contains(dot, `"no packages"`) {
		t.Errorf("placeholder node missing:\n%s", dot)
	}
}

func TestToDOTRootBeatsDependency(t *testing.T) {
	// Werkzeug is both a requirement root and Flask's dependency; it
	// must keep the root box styling, not be restyled as an ellipse.
	tree := []analysis.TreeNode{
		node("Flask", "Werkzeug"),
		node("Werkzeug"),
	}
	dot := ToDOT(tree, Options{})
	if strings.Contains(dot, `"Werkzeug" [shape=ellipse`) {
		t.Errorf("root node restyled as dependency:\n%s", dot)
	}
	if !strings.Contains(dot, `"Flask" -> "Werkzeug";`) {
		t.Errorf("edge missing:\n%s", dot)
	}
}

func TestToDOTDeduplicatesEdges(t *testing.T) {
	tree := []analysis.TreeNode{node("a", "b", "b")}
	dot := ToDOT(tree, Options{})
	if strings.Count(dot, `"a" -> "b";`) != 1 {
		t.Errorf("duplicate edges:\n%s", dot)
	}
}

func TestSVGBadInputCarriesRenderCode(t *testing.T) {
	_, err := SVG(context.Background(), "this is not a graph")
	if err == nil {
		t.Fatal("expected parse error for invalid DOT")
	}
	if got := apperrors.GetCode(err); got != apperrors.ErrCodeRender {
		t.Errorf("code = %q, want %q", got, apperrors.ErrCodeRender)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<?xml version="1.0"?><svg width="134pt" height="116pt" viewBox="0.00 0.00 133.68 116.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))

	if !strings.Contains(out, `viewBox="0 0 133.68 116.00"`) {
		t.Errorf("viewBox not normalized: %s", out)
	}
	if !strings.Contains(out, `width="134" height="116"`) {
		t.Errorf("explicit dimensions missing: %s", out)
	}
}

func TestNormalizeViewBoxPassthrough(t *testing.T) {
	in := []byte(`<svg><g/></svg>`)
	if got := string(normalizeViewBox(in)); got != string(in) {
		t.Errorf("svg without viewBox changed: %s", got)
	}
}
