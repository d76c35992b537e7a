// Package render turns a dependency tree into Graphviz DOT and rasters
// it to SVG or PNG for the web view and the CLI.
package render

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/depscout/depscout/pkg/analysis"
)

// placeholderNode is drawn when the tree has no renderable packages, so
// the image is never empty.
const placeholderNode = "no packages"

// Options configures DOT generation.
type Options struct {
	// Detailed appends the dependency count to each root node label.
	Detailed bool
}

// ToDOT converts a dependency tree to Graphviz DOT. Requirement roots
// are drawn as boxes and their dependencies as ellipses; an edge runs
// from each root to each of its first-level dependencies. Shared
// dependencies collapse into a single node.
func ToDOT(tree []analysis.TreeNode, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph dependencies {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=\"lightblue\", fontsize=12, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	if len(tree) == 0 {
		fmt.Fprintf(&buf, "  %q;\n}\n", placeholderNode)
		return buf.String()
	}

	deps := map[string]bool{}
	for _, node := range tree {
		label := node.PackageName
		if opts.Detailed {
			label = fmt.Sprintf("%s\n%d deps", node.PackageName, len(node.Dependencies))
		}
		fmt.Fprintf(&buf, "  %q [label=%q];\n", node.PackageName, label)
		for _, child := range node.Dependencies {
			deps[child.PackageName] = true
		}
	}

	buf.WriteString("\n")
	for _, node := range tree {
		// A package can be both a root and someone's dependency; the
		// root box wins.
		if deps[node.PackageName] {
			delete(deps, node.PackageName)
		}
	}
	for _, name := range slices.Sorted(maps.Keys(deps)) {
		fmt.Fprintf(&buf, "  %q [shape=ellipse, fillcolor=\"lightgrey\"];\n", name)
	}

	buf.WriteString("\n")
	seen := map[string]bool{}
	for _, node := range tree {
		for _, child := range node.Dependencies {
			edge := node.PackageName + "->" + child.PackageName
			if seen[edge] {
				continue
			}
			seen[edge] = true
			fmt.Fprintf(&buf, "  %q -> %q;\n", node.PackageName, child.PackageName)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// Tree is a convenience wrapper rendering a dependency tree straight to
// SVG bytes.
func Tree(ctx context.Context, tree []analysis.TreeNode) ([]byte, error) {
	return SVG(ctx, ToDOT(tree, Options{}))
}
