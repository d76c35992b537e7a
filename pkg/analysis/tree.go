package analysis

import (
	"context"

	"github.com/depscout/depscout/pkg/registry"
	"github.com/depscout/depscout/pkg/requirements"
)

// TreeNode is one package in the dependency listing used for
// visualization. Depth is exactly one: children never carry their own
// dependencies, regardless of what the registry would report for them.
type TreeNode struct {
	PackageName  string     `json:"package_name"`
	Dependencies []TreeNode `json:"dependencies"`
}

// BuildTree produces one node per requirement with resolvable
// metadata, holding a child per declared first-level dependency.
// Requirements whose metadata cannot be fetched are silently omitted;
// reporting them is the conflict detector's job, not the tree's.
func BuildTree(ctx context.Context, provider registry.Provider, reqs []requirements.Requirement) []TreeNode {
	var tree []TreeNode

	for _, req := range reqs {
		meta, err := provider.Fetch(ctx, req.Name)
		if err != nil || meta == nil {
			continue
		}

		node := TreeNode{
			PackageName:  req.Name,
			Dependencies: []TreeNode{},
		}
		for _, dep := range meta.DeclaredDependencies {
			name := dependencyName(dep)
			if name == "" {
				continue
			}
			node.Dependencies = append(node.Dependencies, TreeNode{
				PackageName:  name,
				Dependencies: []TreeNode{},
			})
		}
		tree = append(tree, node)
	}

	return tree
}
