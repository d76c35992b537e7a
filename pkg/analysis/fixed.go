package analysis

import (
	"github.com/depscout/depscout/pkg/requirements"
)

// BuildFixed merges the original declarations with the accepted
// suggestions into a replacement requirements list.
//
// The list is keyed by canonical package name: originals seed the
// mapping (a later declaration of the same name replaces an earlier
// one), then suggestions overlay it in order, so the last suggestion
// for a package wins. First-seen insertion order is preserved, giving
// exactly one declaration per distinct canonical name.
func BuildFixed(reqs []requirements.Requirement, suggestions []string) []string {
	var order []string
	byName := make(map[string]string, len(reqs))

	set := func(name, raw string) {
		if _, seen := byName[name]; !seen {
			order = append(order, name)
		}
		byName[name] = raw
	}

	for _, req := range reqs {
		set(req.Name, req.Raw)
	}
	for _, s := range suggestions {
		set(requirements.CanonicalName(s), s)
	}

	fixed := make([]string, 0, len(order))
	for _, name := range order {
		fixed = append(fixed, byName[name])
	}
	return fixed
}
