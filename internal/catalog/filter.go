package catalog

import (
	"fmt"
	"path"

	"github.com/aretw0/swallow/pkg/domain"
	"github.com/aretw0/swallow/pkg/registry"
)

// Filter classifies declared functions.
type Filter interface {
	Name() string
	Match(info domain.FunctionInfo) bool
}

type filterFunc struct {
	name  string
	match func(domain.FunctionInfo) bool
}

func (f filterFunc) Name() string                        { return f.name }
func (f filterFunc) Match(info domain.FunctionInfo) bool { return f.match(info) }

// Select returns the functions in infos matched by f. A nil filter matches
// everything.
func Select(f Filter, infos []domain.FunctionInfo) []domain.FunctionInfo {
	var out []domain.FunctionInfo
	for _, info := range infos {
		if f == nil || f.Match(info) {
			out = append(out, info)
		}
	}
	return out
}

func filterEntries() []registry.Entry {
	return []registry.Entry{
		{
			Name:        "sync-only",
			Description: "Functions without the async marker.",
			Constructor: func() Filter {
				return filterFunc{name: "sync-only", match: func(i domain.FunctionInfo) bool { return !i.Async }}
			},
		},
		{
			Name:        "has-body",
			Description: "Functions with an implementation.",
			Constructor: func() Filter {
				return filterFunc{name: "has-body", match: func(i domain.FunctionInfo) bool { return i.HasBody }}
			},
		},
		{
			Name:        "name-matches",
			Description: "Functions whose name matches a glob pattern.",
			Params:      []registry.Parameter{{Name: "pattern", Description: "Glob, e.g. Load*"}},
			Constructor: newNameMatches,
		},
		{
			Name:        "in-type",
			Description: "Functions declared by one type.",
			Params:      []registry.Parameter{{Name: "type"}},
			Constructor: func(typeName string) Filter {
				return filterFunc{name: "in-type", match: func(i domain.FunctionInfo) bool { return i.ContainingType == typeName }}
			},
		},
	}
}

func newNameMatches(pattern string) (Filter, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("%w: pattern %q: %w", registry.ErrBinding, pattern, err)
	}
	return filterFunc{name: "name-matches", match: func(i domain.FunctionInfo) bool {
		ok, _ := path.Match(pattern, i.Name)
		return ok
	}}, nil
}
