package catalog

import (
	"fmt"
	"strings"
	"sync"

	"github.com/aretw0/swallow/internal/asyncify"
	"github.com/aretw0/swallow/internal/rewrite"
	"github.com/aretw0/swallow/pkg/domain"
	"github.com/aretw0/swallow/pkg/registry"
	"github.com/aretw0/swallow/pkg/workspace"
)

var (
	documents = sync.OnceValues(func() (*registry.Registry[workspace.Transformation], error) {
		return registry.New[workspace.Transformation](documentEntries()...)
	})
	symbols = sync.OnceValues(func() (*registry.Registry[Symbol], error) {
		return registry.New[Symbol](symbolEntries()...)
	})
	filters = sync.OnceValues(func() (*registry.Registry[Filter], error) {
		return registry.New[Filter](filterEntries()...)
	})
)

// Documents returns the document transformation registry.
func Documents() (*registry.Registry[workspace.Transformation], error) { return documents() }

// Symbols returns the symbol transformation registry.
func Symbols() (*registry.Registry[Symbol], error) { return symbols() }

// Filters returns the function filter registry.
func Filters() (*registry.Registry[Filter], error) { return filters() }

var spanParams = []registry.Parameter{
	{Name: "start", Description: "Byte offset where the identifier starts"},
	{Name: "end", Description: "Byte offset where the identifier ends"},
	{Name: "newName", Description: "Replacement name, empty to keep it"},
}

func documentEntries() []registry.Entry {
	return []registry.Entry{
		{
			Name:        "wrap-signature",
			Description: "Marks a method async, wraps its result in a task and renames it with a suffix.",
			Params: []registry.Parameter{
				{Name: "target", Description: "Method as Name or Type.Name"},
				{Name: "suffix", Description: "Appended to the method name, empty to keep it"},
			},
			Constructor: newWrapSignature,
		},
		{
			Name:        rewrite.Await.String(),
			Description: "Awaits the call whose identifier spans [start,end).",
			Params:      spanParams,
			Constructor: callSite(rewrite.Await),
		},
		{
			Name:        rewrite.BlockingWait.String(),
			Description: "Waits synchronously for the call whose identifier spans [start,end).",
			Params:      spanParams,
			Constructor: callSite(rewrite.BlockingWait),
		},
		{
			Name:        rewrite.RenameOnly.String(),
			Description: "Renames the reference whose identifier spans [start,end).",
			Params:      spanParams,
			Constructor: callSite(rewrite.RenameOnly),
		},
		{
			Name:        "mark-async",
			Description: "Adds the async marker to the named methods.",
			Params:      []registry.Parameter{{Name: "targets", Description: "Methods as Name or Type.Name"}},
			Constructor: newMarkAsync,
		},
	}
}

func newWrapSignature(target, suffix string) workspace.Transformation {
	defaults := asyncify.DefaultOptions()
	wrap := rewrite.SignatureWrap{
		Method:         target,
		Async:          true,
		TaskType:       defaults.TaskType,
		AwaitableTypes: defaults.AwaitableTypes,
	}
	if suffix != "" {
		name := target[strings.LastIndex(target, ".")+1:]
		if !strings.HasSuffix(name, suffix) {
			wrap.NewName = name + suffix
		}
	}
	return wrap
}

func callSite(mode rewrite.Mode) func(start, end int, newName string) (workspace.Transformation, error) {
	return func(start, end int, newName string) (workspace.Transformation, error) {
		if start < 0 || end <= start {
			return nil, fmt.Errorf("%w: empty span [%d,%d)", registry.ErrBinding, start, end)
		}
		return rewrite.CallSite{Span: domain.Span{Start: start, End: end}, NewName: newName, Mode: mode}, nil
	}
}

func newMarkAsync(targets ...string) (workspace.Transformation, error) {
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: mark-async needs at least one target", registry.ErrBinding)
	}
	return rewrite.MarkAsync{Targets: targets}, nil
}
