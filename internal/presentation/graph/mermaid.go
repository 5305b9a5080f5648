package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/swallow/internal/asyncify"
	"github.com/aretw0/swallow/pkg/domain"
	"github.com/aretw0/swallow/pkg/workspace"
)

// Propagation produces a Mermaid flowchart of a propagation result.
// It applies semantic styling:
// - Seed: ((Circle))
// - Boundary: [[Subroutine]]
// - Rewritten: [Rectangle]
// Edges point from caller to callee. Awaited calls are solid, name literals
// and blocking calls are dotted.
func Propagation(c *asyncify.Collected) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, d := range c.Declarations {
		id := string(d.Info.ID)
		opener, closer := "[", "]"
		switch {
		case d.Info.ID == c.Seed:
			opener, closer = "((", "))"
		case d.Boundary:
			opener, closer = "[[", "]]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", sanitizeMermaidID(id), opener, escape(id), closer)
	}

	seen := make(map[string]bool)
	for _, ref := range c.References {
		if !ref.HasEnclosing() {
			continue
		}
		arrow := "-->"
		switch ref.Kind {
		case domain.NameOnlyReference:
			arrow = `-. "nameof" .->`
		case domain.InvocationInNonAwaitableContext:
			arrow = `-. "wait" .->`
		default:
			if d, ok := c.Declaration(ref.Enclosing); ok && d.Boundary {
				arrow = `-. "wait" .->`
			}
		}
		line := fmt.Sprintf("    %s %s %s\n", sanitizeMermaidID(string(ref.Enclosing)), arrow, sanitizeMermaidID(string(ref.Target)))
		if !seen[line] {
			seen[line] = true
			sb.WriteString(line)
		}
	}

	var boundaries []string
	for _, d := range c.Declarations {
		if d.Boundary {
			boundaries = append(boundaries, sanitizeMermaidID(string(d.Info.ID)))
		}
	}
	if len(boundaries) > 0 {
		sb.WriteString("\n    %% Boundaries keep their synchronous form\n")
		sb.WriteString("    classDef boundary fill:#eeeeee,stroke:#616161,stroke-dasharray:4,color:#000;\n")
		for _, id := range boundaries {
			fmt.Fprintf(&sb, "    class %s boundary;\n", id)
		}
	}
	return sb.String()
}

// Projects produces a Mermaid flowchart of project references. Edges point
// from a project to the projects it depends on.
func Projects(ws *workspace.Workspace) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	for _, p := range ws.Projects() {
		fmt.Fprintf(&sb, "    %s[\"%s (%d)\"]\n", sanitizeMermaidID(p.Name), escape(p.Name), len(p.Documents))
		for _, ref := range p.References {
			fmt.Fprintf(&sb, "    %s --> %s\n", sanitizeMermaidID(p.Name), sanitizeMermaidID(string(ref)))
		}
	}
	return sb.String()
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

var mermaidReplacer = strings.NewReplacer(
	".", "_",
	"-", "_",
	"/", "_",
	"\\", "_",
	"(", "_",
	")", "",
	",", "_",
	"<", "_",
	">", "",
	" ", "",
)

func sanitizeMermaidID(id string) string {
	return mermaidReplacer.Replace(id)
}
