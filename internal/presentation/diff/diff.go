// Package diff renders before/after document text as colored unified diffs.
package diff

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"golang.org/x/term"
)

// DefaultContext is the number of unchanged lines around each change.
const DefaultContext = 3

// Kind classifies a diff line.
type Kind int

const (
	Context Kind = iota
	Added
	Removed
)

// Line is one line of a hunk, without its trailing newline.
type Line struct {
	Kind Kind
	Text string
}

// Hunk is a contiguous group of changes with surrounding context.
type Hunk struct {
	OldStart, OldLines int
	NewStart, NewLines int
	Lines              []Line
}

// Header returns the "@@ -a,b +c,d @@" line.
func (h Hunk) Header() string {
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OldStart, h.OldLines, h.NewStart, h.NewLines)
}

// Lines computes a line diff of before and after.
func Lines(before, after string) []Line {
	dmp := diffmatchpatch.New()
	a, b, index := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), index)

	var out []Line
	for _, d := range diffs {
		kind := Context
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			kind = Added
		case diffmatchpatch.DiffDelete:
			kind = Removed
		}
		for _, text := range splitLines(d.Text) {
			out = append(out, Line{Kind: kind, Text: text})
		}
	}
	return out
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

// Hunks groups the changed lines of before and after. Changes separated by
// at most 2*context unchanged lines share a hunk.
func Hunks(before, after string, context int) []Hunk {
	lines := Lines(before, after)
	n := len(lines)

	oldNo := make([]int, n+1)
	newNo := make([]int, n+1)
	o, nw := 1, 1
	for i, l := range lines {
		oldNo[i], newNo[i] = o, nw
		if l.Kind != Added {
			o++
		}
		if l.Kind != Removed {
			nw++
		}
	}
	oldNo[n], newNo[n] = o, nw

	var hunks []Hunk
	for i := 0; i < n; {
		if lines[i].Kind == Context {
			i++
			continue
		}
		start := max(0, i-context)
		last := i
		for j := i; j < n; j++ {
			if lines[j].Kind != Context {
				last = j
			} else if j-last > 2*context {
				break
			}
		}
		stop := min(n, last+1+context)

		h := Hunk{OldStart: oldNo[start], NewStart: newNo[start], Lines: lines[start:stop]}
		for _, l := range h.Lines {
			if l.Kind != Added {
				h.OldLines++
			}
			if l.Kind != Removed {
				h.NewLines++
			}
		}
		if h.OldLines == 0 {
			h.OldStart--
		}
		if h.NewLines == 0 {
			h.NewStart--
		}
		hunks = append(hunks, h)
		i = stop
	}
	return hunks
}

// Renderer writes unified diffs.
type Renderer struct {
	w       io.Writer
	context int
	header  *color.Color
	hunk    *color.Color
	added   *color.Color
	removed *color.Color
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithColor forces colors on or off.
func WithColor(enabled bool) Option {
	return func(r *Renderer) {
		for _, c := range []*color.Color{r.header, r.hunk, r.added, r.removed} {
			if enabled {
				c.EnableColor()
			} else {
				c.DisableColor()
			}
		}
	}
}

// WithContext sets the number of context lines.
func WithContext(n int) Option {
	return func(r *Renderer) {
		if n >= 0 {
			r.context = n
		}
	}
}

// NewRenderer creates a Renderer. Colors are enabled when w is a terminal.
func NewRenderer(w io.Writer, opts ...Option) *Renderer {
	r := &Renderer{
		w:       w,
		context: DefaultContext,
		header:  color.New(color.Bold),
		hunk:    color.New(color.FgCyan),
		added:   color.New(color.FgGreen),
		removed: color.New(color.FgRed),
	}
	WithColor(IsTerminal(w))(r)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Document writes the diff of one document. It reports false and writes
// nothing when the texts are equal.
func (r *Renderer) Document(path, before, after string) (bool, error) {
	if before == after {
		return false, nil
	}
	var b strings.Builder
	r.header.Fprintf(&b, "--- a/%s\n", path)
	r.header.Fprintf(&b, "+++ b/%s\n", path)
	for _, h := range Hunks(before, after, r.context) {
		r.hunk.Fprintln(&b, h.Header())
		for _, l := range h.Lines {
			switch l.Kind {
			case Added:
				r.added.Fprintln(&b, "+"+l.Text)
			case Removed:
				r.removed.Fprintln(&b, "-"+l.Text)
			default:
				fmt.Fprintln(&b, " "+l.Text)
			}
		}
	}
	_, err := io.WriteString(r.w, b.String())
	return true, err
}
