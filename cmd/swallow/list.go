package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/aretw0/swallow/internal/catalog"
	"github.com/aretw0/swallow/internal/presentation/tui"
	"github.com/aretw0/swallow/pkg/registry"
	"github.com/spf13/cobra"
)

type section struct {
	title   string
	command string
	entries []registry.Metadata
}

func catalogSections() ([]section, error) {
	docs, err := catalog.Documents()
	if err != nil {
		return nil, err
	}
	symbols, err := catalog.Symbols()
	if err != nil {
		return nil, err
	}
	filters, err := catalog.Filters()
	if err != nil {
		return nil, err
	}
	return []section{
		{title: "Symbol transformations", command: "swallow run", entries: symbols.List()},
		{title: "Document transformations", command: "swallow edit <document>", entries: docs.List()},
		{title: "Function filters", command: "swallow functions <document>", entries: filters.List()},
	}, nil
}

func usageOf(m registry.Metadata) string {
	parts := []string{m.Name}
	for _, p := range m.Params {
		name := "<" + p.Name + ">"
		if p.Variadic {
			name = "[" + p.Name + "...]"
		}
		parts = append(parts, name)
	}
	return strings.Join(parts, " ")
}

func markdown(sections []section) string {
	var b strings.Builder
	b.WriteString("# Catalog\n")
	for _, s := range sections {
		fmt.Fprintf(&b, "\n## %s\n\nUsage: `%s <name> ...`\n\n", s.title, s.command)
		for _, m := range s.entries {
			fmt.Fprintf(&b, "- `%s`: %s\n", usageOf(m), m.Description)
		}
	}
	return b.String()
}

func plain(w io.Writer, sections []section) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, s := range sections {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "%s:\n", s.title)
		for _, m := range s.entries {
			fmt.Fprintf(tw, "  %s\t%s\n", usageOf(m), m.Description)
		}
	}
	return tw.Flush()
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the named transformations and filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sections, err := catalogSections()
			if err != nil {
				return err
			}
			asMarkdown, _ := cmd.Flags().GetBool("markdown")
			if !asMarkdown {
				return plain(cmd.OutOrStdout(), sections)
			}
			width, _ := cmd.Flags().GetInt("width")
			render, err := tui.NewRenderer(width)
			if err != nil {
				return err
			}
			out, err := render(markdown(sections))
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().Bool("markdown", false, "Render the catalog as styled markdown")
	cmd.Flags().Int("width", 80, "Word wrap width for --markdown")
	return cmd
}
