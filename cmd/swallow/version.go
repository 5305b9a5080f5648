package main

import (
	"fmt"

	"github.com/aretw0/swallow"
	"github.com/aretw0/swallow/internal/presentation/diff"
	"github.com/aretw0/swallow/internal/presentation/tui"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Set at build time via -ldflags "-X main.commit=...".
var commit = ""

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of swallow",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			terminal := diff.IsTerminal(w)
			if terminal {
				tui.PrintBanner(w)
			}
			v := color.New(color.FgGreen, color.Bold)
			if !terminal {
				v.DisableColor()
			}
			fmt.Fprintf(w, "swallow version %s\n", v.Sprint(swallow.Version()))
			if commit != "" {
				fmt.Fprintf(w, "commit %s\n", commit)
			}
		},
	}
}
