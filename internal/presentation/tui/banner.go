package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text, color string
}{
	{`  ___ __      ____ _| | | _____      __`, "#38bdf8"},
	{` / __|\ \ /\ / / _' | | |/ _ \ \ /\ / /`, "#60a5fa"},
	{` \__ \ \ V  V / (_| | | | (_) \ V  V / `, "#818cf8"},
	{` |___/  \_/\_/ \__,_|_|_|\___/ \_/\_/  `, "#a78bfa"},
}

// PrintBanner writes the swallow banner to w, colored for the terminal's
// profile.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}
