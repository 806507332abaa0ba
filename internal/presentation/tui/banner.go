package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the toolhouse banner to w. It goes to stderr in every
// command so stdout stays clean for piped output and MCP stdio.
func PrintBanner(w io.Writer) {
	p := termenv.EnvColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{" _              _ _                          ", "#34d399"},
		{"| |_ ___   ___ | | |__   ___  _   _ ___  ___ ", "#2dd4bf"},
		{"| __/ _ \\ / _ \\| | '_ \\ / _ \\| | | / __|/ _ \\", "#22d3ee"},
		{"| || (_) | (_) | | | | | (_) | |_| \\__ \\  __/", "#38bdf8"},
		{" \\__\\___/ \\___/|_|_| |_|\\___/ \\__,_|___/\\___|", "#60a5fa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
