package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/toolhouse/pkg/dice"
	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() (func(string) (string, error), error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	if err != nil {
		return nil, err
	}
	return r.Render, nil
}

// SessionMarkdown lays a dice session out as a markdown table, one row per
// trial.
func SessionMarkdown(s dice.Session) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", s.Expression)
	b.WriteString("| # | Rolls | Kept | Total |\n")
	b.WriteString("|---|-------|------|------:|\n")
	for i, t := range s.Trials {
		fmt.Fprintf(&b, "| %d | %s | %s | **%d** |\n", i+1, joinInts(t.Rolls), joinInts(t.Kept), t.Total)
	}
	if len(s.Trials) > 1 {
		fmt.Fprintf(&b, "\nSum **%d**, mean **%.2f**\n", s.Sum(), s.Mean())
	}
	return b.String()
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}
