package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/ovalkit/ovalkit/internal/verdict"
)

var (
	styleTrue  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleFalse = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	styleWarn  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	styleDim   = lipgloss.NewStyle().Faint(true)
)

// isTerminal reports whether the writer is an interactive terminal; styled
// verdict text is reserved for those so scripted output stays parseable.
func isTerminal(w io.Writer) bool {
	if file, ok := w.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}
	return false
}

func verdictText(v verdict.Verdict, styled bool) string {
	text := v.Text()
	if !styled {
		return text
	}

	switch v {
	case verdict.True:
		return styleTrue.Render(text)
	case verdict.False:
		return styleFalse.Render(text)
	case verdict.Error, verdict.Unknown:
		return styleWarn.Render(text)
	default:
		return styleDim.Render(text)
	}
}

// printVerdictLine writes the per-definition evaluation line.
func printVerdictLine(w io.Writer, id string, v verdict.Verdict, styled bool) {
	fmt.Fprintf(w, "Definition %s: %s\n", id, verdictText(v, styled))
}
