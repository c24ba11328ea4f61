package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tern-lang/tern/diag"
	"github.com/tern-lang/tern/driver"
	"github.com/tern-lang/tern/driver/parser"
)

var (
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorMuted   = lipgloss.Color("#6B7280")
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Width(16)

	diagnosticStyle = lipgloss.NewStyle().
			Foreground(colorError).
			PaddingLeft(2)

	warningStyle = diagnosticStyle.
			Foreground(colorWarning)
)

func statusStyle(s parser.Status) lipgloss.Style {
	switch s {
	case parser.StatusAccepted:
		return lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	case parser.StatusAcceptedWithErrors:
		return lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(colorError).Bold(true)
	}
}

// renderSummary renders the outcome of a run for the terminal.
func renderSummary(res *driver.Result) string {
	var b strings.Builder
	fmt.Fprintln(&b, headerStyle.Render("run "+res.Summary.RunID))
	fmt.Fprintln(&b, labelStyle.Render("status")+statusStyle(res.Status).Render(res.Status.String()))
	fmt.Fprintln(&b, labelStyle.Render("tokens")+fmt.Sprint(countLexemes(res)))
	fmt.Fprintln(&b, labelStyle.Render("lexical errors")+fmt.Sprint(res.Summary.Lexical))
	fmt.Fprint(&b, labelStyle.Render("syntax errors")+fmt.Sprint(res.Summary.Syntactic))
	for _, d := range res.Summary.Diagnostics {
		style := diagnosticStyle
		if d.Severity == diag.SeverityWarning {
			style = warningStyle
		}
		fmt.Fprint(&b, "\n"+style.Render(d.String()))
	}
	return b.String()
}

func countLexemes(res *driver.Result) int {
	n := 0
	for _, tok := range res.Tokens {
		if !tok.EOF {
			n++
		}
	}
	return n
}
