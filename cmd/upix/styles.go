package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fyrsmithlabs/upiexplain/internal/explain"
)

var (
	codeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("51")).
			Bold(true).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true).
			MarginTop(1)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("46")).
		Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1).
			Width(76)
)

func renderPage(w io.Writer, p *explain.Page) {
	var b strings.Builder
	b.WriteString(codeStyle.Render(p.Code) + " " + titleStyle.Render(p.Title) + "\n\n")
	b.WriteString(p.Explanation)
	writeList(&b, "Common reasons", p.Reasons)
	writeList(&b, "What to do", p.NextSteps)
	fmt.Fprintln(w, cardStyle.Render(b.String()))

	if len(p.Related) > 0 {
		fmt.Fprintln(w, sectionStyle.Render("Related errors"))
		for _, r := range p.Related {
			fmt.Fprintf(w, "  %-6s %s %s\n", r.Code, r.Title, dimStyle.Render("("+r.Slug+")"))
		}
	}
}

func writeList(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("\n" + sectionStyle.Render(heading))
	for _, item := range items {
		b.WriteString("\n  • " + item)
	}
}
