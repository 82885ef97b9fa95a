package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"bridgeir/internal/diag"
	"bridgeir/internal/ir"
)

// SummaryOpts configures RenderSummary.
type SummaryOpts struct {
	// MaxNameWidth truncates identifiers; 0 keeps them whole.
	MaxNameWidth int
}

var (
	summaryHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle          = lipgloss.NewStyle().Padding(0, 1)
	errStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	warnStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// RenderSummary draws one row per resolved struct with the number of
// diagnostics reported against it, followed by a totals line.
func RenderSummary(structs []ir.ResolvedStruct, bag *diag.Bag, opts SummaryOpts) string {
	perDecl := make(map[string]int)
	var errs, warns int
	if bag != nil {
		for _, d := range bag.Items() {
			if d.Decl != "" {
				perDecl[d.Decl]++
			}
			switch d.Severity {
			case diag.SevError:
				errs++
			case diag.SevWarning:
				warns++
			}
		}
	}

	rows := make([][]string, 0, len(structs))
	for _, s := range structs {
		exposed := "-"
		if s.ExposedName != nil {
			exposed = truncate(*s.ExposedName, opts.MaxNameWidth)
		}
		rows = append(rows, []string{
			truncate(s.Ident, opts.MaxNameWidth),
			exposed,
			s.Repr.String(),
			s.Shape.String(),
			strconv.Itoa(len(s.Fields)),
			strconv.Itoa(perDecl[s.Ident]),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("STRUCT", "EXPOSED AS", "REPR", "SHAPE", "FIELDS", "DIAGNOSTICS").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return summaryHeaderStyle
			}
			return cellStyle
		})

	var b strings.Builder
	b.WriteString(t.Render())
	b.WriteString("\n")
	fmt.Fprintf(&b, "%d %s, %s, %s\n",
		len(structs), plural(len(structs), "struct"),
		errStyle.Render(fmt.Sprintf("%d %s", errs, plural(errs, "error"))),
		warnStyle.Render(fmt.Sprintf("%d %s", warns, plural(warns, "warning"))))
	return b.String()
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
