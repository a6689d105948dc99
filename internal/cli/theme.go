package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/raphaelgruber/deptrack/internal/models"
)

// Theme holds the color scheme for terminal output.
type Theme struct {
	Title   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
	Border  lipgloss.Color
}

var defaultTheme = Theme{
	Title:   lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Warning: lipgloss.Color("#F59E0B"), // amber
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
	Border:  lipgloss.Color("#3A3A3A"), // dark gray
}

func (t Theme) titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Title).Bold(true)
}

func (t Theme) successStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) warningStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Warning)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

func (t Theme) labelStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Width(26)
}

// dependencyTable renders deps as a bordered table.
func (t Theme) dependencyTable(deps []models.Dependency) string {
	rows := make([][]string, 0, len(deps))
	for _, d := range deps {
		rows = append(rows, []string{
			d.Name,
			d.TestVersion,
			orDash(d.ProdVersion),
			formatDate(d.LastUpdated()),
			nextUpdate(d),
		})
	}

	header := lipgloss.NewStyle().Foreground(t.Title).Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	drift := cell.Foreground(t.Warning)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(t.Border)).
		Headers("NAME", "TEST", "PROD", "LAST UPDATED", "NEXT UPDATE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			if col == 2 && row >= 0 && row < len(deps) && deps[row].HasVersionDrift() {
				return drift
			}
			return cell
		}).
		String()
}

// printDependency writes the detail view of one dependency.
func (t Theme) printDependency(w io.Writer, d models.Dependency) {
	fmt.Fprintln(w, t.titleStyle().Render(d.Name))
	field := func(label, value string) {
		fmt.Fprintf(w, "  %s%s\n", t.labelStyle().Render(label), value)
	}
	field("ID", d.ID)
	field("Test version", d.TestVersion)
	prod := orDash(d.ProdVersion)
	if d.HasVersionDrift() {
		prod = t.warningStyle().Render(prod + " (drift)")
	}
	field("Prod version", prod)
	field("Test last updated", formatTimestamp(d.TestLastUpdated))
	field("Production last updated", formatTimestamp(d.ProductionLastUpdated))
	field("Test next update", formatTimestamp(d.TestNextUpdate))
	field("Production next update", formatTimestamp(d.ProductionNextUpdate))
	field("Source", orDash(d.SourceURL))
	field("Changelog", orDash(d.ChangelogURL))
	field("Homepage", orDash(d.HomepageURL))
	field("Created", formatTimestamp(&d.CreatedAt))
}

// nameList renders names as a bulleted list, or a dim placeholder when empty.
func (t Theme) nameList(names []string) string {
	if len(names) == 0 {
		return t.hintStyle().Render("  (none)") + "\n"
	}
	var b strings.Builder
	for _, n := range names {
		fmt.Fprintf(&b, "  • %s\n", n)
	}
	return b.String()
}

func nextUpdate(d models.Dependency) string {
	next := d.TestNextUpdate
	if next == nil || (d.ProductionNextUpdate != nil && d.ProductionNextUpdate.Before(*next)) {
		next = d.ProductionNextUpdate
	}
	return formatDate(next)
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.DateOnly)
}

func formatTimestamp(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.RFC3339)
}
