package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/callout/pkg/scene"
)

// Terminal palette (ANSI 256).
var (
	colorAccent = lipgloss.Color("36")
	colorOK     = lipgloss.Color("35")
	colorWarn   = lipgloss.Color("220")
	colorFail   = lipgloss.Color("167")
	colorLink   = lipgloss.Color("75")
	colorText   = lipgloss.Color("255")
	colorMuted  = lipgloss.Color("245")
	colorFaint  = lipgloss.Color("240")
)

// Exported so the TUI and other commands render with the same look.
var (
	StyleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	StyleDim     = lipgloss.NewStyle().Foreground(colorFaint)
	StyleValue   = lipgloss.NewStyle().Foreground(colorText)
	StyleWarning = lipgloss.NewStyle().Foreground(colorWarn)
)

var (
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorAccent)
	styleCommand     = lipgloss.NewStyle().Foreground(colorLink)
	styleHeader      = lipgloss.NewStyle().Foreground(colorMuted).Bold(true)
	styleKey         = lipgloss.NewStyle().Foreground(colorMuted).Width(12)
)

// statusMark is the coloured glyph that prefixes a status line.
type statusMark struct {
	glyph string
	color lipgloss.Color
}

func (m statusMark) String() string {
	return lipgloss.NewStyle().Foreground(m.color).Render(m.glyph)
}

var (
	markSuccess = statusMark{"✓", colorOK}
	markError   = statusMark{"✗", colorFail}
	markWarning = statusMark{"!", colorWarn}
	markInfo    = statusMark{"›", colorMuted}
)

func printStatus(m statusMark, msg string) {
	fmt.Println(m.String() + " " + msg)
}

func printSuccess(format string, args ...any) {
	printStatus(markSuccess, fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	printStatus(markError, fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	printStatus(markWarning, StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	printStatus(markInfo, fmt.Sprintf(format, args...))
}

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints "→ path" for a written artifact.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render("→") + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// statsLine summarizes a resolved scene, e.g. "3 targets · 2 callouts · cached".
func statsLine(targets, callouts, placed int, cached bool) string {
	parts := []string{
		fmt.Sprintf("%d targets", targets),
		fmt.Sprintf("%d callouts", callouts),
	}
	if placed != callouts {
		parts = append(parts, fmt.Sprintf("%d placed", placed))
	}

	status := lipgloss.NewStyle().Foreground(colorMuted).Render("fresh")
	if cached {
		status = lipgloss.NewStyle().Foreground(colorOK).Render("cached")
	}

	var b strings.Builder
	b.WriteString("  ")
	for i, p := range parts {
		if i > 0 {
			b.WriteString(StyleDim.Render(" · "))
		}
		b.WriteString(StyleDim.Render(p))
	}
	b.WriteString(StyleDim.Render(" · "))
	b.WriteString(status)
	return b.String()
}

// printStats prints scene statistics on a single line.
func printStats(targets, callouts, placed int, cached bool) {
	fmt.Println(statsLine(targets, callouts, placed, cached))
}

// placementTable renders one row per callout. The row at index selected
// is highlighted; pass -1 for none.
func placementTable(callouts []scene.Placed, selected int) string {
	rows := make([][]string, 0, len(callouts))
	for _, c := range callouts {
		rows = append(rows, placementRow(c))
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorFaint)).
		Headers("Callout", "Target", "Side", "Box", "Arrow", "Shift", "Mode").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if row < 0 || row >= len(callouts) {
				return base
			}
			c := callouts[row]
			switch {
			case !c.Placed:
				return base.Foreground(colorFail)
			case row == selected:
				return base.Foreground(colorAccent).Bold(true)
			case col == 5 && c.Result.Clamped():
				return base.Foreground(colorWarn)
			case !c.Visible:
				return base.Foreground(colorFaint)
			}
			return base.Foreground(colorText)
		})
	return t.Render()
}

func placementRow(c scene.Placed) []string {
	if !c.Placed {
		return []string{c.ID, c.Target, c.Side.String(), "-", "-", "-", c.Mode}
	}
	return []string{
		c.ID,
		c.Target,
		c.Side.String(),
		fmt.Sprintf("%d,%d", c.Result.Box.X, c.Result.Box.Y),
		fmt.Sprintf("%d (tip %d)", c.Result.Arrow, c.Result.Tip),
		fmt.Sprintf("%+d", c.Result.Shift),
		c.Mode,
	}
}
