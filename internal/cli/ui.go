package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/levelgen/pkg/level"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings, entrances
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

// Map glyph styles.
var (
	styleRoom     = lipgloss.NewStyle().Foreground(colorGray)
	styleCorridor = lipgloss.NewStyle().Foreground(colorCyan)
	styleEntrance = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Stats Display
// =============================================================================

// statsLine summarises a level on a single line, e.g.
// "12 rooms · 11 halls · 2 side halls · 184 tiles · fresh".
func statsLine(s level.Stats, cached bool) string {
	parts := []string{
		fmt.Sprintf("%d rooms", s.Rooms),
		fmt.Sprintf("%d halls", s.SpanningEdges),
	}
	if s.SideHalls > 0 {
		parts = append(parts, fmt.Sprintf("%d side halls", s.SideHalls))
	}
	parts = append(parts, fmt.Sprintf("%d tiles", s.Tiles))
	if s.FailedPaths > 0 {
		parts = append(parts, StyleWarning.Render(fmt.Sprintf("%d unrouted", s.FailedPaths)))
	}

	status := styleComputed.Render(iconFresh)
	if cached {
		status = styleCached.Render(iconCached)
	}
	parts = append(parts, status)

	var b strings.Builder
	for i, part := range parts {
		if i > 0 {
			b.WriteString(StyleDim.Render(" · "))
		}
		b.WriteString(StyleDim.Render(part))
	}
	return b.String()
}

// printStats prints level statistics on a single indented line.
func printStats(s level.Stats, cached bool) {
	fmt.Println("  " + statsLine(s, cached))
}

// =============================================================================
// Map Display
// =============================================================================

// colorMap renders the level map with one style per glyph kind.
func colorMap(l *level.Level) string {
	var b strings.Builder
	for _, row := range level.Glyphs(l) {
		line := strings.TrimRight(string(row), string(level.GlyphEmpty))
		for _, r := range line {
			b.WriteString(glyphStyle(r).Render(string(r)))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func glyphStyle(r rune) lipgloss.Style {
	switch r {
	case level.GlyphRoom:
		return styleRoom
	case level.GlyphCorridor:
		return styleCorridor
	case level.GlyphEntrance:
		return styleEntrance
	}
	return lipgloss.NewStyle()
}
