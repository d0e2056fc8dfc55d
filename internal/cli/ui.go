package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/busarchive/pkg/archive"
	"github.com/matzehuels/busarchive/pkg/schedule"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
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

	styleDiffInsert = lipgloss.NewStyle().Foreground(colorGreen)
	styleDiffDelete = lipgloss.NewStyle().Foreground(colorRed)

	styleTableHeader = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Padding(0, 1)
	styleTableCell   = lipgloss.NewStyle().Padding(0, 1)
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
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printError(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printFile prints a file output line.
func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// =============================================================================
// Schedule Display
// =============================================================================

// printSummary prints object counts of a schedule on a single line.
func printSummary(w io.Writer, sum schedule.Summary) {
	parts := []string{
		fmt.Sprintf("%d trips", sum.Trips),
		fmt.Sprintf("%d routes", sum.Routes),
		fmt.Sprintf("%d stops", sum.Stops),
		fmt.Sprintf("%d corners", sum.Corners),
		fmt.Sprintf("%d destinations", sum.Destinations),
	}
	fmt.Fprintln(w, "  "+StyleDim.Render(strings.Join(parts, " · ")))
}

// printStats prints archive counters on a single line.
func printStats(w io.Writer, st archive.Stats) {
	fmt.Fprintln(w, "  "+StyleDim.Render(fmt.Sprintf("%d records · %d objects · %d back-references",
		st.Records, st.Objects, st.BackRefs)))
}

// newTable returns a table in the CLI's style.
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleTableHeader
			}
			return styleTableCell
		})
}

// tripTable lists each trip with its route label and stop count.
func tripTable(s *schedule.Schedule, labels *schedule.Labeler) *table.Table {
	t := newTable("TIME", "DRIVER", "ROUTE", "STOPS")
	for _, e := range s.Entries {
		stops := "-"
		if e.Route != nil {
			stops = fmt.Sprint(len(e.Route.Stops))
		}
		t.Row(fmt.Sprintf("%d:%02d", e.Trip.Hour, e.Trip.Minute), e.Trip.Driver, labels.Route(e.Route), stops)
	}
	return t
}

// stopTable lists every distinct stop once, in first-visit order.
func stopTable(s *schedule.Schedule, labels *schedule.Labeler) *table.Table {
	t := newTable("STOP", "KIND", "LATITUDE", "LONGITUDE", "DESCRIPTION")
	seen := make(map[schedule.Stop]bool)
	for _, e := range s.Entries {
		if e.Route == nil {
			continue
		}
		for _, st := range e.Route.Stops {
			if st == nil || seen[st] {
				continue
			}
			seen[st] = true
			t.Row(labels.Stop(st), st.ArchiveVariant(), st.Latitude().String(), st.Longitude().String(), st.Description())
		}
	}
	return t
}
