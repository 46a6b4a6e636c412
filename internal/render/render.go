package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultBarWidth is the number of cells in the progress bar.
const DefaultBarWidth = 20

const block = "█"

// FormatDuration formats seconds as MM:SS, or H:MM:SS from one hour up.
// Fractions are truncated toward zero and negative values render as 00:00.
func FormatDuration(seconds float64) string {
	s := int64(seconds)
	if s < 0 {
		s = 0
	}
	if s >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", s/3600, (s%3600)/60, s%60)
	}
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}

// FormatBar renders "[<blocks><spaces>] (<n>%)" for a percentage in [0,1].
// Values outside the range are clamped.
func FormatBar(percentage float64, width int) string {
	if width <= 0 {
		width = DefaultBarWidth
	}
	percentage = clamp(percentage)

	filled := int(math.RoundToEven(float64(width) * percentage))
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(strings.Repeat(block, filled))
	b.WriteString(strings.Repeat(" ", width-filled))
	b.WriteString("] (")
	b.WriteString(strconv.Itoa(int(percentage * 100)))
	b.WriteString("%)")
	return b.String()
}

func clamp(p float64) float64 {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// HasHistory reports whether total is usable as an estimate.
// Totals under one second count as no history.
func HasHistory(total *float64) bool {
	return total != nil && math.Trunc(*total) > 0
}

// Layout holds the per-run display settings.
type Layout struct {
	// Name is the operation name used in the default prefix.
	Name string

	// Message replaces the default prefix when non-empty.
	Message string

	// ShowPercentage enables the bar and percentage suffix.
	ShowPercentage bool

	// BarWidth is the bar cell count.
	// Default: 20
	BarWidth int
}

// Prefix returns the text rendered before the time.
func (l Layout) Prefix() string {
	if l.Message != "" {
		return l.Message
	}
	return `Loading "` + l.Name + `" ... `
}

// Bar returns " [..] (n%)" or "" when percentages are disabled.
func (l Layout) Bar(percentage float64) string {
	if !l.ShowPercentage {
		return ""
	}
	return " " + FormatBar(percentage, l.BarWidth)
}

// Line renders the progress line for the given elapsed seconds.
func (l Layout) Line(elapsed float64, total *float64) string {
	if !HasHistory(total) {
		return l.Prefix() + FormatDuration(elapsed)
	}
	return l.withTotal(elapsed, *total, math.Min(elapsed / *total, 1))
}

// Final renders the completed line: the bar is pinned at 100%.
func (l Layout) Final(elapsed float64, total *float64) string {
	if !HasHistory(total) {
		return l.Prefix() + FormatDuration(elapsed)
	}
	return l.withTotal(elapsed, *total, 1)
}

func (l Layout) withTotal(elapsed, total, percentage float64) string {
	return l.Prefix() + FormatDuration(elapsed) + "/" + FormatDuration(total) + l.Bar(percentage)
}
