package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jobcrap/jobcrap-cli/internal/feed"
)

// filterBar renders the category chips and drives the single-select picker.
// Category is one-of: picking a chip replaces the active category, picking
// the active chip again clears it.
type filterBar struct {
	categories []string
	active     string
	filterMode bool
	cursor     int // 0 = "All", 1..n = categories[cursor-1]
}

func newFilterBar() filterBar {
	return filterBar{categories: feed.Categories}
}

// pick returns the category under the cursor, "" for the All chip.
func (f *filterBar) pick() string {
	if f.cursor == 0 {
		return ""
	}
	return f.categories[f.cursor-1]
}

func (f *filterBar) moveLeft() {
	if f.cursor > 0 {
		f.cursor--
	}
}

func (f *filterBar) moveRight() {
	if f.cursor < len(f.categories) {
		f.cursor++
	}
}

func (f *filterBar) render(width int, sort feed.SortMode) string {
	sep := tabSeparatorStyle.Render(" · ")
	var parts []string

	labels := append([]string{"All"}, f.categories...)
	for i, label := range labels {
		style := tabInactiveStyle
		if (i == 0 && f.active == "") || (i > 0 && f.active == label) {
			style = tabActiveStyle
		}
		if f.filterMode && i == f.cursor {
			label = "[" + label + "]"
		}
		parts = append(parts, style.Render(label))
	}
	parts = append(parts, sortChipStyle.Render("↕ "+string(sort)))

	// Build row with · separators, stopping when we'd exceed width
	var row string
	for i, part := range parts {
		candidate := row
		if i > 0 {
			candidate += sep
		}
		candidate += part
		if lipgloss.Width(candidate) > width && row != "" {
			break
		}
		row = candidate
	}

	barStyle := lipgloss.NewStyle().
		Background(colorSurface).
		Width(width).
		PaddingLeft(1)
	return barStyle.Render(row)
}
