package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type statusInfo struct {
	storyCount  int
	filterLabel string
	searching   bool
	loading     bool
	authedAs    string
	notice      string
	err         error
}

func renderStatusBar(info statusInfo, width int) string {
	left := fmt.Sprintf(" %d stories", info.storyCount)
	if info.filterLabel != "All" {
		left += " · " + info.filterLabel
	}
	if info.authedAs != "" {
		left += " · " + info.authedAs
	}
	if info.loading {
		left += " (loading...)"
	}

	right := " / search  f filter  s sort  u/d vote  ? help "
	if info.searching {
		right = " esc cancel  enter search "
	}

	if info.notice != "" {
		left = noticeStyle.Render(info.notice)
	}
	if info.err != nil {
		left = errorStyle.Render(info.err.Error())
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}
