package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jobcrap/jobcrap-cli/internal/api"
)

func relativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}

func attribution(s api.Story) string {
	if s.IsAnonymous || s.AuthorName == "" {
		return "anonymous"
	}
	return s.AuthorName
}

// headline is the first line of the story text, flattened.
func headline(s api.Story) string {
	text := strings.Join(strings.Fields(s.Text), " ")
	if text == "" {
		return "(empty story)"
	}
	return text
}

func voteCounts(s api.Story) string {
	up := fmt.Sprintf("▲%d", s.Upvotes)
	down := fmt.Sprintf("▼%d", s.Downvotes)
	switch s.UserVote {
	case "upvote":
		up = itemUpStyle.Render(up)
	case "downvote":
		down = itemDownStyle.Render(down)
	}
	return up + " " + down
}

func renderListItem(s api.Story, selected bool, width int) string {
	if width < 10 {
		width = 30
	}

	head := headline(s)
	if len(s.TriggerWarnings) > 0 {
		head = itemWarnStyle.Render("⚠ ") + truncateStr(head, width-6)
	} else {
		head = truncateStr(head, width-4)
	}

	var line string
	if selected {
		line = itemSelectedStyle.Render("> ") + head
	} else {
		line = "  " + itemTextStyle.Render(head)
	}

	meta := "  " + voteCounts(s) +
		itemMetaStyle.Render(fmt.Sprintf(" · 💬%d · %s · %s", s.CommentCount, attribution(s), relativeTime(s.CreatedAt)))
	if s.Category != "" {
		meta += itemMetaStyle.Render(" · " + s.Category)
	}

	return line + "\n" + meta
}

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func renderList(stories []api.Story, cursor int, height, width int, exhausted bool) string {
	if len(stories) == 0 {
		return lipglossCenter("No stories match — press c to clear filters", width, height)
	}

	// Each item is 2 lines + 1 blank line = 3 lines
	itemHeight := 3
	visible := height / itemHeight
	if visible < 1 {
		visible = 1
	}

	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := start + visible
	if end > len(stories) {
		end = len(stories)
		start = end - visible
		if start < 0 {
			start = 0
		}
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(renderListItem(stories[i], i == cursor, width))
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	if exhausted && end == len(stories) {
		b.WriteString("\n" + itemMetaStyle.Render("  — no more stories —"))
	}

	return b.String()
}

func lipglossCenter(s string, width, height int) string {
	pad := (width - lipgloss.Width(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat("\n", height/3) + strings.Repeat(" ", pad) + s
}
