package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jobcrap/jobcrap-cli/internal/api"
)

// detailState is the open story view: the full text, its comments, and an
// optional translation shown alongside the original.
type detailState struct {
	story       api.Story
	comments    []api.Comment
	translation string
	scroll      int
	loading     bool
}

func wrapText(s string, width int) []string {
	if width < 10 {
		width = 10
	}
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			if len(line)+1+len(w) > width {
				lines = append(lines, line)
				line = w
				continue
			}
			line += " " + w
		}
		lines = append(lines, line)
	}
	return lines
}

func (d *detailState) render(width, height int) string {
	if d.loading {
		return lipglossCenter("Loading story...", width, height)
	}

	s := d.story
	var b strings.Builder

	meta := fmt.Sprintf("%s · %s · %s", attribution(s), relativeTime(s.CreatedAt), voteCounts(s))
	if s.Category != "" {
		meta += " · " + s.Category
	}
	if s.Country != "" {
		meta += " · " + s.Country
	}
	b.WriteString(detailMetaStyle.Render(meta) + "\n")

	if len(s.TriggerWarnings) > 0 {
		b.WriteString(itemWarnStyle.Render("⚠ "+strings.Join(s.TriggerWarnings, ", ")) + "\n\n")
	}

	for _, line := range wrapText(s.Text, width) {
		b.WriteString(detailBodyStyle.Render(line) + "\n")
	}

	if len(s.Tags) > 0 {
		b.WriteString("\n" + itemMetaStyle.Render("#"+strings.Join(s.Tags, " #")) + "\n")
	}

	if d.translation != "" {
		b.WriteString("\n" + helpDimStyle.Render("translation") + "\n")
		for _, line := range wrapText(d.translation, width) {
			b.WriteString(translationStyle.Render(line) + "\n")
		}
	}

	b.WriteString("\n" + helpDimStyle.Render(fmt.Sprintf("comments (%d)", s.CommentCount)) + "\n")
	if len(d.comments) == 0 {
		b.WriteString(itemMetaStyle.Render("no comments yet") + "\n")
	}
	for _, c := range d.comments {
		author := c.AuthorName
		if c.IsAnonymous || author == "" {
			author = "anonymous"
		}
		b.WriteString(commentAuthorStyle.Render(author) + itemMetaStyle.Render(" · "+relativeTime(c.CreatedAt)) + "\n")
		for _, line := range wrapText(c.Text, width) {
			b.WriteString("  " + detailBodyStyle.Render(line) + "\n")
		}
	}

	lines := strings.Split(b.String(), "\n")
	if d.scroll >= len(lines) {
		d.scroll = len(lines) - 1
	}
	if d.scroll < 0 {
		d.scroll = 0
	}
	lines = lines[d.scroll:]
	if len(lines) > height {
		lines = lines[:height]
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}
