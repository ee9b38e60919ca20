package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/freedayhq/freeday-chat/internal/core"
)

// RenderSidebar renders the conversation list pane. items come pre-sorted
// (assistant first, humans by recency); selectedIdx is the keyboard cursor,
// activeID the conversation whose messages are displayed.
func RenderSidebar(items []core.ConversationView, selectedIdx int, activeID string, width, height int, searchView string, now time.Time) string {
	var lines []string

	lines = append(lines, sidebarTitleStyle.Render("Messages"))
	if searchView != "" {
		lines = append(lines, searchView)
	}

	if len(items) == 0 {
		lines = append(lines, previewStyle.Padding(0, 1).Render("No conversations"))
	}

	for i, item := range items {
		lines = append(lines, renderItem(item, i == selectedIdx, item.ID == activeID, width-2, now)...)
	}

	content := strings.Join(lines, "\n")
	return sidebarStyle.Width(width).Height(height).Render(content)
}

// renderItem renders one two-line sidebar entry: name row with presence,
// stamp and unread badge, then a truncated preview row.
func renderItem(item core.ConversationView, selected, active bool, width int, now time.Time) []string {
	style := itemStyle
	if selected {
		style = itemSelectedStyle
	} else if active {
		style = itemActiveStyle
	}

	name := item.DisplayName
	if item.Online {
		name = onlineStyle.Render("●") + " " + name
	}

	var right []string
	if stamp := formatStamp(item.PreviewAt, now); stamp != "" {
		right = append(right, stampStyle.Render(stamp))
	}
	if badge := formatBadge(item.Unread); badge != "" {
		right = append(right, badgeStyle.Render(badge))
	}

	nameRow := name
	if len(right) > 0 {
		rightPart := strings.Join(right, " ")
		gap := width - lipgloss.Width(name) - lipgloss.Width(rightPart) - 2
		if gap < 1 {
			gap = 1
		}
		nameRow = name + strings.Repeat(" ", gap) + rightPart
	}

	preview := item.PreviewText
	if preview == "" && item.Tagline != "" {
		preview = item.Tagline
	}
	preview = strings.ReplaceAll(preview, "\n", " ")
	preview = truncate(preview, width-4)

	rows := []string{style.Width(width).Render(nameRow)}
	if preview != "" {
		rows = append(rows, previewStyle.Padding(0, 1).Width(width).Render(truncate(preview, width-2)))
	}
	return rows
}

// truncate shortens a string to at most max display cells, with an ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= max {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes)) > max-1 {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
