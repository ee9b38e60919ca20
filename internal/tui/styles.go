package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/freedayhq/freeday-chat/internal/constants"
)

// Colors - FreeDay brand: teal on deep slate
var (
	colorBrand    = lipgloss.Color("#08BAA1") // FreeDay teal
	colorBrandDim = lipgloss.Color("#067566")
	colorInk      = lipgloss.Color("#E8E8F0")
	colorMuted    = lipgloss.Color("#6C6C8A")

	colorOnline  = lipgloss.Color("#00D474") // presence dot
	colorWarning = lipgloss.Color("#FFB347")
	colorError   = lipgloss.Color("#FF4D6D")

	colorBg      = lipgloss.Color("#0C0C14")
	colorBgPanel = lipgloss.Color("#14141E")
	colorBorder  = lipgloss.Color("#2A2A3E")
)

var (
	sidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(colorBorder)

	sidebarTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorBrand).
				Padding(0, 1)

	itemStyle = lipgloss.NewStyle().
			Foreground(colorInk).
			Padding(0, 1)

	itemSelectedStyle = lipgloss.NewStyle().
				Foreground(colorBg).
				Background(colorBrand).
				Bold(true).
				Padding(0, 1)

	itemActiveStyle = lipgloss.NewStyle().
			Foreground(colorBrand).
			Bold(true).
			Padding(0, 1)

	previewStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	stampStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	badgeStyle = lipgloss.NewStyle().
			Foreground(colorBg).
			Background(colorBrand).
			Bold(true).
			Padding(0, 1)

	onlineStyle = lipgloss.NewStyle().
			Foreground(colorOnline)

	chatHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBrand).
			Background(colorBgPanel).
			Padding(0, 1)

	taglineStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	bubbleMineStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBrandDim).
			Foreground(colorInk).
			Padding(0, 1)

	bubbleTheirsStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorBorder).
				Foreground(colorInk).
				Padding(0, 1)

	pendingStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)

	thinkingStyle = lipgloss.NewStyle().
			Foreground(colorBrand).
			Italic(true)

	historyErrorStyle = lipgloss.NewStyle().
				Foreground(colorError).
				Italic(true).
				Padding(0, 1)

	bannerStyle = lipgloss.NewStyle().
			Foreground(colorBg).
			Background(colorWarning).
			Bold(true).
			Padding(0, 1)

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBrand).
			Padding(0, 1)

	inputBlurredStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorBorder).
				Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)
)

// formatStamp renders a sidebar timestamp the way chat apps do: clock time
// for today, day and month otherwise.
func formatStamp(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	t = t.Local()
	now = now.Local()
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04")
	}
	if t.Year() == now.Year() {
		return t.Format("2 Jan")
	}
	return t.Format("2 Jan 06")
}

// formatBadge renders an unread count, capping runaway numbers.
func formatBadge(unread int) string {
	if unread <= 0 {
		return ""
	}
	if unread > constants.UnreadBadgeCap {
		return fmt.Sprintf("%d+", constants.UnreadBadgeCap)
	}
	return fmt.Sprintf("%d", unread)
}
