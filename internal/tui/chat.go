package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/freedayhq/freeday-chat/internal/constants"
	"github.com/freedayhq/freeday-chat/internal/core"
	"github.com/freedayhq/freeday-chat/internal/richtext"
)

// RenderChatHeader renders the active conversation's title row.
func RenderChatHeader(view core.ConversationView, width int) string {
	name := view.DisplayName
	if view.Online {
		name += " " + onlineStyle.Render("● online")
	}
	header := chatHeaderStyle.Width(width).Render(name)
	if view.Tagline != "" {
		header += "\n" + taglineStyle.Width(width).Render(truncate(view.Tagline, width-2))
	}
	return header
}

// RenderMessages builds the scrollable transcript for the viewport. Messages
// render in log order; the store already guarantees that order, so no
// re-sorting happens here.
func RenderMessages(messages []core.Message, selfID string, state core.LoadState, failure string, width int, siteBase string) string {
	switch state {
	case core.LoadUnloaded:
		return previewStyle.Padding(0, 1).Render("Select a conversation to start chatting.")
	case core.LoadLoading:
		return previewStyle.Padding(0, 1).Render("Loading messages...")
	}

	if failure != "" {
		return historyErrorStyle.Render(failure)
	}

	if len(messages) == 0 {
		return previewStyle.Padding(0, 1).Render("No messages yet. Say hi!")
	}

	maxBubble := width * 2 / 3
	if maxBubble < 20 {
		maxBubble = 20
	}

	var blocks []string
	for _, msg := range messages {
		blocks = append(blocks, renderBubble(msg, selfID, width, maxBubble, siteBase))
	}
	return strings.Join(blocks, "\n")
}

// renderBubble renders one message: own messages hug the right edge, the
// other party's the left. Unconfirmed sends show a pending marker until the
// server echo adopts them.
func renderBubble(msg core.Message, selfID string, width, maxBubble int, siteBase string) string {
	mine := msg.SenderID == selfID || msg.SenderID == constants.SenderUser

	body := richtext.Render(msg.Content, siteBase)

	style := bubbleTheirsStyle
	if mine {
		style = bubbleMineStyle
	}
	bubble := style.MaxWidth(maxBubble).Render(body)

	meta := stampStyle.Render(msg.CreatedAt.Local().Format("15:04"))
	if mine && !msg.Confirmed() {
		meta += " " + pendingStyle.Render("sending…")
	}

	block := bubble + "\n" + meta
	if mine {
		return lipgloss.NewStyle().Width(width).Align(lipgloss.Right).Render(block)
	}
	return block
}

// RenderThinking renders the assistant's in-flight indicator.
func RenderThinking(spinnerView string) string {
	return thinkingStyle.Render(spinnerView + " " + constants.AssistantDisplayName + " is thinking...")
}

// RenderBanner renders the degraded-transport notice, empty when healthy.
func RenderBanner(text string, width int) string {
	if text == "" {
		return ""
	}
	return bannerStyle.Width(width).Render(text + " Press ctrl+r to reconnect.")
}
