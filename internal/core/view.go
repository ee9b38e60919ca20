package core

import (
	"net/url"
	"time"

	"github.com/freedayhq/freeday-chat/internal/constants"
)

// ConversationView is the uniform display shape both conversation kinds
// normalize into, so rendering code never branches on kind.
type ConversationView struct {
	ID          string
	DisplayName string
	Tagline     string
	AvatarURL   string
	PreviewText string
	PreviewAt   time.Time
	Unread      int
	Online      bool
	IsAssistant bool
}

// NormalizeConversation produces the display shape for a conversation as seen
// by the given viewer. It is a pure transform: same input, same output, which
// lets the sidebar resort without refetching.
func NormalizeConversation(c Conversation, viewer Identity) ConversationView {
	if c.IsAssistant() {
		preview := c.LastPreview
		if preview == "" {
			preview = constants.AssistantReadyPreview
		}
		return ConversationView{
			ID:          c.ID,
			DisplayName: constants.AssistantDisplayName,
			Tagline:     constants.AssistantTagline,
			PreviewText: preview,
			PreviewAt:   recencyOf(c),
			IsAssistant: true,
		}
	}

	other := OtherParty(c, viewer)

	name := other.DisplayName
	if name == "" {
		name = constants.UnknownUserName
	}

	avatar := other.AvatarURL
	if avatar == "" {
		avatar = generatedAvatarURL(name)
	}

	return ConversationView{
		ID:          c.ID,
		DisplayName: name,
		Tagline:     c.EventTitle,
		AvatarURL:   avatar,
		PreviewText: c.LastPreview,
		PreviewAt:   recencyOf(c),
		Unread:      c.UnreadCount,
		Online:      other.Online,
	}
}

// OtherParty returns whichever participant is not the viewer, decided by
// comparing the viewer's id against the conversation's organizer role.
func OtherParty(c Conversation, viewer Identity) Identity {
	if viewer.ID != "" && c.OrganizerID == viewer.ID {
		return c.Participant
	}
	return c.Organizer
}

// generatedAvatarURL falls back to a generated avatar keyed by name when the
// participant has not set one.
func generatedAvatarURL(name string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=08BAA1&color=fff"
}
