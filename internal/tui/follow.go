package tui

import "github.com/freedayhq/freeday-chat/internal/constants"

// FollowAction is what the viewport should do after new content lands.
type FollowAction int

const (
	// FollowNone leaves the scroll position alone; the user is reading
	// history.
	FollowNone FollowAction = iota
	// FollowScroll moves to the latest message because the user was already
	// at (or near) the newest content.
	FollowScroll
	// FollowJump forces the viewport to the latest message, used right after
	// a conversation switch regardless of prior position.
	FollowJump
)

// FollowDecision picks the scroll action for newly arrived content.
// justSwitched is the one-shot flag set when the displayed conversation just
// changed; distanceFromBottom is how many lines of content sit below the
// viewport's lower edge before the new content was added. The decision
// depends only on its inputs.
func FollowDecision(justSwitched bool, distanceFromBottom int) FollowAction {
	if justSwitched {
		return FollowJump
	}
	if distanceFromBottom < constants.NearBottomLines {
		return FollowScroll
	}
	return FollowNone
}

// DistanceFromBottom measures how far the viewport sits above the end of its
// content, in lines. Zero means the last line is visible.
func DistanceFromBottom(totalLines, yOffset, height int) int {
	d := totalLines - (yOffset + height)
	if d < 0 {
		return 0
	}
	return d
}
