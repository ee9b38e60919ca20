// Package richtext parses the inline event-link micro-syntax used in chat
// messages: free text immediately followed by a bracketed path marker, e.g.
// "Jazz Night [EVENT_URL:/events/42]".
package richtext

import (
	"regexp"
	"strings"
)

// linkPattern matches a label run followed by an event-path marker. The label
// is the free text between the previous match (or start of line) and the
// marker. An unterminated bracket never matches, so malformed markers degrade
// to plain text.
var linkPattern = regexp.MustCompile(`(.*?)\s*\[EVENT_URL:(/events/[^\]]+)\]`)

// RunKind tags the two run variants.
type RunKind int

const (
	// Text is a plain text run, rendered verbatim.
	Text RunKind = iota
	// Link is a navigable reference: Label shown, Path navigated to.
	Link
)

// Run is one parsed segment of a message body.
type Run struct {
	Kind  RunKind
	Text  string
	Label string
	Path  string
}

// Parse splits a message body into text and link runs, scanning left to
// right. A body with no markers comes back as a single text run. Parse is
// pure and keeps no state between calls.
func Parse(text string) []Run {
	if text == "" {
		return nil
	}

	matches := linkPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return []Run{{Kind: Text, Text: text}}
	}

	var runs []Run
	last := 0
	for _, m := range matches {
		// m[0],m[1] full match; m[2],m[3] label; m[4],m[5] path.
		if m[0] > last {
			runs = append(runs, Run{Kind: Text, Text: text[last:m[0]]})
		}

		label := cleanLabel(text[m[2]:m[3]])
		path := text[m[4]:m[5]]
		runs = append(runs, Run{Kind: Link, Label: label, Path: path})
		last = m[1]
	}

	if last < len(text) {
		runs = append(runs, Run{Kind: Text, Text: text[last:]})
	}
	return runs
}

// Links returns just the link runs of a body, in order of appearance.
func Links(text string) []Run {
	var links []Run
	for _, run := range Parse(text) {
		if run.Kind == Link {
			links = append(links, run)
		}
	}
	return links
}

// cleanLabel trims the label and strips inline bold markup, which the
// chatbot tends to emit around event names.
func cleanLabel(label string) string {
	return strings.TrimSpace(strings.ReplaceAll(label, "**", ""))
}
