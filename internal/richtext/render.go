package richtext

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var linkStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("43")).
	Underline(true)

// Render flattens a message body into styled terminal text. Link labels are
// underlined and, when siteBase is non-empty, wrapped in a terminal hyperlink
// pointing at the event page.
func Render(text, siteBase string) string {
	runs := Parse(text)
	if len(runs) == 0 {
		return ""
	}

	var b strings.Builder
	for _, run := range runs {
		switch run.Kind {
		case Link:
			label := linkStyle.Render(run.Label)
			if siteBase != "" {
				label = termenv.Hyperlink(siteBase+run.Path, label)
			}
			b.WriteString(label)
		default:
			b.WriteString(run.Text)
		}
	}
	return b.String()
}
