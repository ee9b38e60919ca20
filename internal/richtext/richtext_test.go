package richtext

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseLabelAndPath(t *testing.T) {
	runs := Parse("See this [EVENT_URL:/events/42]")
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d: %#v", len(runs), runs)
	}
	if runs[0].Kind != Link {
		t.Fatalf("expected link run, got %#v", runs[0])
	}
	if runs[0].Label != "See this" {
		t.Errorf("label = %q, want %q", runs[0].Label, "See this")
	}
	if runs[0].Path != "/events/42" {
		t.Errorf("path = %q, want %q", runs[0].Path, "/events/42")
	}
}

func TestParseTable(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Run
	}{
		{
			name: "no markers",
			in:   "just a plain message",
			want: []Run{{Kind: Text, Text: "just a plain message"}},
		},
		{
			name: "empty",
			in:   "",
			want: nil,
		},
		{
			name: "bold stripped from label",
			in:   "**Jazz Night** [EVENT_URL:/events/7]",
			want: []Run{{Kind: Link, Label: "Jazz Night", Path: "/events/7"}},
		},
		{
			name: "two links with trailing text",
			in:   "Try A [EVENT_URL:/events/1] or B [EVENT_URL:/events/2] tonight",
			want: []Run{
				{Kind: Link, Label: "Try A", Path: "/events/1"},
				{Kind: Link, Label: "or B", Path: "/events/2"},
				{Kind: Text, Text: " tonight"},
			},
		},
		{
			name: "unterminated bracket stays plain",
			in:   "broken [EVENT_URL:/events/9",
			want: []Run{{Kind: Text, Text: "broken [EVENT_URL:/events/9"}},
		},
		{
			name: "wrong path prefix stays plain",
			in:   "see [EVENT_URL:/users/3]",
			want: []Run{{Kind: Text, Text: "see [EVENT_URL:/users/3]"}},
		},
		{
			name: "marker after newline",
			in:   "intro line\nGo here [EVENT_URL:/events/5]",
			want: []Run{
				{Kind: Text, Text: "intro line\n"},
				{Kind: Link, Label: "Go here", Path: "/events/5"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseRoundTripText(t *testing.T) {
	// Concatenating text runs and labels loses only markup, never order.
	in := "first [EVENT_URL:/events/1] middle [EVENT_URL:/events/2] last"
	var b strings.Builder
	for _, run := range Parse(in) {
		if run.Kind == Link {
			b.WriteString(run.Label)
		} else {
			b.WriteString(run.Text)
		}
	}
	got := b.String()
	for _, want := range []string{"first", "middle", "last"} {
		if !strings.Contains(got, want) {
			t.Errorf("flattened %q missing %q", got, want)
		}
	}
}

func TestLinks(t *testing.T) {
	links := Links("A [EVENT_URL:/events/1] then B [EVENT_URL:/events/2]")
	if len(links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(links))
	}
	if links[0].Path != "/events/1" || links[1].Path != "/events/2" {
		t.Errorf("unexpected paths: %q %q", links[0].Path, links[1].Path)
	}
}

func TestRenderPlain(t *testing.T) {
	if got := Render("hello there", ""); !strings.Contains(got, "hello there") {
		t.Errorf("Render lost plain text: %q", got)
	}
}

func TestRenderKeepsLabel(t *testing.T) {
	got := Render("See this [EVENT_URL:/events/42]", "")
	if !strings.Contains(got, "See this") {
		t.Errorf("Render lost link label: %q", got)
	}
	if strings.Contains(got, "EVENT_URL") {
		t.Errorf("Render leaked raw marker: %q", got)
	}
}
