package util

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"standup", 0, "standup"},
		{"standup", 7, "standup"},
		{"standup", 5, "stan…"},
		{"standup", 1, "…"},
		{"日本語テキスト", 5, "日本…"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.width); got != tt.want {
			t.Fatalf("Truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestHyperlink(t *testing.T) {
	got := Hyperlink("https://example.com", "site")
	if ansi.Strip(got) != "site" {
		t.Fatalf("visible text = %q", ansi.Strip(got))
	}
	if !strings.Contains(got, "https://example.com") {
		t.Fatalf("link target missing: %q", got)
	}
	if Hyperlink("", "plain") != "plain" {
		t.Fatal("empty url should leave text alone")
	}
}

func TestHTMLToTextStructure(t *testing.T) {
	in := "<p>Agenda for <b>today</b></p><ul><li>Intro</li><li>Q&amp;A</li></ul>Bye<br>all"
	got := HTMLToText(in, 0)
	want := "Agenda for today\n\n  • Intro\n  • Q&A\nBye\nall"
	if got != want {
		t.Fatalf("HTMLToText =\n%q\nwant\n%q", got, want)
	}
}

func TestHTMLToTextPlain(t *testing.T) {
	got := HTMLToText("  line one  \r\n\r\n\r\n\r\nline   two ", 0)
	if got != "line one\n\nline two" {
		t.Fatalf("got %q", got)
	}
}

func TestHTMLToTextLinks(t *testing.T) {
	in := `See <a href="https://www.google.com/url?q=https://meet.example.com/abc&sa=D">the meeting room link</a> now`
	got := HTMLToText(in, 8)
	if !strings.Contains(got, "https://meet.example.com/abc") {
		t.Fatalf("redirect not unwrapped: %q", got)
	}
	if strings.Contains(got, "google.com/url") {
		t.Fatalf("redirect kept: %q", got)
	}
	if visible := ansi.Strip(got); visible != "See the mee… now" {
		t.Fatalf("visible = %q", visible)
	}
}

func TestHTMLToTextUnterminatedLink(t *testing.T) {
	got := HTMLToText(`<a href="https://x.example">dangling`, 0)
	if got != "dangling" {
		t.Fatalf("got %q", got)
	}
}
