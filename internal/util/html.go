package util

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const bullet = "  • "

// paragraph tags end with a blank line.
var paragraph = map[atom.Atom]bool{
	atom.P:          true,
	atom.Div:        true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
	atom.Blockquote: true,
	atom.Pre:        true,
	atom.Table:      true,
	atom.Tr:         true,
}

// htmlText accumulates the plain-text rendering of a description.
type htmlText struct {
	b     strings.Builder
	width int

	// Open anchor, if any.
	href   string
	inLink bool
	label  strings.Builder

	// Pending whitespace between words.
	space bool
}

func (t *htmlText) write(s string) {
	if t.inLink {
		t.label.WriteString(s)
		return
	}
	t.b.WriteString(s)
}

// words writes text with runs of spaces collapsed. Line breaks in the text
// are kept.
func (t *htmlText) words(s string) {
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			t.newline(1)
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			t.space = t.space || line != ""
			continue
		}
		for j, w := range fields {
			if j > 0 || t.space || startsWithSpace(line) {
				t.write(" ")
			}
			t.write(w)
		}
		t.space = endsWithSpace(line)
	}
}

func (t *htmlText) newline(n int) {
	t.space = false
	t.write(strings.Repeat("\n", n))
}

func (t *htmlText) openLink(tok html.Token) {
	for _, a := range tok.Attr {
		if strings.EqualFold(a.Key, "href") {
			t.href = unwrapGoogleRedirect(strings.TrimSpace(a.Val))
		}
	}
	if t.space {
		t.b.WriteString(" ")
		t.space = false
	}
	t.inLink = true
	t.label.Reset()
}

func (t *htmlText) closeLink() {
	if !t.inLink {
		return
	}
	t.inLink = false
	label := strings.Join(strings.Fields(t.label.String()), " ")
	if label == "" {
		label = t.href
	}
	t.b.WriteString(Hyperlink(t.href, Truncate(label, t.width)))
	t.href = ""
}

// HTMLToText renders an appointment description as terminal text. Paragraph
// and list structure survive as line breaks and bullets; anchors become
// OSC 8 hyperlinks with their label truncated to width (width <= 0 keeps
// labels whole). Plain-text input passes through with only whitespace
// cleanup.
func HTMLToText(s string, width int) string {
	if s == "" {
		return ""
	}
	s = strings.NewReplacer("\r\n", "\n", "\r", "\n").Replace(s)

	t := &htmlText{width: width}
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		tok := z.Token()
		switch tt {
		case html.TextToken:
			t.words(tok.Data)
		case html.StartTagToken, html.SelfClosingTagToken:
			switch {
			case tok.DataAtom == atom.Br:
				t.newline(1)
			case tok.DataAtom == atom.Li:
				t.newline(1)
				t.write(bullet)
			case tok.DataAtom == atom.A && tt == html.StartTagToken:
				t.openLink(tok)
			case paragraph[tok.DataAtom]:
				t.newline(1)
			}
		case html.EndTagToken:
			switch {
			case tok.DataAtom == atom.A:
				t.closeLink()
			case tok.DataAtom == atom.Ul || tok.DataAtom == atom.Ol:
				t.newline(1)
			case paragraph[tok.DataAtom]:
				t.newline(2)
			}
		}
	}
	// An unterminated anchor keeps its text.
	if t.inLink {
		t.inLink = false
		t.b.WriteString(t.label.String())
	}
	return tidyLines(t.b.String())
}

// tidyLines trims every line, keeps bullet indentation, and allows at most
// one blank line in a row.
func tidyLines(s string) string {
	var out []string
	blank := 0
	for _, line := range strings.Split(s, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			blank++
			if blank > 1 {
				continue
			}
			out = append(out, "")
			continue
		}
		blank = 0
		if rest, ok := strings.CutPrefix(trimmed, "•"); ok {
			trimmed = bullet + strings.TrimSpace(rest)
		}
		out = append(out, trimmed)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func startsWithSpace(s string) bool {
	return s != "" && strings.TrimLeft(s, " \t") != s
}

func endsWithSpace(s string) bool {
	return s != "" && strings.TrimRight(s, " \t") != s
}

// unwrapGoogleRedirect returns the q target of a
// https://www.google.com/url?q=... link and any other URL unchanged.
func unwrapGoogleRedirect(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host != "www.google.com" || u.Path != "/url" {
		return raw
	}
	if q := u.Query().Get("q"); q != "" {
		return q
	}
	return raw
}
