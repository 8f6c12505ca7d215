package normalize

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	cerrors "github.com/FocuswithJustin/JuniperReader/core/errors"
	"github.com/FocuswithJustin/JuniperReader/internal/rows"
)

const (
	verseClass       = "verse"
	verseNumberClass = "verse-number"
	nbspEntity       = "&nbsp;"
)

// Verse is one normalized verse of a chapter.
type Verse struct {
	BookID      int    `json:"bookId"`
	Chapter     int    `json:"chapter"`
	VerseNumber int    `json:"verseNumber"`
	Text        string `json:"text"`
}

// ChapterFromRows maps local rows to verses. Database text is already
// clean and is used verbatim.
func ChapterFromRows(c rows.Cursor, bookID, chapter int) []Verse {
	var verses []Verse
	for row := range rows.All(c) {
		verses = append(verses, Verse{
			BookID:      bookID,
			Chapter:     chapter,
			VerseNumber: row.Verse,
			Text:        row.Text,
		})
	}
	return verses
}

// ChapterFromHTML extracts verses from a provider fragment. Every
// <p class="verse"> contributes one verse: the text of its first
// .verse-number descendant is the verse number, and the paragraph's
// remaining inner markup, trimmed and without one leading &nbsp;, is the
// text. Paragraphs without a usable marker are skipped.
func ChapterFromHTML(fragment string, bookID, chapter int) ([]Verse, error) {
	nodes, err := parseFragment(fragment)
	if err != nil {
		return nil, err
	}

	var verses []Verse
	for _, n := range nodes {
		walk(n, func(p *html.Node) bool {
			if p.Type != html.ElementNode || p.DataAtom != atom.P || !hasClass(p, verseClass) {
				return true
			}
			marker := findFirst(p, func(m *html.Node) bool {
				return m != p && m.Type == html.ElementNode && hasClass(m, verseNumberClass)
			})
			if marker == nil {
				return false
			}
			num, ok := leadingInt(strings.TrimSpace(textContent(marker)))
			if !ok || num <= 0 {
				return false
			}
			text := strings.TrimSpace(innerHTMLExcept(p, marker))
			text = strings.TrimPrefix(text, nbspEntity)
			verses = append(verses, Verse{
				BookID:      bookID,
				Chapter:     chapter,
				VerseNumber: num,
				Text:        text,
			})
			return false
		})
	}
	return verses, nil
}

// PlainText reduces each verse's markup to its text content. The result is
// still markup: the text is escaped so entities in the source stay inert.
func PlainText(verses []Verse) ([]Verse, error) {
	out := make([]Verse, len(verses))
	for i, v := range verses {
		text, err := Text(v.Text)
		if err != nil {
			return nil, err
		}
		v.Text = html.EscapeString(text)
		out[i] = v
	}
	return out, nil
}

// Text returns the text content of an HTML fragment.
func Text(fragment string) (string, error) {
	nodes, err := parseFragment(fragment)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(textContent(n))
	}
	return b.String(), nil
}

// leadingInt parses the run of ASCII digits at the start of s, so bridged
// markers such as "4-5" number the verse by their first verse.
func leadingInt(s string) (int, bool) {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	return n, err == nil
}

func parseFragment(fragment string) ([]*html.Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), ctx)
	if err != nil {
		return nil, &cerrors.ParseError{Format: "HTML", Message: err.Error(), Err: err}
	}
	return nodes, nil
}

// walk visits n and its descendants in document order. Returning false
// from visit skips the node's children.
func walk(n *html.Node, visit func(*html.Node) bool) {
	if !visit(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	var found *html.Node
	walk(n, func(c *html.Node) bool {
		if found != nil {
			return false
		}
		if match(c) {
			found = c
			return false
		}
		return true
	})
	return found
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == "class" {
			for _, f := range strings.Fields(a.Val) {
				if f == class {
					return true
				}
			}
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		return c.Type != html.CommentNode
	})
	return b.String()
}
