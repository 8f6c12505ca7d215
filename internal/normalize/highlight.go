package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// openTagRegex matches a bare opening tag such as <sup> (no attributes).
var openTagRegex = regexp.MustCompile(`<(\w+)>`)

const (
	highlightOpen  = `<mark class="search-highlight">`
	highlightClose = `</mark>`
)

// StripTagPairs removes every <tag>...</tag> span whose opening tag has no
// attributes, matching each opening tag to the nearest closing tag of the
// same name on the same line. Footnote and cross-reference markers such as
// <sup>1</sup> disappear along with their content. Unpaired tags are kept.
func StripTagPairs(text string) string {
	var b strings.Builder
	rest := text
	for {
		loc := openTagRegex.FindStringSubmatchIndex(rest)
		if loc == nil {
			b.WriteString(rest)
			return b.String()
		}
		name := rest[loc[2]:loc[3]]
		body := rest[loc[1]:]
		end := strings.Index(body, "</"+name+">")
		if end < 0 || strings.ContainsAny(body[:end], "\n\r\u2028\u2029") {
			b.WriteString(rest[:loc[1]])
			rest = body
			continue
		}
		b.WriteString(rest[:loc[0]])
		rest = body[end+len(name)+3:]
	}
}

// Highlight strips tag pairs from text, then wraps every case-insensitive
// occurrence of term in a search-highlight mark. The term is matched
// literally after NFC normalization; text is left as stored. An empty term,
// or one that is not valid UTF-8, only strips.
func Highlight(text, term string) string {
	cleaned := StripTagPairs(text)
	term = norm.NFC.String(term)
	if term == "" {
		return cleaned
	}
	re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(term))
	if err != nil {
		return cleaned
	}
	return re.ReplaceAllStringFunc(cleaned, func(match string) string {
		return highlightOpen + match + highlightClose
	})
}

// HighlightAll returns a copy of results with every Text highlighted.
func HighlightAll(results []SearchResult, term string) []SearchResult {
	out := make([]SearchResult, len(results))
	for i, r := range results {
		if r.Reference == "" {
			r.Reference = Reference(r.BookAbbr, r.Chapter, r.Verse)
		}
		r.Text = Highlight(r.Text, term)
		out[i] = r
	}
	return out
}
