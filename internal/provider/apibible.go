package provider

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	cerrors "github.com/FocuswithJustin/JuniperReader/core/errors"
	"github.com/FocuswithJustin/JuniperReader/internal/books"
	"github.com/FocuswithJustin/JuniperReader/internal/normalize"
)

const apiBibleDefaultURL = "https://api.scripture.api.bible"

type apiBible struct {
	opts    Options
	baseURL string
}

func newAPIBible(opts Options) Provider {
	return &apiBible{opts: opts, baseURL: opts.baseURL(APIBible, apiBibleDefaultURL)}
}

func (p *apiBible) Name() string { return APIBible }

func (p *apiBible) header() http.Header {
	h := http.Header{}
	if p.opts.APIBibleKey != "" {
		h.Set("api-key", p.opts.APIBibleKey)
	}
	return h
}

type apiBibleSearchResponse struct {
	Data struct {
		Query  string          `json:"query"`
		Total  int             `json:"total"`
		Verses []apiBibleVerse `json:"verses"`
	} `json:"data"`
}

type apiBibleVerse struct {
	ID        string `json:"id"`
	OrgID     string `json:"orgId"`
	BibleID   string `json:"bibleId"`
	BookID    string `json:"bookId"`
	ChapterID string `json:"chapterId"`
	Reference string `json:"reference"`
	Text      string `json:"text"`
}

type apiBibleChapterResponse struct {
	Data struct {
		ID        string `json:"id"`
		BookID    string `json:"bookId"`
		Number    string `json:"number"`
		Reference string `json:"reference"`
		Content   string `json:"content"`
	} `json:"data"`
}

// FetchSearch queries the search endpoint. Results carry canonical book
// codes and a display reference.
func (p *apiBible) FetchSearch(ctx context.Context, translation, term string) ([]normalize.RawResult, error) {
	q := url.Values{}
	q.Set("query", term)
	q.Set("limit", strconv.Itoa(normalize.MaxSearchRows))
	u := fmt.Sprintf("%s/v1/bibles/%s/search?%s", p.baseURL, url.PathEscape(translation), q.Encode())

	var resp apiBibleSearchResponse
	if err := getJSON(ctx, p.opts.client(), APIBible, "search", u, p.header(), &resp); err != nil {
		return nil, err
	}

	raw := make([]normalize.RawResult, 0, len(resp.Data.Verses))
	for _, v := range resp.Data.Verses {
		ch, vs, err := parseVerseID(v.ID)
		if err != nil {
			return nil, err
		}
		abbr := v.BookID
		if abbr == "" {
			abbr = strings.SplitN(v.ID, ".", 2)[0]
		}
		raw = append(raw, normalize.RawResult{
			BookAbbr:  abbr,
			Chapter:   ch,
			Verse:     vs,
			Text:      v.Text,
			Reference: v.Reference,
		})
	}
	return raw, nil
}

// parseVerseID splits an id such as "JHN.3.16" into chapter and verse.
func parseVerseID(id string) (chapter, verse int, err error) {
	parts := strings.Split(id, ".")
	if len(parts) != 3 {
		return 0, 0, cerrors.NewParse("verse id", APIBible, strconv.Quote(id))
	}
	chapter, err1 := strconv.Atoi(parts[1])
	verse, err2 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil {
		return 0, 0, cerrors.NewParse("verse id", APIBible, strconv.Quote(id))
	}
	return chapter, verse, nil
}

// FetchChapter requests the chapter as HTML with verse numbers and
// regroups it into one paragraph per verse.
func (p *apiBible) FetchChapter(ctx context.Context, translation string, book books.Book, chapter int) (string, error) {
	code := books.StandardAbbreviation(book)
	q := url.Values{}
	q.Set("content-type", "html")
	q.Set("include-notes", "false")
	q.Set("include-titles", "false")
	q.Set("include-verse-numbers", "true")
	u := fmt.Sprintf("%s/v1/bibles/%s/chapters/%s.%d?%s",
		p.baseURL, url.PathEscape(translation), url.PathEscape(code), chapter, q.Encode())

	var resp apiBibleChapterResponse
	if err := getJSON(ctx, p.opts.client(), APIBible, "chapter", u, p.header(), &resp); err != nil {
		return "", err
	}
	return regroupVerses(resp.Data.Content)
}

// regroupVerses walks API.Bible chapter markup, where verses are delimited
// by <span class="v" data-number="N"> markers and may span several
// paragraphs, and emits one verse paragraph per marker. Content before the
// first marker is dropped.
func regroupVerses(content string) (string, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "div"}
	nodes, err := html.ParseFragment(strings.NewReader(content), ctx)
	if err != nil {
		return "", &cerrors.ParseError{Format: "HTML", Source: APIBible, Message: err.Error(), Err: err}
	}

	var (
		out    strings.Builder
		number string
		buf    bytes.Buffer
	)
	flush := func() {
		if number != "" {
			out.WriteString(normalize.VerseParagraph(number, strings.TrimSpace(buf.String())))
		}
		buf.Reset()
	}

	var visit func(n *html.Node) error
	visit = func(n *html.Node) error {
		if n.Type == html.ElementNode && isVerseMarker(n) {
			flush()
			number = markerNumber(n)
			return nil
		}
		if n.Type == html.ElementNode && n.Data == "p" {
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if err := visit(c); err != nil {
					return err
				}
			}
			if number != "" && buf.Len() > 0 {
				buf.WriteByte(' ')
			}
			return nil
		}
		if number == "" {
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if err := visit(c); err != nil {
					return err
				}
			}
			return nil
		}
		return html.Render(&buf, n)
	}

	for _, n := range nodes {
		if err := visit(n); err != nil {
			return "", &cerrors.ParseError{Format: "HTML", Source: APIBible, Message: err.Error(), Err: err}
		}
	}
	flush()
	return out.String(), nil
}

func isVerseMarker(n *html.Node) bool {
	if n.Data != "span" {
		return false
	}
	for _, a := range n.Attr {
		if a.Key == "class" {
			for _, f := range strings.Fields(a.Val) {
				if f == "v" {
					return true
				}
			}
		}
	}
	return false
}

func markerNumber(n *html.Node) string {
	for _, a := range n.Attr {
		if a.Key == "data-number" {
			return strings.TrimSpace(a.Val)
		}
	}
	if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
		return strings.TrimSpace(n.FirstChild.Data)
	}
	return ""
}
