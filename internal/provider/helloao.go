package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/url"
	"strconv"
	"strings"

	cerrors "github.com/FocuswithJustin/JuniperReader/core/errors"
	"github.com/FocuswithJustin/JuniperReader/internal/books"
	"github.com/FocuswithJustin/JuniperReader/internal/normalize"
)

const helloAODefaultURL = "https://bible.helloao.org"

type helloAO struct {
	opts    Options
	baseURL string
}

func newHelloAO(opts Options) Provider {
	return &helloAO{opts: opts, baseURL: opts.baseURL(HelloAO, helloAODefaultURL)}
}

func (p *helloAO) Name() string { return HelloAO }

type helloAOChapterResponse struct {
	Chapter struct {
		Number  int              `json:"number"`
		Content []helloAOContent `json:"content"`
	} `json:"chapter"`
}

type helloAOContent struct {
	Type    string            `json:"type"`
	Number  int               `json:"number"`
	Content []json.RawMessage `json:"content"`
}

type helloAOInline struct {
	Text         string `json:"text"`
	WordsOfJesus bool   `json:"wordsOfJesus"`
	LineBreak    bool   `json:"lineBreak"`
	NoteID       *int   `json:"noteId"`
	Poem         int    `json:"poem"`
}

// FetchSearch is not offered by helloao.org.
func (p *helloAO) FetchSearch(ctx context.Context, translation, term string) ([]normalize.RawResult, error) {
	return nil, cerrors.NewUnsupported("search", HelloAO+" has no search endpoint")
}

// FetchChapter converts the structured chapter JSON into verse paragraphs.
// Headings and footnote references are dropped; words of Jesus are kept as
// <span class="wj">.
func (p *helloAO) FetchChapter(ctx context.Context, translation string, book books.Book, chapter int) (string, error) {
	code := books.StandardAbbreviation(book)
	u := fmt.Sprintf("%s/api/%s/%s/%d.json", p.baseURL, url.PathEscape(translation), url.PathEscape(code), chapter)

	var resp helloAOChapterResponse
	if err := getJSON(ctx, p.opts.client(), HelloAO, "chapter", u, nil, &resp); err != nil {
		return "", err
	}

	var b strings.Builder
	for _, c := range resp.Chapter.Content {
		if c.Type != "verse" {
			continue
		}
		text, err := helloAOVerseText(c.Content)
		if err != nil {
			return "", err
		}
		b.WriteString(normalize.VerseParagraph(strconv.Itoa(c.Number), text))
	}
	return b.String(), nil
}

func helloAOVerseText(parts []json.RawMessage) (string, error) {
	var out []string
	for _, raw := range parts {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			out = append(out, html.EscapeString(s))
			continue
		}
		var in helloAOInline
		if err := json.Unmarshal(raw, &in); err != nil {
			return "", &cerrors.ParseError{Format: "JSON", Source: HelloAO, Message: err.Error(), Err: err}
		}
		switch {
		case in.LineBreak:
			out = append(out, "<br>")
		case in.NoteID != nil:
		case in.WordsOfJesus:
			out = append(out, `<span class="wj">`+html.EscapeString(in.Text)+`</span>`)
		case in.Text != "":
			out = append(out, html.EscapeString(in.Text))
		}
	}
	return strings.Join(out, " "), nil
}
