package provider

import (
	"context"
	"fmt"
	"net/url"
	"regexp"

	"github.com/FocuswithJustin/JuniperReader/internal/books"
	"github.com/FocuswithJustin/JuniperReader/internal/normalize"
)

const bollsDefaultURL = "https://bolls.life"

// markTagRegex matches the <mark> wrappers bolls.life puts around search
// hits. Only the tags are removed; the highlighted word stays.
var markTagRegex = regexp.MustCompile(`</?mark>`)

// bollsChapterFormat turns the get-text verse array into paragraphs,
// dropping inline Strong's numbers and footnote markup.
var bollsChapterFormat = func() *normalize.TransformConfig {
	c := &normalize.TransformConfig{
		Type:       normalize.ContentJSON,
		VerseField: "verse",
		TextField:  "text",
		Transforms: []normalize.Transform{
			{Find: `<S>\d+</S>`, Replace: ""},
			{Find: `<sup>[^<]*</sup>`, Replace: ""},
			{Find: `<br/?>`, Replace: " "},
		},
	}
	if err := c.Compile(); err != nil {
		panic(err)
	}
	return c
}()

type bollsLife struct {
	opts    Options
	baseURL string
}

func newBollsLife(opts Options) Provider {
	return &bollsLife{opts: opts, baseURL: opts.baseURL(BollsLife, bollsDefaultURL)}
}

func (p *bollsLife) Name() string { return BollsLife }

type bollsSearchResponse struct {
	ExactMatches int              `json:"exact_matches"`
	Total        int              `json:"total"`
	Results      []bollsSearchHit `json:"results"`
}

type bollsSearchHit struct {
	PK          int    `json:"pk"`
	Translation string `json:"translation"`
	Book        int    `json:"book"`
	Chapter     int    `json:"chapter"`
	Verse       int    `json:"verse"`
	Text        string `json:"text"`
}

// FetchSearch returns hits with numeric book ids; they are resolved to
// abbreviations by the bolls.life result mapper.
func (p *bollsLife) FetchSearch(ctx context.Context, translation, term string) ([]normalize.RawResult, error) {
	q := url.Values{}
	q.Set("search", term)
	q.Set("match_case", "false")
	q.Set("match_whole", "false")
	q.Set("limit", fmt.Sprint(normalize.MaxSearchRows))
	u := fmt.Sprintf("%s/v2/find/%s?%s", p.baseURL, url.PathEscape(translation), q.Encode())

	var resp bollsSearchResponse
	if err := getJSON(ctx, p.opts.client(), BollsLife, "search", u, nil, &resp); err != nil {
		return nil, err
	}

	raw := make([]normalize.RawResult, 0, len(resp.Results))
	for _, h := range resp.Results {
		raw = append(raw, normalize.RawResult{
			BookID:  h.Book,
			Chapter: h.Chapter,
			Verse:   h.Verse,
			Text:    markTagRegex.ReplaceAllString(h.Text, ""),
		})
	}
	return raw, nil
}

// FetchChapter fetches the verse array for a chapter and renders it as
// verse paragraphs.
func (p *bollsLife) FetchChapter(ctx context.Context, translation string, book books.Book, chapter int) (string, error) {
	u := fmt.Sprintf("%s/get-text/%s/%d/%d/", p.baseURL, url.PathEscape(translation), book.ID, chapter)

	var body []byte
	if err := getJSON(ctx, p.opts.client(), BollsLife, "chapter", u, nil, &body); err != nil {
		return "", err
	}
	return normalize.FormatJSONArray(body, bollsChapterFormat)
}
