// Package render turns reader view models into HTML or JSON.
package render

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strconv"

	"github.com/FocuswithJustin/JuniperReader/internal/normalize"
	"github.com/FocuswithJustin/JuniperReader/internal/reader"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Renderer writes view models in one output format.
type Renderer interface {
	ContentType() string
	Search(w io.Writer, v *reader.SearchView) error
	Chapter(w io.Writer, v *reader.ChapterView) error
	Interlinear(w io.Writer, v *reader.InterlinearView) error
	Message(w io.Writer, msg string) error
}

// HTML renders with the embedded templates. Fragments ("search",
// "chapter", "interlinear") omit the page chrome; full pages include it.
type HTML struct {
	tmpl     *template.Template
	fragment bool
}

// NewHTML parses the embedded templates. With fragment set, output is the
// bare content for insertion into an existing page.
func NewHTML(fragment bool) (*HTML, error) {
	t, err := template.New("").Funcs(templateFuncs()).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	return &HTML{tmpl: t, fragment: fragment}, nil
}

// MustHTML is NewHTML that panics on error.
func MustHTML(fragment bool) *HTML {
	h, err := NewHTML(fragment)
	if err != nil {
		panic(err)
	}
	return h
}

func (h *HTML) ContentType() string { return "text/html; charset=utf-8" }

func (h *HTML) name(base string) string {
	if h.fragment {
		return base
	}
	return base + "Page"
}

func (h *HTML) Search(w io.Writer, v *reader.SearchView) error {
	return h.tmpl.ExecuteTemplate(w, h.name("search"), v)
}

func (h *HTML) Chapter(w io.Writer, v *reader.ChapterView) error {
	return h.tmpl.ExecuteTemplate(w, h.name("chapter"), v)
}

func (h *HTML) Interlinear(w io.Writer, v *reader.InterlinearView) error {
	return h.tmpl.ExecuteTemplate(w, h.name("interlinear"), v)
}

func (h *HTML) Message(w io.Writer, msg string) error {
	if h.fragment {
		return h.tmpl.ExecuteTemplate(w, "message", msg)
	}
	if err := h.tmpl.ExecuteTemplate(w, "header", pageData{Title: msg}); err != nil {
		return err
	}
	if err := h.tmpl.ExecuteTemplate(w, "message", msg); err != nil {
		return err
	}
	return h.tmpl.ExecuteTemplate(w, "footer", nil)
}

type pageData struct {
	Title string
}

type resultData struct {
	Version string
	Result  normalize.SearchResult
}

type sideData struct {
	Text    string
	Missing bool
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		// Verse text is normalized provider or database markup and is
		// inserted unescaped.
		"markup": func(s string) template.HTML { return template.HTML(s) },
		"page":   func(title string) pageData { return pageData{Title: title} },
		"result": func(version string, r normalize.SearchResult) resultData {
			return resultData{Version: version, Result: r}
		},
		"side": func(text string, missing bool) sideData {
			return sideData{Text: text, Missing: missing}
		},
		"readURL": ReadURL,
	}
}

// ReadURL builds the reading page path for a chapter.
func ReadURL(version, book string, chapter int) string {
	return "/read/" + url.PathEscape(version) + "/" + url.PathEscape(book) + "/" + strconv.Itoa(chapter)
}

// JSON encodes view models as JSON.
type JSON struct {
	Indent bool
}

func (j JSON) ContentType() string { return "application/json" }

func (j JSON) encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	if j.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func (j JSON) Search(w io.Writer, v *reader.SearchView) error { return j.encode(w, v) }

func (j JSON) Chapter(w io.Writer, v *reader.ChapterView) error { return j.encode(w, v) }

func (j JSON) Interlinear(w io.Writer, v *reader.InterlinearView) error { return j.encode(w, v) }

func (j JSON) Message(w io.Writer, msg string) error {
	return j.encode(w, map[string]string{"error": msg})
}

// Text writes plain text for terminals. Markup is reduced to its text.
type Text struct{}

func (Text) ContentType() string { return "text/plain; charset=utf-8" }

func (Text) Search(w io.Writer, v *reader.SearchView) error {
	for _, r := range v.Results {
		text, err := normalize.Text(r.Text)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s  %s\n", r.Reference, text); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\n%d results in %s\n", v.Count(), v.Version)
	return err
}

func (Text) Chapter(w io.Writer, v *reader.ChapterView) error {
	if _, err := fmt.Fprintf(w, "%s (%s)\n\n", v.Header, v.Version); err != nil {
		return err
	}
	for _, verse := range v.Verses {
		text, err := normalize.Text(verse.Text)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%3d  %s\n", verse.VerseNumber, text); err != nil {
			return err
		}
	}
	return nil
}

func (Text) Interlinear(w io.Writer, v *reader.InterlinearView) error {
	if _, err := fmt.Fprintf(w, "%s (%s / %s)\n", v.Header, v.VersionA, v.VersionB); err != nil {
		return err
	}
	for _, p := range v.Pairs {
		a, err := normalize.Text(p.TextA)
		if err != nil {
			return err
		}
		b, err := normalize.Text(p.TextB)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "\n%3d  %s: %s\n     %s: %s\n", p.VerseNumber, v.VersionA, a, v.VersionB, b); err != nil {
			return err
		}
	}
	return nil
}

func (Text) Message(w io.Writer, msg string) error {
	_, err := fmt.Fprintln(w, msg)
	return err
}
