package normalize

import (
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	cerrors "github.com/FocuswithJustin/JuniperReader/core/errors"
)

// Content types a provider can return for a chapter.
const (
	ContentHTML = "html"
	ContentJSON = "json"
)

// Transform is a regular-expression replacement applied to provider text.
// Replace may refer to capture groups as $1.
type Transform struct {
	Find    string `yaml:"find" json:"find"`
	Replace string `yaml:"replace" json:"replace"`

	re *regexp.Regexp
}

// TransformConfig describes how a provider's chapter content is turned
// into the verse-paragraph fragment that ChapterFromHTML understands.
type TransformConfig struct {
	Type       string      `yaml:"type" json:"type"`
	VerseField string      `yaml:"verse_field" json:"verse_field"`
	TextField  string      `yaml:"text_field" json:"text_field"`
	Transforms []Transform `yaml:"transforms" json:"transforms"`
}

// Compile validates the config and compiles its patterns. It must be
// called before the config is used.
func (c *TransformConfig) Compile() error {
	switch c.Type {
	case "", ContentHTML:
	case ContentJSON:
		if c.VerseField == "" || c.TextField == "" {
			return cerrors.NewValidation("transform", "json content needs verse_field and text_field")
		}
	default:
		return cerrors.NewValidation("transform", "unknown content type "+strconv.Quote(c.Type))
	}
	for i := range c.Transforms {
		re, err := regexp.Compile(c.Transforms[i].Find)
		if err != nil {
			return &cerrors.ValidationError{Field: "transform", Message: fmt.Sprintf("pattern %d: %v", i, err), Err: err}
		}
		c.Transforms[i].re = re
	}
	return nil
}

func (c *TransformConfig) apply(s string) string {
	for _, t := range c.Transforms {
		if t.re == nil {
			continue
		}
		s = t.re.ReplaceAllString(s, t.Replace)
	}
	return s
}

// ApplyContentTransforms runs the configured replacements over an HTML
// chapter. Other content types are returned unchanged.
func ApplyContentTransforms(content string, c *TransformConfig) string {
	if c == nil || (c.Type != "" && c.Type != ContentHTML) {
		return content
	}
	return c.apply(content)
}

// FormatJSONArray renders a JSON array of verse objects as verse
// paragraphs. Text values pass through the configured transforms and are
// inserted as markup, not escaped.
func FormatJSONArray(data []byte, c *TransformConfig) (string, error) {
	var verses []map[string]any
	if err := json.Unmarshal(data, &verses); err != nil {
		return "", &cerrors.ParseError{Format: "JSON", Message: err.Error(), Err: err}
	}

	var b strings.Builder
	for _, v := range verses {
		num := fieldString(v[c.VerseField])
		text := c.apply(fieldString(v[c.TextField]))
		b.WriteString(VerseParagraph(num, text))
	}
	return b.String(), nil
}

// VerseParagraph renders one verse in the fragment shape ChapterFromHTML
// parses. number is escaped; text is trusted markup.
func VerseParagraph(number, text string) string {
	return `<p class="verse"><span class="verse-number">` + html.EscapeString(number) + `</span>&nbsp;` + text + `</p>`
}

func fieldString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
