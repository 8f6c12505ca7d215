package normalize

import (
	"strconv"

	cerrors "github.com/FocuswithJustin/JuniperReader/core/errors"
	"github.com/FocuswithJustin/JuniperReader/internal/books"
)

// Mapper converts one provider's raw search results into SearchResults.
// Results it cannot resolve are returned as dropped rather than failing
// the whole batch.
type Mapper interface {
	Map(raw []RawResult, lookup BookFinder) (results []SearchResult, dropped []*cerrors.NotFoundError)
}

// BookIDMapper resolves numeric book ids through the lookup.
type BookIDMapper struct{}

// Map implements Mapper.
func (BookIDMapper) Map(raw []RawResult, lookup BookFinder) ([]SearchResult, []*cerrors.NotFoundError) {
	results := make([]SearchResult, 0, len(raw))
	var dropped []*cerrors.NotFoundError
	for _, r := range raw {
		book, ok := lookup.FindByID(r.BookID)
		if !ok {
			dropped = append(dropped, cerrors.NewNotFound("book", strconv.Itoa(r.BookID)))
			continue
		}
		abbr := books.StandardAbbreviation(book)
		results = append(results, SearchResult{
			BookAbbr:  abbr,
			Chapter:   r.Chapter,
			Verse:     r.Verse,
			Reference: Reference(abbr, r.Chapter, r.Verse),
			Text:      r.Text,
		})
	}
	return results, dropped
}

// PassthroughMapper trusts results already in canonical form. A missing
// reference is rebuilt from the parts.
type PassthroughMapper struct{}

// Map implements Mapper.
func (PassthroughMapper) Map(raw []RawResult, _ BookFinder) ([]SearchResult, []*cerrors.NotFoundError) {
	results := make([]SearchResult, 0, len(raw))
	for _, r := range raw {
		ref := r.Reference
		if ref == "" {
			ref = Reference(r.BookAbbr, r.Chapter, r.Verse)
		}
		results = append(results, SearchResult{
			BookAbbr:  r.BookAbbr,
			Chapter:   r.Chapter,
			Verse:     r.Verse,
			Text:      r.Text,
			Reference: ref,
		})
	}
	return results, nil
}

// mappers is keyed by provider name. Providers not listed pass through.
var mappers = map[string]Mapper{
	"bolls.life":  BookIDMapper{},
	"API.Bible":   PassthroughMapper{},
	"helloao.org": PassthroughMapper{},
}

// MapperFor returns the mapper registered for provider.
func MapperFor(provider string) Mapper {
	if m, ok := mappers[provider]; ok {
		return m
	}
	return PassthroughMapper{}
}
