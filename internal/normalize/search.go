package normalize

import (
	"context"
	"strconv"

	cerrors "github.com/FocuswithJustin/JuniperReader/core/errors"
	"github.com/FocuswithJustin/JuniperReader/internal/books"
	"github.com/FocuswithJustin/JuniperReader/internal/logging"
	"github.com/FocuswithJustin/JuniperReader/internal/rows"
)

// MaxSearchRows caps how many local rows a search normalizes.
const MaxSearchRows = 100

// Source identifies where a version's content comes from.
type Source string

const (
	SourceDB  Source = "db"
	SourceAPI Source = "api"
)

// Descriptor tells a normalizer which path to take for a version. It is
// supplied by the caller and never modified.
type Descriptor struct {
	Source   Source
	Provider string
}

// BookFinder is the read-only book lookup consulted during normalization.
type BookFinder interface {
	FindByAbbreviation(abbr string) (books.Book, bool)
	FindByID(id int) (books.Book, bool)
}

// SearchResult is one normalized search hit.
type SearchResult struct {
	BookAbbr  string `json:"bookAbbr"`
	Chapter   int    `json:"chapter"`
	Verse     int    `json:"verse"`
	Text      string `json:"text"`
	Reference string `json:"reference"`
}

// RawResult is a provider search hit before normalization. Providers that
// identify books numerically fill BookID; the others fill BookAbbr and
// usually Reference.
type RawResult struct {
	BookID    int
	BookAbbr  string
	Chapter   int
	Verse     int
	Text      string
	Reference string
}

// SearchInput carries whichever raw shape the source produced.
type SearchInput struct {
	Rows rows.Cursor
	Raw  []RawResult
}

// DropPolicy controls what happens to provider results whose book cannot
// be resolved.
type DropPolicy int

const (
	// DropSilently filters unresolved results and only logs them.
	DropSilently DropPolicy = iota
	// DropReport filters them too, but returns a *errors.MappingError
	// alongside the remaining results.
	DropReport
)

// ParseDropPolicy converts "silent" or "report" into a DropPolicy.
func ParseDropPolicy(s string) (DropPolicy, error) {
	switch s {
	case "", "silent":
		return DropSilently, nil
	case "report":
		return DropReport, nil
	}
	return DropSilently, cerrors.NewValidation("drop-policy", "must be \"silent\" or \"report\", got "+strconv.Quote(s))
}

// SearchNormalizer turns raw search output into SearchResults.
type SearchNormalizer struct {
	Lookup BookFinder
	Policy DropPolicy
}

// Reference formats the display reference "ABBR chapter:verse".
func Reference(abbr string, chapter, verse int) string {
	return abbr + " " + strconv.Itoa(chapter) + ":" + strconv.Itoa(verse)
}

// Normalize dispatches on d.Source. It returns errors.ErrEmptyResult
// (wrapped) when nothing survives normalization. Under DropReport a
// *errors.MappingError may accompany non-empty results.
func (n *SearchNormalizer) Normalize(ctx context.Context, in SearchInput, d Descriptor) ([]SearchResult, error) {
	var (
		results []SearchResult
		dropErr error
	)
	switch d.Source {
	case SourceDB:
		results = n.FromRows(in.Rows)
	case SourceAPI:
		results, dropErr = n.FromProvider(ctx, d.Provider, in.Raw)
	default:
		return nil, cerrors.NewUnsupported("source", string(d.Source))
	}

	if len(results) == 0 {
		if dropErr != nil {
			return nil, cerrors.Wrap(cerrors.ErrEmptyResult, dropErr.Error())
		}
		return nil, cerrors.Wrapf(cerrors.ErrEmptyResult, "%s search", d.Source)
	}
	return results, dropErr
}

// FromRows normalizes up to MaxSearchRows local rows. A row whose
// abbreviation is unknown keeps its raw abbreviation.
func (n *SearchNormalizer) FromRows(c rows.Cursor) []SearchResult {
	var results []SearchResult
	for row := range rows.Limit(rows.All(c), MaxSearchRows) {
		abbr := row.Abbreviation
		if book, ok := n.Lookup.FindByAbbreviation(row.Abbreviation); ok {
			if code := books.Canonical(book.ID); code != "" {
				abbr = code
			}
		}
		results = append(results, SearchResult{
			BookAbbr:  abbr,
			Chapter:   row.Chapter,
			Verse:     row.Verse,
			Text:      row.Text,
			Reference: Reference(abbr, row.Chapter, row.Verse),
		})
	}
	return results
}

// FromProvider applies the provider's result mapper.
func (n *SearchNormalizer) FromProvider(ctx context.Context, provider string, raw []RawResult) ([]SearchResult, error) {
	results, dropped := MapperFor(provider).Map(raw, n.Lookup)
	if len(dropped) == 0 {
		return results, nil
	}
	for _, d := range dropped {
		logging.MappingDropped(ctx, provider, d.ID)
	}
	if n.Policy == DropReport {
		return results, &cerrors.MappingError{Dropped: dropped}
	}
	return results, nil
}
