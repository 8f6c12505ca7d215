package reader

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	cerrors "github.com/FocuswithJustin/JuniperReader/core/errors"
	"github.com/FocuswithJustin/JuniperReader/internal/config"
	"github.com/FocuswithJustin/JuniperReader/internal/logging"
	"github.com/FocuswithJustin/JuniperReader/internal/normalize"
)

// MinTermLength is the shortest search term accepted.
const MinTermLength = 2

// Term validation failures. Their messages are shown to the reader as is.
var (
	ErrEmptyTerm    = cerrors.NewValidation("term", "Please enter a search term")
	ErrTermTooShort = cerrors.NewValidation("term", "Search term must be at least 2 characters")
	ErrInvalidTerm  = cerrors.NewValidation("term", "Search term contains invalid characters")
)

// SearchView is the outcome of a search, ready for rendering.
type SearchView struct {
	Term    string                   `json:"term"`
	Version string                   `json:"version"`
	Results []normalize.SearchResult `json:"results"`
	// Dropped counts provider results left out because their book could
	// not be resolved. It is only filled when drops are reported.
	Dropped int `json:"dropped,omitempty"`
}

// Count returns the number of results.
func (v *SearchView) Count() int {
	return len(v.Results)
}

// ValidateTerm trims term and checks it is long enough to search for.
func ValidateTerm(term string) (string, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return "", ErrEmptyTerm
	}
	if !utf8.ValidString(term) {
		return "", ErrInvalidTerm
	}
	if utf8.RuneCountInString(term) < MinTermLength {
		return "", ErrTermTooShort
	}
	return term, nil
}

// ExecuteSearch searches one version and returns highlighted results. The
// term is validated before anything is fetched. An empty result is
// reported as a wrapped errors.ErrEmptyResult.
func (r *Reader) ExecuteSearch(ctx context.Context, term, version string) (*SearchView, error) {
	term, err := ValidateTerm(term)
	if err != nil {
		return nil, err
	}
	v, err := r.resolveVersion(version)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	results, err := r.search(ctx, v, term)
	var mapErr *cerrors.MappingError
	if err != nil && !errors.As(err, &mapErr) {
		logging.WarnContext(ctx, "search_failed",
			"version", v.Abbreviation, "term", term, "error", err.Error())
		return nil, err
	}

	view := &SearchView{
		Term:    term,
		Version: v.Abbreviation,
		Results: normalize.HighlightAll(results, term),
	}
	if mapErr != nil {
		view.Dropped = len(mapErr.Dropped)
	}
	logging.SearchExecuted(ctx, v.Abbreviation, string(v.Source), len(view.Results), time.Since(start),
		"term", term)
	return view, nil
}

func (r *Reader) search(ctx context.Context, v config.Version, term string) ([]normalize.SearchResult, error) {
	lookup, err := r.lookupFor(ctx, v)
	if err != nil {
		return nil, err
	}
	n := &normalize.SearchNormalizer{Lookup: lookup, Policy: r.policy}

	var in normalize.SearchInput
	switch v.Source {
	case normalize.SourceDB:
		rs, err := r.store.Search(ctx, tables(v), term)
		if err != nil {
			return nil, err
		}
		in.Rows = rs
	case normalize.SourceAPI:
		p, err := r.provider(v)
		if err != nil {
			return nil, err
		}
		raw, err := p.FetchSearch(ctx, v.Translation(), term)
		if err != nil {
			return nil, err
		}
		in.Raw = raw
	default:
		return nil, cerrors.NewUnsupported("source", string(v.Source))
	}
	return n.Normalize(ctx, in, v.Descriptor())
}

func (r *Reader) resolveVersion(abbr string) (config.Version, error) {
	if abbr == "" {
		return r.catalog.Default(), nil
	}
	return r.catalog.Get(abbr)
}
