// Package reader runs the reader's user-facing flows: searching a
// version, opening a chapter and comparing two versions side by side. It
// picks the source for each version, hands raw output to the normalizers
// and returns view models ready for rendering.
package reader

import (
	"context"
	"time"

	cerrors "github.com/FocuswithJustin/JuniperReader/core/errors"
	"github.com/FocuswithJustin/JuniperReader/internal/books"
	"github.com/FocuswithJustin/JuniperReader/internal/cache"
	"github.com/FocuswithJustin/JuniperReader/internal/config"
	"github.com/FocuswithJustin/JuniperReader/internal/normalize"
	"github.com/FocuswithJustin/JuniperReader/internal/provider"
	"github.com/FocuswithJustin/JuniperReader/internal/rows"
	"github.com/FocuswithJustin/JuniperReader/internal/store"
)

// VerseStore is the local database as the reader uses it.
type VerseStore interface {
	Search(ctx context.Context, t store.Tables, term string) (rows.Slice, error)
	Chapter(ctx context.Context, t store.Tables, bookID, chapter int) (rows.Slice, error)
	LoadBooks(ctx context.Context, t store.Tables) ([]books.Book, error)
}

// Providers resolves remote providers by name.
type Providers interface {
	Get(name string) (provider.Provider, error)
}

// NoteChecker reports whether the reader has a note on a verse. Notes are
// stored elsewhere; the reader only marks verses that have one.
type NoteChecker interface {
	HasNote(version string, bookID, chapter, verse int) bool
}

type noNotes struct{}

func (noNotes) HasNote(string, int, int, int) bool { return false }

// Options configure a Reader.
type Options struct {
	// DropPolicy decides whether unresolved provider results are reported.
	DropPolicy normalize.DropPolicy
	// BookCacheTTL bounds how long database book lists are kept. Zero
	// reloads them on every request.
	BookCacheTTL time.Duration
	// Notes marks verses with notes. Nil means no verse has one.
	Notes NoteChecker
}

// Reader serves the configured versions.
type Reader struct {
	catalog   *config.Catalog
	store     VerseStore
	providers Providers
	policy    normalize.DropPolicy
	notes     NoteChecker

	bookLists *cache.TTLCache[string, *books.Lookup]
	canon     *books.Lookup
}

// New returns a Reader. store may be nil when no version reads from the
// local database.
func New(catalog *config.Catalog, store VerseStore, providers Providers, opts Options) *Reader {
	notes := opts.Notes
	if notes == nil {
		notes = noNotes{}
	}
	return &Reader{
		catalog:   catalog,
		store:     store,
		providers: providers,
		policy:    opts.DropPolicy,
		notes:     notes,
		bookLists: cache.New[string, *books.Lookup](opts.BookCacheTTL),
		canon:     books.MustLookup(books.Protestant()),
	}
}

// cachePruner is implemented by provider sets that cache fetched content.
type cachePruner interface {
	Prune() int
}

// PruneCaches drops expired book lists and, when the providers cache
// chapters, expired chapters. It returns how many entries were removed.
func (r *Reader) PruneCaches() int {
	removed := r.bookLists.Prune()
	if p, ok := r.providers.(cachePruner); ok {
		removed += p.Prune()
	}
	return removed
}

// Catalog returns the configured versions.
func (r *Reader) Catalog() *config.Catalog {
	return r.catalog
}

// Books returns the book list of a version. Database versions read their
// own books table; remote versions use the 66-book canon.
func (r *Reader) Books(ctx context.Context, abbr string) (*books.Lookup, error) {
	v, err := r.catalog.Get(abbr)
	if err != nil {
		return nil, err
	}
	return r.lookupFor(ctx, v)
}

func (r *Reader) lookupFor(ctx context.Context, v config.Version) (*books.Lookup, error) {
	if v.Source != normalize.SourceDB {
		return r.canon, nil
	}
	if r.store == nil {
		return nil, cerrors.NewUnsupported("source", "no database configured for "+v.Abbreviation)
	}
	return r.bookLists.GetOrLoad(v.Abbreviation, func() (*books.Lookup, error) {
		list, err := r.store.LoadBooks(ctx, tables(v))
		if err != nil {
			return nil, err
		}
		lk, err := books.NewLookup(list)
		if err != nil {
			return nil, &cerrors.ValidationError{Field: v.TableBooks, Message: err.Error(), Err: err}
		}
		return lk, nil
	})
}

func (r *Reader) provider(v config.Version) (provider.Provider, error) {
	if r.providers == nil {
		return nil, cerrors.NewUnsupported("source", "no providers configured for "+v.Abbreviation)
	}
	return r.providers.Get(v.Provider)
}

func tables(v config.Version) store.Tables {
	return store.Tables{Verses: v.TableVerses, Books: v.TableBooks}
}
