package reader

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/FocuswithJustin/JuniperReader/internal/books"
	"github.com/FocuswithJustin/JuniperReader/internal/config"
	"github.com/FocuswithJustin/JuniperReader/internal/normalize"
)

// InterlinearView pairs one chapter across two versions.
type InterlinearView struct {
	VersionA string                `json:"versionA"`
	VersionB string                `json:"versionB"`
	Book     books.Book            `json:"book"`
	Chapter  int                   `json:"chapter"`
	Header   string                `json:"header"`
	Pairs    []normalize.VersePair `json:"pairs"`
}

// Interlinear fetches both versions of a chapter concurrently and aligns
// them by verse number. Remote sides are reduced to plain text; database
// text is kept as is. The book reference is resolved in each version's
// own book list.
func (r *Reader) Interlinear(ctx context.Context, versionA, versionB, bookRef string, chapter int) (*InterlinearView, error) {
	va, err := r.catalog.Get(versionA)
	if err != nil {
		return nil, err
	}
	vb, err := r.catalog.Get(versionB)
	if err != nil {
		return nil, err
	}

	var (
		sideA, sideB []normalize.Verse
		bookA        books.Book
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bookA, sideA, err = r.interlinearSide(gctx, va, bookRef, chapter)
		return err
	})
	g.Go(func() error {
		var err error
		_, sideB, err = r.interlinearSide(gctx, vb, bookRef, chapter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &InterlinearView{
		VersionA: va.Abbreviation,
		VersionB: vb.Abbreviation,
		Book:     bookA,
		Chapter:  chapter,
		Header:   Header(bookA, chapter),
		Pairs: normalize.Pair(sideA, sideB,
			normalize.Placeholder(va.Abbreviation), normalize.Placeholder(vb.Abbreviation)),
	}, nil
}

func (r *Reader) interlinearSide(ctx context.Context, v config.Version, bookRef string, chapter int) (books.Book, []normalize.Verse, error) {
	lookup, err := r.lookupFor(ctx, v)
	if err != nil {
		return books.Book{}, nil, err
	}
	book, err := resolveBook(lookup, bookRef, chapter)
	if err != nil {
		return books.Book{}, nil, err
	}
	verses, err := r.chapterVerses(ctx, v, book, chapter)
	if err != nil {
		return books.Book{}, nil, err
	}
	if v.Source == normalize.SourceAPI {
		verses, err = normalize.PlainText(verses)
		if err != nil {
			return books.Book{}, nil, err
		}
	}
	return book, verses, nil
}
