package reader

import (
	"context"
	"fmt"
	"strconv"

	cerrors "github.com/FocuswithJustin/JuniperReader/core/errors"
	"github.com/FocuswithJustin/JuniperReader/internal/books"
	"github.com/FocuswithJustin/JuniperReader/internal/config"
	"github.com/FocuswithJustin/JuniperReader/internal/normalize"
)

// VerseView is a verse plus what the page decorates it with.
type VerseView struct {
	normalize.Verse
	NoteIcon bool `json:"noteIcon,omitempty"`
}

// ChapterView is one chapter of one version.
type ChapterView struct {
	Version string      `json:"version"`
	Book    books.Book  `json:"book"`
	Chapter int         `json:"chapter"`
	Header  string      `json:"header"`
	Verses  []VerseView `json:"verses"`
	Prev    *Location   `json:"prev,omitempty"`
	Next    *Location   `json:"next,omitempty"`
}

// Location points at a chapter for navigation links.
type Location struct {
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
}

// Header formats the chapter heading, e.g. "John 3".
func Header(b books.Book, chapter int) string {
	name := b.Name
	if name == "" {
		name = b.Abbreviation
	}
	return name + " " + strconv.Itoa(chapter)
}

// Chapter loads one chapter of a version. bookRef may be the version's
// own abbreviation, a numeric book id or a canonical 3-letter code.
func (r *Reader) Chapter(ctx context.Context, version, bookRef string, chapter int) (*ChapterView, error) {
	v, err := r.resolveVersion(version)
	if err != nil {
		return nil, err
	}
	lookup, err := r.lookupFor(ctx, v)
	if err != nil {
		return nil, err
	}
	book, err := resolveBook(lookup, bookRef, chapter)
	if err != nil {
		return nil, err
	}

	verses, err := r.chapterVerses(ctx, v, book, chapter)
	if err != nil {
		return nil, err
	}

	view := &ChapterView{
		Version: v.Abbreviation,
		Book:    book,
		Chapter: chapter,
		Header:  Header(book, chapter),
		Verses:  make([]VerseView, 0, len(verses)),
	}
	for _, vs := range verses {
		view.Verses = append(view.Verses, VerseView{
			Verse:    vs,
			NoteIcon: r.notes.HasNote(v.Abbreviation, vs.BookID, vs.Chapter, vs.VerseNumber),
		})
	}
	view.Prev, view.Next = neighbours(lookup, book, chapter)
	return view, nil
}

// chapterVerses fetches and normalizes a chapter from the version's source.
func (r *Reader) chapterVerses(ctx context.Context, v config.Version, book books.Book, chapter int) ([]normalize.Verse, error) {
	switch v.Source {
	case normalize.SourceDB:
		rs, err := r.store.Chapter(ctx, tables(v), book.ID, chapter)
		if err != nil {
			return nil, err
		}
		return normalize.ChapterFromRows(rs, book.ID, chapter), nil
	case normalize.SourceAPI:
		p, err := r.provider(v)
		if err != nil {
			return nil, err
		}
		frag, err := p.FetchChapter(ctx, v.Translation(), book, chapter)
		if err != nil {
			return nil, err
		}
		frag = normalize.ApplyContentTransforms(frag, v.Transform)
		return normalize.ChapterFromHTML(frag, book.ID, chapter)
	default:
		return nil, cerrors.NewUnsupported("source", string(v.Source))
	}
}

func resolveBook(lookup *books.Lookup, ref string, chapter int) (books.Book, error) {
	book, ok := lookup.Resolve(ref)
	if !ok {
		return books.Book{}, cerrors.NewNotFound("book", ref)
	}
	if chapter < 1 || (book.Chapters > 0 && chapter > book.Chapters) {
		return books.Book{}, cerrors.NewNotFound("chapter", fmt.Sprintf("%s %d", ref, chapter))
	}
	return book, nil
}

// neighbours returns the previous and next chapters in the version's book
// order. Books without a chapter count only link within what is known.
func neighbours(lookup *books.Lookup, book books.Book, chapter int) (prev, next *Location) {
	list := lookup.Books()
	idx := -1
	for i, b := range list {
		if b.ID == book.ID {
			idx = i
			break
		}
	}

	switch {
	case chapter > 1:
		prev = &Location{Book: book.Abbreviation, Chapter: chapter - 1}
	case idx > 0 && list[idx-1].Chapters > 0:
		prev = &Location{Book: list[idx-1].Abbreviation, Chapter: list[idx-1].Chapters}
	}

	switch {
	case book.Chapters == 0 || chapter < book.Chapters:
		next = &Location{Book: book.Abbreviation, Chapter: chapter + 1}
	case idx >= 0 && idx+1 < len(list):
		next = &Location{Book: list[idx+1].Abbreviation, Chapter: 1}
	}
	return prev, next
}
