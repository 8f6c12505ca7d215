package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	cerrors "github.com/FocuswithJustin/JuniperReader/core/errors"
	"github.com/FocuswithJustin/JuniperReader/core/sqlite"
	"github.com/FocuswithJustin/JuniperReader/internal/books"
	"github.com/FocuswithJustin/JuniperReader/internal/rows"
)

var kjv = Tables{Verses: "kjv_verses", Books: "kjv_books"}

var testBooks = []books.Book{
	{ID: 1, Abbreviation: "Gen", Name: "Genesis", Chapters: 50},
	{ID: 43, Abbreviation: "Jn", Name: "John", Chapters: 21},
}

var testVerses = rows.Slice{
	{BookID: 43, Chapter: 3, Verse: 17, Text: "For God sent not his Son into the world to condemn the world"},
	{BookID: 43, Chapter: 3, Verse: 16, Text: "For God so loved the world"},
	{BookID: 1, Chapter: 1, Verse: 1, Text: "In the beginning God created the heaven and the earth."},
	{BookID: 43, Chapter: 4, Verse: 1, Text: "100% of the_pharisees heard"},
}

// setupStore writes a fixture database to a temp dir and reopens it
// read-only.
func setupStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "bible.db")

	db, err := sqlite.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := CreateSchema(ctx, db, kjv); err != nil {
		t.Fatalf("CreateSchema() error = %v", err)
	}
	if err := Load(ctx, db, kjv, testBooks, testVerses); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	db.Close()

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_Search(t *testing.T) {
	s := setupStore(t)

	got, err := s.Search(context.Background(), kjv, "WORLD")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	want := rows.Slice{
		{BookID: 43, Abbreviation: "Jn", Chapter: 3, Verse: 16, Text: "For God so loved the world"},
		{BookID: 43, Abbreviation: "Jn", Chapter: 3, Verse: 17, Text: "For God sent not his Son into the world to condemn the world"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Search() mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_SearchWildcardsAreLiteral(t *testing.T) {
	s := setupStore(t)

	tests := []struct {
		term string
		want int
	}{
		{"%", 1},
		{"the_p", 1},
		{"_", 1},
		{"nothing here", 0},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			got, err := s.Search(context.Background(), kjv, tt.term)
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("Search(%q) returned %d rows, want %d", tt.term, len(got), tt.want)
			}
		})
	}
}

func TestStore_SearchLimit(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "big.db")
	db, err := sqlite.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if err := CreateSchema(ctx, db, kjv); err != nil {
		t.Fatal(err)
	}
	var verses rows.Slice
	for i := 1; i <= 150; i++ {
		verses = append(verses, rows.Row{BookID: 19, Chapter: 119, Verse: i, Text: fmt.Sprintf("thy word %d", i)})
	}
	if err := Load(ctx, db, kjv, []books.Book{{ID: 19, Abbreviation: "Ps", Name: "Psalms", Chapters: 150}}, verses); err != nil {
		t.Fatal(err)
	}

	got, err := New(db).Search(ctx, kjv, "word")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 100 {
		t.Errorf("Search() returned %d rows, want 100", len(got))
	}
	if got[0].Verse != 1 || got[99].Verse != 100 {
		t.Errorf("unexpected order: first %d last %d", got[0].Verse, got[99].Verse)
	}
}

func TestStore_Chapter(t *testing.T) {
	s := setupStore(t)

	got, err := s.Chapter(context.Background(), kjv, 43, 3)
	if err != nil {
		t.Fatalf("Chapter() error = %v", err)
	}
	if len(got) != 2 || got[0].Verse != 16 || got[1].Verse != 17 {
		t.Errorf("Chapter() = %+v", got)
	}

	empty, err := s.Chapter(context.Background(), kjv, 43, 99)
	if err != nil || len(empty) != 0 {
		t.Errorf("Chapter(missing) = %v, %v", empty, err)
	}
}

func TestStore_LoadBooks(t *testing.T) {
	s := setupStore(t)

	got, err := s.LoadBooks(context.Background(), kjv)
	if err != nil {
		t.Fatalf("LoadBooks() error = %v", err)
	}
	if diff := cmp.Diff(testBooks, got); diff != "" {
		t.Errorf("LoadBooks() mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_InvalidTables(t *testing.T) {
	s := setupStore(t)
	bad := Tables{Verses: "verses; DROP TABLE x", Books: "kjv_books"}

	_, err := s.Search(context.Background(), bad, "word")
	if !errors.Is(err, cerrors.ErrInvalidInput) {
		t.Errorf("Search() error = %v, want ErrInvalidInput", err)
	}
	_, err = s.LoadBooks(context.Background(), Tables{Verses: "v", Books: ""})
	if !errors.Is(err, cerrors.ErrInvalidInput) {
		t.Errorf("LoadBooks() error = %v, want ErrInvalidInput", err)
	}
}

func TestStore_MissingTableIsTransportError(t *testing.T) {
	s := setupStore(t)

	_, err := s.Chapter(context.Background(), Tables{Verses: "web_verses", Books: "web_books"}, 1, 1)
	if !errors.Is(err, cerrors.ErrTransport) {
		t.Errorf("Chapter() error = %v, want ErrTransport", err)
	}
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "absent.db"))
	if !errors.Is(err, cerrors.ErrTransport) {
		t.Errorf("Open() error = %v, want ErrTransport", err)
	}
}
