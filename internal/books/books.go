// Package books resolves book references between a version's own book
// list and the canonical 3-letter codes used in references.
package books

import (
	"fmt"
	"strconv"
	"strings"
)

// Book is one entry of a version's book list.
type Book struct {
	ID           int    `json:"id" yaml:"id"`
	Abbreviation string `json:"abbreviation" yaml:"abbreviation"`
	Name         string `json:"name" yaml:"name"`
	Chapters     int    `json:"chapters,omitempty" yaml:"chapters,omitempty"`
}

// canonical holds USFM book codes indexed by book id (1 = Genesis, 66 = Revelation).
var canonical = [...]string{
	"",
	"GEN", "EXO", "LEV", "NUM", "DEU", "JOS", "JDG", "RUT", "1SA", "2SA",
	"1KI", "2KI", "1CH", "2CH", "EZR", "NEH", "EST", "JOB", "PSA", "PRO",
	"ECC", "SNG", "ISA", "JER", "LAM", "EZK", "DAN", "HOS", "JOL", "AMO",
	"OBA", "JON", "MIC", "NAM", "HAB", "ZEP", "HAG", "ZEC", "MAL",
	"MAT", "MRK", "LUK", "JHN", "ACT", "ROM", "1CO", "2CO", "GAL", "EPH",
	"PHP", "COL", "1TH", "2TH", "1TI", "2TI", "TIT", "PHM", "HEB", "JAS",
	"1PE", "2PE", "1JN", "2JN", "3JN", "JUD", "REV",
}

var canonicalNames = [...]string{
	"",
	"Genesis", "Exodus", "Leviticus", "Numbers", "Deuteronomy", "Joshua", "Judges", "Ruth", "1 Samuel", "2 Samuel",
	"1 Kings", "2 Kings", "1 Chronicles", "2 Chronicles", "Ezra", "Nehemiah", "Esther", "Job", "Psalms", "Proverbs",
	"Ecclesiastes", "Song of Solomon", "Isaiah", "Jeremiah", "Lamentations", "Ezekiel", "Daniel", "Hosea", "Joel", "Amos",
	"Obadiah", "Jonah", "Micah", "Nahum", "Habakkuk", "Zephaniah", "Haggai", "Zechariah", "Malachi",
	"Matthew", "Mark", "Luke", "John", "Acts", "Romans", "1 Corinthians", "2 Corinthians", "Galatians", "Ephesians",
	"Philippians", "Colossians", "1 Thessalonians", "2 Thessalonians", "1 Timothy", "2 Timothy", "Titus", "Philemon", "Hebrews", "James",
	"1 Peter", "2 Peter", "1 John", "2 John", "3 John", "Jude", "Revelation",
}

// canonicalIDs is the reverse of canonical.
var canonicalIDs = func() map[string]int {
	m := make(map[string]int, len(canonical))
	for id, code := range canonical {
		if code != "" {
			m[code] = id
		}
	}
	return m
}()

// Canonical returns the 3-letter code for a book id, or "" if the id is
// outside the 66-book canon.
func Canonical(id int) string {
	if id <= 0 || id >= len(canonical) {
		return ""
	}
	return canonical[id]
}

// CanonicalID returns the id for a 3-letter code, case-insensitively.
func CanonicalID(code string) (int, bool) {
	id, ok := canonicalIDs[strings.ToUpper(code)]
	return id, ok
}

// Protestant returns the 66-book canon as a Book list using the canonical
// codes as abbreviations.
func Protestant() []Book {
	out := make([]Book, 0, len(canonical)-1)
	for id := 1; id < len(canonical); id++ {
		out = append(out, Book{ID: id, Abbreviation: canonical[id], Name: canonicalNames[id]})
	}
	return out
}

// Lookup is a read-only index over one version's book list. It is built
// once when versions are loaded and is safe for concurrent use.
type Lookup struct {
	books  []Book
	byID   map[int]int
	byAbbr map[string]int
}

// NewLookup indexes list. When ids or abbreviations repeat, the first
// occurrence wins, matching a linear scan over the list.
func NewLookup(list []Book) (*Lookup, error) {
	l := &Lookup{
		books:  make([]Book, len(list)),
		byID:   make(map[int]int, len(list)),
		byAbbr: make(map[string]int, len(list)),
	}
	copy(l.books, list)
	for i, b := range l.books {
		if b.ID <= 0 {
			return nil, fmt.Errorf("book %q: id must be positive, got %d", b.Abbreviation, b.ID)
		}
		if _, ok := l.byID[b.ID]; !ok {
			l.byID[b.ID] = i
		}
		if _, ok := l.byAbbr[b.Abbreviation]; !ok {
			l.byAbbr[b.Abbreviation] = i
		}
	}
	return l, nil
}

// MustLookup is NewLookup for static tables; it panics on error.
func MustLookup(list []Book) *Lookup {
	l, err := NewLookup(list)
	if err != nil {
		panic(err)
	}
	return l
}

// FindByAbbreviation returns the book whose abbreviation matches exactly.
func (l *Lookup) FindByAbbreviation(abbr string) (Book, bool) {
	i, ok := l.byAbbr[abbr]
	if !ok {
		return Book{}, false
	}
	return l.books[i], true
}

// FindByID returns the book with the given internal id.
func (l *Lookup) FindByID(id int) (Book, bool) {
	i, ok := l.byID[id]
	if !ok {
		return Book{}, false
	}
	return l.books[i], true
}

// Resolve finds a book from a user-supplied reference: a numeric id, the
// version's own abbreviation, or a canonical 3-letter code.
func (l *Lookup) Resolve(ref string) (Book, bool) {
	if b, ok := l.FindByAbbreviation(ref); ok {
		return b, true
	}
	if id, err := strconv.Atoi(ref); err == nil {
		return l.FindByID(id)
	}
	if id, ok := CanonicalID(ref); ok {
		return l.FindByID(id)
	}
	return Book{}, false
}

// StandardAbbreviation returns the canonical code for b, falling back to
// the book's own abbreviation for ids outside the canon.
func StandardAbbreviation(b Book) string {
	if code := Canonical(b.ID); code != "" {
		return code
	}
	return b.Abbreviation
}

// Books returns a copy of the indexed list in its original order.
func (l *Lookup) Books() []Book {
	out := make([]Book, len(l.books))
	copy(out, l.books)
	return out
}

// Len returns the number of books in the list.
func (l *Lookup) Len() int {
	return len(l.books)
}
