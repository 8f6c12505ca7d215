package books

import (
	"testing"
)

func testLookup(t *testing.T) *Lookup {
	t.Helper()
	l, err := NewLookup([]Book{
		{ID: 1, Abbreviation: "Gen", Name: "Genesis", Chapters: 50},
		{ID: 43, Abbreviation: "Jn", Name: "John", Chapters: 21},
		{ID: 19, Abbreviation: "Ps", Name: "Psalms", Chapters: 150},
		{ID: 70, Abbreviation: "1Esd", Name: "1 Esdras", Chapters: 9},
	})
	if err != nil {
		t.Fatalf("NewLookup failed: %v", err)
	}
	return l
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		id   int
		want string
	}{
		{1, "GEN"},
		{19, "PSA"},
		{43, "JHN"},
		{66, "REV"},
		{0, ""},
		{67, ""},
		{-1, ""},
	}
	for _, tt := range tests {
		if got := Canonical(tt.id); got != tt.want {
			t.Errorf("Canonical(%d) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestCanonicalID(t *testing.T) {
	if id, ok := CanonicalID("jhn"); !ok || id != 43 {
		t.Errorf("CanonicalID(jhn) = %d, %v", id, ok)
	}
	if _, ok := CanonicalID("XYZ"); ok {
		t.Error("CanonicalID(XYZ) should fail")
	}
}

func TestProtestant(t *testing.T) {
	list := Protestant()
	if len(list) != 66 {
		t.Fatalf("len = %d, want 66", len(list))
	}
	if list[42].ID != 43 || list[42].Abbreviation != "JHN" || list[42].Name != "John" {
		t.Errorf("list[42] = %+v", list[42])
	}
}

func TestLookup_FindByAbbreviation(t *testing.T) {
	l := testLookup(t)

	b, ok := l.FindByAbbreviation("Jn")
	if !ok || b.ID != 43 {
		t.Errorf("FindByAbbreviation(Jn) = %+v, %v", b, ok)
	}
	if _, ok := l.FindByAbbreviation("jn"); ok {
		t.Error("abbreviation match should be exact")
	}
	if _, ok := l.FindByAbbreviation("JHN"); ok {
		t.Error("canonical code is not a version abbreviation")
	}
}

func TestLookup_FindByID(t *testing.T) {
	l := testLookup(t)

	if b, ok := l.FindByID(19); !ok || b.Abbreviation != "Ps" {
		t.Errorf("FindByID(19) = %+v, %v", b, ok)
	}
	if _, ok := l.FindByID(2); ok {
		t.Error("FindByID(2) should miss")
	}
}

func TestLookup_Resolve(t *testing.T) {
	l := testLookup(t)

	tests := []struct {
		ref    string
		wantID int
		wantOK bool
	}{
		{"Jn", 43, true},
		{"43", 43, true},
		{"JHN", 43, true},
		{"psa", 19, true},
		{"EXO", 0, false},
		{"2", 0, false},
		{"nope", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			b, ok := l.Resolve(tt.ref)
			if ok != tt.wantOK || b.ID != tt.wantID {
				t.Errorf("Resolve(%q) = %d, %v; want %d, %v", tt.ref, b.ID, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestStandardAbbreviation(t *testing.T) {
	l := testLookup(t)

	jn, _ := l.FindByID(43)
	if got := StandardAbbreviation(jn); got != "JHN" {
		t.Errorf("StandardAbbreviation(Jn) = %q, want JHN", got)
	}
	esd, _ := l.FindByID(70)
	if got := StandardAbbreviation(esd); got != "1Esd" {
		t.Errorf("StandardAbbreviation(1Esd) = %q, want 1Esd", got)
	}
}

func TestNewLookup_FirstOccurrenceWins(t *testing.T) {
	l, err := NewLookup([]Book{
		{ID: 43, Abbreviation: "Jn", Name: "John"},
		{ID: 62, Abbreviation: "Jn", Name: "1 John"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if b, _ := l.FindByAbbreviation("Jn"); b.ID != 43 {
		t.Errorf("FindByAbbreviation(Jn).ID = %d, want 43", b.ID)
	}
	if l.Len() != 2 {
		t.Errorf("Len() = %d, want 2", l.Len())
	}
}

func TestNewLookup_RejectsBadID(t *testing.T) {
	if _, err := NewLookup([]Book{{ID: 0, Abbreviation: "X"}}); err == nil {
		t.Error("expected error for zero id")
	}
}

func TestLookup_BooksIsCopy(t *testing.T) {
	l := testLookup(t)
	list := l.Books()
	list[0].Abbreviation = "changed"
	if b, _ := l.FindByID(1); b.Abbreviation != "Gen" {
		t.Error("Books() should return a copy")
	}
}
