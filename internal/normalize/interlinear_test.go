package normalize

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func verses(m map[int]string) []Verse {
	out := make([]Verse, 0, len(m))
	for n, text := range m {
		out = append(out, Verse{VerseNumber: n, Text: text})
	}
	return out
}

func TestPair_Example(t *testing.T) {
	got := Pair(
		verses(map[int]string{1: "A1", 2: "A2"}),
		verses(map[int]string{1: "B1"}),
		"(missing A)", "(missing B)",
	)
	want := []VersePair{
		{VerseNumber: 1, TextA: "A1", TextB: "B1"},
		{VerseNumber: 2, TextA: "A2", TextB: "(missing B)", MissingB: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Pair() mismatch (-want +got):\n%s", diff)
	}
}

func TestPair_GapsInBoth(t *testing.T) {
	a := verses(map[int]string{1: "A1", 4: "A4"})
	b := verses(map[int]string{2: "B2"})

	got := Pair(a, b, "(not in KJV)", "(not in ABT)")
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	v3 := got[2]
	if v3.VerseNumber != 3 || v3.TextA != "(not in KJV)" || v3.TextB != "(not in ABT)" {
		t.Errorf("verse 3 = %+v", v3)
	}
	if !v3.MissingA || !v3.MissingB {
		t.Errorf("verse 3 should be missing on both sides: %+v", v3)
	}
	for i, p := range got {
		if p.VerseNumber != i+1 {
			t.Errorf("got[%d].VerseNumber = %d", i, p.VerseNumber)
		}
	}
}

func TestPair_LengthIsMaxVerse(t *testing.T) {
	tests := []struct {
		name string
		a, b []Verse
		want int
	}{
		{"both empty", nil, nil, 0},
		{"a longer", verses(map[int]string{1: "x", 31: "y"}), verses(map[int]string{1: "z"}), 31},
		{"b longer", verses(map[int]string{2: "x"}), verses(map[int]string{17: "y"}), 17},
		{"only b", nil, verses(map[int]string{3: "y"}), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Pair(tt.a, tt.b, "-", "-")
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
			if got == nil {
				t.Error("Pair() should return a non-nil slice")
			}
		})
	}
}

func TestPair_LastWriteWins(t *testing.T) {
	a := []Verse{{VerseNumber: 1, Text: "first"}, {VerseNumber: 1, Text: "second"}}
	got := Pair(a, nil, "-", "-")
	if got[0].TextA != "second" {
		t.Errorf("TextA = %q, want second", got[0].TextA)
	}
}

func TestPair_EmptyTextIsGap(t *testing.T) {
	a := []Verse{{VerseNumber: 1, Text: ""}}
	got := Pair(a, []Verse{{VerseNumber: 1, Text: "b"}}, "(gap)", "-")
	if !got[0].MissingA || got[0].TextA != "(gap)" {
		t.Errorf("empty text should be treated as missing: %+v", got[0])
	}
}

func TestPlaceholder(t *testing.T) {
	if got := Placeholder("BSB"); got != "(not in BSB)" {
		t.Errorf("Placeholder() = %q", got)
	}
}
