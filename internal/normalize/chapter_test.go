package normalize

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/FocuswithJustin/JuniperReader/internal/rows"
)

func TestChapterFromHTML_Example(t *testing.T) {
	got, err := ChapterFromHTML(`<p class="verse"><span class="verse-number">1</span>&nbsp;In the beginning</p>`, 1, 1)
	if err != nil {
		t.Fatalf("ChapterFromHTML() error = %v", err)
	}
	want := []Verse{{BookID: 1, Chapter: 1, VerseNumber: 1, Text: "In the beginning"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestChapterFromHTML(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		want     []Verse
	}{
		{
			name: "inline markup kept",
			fragment: `<p class="verse"><span class="verse-number">2</span>&nbsp;And the earth was <i>without form</i>, and void</p>` +
				`<p class="verse"><span class="verse-number">3</span>&nbsp;And God said</p>`,
			want: []Verse{
				{BookID: 1, Chapter: 1, VerseNumber: 2, Text: "And the earth was <i>without form</i>, and void"},
				{BookID: 1, Chapter: 1, VerseNumber: 3, Text: "And God said"},
			},
		},
		{
			name: "paragraph without marker skipped",
			fragment: `<p class="verse">heading text</p>` +
				`<p class="verse"><span class="verse-number">4</span>&nbsp;And God saw the light</p>`,
			want: []Verse{{BookID: 1, Chapter: 1, VerseNumber: 4, Text: "And God saw the light"}},
		},
		{
			name:     "non-numeric marker skipped",
			fragment: `<p class="verse"><span class="verse-number">a</span>&nbsp;x</p>`,
			want:     nil,
		},
		{
			name:     "bridged marker uses first verse",
			fragment: `<p class="verse"><span class="verse-number">4-5</span>&nbsp;bridged</p>`,
			want:     []Verse{{BookID: 1, Chapter: 1, VerseNumber: 4, Text: "bridged"}},
		},
		{
			name:     "only one leading nbsp stripped",
			fragment: `<p class="verse"><span class="verse-number">5</span>&nbsp;&nbsp;indented</p>`,
			want:     []Verse{{BookID: 1, Chapter: 1, VerseNumber: 5, Text: "&nbsp;indented"}},
		},
		{
			name:     "whitespace trimmed before nbsp",
			fragment: "<p class=\"verse\">\n  <span class=\"verse-number\"> 6 </span>&nbsp;text  \n</p>",
			want:     []Verse{{BookID: 1, Chapter: 1, VerseNumber: 6, Text: "text"}},
		},
		{
			name:     "text escaping follows innerHTML",
			fragment: `<p class="verse"><span class="verse-number">7</span>&nbsp;God's "light" &amp; dark &lt;b&gt;</p>`,
			want:     []Verse{{BookID: 1, Chapter: 1, VerseNumber: 7, Text: `God's "light" &amp; dark &lt;b&gt;`}},
		},
		{
			name:     "extra classes and nested marker",
			fragment: `<p class="verse poetry"><b><span class="x verse-number">8</span></b> nested</p>`,
			want:     []Verse{{BookID: 1, Chapter: 1, VerseNumber: 8, Text: "<b></b> nested"}},
		},
		{
			name:     "other elements ignored",
			fragment: `<div class="verse"><span class="verse-number">9</span>div</div><p class="verses"><span class="verse-number">10</span>p</p>`,
			want:     nil,
		},
		{
			name: "source order kept",
			fragment: `<p class="verse"><span class="verse-number">12</span>&nbsp;b</p>` +
				`<p class="verse"><span class="verse-number">11</span>&nbsp;a</p>`,
			want: []Verse{
				{BookID: 1, Chapter: 1, VerseNumber: 12, Text: "b"},
				{BookID: 1, Chapter: 1, VerseNumber: 11, Text: "a"},
			},
		},
		{
			name:     "attributes and void elements",
			fragment: `<p class="verse"><span class="verse-number">13</span>&nbsp;line<br>next <a href="/x?a=1&amp;b=2">link</a></p>`,
			want:     []Verse{{BookID: 1, Chapter: 1, VerseNumber: 13, Text: `line<br>next <a href="/x?a=1&amp;b=2">link</a>`}},
		},
		{
			name:     "inside wrapper",
			fragment: `<div class="chapter"><p class="verse"><span class="verse-number">14</span>&nbsp;wrapped</p></div>`,
			want:     []Verse{{BookID: 1, Chapter: 1, VerseNumber: 14, Text: "wrapped"}},
		},
		{
			name:     "empty fragment",
			fragment: "",
			want:     nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ChapterFromHTML(tt.fragment, 1, 1)
			if err != nil {
				t.Fatalf("ChapterFromHTML() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestChapterFromRows(t *testing.T) {
	data := []rows.Row{
		{Chapter: 3, Verse: 16, Text: "For God so <i>loved</i>"},
		{Chapter: 3, Verse: 17, Text: "For God sent not"},
	}
	want := []Verse{
		{BookID: 43, Chapter: 3, VerseNumber: 16, Text: "For God so <i>loved</i>"},
		{BookID: 43, Chapter: 3, VerseNumber: 17, Text: "For God sent not"},
	}

	plain := ChapterFromRows(rows.Slice(data), 43, 3)
	wrapped := ChapterFromRows(rows.ResultSet{Rows: &cursor{data: data}}, 43, 3)

	if diff := cmp.Diff(want, plain); diff != "" {
		t.Errorf("plain mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, wrapped); diff != "" {
		t.Errorf("wrapped mismatch (-want +got):\n%s", diff)
	}
}

func TestPlainText(t *testing.T) {
	in := []Verse{
		{VerseNumber: 1, Text: "In <i>the</i> beginning"},
		{VerseNumber: 2, Text: "A &amp; B"},
		{VerseNumber: 3, Text: "a &lt;img src=x onerror=alert(1)&gt; b"},
	}
	got, err := PlainText(in)
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Text != "In the beginning" || got[1].Text != "A &amp; B" {
		t.Errorf("PlainText() = %q, %q", got[0].Text, got[1].Text)
	}
	if got[2].Text != "a &lt;img src=x onerror=alert(1)&gt; b" {
		t.Errorf("escaped markup came back live: %q", got[2].Text)
	}
	if in[0].Text != "In <i>the</i> beginning" {
		t.Error("PlainText modified its input")
	}
}

func TestLeadingInt(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"1", 1, true},
		{"176", 176, true},
		{"4-5", 4, true},
		{"12a", 12, true},
		{"", 0, false},
		{"a1", 0, false},
	}
	for _, tt := range tests {
		got, ok := leadingInt(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("leadingInt(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestText(t *testing.T) {
	got, err := Text(`For God so <span class="wj">loved</span> the <mark class="search-highlight">world</mark>`)
	if err != nil {
		t.Fatal(err)
	}
	if got != "For God so loved the world" {
		t.Errorf("Text() = %q", got)
	}
}
