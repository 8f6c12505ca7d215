package normalize

// VersePair aligns one verse number across two versions. MissingA and
// MissingB mark sides whose text is the placeholder; renderers show those
// emphasized.
type VersePair struct {
	VerseNumber int    `json:"verseNumber"`
	TextA       string `json:"textA"`
	TextB       string `json:"textB"`
	MissingA    bool   `json:"missingA,omitempty"`
	MissingB    bool   `json:"missingB,omitempty"`
}

// Placeholder is the default gap marker for a version, e.g. "(not in KJV)".
func Placeholder(abbr string) string {
	return "(not in " + abbr + ")"
}

// Pair aligns two chapters by verse number. It emits one pair for every
// verse from 1 to the highest verse number present on either side; a side
// with no text for a verse gets its placeholder. Repeated verse numbers
// keep the last text seen. Two empty inputs give an empty result.
func Pair(a, b []Verse, placeholderA, placeholderB string) []VersePair {
	mapA, maxA := verseMap(a)
	mapB, maxB := verseMap(b)
	maxVerse := max(maxA, maxB)
	if maxVerse <= 0 {
		return []VersePair{}
	}

	pairs := make([]VersePair, 0, maxVerse)
	for n := 1; n <= maxVerse; n++ {
		p := VersePair{VerseNumber: n, TextA: mapA[n], TextB: mapB[n]}
		if p.TextA == "" {
			p.TextA, p.MissingA = placeholderA, true
		}
		if p.TextB == "" {
			p.TextB, p.MissingB = placeholderB, true
		}
		pairs = append(pairs, p)
	}
	return pairs
}

func verseMap(verses []Verse) (map[int]string, int) {
	m := make(map[int]string, len(verses))
	highest := 0
	for _, v := range verses {
		m[v.VerseNumber] = v.Text
		if v.VerseNumber > highest {
			highest = v.VerseNumber
		}
	}
	return m, highest
}
