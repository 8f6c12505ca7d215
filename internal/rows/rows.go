// Package rows adapts the two cursor shapes produced by local verse stores
// (a plain ordered slice, and a result set wrapping an indexed cursor) to a
// single lazy sequence.
package rows

import (
	"database/sql"
	"iter"
)

// Row is one verse row as returned by a local store query. Search queries
// fill Abbreviation from the books table; chapter queries leave it empty.
type Row struct {
	BookID       int    `json:"book_id,omitempty"`
	Abbreviation string `json:"abbreviation,omitempty"`
	Chapter      int    `json:"chapter"`
	Verse        int    `json:"verse"`
	Text         string `json:"text"`
}

// Cursor is an indexed cursor: a length plus random access by index.
type Cursor interface {
	Len() int
	Item(i int) Row
}

// Slice is the plain ordered-sequence shape.
type Slice []Row

// Len implements Cursor.
func (s Slice) Len() int { return len(s) }

// Item implements Cursor.
func (s Slice) Item(i int) Row { return s[i] }

// ResultSet is the wrapped shape: the rows live behind an inner cursor.
// A nil Rows behaves as an empty result.
type ResultSet struct {
	Rows Cursor
}

// Len implements Cursor.
func (r ResultSet) Len() int {
	if r.Rows == nil {
		return 0
	}
	return r.Rows.Len()
}

// Item implements Cursor.
func (r ResultSet) Item(i int) Row { return r.Rows.Item(i) }

// All yields every row of c in cursor order. A nil cursor yields nothing.
func All(c Cursor) iter.Seq[Row] {
	return func(yield func(Row) bool) {
		if c == nil {
			return
		}
		n := c.Len()
		for i := 0; i < n; i++ {
			if !yield(c.Item(i)) {
				return
			}
		}
	}
}

// Limit yields at most n rows from seq. A non-positive n yields everything.
func Limit(seq iter.Seq[Row], n int) iter.Seq[Row] {
	if n <= 0 {
		return seq
	}
	return func(yield func(Row) bool) {
		count := 0
		for r := range seq {
			if count >= n || !yield(r) {
				return
			}
			count++
		}
	}
}

// ScanFunc scans the current row of a *sql.Rows into a Row.
type ScanFunc func(*sql.Rows) (Row, error)

// Collect drains rs into a Slice using scan and closes rs.
func Collect(rs *sql.Rows, scan ScanFunc) (Slice, error) {
	defer rs.Close()

	var out Slice
	for rs.Next() {
		r, err := scan(rs)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rs.Err()
}
