// Package store reads verse text from local SQLite databases.
//
// Each version names its own verse and book tables:
//
//	<verses>(book_id INTEGER, chapter INTEGER, verse INTEGER, text TEXT)
//	<books>(id INTEGER, abbreviation TEXT, name TEXT, chapters INTEGER)
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	cerrors "github.com/FocuswithJustin/JuniperReader/core/errors"
	"github.com/FocuswithJustin/JuniperReader/core/sqlite"
	"github.com/FocuswithJustin/JuniperReader/internal/books"
	"github.com/FocuswithJustin/JuniperReader/internal/normalize"
	"github.com/FocuswithJustin/JuniperReader/internal/rows"
)

// Tables names the verse and book tables of one version.
type Tables struct {
	Verses string
	Books  string
}

// Validate checks both names are plain identifiers.
func (t Tables) Validate() error {
	if !sqlite.ValidIdentifier(t.Verses) {
		return cerrors.NewValidation("table_verses", fmt.Sprintf("invalid table name %q", t.Verses))
	}
	if !sqlite.ValidIdentifier(t.Books) {
		return cerrors.NewValidation("table_books", fmt.Sprintf("invalid table name %q", t.Books))
	}
	return nil
}

// Store is a read-only verse database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens the database at path read-only.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sqlite.OpenReadOnly(ctx, path)
	if err != nil {
		return nil, cerrors.NewTransport("open", "db", err)
	}
	return &Store{db: db, path: path}, nil
}

// New wraps an already open database.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return cerrors.NewTransport("ping", "db", s.db.PingContext(ctx))
}

// likeEscaper escapes LIKE wildcards so the term matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search returns up to normalize.MaxSearchRows verses containing term,
// case-insensitively for ASCII, in canonical order. Each row carries the
// version's own book abbreviation.
func (s *Store) Search(ctx context.Context, t Tables, term string) (rows.Slice, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT v.book_id, b.abbreviation, v.chapter, v.verse, v.text
		FROM %s v JOIN %s b ON b.id = v.book_id
		WHERE v.text LIKE ? ESCAPE '\'
		ORDER BY v.book_id, v.chapter, v.verse
		LIMIT %d`, t.Verses, t.Books, normalize.MaxSearchRows)

	rs, err := s.db.QueryContext(ctx, query, "%"+likeEscaper.Replace(term)+"%")
	if err != nil {
		return nil, cerrors.NewTransport("search", "db", err)
	}
	out, err := rows.Collect(rs, func(rs *sql.Rows) (rows.Row, error) {
		var r rows.Row
		err := rs.Scan(&r.BookID, &r.Abbreviation, &r.Chapter, &r.Verse, &r.Text)
		return r, err
	})
	if err != nil {
		return nil, cerrors.NewTransport("search", "db", err)
	}
	return out, nil
}

// Chapter returns the verses of one chapter ordered by verse number.
func (s *Store) Chapter(ctx context.Context, t Tables, bookID, chapter int) (rows.Slice, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT book_id, chapter, verse, text FROM %s
		WHERE book_id = ? AND chapter = ?
		ORDER BY verse`, t.Verses)

	rs, err := s.db.QueryContext(ctx, query, bookID, chapter)
	if err != nil {
		return nil, cerrors.NewTransport("chapter", "db", err)
	}
	out, err := rows.Collect(rs, func(rs *sql.Rows) (rows.Row, error) {
		var r rows.Row
		err := rs.Scan(&r.BookID, &r.Chapter, &r.Verse, &r.Text)
		return r, err
	})
	if err != nil {
		return nil, cerrors.NewTransport("chapter", "db", err)
	}
	return out, nil
}

// LoadBooks reads a version's book list ordered by id.
func (s *Store) LoadBooks(ctx context.Context, t Tables) ([]books.Book, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT id, abbreviation, name, chapters FROM %s ORDER BY id`, t.Books)

	rs, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, cerrors.NewTransport("books", "db", err)
	}
	defer rs.Close()

	var list []books.Book
	for rs.Next() {
		var b books.Book
		if err := rs.Scan(&b.ID, &b.Abbreviation, &b.Name, &b.Chapters); err != nil {
			return nil, cerrors.NewTransport("books", "db", err)
		}
		list = append(list, b)
	}
	if err := rs.Err(); err != nil {
		return nil, cerrors.NewTransport("books", "db", err)
	}
	return list, nil
}

// CreateSchema creates the version's tables if they do not exist. The
// database must have been opened writable.
func CreateSchema(ctx context.Context, db *sql.DB, t Tables) error {
	if err := t.Validate(); err != nil {
		return err
	}
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY,
			abbreviation TEXT NOT NULL,
			name TEXT NOT NULL,
			chapters INTEGER NOT NULL DEFAULT 0
		)`, t.Books),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			book_id INTEGER NOT NULL,
			chapter INTEGER NOT NULL,
			verse INTEGER NOT NULL,
			text TEXT NOT NULL
		)`, t.Verses),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_ref ON %s (book_id, chapter, verse)`, t.Verses, t.Verses),
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return cerrors.NewTransport("schema", "db", err)
		}
	}
	return nil
}

// Load inserts a book list and verse rows in a single transaction.
func Load(ctx context.Context, db *sql.DB, t Tables, list []books.Book, verses rows.Slice) (err error) {
	if err := t.Validate(); err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return cerrors.NewTransport("load", "db", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	bookStmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (id, abbreviation, name, chapters) VALUES (?, ?, ?, ?)`, t.Books))
	if err != nil {
		return cerrors.NewTransport("load", "db", err)
	}
	defer bookStmt.Close()
	for _, b := range list {
		if _, err = bookStmt.ExecContext(ctx, b.ID, b.Abbreviation, b.Name, b.Chapters); err != nil {
			return cerrors.NewTransport("load", "db", err)
		}
	}

	verseStmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (book_id, chapter, verse, text) VALUES (?, ?, ?, ?)`, t.Verses))
	if err != nil {
		return cerrors.NewTransport("load", "db", err)
	}
	defer verseStmt.Close()
	for _, v := range verses {
		if _, err = verseStmt.ExecContext(ctx, v.BookID, v.Chapter, v.Verse, v.Text); err != nil {
			return cerrors.NewTransport("load", "db", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return cerrors.NewTransport("load", "db", err)
	}
	return nil
}
