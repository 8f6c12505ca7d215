// Command juniper-reader serves and queries Bible versions from a local
// SQLite database and public Bible APIs.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"

	cerrors "github.com/FocuswithJustin/JuniperReader/core/errors"
	"github.com/FocuswithJustin/JuniperReader/core/sqlite"
	"github.com/FocuswithJustin/JuniperReader/internal/api"
	"github.com/FocuswithJustin/JuniperReader/internal/books"
	"github.com/FocuswithJustin/JuniperReader/internal/config"
	"github.com/FocuswithJustin/JuniperReader/internal/logging"
	"github.com/FocuswithJustin/JuniperReader/internal/normalize"
	"github.com/FocuswithJustin/JuniperReader/internal/provider"
	"github.com/FocuswithJustin/JuniperReader/internal/reader"
	"github.com/FocuswithJustin/JuniperReader/internal/render"
	"github.com/FocuswithJustin/JuniperReader/internal/rows"
	"github.com/FocuswithJustin/JuniperReader/internal/store"
)

const version = "0.1.0"

var stdout io.Writer = os.Stdout

// Globals are the flags shared by every command.
type Globals struct {
	config.Settings `embed:""`

	JSON bool `name:"json" help:"Print JSON instead of text"`
}

// CLI defines the command-line interface for juniper-reader.
type CLI struct {
	Globals

	Serve    ServeCmd    `cmd:"" help:"Start the reader web server"`
	Search   SearchCmd   `cmd:"" help:"Search a version for a word or phrase"`
	Read     ReadCmd     `cmd:"" help:"Print one chapter"`
	Compare  CompareCmd  `cmd:"" help:"Print a chapter from two versions side by side"`
	Books    BooksCmd    `cmd:"" help:"List the books of a version"`
	Versions VersionsCmd `cmd:"" help:"List configured versions"`
	Import   ImportCmd   `cmd:"" help:"Load books and verses into the database for a version"`
	Version  VersionCmd  `cmd:"" help:"Print version information"`
}

func (g *Globals) initLogging() error {
	level, err := logging.ParseLevel(g.LogLevel)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(g.LogFormat)
	if err != nil {
		return err
	}
	logging.InitLoggerTo(os.Stderr, level, format)
	return nil
}

func (g *Globals) renderer() render.Renderer {
	if g.JSON {
		return render.JSON{Indent: true}
	}
	return render.Text{}
}

// openReader loads the versions file and connects the sources it names.
// The returned close function releases the database, if one was opened.
func (g *Globals) openReader(ctx context.Context) (*reader.Reader, func(), error) {
	if err := g.initLogging(); err != nil {
		return nil, nil, err
	}
	catalog, err := config.Load(g.Versions)
	if err != nil {
		return nil, nil, err
	}
	policy, err := normalize.ParseDropPolicy(g.DropPolicy)
	if err != nil {
		return nil, nil, err
	}

	closeFn := func() {}
	var verses reader.VerseStore
	if catalog.NeedsDB() {
		if g.DB == "" {
			return nil, nil, cerrors.NewValidation("db", "a database is required for the configured versions (--db)")
		}
		s, err := store.Open(ctx, g.DB)
		if err != nil {
			return nil, nil, err
		}
		verses = s
		closeFn = func() { s.Close() }
	}

	for _, abbr := range missingKeys(catalog, g.APIBibleKey) {
		logging.Warn("api_key_missing", "version", abbr, "provider", provider.APIBible)
	}

	registry := provider.NewRegistry(provider.Options{
		HTTPClient:      &http.Client{Timeout: g.HTTPTimeout},
		APIBibleKey:     g.APIBibleKey,
		ChapterCacheTTL: g.CacheTTL,
	})
	r := reader.New(catalog, verses, registry, reader.Options{
		DropPolicy:   policy,
		BookCacheTTL: g.CacheTTL,
	})
	return r, closeFn, nil
}

// missingKeys lists the API.Bible versions that cannot be served without a
// key.
func missingKeys(catalog *config.Catalog, key string) []string {
	if key != "" {
		return nil
	}
	var out []string
	for _, v := range catalog.Versions() {
		if v.Source == normalize.SourceAPI && v.Provider == provider.APIBible {
			out = append(out, v.Abbreviation)
		}
	}
	return out
}

// userError logs err and returns the message a reader should see.
func userError(err error) error {
	logging.Debug("command_failed", "error", err.Error())
	return errors.New(reader.UserMessage(err))
}

// ServeCmd runs the HTTP server.
type ServeCmd struct {
	Port            int           `help:"HTTP server port" default:"8080" env:"JUNIPER_PORT"`
	AllowedOrigins  []string      `name:"allowed-origin" help:"CORS allowed origin (repeatable; none allows all)"`
	RateLimit       int           `name:"rate-limit" help:"Requests per minute per client; 0 disables" default:"120"`
	RateLimitBurst  int           `name:"rate-limit-burst" help:"Burst size for the rate limiter" default:"20"`
	ShutdownTimeout time.Duration `name:"shutdown-timeout" help:"Grace period for in-flight requests" default:"10s"`
}

func (c *ServeCmd) Run(g *Globals) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r, closeFn, err := g.openReader(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	srv, err := api.New(r, api.Config{
		Port:              c.Port,
		AllowedOrigins:    c.AllowedOrigins,
		RateLimitRequests: c.RateLimit,
		RateLimitBurst:    c.RateLimitBurst,
		ShutdownTimeout:   c.ShutdownTimeout,
		Version:           version,
	})
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx)
}

// SearchCmd runs one search.
type SearchCmd struct {
	Term    string `arg:"" help:"Word or phrase to search for"`
	Version string `short:"v" help:"Version abbreviation (default version if empty)"`
}

func (c *SearchCmd) Run(g *Globals) error {
	ctx := context.Background()
	r, closeFn, err := g.openReader(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	view, err := r.ExecuteSearch(ctx, c.Term, c.Version)
	if err != nil {
		return userError(err)
	}
	return g.renderer().Search(stdout, view)
}

// ReadCmd prints a chapter.
type ReadCmd struct {
	Version string `arg:"" help:"Version abbreviation"`
	Book    string `arg:"" help:"Book (code such as JHN, the version's abbreviation, or its number)"`
	Chapter int    `arg:"" help:"Chapter number"`
}

func (c *ReadCmd) Run(g *Globals) error {
	ctx := context.Background()
	r, closeFn, err := g.openReader(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	view, err := r.Chapter(ctx, c.Version, c.Book, c.Chapter)
	if err != nil {
		return userError(err)
	}
	return g.renderer().Chapter(stdout, view)
}

// CompareCmd prints an interlinear chapter.
type CompareCmd struct {
	VersionA string `arg:"" help:"First version"`
	VersionB string `arg:"" help:"Second version"`
	Book     string `arg:"" help:"Book"`
	Chapter  int    `arg:"" help:"Chapter number"`
}

func (c *CompareCmd) Run(g *Globals) error {
	ctx := context.Background()
	r, closeFn, err := g.openReader(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	view, err := r.Interlinear(ctx, c.VersionA, c.VersionB, c.Book, c.Chapter)
	if err != nil {
		return userError(err)
	}
	return g.renderer().Interlinear(stdout, view)
}

// BooksCmd lists a version's books.
type BooksCmd struct {
	Version string `arg:"" optional:"" help:"Version abbreviation (default version if empty)"`
}

func (c *BooksCmd) Run(g *Globals) error {
	ctx := context.Background()
	r, closeFn, err := g.openReader(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	abbr := c.Version
	if abbr == "" {
		abbr = r.Catalog().Default().Abbreviation
	}
	lookup, err := r.Books(ctx, abbr)
	if err != nil {
		return userError(err)
	}
	list := lookup.Books()
	if g.JSON {
		return writeJSON(list)
	}
	for _, b := range list {
		fmt.Fprintf(stdout, "%-4s %-24s %d\n", books.StandardAbbreviation(b), b.Name, b.Chapters)
	}
	return nil
}

// VersionsCmd lists the versions file.
type VersionsCmd struct{}

func (c *VersionsCmd) Run(g *Globals) error {
	catalog, err := config.Load(g.Versions)
	if err != nil {
		return err
	}
	if g.JSON {
		return writeJSON(catalog.Versions())
	}
	def := catalog.Default().Abbreviation
	for _, v := range catalog.Versions() {
		mark := " "
		if v.Abbreviation == def {
			mark = "*"
		}
		source := string(v.Source)
		if v.Source == normalize.SourceAPI {
			source += ":" + v.Provider
		}
		fmt.Fprintf(stdout, "%s %-6s %-32s %s\n", mark, v.Abbreviation, v.Name, source)
	}
	return nil
}

// ImportCmd loads a YAML or JSON verse file into a database version's
// tables, creating them if needed.
type ImportCmd struct {
	Version string `arg:"" help:"Database version to load"`
	Path    string `arg:"" help:"Books and verses file (YAML or JSON)" type:"existingfile"`
}

type importFile struct {
	Books  []books.Book `yaml:"books"`
	Verses []struct {
		BookID  int    `yaml:"book_id"`
		Chapter int    `yaml:"chapter"`
		Verse   int    `yaml:"verse"`
		Text    string `yaml:"text"`
	} `yaml:"verses"`
}

func (c *ImportCmd) Run(g *Globals) error {
	ctx := context.Background()
	if err := g.initLogging(); err != nil {
		return err
	}
	if g.DB == "" {
		return cerrors.NewValidation("db", "--db is required")
	}
	catalog, err := config.Load(g.Versions)
	if err != nil {
		return err
	}
	v, err := catalog.Get(c.Version)
	if err != nil {
		return err
	}
	if v.Source != normalize.SourceDB {
		return cerrors.NewValidation("version", fmt.Sprintf("%s is not a database version", v.Abbreviation))
	}

	data, err := os.ReadFile(c.Path)
	if err != nil {
		return err
	}
	var f importFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return cerrors.NewParse("yaml", c.Path, err.Error())
	}
	verses := make(rows.Slice, 0, len(f.Verses))
	for _, vr := range f.Verses {
		verses = append(verses, rows.Row{BookID: vr.BookID, Chapter: vr.Chapter, Verse: vr.Verse, Text: vr.Text})
	}

	db, err := sqlite.Open(g.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	tables := store.Tables{Verses: v.TableVerses, Books: v.TableBooks}
	if err := store.CreateSchema(ctx, db, tables); err != nil {
		return err
	}
	if err := store.Load(ctx, db, tables, f.Books, verses); err != nil {
		return err
	}
	logging.Info("import_complete", "version", v.Abbreviation, "books", len(f.Books), "verses", len(verses))
	fmt.Fprintf(stdout, "imported %d books and %d verses into %s\n", len(f.Books), len(verses), v.Abbreviation)
	return nil
}

// VersionCmd prints the program version.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Fprintf(stdout, "juniper-reader version %s (sqlite %s)\n", version, sqlite.DriverType())
	return nil
}

func writeJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("juniper-reader"),
		kong.Description("Juniper Reader - search and read Bible versions"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
