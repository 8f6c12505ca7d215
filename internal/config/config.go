// Package config holds reader configuration: the process settings parsed
// from flags and environment, and the versions file describing where each
// Bible version's text comes from.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	cerrors "github.com/FocuswithJustin/JuniperReader/core/errors"
	"github.com/FocuswithJustin/JuniperReader/core/sqlite"
	"github.com/FocuswithJustin/JuniperReader/internal/normalize"
)

// Settings are the process-wide options shared by every command. Field
// tags are read by kong.
type Settings struct {
	DB          string        `name:"db" help:"SQLite database holding local versions" type:"path" env:"JUNIPER_DB"`
	Versions    string        `name:"versions" help:"Versions file (YAML)" default:"versions.yaml" type:"path" env:"JUNIPER_VERSIONS"`
	LogLevel    string        `name:"log-level" help:"Log level (debug, info, warn, error)" default:"info" enum:"debug,info,warn,warning,error" env:"JUNIPER_LOG_LEVEL"`
	LogFormat   string        `name:"log-format" help:"Log format (json, text)" default:"text" enum:"json,text" env:"JUNIPER_LOG_FORMAT"`
	DropPolicy  string        `name:"drop-policy" help:"What to do with search results whose book cannot be resolved (silent, report)" default:"silent" enum:"silent,report"`
	CacheTTL    time.Duration `name:"cache-ttl" help:"How long fetched chapters are cached; 0 disables" default:"10m"`
	HTTPTimeout time.Duration `name:"http-timeout" help:"Timeout for provider requests" default:"15s"`
	APIBibleKey string        `name:"api-bible-key" help:"API.Bible key" env:"API_BIBLE_KEY"`
}

// Version describes one Bible version and where its text comes from.
type Version struct {
	Abbreviation string                     `yaml:"abbreviation" json:"abbreviation"`
	Name         string                     `yaml:"name" json:"name"`
	Source       normalize.Source           `yaml:"source" json:"source"`
	Provider     string                     `yaml:"provider,omitempty" json:"provider,omitempty"`
	ProviderID   string                     `yaml:"provider_id,omitempty" json:"provider_id,omitempty"`
	TableVerses  string                     `yaml:"table_verses,omitempty" json:"table_verses,omitempty"`
	TableBooks   string                     `yaml:"table_books,omitempty" json:"table_books,omitempty"`
	Transform    *normalize.TransformConfig `yaml:"transform,omitempty" json:"-"`
}

// Descriptor returns the source descriptor the normalizers dispatch on.
func (v Version) Descriptor() normalize.Descriptor {
	return normalize.Descriptor{Source: v.Source, Provider: v.Provider}
}

// Translation returns the identifier the provider knows this version by.
func (v Version) Translation() string {
	if v.ProviderID != "" {
		return v.ProviderID
	}
	return v.Abbreviation
}

// Validate checks the version is internally consistent and compiles its
// transforms.
func (v *Version) Validate() error {
	if v.Abbreviation == "" {
		return cerrors.NewValidation("abbreviation", "version abbreviation is required")
	}
	switch v.Source {
	case normalize.SourceDB:
		if !sqlite.ValidIdentifier(v.TableVerses) {
			return cerrors.NewValidation("table_verses", fmt.Sprintf("%s: invalid table name %q", v.Abbreviation, v.TableVerses))
		}
		if !sqlite.ValidIdentifier(v.TableBooks) {
			return cerrors.NewValidation("table_books", fmt.Sprintf("%s: invalid table name %q", v.Abbreviation, v.TableBooks))
		}
	case normalize.SourceAPI:
		if v.Provider == "" {
			return cerrors.NewValidation("provider", fmt.Sprintf("%s: api versions need a provider", v.Abbreviation))
		}
	default:
		return cerrors.NewValidation("source", fmt.Sprintf("%s: unknown source %q", v.Abbreviation, v.Source))
	}
	if v.Transform != nil {
		if err := v.Transform.Compile(); err != nil {
			return cerrors.Wrap(err, v.Abbreviation)
		}
	}
	return nil
}

// File is the versions file layout.
type File struct {
	Default  string    `yaml:"default"`
	Versions []Version `yaml:"versions"`
}

// Catalog is a validated, read-only set of versions.
type Catalog struct {
	def      string
	versions []Version
	index    map[string]int
}

// Load reads and validates a versions file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading versions file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates versions YAML.
func Parse(data []byte) (*Catalog, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &cerrors.ParseError{Format: "YAML", Source: "versions file", Message: err.Error(), Err: err}
	}
	return NewCatalog(f)
}

// NewCatalog validates f and indexes its versions by abbreviation,
// case-insensitively.
func NewCatalog(f File) (*Catalog, error) {
	if len(f.Versions) == 0 {
		return nil, cerrors.NewValidation("versions", "no versions configured")
	}
	c := &Catalog{
		versions: make([]Version, len(f.Versions)),
		index:    make(map[string]int, len(f.Versions)),
	}
	copy(c.versions, f.Versions)
	for i := range c.versions {
		v := &c.versions[i]
		if err := v.Validate(); err != nil {
			return nil, err
		}
		key := strings.ToUpper(v.Abbreviation)
		if _, dup := c.index[key]; dup {
			return nil, cerrors.NewValidation("abbreviation", fmt.Sprintf("duplicate version %q", v.Abbreviation))
		}
		c.index[key] = i
	}

	c.def = f.Default
	if c.def == "" {
		c.def = c.versions[0].Abbreviation
	}
	if _, ok := c.index[strings.ToUpper(c.def)]; !ok {
		return nil, cerrors.NewValidation("default", fmt.Sprintf("default version %q is not configured", c.def))
	}
	return c, nil
}

// Get returns the version with the given abbreviation.
func (c *Catalog) Get(abbr string) (Version, error) {
	i, ok := c.index[strings.ToUpper(abbr)]
	if !ok {
		return Version{}, cerrors.NewNotFound("version", abbr)
	}
	return c.versions[i], nil
}

// Default returns the version used when a request names none.
func (c *Catalog) Default() Version {
	v, _ := c.Get(c.def)
	return v
}

// Versions lists every version in file order.
func (c *Catalog) Versions() []Version {
	out := make([]Version, len(c.versions))
	copy(out, c.versions)
	return out
}

// NeedsDB reports whether any version reads from the local database.
func (c *Catalog) NeedsDB() bool {
	for _, v := range c.versions {
		if v.Source == normalize.SourceDB {
			return true
		}
	}
	return false
}
