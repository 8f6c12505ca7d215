// Package provider fetches search results and chapter content from remote
// Bible content providers.
//
// Each provider returns chapters as verse-paragraph HTML fragments, so a
// single normalizer handles every remote source. Search results come back
// raw; their book references are reconciled by normalize.MapperFor.
package provider

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	cerrors "github.com/FocuswithJustin/JuniperReader/core/errors"
	"github.com/FocuswithJustin/JuniperReader/internal/books"
	"github.com/FocuswithJustin/JuniperReader/internal/normalize"
)

// Provider names as they appear in version descriptors.
const (
	APIBible  = "API.Bible"
	BollsLife = "bolls.life"
	HelloAO   = "helloao.org"
)

// Provider is a remote content source.
type Provider interface {
	// Name returns the registry name of the provider.
	Name() string
	// FetchSearch runs a full-text search in one translation.
	FetchSearch(ctx context.Context, translation, term string) ([]normalize.RawResult, error)
	// FetchChapter returns one chapter as a verse-paragraph fragment.
	FetchChapter(ctx context.Context, translation string, book books.Book, chapter int) (string, error)
}

// Options configure the built-in providers.
type Options struct {
	HTTPClient *http.Client
	// BaseURLs overrides a provider's endpoint, keyed by provider name.
	BaseURLs map[string]string
	// APIBibleKey is sent as the api-key header to API.Bible.
	APIBibleKey string
	// ChapterCacheTTL caches fetched chapters per translation, book and
	// chapter. Zero disables caching.
	ChapterCacheTTL time.Duration
}

func (o Options) client() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	return &http.Client{Timeout: 15 * time.Second}
}

func (o Options) baseURL(name, fallback string) string {
	if u, ok := o.BaseURLs[name]; ok && u != "" {
		return u
	}
	return fallback
}

// Factory builds a provider from options.
type Factory func(Options) Provider

// Registry resolves providers by name. Each provider is constructed on
// first use and the same instance is returned for the registry's lifetime.
type Registry struct {
	opts Options

	mu        sync.Mutex
	factories map[string]Factory
	instances map[string]Provider
}

// NewRegistry returns a registry with the built-in providers registered.
func NewRegistry(opts Options) *Registry {
	r := &Registry{
		opts:      opts,
		factories: make(map[string]Factory),
		instances: make(map[string]Provider),
	}
	r.Register(APIBible, newAPIBible)
	r.Register(BollsLife, newBollsLife)
	r.Register(HelloAO, newHelloAO)
	return r
}

// Register adds or replaces a factory. A cached instance under the same
// name is discarded.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
	delete(r.instances, name)
}

// Get returns the cached provider for name, creating it on first use.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.instances[name]; ok {
		return p, nil
	}
	f, ok := r.factories[name]
	if !ok {
		return nil, cerrors.NewNotFound("provider", name)
	}
	p := f(r.opts)
	if r.opts.ChapterCacheTTL > 0 {
		p = newCachedProvider(p, r.opts.ChapterCacheTTL)
	}
	r.instances[name] = p
	return p, nil
}

// Prune drops expired chapters from the providers created so far and
// returns how many were removed.
func (r *Registry) Prune() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for _, p := range r.instances {
		if c, ok := p.(*cachedProvider); ok {
			removed += c.prune()
		}
	}
	return removed
}

// Names lists the registered provider names in sorted order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
