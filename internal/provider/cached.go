package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/FocuswithJustin/JuniperReader/internal/books"
	"github.com/FocuswithJustin/JuniperReader/internal/cache"
)

// cachedProvider memoizes chapter fragments. Searches always go to the
// provider.
type cachedProvider struct {
	Provider
	chapters *cache.TTLCache[string, string]
}

func newCachedProvider(p Provider, ttl time.Duration) Provider {
	return &cachedProvider{Provider: p, chapters: cache.New[string, string](ttl)}
}

func (c *cachedProvider) FetchChapter(ctx context.Context, translation string, book books.Book, chapter int) (string, error) {
	key := fmt.Sprintf("%s/%d/%d", translation, book.ID, chapter)
	return c.chapters.GetOrLoad(key, func() (string, error) {
		return c.Provider.FetchChapter(ctx, translation, book, chapter)
	})
}

func (c *cachedProvider) prune() int {
	return c.chapters.Prune()
}
