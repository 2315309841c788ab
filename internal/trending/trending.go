package trending

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"goodsmarket/internal/cache"
)

// TrendItem is one externally sourced "popular product" entry.
type TrendItem struct {
	Trend   string `json:"trend"`
	Image   string `json:"image"`
	Title   string `json:"title"`
	Price   string `json:"price"`
	Details string `json:"More details on Rozetka"`
}

// Fetcher returns up to MaxItems trending entries for a known tag.
type Fetcher interface {
	FetchTrending(ctx context.Context, tag string) ([]TrendItem, error)
}

const MaxItems = 10

var ErrUnknownTag = fmt.Errorf("trending: unknown tag")

// CatalogURLs maps the storefront's tag names to the external catalog pages
// they are enriched from.
var CatalogURLs = map[string]string{
	"Laptops":    "https://rozetka.com.ua/ua/notebooks/c80004/",
	"Earbuds":    "https://rozetka.com.ua/ua/headphones/c80027/21079=2731/",
	"Accesoires": "https://rozetka.com.ua/ua/naushniki-i-aksessuari/c4660594/",
	"Smartphone": "https://rozetka.com.ua/ua/mobile-phones/c80003/",
	"Watches":    "https://rozetka.com.ua/ua/nosimie-gadgeti/c4660587/",
}

// ParseFunc extracts trending entries from a catalog page. The extraction
// itself lives outside this package; HTTPFetcher only owns the transport.
type ParseFunc func(r io.Reader) ([]TrendItem, error)

type HTTPFetcher struct {
	Client *http.Client
	URLs   map[string]string
	Parse  ParseFunc
}

func NewHTTPFetcher(parse ParseFunc) *HTTPFetcher {
	if parse == nil {
		parse = func(io.Reader) ([]TrendItem, error) { return nil, nil }
	}
	return &HTTPFetcher{
		Client: &http.Client{Timeout: 10 * time.Second},
		URLs:   CatalogURLs,
		Parse:  parse,
	}
}

func (f *HTTPFetcher) FetchTrending(ctx context.Context, tag string) ([]TrendItem, error) {
	url, ok := f.URLs[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTag, tag)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	res, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trending: fetch %s: %w", tag, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trending: fetch %s: status %s", tag, res.Status)
	}

	items, err := f.Parse(res.Body)
	if err != nil {
		return nil, fmt.Errorf("trending: parse %s: %w", tag, err)
	}
	if len(items) > MaxItems {
		items = items[:MaxItems]
	}
	return items, nil
}

// CachedFetcher memoizes another fetcher per tag. Errors are never cached.
type CachedFetcher struct {
	next  Fetcher
	cache *cache.Cache[[]TrendItem]
}

func NewCachedFetcher(next Fetcher, ttl time.Duration) *CachedFetcher {
	return &CachedFetcher{
		next:  next,
		cache: cache.New[[]TrendItem](ttl),
	}
}

func (f *CachedFetcher) FetchTrending(ctx context.Context, tag string) ([]TrendItem, error) {
	if items, ok := f.cache.Get(tag); ok {
		return items, nil
	}
	items, err := f.next.FetchTrending(ctx, tag)
	if err != nil {
		return nil, err
	}
	f.cache.Set(tag, items)
	return items, nil
}
