package application

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dfryer1193/newsroom/article/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	defaultLookupTimeout     = 5 * time.Second
	defaultLookupConcurrency = 8
)

const (
	lookupByID      = "id"
	lookupByURL     = "url"
	lookupByArticle = "article"
)

// FeaturedImageRef holds the optional featured image hints stored on an article.
type FeaturedImageRef struct {
	FeaturedImageID string
	LegacyImageURL  string
}

// ImageResolver resolves image references through an ImageCache.
// Lookup failures never reach the caller: a record that cannot be resolved is nil.
type ImageResolver struct {
	repo          domain.ImageRepository
	cache         *ImageCache
	metrics       *ResolverMetrics
	lookupTimeout time.Duration
	concurrency   int
}

// ImageResolverOption customises an ImageResolver.
type ImageResolverOption func(*ImageResolver)

// WithLookupTimeout bounds each store lookup. Timeouts count as lookup failures.
func WithLookupTimeout(d time.Duration) ImageResolverOption {
	return func(r *ImageResolver) {
		r.lookupTimeout = d
	}
}

// WithConcurrency limits the number of in-flight lookups in GetManyByIDs.
func WithConcurrency(n int) ImageResolverOption {
	return func(r *ImageResolver) {
		r.concurrency = n
	}
}

func WithMetrics(m *ResolverMetrics) ImageResolverOption {
	return func(r *ImageResolver) {
		r.metrics = m
	}
}

func NewImageResolver(repo domain.ImageRepository, cache *ImageCache, opts ...ImageResolverOption) *ImageResolver {
	if cache == nil {
		cache = NewImageCache()
	}
	r := &ImageResolver{
		repo:          repo,
		cache:         cache,
		lookupTimeout: defaultLookupTimeout,
		concurrency:   defaultLookupConcurrency,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetByID returns the image with id, or nil if it is absent or the lookup failed.
func (r *ImageResolver) GetByID(ctx context.Context, id string) *domain.ImageRecord {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}

	if lookup, ok := r.cache.LookupByID(id); ok {
		r.metrics.cacheLookup(lookupByID, true, lookup.IsFound())
		return lookup.Record()
	}
	r.metrics.cacheLookup(lookupByID, false, false)

	record, err := r.lookup(ctx, lookupByID, func(ctx context.Context) (*domain.ImageRecord, error) {
		return r.repo.GetImage(ctx, id)
	})
	switch {
	case errors.Is(err, domain.ErrImageNotFound):
		r.cache.StoreAbsentID(id)
		return nil
	case err != nil:
		log.Warn().Err(err).Str("imageId", id).Msg("Failed to look up image by id")
		return nil
	}

	r.cache.StoreFound(record)
	return record
}

// GetByURL returns the first image stored with url, or nil.
func (r *ImageResolver) GetByURL(ctx context.Context, url string) *domain.ImageRecord {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil
	}

	if lookup, ok := r.cache.LookupByURL(url); ok {
		r.metrics.cacheLookup(lookupByURL, true, lookup.IsFound())
		return lookup.Record()
	}
	r.metrics.cacheLookup(lookupByURL, false, false)

	record, err := r.lookup(ctx, lookupByURL, func(ctx context.Context) (*domain.ImageRecord, error) {
		return r.repo.FindImageByURL(ctx, url)
	})
	switch {
	case errors.Is(err, domain.ErrImageNotFound):
		r.cache.StoreAbsentURL(url)
		return nil
	case err != nil:
		log.Warn().Err(err).Str("url", url).Msg("Failed to look up image by url")
		return nil
	}

	r.cache.StoreFound(record)
	return record
}

// FindLinkedForArticle returns one image linked to the article, or nil.
// Article links change often, so the query itself is never memoized.
func (r *ImageResolver) FindLinkedForArticle(ctx context.Context, articleID string) *domain.ImageRecord {
	if strings.TrimSpace(articleID) == "" {
		return nil
	}

	record, err := r.lookup(ctx, lookupByArticle, func(ctx context.Context) (*domain.ImageRecord, error) {
		return r.repo.FindImageLinkedToArticle(ctx, articleID)
	})
	if err != nil {
		if !errors.Is(err, domain.ErrImageNotFound) {
			log.Warn().Err(err).Str("articleId", articleID).Msg("Failed to look up image linked to article")
		}
		return nil
	}

	r.cache.StoreFound(record)
	return record
}

// ResolveFeaturedImage picks an article's featured image: the explicit featured id,
// then any image linked to the article, then the legacy image url.
func (r *ImageResolver) ResolveFeaturedImage(ctx context.Context, articleID string, ref FeaturedImageRef) *domain.ImageRecord {
	if ref.FeaturedImageID != "" {
		if record := r.GetByID(ctx, ref.FeaturedImageID); record != nil {
			return record
		}
	}

	if record := r.FindLinkedForArticle(ctx, articleID); record != nil {
		return record
	}

	if ref.LegacyImageURL != "" {
		if record := r.GetByURL(ctx, ref.LegacyImageURL); record != nil {
			return record
		}
	}

	return nil
}

// GetManyByIDs resolves ids concurrently, omitting ids that resolve to nothing.
// One failed lookup never affects the others.
func (r *ImageResolver) GetManyByIDs(ctx context.Context, ids []string) map[string]*domain.ImageRecord {
	result := make(map[string]*domain.ImageRecord, len(ids))
	if len(ids) == 0 {
		return result
	}

	var mu sync.Mutex
	var g errgroup.Group
	if r.concurrency > 0 {
		g.SetLimit(r.concurrency)
	}

	for _, id := range ids {
		g.Go(func() error {
			record := r.GetByID(ctx, id)
			if record == nil {
				return nil
			}
			mu.Lock()
			result[id] = record
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return result
}

// Prime stores records freshly read from the store, replacing older entries.
func (r *ImageResolver) Prime(records []*domain.ImageRecord) {
	for _, record := range records {
		r.cache.StoreFound(record)
	}
}

// Invalidate drops cached lookups for the image id.
func (r *ImageResolver) Invalidate(id string) {
	r.cache.Invalidate(id)
}

// InvalidateURL drops the cached lookup for url.
func (r *ImageResolver) InvalidateURL(url string) {
	r.cache.InvalidateURL(url)
}

// Reset drops every cached lookup.
func (r *ImageResolver) Reset() {
	r.cache.Reset()
}

func (r *ImageResolver) lookup(
	ctx context.Context,
	kind string,
	fn func(ctx context.Context) (*domain.ImageRecord, error),
) (*domain.ImageRecord, error) {
	if r.lookupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.lookupTimeout)
		defer cancel()
	}

	started := time.Now()
	record, err := fn(ctx)
	if err == nil && record == nil {
		err = domain.ErrImageNotFound
	}

	switch {
	case err == nil:
		r.metrics.storeLookup(kind, "found", started)
	case errors.Is(err, domain.ErrImageNotFound):
		r.metrics.storeLookup(kind, "not_found", started)
	default:
		r.metrics.storeLookup(kind, "error", started)
	}

	return record, err
}
