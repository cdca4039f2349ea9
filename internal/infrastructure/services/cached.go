package services

import (
	"context"
	stderrors "errors"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/ashishbaghudana/relna/internal/annotation"
	"github.com/ashishbaghudana/relna/internal/infrastructure/database/redis"
	"github.com/ashishbaghudana/relna/internal/infrastructure/monitoring/logging"
	"github.com/ashishbaghudana/relna/pkg/errors"
)

// ScopedService is the open/close lifecycle shared by the adapters.
type ScopedService interface {
	Open(ctx context.Context) error
	Close() error
}

// CacheMetrics counts cache outcomes. Implemented by the tagging metrics
// registry; a nil value disables counting.
type CacheMetrics interface {
	CountCache(result string)
}

type noopCacheMetrics struct{}

func (noopCacheMetrics) CountCache(string) {}

const (
	recognitionKeyPrefix   = "doc:"
	normalizationKeyPrefix = "norm:"
	ontologyKeyPrefix      = "go:"
)

// cachedLookup is the shared read-through logic for both id mappings.
// Known-absent ids are recorded as null entries so repeat misses do not
// hit the upstream service inside the cache's null TTL window.
type cachedLookup struct {
	cache   redis.Cache
	prefix  string
	ttl     time.Duration
	logger  logging.Logger
	metrics CacheMetrics
}

func (c *cachedLookup) lookup(
	ctx context.Context,
	ids mapset.Set[string],
	fetch func(context.Context, mapset.Set[string]) (map[string][]string, error),
) (map[string][]string, error) {
	result := make(map[string][]string, ids.Cardinality())
	missing := mapset.NewThreadUnsafeSet[string]()

	for id := range ids.Iter() {
		var vals []string
		err := c.cache.Get(ctx, c.prefix+id, &vals)
		switch {
		case err == nil:
			c.metrics.CountCache("hit")
			if len(vals) > 0 {
				result[id] = vals
			}
		case stderrors.Is(err, redis.ErrNullValue):
			// Known absent; resolved without contacting upstream.
			c.metrics.CountCache("hit")
		case stderrors.Is(err, redis.ErrCacheMiss):
			c.metrics.CountCache("miss")
			missing.Add(id)
		default:
			// Cache trouble degrades to a direct fetch.
			c.metrics.CountCache("error")
			c.logger.Warn("cache read failed", logging.String("key", c.prefix+id), logging.Err(err))
			missing.Add(id)
		}
	}

	if missing.Cardinality() == 0 {
		return result, nil
	}

	fetched, err := fetch(ctx, missing)
	if err != nil {
		return nil, err
	}

	for id := range missing.Iter() {
		key := c.prefix + id
		vals := fetched[id]
		if len(vals) == 0 {
			if err := c.cache.SetNull(ctx, key); err != nil {
				c.logger.Warn("cache write failed", logging.String("key", key), logging.Err(err))
			}
			continue
		}
		result[id] = vals
		if err := c.cache.Set(ctx, key, vals, c.ttl); err != nil {
			c.logger.Warn("cache write failed", logging.String("key", key), logging.Err(err))
		}
	}
	return result, nil
}

// CachedRecognizer is a read-through cache in front of a GeneRecognizer.
// Only by-id retrieval is cached; by-text submissions pass through, the
// text itself being an unbounded key.
type CachedRecognizer struct {
	inner  annotation.GeneRecognizer
	cache  redis.Cache
	ttl    time.Duration
	logger logging.Logger
}

// NewCachedRecognizer wraps inner with per-document caching. A zero ttl
// uses the cache's default.
func NewCachedRecognizer(inner annotation.GeneRecognizer, cache redis.Cache, ttl time.Duration, log logging.Logger) *CachedRecognizer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &CachedRecognizer{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: log.Named("doccache"),
	}
}

func (r *CachedRecognizer) FetchByText(ctx context.Context, text string) ([]annotation.GeneMention, error) {
	return r.inner.FetchByText(ctx, text)
}

// FetchByDocumentID serves recognition results from the cache, loading
// through the wrapped adapter on a miss. Concurrent misses for the same
// document collapse into a single upstream call.
func (r *CachedRecognizer) FetchByDocumentID(ctx context.Context, docID string) ([]annotation.GeneMention, error) {
	key := recognitionKeyPrefix + docID
	var mentions []annotation.GeneMention
	err := r.cache.GetOrSet(ctx, key, &mentions, r.ttl,
		func(ctx context.Context) (interface{}, error) {
			return r.inner.FetchByDocumentID(ctx, docID)
		})
	if err == nil {
		return mentions, nil
	}
	if cacheSideError(err) {
		// Cache trouble degrades to a direct fetch.
		r.logger.Warn("recognition cache unavailable", logging.String("key", key), logging.Err(err))
		return r.inner.FetchByDocumentID(ctx, docID)
	}
	return nil, err
}

// Open opens the wrapped adapter when it is a scoped service.
func (r *CachedRecognizer) Open(ctx context.Context) error {
	if s, ok := r.inner.(ScopedService); ok {
		return s.Open(ctx)
	}
	return nil
}

// Close closes the wrapped adapter when it is a scoped service.
func (r *CachedRecognizer) Close() error {
	if s, ok := r.inner.(ScopedService); ok {
		return s.Close()
	}
	return nil
}

// cacheSideError reports whether err originated in the cache layer rather
// than in the loader. Loader failures keep their adapter codes and must
// propagate.
func cacheSideError(err error) bool {
	switch errors.GetCode(err) {
	case errors.ErrCodeCacheError, errors.ErrCodeSerialization, errors.ErrCodeInternal:
		return true
	default:
		return false
	}
}

// CachedNormalizer is a read-through cache in front of an
// IdentifierNormalizer.
type CachedNormalizer struct {
	inner  annotation.IdentifierNormalizer
	lookup cachedLookup
}

// NewCachedNormalizer wraps inner with per-id caching. A zero ttl uses
// the cache's default.
func NewCachedNormalizer(inner annotation.IdentifierNormalizer, cache redis.Cache, ttl time.Duration, log logging.Logger, metrics CacheMetrics) *CachedNormalizer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = noopCacheMetrics{}
	}
	return &CachedNormalizer{
		inner: inner,
		lookup: cachedLookup{
			cache:   cache,
			prefix:  normalizationKeyPrefix,
			ttl:     ttl,
			logger:  log.Named("normcache"),
			metrics: metrics,
		},
	}
}

func (n *CachedNormalizer) Normalize(ctx context.Context, primaryIDs mapset.Set[string]) (map[string][]string, error) {
	if primaryIDs == nil || primaryIDs.Cardinality() == 0 {
		return map[string][]string{}, nil
	}
	return n.lookup.lookup(ctx, primaryIDs, n.inner.Normalize)
}

// Open opens the wrapped adapter when it is a scoped service.
func (n *CachedNormalizer) Open(ctx context.Context) error {
	if s, ok := n.inner.(ScopedService); ok {
		return s.Open(ctx)
	}
	return nil
}

// Close closes the wrapped adapter when it is a scoped service.
func (n *CachedNormalizer) Close() error {
	if s, ok := n.inner.(ScopedService); ok {
		return s.Close()
	}
	return nil
}

// CachedResolver is a read-through cache in front of an OntologyResolver.
type CachedResolver struct {
	inner  annotation.OntologyResolver
	lookup cachedLookup
}

// NewCachedResolver wraps inner with per-id caching. A zero ttl uses the
// cache's default.
func NewCachedResolver(inner annotation.OntologyResolver, cache redis.Cache, ttl time.Duration, log logging.Logger, metrics CacheMetrics) *CachedResolver {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = noopCacheMetrics{}
	}
	return &CachedResolver{
		inner: inner,
		lookup: cachedLookup{
			cache:   cache,
			prefix:  ontologyKeyPrefix,
			ttl:     ttl,
			logger:  log.Named("gocache"),
			metrics: metrics,
		},
	}
}

func (r *CachedResolver) Resolve(ctx context.Context, secondaryIDs mapset.Set[string]) (map[string][]string, error) {
	if secondaryIDs == nil || secondaryIDs.Cardinality() == 0 {
		return map[string][]string{}, nil
	}
	return r.lookup.lookup(ctx, secondaryIDs, r.inner.Resolve)
}

// Open opens the wrapped adapter when it is a scoped service.
func (r *CachedResolver) Open(ctx context.Context) error {
	if s, ok := r.inner.(ScopedService); ok {
		return s.Open(ctx)
	}
	return nil
}

// Close closes the wrapped adapter when it is a scoped service.
func (r *CachedResolver) Close() error {
	if s, ok := r.inner.(ScopedService); ok {
		return s.Close()
	}
	return nil
}
