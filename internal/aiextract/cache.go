package aiextract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/cleared-dev/stmtimport/internal/pdfstmt"
)

// Cache lifetimes for extractor replies.
const (
	DefaultCacheExpiration = 24 * time.Hour
	CacheCleanupInterval   = time.Hour
)

// CachedExtractor remembers successful replies keyed by prompt version and
// statement text. Failed calls are not cached.
type CachedExtractor struct {
	next  pdfstmt.Extractor
	cache *cache.Cache
}

// NewCached wraps next with an in-memory reply cache.
func NewCached(next pdfstmt.Extractor, expiration time.Duration) *CachedExtractor {
	return &CachedExtractor{
		next:  next,
		cache: cache.New(expiration, CacheCleanupInterval),
	}
}

// Extract implements pdfstmt.Extractor.
func (c *CachedExtractor) Extract(ctx context.Context, text string) (string, error) {
	key := cacheKey(text)
	if v, ok := c.cache.Get(key); ok {
		return v.(string), nil
	}
	reply, err := c.next.Extract(ctx, text)
	if err != nil {
		return "", err
	}
	c.cache.Set(key, reply, cache.DefaultExpiration)
	return reply, nil
}

// Len returns the number of cached replies.
func (c *CachedExtractor) Len() int { return c.cache.ItemCount() }

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(PromptVersion + "\x00" + text))
	return hex.EncodeToString(sum[:])
}
