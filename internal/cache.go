package internal

import (
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	// cacheTTL is how long a feature-info response stays valid. Expired
	// entries are dropped lazily on the next lookup.
	cacheTTL = 30 * time.Second
	// cacheSize bounds the cache; the session only ever touches a handful
	// of coordinates, so evictions are rare.
	cacheSize = 256
)

// queryKind tags cache entries so that aviation and protected-area lookups
// at the same coordinate never collide.
type queryKind string

const (
	kindAviation  queryKind = "aviation"
	kindProtected queryKind = "protected"
)

// responseCache memoizes per-service query results for a short window so
// that rapid pin dragging and the perimeter scan don't hammer the upstream
// services with identical requests.
type responseCache struct {
	aviation  *expirable.LRU[string, AviationResult]
	protected *expirable.LRU[string, ProtectedAreaResult]
}

func newResponseCache(ttl time.Duration) *responseCache {
	return &responseCache{
		aviation:  expirable.NewLRU[string, AviationResult](cacheSize, nil, ttl),
		protected: expirable.NewLRU[string, ProtectedAreaResult](cacheSize, nil, ttl),
	}
}

// cacheKey folds every parameter that distinguishes two feature-info queries
// into one string. Coordinates are rounded to five decimal places, roughly
// one meter, so that sub-meter jitter between queries shares an entry.
func cacheKey(kind queryKind, baseURL, layer, crs string, lat, lon, boxHalfMeters float64) string {
	return fmt.Sprintf("%s|%s|%s|%s|%.5f|%.5f|%.0f",
		kind, baseURL, layer, crs, lat, lon, boxHalfMeters)
}
