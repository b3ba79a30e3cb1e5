package geo

import (
	"context"
	"strings"

	"github.com/maypok86/otter"
)

const cacheCapacity = 10_000

// CachedGeocoder memoizes lookups process-wide. The cache is not an
// authoritative store: a miss only costs one extra external lookup, and
// concurrent lookups for the same key may race with last-writer-wins.
type CachedGeocoder struct {
	inner Geocoder
	cache otter.Cache[string, Coordinates]
}

func NewCachedGeocoder(inner Geocoder) (*CachedGeocoder, error) {
	cache, err := otter.MustBuilder[string, Coordinates](cacheCapacity).Build()
	if err != nil {
		return nil, err
	}
	return &CachedGeocoder{inner: inner, cache: cache}, nil
}

func (g *CachedGeocoder) Geocode(ctx context.Context, address string) (Coordinates, error) {
	key := NormalizeAddress(address)
	if coords, ok := g.cache.Get(key); ok {
		return coords, nil
	}

	coords, err := g.inner.Geocode(ctx, key)
	if err != nil {
		return Coordinates{}, err
	}

	g.cache.Set(key, coords)
	return coords, nil
}

// NormalizeAddress lowercases and collapses whitespace so trivially
// different spellings share a cache entry.
func NormalizeAddress(address string) string {
	return strings.Join(strings.Fields(strings.ToLower(address)), " ")
}
