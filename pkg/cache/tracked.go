package cache

import (
	"context"
	"time"

	"github.com/matzehuels/treewalk/pkg/observability"
)

// tracked reports hits, misses and writes to the cache hooks.
type tracked struct {
	Cache
	keyType string
}

// Tracked wraps c so that every Get and Set is reported to
// [observability.Cache] under keyType.
func Tracked(c Cache, keyType string) Cache {
	return &tracked{Cache: c, keyType: keyType}
}

func (t *tracked) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := t.Cache.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, t.keyType)
		} else {
			observability.Cache().OnCacheMiss(ctx, t.keyType)
		}
	}
	return data, ok, err
}

func (t *tracked) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := t.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, t.keyType, len(data))
	return nil
}
