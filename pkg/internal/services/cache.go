package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	localCache "git.solsynth.dev/hypernet/polls/pkg/internal/cache"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/marshaler"
	"github.com/eko/gocache/lib/v4/store"
	"github.com/rs/zerolog/log"
)

const viewCacheExpiration = 10 * time.Minute

// viewGenerations counts invalidations per key. A read captures the
// generation before touching the database and only keeps its cache write
// when no invalidation happened in between.
var (
	viewGenerations     = make(map[string]uint64)
	viewGenerationsLock sync.Mutex
)

func viewGeneration(key string) uint64 {
	viewGenerationsLock.Lock()
	defer viewGenerationsLock.Unlock()
	return viewGenerations[key]
}

func bumpViewGeneration(key string) {
	viewGenerationsLock.Lock()
	defer viewGenerationsLock.Unlock()
	viewGenerations[key]++
}

func GetPollCacheKey(id string) string {
	return fmt.Sprintf("poll#%s", id)
}

func GetOwnedPollsCacheKey(accountID string) string {
	return fmt.Sprintf("polls-owned#%s", accountID)
}

func viewCache() *marshaler.Marshaler {
	if localCache.S == nil {
		return nil
	}
	return marshaler.New(cache.New[any](localCache.S))
}

func getCachedView[T any](key string) (T, bool) {
	var out T
	marshal := viewCache()
	if marshal == nil {
		return out, false
	}
	raw, err := marshal.Get(context.Background(), key, new(T))
	if err != nil {
		return out, false
	}
	if val, ok := raw.(*T); ok && val != nil {
		return *val, true
	}
	return out, false
}

// setCachedView stores value unless key was invalidated after generation was taken.
func setCachedView(key string, value any, generation uint64) {
	marshal := viewCache()
	if marshal == nil {
		return
	}
	ctx := context.Background()
	if err := marshal.Set(
		ctx,
		key,
		value,
		store.WithExpiration(viewCacheExpiration),
	); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("Unable to cache view...")
		return
	}
	// An invalidation that ran before the write above would be undone by it.
	if viewGeneration(key) != generation {
		_ = marshal.Delete(ctx, key)
	}
}

func invalidateView(key string) {
	bumpViewGeneration(key)
	if marshal := viewCache(); marshal != nil {
		_ = marshal.Delete(context.Background(), key)
	}
}

// InvalidatePollViews drops the cached poll page and the owner's listing.
func InvalidatePollViews(pollID, ownerID string) {
	if len(pollID) > 0 {
		invalidateView(GetPollCacheKey(pollID))
	}
	if len(ownerID) > 0 {
		invalidateView(GetOwnedPollsCacheKey(ownerID))
	}
}
