package githubsync

import (
	"time"

	"github.com/dexcli/dex/internal/cache"
)

// IdentificationCache maps a local root task id to the GitHub issue
// number that mirrors it, built atop the project's generic TTL cache.
// spec.md §4.6's "identification cache" is rebuilt from the paginated
// dex-labeled issue listing whenever a root's lookup misses, then
// consulted before deciding to create a new issue; a TTL of 0 matches that usage,
// since there is nothing to expire between rebuilds.
type IdentificationCache struct {
	c *cache.Cache[int]
}

// NewIdentificationCache builds an empty cache with the given TTL. A
// TTL of 0 means entries never expire until Clear is called.
func NewIdentificationCache(ttl time.Duration) *IdentificationCache {
	return &IdentificationCache{c: cache.New[int](ttl, 0)}
}

func (ic *IdentificationCache) Get(rootID string) (int, bool) {
	return ic.c.Get(rootID)
}

func (ic *IdentificationCache) Set(rootID string, issueNumber int) {
	ic.c.Set(rootID, issueNumber)
}

func (ic *IdentificationCache) Clear() {
	ic.c.Clear()
}

func (ic *IdentificationCache) Len() int {
	return ic.c.Len()
}
