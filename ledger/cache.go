package ledger

import (
	"fmt"

	"github.com/gaiax/go-gxcert/principal/address"
	"github.com/gaiax/go-gxcert/record"
	lru "github.com/hashicorp/golang-lru/v2"
)

var ProfileCacheSize = 256

// ProfileCache remembers the last profile read for an address. It is
// advisory: entries may be stale, and a fresh ledger read always replaces
// them.
type ProfileCache struct {
	data *lru.Cache[address.Address, record.Profile]
}

func (c *ProfileCache) Get(addr address.Address) (record.Profile, bool) {
	return c.data.Get(addr)
}

func (c *ProfileCache) Put(addr address.Address, p record.Profile) {
	c.data.Add(addr, p)
}

func (c *ProfileCache) Remove(addr address.Address) {
	c.data.Remove(addr)
}

func (c *ProfileCache) Len() int {
	return c.data.Len()
}

// NewProfileCache creates a new in memory LRU cache for profiles. The size
// parameter controls the maximum number of profiles that can be cached. Pass
// a value less than 1 to use the default cache size [ProfileCacheSize].
func NewProfileCache(size int) (*ProfileCache, error) {
	if size <= 0 {
		size = ProfileCacheSize
	}
	cache, err := lru.New[address.Address, record.Profile](size)
	if err != nil {
		return nil, fmt.Errorf("creating profile LRU: %w", err)
	}
	return &ProfileCache{data: cache}, nil
}
