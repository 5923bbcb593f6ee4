package wasm

import (
	"crypto/sha256"

	lru "github.com/hashicorp/golang-lru"

	"github.com/dusk-network/rusk-vm/config"
)

// Digest is a content hash of raw bytecode, used as half of the compiled
// module cache key (spec.md §4.B: "the store may cache compiled/instrumented
// modules keyed on (bytecode digest, schedule version)").
type Digest [32]byte

// DigestOf hashes raw bytecode. sha256 rather than the network's blake2b
// root hash: this digest never leaves the process or touches consensus
// state, it is a local compile cache key, so it is grounded on the
// standard library rather than on common.Root's hash choice.
func DigestOf(raw []byte) Digest {
	return sha256.Sum256(raw)
}

type cacheKey struct {
	digest  Digest
	version config.Version
}

// Cache is a bounded, process-local cache of compiled-and-instrumented
// modules, grounded on the teacher's use of hashicorp/golang-lru for its
// bloom-filter/state caches (core/bloom9.go's sibling caches in the wider
// eth-classic tree use the same library for bounded recent-item caches).
// Reusing a compiled module across schedule versions is unsound because
// instrumentation bakes in that schedule's costs and limits, hence the
// version half of the key.
type Cache struct {
	lru *lru.Cache
}

// NewCache builds a cache holding at most size compiled modules.
func NewCache(size int) (*Cache, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: c}, nil
}

// Get returns a previously compiled module for (digest, version), if any.
// Callers must not mutate the returned Module; Get returns the cached
// pointer directly, matching the teacher's bloom filter cache which also
// hands back shared references rather than copies.
func (c *Cache) Get(digest Digest, version config.Version) (*Module, bool) {
	v, ok := c.lru.Get(cacheKey{digest, version})
	if !ok {
		return nil, false
	}
	return v.(*Module), true
}

// Put stores a compiled module under (digest, version), evicting the least
// recently used entry if the cache is full.
func (c *Cache) Put(digest Digest, version config.Version, m *Module) {
	c.lru.Add(cacheKey{digest, version}, m)
}

// Len reports the number of cached modules.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Compile decodes, validates, and instruments raw bytecode, consulting and
// populating cache for (digest, sched.Version). This is the single entry
// point network deployment and vm execution use to turn bytecode into an
// executable Module (spec.md §4.B's full pipeline, steps 1-6).
func Compile(cache *Cache, raw []byte, sched *config.Schedule) (*Module, error) {
	digest := DigestOf(raw)
	if cache != nil {
		if m, ok := cache.Get(digest, sched.Version); ok {
			return m, nil
		}
	}

	m, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	if err := Validate(m, sched); err != nil {
		return nil, err
	}
	Instrument(m, sched)
	if err := Validate(m, sched); err != nil {
		return nil, err
	}

	if cache != nil {
		cache.Put(digest, sched.Version, m)
	}
	return m, nil
}
