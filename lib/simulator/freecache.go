// Copyright (C) 2024  Eric Anger <eanger@gmail.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package simulator

import (
	"encoding/binary"

	"github.com/coocood/freecache"
)

// minFreeCacheBytes is the smallest capacity freecache.NewCache
// accepts; it shards internally and misbehaves below this.
const minFreeCacheBytes = 512 * 1024

// FreeCache is a Backend implemented atop github.com/coocood/freecache,
// a sharded, zero-GC-overhead byte-oriented cache. Unlike the other
// backends, its capacity is a byte budget rather than a line count, so
// its eviction boundary does not line up exactly with sizeLines --
// useful for observing how a real byte-budgeted cache's effective
// line capacity drifts from the nominal count under per-entry
// overhead.
type FreeCache struct {
	inner *freecache.Cache
}

// NewFreeCache constructs a Backend with a byte budget of 64 bytes per
// requested line, raised to minFreeCacheBytes when smaller. Below that
// floor (sizeLines under 8192) the cache holds many more than
// sizeLines lines.
func NewFreeCache(sizeLines int) *FreeCache {
	budget := sizeLines * 64
	if budget < minFreeCacheBytes {
		budget = minFreeCacheBytes
	}
	return &FreeCache{inner: freecache.NewCache(budget)}
}

// Access records a reference to line, returning whether it was
// already resident in the cache.
func (b *FreeCache) Access(line uint64) bool {
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], line)

	if _, err := b.inner.Get(key[:]); err == nil {
		return true
	}
	_ = b.inner.Set(key[:], nil, 0)
	return false
}
