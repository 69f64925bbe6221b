// Copyright (C) 2024  Eric Anger <eanger@gmail.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package simulator

import (
	"github.com/dgraph-io/ristretto/v2"
)

// Ristretto is a Backend implemented atop github.com/dgraph-io/ristretto,
// a concurrent cache using the TinyLFU admission policy rather than
// LRU or ARC. It exists to let callers contrast the reuse-distance
// model's LRU-only projection against a cache with a fundamentally
// different, frequency-aware admission and eviction strategy.
//
// Ristretto applies Set asynchronously, so Access calls Wait to make
// each reference immediately observable to the next one -- trading
// Ristretto's usual throughput advantage for the deterministic,
// single-threaded replay this simulator needs.
type Ristretto struct {
	inner *ristretto.Cache[uint64, struct{}]
}

// NewRistretto constructs a Backend with room for approximately size
// resident lines, each costed at 1.
func NewRistretto(size int) *Ristretto {
	inner, err := ristretto.NewCache(&ristretto.Config[uint64, struct{}]{
		NumCounters: int64(size) * 10,
		MaxCost:     int64(size),
		BufferItems: 64,
		// Without this, ristretto adds its own per-item overhead to
		// every cost, and MaxCost would hold far fewer than size lines.
		IgnoreInternalCost: true,
	})
	if err != nil {
		panic(err)
	}
	return &Ristretto{inner: inner}
}

// Access records a reference to line, returning whether it was
// already resident in the cache.
func (b *Ristretto) Access(line uint64) bool {
	if _, found := b.inner.Get(line); found {
		return true
	}
	b.inner.Set(line, struct{}{}, 1)
	b.inner.Wait()
	return false
}
