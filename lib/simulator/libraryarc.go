// Copyright (C) 2024  Eric Anger <eanger@gmail.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package simulator

import (
	lru "github.com/hashicorp/golang-lru"
)

// LibraryARC is a Backend implemented atop github.com/hashicorp/golang-lru's
// ARC cache: an Adaptive Replacement policy, contrasted against the
// core model's LRU-only projection by tracking both a recency list and
// a frequency list rather than recency alone.
type LibraryARC struct {
	inner *lru.ARCCache
}

// NewLibraryARC constructs a Backend holding at most size resident
// lines.
func NewLibraryARC(size int) *LibraryARC {
	inner, err := lru.NewARC(size)
	if err != nil {
		panic(err)
	}
	return &LibraryARC{inner: inner}
}

// Access records a reference to line, returning whether it was
// already resident in the cache.
func (b *LibraryARC) Access(line uint64) bool {
	if b.inner.Contains(line) {
		b.inner.Get(line)
		return true
	}
	b.inner.Add(line, struct{}{})
	return false
}
