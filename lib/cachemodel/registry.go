// Copyright (C) 2024  Eric Anger <eanger@gmail.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package cachemodel

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// ThreadRegistry is a process-wide, mutex-protected list of every
// PerThreadModel that has been registered. A thread registers its
// model exactly once, on its first reference; thereafter the model is
// looked up by goroutine ID. Every lookup, not only the first, takes
// the registry mutex; a PerThreadModel itself is mutated only by its
// owning goroutine and needs no lock of its own.
//
// The registry never removes a model once added; models live for the
// lifetime of the process, or until a fresh ThreadRegistry replaces
// this one (as Initialize does).
type ThreadRegistry struct {
	mu       sync.Mutex
	byGoID   map[int64]*PerThreadModel
	models   []*PerThreadModel
	lineSize uint64
}

// NewThreadRegistry constructs an empty registry configured with the
// given line size; every PerThreadModel it registers is constructed
// with that line size.
func NewThreadRegistry(lineSize uint64) *ThreadRegistry {
	return &ThreadRegistry{
		byGoID:   make(map[int64]*PerThreadModel),
		lineSize: lineSize,
	}
}

// ModelForCurrentGoroutine returns the PerThreadModel owned by the
// calling goroutine, registering a fresh one on first call from that
// goroutine. It holds the registry mutex for the lookup on every call.
func (r *ThreadRegistry) ModelForCurrentGoroutine() (*PerThreadModel, error) {
	gid := goroutineID()

	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.byGoID[gid]; ok {
		return m, nil
	}
	m, err := NewPerThreadModel(r.lineSize)
	if err != nil {
		return nil, err
	}
	r.byGoID[gid] = m
	r.models = append(r.models, m)
	return m, nil
}

// Models returns a snapshot of every registered model. Callers must
// only call this once all instrumented goroutines have quiesced; the
// registry does not itself detect quiescence.
func (r *ThreadRegistry) Models() []*PerThreadModel {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*PerThreadModel, len(r.models))
	copy(out, r.models)
	return out
}

// goroutineID extracts the calling goroutine's ID by parsing the
// first line of its own stack trace ("goroutine 123 [running]:"). The
// Go runtime exposes no supported API for this; parsing runtime.Stack
// output is the portable fallback used by race-detection and
// goroutine-local-storage tooling, at the cost of one allocation per
// call.
func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	fields := bytes.Fields(buf[:n])
	if len(fields) < 2 {
		return 0
	}
	id, err := strconv.ParseInt(string(fields[1]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
