// Copyright (C) 2024  Eric Anger <eanger@gmail.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceLinesExpandsStraddlingAccesses(t *testing.T) {
	t.Parallel()
	entries := []traceEntry{{base: 0, bytes: 8}, {base: 0, bytes: 128}}
	lines := traceLines(entries, 64)
	assert.Equal(t, []uint64{0, 0, 1, 2}, lines)
}

func TestSimulateUnknownBackend(t *testing.T) {
	t.Parallel()
	_, err := simulate(nil, 64, []string{"not-a-backend"}, 4)
	assert.Error(t, err)
}

func TestSimulateKnownBackends(t *testing.T) {
	t.Parallel()
	entries := []traceEntry{{base: 0, bytes: 8}, {base: 0, bytes: 8}}
	stats, err := simulate(entries, 64, []string{"arc", "ristretto"}, 4)
	require.NoError(t, err)
	require.Contains(t, stats, "arc")
	require.Contains(t, stats, "ristretto")
	assert.Equal(t, uint64(2), stats["arc"].Accesses)
}
