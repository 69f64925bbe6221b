// Copyright (C) 2024  Eric Anger <eanger@gmail.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunEndToEnd(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "trace")
	require.NoError(t, err)
	_, err = f.WriteString("1 0x0 8\n1 0x40 8\n1 0x0 8\n1 0x40 8\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	var out bytes.Buffer
	err = run(context.Background(), f.Name(), 64, nil, 0, &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "cache accesses:  4")
	assert.Contains(t, out.String(), "cold misses:     2")
}

func TestRunEndToEndWithSimulate(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "trace")
	require.NoError(t, err)
	_, err = f.WriteString("1 0x0 8\n1 0x40 8\n1 0x0 8\n1 0x40 8\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	var out bytes.Buffer
	err = run(context.Background(), f.Name(), 64, []string{"arc"}, 16, &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "simulated fixed-capacity backends at 16 lines:")
	assert.Contains(t, out.String(), "arc")
}

func TestRunRejectsUnknownSimulateBackend(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "trace")
	require.NoError(t, err)
	_, err = f.WriteString("1 0x0 8\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	var out bytes.Buffer
	err = run(context.Background(), f.Name(), 64, []string{"bogus"}, 16, &out)
	assert.Error(t, err)
}
