// Copyright (C) 2024  Eric Anger <eanger@gmail.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// traceEntry is one memory reference read from a trace file: an
// is_load flag (carried through for compatibility with instrumentation
// that records it, though the LRU core itself ignores it), a base
// address, and the number of bytes touched.
type traceEntry struct {
	isLoad      bool
	base, bytes uint64
}

// readTrace parses a trace file of the form emitted by the
// instrumentation runtime's memory-reference callbacks, one reference
// per line:
//
//	<0|1 is_load> <hex base_addr> <decimal num_bytes>
//
// Blank lines and lines starting with '#' are ignored.
func readTrace(r io.Reader) ([]traceEntry, error) {
	var entries []traceEntry
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entry, err := parseTraceLine(line)
		if err != nil {
			return nil, errors.Wrapf(err, "trace line %d", lineNo)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading trace")
	}
	return entries, nil
}

func parseTraceLine(line string) (traceEntry, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return traceEntry{}, errors.Errorf("expected 3 fields, got %d: %q", len(fields), line)
	}

	isLoadNum, err := strconv.ParseUint(fields[0], 10, 8)
	if err != nil {
		return traceEntry{}, errors.Wrap(err, "is_load field")
	}

	base, err := strconv.ParseUint(strings.TrimPrefix(fields[1], "0x"), 16, 64)
	if err != nil {
		return traceEntry{}, errors.Wrap(err, "base_addr field")
	}

	numBytes, err := strconv.ParseUint(fields[2], 10, 64)
	if err != nil {
		return traceEntry{}, errors.Wrap(err, "num_bytes field")
	}

	return traceEntry{isLoad: isLoadNum == 1, base: base, bytes: numBytes}, nil
}
