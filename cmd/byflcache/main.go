// Copyright (C) 2024  Eric Anger <eanger@gmail.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/datawire/dlib/dlog"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/eanger/byfl/lib/cachemodel"
)

func main() {
	logLevel := logLevelFlag{Level: dlog.LogLevelInfo}
	var lineSize uint64
	var simulate []string
	var simulateSize int

	cmd := &cobra.Command{
		Use:   "byflcache TRACE-FILE",
		Short: "Replay a memory-reference trace through the LRU stack-distance model",
		Args:  cobra.ExactArgs(1),

		SilenceErrors: true,
		SilenceUsage:  true,

		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logrus.New()
			lvl, err := logrus.ParseLevel(logLevel.String())
			if err != nil {
				lvl = logrus.InfoLevel
			}
			logger.SetLevel(lvl)
			ctx := dlog.WithLogger(context.Background(), dlog.WrapLogrus(logger))

			return run(ctx, args[0], lineSize, simulate, simulateSize, cmd.OutOrStdout())
		},
	}
	cmd.PersistentFlags().Var(&logLevel, "verbosity", "log verbosity: error, warn, info, debug, or trace")
	cmd.PersistentFlags().Uint64Var(&lineSize, "line-size", cachemodel.DefaultLineSize, "cache line size in bytes (power of two)")
	cmd.PersistentFlags().StringSliceVar(&simulate, "simulate", nil,
		fmt.Sprintf("also replay the trace through one or more fixed-capacity backends for comparison (%v)", sortedBackendNames()))
	cmd.PersistentFlags().IntVar(&simulateSize, "simulate-size", 1024, "resident-line capacity for --simulate backends")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, tracePath string, lineSize uint64, simulateBackends []string, simulateSize int, out io.Writer) error {
	f, err := os.Open(tracePath)
	if err != nil {
		return err
	}
	defer f.Close()

	entries, err := readTrace(f)
	if err != nil {
		return err
	}
	dlog.Infof(ctx, "loaded %d trace entries from %s", len(entries), tracePath)

	cachemodel.Initialize(lineSize)
	for _, e := range entries {
		cachemodel.TouchCache(e.base, e.bytes)
	}

	printReport(out, report{
		accesses:      cachemodel.CacheAccesses(),
		coldMisses:    cachemodel.ColdMisses(),
		splitAccesses: cachemodel.SplitAccesses(),
		hits:          cachemodel.CacheHits(),
	})

	if len(simulateBackends) > 0 {
		stats, err := simulate(entries, lineSize, simulateBackends, simulateSize)
		if err != nil {
			return err
		}
		printSimulation(func(format string, args ...interface{}) { fmt.Fprintf(out, format, args...) }, simulateSize, stats)
	}
	return nil
}
