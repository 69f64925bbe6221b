// Copyright (C) 2024  Eric Anger <eanger@gmail.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"
	"strings"

	"github.com/datawire/dlib/dlog"
	"github.com/spf13/pflag"
)

// logLevelFlag adapts a dlog.LogLevel to the pflag.Value interface, so
// --verbosity can be set directly off the command line.
type logLevelFlag struct {
	Level dlog.LogLevel
}

var _ pflag.Value = (*logLevelFlag)(nil)

func (f *logLevelFlag) Type() string { return "loglevel" }

func (f *logLevelFlag) Set(str string) error {
	switch strings.ToLower(str) {
	case "error":
		f.Level = dlog.LogLevelError
	case "warn", "warning":
		f.Level = dlog.LogLevelWarn
	case "info":
		f.Level = dlog.LogLevelInfo
	case "debug":
		f.Level = dlog.LogLevelDebug
	case "trace":
		f.Level = dlog.LogLevelTrace
	default:
		return fmt.Errorf("invalid log level: %q", str)
	}
	return nil
}

func (f *logLevelFlag) String() string {
	switch f.Level {
	case dlog.LogLevelError:
		return "error"
	case dlog.LogLevelWarn:
		return "warn"
	case dlog.LogLevelInfo:
		return "info"
	case dlog.LogLevelDebug:
		return "debug"
	case dlog.LogLevelTrace:
		return "trace"
	default:
		return "info"
	}
}
