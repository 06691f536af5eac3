// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logx

import (
	"io"
	"log/slog"
	"os"

	"github.com/muesli/termenv"
)

// SetDefaultLogger sets the default [slog] logger to one that writes
// to [os.Stderr] at the current [UserLevel], with colored level names.
func SetDefaultLogger() {
	slog.SetDefault(slog.New(NewHandler(os.Stderr, UserLevel)))
}

// NewHandler returns a new text [slog.Handler] writing to the given writer
// that shows messages at or above the given level. Level names are colored
// when the writer is a terminal that supports it.
func NewHandler(w io.Writer, level slog.Level) slog.Handler {
	out := termenv.NewOutput(w)
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return a
			}
			switch a.Key {
			case slog.TimeKey:
				return slog.Attr{}
			case slog.LevelKey:
				lv, ok := a.Value.Any().(slog.Level)
				if !ok {
					return a
				}
				a.Value = slog.StringValue(LevelString(out, lv))
			}
			return a
		},
	})
}

// LevelString returns the name of the given level styled
// for the given output.
func LevelString(out *termenv.Output, level slog.Level) string {
	st := out.String(level.String())
	switch {
	case level >= slog.LevelError:
		st = st.Foreground(out.Color("1")).Bold()
	case level >= slog.LevelWarn:
		st = st.Foreground(out.Color("3"))
	case level >= slog.LevelInfo:
		st = st.Foreground(out.Color("4"))
	default:
		st = st.Foreground(out.Color("8"))
	}
	return st.String()
}
