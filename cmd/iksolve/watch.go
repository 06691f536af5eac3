// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"cogentcore.org/ik/base/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// watch solves the given rig file, and solves it again every time it is
// written, until the context is done. Errors in the rig are logged.
func watch(ctx context.Context, filename string, c *Config, w io.Writer) error {
	wt, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer wt.Close()
	// the directory is watched to see files replaced by editors
	if err := wt.Add(filepath.Dir(filename)); err != nil {
		return err
	}
	errors.Log(solve(filename, c, w))
	target := filepath.Clean(filename)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-wt.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			slog.Info("watch: changed", "file", ev.Name, "op", ev.Op.String())
			errors.Log(solve(filename, c, w))
		case err, ok := <-wt.Errors:
			if !ok {
				return nil
			}
			slog.Error("watch", "err", err)
		}
	}
}

func newWatchCmd() *cobra.Command {
	c := &Config{}
	c.Defaults()
	var file string
	cmd := &cobra.Command{
		Use:   "watch <rig>",
		Short: "Solve a rig every time its file changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(cmd, c, file)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return watch(ctx, args[0], cfg, cmd.OutOrStdout())
		},
	}
	c.addFlags(cmd, &file)
	return cmd
}
