// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"log/slog"

	"cogentcore.org/ik/rig"
	"github.com/spf13/cobra"
)

// solve opens the given rig file, runs the configured number of frames,
// and writes the report.
func solve(filename string, c *Config, w io.Writer) error {
	rg, err := rig.Open(filename)
	if err != nil {
		return err
	}
	steps := 0
	for range c.Frames {
		steps += rg.Update(c.DeltaTime)
	}
	slog.Info("solved", "rig", rg.Desc.Name, "frames", c.Frames, "steps", steps)
	write, err := formatter(c.Format)
	if err != nil {
		return err
	}
	return write(newReport(rg, c.Frames, steps, c.Joints), w)
}

func newSolveCmd() *cobra.Command {
	c := &Config{}
	c.Defaults()
	var file string
	cmd := &cobra.Command{
		Use:   "solve <rig>",
		Short: "Solve a rig and print the joint poses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(cmd, c, file)
			if err != nil {
				return err
			}
			return solve(args[0], cfg, cmd.OutOrStdout())
		},
	}
	c.addFlags(cmd, &file)
	return cmd
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <rig>...",
		Short: "Check that rigs can be built",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var errs []error
			for _, fn := range args {
				rg, err := rig.Open(fn)
				if err != nil {
					slog.Error("check", "file", fn, "err", err)
					errs = append(errs, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: rig %q: %d joints, %d solvers\n", fn, rg.Desc.Name, rg.Skeleton.Len(), len(rg.Solvers()))
			}
			if len(errs) > 0 {
				return fmt.Errorf("%d of %d rigs failed", len(errs), len(args))
			}
			return nil
		},
	}
}
