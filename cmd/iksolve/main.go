// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command iksolve loads rig files, solves them, and prints the
// resulting joint poses.
package main

import (
	"os"

	"cogentcore.org/ik/logx"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// flags are the verbosity flags shared by all commands.
type flags struct {
	v, vv, q bool
}

func newRootCmd() *cobra.Command {
	fl := &flags{}
	root := &cobra.Command{
		Use:           "iksolve",
		Short:         "Solve inverse kinematics rigs",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logx.UserLevel = logx.LevelFromFlags(fl.vv, fl.v, fl.q)
			logx.SetDefaultLogger()
		},
	}
	pf := root.PersistentFlags()
	pf.BoolVarP(&fl.v, "verbose", "v", false, "show info messages")
	pf.BoolVar(&fl.vv, "vv", false, "show debug messages")
	pf.BoolVarP(&fl.q, "quiet", "q", false, "only show errors")
	root.AddCommand(newSolveCmd(), newCheckCmd(), newWatchCmd())
	return root
}
