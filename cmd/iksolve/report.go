// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"cogentcore.org/ik/base/iox/jsonx"
	"cogentcore.org/ik/base/iox/tomlx"
	"cogentcore.org/ik/base/iox/yamlx"
	"cogentcore.org/ik/rig"
)

// Report is the result of solving a rig.
type Report struct {
	Rig     string
	Frames  int
	Steps   int
	Solvers []SolverReport
	Joints  []JointReport
}

// SolverReport is the state of one solver.
type SolverReport struct {
	Name  string
	State string
}

// JointReport is the world pose of one joint.
type JointReport struct {
	Name string
	Pos  rig.Vec
	Rot  rig.Vec
}

// newReport returns the report of the current pose of the given rig,
// with the given joints or all of them.
func newReport(rg *rig.Rig, frames, steps int, joints []string) *Report {
	rp := &Report{Rig: rg.Desc.Name, Frames: frames, Steps: steps}
	for _, name := range rg.Solvers() {
		st, _ := rg.State(name)
		rp.Solvers = append(rp.Solvers, SolverReport{Name: name, State: st.String()})
	}
	for _, jt := range rg.Skeleton.Joints {
		if len(joints) > 0 && !slices.Contains(joints, jt.Name) {
			continue
		}
		rp.Joints = append(rp.Joints, JointReport{Name: jt.Name, Pos: rig.VecOf(jt.World.Pos), Rot: rig.QuatOf(jt.World.Rot)})
	}
	return rp
}

// formatter returns the function that writes a report in the given format.
func formatter(format string) (func(rp *Report, w io.Writer) error, error) {
	switch format {
	case "table":
		return writeTable, nil
	case "json":
		return func(rp *Report, w io.Writer) error { return jsonx.Write(rp, w) }, nil
	case "toml":
		return func(rp *Report, w io.Writer) error { return tomlx.Write(rp, w) }, nil
	case "yaml":
		return func(rp *Report, w io.Writer) error { return yamlx.Write(rp, w) }, nil
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

func writeTable(rp *Report, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "rig %s: %d frames, %d steps\n", rp.Rig, rp.Frames, rp.Steps)
	for _, s := range rp.Solvers {
		fmt.Fprintf(tw, "solver\t%s\t%s\n", s.Name, s.State)
	}
	fmt.Fprintln(tw, "joint\tx\ty\tz\tw\tx\ty\tz")
	for _, j := range rp.Joints {
		fmt.Fprintf(tw, "%s", j.Name)
		for _, v := range slices.Concat(j.Pos, j.Rot) {
			fmt.Fprintf(tw, "\t%.4f", v)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
