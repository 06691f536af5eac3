// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rig hosts IK solvers on a skeleton of named joints. A rig is
// built from a [Desc], typically loaded from a TOML, YAML or JSON file,
// and solved with [Rig.Update]. Each solver reads its chain from the
// current skeleton pose and writes the solved pose back, in order, so
// that later solvers see the results of earlier ones.
package rig

import (
	"fmt"
	"log/slog"

	"cogentcore.org/ik/base/ordmap"
	"cogentcore.org/ik/ground"
	"cogentcore.org/ik/solver"
	"cogentcore.org/ik/spatial"
)

// GroundName is the name of the grounder in the solver group.
const GroundName = "ground"

// Rig is a skeleton with solvers.
type Rig struct {

	// Desc is the description the rig was built from.
	Desc *Desc

	// Skeleton is the skeleton.
	Skeleton *Skeleton

	// Group runs the grounder and the solvers in order.
	Group *solver.Group

	// Grounder is the grounder, if any.
	Grounder *ground.Grounder

	bindings *ordmap.Map[string, binding]
}

// New returns a new rig built from a copy of the given description.
func New(d *Desc) (*Rig, error) {
	d, err := d.Clone()
	if err != nil {
		return nil, fmt.Errorf("rig: %w", err)
	}
	bd := &builder{desc: d}
	if err := bd.skeleton(); err != nil {
		return nil, err
	}
	rg := &Rig{Desc: d, Skeleton: bd.sk, Group: solver.NewGroup(), bindings: ordmap.New[string, binding]()}
	rg.Group.TimeStep = d.TimeStep
	if d.MaxSteps > 0 {
		rg.Group.MaxSteps = d.MaxSteps
	}
	rg.Group.FixTransforms = d.FixTransforms
	solvers := map[string]binding{}
	for i := range d.Solvers {
		sd := &d.Solvers[i]
		if sd.Name == GroundName {
			return nil, fmt.Errorf("rig: solver name %q is reserved", GroundName)
		}
		b, err := bd.solver(sd)
		if err != nil {
			return nil, err
		}
		if err := rg.bindings.AddNew(sd.Name, b); err != nil {
			return nil, fmt.Errorf("rig: solver %q is defined more than once", sd.Name)
		}
		solvers[sd.Name] = b
	}
	if d.Grounder != nil {
		gb, err := bd.grounder(d.Grounder, solvers)
		if err != nil {
			return nil, err
		}
		rg.Grounder = gb.gr
		// grounder targets are offsets from the rest pose of the feet
		rg.Group.FixTransforms = true
		rg.Group.Add(GroundName, gb)
	}
	for name, b := range rg.bindings.All() {
		rg.Group.Add(name, b)
	}
	slog.Debug("rig: built", "name", d.Name, "joints", rg.Skeleton.Len(), "solvers", rg.bindings.Len())
	return rg, nil
}

// Open returns a new rig built from the given description file.
func Open(filename string) (*Rig, error) {
	d, err := OpenDesc(filename)
	if err != nil {
		return nil, err
	}
	return New(d)
}

// Update advances the rig by dt seconds and returns the number of solver
// steps that were run.
func (rg *Rig) Update(dt float64) int {
	if rg.Grounder != nil {
		switch {
		case rg.Group.TimeStep > 0:
			rg.Grounder.DeltaTime = rg.Group.TimeStep
		case dt > 0:
			rg.Grounder.DeltaTime = dt
		}
	}
	return rg.Group.Update(dt)
}

// Reset returns the skeleton to the rest pose and clears the grounder.
func (rg *Rig) Reset() {
	rg.Skeleton.Reset()
	if rg.Grounder != nil {
		rg.Grounder.Reset()
	}
}

// Solvers returns the solver names in update order.
func (rg *Rig) Solvers() []string {
	return rg.bindings.Keys()
}

// State returns the state of the last update of the named solver.
func (rg *Rig) State(name string) (solver.State, bool) {
	b, ok := rg.bindings.ValueByKeyTry(name)
	if !ok {
		return solver.Idle, false
	}
	return b.State(), true
}

// Solver returns the named single chain solver, if any.
func (rg *Rig) Solver(name string) (solver.Solver, bool) {
	b, ok := rg.bindings.ValueByKeyTry(name)
	if !ok {
		return nil, false
	}
	sb, ok := b.(*single)
	if !ok {
		return nil, false
	}
	return sb.link.solver, true
}

// Pose returns the current world pose of the named joint.
func (rg *Rig) Pose(joint string) (spatial.Pose, bool) {
	j, ok := rg.Skeleton.Index(joint)
	if !ok {
		return spatial.Pose{}, false
	}
	return rg.Skeleton.World(j), true
}
