// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import (
	"log/slog"

	"cogentcore.org/ik/base/ordmap"
)

// Group runs a named set of updaters in the order they were added,
// which must be parents before children for updaters acting on
// hierarchically related bones.
type Group struct {

	// TimeStep is the fixed time step in seconds. At 0 the updaters
	// step once on every call to [Group.Update]. Otherwise elapsed time
	// is accumulated and the updaters step once per full TimeStep.
	TimeStep float64

	// MaxSteps is the maximum number of steps per call to [Group.Update]
	// with a fixed TimeStep. Any further accumulated time is dropped.
	MaxSteps int `default:"4"`

	// FixTransforms resets each updater that is a [Fixer] to its setup
	// pose before every step, for hosts that do not animate the bones.
	FixTransforms bool

	updaters *ordmap.Map[string, Updater]

	// accumulated unsimulated time
	accum float64
}

// NewGroup returns a new empty group.
func NewGroup() *Group {
	return &Group{MaxSteps: 4, updaters: ordmap.New[string, Updater]()}
}

// Add adds the given updater under the given name, returning an error if
// the name is already used.
func (gp *Group) Add(name string, u Updater) error {
	if gp.updaters == nil {
		gp.updaters = ordmap.New[string, Updater]()
	}
	return gp.updaters.AddNew(name, u)
}

// Updater returns the updater with the given name, if any.
func (gp *Group) Updater(name string) (Updater, bool) {
	if gp.updaters == nil {
		return nil, false
	}
	return gp.updaters.ValueByKeyTry(name)
}

// Names returns the names of the updaters in update order.
func (gp *Group) Names() []string {
	if gp.updaters == nil {
		return nil
	}
	return gp.updaters.Keys()
}

// Len returns the number of updaters.
func (gp *Group) Len() int {
	return gp.updaters.Len()
}

// Update advances the group by dt seconds and returns the number of
// steps that were run.
func (gp *Group) Update(dt float64) int {
	if gp.TimeStep <= 0 {
		gp.Step()
		return 1
	}
	if dt > 0 {
		gp.accum += dt
	}
	steps := 0
	mx := max(gp.MaxSteps, 1)
	for gp.accum >= gp.TimeStep && steps < mx {
		gp.Step()
		gp.accum -= gp.TimeStep
		steps++
	}
	if steps == mx && gp.accum >= gp.TimeStep {
		slog.Debug("solver.Group: dropping time", "seconds", gp.accum)
		gp.accum = 0
	}
	return steps
}

// Step runs every updater once, in order.
func (gp *Group) Step() {
	if gp.updaters == nil {
		return
	}
	if gp.FixTransforms {
		for _, u := range gp.updaters.All() {
			if f, ok := u.(Fixer); ok {
				f.FixTransforms()
			}
		}
	}
	for _, u := range gp.updaters.All() {
		u.Update()
	}
}
