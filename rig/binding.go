// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rig

import (
	"cogentcore.org/ik/chain"
	"cogentcore.org/ik/composer"
	"cogentcore.org/ik/ground"
	"cogentcore.org/ik/solver"
	"cogentcore.org/ik/spatial"
)

// binding connects a solver to the joints of a [Skeleton].
type binding interface {
	solver.Updater
	solver.Fixer

	// State returns the state of the last update.
	State() solver.State
}

// link maps the bones of one chain to skeleton joints.
type link struct {
	name   string
	solver solver.Solver
	joints []int
	bones  []*chain.Bone

	// target joint, or -1
	target int

	// first bone written back
	from int

	// grounded legs get their targets from the grounder
	grounded bool
}

// read sets the chain bones, the chain root and the target from the
// current skeleton pose.
func (l *link) read(sk *Skeleton) {
	c := l.solver.Chain()
	if c == nil {
		return
	}
	for i, j := range l.joints {
		c.Bones[i].SetPose(sk.World(j))
	}
	c.Root = sk.ParentWorld(l.joints[0])
	if l.target >= 0 && !l.grounded {
		t := l.solver.Target()
		w := sk.World(l.target)
		t.Pos, t.Rot = w.Pos, w.Rot
		l.solver.SetTarget(t)
	}
}

// write sets the joints from the solved chain bones, parents first.
func (l *link) write(sk *Skeleton) {
	c := l.solver.Chain()
	if c == nil {
		return
	}
	for i := l.from; i < len(l.joints); i++ {
		sk.SetWorld(l.joints[i], c.Bones[i].Pose())
	}
}

// rest returns the joints of the chain to the rest pose.
func (l *link) rest(sk *Skeleton) {
	for _, j := range l.joints[l.from:] {
		sk.SetWorld(j, sk.Joints[j].Rest)
	}
	l.solver.FixTransforms()
}

// single binds a single chain solver.
type single struct {
	sk   *Skeleton
	link *link
}

func (sb *single) Update() {
	sb.link.read(sb.sk)
	sb.link.solver.Update()
	sb.link.write(sb.sk)
}

func (sb *single) FixTransforms() {
	sb.link.rest(sb.sk)
}

func (sb *single) State() solver.State {
	return sb.link.solver.State()
}

// composed binds a composer of chains.
type composed struct {
	sk    *Skeleton
	cp    *composer.Composer
	links []*link
}

func (cb *composed) Update() {
	for _, l := range cb.links {
		l.read(cb.sk)
	}
	cb.cp.Update()
	for _, l := range cb.links {
		l.write(cb.sk)
	}
}

func (cb *composed) FixTransforms() {
	for _, l := range cb.links {
		l.rest(cb.sk)
	}
}

func (cb *composed) State() solver.State {
	return cb.cp.State()
}

// grounded binds a grounder. Its update must come before the
// updates of its legs.
type grounded struct {
	sk     *Skeleton
	gr     *ground.Grounder
	legs   []*link
	pelvis int
	root   int
}

func (gb *grounded) Update() {
	for _, l := range gb.legs {
		l.read(gb.sk)
	}
	if gb.root >= 0 {
		gb.gr.Root = gb.sk.World(gb.root)
	}
	gb.gr.Update()
	if gb.pelvis >= 0 {
		ps := gb.sk.World(gb.pelvis)
		ps.Pos = ps.Pos.Add(spatial.NormalOr(gb.gr.Up, spatial.Up).Mul(gb.gr.PelvisOffset))
		gb.sk.SetWorld(gb.pelvis, ps)
	}
}

func (gb *grounded) FixTransforms() {
	if gb.pelvis >= 0 {
		gb.sk.SetWorld(gb.pelvis, gb.sk.Joints[gb.pelvis].Rest)
	}
}

func (gb *grounded) State() solver.State {
	return solver.Idle
}
