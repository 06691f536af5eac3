// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package solver defines the contract shared by all IK solvers, the
// [Base] state that they embed, and [Group], which runs solvers in a
// fixed order once per frame.
//
// A solver owns one [chain.Chain]. The host copies the animated pose
// into the chain bones, sets the [chain.Target], calls Update, and copies
// the solved bone poses back onto its skeleton. Update never fails:
// unreachable or degenerate targets are handled by clamping.
package solver

import (
	"cogentcore.org/ik/base/errors"
	"cogentcore.org/ik/chain"
	"cogentcore.org/ik/spatial"
	"github.com/go-gl/mathgl/mgl64"
)

// Updater is anything that is updated once per solver step,
// such as a [Solver], a composer of solvers, or a grounder.
type Updater interface {
	Update()
}

// Fixer is implemented by updaters that can return their bones to the
// setup pose before each step, see [Group.FixTransforms].
type Fixer interface {
	FixTransforms()
}

// Solver is the interface for all chain solvers.
type Solver interface {
	Updater

	// Initialize validates the given chain for this solver and takes
	// ownership of it. It returns a [*chain.InvalidChainError] for a chain
	// that the solver cannot work with.
	Initialize(c *chain.Chain) error

	// SetChain builds a chain of the given bones under the given root pose
	// and initializes the solver with it, returning false (and logging the
	// reason) if the bones do not form a valid chain.
	SetChain(bones []*chain.Bone, root spatial.Pose) bool

	// Chain returns the chain, or nil before a successful Initialize.
	Chain() *chain.Chain

	// EndEffector returns the current position of the end of the chain.
	EndEffector() mgl64.Vec3

	// Target returns the current target.
	Target() chain.Target

	// SetTarget sets the target for the next update.
	SetTarget(t chain.Target)

	// State returns the state of the last update.
	State() State
}

// SetChain is the shared implementation of [Solver.SetChain].
func SetChain(s Solver, bones []*chain.Bone, root spatial.Pose) bool {
	return errors.Log(s.Initialize(chain.New(root, bones...))) == nil
}
