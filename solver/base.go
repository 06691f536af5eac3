// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import (
	"log/slog"

	"cogentcore.org/ik/chain"
	"cogentcore.org/ik/spatial"
	"github.com/go-gl/mathgl/mgl64"
)

// Base has the state shared by all chain solvers,
// which embed it and add their own algorithm.
type Base struct {
	Settings

	target     chain.Target
	hasTarget  bool
	chain      *chain.Chain
	state      State
	iterations int
}

// InitChain initializes the given chain with the given requirements and
// takes ownership of it. Without a target yet, the target is set to the
// current end of the chain, so that the first update keeps the pose.
func (sb *Base) InitChain(c *chain.Chain, req chain.Requirements) error {
	sb.chain = nil
	sb.state = Idle
	if c == nil {
		return &chain.InvalidChainError{Index: -1, Reason: "is nil"}
	}
	if err := c.Initialize(req); err != nil {
		return err
	}
	sb.chain = c
	if !sb.hasTarget {
		last := c.Last()
		sb.target = chain.Target{Pos: last.Pos, Rot: last.Rot, PosWeight: 1}
	}
	return nil
}

// Chain returns the chain, or nil before a successful initialization.
func (sb *Base) Chain() *chain.Chain {
	return sb.chain
}

// EndEffector returns the current position of the end of the chain.
func (sb *Base) EndEffector() mgl64.Vec3 {
	if sb.chain == nil {
		return mgl64.Vec3{}
	}
	return sb.chain.EndPos()
}

// Target returns the current target.
func (sb *Base) Target() chain.Target {
	return sb.target
}

// SetTarget sets the target for the next update.
func (sb *Base) SetTarget(t chain.Target) {
	t.Rot = spatial.OrIdent(t.Rot)
	sb.target = t
	sb.hasTarget = true
}

// SetTargetPos sets the target position, keeping the other target values.
func (sb *Base) SetTargetPos(pos mgl64.Vec3) {
	t := sb.target
	t.Pos = pos
	sb.SetTarget(t)
}

// State returns the state of the last update.
func (sb *Base) State() State {
	return sb.state
}

// Iterations returns the number of iterations run by the last update.
func (sb *Base) Iterations() int {
	return sb.iterations
}

// FixTransforms returns the chain to the pose it had when initialized.
func (sb *Base) FixTransforms() {
	if sb.chain != nil {
		sb.chain.Reset()
	}
}

// Begin starts an update, returning false (and going Idle) if there is
// nothing to do because there is no chain or the weight is 0.
func (sb *Base) Begin() bool {
	sb.iterations = 0
	if sb.chain == nil || sb.Weight <= 0 {
		sb.state = Idle
		return false
	}
	sb.state = Iterating
	return true
}

// Step counts one iteration.
func (sb *Base) Step() {
	sb.iterations++
}

// Finish ends an update in the Converged or IterationLimitReached state.
func (sb *Base) Finish(name string, converged bool) {
	if converged {
		sb.state = Converged
	} else {
		sb.state = IterationLimitReached
	}
	slog.Debug(name+": update", "iterations", sb.iterations, "state", sb.state)
}

// GoalPos returns the target position blended from the current end
// position by the master weight and the target position weight.
func (sb *Base) GoalPos() mgl64.Vec3 {
	w := spatial.Clamp01(sb.Weight * sb.target.PosWeight)
	return spatial.Lerp(sb.chain.EndPos(), sb.target.Pos, w)
}

// BoneWeight returns the master weight times the weight of bone i.
func (sb *Base) BoneWeight(i int) float64 {
	return spatial.Clamp01(sb.Weight * sb.chain.Bones[i].Weight)
}

// MatchTargetRot blends the rotation of the last bone toward the target
// rotation by the master weight and the target rotation weight.
func (sb *Base) MatchTargetRot() {
	w := spatial.Clamp01(sb.Weight * sb.target.RotWeight)
	if w <= 0 {
		return
	}
	last := sb.chain.Last()
	last.Rot = spatial.Slerp(last.Rot, sb.target.Rot, w)
}
