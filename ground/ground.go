// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ground adapts the feet of a character to uneven ground.
// A [Grounder] casts a ray under each animated foot through a host
// supplied [RayCaster], moves the foot targets of the leg solvers up or
// down to the ground, and lowers the pelvis so that the lowest foot can
// reach.
package ground

import (
	"log/slog"

	"cogentcore.org/ik/chain"
	"cogentcore.org/ik/spatial"
	"github.com/go-gl/mathgl/mgl64"
)

// Leg is a leg solver, which is satisfied by every [solver.Solver].
type Leg interface {

	// EndEffector returns the current (animated) foot position.
	EndEffector() mgl64.Vec3

	// Target returns the foot target.
	Target() chain.Target

	// SetTarget sets the foot target.
	SetTarget(t chain.Target)
}

// Grounder sets the foot targets of its legs from the ground height under
// each foot. It must be updated after the host has set the animated pose
// and before the leg solvers.
type Grounder struct {

	// Weight in [0, 1] fades the effect of the grounder.
	Weight float64 `default:"1"`

	// MaxStep is the maximal height of the ground above or below the root
	// that the feet are moved to.
	MaxStep float64 `default:"0.5"`

	// FootSpeed is the speed at which the foot offsets follow the ground,
	// as the fraction per second. At 0 they follow immediately.
	FootSpeed float64 `default:"10"`

	// PelvisSpeed is the speed at which the pelvis offset follows the
	// lowest foot, as the fraction per second. At 0 it follows immediately.
	PelvisSpeed float64 `default:"5"`

	// DeltaTime is the time in seconds between updates.
	DeltaTime float64 `default:"0.0166667"`

	// Up is the world up direction.
	Up mgl64.Vec3

	// Root is the pose of the character root, which is at the height of
	// flat ground under the character.
	Root spatial.Pose

	// Caster answers the ray queries.
	Caster RayCaster

	// Legs are the leg solvers.
	Legs []Leg

	// PelvisOffset is the distance along Up that the host moves the
	// pelvis by, as of the last update.
	PelvisOffset float64

	offsets  []float64
	grounded []bool
}

// NewGrounder returns a new grounder with default settings.
func NewGrounder(caster RayCaster, legs ...Leg) *Grounder {
	gr := &Grounder{Caster: caster, Legs: legs}
	gr.Defaults()
	return gr
}

// Defaults sets the default settings.
func (gr *Grounder) Defaults() {
	gr.Weight = 1
	gr.MaxStep = 0.5
	gr.FootSpeed = 10
	gr.PelvisSpeed = 5
	gr.DeltaTime = 1.0 / 60
	gr.Up = spatial.Up
	gr.Root.Defaults()
}

// FootOffset returns the current offset along Up of foot i.
func (gr *Grounder) FootOffset(i int) float64 {
	if i >= len(gr.offsets) {
		return 0
	}
	return gr.offsets[i]
}

// Grounded returns whether ground was found under foot i in the last update.
func (gr *Grounder) Grounded(i int) bool {
	return i < len(gr.grounded) && gr.grounded[i]
}

// Reset clears the offsets.
func (gr *Grounder) Reset() {
	gr.offsets = nil
	gr.grounded = nil
	gr.PelvisOffset = 0
}

// follow returns cur moved toward to at the given speed.
func (gr *Grounder) follow(cur, to, speed float64) float64 {
	if speed <= 0 || gr.DeltaTime <= 0 {
		return to
	}
	return cur + (to-cur)*spatial.Clamp01(speed*gr.DeltaTime)
}

// Update implements [solver.Updater].
func (gr *Grounder) Update() {
	n := len(gr.Legs)
	if len(gr.offsets) != n {
		gr.offsets = make([]float64, n)
		gr.grounded = make([]bool, n)
	}
	up := spatial.NormalOr(gr.Up, spatial.Up)
	w := spatial.Clamp01(gr.Weight)
	lowest := 0.0
	for i, leg := range gr.Legs {
		foot := leg.EndEffector()
		h := 0.0
		gr.grounded[i] = false
		if gr.Caster != nil && gr.MaxStep > 0 {
			org := foot.Add(up.Mul(gr.MaxStep))
			if hit, ok := gr.Caster.CastRay(org, up.Mul(-1), 2*gr.MaxStep); ok {
				h = mgl64.Clamp(hit.Pos.Sub(gr.Root.Pos).Dot(up), -gr.MaxStep, gr.MaxStep)
				gr.grounded[i] = true
			}
		}
		gr.offsets[i] = gr.follow(gr.offsets[i], h*w, gr.FootSpeed)
		lowest = min(lowest, gr.offsets[i])
		t := leg.Target()
		t.Pos = foot.Add(up.Mul(gr.offsets[i]))
		leg.SetTarget(t)
	}
	gr.PelvisOffset = gr.follow(gr.PelvisOffset, lowest, gr.PelvisSpeed)
	slog.Debug("ground: update", "pelvis", gr.PelvisOffset, "feet", gr.offsets)
}
