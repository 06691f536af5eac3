// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fabrik

import (
	"math/rand"
	"testing"

	"cogentcore.org/ik/base/tolassert"
	"cogentcore.org/ik/chain"
	"cogentcore.org/ik/limits"
	"cogentcore.org/ik/solver"
	"cogentcore.org/ik/spatial"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// zigzag returns a 4 bone chain of unit segments rooted at the origin.
func zigzag() []*chain.Bone {
	ps := []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {2, 1, 0}}
	bs := make([]*chain.Bone, len(ps))
	for i, p := range ps {
		bs[i] = chain.NewBone("", p, mgl64.QuatIdent())
	}
	return bs
}

func newSolver(t *testing.T, bs []*chain.Bone) *Solver {
	s := New()
	s.Tolerance = 1e-3
	s.MaxIterations = 30
	require.True(t, s.SetChain(bs, spatial.Pose{}))
	return s
}

func assertLengths(t *testing.T, c *chain.Chain, lengths []float64) {
	t.Helper()
	for i := range c.Len() - 1 {
		assert.InDelta(t, lengths[i], c.Bones[i+1].Pos.Sub(c.Bones[i].Pos).Len(), 1e-5, "bone %d", i)
	}
}

func TestReachable(t *testing.T) {
	s := newSolver(t, zigzag())
	tg := spatial.Vec3(2.9, 0, 0)
	s.SetTarget(chain.NewTarget(tg))
	s.Update()
	assert.Equal(t, solver.Converged, s.State())
	assert.LessOrEqual(t, s.EndEffector().Sub(tg).Len(), 1e-3)
	assert.Equal(t, spatial.Vec3(0, 0, 0), s.Chain().Bones[0].Pos)
	assertLengths(t, s.Chain(), []float64{1, 1, 1})
}

func TestUnreachable(t *testing.T) {
	s := newSolver(t, zigzag())
	s.SetTarget(chain.NewTarget(spatial.Vec3(10, 0, 0)))
	s.Update()
	assert.Equal(t, solver.Converged, s.State())
	c := s.Chain()
	for i, b := range c.Bones {
		tolassert.EqualVector(t, spatial.Vec3(float64(i), 0, 0), b.Pos, 1e-9)
	}
	// bones point along the line, the last keeps its local rotation
	for i := range 3 {
		tolassert.EqualVector(t, spatial.Right, c.Bones[i].Dir(), 1e-9)
	}
	tolassert.SameRotation(t, c.Bones[2].Rot, c.Bones[3].Rot, 1e-9)
}

func TestLengthInvariant(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	s := newSolver(t, zigzag())
	s.MaxIterations = 5
	for range 200 {
		tg := spatial.Vec3(rnd.Float64()*8-4, rnd.Float64()*8-4, rnd.Float64()*8-4)
		s.SetTarget(chain.NewTarget(tg))
		s.Update()
		assertLengths(t, s.Chain(), []float64{1, 1, 1})
		assert.Equal(t, spatial.Vec3(0, 0, 0), s.Chain().Bones[0].Pos)
	}
}

func TestIterationLimit(t *testing.T) {
	s := newSolver(t, zigzag())
	s.Tolerance = 0
	s.MaxIterations = 3
	s.SetTarget(chain.NewTarget(spatial.Vec3(1, 1.5, 0.5)))
	s.Update()
	assert.Equal(t, solver.IterationLimitReached, s.State())
	assert.Equal(t, 3, s.Iterations())
	assert.InDelta(t, 0, s.EndEffector().Sub(spatial.Vec3(1, 1.5, 0.5)).Len(), 1e-3)
}

func TestAnchor(t *testing.T) {
	s := newSolver(t, zigzag())
	_, ok := s.Anchor()
	assert.False(t, ok)

	an := spatial.Vec3(0, 0, 5)
	s.SetAnchor(an)
	pos, ok := s.Anchor()
	assert.True(t, ok)
	assert.Equal(t, an, pos)

	tg := spatial.Vec3(0.5, 1.5, 5.5)
	s.SetTarget(chain.NewTarget(tg))
	s.Update()
	tolassert.EqualVector(t, an, s.Chain().Bones[0].Pos, 1e-12)
	assert.LessOrEqual(t, s.EndEffector().Sub(tg).Len(), 1e-3)
	assertLengths(t, s.Chain(), []float64{1, 1, 1})

	s.ClearAnchor()
	s.Chain().Translate(0, spatial.Vec3(1, 0, 0))
	s.Update()
	tolassert.EqualVector(t, spatial.Vec3(1, 0, 5), s.Chain().Bones[0].Pos, 1e-12)
}

func TestUpdateLengths(t *testing.T) {
	s := newSolver(t, zigzag())
	s.UpdateLengths = true
	// stretch the last bone
	s.Chain().Bones[3].Pos = spatial.Vec3(3, 1, 0)
	s.SetTarget(chain.NewTarget(spatial.Vec3(20, 0, 0)))
	s.Update()
	tolassert.EqualVector(t, spatial.Vec3(4, 0, 0), s.EndEffector(), 1e-9)
	assertLengths(t, s.Chain(), []float64{1, 1, 2})
}

func TestRotationLimits(t *testing.T) {
	bs := zigzag()
	bs[1].Limit = limits.NewAngle(mgl64.Vec3{}, 20, 180)
	s := newSolver(t, bs)
	s.SetTarget(chain.NewTarget(spatial.Vec3(-1, 1, 1)))
	s.Update()
	c := s.Chain()
	b := c.Bones[1]
	swing := spatial.Angle(b.Axis, c.LocalRot(1).Rotate(b.Axis))
	assert.LessOrEqual(t, swing, mgl64.DegToRad(20)+1e-9)
	assertLengths(t, c, []float64{1, 1, 1})

	// limits make an unreachable target iterate
	s.SetTarget(chain.NewTarget(spatial.Vec3(10, 0, 0)))
	s.Update()
	assert.Equal(t, 30, s.Iterations())
	assertLengths(t, c, []float64{1, 1, 1})
}

func TestTargetRotation(t *testing.T) {
	s := newSolver(t, zigzag())
	q := spatial.AxisAngleDeg(spatial.Forward, 60)
	s.SetTarget(chain.Target{Pos: spatial.Vec3(1, 2, 0), Rot: q, PosWeight: 1, RotWeight: 1})
	s.Update()
	tolassert.SameRotation(t, q, s.Chain().Last().Rot, 1e-12)
}

func TestWeight(t *testing.T) {
	s := newSolver(t, zigzag())
	s.Weight = 0
	s.SetTarget(chain.NewTarget(spatial.Vec3(10, 0, 0)))
	s.Update()
	assert.Equal(t, solver.Idle, s.State())
	assert.Equal(t, spatial.Vec3(2, 1, 0), s.EndEffector())
}

func TestZeroLength(t *testing.T) {
	bs := zigzag()
	bs[2].Pos = bs[1].Pos
	s := New()
	assert.False(t, s.SetChain(bs, spatial.Pose{}))
	err := s.Initialize(chain.New(spatial.Pose{}, zigzag()[:1]...))
	assert.Error(t, err)
}
