// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import (
	"testing"

	"cogentcore.org/ik/chain"
	"cogentcore.org/ik/spatial"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	name  string
	log   *[]string
	fixed int
}

func (c *counter) Update() {
	*c.log = append(*c.log, c.name)
}

func (c *counter) FixTransforms() {
	c.fixed++
}

type plain struct {
	n int
}

func (p *plain) Update() {
	p.n++
}

func TestState(t *testing.T) {
	assert.Equal(t, "Idle", Idle.String())
	assert.Equal(t, "Converged", Converged.String())
	assert.Equal(t, "IterationLimitReached", IterationLimitReached.String())
	assert.Equal(t, "State(9)", State(9).String())
	b, err := Iterating.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "Iterating", string(b))
}

func TestSettings(t *testing.T) {
	s := Settings{}
	assert.Equal(t, 1, s.Iterations())
	s.Defaults()
	assert.Equal(t, 1.0, s.Weight)
	assert.Equal(t, 10, s.MaxIterations)
	assert.Equal(t, 0.0, s.Tolerance)
	assert.True(t, s.UseRotationLimits)
}

func testChain() *chain.Chain {
	id := mgl64.QuatIdent()
	return chain.New(spatial.Pose{},
		chain.NewBone("a", spatial.Vec3(0, 0, 0), id),
		chain.NewBone("b", spatial.Vec3(1, 0, 0), id),
		chain.NewBone("c", spatial.Vec3(2, 0, 0), id))
}

func TestBase(t *testing.T) {
	sb := &Base{}
	sb.Defaults()
	assert.False(t, sb.Begin())
	assert.Equal(t, Idle, sb.State())
	assert.Equal(t, mgl64.Vec3{}, sb.EndEffector())

	err := sb.InitChain(nil, chain.Requirements{})
	assert.Error(t, err)

	require.NoError(t, sb.InitChain(testChain(), chain.Requirements{MinBones: 2}))
	// default target is the current end
	assert.Equal(t, spatial.Vec3(2, 0, 0), sb.Target().Pos)
	assert.Equal(t, spatial.Vec3(2, 0, 0), sb.GoalPos())

	sb.SetTarget(chain.Target{Pos: spatial.Vec3(4, 0, 0), PosWeight: 1})
	assert.False(t, spatial.IsNil(sb.Target().Rot))
	sb.Weight = 0.5
	assert.Equal(t, spatial.Vec3(3, 0, 0), sb.GoalPos())
	assert.Equal(t, 0.5, sb.BoneWeight(1))

	assert.True(t, sb.Begin())
	assert.Equal(t, Iterating, sb.State())
	sb.Step()
	sb.Finish("test", true)
	assert.Equal(t, Converged, sb.State())
	assert.Equal(t, 1, sb.Iterations())
	sb.Finish("test", false)
	assert.Equal(t, IterationLimitReached, sb.State())

	sb.Weight = 0
	assert.False(t, sb.Begin())
	assert.Equal(t, Idle, sb.State())

	// the target survives re-initialization
	require.NoError(t, sb.InitChain(testChain(), chain.Requirements{}))
	assert.Equal(t, spatial.Vec3(4, 0, 0), sb.Target().Pos)

	err = sb.InitChain(testChain(), chain.Requirements{MinBones: 4})
	assert.Error(t, err)
	assert.Nil(t, sb.Chain())
}

func TestMatchTargetRot(t *testing.T) {
	sb := &Base{}
	sb.Defaults()
	require.NoError(t, sb.InitChain(testChain(), chain.Requirements{}))
	q := spatial.AxisAngleDeg(spatial.Up, 90)
	sb.SetTarget(chain.Target{Pos: spatial.Vec3(2, 0, 0), Rot: q, PosWeight: 1, RotWeight: 0.5})
	sb.MatchTargetRot()
	assert.InDelta(t, mgl64.DegToRad(45), spatial.RotationAngle(mgl64.QuatIdent(), sb.Chain().Last().Rot), 1e-9)
}

func TestFixTransforms(t *testing.T) {
	sb := &Base{}
	sb.Defaults()
	sb.FixTransforms()
	require.NoError(t, sb.InitChain(testChain(), chain.Requirements{}))
	sb.Chain().Translate(0, spatial.Vec3(0, 5, 0))
	sb.FixTransforms()
	assert.Equal(t, spatial.Vec3(2, 0, 0), sb.EndEffector())
}

func TestGroup(t *testing.T) {
	var log []string
	a := &counter{name: "a", log: &log}
	b := &counter{name: "b", log: &log}
	p := &plain{}

	gp := NewGroup()
	require.NoError(t, gp.Add("a", a))
	require.NoError(t, gp.Add("b", b))
	require.NoError(t, gp.Add("p", p))
	assert.Error(t, gp.Add("a", a))
	assert.Equal(t, []string{"a", "b", "p"}, gp.Names())
	assert.Equal(t, 3, gp.Len())

	u, ok := gp.Updater("b")
	assert.True(t, ok)
	assert.Same(t, b, u)
	_, ok = gp.Updater("x")
	assert.False(t, ok)

	assert.Equal(t, 1, gp.Update(0))
	assert.Equal(t, []string{"a", "b"}, log)
	assert.Equal(t, 1, p.n)
	assert.Equal(t, 0, a.fixed)

	gp.FixTransforms = true
	gp.Step()
	assert.Equal(t, 1, a.fixed)
	assert.Equal(t, 1, b.fixed)
	assert.Equal(t, []string{"a", "b", "a", "b"}, log)
}

func TestGroupTimeStep(t *testing.T) {
	p := &plain{}
	gp := NewGroup()
	require.NoError(t, gp.Add("p", p))
	gp.TimeStep = 0.25

	assert.Equal(t, 0, gp.Update(0.125))
	assert.Equal(t, 1, gp.Update(0.125))
	assert.Equal(t, 2, gp.Update(0.5))
	assert.Equal(t, 3, p.n)

	// backlog beyond MaxSteps is dropped
	assert.Equal(t, 4, gp.Update(10))
	assert.Equal(t, 0, gp.Update(0))
	assert.Equal(t, 7, p.n)

	var empty Group
	assert.Equal(t, 1, empty.Update(1))
	assert.Equal(t, 0, empty.Len())
	assert.Nil(t, empty.Names())
}
