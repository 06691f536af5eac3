// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package composer

import (
	"errors"
	"testing"

	"cogentcore.org/ik/base/tolassert"
	"cogentcore.org/ik/chain"
	"cogentcore.org/ik/solver"
	"cogentcore.org/ik/solver/fabrik"
	"cogentcore.org/ik/spatial"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChain(t *testing.T, pos ...mgl64.Vec3) *fabrik.Solver {
	bs := make([]*chain.Bone, len(pos))
	for i, p := range pos {
		bs[i] = chain.NewBone("", p, mgl64.QuatIdent())
	}
	return newSolver(t, bs...)
}

func newSolver(t *testing.T, bs ...*chain.Bone) *fabrik.Solver {
	s := fabrik.New()
	s.Tolerance = 1e-4
	s.MaxIterations = 20
	require.True(t, s.SetChain(bs, spatial.Pose{}))
	return s
}

// spine with two arms at its end
func tree(t *testing.T) (*Composer, *fabrik.Solver, *fabrik.Solver, *fabrik.Solver) {
	sp := newChain(t, spatial.Vec3(0, 0, 0), spatial.Vec3(0, 1, 0), spatial.Vec3(0.2, 2, 0))
	left := newChain(t, spatial.Vec3(0.2, 2, 0), spatial.Vec3(-1, 2, 0), spatial.Vec3(-1, 1, 0))
	right := newChain(t, spatial.Vec3(0.2, 2, 0), spatial.Vec3(1, 2, 0), spatial.Vec3(1, 1, 0.5))
	cp := New()
	require.NoError(t, cp.Add("spine", "", sp))
	require.NoError(t, cp.Add("left", "spine", left))
	require.NoError(t, cp.Add("right", "spine", right))
	require.NoError(t, cp.Initialize())
	return cp, sp, left, right
}

func TestJunction(t *testing.T) {
	cp, sp, left, right := tree(t)
	assert.Equal(t, []string{"spine", "left", "right"}, cp.Names())
	require.Len(t, cp.Order(), 3)
	assert.Equal(t, "spine", cp.Order()[0].Name)

	sp.SetTarget(chain.NewTarget(spatial.Vec3(0.8, 1.5, 0.5)))
	left.SetTarget(chain.NewTarget(spatial.Vec3(-0.5, 0.5, 1)))
	right.SetTarget(chain.NewTarget(spatial.Vec3(2, 1, 0)))
	cp.Update()

	for _, s := range []*fabrik.Solver{left, right} {
		gap := s.Chain().Bones[0].Pos.Sub(sp.EndEffector()).Len()
		tolassert.EqualTol(t, 0, gap, 1e-9)
		an, ok := s.Anchor()
		assert.True(t, ok)
		assert.Equal(t, sp.EndEffector(), an)
	}
	_, ok := sp.Anchor()
	assert.False(t, ok)
	assert.Equal(t, mgl64.Vec3{}, sp.Chain().Bones[0].Pos)
	assert.NotEqual(t, solver.Idle, cp.State())

	cp.FixTransforms()
	tolassert.EqualVector(t, spatial.Vec3(0.2, 2, 0), sp.EndEffector(), 1e-12)
	tolassert.EqualVector(t, spatial.Vec3(1, 1, 0.5), right.EndEffector(), 1e-12)
}

func TestSharedJunctionBone(t *testing.T) {
	id := mgl64.QuatIdent()
	j := chain.NewBone("junction", spatial.Vec3(1, 1, 0), id)
	parent := newSolver(t, chain.NewBone("", spatial.Vec3(0, 0, 0), id), chain.NewBone("", spatial.Vec3(1, 0, 0), id), j)
	child := newSolver(t, j, chain.NewBone("", spatial.Vec3(2, 1, 0), id), chain.NewBone("", spatial.Vec3(2, 2, 0), id))
	cp := New()
	require.NoError(t, cp.Add("a", "", parent))
	require.NoError(t, cp.Add("b", "a", child))
	require.NoError(t, cp.Initialize())

	parent.SetTarget(chain.NewTarget(spatial.Vec3(0.5, 1.5, 0.3)))
	child.SetTarget(chain.NewTarget(spatial.Vec3(1.5, 2.5, 1)))
	cp.Update()
	assert.Same(t, parent.Chain().Last(), child.Chain().Bones[0])
	tolassert.EqualTol(t, 0, parent.EndEffector().Sub(spatial.Vec3(0.5, 1.5, 0.3)).Len(), 1e-3)
	tolassert.EqualTol(t, 0, child.EndEffector().Sub(spatial.Vec3(1.5, 2.5, 1)).Len(), 1e-3)
}

func assertError(t *testing.T, err error, name, msg string) {
	t.Helper()
	var ice *InvalidCompositionError
	require.True(t, errors.As(err, &ice), "%v", err)
	assert.Equal(t, name, ice.Chain)
	assert.Equal(t, msg, err.Error())
}

func TestErrors(t *testing.T) {
	cp := New()
	assertError(t, cp.Initialize(), "", "composer: has no chains")

	a := newChain(t, spatial.Vec3(0, 0, 0), spatial.Vec3(0, 1, 0))
	b := newChain(t, spatial.Vec3(0, 1, 0), spatial.Vec3(1, 1, 0))
	far := newChain(t, spatial.Vec3(0, 1.1, 0), spatial.Vec3(1, 1, 0))

	require.NoError(t, cp.Add("a", "", a))
	assertError(t, cp.Add("a", "", a), "a", `composer: chain "a": is added more than once`)

	cp = New()
	require.NoError(t, cp.Add("a", "", a))
	require.NoError(t, cp.Add("b", "x", b))
	assertError(t, cp.Initialize(), "b", `composer: chain "b": parent "x" is unknown`)

	cp = New()
	require.NoError(t, cp.Add("a", "", a))
	require.NoError(t, cp.Add("b", "", b))
	assertError(t, cp.Initialize(), "", `composer: has 2 root chains: "a" and "b"`)

	cp = New()
	require.NoError(t, cp.Add("a", "b", a))
	require.NoError(t, cp.Add("b", "a", b))
	assertError(t, cp.Initialize(), "", "composer: has no root chain")

	cp = New()
	c := newChain(t, spatial.Vec3(5, 0, 0), spatial.Vec3(6, 0, 0))
	require.NoError(t, cp.Add("root", "", c))
	require.NoError(t, cp.Add("a", "b", a))
	require.NoError(t, cp.Add("b", "a", b))
	assertError(t, cp.Initialize(), "a", `composer: chain "a": is not connected to the root chain`)
	assert.Nil(t, cp.Order())

	cp = New()
	require.NoError(t, cp.Add("a", "", a))
	require.NoError(t, cp.Add("far", "a", far))
	err := cp.Initialize()
	var ice *InvalidCompositionError
	require.True(t, errors.As(err, &ice))
	assert.Equal(t, "far", ice.Chain)
	assert.Contains(t, err.Error(), "junction gap")

	cp = New()
	cp.JunctionTolerance = 0.2
	require.NoError(t, cp.Add("a", "", a))
	require.NoError(t, cp.Add("far", "a", far))
	assert.NoError(t, cp.Initialize())

	// a bone shared other than at the junction
	shared := a.Chain().Bones[0]
	d := newSolver(t, chain.NewBone("", spatial.Vec3(0, 1, 0), mgl64.QuatIdent()), chain.NewBone("", spatial.Vec3(0, 2, 0), mgl64.QuatIdent()), shared)
	cp = New()
	require.NoError(t, cp.Add("a", "", a))
	require.NoError(t, cp.Add("d", "a", d))
	assertError(t, cp.Initialize(), "d", `composer: chain "d": bone 2 is shared with chain "a"`)

	cp = New()
	require.NoError(t, cp.Add("u", "", fabrik.New()))
	assertError(t, cp.Initialize(), "u", `composer: chain "u": is not initialized`)
}
