// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chain

import (
	"math"
	"testing"

	"cogentcore.org/ik/base/errors"
	"cogentcore.org/ik/base/tolassert"
	"cogentcore.org/ik/limits"
	"cogentcore.org/ik/spatial"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TolAssertEqualVector(t *testing.T, tol float64, vt, va mgl64.Vec3) {
	t.Helper()
	tolassert.EqualVector(t, vt, va, tol)
}

// rightAngle returns a chain bending 90 degrees at the middle bone.
func rightAngle() *Chain {
	return New(spatial.Pose{},
		NewBone("upper", spatial.Vec3(0, 0, 0), mgl64.QuatIdent()),
		NewBone("lower", spatial.Vec3(1, 0, 0), mgl64.QuatIdent()),
		NewBone("hand", spatial.Vec3(1, 1, 0), mgl64.QuatIdent()),
	)
}

func TestInitialize(t *testing.T) {
	c := rightAngle()
	require.NoError(t, c.Initialize(Requirements{MinBones: 3, MaxBones: 3, NonZeroLength: true}))
	assert.True(t, c.Initialized())
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, 1.0, c.Bones[0].Length)
	assert.Equal(t, 1.0, c.Bones[1].Length)
	assert.Equal(t, 0.0, c.Bones[2].Length)
	assert.Equal(t, 2.0, c.Reach())
	TolAssertEqualVector(t, 1e-12, spatial.Right, c.Bones[0].Axis)
	TolAssertEqualVector(t, 1e-12, spatial.Up, c.Bones[1].Axis)
	TolAssertEqualVector(t, 1e-12, spatial.Up, c.Bones[2].Axis)
	assert.Equal(t, spatial.Vec3(1, 1, 0), c.EndPos())
	assert.Equal(t, mgl64.QuatIdent(), c.Root.Rot)
}

func TestInitializeErrors(t *testing.T) {
	var ce *InvalidChainError

	err := New(spatial.Pose{}).Initialize(Requirements{})
	require.Error(t, err)
	assert.True(t, errors.As(err, &ce))
	assert.Equal(t, -1, ce.Index)
	assert.Equal(t, "chain: has 0 bones, needs at least 1", err.Error())

	assert.Error(t, rightAngle().Initialize(Requirements{MinBones: 4}))
	assert.Error(t, rightAngle().Initialize(Requirements{MaxBones: 2}))

	c := rightAngle()
	c.Bones[1] = nil
	err = c.Initialize(Requirements{})
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 1, ce.Index)
	assert.Equal(t, "chain: bone 1: is nil", err.Error())
	assert.False(t, c.Initialized())

	c = rightAngle()
	c.Bones[2] = c.Bones[0]
	assert.Error(t, c.Initialize(Requirements{}))

	c = rightAngle()
	c.Bones[2].Pos = spatial.Vec3(math.NaN(), 0, 0)
	assert.Error(t, c.Initialize(Requirements{}))

	c = rightAngle()
	c.Bones[0].Weight = 1.5
	assert.Error(t, c.Initialize(Requirements{}))

	c = rightAngle()
	c.Bones[1].Pos = c.Bones[0].Pos
	err = c.Initialize(Requirements{NonZeroLength: true})
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 0, ce.Index)
	// zero length is fine when not required
	assert.NoError(t, c.Initialize(Requirements{}))
	TolAssertEqualVector(t, 1e-12, spatial.Forward, c.Bones[0].Axis)
}

func TestRotateBone(t *testing.T) {
	c := rightAngle()
	require.NoError(t, c.Initialize(Requirements{}))
	c.RotateBone(0, spatial.AxisAngleDeg(spatial.Forward, 90))
	TolAssertEqualVector(t, 1e-12, spatial.Vec3(0, 1, 0), c.Bones[1].Pos)
	TolAssertEqualVector(t, 1e-12, spatial.Vec3(-1, 1, 0), c.Bones[2].Pos)
	// rigid: lengths and local rotations are kept
	assert.InDelta(t, 1, c.Bones[1].Pos.Sub(c.Bones[0].Pos).Len(), 1e-12)
	assert.InDelta(t, 1, c.Bones[2].Pos.Sub(c.Bones[1].Pos).Len(), 1e-12)
	assert.InDelta(t, 0, spatial.RotationAngle(mgl64.QuatIdent(), c.LocalRot(1)), 1e-12)
	TolAssertEqualVector(t, 1e-12, spatial.Up, c.Bones[0].Dir())

	c.Translate(1, spatial.Vec3(0, 0, 2))
	TolAssertEqualVector(t, 1e-12, spatial.Vec3(0, 0, 0), c.Bones[0].Pos)
	TolAssertEqualVector(t, 1e-12, spatial.Vec3(-1, 1, 2), c.Bones[2].Pos)

	c.Reset()
	assert.Equal(t, spatial.Vec3(1, 1, 0), c.EndPos())
}

func TestLocalRot(t *testing.T) {
	c := rightAngle()
	c.Root.Rot = spatial.AxisAngleDeg(spatial.Up, 30)
	require.NoError(t, c.Initialize(Requirements{}))
	local := spatial.AxisAngleDeg(spatial.Vec3(1, 1, 0), 25)
	c.SetLocalRot(1, local)
	assert.InDelta(t, 0, spatial.RotationAngle(local, c.LocalRot(1)), 1e-12)
	// the child of the rotated bone followed it
	assert.InDelta(t, 1, c.Bones[2].Pos.Sub(c.Bones[1].Pos).Len(), 1e-12)
	TolAssertEqualVector(t, 1e-12, c.Bones[1].Dir(), c.Bones[2].Pos.Sub(c.Bones[1].Pos))

	c.SetLocalRot(0, local)
	assert.InDelta(t, 0, spatial.RotationAngle(local, c.LocalRot(0)), 1e-12)
	assert.InDelta(t, 0, spatial.RotationAngle(c.Root.Rot.Mul(local), c.Bones[0].Rot), 1e-12)
}

func TestAimBone(t *testing.T) {
	c := rightAngle()
	require.NoError(t, c.Initialize(Requirements{}))
	c.AimBone(0, spatial.Vec3(0, 5, 0))
	TolAssertEqualVector(t, 1e-12, spatial.Vec3(0, 1, 0), c.Bones[1].Pos)
	TolAssertEqualVector(t, 1e-12, spatial.Vec3(-1, 1, 0), c.Bones[2].Pos)

	// a stretched chain is restored to its measured lengths
	c.Bones[2].Pos = spatial.Vec3(-1, 3, 0)
	c.AimBone(1, spatial.Vec3(0, 1, 4))
	TolAssertEqualVector(t, 1e-12, spatial.Vec3(0, 1, 1), c.Bones[2].Pos)

	c.Bones[2].Pos = spatial.Vec3(0, 1, 3)
	c.MeasureLengths()
	assert.InDelta(t, 2, c.Bones[1].Length, 1e-12)
}

func TestApplyLimit(t *testing.T) {
	c := rightAngle()
	c.Bones[1].Limit = limits.NewAngle(mgl64.Vec3{}, 30, 180)
	require.NoError(t, c.Initialize(Requirements{}))
	assert.True(t, c.HasLimits())

	c.SetLocalRot(1, spatial.AxisAngleDeg(spatial.Forward, 80))
	c.ApplyLimits()
	// the hand may only swing 30 degrees away from straight up
	dir := c.Bones[2].Pos.Sub(c.Bones[1].Pos)
	assert.InDelta(t, 30, mgl64.RadToDeg(spatial.Angle(spatial.Up, dir)), 1e-9)
}

func TestTarget(t *testing.T) {
	tg := NewTarget(spatial.Vec3(1, 2, 3))
	assert.Equal(t, 1.0, tg.PosWeight)
	assert.Equal(t, 0.0, tg.RotWeight)
	assert.Equal(t, mgl64.QuatIdent(), tg.Rot)

	b := NewBone("b", spatial.Vec3(1, 0, 0), mgl64.Quat{})
	assert.Equal(t, mgl64.QuatIdent(), b.Rot)
	assert.Equal(t, 1.0, b.Weight)
	b.SetPose(spatial.NewPose(spatial.Vec3(0, 1, 0), mgl64.Quat{}))
	assert.Equal(t, spatial.Vec3(0, 1, 0), b.Pose().Pos)
}
