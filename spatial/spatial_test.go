// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spatial

import (
	"math"
	"math/rand"
	"testing"

	"cogentcore.org/ik/base/tolassert"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

const StandardTol = 1.0e-9

func TolAssertEqualVector(t *testing.T, tol float64, vt, va mgl64.Vec3) {
	t.Helper()
	tolassert.EqualVector(t, vt, va, tol)
}

func TolAssertSameRotation(t *testing.T, tol float64, qt, qa mgl64.Quat) {
	t.Helper()
	tolassert.SameRotation(t, qt, qa, tol)
}

func randomUnit(rnd *rand.Rand) mgl64.Vec3 {
	for {
		v := Vec3(rnd.Float64()*2-1, rnd.Float64()*2-1, rnd.Float64()*2-1)
		if l := v.Len(); l > 0.1 && l <= 1 {
			return v.Normalize()
		}
	}
}

func TestNormal(t *testing.T) {
	n, ok := Normal(Vec3(3, 0, 4))
	assert.True(t, ok)
	TolAssertEqualVector(t, StandardTol, Vec3(0.6, 0, 0.8), n)

	_, ok = Normal(mgl64.Vec3{})
	assert.False(t, ok)
	_, ok = Normal(Vec3(math.NaN(), 0, 0))
	assert.False(t, ok)
	assert.Equal(t, Up, NormalOr(mgl64.Vec3{}, Up))
}

func TestOrthogonal(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for range 100 {
		v := randomUnit(rnd).Mul(rnd.Float64()*10 + 0.01)
		o := Orthogonal(v)
		assert.InDelta(t, 1, o.Len(), StandardTol)
		assert.InDelta(t, 0, o.Dot(v), 1e-9)
		assert.Equal(t, o, Orthogonal(v))
	}
	assert.Equal(t, Right, Orthogonal(mgl64.Vec3{}))
}

func TestAngles(t *testing.T) {
	assert.InDelta(t, math.Pi/2, Angle(Right, Up), StandardTol)
	assert.InDelta(t, math.Pi, Angle(Right, Right.Mul(-2)), StandardTol)
	assert.Equal(t, 0.0, Angle(Right, mgl64.Vec3{}))
	assert.InDelta(t, math.Pi/2, SignedAngle(Right, Up, Forward), StandardTol)
	assert.InDelta(t, -math.Pi/2, SignedAngle(Up, Right, Forward), StandardTol)

	assert.InDelta(t, 0, WrapPi(2*math.Pi), StandardTol)
	assert.InDelta(t, math.Pi, WrapPi(-math.Pi), StandardTol)
	assert.InDelta(t, -math.Pi/2, WrapPi(1.5*math.Pi), StandardTol)
	assert.InDelta(t, 0.25, WrapPi(0.25+8*math.Pi), 1e-9)
}

func TestFromTo(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	for range 200 {
		a := randomUnit(rnd)
		b := randomUnit(rnd)
		q := FromTo(a, b.Mul(3))
		TolAssertEqualVector(t, 1e-9, b, q.Rotate(a))
		// minimal: the rotation axis is orthogonal to both
		assert.InDelta(t, 0, q.V.Dot(a), 1e-9)
		assert.InDelta(t, Angle(a, b), RotationAngle(mgl64.QuatIdent(), q), 1e-9)
	}

	// antiparallel is deterministic and uses the fallback axis
	q := FromToAbout(Right, Right.Mul(-1), Up)
	TolAssertEqualVector(t, StandardTol, Right.Mul(-1), q.Rotate(Right))
	TolAssertEqualVector(t, StandardTol, Up, q.V)
	assert.Equal(t, FromTo(Up, Up.Mul(-1)), FromTo(Up, Up.Mul(-1)))

	assert.Equal(t, mgl64.QuatIdent(), FromTo(mgl64.Vec3{}, Up))
	assert.Equal(t, mgl64.QuatIdent(), FromTo(Up, Up.Mul(5)))
}

func TestSlerp(t *testing.T) {
	a := AxisAngle(Up, 0.2)
	b := AxisAngle(Up, 1.2)
	TolAssertSameRotation(t, 1e-9, AxisAngle(Up, 0.7), Slerp(a, b, 0.5))
	// shortest path even if b is given with the opposite sign
	TolAssertSameRotation(t, 1e-9, AxisAngle(Up, 0.7), Slerp(a, b.Scale(-1), 0.5))
	assert.Equal(t, a, Slerp(a, b, -1))
	assert.Equal(t, b, Slerp(a, b, 2))
	TolAssertSameRotation(t, 1e-9, AxisAngle(Right, 0.25), Weighted(AxisAngle(Right, 1), 0.25))
}

func TestSwingTwist(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	for range 200 {
		axis := randomUnit(rnd)
		q := AxisAngle(randomUnit(rnd), rnd.Float64()*2*math.Pi)
		swing, twist := SwingTwist(q, axis)
		TolAssertSameRotation(t, 1e-9, q, swing.Mul(twist))
		// twist keeps the axis, swing is the minimal rotation of the axis
		TolAssertEqualVector(t, 1e-9, axis, twist.Rotate(axis))
		assert.InDelta(t, 0, swing.V.Dot(axis), 1e-9)
	}
	ang := 1.1
	q := AxisAngle(Right, 0.4).Mul(AxisAngle(Forward, ang))
	assert.InDelta(t, ang, TwistAngle(q, Forward), 1e-9)
	assert.InDelta(t, -ang, TwistAngle(AxisAngle(Forward, -ang), Forward), 1e-9)
	assert.InDelta(t, -ang, TwistAngle(AxisAngle(Forward, -ang).Scale(-1), Forward), 1e-9)
}

func TestLookRotation(t *testing.T) {
	q := LookRotation(Right, Up)
	TolAssertEqualVector(t, 1e-9, Right, q.Rotate(Forward))
	TolAssertEqualVector(t, 1e-9, Up, q.Rotate(Up))

	q = LookRotation(Up, Up)
	TolAssertEqualVector(t, 1e-9, Up, q.Rotate(Forward))
	assert.InDelta(t, 0, q.Rotate(Up).Dot(Up), 1e-9)
}

func TestPose(t *testing.T) {
	par := NewPose(Vec3(1, 2, 3), AxisAngleDeg(Up, 90))
	rel := NewPose(Vec3(0, 0, 1), AxisAngleDeg(Right, 30))
	var world Pose
	world.FromRel(rel, par)
	// +Z rotated 90 degrees about +Y is +X
	TolAssertEqualVector(t, 1e-9, Vec3(2, 2, 3), world.Pos)
	back := world.RelTo(par)
	assert.True(t, back.ApproxEqual(rel, 1e-9, 1e-9))
	TolAssertEqualVector(t, 1e-9, world.Pos, par.Transform(rel.Pos))
	TolAssertEqualVector(t, 1e-9, rel.Pos, par.InverseTransform(world.Pos))

	var ps Pose
	ps.Defaults()
	assert.Equal(t, mgl64.QuatIdent(), ps.Rot)
	assert.Contains(t, ps.String(), "pos: (0, 0, 0)")
}
