// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package limits

import (
	"fmt"
	"math"
	"slices"

	"cogentcore.org/ik/base/errors"
	"cogentcore.org/ik/spatial"
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/interp"
)

// SplineKey is one key of the reach curve of a [Spline] limit.
type SplineKey struct {

	// Azimuth is the angle about the main axis, in degrees.
	Azimuth float64

	// Swing is the maximum swing angle at that azimuth, in degrees.
	Swing float64
}

// Spline limits the swing of the main axis by a smooth reach curve that maps
// the azimuth about the axis to a maximum swing angle, and its twist to ±Twist.
// The curve is periodic over 360 degrees and interpolated with a monotone
// cubic, so that it never overshoots its keys.
type Spline struct {
	Base

	// Keys are the reach curve keys, sorted by azimuth.
	Keys []SplineKey

	// Twist is the maximum twist angle about the main axis, in degrees.
	Twist float64

	curve interp.FritschButland
	ready bool
	u, w  mgl64.Vec3
}

// NewSpline returns a new spline limit about the given axis with the given
// reach curve keys, returning an error if they are invalid.
func NewSpline(axis mgl64.Vec3, twist float64, keys ...SplineKey) (*Spline, error) {
	ls := &Spline{Base: Base{Axis: axis}, Twist: twist, Keys: keys}
	if err := ls.Update(); err != nil {
		return nil, err
	}
	return ls, nil
}

// Update validates and sorts the keys and fits the reach curve.
// It must be called after changing Axis or Keys.
func (ls *Spline) Update() error {
	ls.ready = false
	ax, ok := spatial.Normal(ls.Axis)
	if !ok {
		return fmt.Errorf("limits.Spline: axis is degenerate")
	}
	n := len(ls.Keys)
	if n < 2 {
		return fmt.Errorf("limits.Spline: needs at least 2 keys, has %d", n)
	}
	keys := make([]SplineKey, n)
	for i, k := range ls.Keys {
		if k.Swing < 0 || k.Swing > 180 {
			return fmt.Errorf("limits.Spline: key %d swing %g is not in [0, 180]", i, k.Swing)
		}
		k.Azimuth = math.Mod(k.Azimuth, 360)
		if k.Azimuth < 0 {
			k.Azimuth += 360
		}
		keys[i] = k
	}
	slices.SortStableFunc(keys, func(a, b SplineKey) int {
		switch {
		case a.Azimuth < b.Azimuth:
			return -1
		case a.Azimuth > b.Azimuth:
			return 1
		}
		return 0
	})
	xs := make([]float64, 0, n+2)
	ys := make([]float64, 0, n+2)
	xs = append(xs, keys[n-1].Azimuth-360)
	ys = append(ys, keys[n-1].Swing)
	for i, k := range keys {
		if i > 0 && k.Azimuth <= keys[i-1].Azimuth {
			return fmt.Errorf("limits.Spline: duplicate key azimuth %g", k.Azimuth)
		}
		xs = append(xs, k.Azimuth)
		ys = append(ys, k.Swing)
	}
	xs = append(xs, keys[0].Azimuth+360)
	ys = append(ys, keys[0].Swing)
	if err := ls.curve.Fit(xs, ys); err != nil {
		return err
	}
	ls.Axis = ax
	ls.Keys = keys
	ls.u, ls.w = frame(ax)
	ls.ready = true
	return nil
}

// Reach returns the maximum swing angle at the given azimuth, in degrees.
func (ls *Spline) Reach(az float64) float64 {
	if !ls.ready {
		return 180
	}
	az = math.Mod(az, 360)
	if az < 0 {
		az += 360
	}
	return mgl64.Clamp(ls.curve.Predict(az), 0, 180)
}

func (ls *Spline) Init(local mgl64.Quat, boneAxis mgl64.Vec3) {
	ls.initBase(local, boneAxis)
	if !ls.ready {
		errors.Log(ls.Update())
	}
}

func (ls *Spline) Apply(local mgl64.Quat) mgl64.Quat {
	ax := ls.axis()
	r := ls.toDefault(local)
	d := r.Rotate(ax)
	swing, twist := spatial.SwingTwist(r, ax)
	k := turnAxis(ax, d, swing)
	lim := mgl64.DegToRad(ls.Reach(azimuth(k.Cross(ax), ls.u, ls.w)))
	if spatial.Angle(ax, d) > lim {
		r = spatial.AxisAngle(k, lim).Mul(twist)
	}
	r = limitTwist(r, ax, mgl64.DegToRad(ls.Twist))
	return ls.fromDefault(r)
}
