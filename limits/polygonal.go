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
)

// Polygonal limits the swing of the main axis to a reach cone bounded by a
// spherical polygon, and its twist to ±Twist. The polygon vertices are unit
// directions around the main axis, each less than 90 degrees from it, with
// less than 180 degrees of azimuth between neighbors.
type Polygonal struct {
	Base

	// Points are the reach cone vertices in the default local space,
	// sorted by azimuth about Axis.
	Points []mgl64.Vec3

	// Twist is the maximum twist angle about the main axis, in degrees.
	Twist float64

	// normals are the inward plane normals of the cone edges,
	// from Points[i] to Points[i+1]
	normals []mgl64.Vec3

	// azimuths of Points, in degrees
	azimuths []float64

	u, w mgl64.Vec3
}

// NewPolygonal returns a new polygonal reach cone limit about the given axis,
// with the given vertex directions, returning an error if they do not
// form a valid reach cone.
func NewPolygonal(axis mgl64.Vec3, twist float64, points ...mgl64.Vec3) (*Polygonal, error) {
	lp := &Polygonal{Base: Base{Axis: axis}, Twist: twist, Points: points}
	if err := lp.Update(); err != nil {
		return nil, err
	}
	return lp, nil
}

// Update validates and sorts the points and computes the cone edges.
// It must be called after changing Axis or Points.
func (lp *Polygonal) Update() error {
	ax, ok := spatial.Normal(lp.Axis)
	if !ok {
		return fmt.Errorf("limits.Polygonal: axis is degenerate")
	}
	n := len(lp.Points)
	if n < 3 {
		return fmt.Errorf("limits.Polygonal: needs at least 3 points, has %d", n)
	}
	lp.Axis = ax
	lp.u, lp.w = frame(ax)
	pts := make([]mgl64.Vec3, n)
	for i, p := range lp.Points {
		pn, ok := spatial.Normal(p)
		if !ok || pn.Dot(ax) <= spatial.Epsilon {
			return fmt.Errorf("limits.Polygonal: point %d is not in front of the axis", i)
		}
		pts[i] = pn
	}
	slices.SortStableFunc(pts, func(a, b mgl64.Vec3) int {
		aa, ab := azimuth(a, lp.u, lp.w), azimuth(b, lp.u, lp.w)
		switch {
		case aa < ab:
			return -1
		case aa > ab:
			return 1
		}
		return 0
	})
	lp.Points = pts
	lp.azimuths = make([]float64, n)
	lp.normals = make([]mgl64.Vec3, n)
	for i, p := range pts {
		lp.azimuths[i] = azimuth(p, lp.u, lp.w)
	}
	for i, p := range pts {
		j := (i + 1) % n
		gap := lp.azimuths[j] - lp.azimuths[i]
		if j == 0 {
			gap += 360
		}
		if gap <= 0 || gap >= 180 {
			return fmt.Errorf("limits.Polygonal: %g degrees between points %d and %d, must be in (0, 180)", gap, i, j)
		}
		lp.normals[i] = spatial.NormalOr(p.Cross(pts[j]), ax)
	}
	return nil
}

func (lp *Polygonal) Init(local mgl64.Quat, boneAxis mgl64.Vec3) {
	lp.initBase(local, boneAxis)
	if lp.normals == nil {
		errors.Log(lp.Update())
	}
}

func (lp *Polygonal) Apply(local mgl64.Quat) mgl64.Quat {
	ax := lp.axis()
	r := lp.toDefault(local)
	if len(lp.normals) >= 3 {
		d := r.Rotate(ax)
		if !lp.Inside(d) {
			_, twist := spatial.SwingTwist(r, ax)
			r = spatial.FromTo(ax, lp.Closest(d)).Mul(twist)
		}
	}
	r = limitTwist(r, ax, mgl64.DegToRad(lp.Twist))
	return lp.fromDefault(r)
}

// sector returns the index of the edge whose azimuth range contains d.
func (lp *Polygonal) sector(d mgl64.Vec3) int {
	a := azimuth(d, lp.u, lp.w)
	n := len(lp.azimuths)
	for i := range n {
		j := (i + 1) % n
		lo, hi := lp.azimuths[i], lp.azimuths[j]
		if j == 0 {
			if a >= lo || a < hi {
				return i
			}
			continue
		}
		if a >= lo && a < hi {
			return i
		}
	}
	return n - 1
}

// Inside returns whether the given direction, in the default local
// space, is within the reach cone.
func (lp *Polygonal) Inside(d mgl64.Vec3) bool {
	return d.Dot(lp.normals[lp.sector(d)]) >= -1e-9
}

// Closest returns the point on the boundary of the reach cone
// nearest to the given direction.
func (lp *Polygonal) Closest(d mgl64.Vec3) mgl64.Vec3 {
	n := len(lp.Points)
	best := lp.Points[0]
	bestDot := math.Inf(-1)
	try := func(c mgl64.Vec3) {
		if dt := c.Dot(d); dt > bestDot {
			best, bestDot = c, dt
		}
	}
	for i, p := range lp.Points {
		q := lp.Points[(i+1)%n]
		nm := lp.normals[i]
		try(p)
		c, ok := spatial.Normal(spatial.ProjectOnPlane(d, nm))
		if ok && p.Cross(c).Dot(nm) >= 0 && c.Cross(q).Dot(nm) >= 0 {
			try(c)
		}
	}
	return best
}
