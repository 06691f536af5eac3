// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ground

import (
	"math"

	"cogentcore.org/ik/spatial"
	"github.com/go-gl/mathgl/mgl64"
)

// Hit is the result of a ray cast.
type Hit struct {

	// Pos is the world position of the hit.
	Pos mgl64.Vec3

	// Normal is the unit surface normal at the hit, facing the ray.
	Normal mgl64.Vec3

	// Dist is the distance along the ray from its origin.
	Dist float64
}

// RayCaster answers ray queries against the environment. It is supplied by
// the host, such as a physics engine, and is only called synchronously
// from within an update.
type RayCaster interface {

	// CastRay casts a ray from origin along dir, which need not be unit
	// length, up to maxDist. It returns the nearest hit, if any.
	CastRay(origin, dir mgl64.Vec3, maxDist float64) (Hit, bool)
}

// Plane is an infinite plane [RayCaster].
type Plane struct {

	// Point is any point on the plane.
	Point mgl64.Vec3

	// Normal is the plane normal.
	Normal mgl64.Vec3
}

// NewPlane returns a horizontal plane at the given height along +Y.
func NewPlane(height float64) *Plane {
	return &Plane{Point: spatial.Vec3(0, height, 0), Normal: spatial.Up}
}

func (pl *Plane) CastRay(origin, dir mgl64.Vec3, maxDist float64) (Hit, bool) {
	d, ok := spatial.Normal(dir)
	if !ok {
		return Hit{}, false
	}
	n, ok := spatial.Normal(pl.Normal)
	if !ok {
		return Hit{}, false
	}
	den := d.Dot(n)
	if math.Abs(den) < spatial.Epsilon {
		return Hit{}, false
	}
	t := pl.Point.Sub(origin).Dot(n) / den
	if t < 0 || t > maxDist {
		return Hit{}, false
	}
	if den > 0 {
		n = n.Mul(-1)
	}
	return Hit{Pos: origin.Add(d.Mul(t)), Normal: n, Dist: t}, true
}

// Box is an axis aligned box [RayCaster], such as a step or a platform.
type Box struct {
	Min, Max mgl64.Vec3
}

// NewBox returns a box with the given minimum and maximum corners,
// in any order.
func NewBox(a, b mgl64.Vec3) *Box {
	bx := &Box{}
	for i := range 3 {
		bx.Min[i] = min(a[i], b[i])
		bx.Max[i] = max(a[i], b[i])
	}
	return bx
}

// Contains returns whether the given point is inside the box or on its surface.
func (bx *Box) Contains(p mgl64.Vec3) bool {
	for i := range 3 {
		if p[i] < bx.Min[i] || p[i] > bx.Max[i] {
			return false
		}
	}
	return true
}

// CastRay uses the slab method. A ray starting inside the box hits it at
// its origin, with the normal facing the ray.
func (bx *Box) CastRay(origin, dir mgl64.Vec3, maxDist float64) (Hit, bool) {
	d, ok := spatial.Normal(dir)
	if !ok {
		return Hit{}, false
	}
	if bx.Contains(origin) {
		return Hit{Pos: origin, Normal: d.Mul(-1), Dist: 0}, true
	}
	tmin, tmax := 0.0, maxDist
	face := -1
	for i := range 3 {
		if math.Abs(d[i]) < spatial.Epsilon {
			if origin[i] < bx.Min[i] || origin[i] > bx.Max[i] {
				return Hit{}, false
			}
			continue
		}
		t1 := (bx.Min[i] - origin[i]) / d[i]
		t2 := (bx.Max[i] - origin[i]) / d[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
			face = i
		}
		tmax = min(tmax, t2)
		if tmin > tmax {
			return Hit{}, false
		}
	}
	if face < 0 {
		return Hit{}, false
	}
	var n mgl64.Vec3
	n[face] = -math.Copysign(1, d[face])
	return Hit{Pos: origin.Add(d.Mul(tmin)), Normal: n, Dist: tmin}, true
}

// Casters is a set of ray casters, returning the nearest hit of any of them.
type Casters []RayCaster

func (cs Casters) CastRay(origin, dir mgl64.Vec3, maxDist float64) (Hit, bool) {
	var best Hit
	found := false
	for _, c := range cs {
		h, ok := c.CastRay(origin, dir, maxDist)
		if ok && (!found || h.Dist < best.Dist) {
			best = h
			found = true
		}
	}
	return best, found
}
