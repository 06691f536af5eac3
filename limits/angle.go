// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package limits

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Angle is a simple swing and twist limit: the main axis may swing
// within a cone of the given angle, and twist about itself within ±Twist.
type Angle struct {
	Base

	// Swing is the maximum angle between the main axis and its
	// default direction, in degrees.
	Swing float64

	// Twist is the maximum twist angle about the main axis, in degrees.
	// 180 allows free twisting.
	Twist float64
}

// NewAngle returns a new swing and twist limit about the given axis.
// A zero axis is taken from the bone when the limit is initialized.
func NewAngle(axis mgl64.Vec3, swing, twist float64) *Angle {
	return &Angle{Base: Base{Axis: axis}, Swing: swing, Twist: twist}
}

func (la *Angle) Init(local mgl64.Quat, boneAxis mgl64.Vec3) {
	la.initBase(local, boneAxis)
}

func (la *Angle) Apply(local mgl64.Quat) mgl64.Quat {
	ax := la.axis()
	r := la.toDefault(local)
	r = limitSwing(r, ax, mgl64.DegToRad(la.Swing))
	r = limitTwist(r, ax, mgl64.DegToRad(la.Twist))
	return la.fromDefault(r)
}
