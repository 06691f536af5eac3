// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tolassert provides functions for asserting the equality of
// numbers, vectors and rotations with a tolerance.
package tolassert

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/floats/scalar"
)

// EqualTol asserts that the given two numbers are equal
// within the given absolute tolerance.
func EqualTol(t assert.TestingT, expected, actual, tol float64, msgAndArgs ...any) bool {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}
	if scalar.EqualWithinAbs(expected, actual, tol) {
		return true
	}
	return assert.InDelta(t, expected, actual, tol, msgAndArgs...)
}

// EqualTolSlice asserts that the given two slices of numbers are equal
// within the given absolute tolerance.
func EqualTolSlice(t assert.TestingT, expected, actual []float64, tol float64, msgAndArgs ...any) bool {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}
	if !assert.Len(t, actual, len(expected), msgAndArgs...) {
		return false
	}
	ok := true
	for i, e := range expected {
		ok = EqualTol(t, e, actual[i], tol, msgAndArgs...) && ok
	}
	return ok
}

// EqualVector asserts that the given two vectors are equal
// within the given absolute tolerance per component.
func EqualVector(t assert.TestingT, expected, actual mgl64.Vec3, tol float64, msgAndArgs ...any) bool {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}
	return EqualTolSlice(t, expected[:], actual[:], tol, msgAndArgs...)
}

// SameRotation asserts that the given two quaternions are the same
// rotation within the given angle in radians. q and -q are the same rotation.
func SameRotation(t assert.TestingT, expected, actual mgl64.Quat, tol float64, msgAndArgs ...any) bool {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}
	d := expected.Inverse().Mul(actual)
	angle := 2 * math.Atan2(d.V.Len(), math.Abs(d.W))
	return EqualTol(t, 0, angle, tol, msgAndArgs...)
}
