// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package minmax provides a struct that holds Min and Max values,
// used for angular ranges such as hinge limits.
package minmax

// F64 represents a min / max range for float64 values.
// Supports clipping, wrapping and validity checks.
type F64 struct {
	Min float64
	Max float64
}

// Set sets the min and max values
func (mr *F64) Set(mn, mx float64) {
	mr.Min = mn
	mr.Max = mx
}

// IsValid returns true if Min <= Max
func (mr *F64) IsValid() bool {
	return mr.Min <= mr.Max
}

// InRange tests whether value is within the range (>= Min and <= Max)
func (mr *F64) InRange(val float64) bool {
	return val >= mr.Min && val <= mr.Max
}

// IsLow tests whether value is lower than the minimum
func (mr *F64) IsLow(val float64) bool {
	return val < mr.Min
}

// IsHigh tests whether value is higher than the maximum
func (mr *F64) IsHigh(val float64) bool {
	return val > mr.Max
}

// Range returns Max - Min
func (mr *F64) Range() float64 {
	return mr.Max - mr.Min
}

// Midpoint returns point halfway between Min and Max
func (mr *F64) Midpoint() float64 {
	return 0.5 * (mr.Max + mr.Min)
}

// ClipValue clips given value within Min / Max range
// Note: a NaN will remain as a NaN
func (mr *F64) ClipValue(val float64) float64 {
	if val < mr.Min {
		return mr.Min
	}
	if val > mr.Max {
		return mr.Max
	}
	return val
}

// Scaled returns the range with both ends multiplied by the given factor,
// e.g., to convert a range in degrees to radians.
func (mr F64) Scaled(f float64) F64 {
	if f < 0 {
		return F64{Min: mr.Max * f, Max: mr.Min * f}
	}
	return F64{Min: mr.Min * f, Max: mr.Max * f}
}
