// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

// Settings are the settings shared by all solvers.
type Settings struct {

	// Weight in [0, 1] is the master weight of the solver.
	// At 0 the solver does not change the pose.
	Weight float64 `default:"1"`

	// MaxIterations is the maximum number of iterations per update,
	// for iterative solvers. It bounds the time of each update.
	MaxIterations int `default:"10"`

	// Tolerance ends the iterations early once the error or the change
	// per iteration is at most this value. At 0, all MaxIterations
	// always run.
	Tolerance float64

	// UseRotationLimits applies the rotation limits of the bones.
	UseRotationLimits bool `default:"true"`
}

// Defaults sets the default settings.
func (s *Settings) Defaults() {
	s.Weight = 1
	s.MaxIterations = 10
	s.Tolerance = 0
	s.UseRotationLimits = true
}

// Iterations returns MaxIterations, at least 1.
func (s *Settings) Iterations() int {
	return max(s.MaxIterations, 1)
}
