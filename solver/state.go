// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import "strconv"

// State is the state of a solver, as of its last update.
type State int32

const (
	// Idle is the state of a solver that has not run, either because it has
	// no chain or because its weight is 0.
	Idle State = iota

	// Iterating is the state of a solver during an update.
	Iterating

	// Converged means the last update reached the target within tolerance,
	// or the best pose possible for an unreachable target.
	Converged

	// IterationLimitReached means the last update used all of its
	// iterations without converging.
	IterationLimitReached
)

var stateNames = [...]string{"Idle", "Iterating", "Converged", "IterationLimitReached"}

// String returns the name of the state.
func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "State(" + strconv.Itoa(int(s)) + ")"
}

// MarshalText implements [encoding.TextMarshaler].
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
