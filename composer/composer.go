// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package composer solves a tree of FABRIK chains joined at junctions,
// where the first bone of each child chain coincides with the last bone
// of its parent chain. The root chain is solved first, and each child
// chain is then solved with its first bone pinned to the solved end of
// its parent.
package composer

import (
	"fmt"

	"cogentcore.org/ik/base/ordmap"
	"cogentcore.org/ik/chain"
	"cogentcore.org/ik/solver"
	"cogentcore.org/ik/solver/fabrik"
)

// DefaultJunctionTolerance is the default maximal distance between the
// two bones of a junction.
const DefaultJunctionTolerance = 1e-4

// InvalidCompositionError is returned by [Composer.Initialize] for a set
// of chains that does not form a valid tree. Chain is the name of the
// offending chain, if any.
type InvalidCompositionError struct {
	Chain  string
	Reason string
}

func (e *InvalidCompositionError) Error() string {
	if e.Chain == "" {
		return "composer: " + e.Reason
	}
	return fmt.Sprintf("composer: chain %q: %s", e.Chain, e.Reason)
}

// Node is one chain in a [Composer].
type Node struct {

	// Name is the unique name of the chain.
	Name string

	// Parent is the name of the parent chain, or "" for the root.
	Parent string

	// Solver solves the chain.
	Solver *fabrik.Solver

	parent   *Node
	children []*Node
}

// Composer solves a tree of FABRIK chains. It is itself a
// [solver.Updater] and a [solver.Fixer].
type Composer struct {

	// JunctionTolerance is the maximal distance between the last bone of a
	// parent chain and the first bone of a child chain at initialization.
	JunctionTolerance float64 `default:"1e-4"`

	nodes *ordmap.Map[string, *Node]

	// nodes in breadth-first order from the root
	order []*Node
}

// New returns a new empty composer.
func New() *Composer {
	return &Composer{JunctionTolerance: DefaultJunctionTolerance, nodes: ordmap.New[string, *Node]()}
}

// Add adds a chain with the given name, solved by the given initialized
// solver, as a child of the given parent chain, or as the root for "".
// The composition must be initialized again after adding chains.
func (cp *Composer) Add(name, parent string, s *fabrik.Solver) error {
	if cp.nodes == nil {
		cp.nodes = ordmap.New[string, *Node]()
	}
	cp.order = nil
	if err := cp.nodes.AddNew(name, &Node{Name: name, Parent: parent, Solver: s}); err != nil {
		return &InvalidCompositionError{Chain: name, Reason: "is added more than once"}
	}
	return nil
}

// Node returns the chain with the given name, if any.
func (cp *Composer) Node(name string) (*Node, bool) {
	if cp.nodes == nil {
		return nil, false
	}
	return cp.nodes.ValueByKeyTry(name)
}

// Names returns the chain names in the order they were added.
func (cp *Composer) Names() []string {
	if cp.nodes == nil {
		return nil
	}
	return cp.nodes.Keys()
}

// Order returns the chains in solving order, after initialization.
func (cp *Composer) Order() []*Node {
	return cp.order
}

// Initialize validates the composition: there must be exactly one root,
// every parent must exist and every chain must descend from the root, chains may
// only share the junction bone with their parent, and each junction must
// be within JunctionTolerance.
func (cp *Composer) Initialize() error {
	cp.order = nil
	if cp.nodes.Len() == 0 {
		return &InvalidCompositionError{Reason: "has no chains"}
	}
	var roots []*Node
	for _, nd := range cp.nodes.All() {
		nd.parent = nil
		nd.children = nil
		if nd.Solver == nil || nd.Solver.Chain() == nil {
			return &InvalidCompositionError{Chain: nd.Name, Reason: "is not initialized"}
		}
	}
	for _, nd := range cp.nodes.All() {
		if nd.Parent == "" {
			roots = append(roots, nd)
			continue
		}
		par, ok := cp.nodes.ValueByKeyTry(nd.Parent)
		if !ok {
			return &InvalidCompositionError{Chain: nd.Name, Reason: fmt.Sprintf("parent %q is unknown", nd.Parent)}
		}
		nd.parent = par
		par.children = append(par.children, nd)
	}
	switch len(roots) {
	case 0:
		return &InvalidCompositionError{Reason: "has no root chain"}
	case 1:
	default:
		return &InvalidCompositionError{Reason: fmt.Sprintf("has %d root chains: %q and %q", len(roots), roots[0].Name, roots[1].Name)}
	}
	order := []*Node{roots[0]}
	for i := 0; i < len(order); i++ {
		order = append(order, order[i].children...)
	}
	if len(order) < cp.nodes.Len() {
		for _, nd := range cp.nodes.All() {
			if !contains(order, nd) {
				return &InvalidCompositionError{Chain: nd.Name, Reason: "is not connected to the root chain"}
			}
		}
	}
	if err := cp.checkBones(order); err != nil {
		return err
	}
	cp.order = order
	return nil
}

func contains(nodes []*Node, nd *Node) bool {
	for _, n := range nodes {
		if n == nd {
			return true
		}
	}
	return false
}

// checkBones checks bone sharing and junction gaps.
func (cp *Composer) checkBones(order []*Node) error {
	owner := map[*chain.Bone]*Node{}
	for _, nd := range order {
		c := nd.Solver.Chain()
		for i, b := range c.Bones {
			if i == 0 && nd.parent != nil && b == nd.parent.Solver.Chain().Last() {
				continue
			}
			if o, ok := owner[b]; ok {
				return &InvalidCompositionError{Chain: nd.Name, Reason: fmt.Sprintf("bone %d is shared with chain %q", i, o.Name)}
			}
			owner[b] = nd
		}
		if nd.parent == nil {
			continue
		}
		gap := c.Bones[0].Pos.Sub(nd.parent.Solver.EndEffector()).Len()
		if gap > cp.JunctionTolerance {
			return &InvalidCompositionError{Chain: nd.Name, Reason: fmt.Sprintf("junction gap %g exceeds %g", gap, cp.JunctionTolerance)}
		}
	}
	return nil
}

// Update solves the root chain and then each child chain anchored at
// the solved end of its parent. It does nothing before a successful
// initialization.
func (cp *Composer) Update() {
	for _, nd := range cp.order {
		if nd.parent != nil {
			nd.Solver.SetAnchor(nd.parent.Solver.EndEffector())
		}
		nd.Solver.Update()
	}
}

// FixTransforms returns all chains to their setup pose.
func (cp *Composer) FixTransforms() {
	for _, nd := range cp.order {
		nd.Solver.FixTransforms()
	}
}

// State returns the combined state of the last update: Idle if no chain
// was solved, IterationLimitReached if any chain did not converge,
// and Converged otherwise.
func (cp *Composer) State() solver.State {
	st := solver.Idle
	for _, nd := range cp.order {
		switch nd.Solver.State() {
		case solver.IterationLimitReached:
			return solver.IterationLimitReached
		case solver.Converged:
			st = solver.Converged
		}
	}
	return st
}
