// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rig

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"cogentcore.org/ik/chain"
	"cogentcore.org/ik/composer"
	"cogentcore.org/ik/ground"
	"cogentcore.org/ik/limits"
	"cogentcore.org/ik/solver"
	"cogentcore.org/ik/solver/aim"
	"cogentcore.org/ik/solver/ccd"
	"cogentcore.org/ik/solver/fabrik"
	"cogentcore.org/ik/solver/trig"
	"cogentcore.org/ik/spatial"
	"github.com/go-gl/mathgl/mgl64"
)

// builder builds a [Rig] from a [Desc].
type builder struct {
	desc *Desc
	sk   *Skeleton
}

func orDefault[T any](v *T, def T) T {
	if v == nil {
		return def
	}
	return *v
}

func (bd *builder) skeleton() error {
	joints := make([]*Joint, len(bd.desc.Joints))
	for i := range bd.desc.Joints {
		jd := &bd.desc.Joints[i]
		pos, err := jd.Pos.Vec3()
		if err != nil {
			return fmt.Errorf("rig: joint %q: %w", jd.Name, err)
		}
		rot, err := rotation(jd.Rot, jd.AxisAngle)
		if err != nil {
			return fmt.Errorf("rig: joint %q: %w", jd.Name, err)
		}
		joints[i] = &Joint{Name: jd.Name, ParentName: jd.Parent, Rest: spatial.NewPose(pos, rot)}
	}
	sk, err := NewSkeleton(joints...)
	if err != nil {
		return err
	}
	bd.sk = sk
	return nil
}

// jointDesc returns the description of the joint with the given name.
func (bd *builder) jointDesc(name string) *JointDesc {
	for i := range bd.desc.Joints {
		if bd.desc.Joints[i].Name == name {
			return &bd.desc.Joints[i]
		}
	}
	return nil
}

// newLimit returns a new rotation limit for the given description.
func newLimit(ld *LimitDesc) (limits.Limit, error) {
	axis, err := ld.Axis.Vec3()
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(ld.Kind) {
	case "angle":
		return limits.NewAngle(axis, ld.Swing, ld.Twist), nil
	case "hinge":
		lh := limits.NewHinge(axis, ld.Min, ld.Max)
		lh.UseLimits = !ld.Free
		return lh, nil
	case "polygonal":
		pts := make([]mgl64.Vec3, len(ld.Points))
		for i, p := range ld.Points {
			if pts[i], err = p.Vec3(); err != nil {
				return nil, err
			}
		}
		return limits.NewPolygonal(axis, ld.Twist, pts...)
	case "spline":
		keys := make([]limits.SplineKey, len(ld.Keys))
		for i, k := range ld.Keys {
			if len(k) != 2 {
				return nil, fmt.Errorf("spline key %v needs 2 values", []float64(k))
			}
			keys[i] = limits.SplineKey{Azimuth: k[0], Swing: k[1]}
		}
		return limits.NewSpline(axis, ld.Twist, keys...)
	}
	return nil, fmt.Errorf("unknown limit kind %q", ld.Kind)
}

// descends returns whether joint j descends from joint a.
func (bd *builder) descends(j, a int) bool {
	for p := bd.sk.Joints[j].Parent; p >= 0; p = bd.sk.Joints[p].Parent {
		if p == a {
			return true
		}
	}
	return false
}

// link returns a new link for the given joint names,
// with new bones in their rest pose.
func (bd *builder) link(name string, names []string) (*link, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("rig: solver %q has no bones", name)
	}
	l := &link{name: name, target: -1, joints: make([]int, len(names)), bones: make([]*chain.Bone, len(names))}
	for i, jn := range names {
		j, ok := bd.sk.Index(jn)
		if !ok {
			return nil, fmt.Errorf("rig: solver %q: joint %q is unknown", name, jn)
		}
		if i > 0 && !bd.descends(j, l.joints[i-1]) {
			return nil, fmt.Errorf("rig: solver %q: joint %q does not descend from %q", name, jn, names[i-1])
		}
		l.joints[i] = j
		rest := bd.sk.Joints[j].Rest
		b := chain.NewBone(jn, rest.Pos, rest.Rot)
		jd := bd.jointDesc(jn)
		b.Weight = orDefault(jd.Weight, 1)
		if jd.Limit != nil {
			lim, err := newLimit(jd.Limit)
			if err != nil {
				return nil, fmt.Errorf("rig: joint %q: limit: %w", jn, err)
			}
			b.Limit = lim
		}
		l.bones[i] = b
	}
	return l, nil
}

// target sets the target of the given link.
func (bd *builder) target(l *link, s solver.Solver, td *TargetDesc) error {
	if td.Joint != "" {
		j, ok := bd.sk.Index(td.Joint)
		if !ok {
			return fmt.Errorf("rig: solver %q: target joint %q is unknown", l.name, td.Joint)
		}
		l.target = j
	} else if len(td.Pos) == 0 {
		return nil
	}
	pos, err := td.Pos.Vec3()
	if err != nil {
		return fmt.Errorf("rig: solver %q: target: %w", l.name, err)
	}
	rot, err := rotation(td.Rot, td.AxisAngle)
	if err != nil {
		return fmt.Errorf("rig: solver %q: target: %w", l.name, err)
	}
	if l.target >= 0 {
		w := bd.sk.World(l.target)
		pos, rot = w.Pos, w.Rot
	}
	s.SetTarget(chain.Target{Pos: pos, Rot: rot, PosWeight: orDefault(td.PosWeight, 1), RotWeight: td.RotWeight})
	return nil
}

// settings sets the settings shared by all solvers.
func settings(st *solver.Settings, sd *SolverDesc) {
	st.Weight = orDefault(sd.Weight, 1)
	st.MaxIterations = orDefault(sd.MaxIterations, 10)
	st.Tolerance = sd.Tolerance
	st.UseRotationLimits = !sd.NoLimits
}

// solver returns the binding of the given solver description.
func (bd *builder) solver(sd *SolverDesc) (binding, error) {
	if sd.Name == "" {
		return nil, fmt.Errorf("rig: solver has no name")
	}
	kind := strings.ToLower(sd.Kind)
	if kind == "composer" {
		return bd.composer(sd)
	}
	l, err := bd.link(sd.Name, sd.Bones)
	if err != nil {
		return nil, err
	}
	var s solver.Solver
	switch kind {
	case "ccd":
		cs := ccd.New()
		settings(&cs.Settings, sd)
		cs.Order = sd.Order
		s = cs
	case "fabrik":
		fs := fabrik.New()
		settings(&fs.Settings, sd)
		fs.UpdateLengths = sd.UpdateLengths
		s = fs
	case "trig":
		ts := trig.New()
		settings(&ts.Settings, sd)
		if sd.BendMode != "" {
			bm, ok := trig.BendModeFromString(sd.BendMode)
			if !ok {
				return nil, fmt.Errorf("rig: solver %q: unknown bend mode %q", sd.Name, sd.BendMode)
			}
			ts.BendMode = bm
		}
		if ts.BendGoal, err = sd.BendGoal.Vec3(); err != nil {
			return nil, fmt.Errorf("rig: solver %q: bend goal: %w", sd.Name, err)
		}
		ts.BendGoalWeight = orDefault(sd.BendGoalWeight, 1)
		ts.MaintainRotationWeight = sd.MaintainRotation
		s = ts
	case "aim":
		as := aim.New()
		settings(&as.Settings, sd)
		if len(sd.Axis) > 0 {
			if as.Axis, err = sd.Axis.Vec3(); err != nil {
				return nil, fmt.Errorf("rig: solver %q: axis: %w", sd.Name, err)
			}
		}
		if len(sd.PoleAxis) > 0 {
			if as.PoleAxis, err = sd.PoleAxis.Vec3(); err != nil {
				return nil, fmt.Errorf("rig: solver %q: pole axis: %w", sd.Name, err)
			}
		}
		if as.PolePos, err = sd.PolePos.Vec3(); err != nil {
			return nil, fmt.Errorf("rig: solver %q: pole position: %w", sd.Name, err)
		}
		as.PoleWeight = sd.PoleWeight
		as.ClampWeight = orDefault(sd.ClampWeight, 0.1)
		as.ClampSmoothing = orDefault(sd.ClampSmoothing, 2)
		s = as
	default:
		return nil, fmt.Errorf("rig: solver %q: unknown kind %q", sd.Name, sd.Kind)
	}
	l.solver = s
	if err := s.Initialize(chain.New(bd.sk.ParentWorld(l.joints[0]), l.bones...)); err != nil {
		return nil, fmt.Errorf("rig: solver %q: %w", sd.Name, err)
	}
	if err := bd.target(l, s, &sd.Target); err != nil {
		return nil, err
	}
	return &single{sk: bd.sk, link: l}, nil
}

// depth returns the number of ancestors of the given composer chain,
// or -1 for a chain in a parent cycle or with an unknown parent.
func depth(chains []ChainDesc, i int) int {
	d := 0
	for p := chains[i].Parent; p != ""; d++ {
		if d > len(chains) {
			return -1
		}
		pi := slices.IndexFunc(chains, func(c ChainDesc) bool { return c.Name == p })
		if pi < 0 {
			return -1
		}
		p = chains[pi].Parent
	}
	return d
}

// composer returns the binding of a composer of fabrik chains, set up
// parents first. A child chain that starts at the last joint of its
// parent leaves that joint to the parent.
func (bd *builder) composer(sd *SolverDesc) (binding, error) {
	idx := make([]int, len(sd.Chains))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return cmp.Compare(depth(sd.Chains, a), depth(sd.Chains, b))
	})
	cp := composer.New()
	if sd.JunctionTolerance > 0 {
		cp.JunctionTolerance = sd.JunctionTolerance
	}
	cb := &composed{sk: bd.sk, cp: cp}
	byName := map[string]*link{}
	for _, i := range idx {
		cd := &sd.Chains[i]
		name := sd.Name + "/" + cd.Name
		l, err := bd.link(name, cd.Bones)
		if err != nil {
			return nil, err
		}
		if pl, ok := byName[cd.Parent]; ok && pl.joints[len(pl.joints)-1] == l.joints[0] {
			l.from = 1
		}
		byName[cd.Name] = l
		fs := fabrik.New()
		settings(&fs.Settings, sd)
		if cd.Weight != nil {
			fs.Weight = *cd.Weight
		}
		fs.UpdateLengths = sd.UpdateLengths
		l.solver = fs
		if err := fs.Initialize(chain.New(bd.sk.ParentWorld(l.joints[0]), l.bones...)); err != nil {
			return nil, fmt.Errorf("rig: solver %q: %w", name, err)
		}
		if err := bd.target(l, fs, &cd.Target); err != nil {
			return nil, err
		}
		if err := cp.Add(cd.Name, cd.Parent, fs); err != nil {
			return nil, fmt.Errorf("rig: solver %q: %w", sd.Name, err)
		}
		cb.links = append(cb.links, l)
	}
	if err := cp.Initialize(); err != nil {
		return nil, fmt.Errorf("rig: solver %q: %w", sd.Name, err)
	}
	return cb, nil
}

// grounder returns the grounder binding for the given legs.
func (bd *builder) grounder(gd *GrounderDesc, solvers map[string]binding) (*grounded, error) {
	var casters ground.Casters
	for i, sh := range gd.Ground {
		c, err := newShape(&sh)
		if err != nil {
			return nil, fmt.Errorf("rig: ground %d: %w", i, err)
		}
		casters = append(casters, c)
	}
	gb := &grounded{sk: bd.sk, pelvis: -1, root: -1}
	for _, name := range gd.Legs {
		b, ok := solvers[name]
		if !ok {
			return nil, fmt.Errorf("rig: grounder leg %q is unknown", name)
		}
		sb, ok := b.(*single)
		if !ok {
			return nil, fmt.Errorf("rig: grounder leg %q is not a single chain solver", name)
		}
		sb.link.grounded = true
		gb.legs = append(gb.legs, sb.link)
	}
	var err error
	if gb.pelvis, err = bd.optJoint(gd.Pelvis, "pelvis"); err != nil {
		return nil, err
	}
	if gb.root, err = bd.optJoint(gd.Root, "root"); err != nil {
		return nil, err
	}
	legs := make([]ground.Leg, len(gb.legs))
	for i, l := range gb.legs {
		legs[i] = l.solver
	}
	gr := ground.NewGrounder(casters, legs...)
	gr.Weight = orDefault(gd.Weight, 1)
	gr.MaxStep = orDefault(gd.MaxStep, 0.5)
	gr.FootSpeed = orDefault(gd.FootSpeed, 10)
	gr.PelvisSpeed = orDefault(gd.PelvisSpeed, 5)
	gb.gr = gr
	return gb, nil
}

// optJoint returns the index of the named joint, or -1 for "".
func (bd *builder) optJoint(name, role string) (int, error) {
	if name == "" {
		return -1, nil
	}
	j, ok := bd.sk.Index(name)
	if !ok {
		return -1, fmt.Errorf("rig: grounder %s joint %q is unknown", role, name)
	}
	return j, nil
}

// newShape returns a ray caster for the given ground shape.
func newShape(sh *ShapeDesc) (ground.RayCaster, error) {
	switch strings.ToLower(sh.Kind) {
	case "plane":
		pt, err := sh.Point.Vec3()
		if err != nil {
			return nil, err
		}
		n, err := sh.Normal.Vec3()
		if err != nil {
			return nil, err
		}
		return &ground.Plane{Point: pt, Normal: spatial.NormalOr(n, spatial.Up)}, nil
	case "box":
		mn, err := sh.Min.Vec3()
		if err != nil {
			return nil, err
		}
		mx, err := sh.Max.Vec3()
		if err != nil {
			return nil, err
		}
		return ground.NewBox(mn, mx), nil
	}
	return nil, fmt.Errorf("unknown shape kind %q", sh.Kind)
}
