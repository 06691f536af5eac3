// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rig

import (
	"fmt"
	"path/filepath"
	"strings"

	"cogentcore.org/ik/base/iox/jsonx"
	"cogentcore.org/ik/base/iox/tomlx"
	"cogentcore.org/ik/base/iox/yamlx"
	"cogentcore.org/ik/spatial"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/jinzhu/copier"
)

// Desc describes a rig: a skeleton, the solvers that act on it in order,
// and an optional grounder. It is stored in TOML, YAML or JSON files
// with lower case keys.
type Desc struct {

	// Name is the name of the rig.
	Name string

	// TimeStep is the fixed solver time step in seconds, or 0 to solve
	// once per update.
	TimeStep float64

	// MaxSteps is the maximal number of steps per update with a TimeStep.
	MaxSteps int

	// FixTransforms returns the solved joints to the rest pose before
	// each step. It is always on with a Grounder.
	FixTransforms bool

	// Joints are the joints of the skeleton.
	Joints []JointDesc

	// Solvers are run in order, parents before children.
	Solvers []SolverDesc

	// Grounder adapts the leg solvers to the Ground, if set.
	Grounder *GrounderDesc
}

// Vec is a vector of 3 numbers, or a quaternion of 4 numbers (w, x, y, z),
// or an axis and an angle in degrees (x, y, z, degrees).
type Vec []float64

// Vec3 returns the vector, or the zero vector if empty.
func (v Vec) Vec3() (mgl64.Vec3, error) {
	switch len(v) {
	case 0:
		return mgl64.Vec3{}, nil
	case 3:
		return mgl64.Vec3{v[0], v[1], v[2]}, nil
	}
	return mgl64.Vec3{}, fmt.Errorf("vector %v needs 3 values", []float64(v))
}

// Quat returns the quaternion (w, x, y, z), or the identity if empty.
func (v Vec) Quat() (mgl64.Quat, error) {
	switch len(v) {
	case 0:
		return mgl64.QuatIdent(), nil
	case 4:
		q := mgl64.Quat{W: v[0], V: mgl64.Vec3{v[1], v[2], v[3]}}
		if q.Len() < spatial.Epsilon {
			return q, fmt.Errorf("quaternion %v is zero", []float64(v))
		}
		return q.Normalize(), nil
	}
	return mgl64.QuatIdent(), fmt.Errorf("quaternion %v needs 4 values", []float64(v))
}

// AxisAngle returns the rotation about the axis (x, y, z) by the
// angle in degrees, or the identity if empty.
func (v Vec) AxisAngle() (mgl64.Quat, error) {
	switch len(v) {
	case 0:
		return mgl64.QuatIdent(), nil
	case 4:
		return spatial.AxisAngleDeg(mgl64.Vec3{v[0], v[1], v[2]}, v[3]), nil
	}
	return mgl64.QuatIdent(), fmt.Errorf("axis angle %v needs 4 values", []float64(v))
}

// VecOf returns the Vec of the given vector.
func VecOf(v mgl64.Vec3) Vec {
	return Vec{v[0], v[1], v[2]}
}

// QuatOf returns the Vec of the given quaternion.
func QuatOf(q mgl64.Quat) Vec {
	return Vec{q.W, q.V[0], q.V[1], q.V[2]}
}

// rotation returns the rotation given as a quaternion or as an axis angle.
func rotation(rot, axisAngle Vec) (mgl64.Quat, error) {
	if len(rot) > 0 {
		return rot.Quat()
	}
	return axisAngle.AxisAngle()
}

// JointDesc describes a joint of the skeleton in its rest pose.
type JointDesc struct {

	// Name is the unique name of the joint.
	Name string

	// Parent is the name of the parent joint, or "" for a root joint.
	Parent string

	// Pos is the world position.
	Pos Vec

	// Rot is the world rotation as a quaternion (w, x, y, z).
	Rot Vec

	// AxisAngle is the world rotation as an axis and an angle in degrees,
	// used if Rot is not set.
	AxisAngle Vec

	// Weight in [0, 1] is the bending weight of the bone, default 1.
	Weight *float64

	// Limit is the optional rotation limit of the bone.
	Limit *LimitDesc
}

// LimitDesc describes a rotation limit. All angles are in degrees.
type LimitDesc struct {

	// Kind is one of angle, hinge, polygonal or spline.
	Kind string

	// Axis is the main axis in the local space of the bone, which is
	// required for polygonal and spline limits. By default it is the
	// direction of the bone, or a normal to it for hinges.
	Axis Vec

	// Swing is the maximal swing of an angle limit.
	Swing float64

	// Twist is the maximal twist of angle, polygonal and spline limits.
	Twist float64

	// Min and Max are the range of a hinge limit.
	Min, Max float64

	// Free disables the range of a hinge limit.
	Free bool

	// Points are the directions of the reach cone of a polygonal limit.
	Points []Vec

	// Keys are the (azimuth, swing) keys of the reach curve of a spline limit.
	Keys []Vec
}

// TargetDesc describes the target of a solver.
type TargetDesc struct {

	// Joint is the name of a joint whose world pose is the target
	// on every update, instead of Pos and Rot.
	Joint string

	// Pos is the world position.
	Pos Vec

	// Rot is the world rotation as a quaternion (w, x, y, z).
	Rot Vec

	// AxisAngle is the world rotation as an axis and an angle in degrees.
	AxisAngle Vec

	// PosWeight in [0, 1] is the weight of the position, default 1.
	PosWeight *float64

	// RotWeight in [0, 1] is the weight of the rotation.
	RotWeight float64
}

// SolverDesc describes a solver. Fields after Target only apply to
// some kinds.
type SolverDesc struct {

	// Name is the unique name of the solver.
	Name string

	// Kind is one of ccd, fabrik, trig, aim or composer.
	Kind string

	// Bones are the joint names of the chain, from parent to child.
	Bones []string

	// Weight in [0, 1] is the master weight, default 1.
	Weight *float64

	// MaxIterations is the maximal number of iterations, default 10.
	MaxIterations *int

	// Tolerance ends iterations early, if > 0.
	Tolerance float64

	// NoLimits disables the rotation limits of the bones.
	NoLimits bool

	// Target is the target.
	Target TargetDesc

	// Order is the order of bone indices for ccd.
	Order []int

	// UpdateLengths re-measures bone lengths on each update for fabrik.
	UpdateLengths bool

	// BendMode is one of Animation, Goal, Parent or Target for trig.
	BendMode string

	// BendGoal is the bend goal position for trig.
	BendGoal Vec

	// BendGoalWeight is the weight of the bend goal for trig, default 1.
	BendGoalWeight *float64

	// MaintainRotation is the weight for keeping the end rotation for trig.
	MaintainRotation float64

	// Axis is the aimed local axis of the last bone for aim, default +Z.
	Axis Vec

	// PoleAxis is the local pole axis of the last bone for aim, default +Y.
	PoleAxis Vec

	// PolePos is the pole position for aim.
	PolePos Vec

	// PoleWeight is the weight of the pole for aim.
	PoleWeight float64

	// ClampWeight is the clamp weight for aim, default 0.1.
	ClampWeight *float64

	// ClampSmoothing is the number of clamp smoothing passes for aim, default 2.
	ClampSmoothing *int

	// Chains are the fabrik chains of a composer. The settings of the
	// composer apply to every chain without its own settings.
	Chains []ChainDesc

	// JunctionTolerance is the maximal junction gap of a composer.
	JunctionTolerance float64
}

// ChainDesc describes one chain of a composer.
type ChainDesc struct {

	// Name is the unique name of the chain.
	Name string

	// Parent is the name of the parent chain, or "" for the root chain.
	Parent string

	// Bones are the joint names of the chain, from parent to child.
	Bones []string

	// Target is the target of the end of the chain.
	Target TargetDesc

	// Weight in [0, 1] is the master weight of the chain.
	Weight *float64
}

// GrounderDesc describes a grounder.
type GrounderDesc struct {

	// Legs are the names of the leg solvers.
	Legs []string

	// Pelvis is the name of the joint moved by the pelvis offset.
	Pelvis string

	// Root is the name of the character root joint at ground level.
	// The origin is used if empty.
	Root string

	// Weight fades the grounder, default 1.
	Weight *float64

	// MaxStep is the maximal step height, default 0.5.
	MaxStep *float64

	// FootSpeed and PelvisSpeed are the smoothing speeds, default 10 and 5.
	// 0 follows immediately.
	FootSpeed, PelvisSpeed *float64

	// Ground are the shapes of the ground.
	Ground []ShapeDesc
}

// ShapeDesc describes a ground shape.
type ShapeDesc struct {

	// Kind is plane or box.
	Kind string

	// Point and Normal define a plane. The default is the horizontal
	// plane through the origin.
	Point, Normal Vec

	// Min and Max are the corners of a box.
	Min, Max Vec
}

// Clone returns a deep copy of the description.
func (d *Desc) Clone() (*Desc, error) {
	c := &Desc{}
	if err := copier.CopyWithOption(c, d, copier.Option{CaseSensitive: true, DeepCopy: true}); err != nil {
		return nil, err
	}
	return c, nil
}

// Solver returns the solver description with the given name, if any.
func (d *Desc) Solver(name string) (*SolverDesc, bool) {
	for i := range d.Solvers {
		if d.Solvers[i].Name == name {
			return &d.Solvers[i], true
		}
	}
	return nil, false
}

// Format is a rig file format.
type Format int32

const (
	TOML Format = iota
	YAML
	JSON
)

var formatNames = [...]string{"toml", "yaml", "json"}

func (f Format) String() string {
	if f >= 0 && int(f) < len(formatNames) {
		return formatNames[f]
	}
	return "Format(?)"
}

// FormatFromExt returns the format for the extension of the given file name.
func FormatFromExt(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".toml":
		return TOML, nil
	case ".yaml", ".yml":
		return YAML, nil
	case ".json":
		return JSON, nil
	}
	return TOML, fmt.Errorf("rig: unknown file format %q", filepath.Ext(filename))
}

// OpenDesc opens a rig description from the given file,
// in the format given by its extension.
func OpenDesc(filename string) (*Desc, error) {
	f, err := FormatFromExt(filename)
	if err != nil {
		return nil, err
	}
	d := &Desc{}
	switch f {
	case TOML:
		err = tomlx.Open(d, filename)
	case YAML:
		err = yamlx.Open(d, filename)
	case JSON:
		err = jsonx.Open(d, filename)
	}
	if err != nil {
		return nil, fmt.Errorf("rig: open %q: %w", filename, err)
	}
	return d, nil
}

// ReadDesc reads a rig description in the given format from the given bytes.
func ReadDesc(data []byte, f Format) (*Desc, error) {
	d := &Desc{}
	var err error
	switch f {
	case TOML:
		err = tomlx.ReadBytes(d, data)
	case YAML:
		err = yamlx.ReadBytes(d, data)
	case JSON:
		err = jsonx.ReadBytes(d, data)
	}
	if err != nil {
		return nil, fmt.Errorf("rig: read %s: %w", f, err)
	}
	return d, nil
}

// SaveDesc saves the rig description to the given file,
// in the format given by its extension.
func SaveDesc(d *Desc, filename string) error {
	f, err := FormatFromExt(filename)
	if err != nil {
		return err
	}
	switch f {
	case TOML:
		err = tomlx.Save(d, filename)
	case YAML:
		err = yamlx.Save(d, filename)
	case JSON:
		err = jsonx.Save(d, filename)
	}
	if err != nil {
		return fmt.Errorf("rig: save %q: %w", filename, err)
	}
	return nil
}
