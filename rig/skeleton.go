// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rig

import (
	"fmt"

	"cogentcore.org/ik/spatial"
	"github.com/go-gl/mathgl/mgl64"
)

// Joint is one joint of a [Skeleton].
type Joint struct {

	// Name is the unique name of the joint.
	Name string

	// ParentName is the name of the parent joint, or "" for a root joint.
	ParentName string

	// Parent is the index of the parent joint, or -1 for a root joint.
	Parent int

	// Rest is the world pose of the joint in the rest pose.
	Rest spatial.Pose

	// Local is the current pose relative to the parent joint.
	Local spatial.Pose

	// World is the current world pose.
	World spatial.Pose

	children []int
}

// Skeleton is a tree of joints, sorted so that parents come before
// their children. Setting the world pose of a joint carries all of its
// descendants along.
type Skeleton struct {

	// Joints in parents first order.
	Joints []*Joint

	index map[string]int
}

// NewSkeleton returns a new skeleton of the given joints in their rest pose.
// The joints may be given in any order.
func NewSkeleton(joints ...*Joint) (*Skeleton, error) {
	sk := &Skeleton{index: make(map[string]int, len(joints))}
	byName := make(map[string]*Joint, len(joints))
	for i, jt := range joints {
		if jt.Name == "" {
			return nil, fmt.Errorf("rig: joint %d has no name", i)
		}
		if _, has := byName[jt.Name]; has {
			return nil, fmt.Errorf("rig: joint %q is defined more than once", jt.Name)
		}
		byName[jt.Name] = jt
	}
	for _, jt := range joints {
		if jt.ParentName != "" && byName[jt.ParentName] == nil {
			return nil, fmt.Errorf("rig: joint %q: parent %q is unknown", jt.Name, jt.ParentName)
		}
	}
	for len(sk.Joints) < len(joints) {
		added := false
		for _, jt := range joints {
			if _, has := sk.index[jt.Name]; has {
				continue
			}
			jt.Parent = -1
			if jt.ParentName != "" {
				pi, has := sk.index[jt.ParentName]
				if !has {
					continue
				}
				jt.Parent = pi
			}
			sk.add(jt)
			added = true
		}
		if !added {
			for _, jt := range joints {
				if _, has := sk.index[jt.Name]; !has {
					return nil, fmt.Errorf("rig: joint %q is in a parent cycle", jt.Name)
				}
			}
		}
	}
	sk.Reset()
	return sk, nil
}

func (sk *Skeleton) add(jt *Joint) {
	i := len(sk.Joints)
	jt.Rest.Defaults()
	jt.children = nil
	sk.Joints = append(sk.Joints, jt)
	sk.index[jt.Name] = i
	if jt.Parent >= 0 {
		p := sk.Joints[jt.Parent]
		p.children = append(p.children, i)
	}
}

// Len returns the number of joints.
func (sk *Skeleton) Len() int {
	return len(sk.Joints)
}

// Index returns the index of the joint with the given name.
func (sk *Skeleton) Index(name string) (int, bool) {
	i, ok := sk.index[name]
	return i, ok
}

// World returns the current world pose of joint i.
func (sk *Skeleton) World(i int) spatial.Pose {
	return sk.Joints[i].World
}

// ParentWorld returns the current world pose of the parent of joint i,
// or the identity pose for a root joint.
func (sk *Skeleton) ParentWorld(i int) spatial.Pose {
	if p := sk.Joints[i].Parent; p >= 0 {
		return sk.Joints[p].World
	}
	return spatial.NewPose(mgl64.Vec3{}, mgl64.QuatIdent())
}

// SetWorld sets the world pose of joint i, keeping the local poses
// of its descendants.
func (sk *Skeleton) SetWorld(i int, ps spatial.Pose) {
	jt := sk.Joints[i]
	ps.Defaults()
	jt.World = ps
	jt.Local = ps.RelTo(sk.ParentWorld(i))
	sk.updateChildren(i)
}

// SetLocal sets the pose of joint i relative to its parent,
// keeping the local poses of its descendants.
func (sk *Skeleton) SetLocal(i int, ps spatial.Pose) {
	jt := sk.Joints[i]
	ps.Defaults()
	jt.Local = ps
	jt.World.FromRel(ps, sk.ParentWorld(i))
	sk.updateChildren(i)
}

func (sk *Skeleton) updateChildren(i int) {
	par := sk.Joints[i].World
	for _, ci := range sk.Joints[i].children {
		ch := sk.Joints[ci]
		ch.World.FromRel(ch.Local, par)
		sk.updateChildren(ci)
	}
}

// Reset returns all joints to the rest pose.
func (sk *Skeleton) Reset() {
	for i, jt := range sk.Joints {
		jt.World = jt.Rest
		jt.Local = jt.Rest.RelTo(sk.ParentWorld(i))
	}
}

// Poses returns the current world poses of all joints by name.
func (sk *Skeleton) Poses() map[string]spatial.Pose {
	ps := make(map[string]spatial.Pose, len(sk.Joints))
	for _, jt := range sk.Joints {
		ps[jt.Name] = jt.World
	}
	return ps
}
