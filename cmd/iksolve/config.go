// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"cogentcore.org/ik/base/iox/tomlx"
	"github.com/spf13/cobra"
)

// ConfigFile is the default name of the optional config file.
const ConfigFile = "iksolve.toml"

// Config has the settings of the solve and watch commands.
type Config struct {

	// Frames is the number of updates to run.
	Frames int

	// DeltaTime is the time in seconds per frame.
	DeltaTime float64

	// Format is the output format: table, json, toml or yaml.
	Format string

	// Joints limits the output to the named joints, if set.
	Joints []string
}

// Defaults sets the default settings.
func (c *Config) Defaults() {
	c.Frames = 1
	c.DeltaTime = 1.0 / 60
	c.Format = "table"
}

// Open reads the config from the given file.
func (c *Config) Open(filename string) error {
	if err := tomlx.Open(c, filename); err != nil {
		return fmt.Errorf("config %q: %w", filename, err)
	}
	return nil
}

// addFlags adds the config flags to the given command.
func (c *Config) addFlags(cmd *cobra.Command, file *string) {
	f := cmd.Flags()
	f.StringVar(file, "config", ConfigFile, "config file")
	f.IntVarP(&c.Frames, "frames", "n", c.Frames, "number of frames to solve")
	f.Float64Var(&c.DeltaTime, "dt", c.DeltaTime, "seconds per frame")
	f.StringVarP(&c.Format, "format", "f", c.Format, "output format: table, json, toml or yaml")
	f.StringSliceVarP(&c.Joints, "joints", "j", nil, "joints to print (default all)")
}

// load returns the config of the given command: the defaults, overridden
// by the config file, overridden by the flags that are set. A missing
// default config file is skipped.
func load(cmd *cobra.Command, flagged *Config, file string) (*Config, error) {
	c := &Config{}
	c.Defaults()
	if _, err := os.Stat(file); err == nil || file != ConfigFile {
		if err := c.Open(file); err != nil {
			return nil, err
		}
	}
	f := cmd.Flags()
	if f.Changed("frames") {
		c.Frames = flagged.Frames
	}
	if f.Changed("dt") {
		c.DeltaTime = flagged.DeltaTime
	}
	if f.Changed("format") {
		c.Format = flagged.Format
	}
	if f.Changed("joints") {
		c.Joints = flagged.Joints
	}
	if c.Frames < 0 {
		return nil, fmt.Errorf("frames %d is negative", c.Frames)
	}
	if _, err := formatter(c.Format); err != nil {
		return nil, err
	}
	return c, nil
}
