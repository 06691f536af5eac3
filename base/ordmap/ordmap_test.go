// Copyright (c) 2022, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ordmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMap(t *testing.T) {
	om := New[string, int]()
	om.Add("spine", 3)
	om.Add("arm", 2)
	om.Add("leg", 1)
	assert.Equal(t, 3, om.Len())
	assert.Equal(t, []string{"spine", "arm", "leg"}, om.Keys())
	assert.Equal(t, 2, om.ValueByKey("arm"))
	assert.Equal(t, 2, om.IndexByKey("leg"))
	assert.Equal(t, -1, om.IndexByKey("tail"))

	om.Add("arm", 20)
	assert.Equal(t, 3, om.Len())
	assert.Equal(t, 20, om.ValueByIndex(1))
	assert.Equal(t, "arm", om.KeyByIndex(1))

	assert.Error(t, om.AddNew("leg", 5))
	assert.NoError(t, om.AddNew("tail", 5))

	_, ok := om.ValueByKeyTry("head")
	assert.False(t, ok)

	var keys []string
	sum := 0
	for k, v := range om.All() {
		keys = append(keys, k)
		sum += v
	}
	assert.Equal(t, []string{"spine", "arm", "leg", "tail"}, keys)
	assert.Equal(t, 29, sum)

	var zero Map[string, int]
	assert.Equal(t, 0, zero.Len())
	zero.Add("a", 1)
	assert.Equal(t, 1, zero.ValueByKey("a"))
}
