// SPDX-License-Identifier: GPL-2.0-or-later

package mapdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLevelSentinels(t *testing.T) {
	lv := NewLevel()
	assert.Equal(t, NoIndex, lv.RootNode)
	assert.Equal(t, NoIndex, lv.RootSub)
}

func TestAddVertex(t *testing.T) {
	lv := NewLevel()
	i0 := lv.AddVertex(1, 2, false)
	i1 := lv.SplitVertex(3, 4)

	assert.Equal(t, 0, i0)
	assert.Equal(t, 1, i1)
	assert.False(t, lv.Vertices[i0].IsNew)
	assert.True(t, lv.Vertices[i1].IsNew)
}

func TestLinedefHelpers(t *testing.T) {
	l := Linedef{RightSide: 3, LeftSide: NoSide}
	assert.True(t, l.HasRight())
	assert.False(t, l.HasLeft())
	assert.True(t, l.IsReal())

	empty := Linedef{RightSide: NoSide, LeftSide: NoSide}
	assert.False(t, empty.IsReal())
}

func TestBBoxUnion(t *testing.T) {
	a := BBox{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	b := BBox{MinX: -5, MinY: 5, MaxX: 3, MaxY: 20}

	u := a.Union(b)
	assert.Equal(t, BBox{MinX: -5, MinY: 0, MaxX: 10, MaxY: 20}, u)
}

func TestRecomputeGeometry(t *testing.T) {
	lv := NewLevel()
	a := lv.AddVertex(0, 0, false)
	b := lv.AddVertex(3, 4, false)

	s := Seg{Start: a, End: b}
	s.RecomputeGeometry(lv.Vertices)

	assert.Equal(t, 3.0, s.Pdx)
	assert.Equal(t, 4.0, s.Pdy)
	assert.Equal(t, 5.0, s.Plen)
}
