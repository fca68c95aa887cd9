// SPDX-License-Identifier: GPL-2.0-or-later

package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rfomin/elfbsp/pkg/mapdata"
)

func TestPointOnLineSide(t *testing.T) {
	part := Partition{X: 0, Y: 0, DX: 1, DY: 0}

	assert.Equal(t, -1, PointOnLineSide(0, 1, part))
	assert.Equal(t, 1, PointOnLineSide(0, -1, part))
	assert.Equal(t, 0, PointOnLineSide(5, 0, part))
}

func TestBoxOnLineSide(t *testing.T) {
	part := Partition{X: 0, Y: 0, DX: 1, DY: 0}

	assert.Equal(t, -1, BoxOnLineSide(mapdata.BBox{MinX: 0, MinY: 1, MaxX: 10, MaxY: 10}, part))
	assert.Equal(t, 1, BoxOnLineSide(mapdata.BBox{MinX: 0, MinY: -10, MaxX: 10, MaxY: -1}, part))
	assert.Equal(t, 0, BoxOnLineSide(mapdata.BBox{MinX: 0, MinY: -10, MaxX: 10, MaxY: 10}, part))
}

func TestComputeAngle(t *testing.T) {
	assert.Equal(t, 0.0, ComputeAngle(1, 0))
	assert.Equal(t, 90.0, ComputeAngle(0, 1))
	assert.Equal(t, 270.0, ComputeAngle(0, -1))
	assert.InDelta(t, 180.0, ComputeAngle(-1, 0), 0.001)
}

func TestSplitPoint(t *testing.T) {
	part := Partition{X: 0, Y: 0, DX: 0, DY: 1}

	tt, x, y, ok := SplitPoint(-5, 5, 1, 0, part)
	assert.True(t, ok)
	assert.InDelta(t, 5.0, tt, 0.0001)
	assert.InDelta(t, 0.0, x, 0.0001)
	assert.InDelta(t, 5.0, y, 0.0001)

	_, _, _, ok = SplitPoint(0, 0, 0, 1, part)
	assert.False(t, ok, "a seg parallel to the partition has no unique intersection")
}

func TestNearlyCoincident(t *testing.T) {
	assert.True(t, NearlyCoincident(0, 0, 0, mapdata.CoincideEpsilon/2))
	assert.False(t, NearlyCoincident(0, 0, 0, mapdata.CoincideEpsilon*2))
}

func TestBuildWallTipsAndOpenSpace(t *testing.T) {
	lv := mapdata.NewLevel()
	v0 := lv.AddVertex(0, 0, false)
	v1 := lv.AddVertex(10, 0, false)
	v2 := lv.AddVertex(0, 10, false)

	lv.Sectors = append(lv.Sectors, mapdata.Sector{Index: 0}, mapdata.Sector{Index: 1})
	lv.Sidedefs = append(lv.Sidedefs,
		mapdata.Sidedef{Index: 0, SectorRef: 0},
		mapdata.Sidedef{Index: 1, SectorRef: 1},
	)
	lv.Linedefs = append(lv.Linedefs, mapdata.Linedef{
		Index: 0, Start: v0, End: v1, RightSide: 0, LeftSide: 1,
	})
	lv.Linedefs = append(lv.Linedefs, mapdata.Linedef{
		Index: 1, Start: v0, End: v2, RightSide: 0, LeftSide: -1,
	})

	BuildWallTips(lv)

	assert.Len(t, lv.WallTips[v0], 2, "vertex 0 is touched by both linedefs")
	assert.Len(t, lv.WallTips[v1], 1)

	_, _, found := OpenSpaceAt(lv, v1, 90)
	assert.True(t, found, "a vertex with any wall tips always resolves to some wedge")
}
