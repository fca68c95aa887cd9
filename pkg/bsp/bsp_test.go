// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfomin/elfbsp/pkg/geom"
	"github.com/rfomin/elfbsp/pkg/mapdata"
)

// squareRoom builds a single convex 10x10 sector: one-sided lines wound
// clockwise so each right side faces inward, so the BSP builder should
// need no partition at all.
func squareRoom(t *testing.T) *mapdata.Level {
	t.Helper()
	lv := mapdata.NewLevel()

	v0 := lv.AddVertex(0, 0, false)
	v1 := lv.AddVertex(10, 0, false)
	v2 := lv.AddVertex(10, 10, false)
	v3 := lv.AddVertex(0, 10, false)
	lv.NumOldVert = len(lv.Vertices)

	lv.Sectors = append(lv.Sectors, mapdata.Sector{Index: 0})

	corners := [][2]int{{v0, v3}, {v3, v2}, {v2, v1}, {v1, v0}}
	for i, c := range corners {
		sd := len(lv.Sidedefs)
		lv.Sidedefs = append(lv.Sidedefs, mapdata.Sidedef{Index: sd, SectorRef: 0})
		lv.Linedefs = append(lv.Linedefs, mapdata.Linedef{
			Index: i, Start: c[0], End: c[1], RightSide: sd, LeftSide: mapdata.NoSide,
		})
	}
	lv.NumRealLines = len(lv.Linedefs)

	geom.BuildWallTips(lv)
	return lv
}

func TestBuildConvexRoomYieldsOneSubsector(t *testing.T) {
	lv := squareRoom(t)

	b := NewBuilder(context.Background(), lv, Config{})
	require.NoError(t, b.Build())

	assert.Equal(t, mapdata.NoIndex, lv.RootNode)
	assert.NotEqual(t, mapdata.NoIndex, lv.RootSub)
	require.Len(t, lv.Subsectors, 1)
	assert.Len(t, lv.Subsectors[0].Segs, 4)
	assert.Empty(t, lv.Nodes)
}

func TestBuildEmptyLevelLeavesNoTree(t *testing.T) {
	lv := mapdata.NewLevel()
	b := NewBuilder(context.Background(), lv, Config{})
	require.NoError(t, b.Build())

	assert.Equal(t, mapdata.NoIndex, lv.RootNode)
	assert.Equal(t, mapdata.NoIndex, lv.RootSub)
}

func TestConfigSplitCostClamped(t *testing.T) {
	assert.Equal(t, defaultSplitCost, Config{SplitCost: 0}.splitCost())
	assert.Equal(t, minSplitCost, Config{SplitCost: -5}.splitCost())
	assert.Equal(t, maxSplitCost, Config{SplitCost: 999}.splitCost())
	assert.Equal(t, 7, Config{SplitCost: 7}.splitCost())
}

func TestBuildRespectsCancel(t *testing.T) {
	lv := squareRoom(t)
	b := NewBuilder(context.Background(), lv, Config{})
	b.Cancel()

	err := b.Build()
	assert.ErrorIs(t, err, ErrCancelled)
}

// twoRoomLevel builds a 20x10 area split into two 10x10 sectors by a
// shared two-sided wall at x=10, forcing the builder to actually partition.
func twoRoomLevel(t *testing.T) *mapdata.Level {
	t.Helper()
	lv := mapdata.NewLevel()

	v00 := lv.AddVertex(0, 0, false)
	v10 := lv.AddVertex(10, 0, false)
	v20 := lv.AddVertex(20, 0, false)
	v01 := lv.AddVertex(0, 10, false)
	v11 := lv.AddVertex(10, 10, false)
	v21 := lv.AddVertex(20, 10, false)
	lv.NumOldVert = len(lv.Vertices)

	lv.Sectors = append(lv.Sectors, mapdata.Sector{Index: 0}, mapdata.Sector{Index: 1})

	addOneSided := func(from, to, sector int) {
		sd := len(lv.Sidedefs)
		lv.Sidedefs = append(lv.Sidedefs, mapdata.Sidedef{Index: sd, SectorRef: sector})
		lv.Linedefs = append(lv.Linedefs, mapdata.Linedef{
			Index: len(lv.Linedefs), Start: from, End: to, RightSide: sd, LeftSide: mapdata.NoSide,
		})
	}

	// sector 0 outer walls, wound clockwise so the right sides face sector 0
	addOneSided(v00, v01, 0)
	addOneSided(v01, v11, 0)
	addOneSided(v10, v00, 0)
	// sector 1 outer walls, wound clockwise so the right sides face sector 1
	addOneSided(v20, v10, 1)
	addOneSided(v21, v20, 1)
	addOneSided(v11, v21, 1)

	// shared two-sided wall between the sectors, running south so its
	// right side faces sector 0 and its left side sector 1
	sdRight := len(lv.Sidedefs)
	lv.Sidedefs = append(lv.Sidedefs, mapdata.Sidedef{Index: sdRight, SectorRef: 0})
	sdLeft := len(lv.Sidedefs)
	lv.Sidedefs = append(lv.Sidedefs, mapdata.Sidedef{Index: sdLeft, SectorRef: 1})
	lv.Linedefs = append(lv.Linedefs, mapdata.Linedef{
		Index: len(lv.Linedefs), Start: v11, End: v10,
		RightSide: sdRight, LeftSide: sdLeft, TwoSided: true,
	})

	lv.NumRealLines = len(lv.Linedefs)
	geom.BuildWallTips(lv)
	return lv
}

func TestBuildTwoRoomsRequiresOnePartition(t *testing.T) {
	lv := twoRoomLevel(t)

	b := NewBuilder(context.Background(), lv, Config{})
	require.NoError(t, b.Build())

	assert.NotEqual(t, mapdata.NoIndex, lv.RootNode, "a non-convex seg list must produce at least one node")
	assert.Len(t, lv.Subsectors, 2)
}

func TestIsIffyFlagsPolyobjectAndSelfRef(t *testing.T) {
	lv := mapdata.NewLevel()
	lv.Sectors = append(lv.Sectors, mapdata.Sector{Index: 0, Polyobject: true})
	lv.Linedefs = append(lv.Linedefs, mapdata.Linedef{Index: 0, SelfRef: true})

	poly := &mapdata.Seg{Sector: 0, Linedef: mapdata.NoIndex}
	assert.True(t, isIffy(lv, poly))

	selfRef := &mapdata.Seg{Sector: mapdata.NoIndex, Linedef: 0}
	assert.True(t, isIffy(lv, selfRef))

	plain := &mapdata.Seg{Sector: mapdata.NoIndex, Linedef: mapdata.NoIndex}
	assert.False(t, isIffy(lv, plain))
}
