// SPDX-License-Identifier: GPL-2.0-or-later

// Package geom implements the numerically delicate geometric predicates the
// BSP builder, blockmap builder and map loader all share: point/line
// classification against a partition, intersection, bounding boxes, angle
// computation and walltip construction.
package geom

import (
	"math"
	"sort"

	"github.com/rfomin/elfbsp/pkg/mapdata"
)

// SideEpsilon bounds the collinearity test in PointOnLineSide.
const SideEpsilon = 1.0 / 16384.0

// Partition is a directed line used to split a seg list: origin (X,Y) plus
// direction (DX,DY).
type Partition struct {
	X, Y, DX, DY float64
}

// PointOnLineSide classifies a point against a partition: -1 left, +1
// right, 0 on the line (within SideEpsilon).
func PointOnLineSide(px, py float64, part Partition) int {
	d := (px-part.X)*part.DY - (py-part.Y)*part.DX
	if d > SideEpsilon {
		return 1
	}
	if d < -SideEpsilon {
		return -1
	}
	return 0
}

// BoxOnLineSide classifies an axis-aligned box against a partition line:
// -1 fully on the negative side, +1 fully on the positive side, 0 straddling.
func BoxOnLineSide(b mapdata.BBox, part Partition) int {
	corners := [4][2]float64{
		{float64(b.MinX), float64(b.MinY)},
		{float64(b.MinX), float64(b.MaxY)},
		{float64(b.MaxX), float64(b.MinY)},
		{float64(b.MaxX), float64(b.MaxY)},
	}

	var sawNeg, sawPos bool
	for _, c := range corners {
		switch PointOnLineSide(c[0], c[1], part) {
		case -1:
			sawNeg = true
		case 1:
			sawPos = true
		}
	}

	switch {
	case sawNeg && sawPos:
		return 0
	case sawNeg:
		return -1
	case sawPos:
		return 1
	default:
		return 0
	}
}

// ComputeAngle returns the angle, in degrees in [0,360), of the line from
// (0,0) to (dx,dy). 0 is east, 90 is north.
func ComputeAngle(dx, dy float64) float64 {
	if dx == 0 {
		if dy > 0 {
			return 90
		}
		return 270
	}

	angle := math.Atan2(dy, dx) * 180 / math.Pi
	if angle < 0 {
		angle += 360
	}
	return angle
}

// roundTo1Over8192 snaps a coordinate to the nearest 1/8192 unit, matching
// the precision the original split-point computation uses so that repeated
// builds are bit-for-bit deterministic (spec.md §8 property 10).
func roundTo1Over8192(v float64) float64 {
	const scale = 8192.0
	return math.Round(v*scale) / scale
}

// SplitPoint computes the parametric intersection t of a seg (given by its
// start point and direction) with a partition, along with the resulting
// (x,y), rounded to 1/8192 map units.
func SplitPoint(psx, psy, pdx, pdy float64, part Partition) (t, x, y float64, ok bool) {
	denom := pdx*part.DY - pdy*part.DX
	if denom == 0 {
		return 0, 0, 0, false
	}

	t = -((psx-part.X)*part.DY - (psy-part.Y)*part.DX) / denom

	x = roundTo1Over8192(psx + pdx*t)
	y = roundTo1Over8192(psy + pdy*t)

	return t, x, y, true
}

// Dist2 returns the squared Euclidean distance between two points.
func Dist2(ax, ay, bx, by float64) float64 {
	dx := bx - ax
	dy := by - ay
	return dx*dx + dy*dy
}

// Dist returns the Euclidean distance between two points.
func Dist(ax, ay, bx, by float64) float64 {
	return math.Sqrt(Dist2(ax, ay, bx, by))
}

// NearlyCoincident reports whether two points are within
// mapdata.CoincideEpsilon of one another.
func NearlyCoincident(ax, ay, bx, by float64) bool {
	return Dist(ax, ay, bx, by) < mapdata.CoincideEpsilon
}

// BuildWallTips computes, for every vertex touched by at least one real
// linedef, a sorted circular list of outgoing line angles with the sectors
// on each side — used to distinguish open from closed space around split
// points (spec.md §4.3).
func BuildWallTips(lv *mapdata.Level) {
	lv.WallTips = make([][]mapdata.WallTip, len(lv.Vertices))

	addTip := func(from, to int, sectorCW, sectorCCW int) {
		a := lv.Vertices[from]
		b := lv.Vertices[to]
		angle := ComputeAngle(b.X-a.X, b.Y-a.Y)
		lv.WallTips[from] = append(lv.WallTips[from], mapdata.WallTip{
			Angle:     angle,
			SectorCW:  sectorCW,
			SectorCCW: sectorCCW,
		})
	}

	for i := range lv.Linedefs {
		ld := &lv.Linedefs[i]
		if ld.ZeroLen {
			continue
		}

		var rightSector, leftSector int = -1, -1
		if ld.HasRight() {
			rightSector = lv.Sidedefs[ld.RightSide].SectorRef
		}
		if ld.HasLeft() {
			leftSector = lv.Sidedefs[ld.LeftSide].SectorRef
		}

		addTip(ld.Start, ld.End, rightSector, leftSector)
		addTip(ld.End, ld.Start, leftSector, rightSector)
	}

	for v := range lv.WallTips {
		tips := lv.WallTips[v]
		sort.Slice(tips, func(i, j int) bool { return tips[i].Angle < tips[j].Angle })
	}
}

// OpenSpaceAt finds, among the vertex's walltips (sorted by angle, going
// counter-clockwise and wrapping past 360), the wedge between two
// consecutive tips that contains angle, and returns the SectorCW of the tip
// starting the wedge and the SectorCCW of the tip ending it. found is false
// only when the vertex has no walltips; otherwise some wedge always
// contains the angle. It does not check whether the wedge is open or
// closed space, and the returned sectors may be -1. The BSP builder calls
// it for each pair of intersection points on a partition line before
// adding a miniseg pair between them.
func OpenSpaceAt(lv *mapdata.Level, vertex int, angle float64) (sectorCW, sectorCCW int, found bool) {
	tips := lv.WallTips[vertex]
	if len(tips) == 0 {
		return -1, -1, false
	}
	if len(tips) == 1 {
		// a single tip bounds one wedge covering the whole circle
		return tips[0].SectorCW, tips[0].SectorCCW, true
	}

	for i, t := range tips {
		next := tips[(i+1)%len(tips)]
		lo, hi := t.Angle, next.Angle
		if lo <= hi {
			if angle >= lo && angle <= hi {
				return t.SectorCW, next.SectorCCW, true
			}
		} else {
			// wraps past 360
			if angle >= lo || angle <= hi {
				return t.SectorCW, next.SectorCCW, true
			}
		}
	}

	return -1, -1, false
}
