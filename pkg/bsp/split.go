// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"sort"

	"github.com/rfomin/elfbsp/pkg/geom"
	"github.com/rfomin/elfbsp/pkg/mapdata"
)

// splitSegs partitions segs into a right list and a left list against part,
// splitting any seg that straddles the line and inserting a miniseg pair
// along each open gap between the resulting crossing points (spec.md §4.4).
func (b *Builder) splitSegs(segs []int, part geom.Partition) (rightHead, leftHead int, rightBBox, leftBBox mapdata.BBox) {
	rightHead, leftHead = mapdata.NoIndex, mapdata.NoIndex
	rightTail, leftTail := mapdata.NoIndex, mapdata.NoIndex
	rightBBox = mapdata.BBox{MinX: 1 << 30, MinY: 1 << 30, MaxX: -(1 << 30), MaxY: -(1 << 30)}
	leftBBox = rightBBox

	appendTo := func(headp, tailp *int, idx int, box *mapdata.BBox) {
		b.lv.Segs[idx].Next = mapdata.NoIndex
		if *headp == mapdata.NoIndex {
			*headp = idx
		} else {
			b.lv.Segs[*tailp].Next = idx
		}
		*tailp = idx
		*box = box.Union(segBBox(b.lv, idx))
	}
	appendRight := func(idx int) { appendTo(&rightHead, &rightTail, idx, &rightBBox) }
	appendLeft := func(idx int) { appendTo(&leftHead, &leftTail, idx, &leftBBox) }

	handled := make(map[int][2]int)
	var crossings []int // new vertex indices introduced by this partition

	for _, idx := range segs {
		if pieces, ok := handled[idx]; ok {
			sg := &b.lv.Segs[idx]
			sideA, sideB := classify(sg, part)
			placeSplitPieces(sg, sideA, sideB, pieces, appendRight, appendLeft)
			continue
		}

		sg := &b.lv.Segs[idx]
		sideA, sideB := classify(sg, part)

		switch {
		case sideA == 0 && sideB == 0:
			if collinearGoesRight(sg, part) {
				appendRight(idx)
			} else {
				appendLeft(idx)
			}

		case sideA >= 0 && sideB >= 0:
			appendRight(idx)

		case sideA <= 0 && sideB <= 0:
			appendLeft(idx)

		default:
			_, x, y, ok := geom.SplitPoint(sg.Psx, sg.Psy, sg.Pdx, sg.Pdy, part)
			if !ok {
				// Parallel to its own partition candidate cannot happen;
				// fall back to treating it as collinear rather than panic.
				appendRight(idx)
				continue
			}
			newVert := b.lv.SplitVertex(x, y)
			crossings = append(crossings, newVert)

			p1, p2 := b.splitOneSeg(idx, newVert)

			if sg.Partner != mapdata.NoIndex {
				partnerIdx := sg.Partner
				pp1, pp2 := b.splitOneSeg(partnerIdx, newVert)
				b.lv.Segs[p1].Partner = pp2
				b.lv.Segs[pp2].Partner = p1
				b.lv.Segs[p2].Partner = pp1
				b.lv.Segs[pp1].Partner = p2
				handled[partnerIdx] = [2]int{pp1, pp2}
			}

			placeSplitPieces(sg, sideA, sideB, [2]int{p1, p2}, appendRight, appendLeft)
		}
	}

	b.emitMinisegs(crossings, part, appendRight, appendLeft)

	return rightHead, leftHead, rightBBox, leftBBox
}

// placeSplitPieces drops piece[0] (the half nearer the original Start,
// carrying sideA) and piece[1] (the half nearer End, carrying sideB) into
// the right/left lists according to which geometric side each belongs on.
func placeSplitPieces(sg *mapdata.Seg, sideA, sideB int, pieces [2]int, appendRight, appendLeft func(int)) {
	if sideA >= 0 {
		appendRight(pieces[0])
	} else {
		appendLeft(pieces[0])
	}
	if sideB >= 0 {
		appendRight(pieces[1])
	} else {
		appendLeft(pieces[1])
	}
}

// splitOneSeg clones seg idx into two pieces sharing newVert: the first runs
// from the original Start to newVert, the second from newVert to the
// original End. Both inherit idx's Linedef/Side/Sector; Partner is left
// unset for the caller to wire up.
func (b *Builder) splitOneSeg(idx int, newVert int) (piece1, piece2 int) {
	orig := b.lv.Segs[idx]

	p1 := orig
	p1.End = newVert
	p1.Partner = mapdata.NoIndex
	p1.Index = mapdata.NoIndex
	p1.RecomputeGeometry(b.lv.Vertices)
	piece1 = len(b.lv.Segs)
	b.lv.Segs = append(b.lv.Segs, p1)

	p2 := orig
	p2.Start = newVert
	p2.Partner = mapdata.NoIndex
	p2.Index = mapdata.NoIndex
	p2.RecomputeGeometry(b.lv.Vertices)
	piece2 = len(b.lv.Segs)
	b.lv.Segs = append(b.lv.Segs, p2)

	return piece1, piece2
}

// emitMinisegs sorts the crossing points introduced while splitting segs
// against part by their position along the partition, then for each
// consecutive pair tries to find open space between them (via the vertex
// wall tips) and, if so, appends a partnered miniseg pair — one seg on each
// side, referencing no linedef (spec.md §4.4).
func (b *Builder) emitMinisegs(crossings []int, part geom.Partition, appendRight, appendLeft func(int)) {
	if len(crossings) < 2 {
		return
	}

	paramOf := func(v int) float64 {
		vx, vy := b.lv.Vertices[v].X, b.lv.Vertices[v].Y
		return (vx-part.X)*part.DX + (vy-part.Y)*part.DY
	}

	uniq := dedupeSorted(crossings, paramOf)
	if len(uniq) < 2 {
		return
	}

	sort.Slice(uniq, func(i, j int) bool { return paramOf(uniq[i]) < paramOf(uniq[j]) })

	for i := 0; i+1 < len(uniq); i++ {
		v1, v2 := uniq[i], uniq[i+1]

		angle := geom.ComputeAngle(b.lv.Vertices[v2].X-b.lv.Vertices[v1].X, b.lv.Vertices[v2].Y-b.lv.Vertices[v1].Y)
		sectorCW, sectorCCW, found := geom.OpenSpaceAt(b.lv, v1, angle)
		if !found {
			continue
		}

		rightIdx := b.appendSeg(mapdata.Seg{
			Start: v1, End: v2, Side: 0,
			Linedef: mapdata.NoIndex, Sector: sectorCW,
			Partner: mapdata.NoIndex, Index: mapdata.NoIndex,
		})
		leftIdx := b.appendSeg(mapdata.Seg{
			Start: v2, End: v1, Side: 1,
			Linedef: mapdata.NoIndex, Sector: sectorCCW,
			Partner: mapdata.NoIndex, Index: mapdata.NoIndex,
		})
		b.lv.Segs[rightIdx].Partner = leftIdx
		b.lv.Segs[leftIdx].Partner = rightIdx

		appendRight(rightIdx)
		appendLeft(leftIdx)
	}
}

func dedupeSorted(vs []int, paramOf func(int) float64) []int {
	sort.Slice(vs, func(i, j int) bool { return paramOf(vs[i]) < paramOf(vs[j]) })
	out := vs[:0:0]
	for i, v := range vs {
		if i == 0 || paramOf(v) != paramOf(vs[i-1]) {
			out = append(out, v)
		}
	}
	return out
}
