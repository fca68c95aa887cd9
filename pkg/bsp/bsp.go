// SPDX-License-Identifier: GPL-2.0-or-later

// Package bsp implements the recursive partition/split/subsector/node
// algorithm that turns a map's real linedefs into a binary space partition
// tree: the algorithmic core of the node builder.
package bsp

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/rfomin/elfbsp/pkg/geom"
	"github.com/rfomin/elfbsp/pkg/mapdata"
)

// ErrCancelled is returned by Build when the cooperative cancellation flag
// (or the context) was observed set partway through the recursion;
// lv.RootNode and lv.RootSub are left unset, but the segs, split vertices,
// subsectors and nodes created before that point remain in the level.
var ErrCancelled = errors.New("bsp: build cancelled")

const (
	fastPathThreshold = 5
	defaultSplitCost  = 11
	minSplitCost      = 1
	maxSplitCost      = 32

	preciousPenalty = 100
	iffyPenalty     = 50
)

// Config holds the partition-scoring knobs the driver exposes to callers
// (spec.md §4.4, §6).
type Config struct {
	// Fast samples a stride of candidate segs instead of scanning every one,
	// once the seg list exceeds fastPathThreshold.
	Fast bool

	// SplitCost is the multiplier applied to the split count in the
	// partition cost formula; clamped to [1,32], default 11.
	SplitCost int
}

func (c Config) splitCost() int {
	switch {
	case c.SplitCost == 0:
		return defaultSplitCost
	case c.SplitCost < minSplitCost:
		return minSplitCost
	case c.SplitCost > maxSplitCost:
		return maxSplitCost
	default:
		return c.SplitCost
	}
}

// Builder drives one map's BSP construction.
type Builder struct {
	lv  *mapdata.Level
	cfg Config
	ctx context.Context

	cancelled int32
}

// NewBuilder returns a Builder for lv. ctx may be nil, in which case only
// the cooperative Cancel flag is honoured.
func NewBuilder(ctx context.Context, lv *mapdata.Level, cfg Config) *Builder {
	return &Builder{lv: lv, cfg: cfg, ctx: ctx}
}

// Cancel sets the cooperative cancellation flag; the next recursive call
// observes it and unwinds with ErrCancelled.
func (b *Builder) Cancel() {
	atomic.StoreInt32(&b.cancelled, 1)
}

func (b *Builder) isCancelled() bool {
	if atomic.LoadInt32(&b.cancelled) != 0 {
		return true
	}
	if b.ctx != nil && b.ctx.Err() != nil {
		return true
	}
	return false
}

// Build constructs the seg list from lv's real linedefs and recursively
// partitions it, leaving the resulting tree in lv.Nodes/lv.Subsectors and
// setting lv.RootNode or lv.RootSub. If the level has no real linedefs,
// Build leaves the level with no tree at all (lv.RootNode == lv.RootSub == NoIndex).
func (b *Builder) Build() error {
	head := b.buildInitialSegs()
	if head == mapdata.NoIndex {
		return nil
	}

	bbox := b.bboxOfList(head)

	isSub, idx, err := b.recurse(head, bbox)
	if err != nil {
		return err
	}
	if isSub {
		b.lv.RootSub = idx
	} else {
		b.lv.RootNode = idx
	}
	return nil
}

// buildInitialSegs emits a right seg (side 0) for every real, non-zero-length
// linedef with a right sidedef, and a left seg (side 1) for every such
// linedef with a left sidedef, partnering the two when both exist, and returns the head of the
// resulting linked list (via Seg.Next), or NoIndex if there are no real lines.
func (b *Builder) buildInitialSegs() int {
	head, tail := mapdata.NoIndex, mapdata.NoIndex

	link := func(idx int) {
		b.lv.Segs[idx].Next = mapdata.NoIndex
		if head == mapdata.NoIndex {
			head = idx
		} else {
			b.lv.Segs[tail].Next = idx
		}
		tail = idx
	}

	for i := range b.lv.Linedefs {
		ld := &b.lv.Linedefs[i]
		if !ld.IsReal() || ld.ZeroLen {
			continue
		}

		var rightIdx, leftIdx int = mapdata.NoIndex, mapdata.NoIndex

		if ld.HasRight() {
			rightIdx = b.appendSeg(mapdata.Seg{
				Start:   ld.Start,
				End:     ld.End,
				Side:    0,
				Linedef: ld.Index,
				Sector:  b.lv.Sidedefs[ld.RightSide].SectorRef,
				Partner: mapdata.NoIndex,
				Index:   mapdata.NoIndex,
			})
		}
		if ld.HasLeft() {
			leftIdx = b.appendSeg(mapdata.Seg{
				Start:   ld.End,
				End:     ld.Start,
				Side:    1,
				Linedef: ld.Index,
				Sector:  b.lv.Sidedefs[ld.LeftSide].SectorRef,
				Partner: mapdata.NoIndex,
				Index:   mapdata.NoIndex,
			})
		}

		if rightIdx != mapdata.NoIndex && leftIdx != mapdata.NoIndex {
			b.lv.Segs[rightIdx].Partner = leftIdx
			b.lv.Segs[leftIdx].Partner = rightIdx
		}

		if rightIdx != mapdata.NoIndex {
			link(rightIdx)
		}
		if leftIdx != mapdata.NoIndex {
			link(leftIdx)
		}
	}

	return head
}

func (b *Builder) appendSeg(s mapdata.Seg) int {
	s.RecomputeGeometry(b.lv.Vertices)
	idx := len(b.lv.Segs)
	b.lv.Segs = append(b.lv.Segs, s)
	return idx
}

// toSlice walks a Next-linked seg list into a plain index slice.
func (b *Builder) toSlice(head int) []int {
	var out []int
	for i := head; i != mapdata.NoIndex; i = b.lv.Segs[i].Next {
		out = append(out, i)
	}
	return out
}

func (b *Builder) bboxOfList(head int) mapdata.BBox {
	segs := b.toSlice(head)
	return b.bboxOfSegs(segs)
}

func (b *Builder) bboxOfSegs(segs []int) mapdata.BBox {
	box := mapdata.BBox{MinX: 1 << 30, MinY: 1 << 30, MaxX: -(1 << 30), MaxY: -(1 << 30)}
	for _, idx := range segs {
		box = box.Union(segBBox(b.lv, idx))
	}
	return box
}

func segBBox(lv *mapdata.Level, idx int) mapdata.BBox {
	s := &lv.Segs[idx]
	x1, y1 := int(s.Psx), int(s.Psy)
	x2, y2 := int(s.Pex), int(s.Pey)
	return mapdata.BBox{
		MinX: minI(x1, x2), MinY: minI(y1, y2),
		MaxX: maxI(x1, x2), MaxY: maxI(y1, y2),
	}
}

func minI(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxI(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// recurse partitions the seg list rooted at head, returning either a new
// subsector (isSub == true) or a new node, and its bounding box.
func (b *Builder) recurse(head int, bbox mapdata.BBox) (isSub bool, idx int, err error) {
	if b.isCancelled() {
		return false, 0, ErrCancelled
	}

	segs := b.toSlice(head)

	part, ok := b.choosePartition(segs)
	if !ok {
		return true, b.makeSubsector(segs, bbox), nil
	}

	rightHead, leftHead, rightBBox, leftBBox := b.splitSegs(segs, part)

	rIsSub, rIdx, err := b.recurse(rightHead, rightBBox)
	if err != nil {
		return false, 0, err
	}
	lIsSub, lIdx, err := b.recurse(leftHead, leftBBox)
	if err != nil {
		return false, 0, err
	}

	node := mapdata.Node{
		X: part.X, Y: part.Y, DX: part.DX, DY: part.DY,
		RightBBox: rightBBox, LeftBBox: leftBBox,
		RightNode: mapdata.NoIndex, RightSub: mapdata.NoIndex,
		LeftNode: mapdata.NoIndex, LeftSub: mapdata.NoIndex,
	}
	if rIsSub {
		node.RightSub = rIdx
	} else {
		node.RightNode = rIdx
	}
	if lIsSub {
		node.LeftSub = lIdx
	} else {
		node.LeftNode = lIdx
	}

	node.Index = len(b.lv.Nodes)
	b.lv.Nodes = append(b.lv.Nodes, node)
	return false, node.Index, nil
}

func (b *Builder) makeSubsector(segs []int, bbox mapdata.BBox) int {
	idx := len(b.lv.Subsectors)
	for _, s := range segs {
		b.lv.Segs[s].Index = mapdata.NoIndex // assigned for real once ordered/emitted
	}
	b.lv.Subsectors = append(b.lv.Subsectors, mapdata.Subsector{
		Segs:  append([]int(nil), segs...),
		Index: idx,
		BBox:  bbox,
	})
	return idx
}

func classify(sg *mapdata.Seg, part geom.Partition) (sideA, sideB int) {
	return geom.PointOnLineSide(sg.Psx, sg.Psy, part), geom.PointOnLineSide(sg.Pex, sg.Pey, part)
}

func collinearGoesRight(sg *mapdata.Seg, part geom.Partition) bool {
	return sg.Pdx*part.DX+sg.Pdy*part.DY >= 0
}

func isIffy(lv *mapdata.Level, sg *mapdata.Seg) bool {
	if sg.Sector >= 0 && sg.Sector < len(lv.Sectors) && lv.Sectors[sg.Sector].Polyobject {
		return true
	}
	if sg.Linedef >= 0 && lv.Linedefs[sg.Linedef].SelfRef {
		return true
	}
	return false
}
