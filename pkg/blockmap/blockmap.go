// SPDX-License-Identifier: GPL-2.0-or-later

// Package blockmap builds the BLOCKMAP lump: a 128x128 spatial grid of line
// indices used by the engine for fast collision queries.
package blockmap

import (
	"sort"

	"github.com/rfomin/elfbsp/pkg/mapdata"
)

const cellSize = 128

// Blockmap is the built, in-memory grid, ready for nodeio to encode.
type Blockmap struct {
	OriginX, OriginY int
	Width, Height    int
	Cells            [][]int // one []int of line indices per cell, row-major
	Overflowed       bool
}

// Build computes the map extent from lv's non-zero-length linedefs, snaps
// the origin down to a multiple of 8 on each axis, and buckets every line
// into every 128x128 cell it touches (spec.md §4.5).
func Build(lv *mapdata.Level) *Blockmap {
	minX, minY, maxX, maxY := extent(lv)

	bm := &Blockmap{
		OriginX: snapDown8(minX),
		OriginY: snapDown8(minY),
	}
	bm.Width = (maxX-bm.OriginX)/cellSize + 1
	bm.Height = (maxY-bm.OriginY)/cellSize + 1
	if bm.Width < 1 {
		bm.Width = 1
	}
	if bm.Height < 1 {
		bm.Height = 1
	}

	bm.Cells = make([][]int, bm.Width*bm.Height)

	for i := range lv.Linedefs {
		ld := &lv.Linedefs[i]
		if ld.ZeroLen {
			continue
		}
		bm.addLine(lv, i)
	}

	bm.checkOverflow()

	return bm
}

func extent(lv *mapdata.Level) (minX, minY, maxX, maxY int) {
	minX, minY = 1<<30, 1<<30
	maxX, maxY = -(1 << 30), -(1 << 30)
	any := false

	for i := range lv.Linedefs {
		ld := &lv.Linedefs[i]
		if ld.ZeroLen {
			continue
		}
		any = true
		for _, vi := range [2]int{ld.Start, ld.End} {
			v := lv.Vertices[vi]
			x, y := int(v.X), int(v.Y)
			if x < minX {
				minX = x
			}
			if y < minY {
				minY = y
			}
			if x > maxX {
				maxX = x
			}
			if y > maxY {
				maxY = y
			}
		}
	}

	if !any {
		return 0, 0, 0, 0
	}
	return minX, minY, maxX, maxY
}

func snapDown8(v int) int {
	if v >= 0 {
		return (v / 8) * 8
	}
	return -(((-v) + 7) / 8) * 8
}

func (bm *Blockmap) cellIndex(cx, cy int) (int, bool) {
	if cx < 0 || cy < 0 || cx >= bm.Width || cy >= bm.Height {
		return 0, false
	}
	return cy*bm.Width + cx, true
}

func (bm *Blockmap) addLine(lv *mapdata.Level, lineIdx int) {
	ld := &lv.Linedefs[lineIdx]
	a := lv.Vertices[ld.Start]
	b := lv.Vertices[ld.End]

	x1, y1 := a.X, a.Y
	x2, y2 := b.X, b.Y

	cx1 := (int(minF(x1, x2)) - bm.OriginX) / cellSize
	cx2 := (int(maxF(x1, x2)) - bm.OriginX) / cellSize
	cy1 := (int(minF(y1, y2)) - bm.OriginY) / cellSize
	cy2 := (int(maxF(y1, y2)) - bm.OriginY) / cellSize

	switch {
	case y1 == y2:
		for cx := cx1; cx <= cx2; cx++ {
			bm.addToCell(cx, cy1, lineIdx)
		}
	case x1 == x2:
		for cy := cy1; cy <= cy2; cy++ {
			bm.addToCell(cx1, cy, lineIdx)
		}
	default:
		for cy := cy1; cy <= cy2; cy++ {
			for cx := cx1; cx <= cx2; cx++ {
				cellMinX := float64(bm.OriginX + cx*cellSize)
				cellMinY := float64(bm.OriginY + cy*cellSize)
				if lineBoxOverlap(x1, y1, x2, y2, cellMinX, cellMinY, cellMinX+cellSize, cellMinY+cellSize) {
					bm.addToCell(cx, cy, lineIdx)
				}
			}
		}
	}
}

func (bm *Blockmap) addToCell(cx, cy, lineIdx int) {
	idx, ok := bm.cellIndex(cx, cy)
	if !ok {
		return
	}
	bm.Cells[idx] = append(bm.Cells[idx], lineIdx)
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// lineBoxOverlap is a Liang-Barsky line clip against an axis-aligned box: it
// reports whether the segment (x1,y1)-(x2,y2), clipped to the box, is
// non-empty.
func lineBoxOverlap(x1, y1, x2, y2, minX, minY, maxX, maxY float64) bool {
	dx := x2 - x1
	dy := y2 - y1

	tMin, tMax := 0.0, 1.0

	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		r := q / p
		if p < 0 {
			if r > tMax {
				return false
			}
			if r > tMin {
				tMin = r
			}
		} else {
			if r < tMin {
				return false
			}
			if r < tMax {
				tMax = r
			}
		}
		return true
	}

	if !clip(-dx, x1-minX) {
		return false
	}
	if !clip(dx, maxX-x1) {
		return false
	}
	if !clip(-dy, y1-minY) {
		return false
	}
	if !clip(dy, maxY-y1) {
		return false
	}

	return tMin <= tMax
}

// DedupeCells finds cells with identical line lists (by order-sensitive
// content, not just set membership) and returns, for each cell index, the
// index of the canonical cell it should share an on-disk offset with
// (itself, if it's the first occurrence of its content). Grouping is by
// length first, then an order-sensitive XOR checksum, then a full compare
// to break accidental checksum collisions (spec.md §4.5).
func (bm *Blockmap) DedupeCells() []int {
	canon := make([]int, len(bm.Cells))
	for i := range canon {
		canon[i] = i
	}

	type bucketKey struct {
		length   int
		checksum uint32
	}
	buckets := make(map[bucketKey][]int)

	for i, cell := range bm.Cells {
		k := bucketKey{length: len(cell), checksum: xorChecksum(cell)}
		buckets[k] = append(buckets[k], i)
	}

	keys := make([]bucketKey, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].length != keys[j].length {
			return keys[i].length < keys[j].length
		}
		return keys[i].checksum < keys[j].checksum
	})

	for _, k := range keys {
		members := buckets[k]
		for i := 1; i < len(members); i++ {
			for j := 0; j < i; j++ {
				if sameCell(bm.Cells[members[i]], bm.Cells[members[j]]) {
					canon[members[i]] = canon[members[j]]
					break
				}
			}
		}
	}

	return canon
}

func xorChecksum(cell []int) uint32 {
	var sum uint32
	for i, v := range cell {
		sum ^= uint32(v) + uint32(i)*0x9e3779b9
	}
	return sum
}

func sameCell(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// checkOverflow marks the blockmap overflowed if any cell's resulting
// directory offset (computed as if emitted in order, header plus per-cell
// bodies) would not fit a 16-bit word; the nodeio encoder emits an empty
// lump in that case (spec.md §4.5).
func (bm *Blockmap) checkOverflow() {
	canon := bm.DedupeCells()

	offset := 4 + len(bm.Cells) // header words + one offset word per cell
	for i, c := range canon {
		if c != i {
			continue
		}
		offset += len(bm.Cells[i]) + 2 // leading 0x0000 + line indices + trailing 0xFFFF
	}

	if offset > 0xFFFF {
		bm.Overflowed = true
	}
}
