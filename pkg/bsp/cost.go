// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"math"

	"github.com/rfomin/elfbsp/pkg/geom"
)

// candidateIndices returns the segs to score as partition candidates:
// every seg when the list is short or fast mode is off, otherwise a strided
// sample (spec.md §4.4's fast-path threshold rule).
func candidateIndices(segs []int, fast bool) []int {
	if len(segs) <= fastPathThreshold || !fast {
		return segs
	}
	const sampleCount = 16
	stride := len(segs) / sampleCount
	if stride < 1 {
		stride = 1
	}
	out := make([]int, 0, sampleCount+1)
	for i := 0; i < len(segs); i += stride {
		out = append(out, segs[i])
	}
	return out
}

// choosePartition scores every candidate seg's line as a would-be partition
// and returns the lowest-cost one, or ok == false if the seg list is
// already convex (no candidate yields a non-trivial split).
func (b *Builder) choosePartition(segs []int) (part geom.Partition, ok bool) {
	if len(segs) == 0 {
		return geom.Partition{}, false
	}

	candidates := candidateIndices(segs, b.cfg.Fast)

	bestCost := math.MaxInt64
	bestSeg := -1
	var bestPart geom.Partition

	for _, c := range candidates {
		sg := &b.lv.Segs[c]

		if sg.Sector >= 0 && sg.Sector < len(b.lv.Sectors) && b.lv.Sectors[sg.Sector].Polyobject {
			continue
		}

		cand := geom.Partition{X: sg.Psx, Y: sg.Psy, DX: sg.Pdx, DY: sg.Pdy}

		left, right, split, precious, iffy := b.scorePartition(cand, segs)
		if left == 0 || right == 0 {
			continue
		}

		cost := left*right + split*b.cfg.splitCost() + precious*preciousPenalty + iffy*iffyPenalty
		if cost < bestCost || (cost == bestCost && (bestSeg < 0 || c < bestSeg)) {
			bestCost = cost
			bestSeg = c
			bestPart = cand
		}
	}

	if bestSeg < 0 {
		return geom.Partition{}, false
	}
	return bestPart, true
}

// scorePartition classifies every seg in segs against part: left count,
// right count, split count, and within the splits, how many belong to
// precious-tagged linedefs (precious) or to polyobject/self-referencing
// sectors (iffy) — spec.md §4.4's cost inputs.
func (b *Builder) scorePartition(part geom.Partition, segs []int) (left, right, split, precious, iffy int) {
	for _, idx := range segs {
		sg := &b.lv.Segs[idx]
		sideA, sideB := classify(sg, part)

		switch {
		case sideA == 0 && sideB == 0:
			if collinearGoesRight(sg, part) {
				right++
			} else {
				left++
			}
		case sideA >= 0 && sideB >= 0:
			right++
		case sideA <= 0 && sideB <= 0:
			left++
		default:
			split++
			if sg.Linedef >= 0 && b.lv.Linedefs[sg.Linedef].IsPrecious {
				precious++
			}
			if isIffy(b.lv, sg) {
				iffy++
			}
		}
	}
	return
}
