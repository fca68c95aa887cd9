// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"math"
	"sort"

	"github.com/rfomin/elfbsp/pkg/geom"
	"github.com/rfomin/elfbsp/pkg/mapdata"
)

// ClockwiseOrder reorders the segs within every subsector into clockwise
// order around the subsector's centroid, as the consuming engine requires
// (spec.md §4.4): sort by angle from centroid to seg midpoint, descending.
func ClockwiseOrder(lv *mapdata.Level) {
	for si := range lv.Subsectors {
		ss := &lv.Subsectors[si]
		if len(ss.Segs) == 0 {
			continue
		}

		cx, cy := centroid(lv, ss.Segs)

		angle := make(map[int]float64, len(ss.Segs))
		for _, idx := range ss.Segs {
			s := &lv.Segs[idx]
			mx, my := (s.Psx+s.Pex)/2, (s.Psy+s.Pey)/2
			angle[idx] = geom.ComputeAngle(mx-cx, my-cy)
		}

		sort.Slice(ss.Segs, func(i, j int) bool {
			return angle[ss.Segs[i]] > angle[ss.Segs[j]]
		})
	}
}

func centroid(lv *mapdata.Level, segs []int) (cx, cy float64) {
	var sx, sy float64
	n := 0
	for _, idx := range segs {
		s := &lv.Segs[idx]
		sx += s.Psx + s.Pex
		sy += s.Psy + s.Pey
		n += 2
	}
	if n == 0 {
		return 0, 0
	}
	return sx / float64(n), sy / float64(n)
}

// NormaliseBspTree strips minisegs from every subsector, for the classic
// DOOM output format which has no representation for them. Stripped segs
// are marked mapdata.SegIsGarbage and removed from each subsector's Segs
// slice here; a subsector left with no segs stays in lv.Subsectors with an
// empty Segs slice.
func NormaliseBspTree(lv *mapdata.Level) {
	for si := range lv.Subsectors {
		ss := &lv.Subsectors[si]
		kept := ss.Segs[:0:0]
		for _, idx := range ss.Segs {
			if lv.Segs[idx].Linedef == mapdata.NoIndex {
				lv.Segs[idx].Index = mapdata.SegIsGarbage
				continue
			}
			kept = append(kept, idx)
		}
		ss.Segs = kept
	}
}

// RoundOffBspTree rounds every new (split-introduced) vertex to integer
// coordinates, for 16-bit classic output, and marks any seg that becomes
// degenerate (zero length, or identical start/end) as garbage. Subsectors
// that lose every seg are left with an empty Segs slice; the caller
// (output encoder) must encode these with the "no segs" indicator rather
// than fail (spec.md §4.4).
func RoundOffBspTree(lv *mapdata.Level) {
	for i := lv.NumOldVert; i < len(lv.Vertices); i++ {
		v := &lv.Vertices[i]
		v.X = math.Round(v.X)
		v.Y = math.Round(v.Y)
	}

	for si := range lv.Subsectors {
		ss := &lv.Subsectors[si]
		kept := ss.Segs[:0:0]
		for _, idx := range ss.Segs {
			s := &lv.Segs[idx]
			if s.Start == s.End {
				s.Index = mapdata.SegIsGarbage
				continue
			}
			x1, y1 := math.Round(lv.Vertices[s.Start].X), math.Round(lv.Vertices[s.Start].Y)
			x2, y2 := math.Round(lv.Vertices[s.End].X), math.Round(lv.Vertices[s.End].Y)
			if x1 == x2 && y1 == y2 {
				s.Index = mapdata.SegIsGarbage
				continue
			}
			kept = append(kept, idx)
		}
		ss.Segs = kept
	}
}
