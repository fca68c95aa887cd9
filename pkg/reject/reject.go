// SPDX-License-Identifier: GPL-2.0-or-later

// Package reject builds the REJECT lump: a symmetric per-sector visibility
// bit matrix, computed from two-sided linedefs joining distinct sectors via
// a union-find over the sector arena's intrusive circular group lists.
package reject

import "github.com/rfomin/elfbsp/pkg/mapdata"

// Build groups lv's sectors by mutual two-sided-linedef reachability (every
// sector starts in its own singleton group; each two-sided linedef whose
// sidedefs reference two different sectors unions their groups) and returns
// the resulting num_sectors x num_sectors bit matrix as a single continuous
// bitstream of (n*n+7)/8 bytes, where bit view*n+target is set iff view and
// target ended up in different groups (spec.md §4.6).
func Build(lv *mapdata.Level) []byte {
	n := len(lv.Sectors)
	if n == 0 {
		return nil
	}

	for i := range lv.Sectors {
		lv.Sectors[i].RejGroup = i
		lv.Sectors[i].RejNext = i
		lv.Sectors[i].RejPrev = i
	}

	for i := range lv.Linedefs {
		ld := &lv.Linedefs[i]
		if !ld.TwoSided {
			continue
		}
		a := lv.Sidedefs[ld.RightSide].SectorRef
		b := lv.Sidedefs[ld.LeftSide].SectorRef
		if a < 0 || b < 0 || a == b {
			continue
		}
		union(lv, a, b)
	}

	size := (n*n + 7) / 8
	matrix := make([]byte, size)

	for view := 0; view < n; view++ {
		for target := 0; target < n; target++ {
			if lv.Sectors[view].RejGroup != lv.Sectors[target].RejGroup {
				bit := view*n + target
				matrix[bit/8] |= 1 << uint(bit%8)
			}
		}
	}

	return matrix
}

// union merges sector a's and sector b's groups: the smaller group's id is
// rewritten to the larger group's id (spec.md §4.6), and the two circular
// lists are spliced together.
func union(lv *mapdata.Level, a, b int) {
	ga, gb := lv.Sectors[a].RejGroup, lv.Sectors[b].RejGroup
	if ga == gb {
		return
	}

	sizeA, sizeB := groupSize(lv, a), groupSize(lv, b)

	from, to := ga, gb
	keepRep, mergeRep := b, a
	if sizeA >= sizeB {
		from, to = gb, ga
		keepRep, mergeRep = a, b
	}

	for i := range lv.Sectors {
		if lv.Sectors[i].RejGroup == from {
			lv.Sectors[i].RejGroup = to
		}
	}

	spliceCircular(lv, keepRep, mergeRep)
}

func groupSize(lv *mapdata.Level, rep int) int {
	group := lv.Sectors[rep].RejGroup
	count := 0
	for i := range lv.Sectors {
		if lv.Sectors[i].RejGroup == group {
			count++
		}
	}
	return count
}

// spliceCircular joins the circular RejNext/RejPrev lists containing a and
// b into one circular list.
func spliceCircular(lv *mapdata.Level, a, b int) {
	aNext := lv.Sectors[a].RejNext
	bNext := lv.Sectors[b].RejNext

	lv.Sectors[a].RejNext = bNext
	lv.Sectors[bNext].RejPrev = a
	lv.Sectors[b].RejNext = aNext
	lv.Sectors[aNext].RejPrev = b
}
