// SPDX-License-Identifier: GPL-2.0-or-later

package maploader

import (
	"sort"

	"github.com/rfomin/elfbsp/pkg/mapdata"
)

// DetectOverlappingVertices merges vertices with identical coordinates:
// every linedef endpoint referring to a duplicate is rewritten to point at
// the lowest-indexed vertex in its coincidence group, and a minor issue is
// recorded once per merged vertex (original_source's level.cpp runs this
// same pass immediately after loading, before wall tips are built).
func DetectOverlappingVertices(lv *mapdata.Level) {
	type key struct{ x, y int64 }
	const grid = 1.0 / mapdata.CoincideEpsilon

	groups := make(map[key]int, len(lv.Vertices))
	remap := make([]int, len(lv.Vertices))

	for i, v := range lv.Vertices {
		k := key{int64(v.X * grid), int64(v.Y * grid)}
		if canon, ok := groups[k]; ok {
			remap[i] = canon
			lv.MinorIssues++
		} else {
			groups[k] = i
			remap[i] = i
		}
	}

	for i := range lv.Linedefs {
		ld := &lv.Linedefs[i]
		ld.Start = remap[ld.Start]
		ld.End = remap[ld.End]
	}
}

// DetectOverlappingLines flags linedefs that share both endpoints (in
// either order) with another linedef. Both copies are kept — spec.md §4.3
// is explicit that overlapping linedef geometry is preserved, not
// deduplicated — but a warning is recorded for each overlap found.
func DetectOverlappingLines(lv *mapdata.Level) {
	type pair struct{ a, b int }

	seen := make(map[pair][]int, len(lv.Linedefs))

	for i, ld := range lv.Linedefs {
		if ld.ZeroLen {
			continue
		}
		a, b := ld.Start, ld.End
		if a > b {
			a, b = b, a
		}
		p := pair{a, b}
		seen[p] = append(seen[p], i)
	}

	for _, idxs := range seen {
		if len(idxs) < 2 {
			continue
		}
		sort.Ints(idxs)
		lv.Warnings += len(idxs) - 1
	}
}
