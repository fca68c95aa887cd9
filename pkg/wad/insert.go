// SPDX-License-Identifier: GPL-2.0-or-later

package wad

// canonicalOrder is the full lump order contract for a classic/Hexen map,
// as spec.md §4.1 requires: new output lumps must appear in this relative
// order immediately after the known map lumps.
var canonicalOrder = []string{
	"THINGS", "LINEDEFS", "SIDEDEFS", "VERTEXES",
	"SEGS", "SSECTORS", "NODES", "SECTORS", "REJECT", "BLOCKMAP", "BEHAVIOR",
}

func canonicalIndex(name string) int {
	for i, n := range canonicalOrder {
		if n == name {
			return i
		}
	}
	return -1
}

// insertionPointFor finds where a lump named name should be inserted within
// map levelIdx's range: immediately after the nearest present predecessor in
// canonicalOrder, walking backwards through missing predecessors (spec.md
// §7's "missing lumps inserted after a named predecessor" recovery rule).
// If no predecessor is present, or name is not in canonicalOrder, the lump
// is appended at the end of the map's range and usedFallback is true.
// EnsureOutputLump ignores usedFallback, so no warning is logged for it.
func (c *Container) insertionPointFor(levelIdx int, name string) (idx int, usedFallback bool) {
	lv := c.levels[levelIdx]

	pos := canonicalIndex(name)
	if pos < 0 {
		return lv.last, true
	}

	for p := pos - 1; p >= 0; p-- {
		predIdx := c.LevelLookupLump(levelIdx, canonicalOrder[p])
		if predIdx >= 0 {
			return predIdx + 1, false
		}
	}

	return lv.last, true
}

// EnsureOutputLump finds or creates lump name within map levelIdx, following
// the insertion-point discipline in spec.md §4.1/§7, and returns a Writer
// ready to receive its new body (reserving maxSize bytes of capacity).
func (c *Container) EnsureOutputLump(levelIdx int, name string, maxSize int) *Writer {
	if idx := c.LevelLookupLump(levelIdx, name); idx >= 0 {
		return c.RecreateLump(idx, maxSize)
	}

	at, _ := c.insertionPointFor(levelIdx, name)
	c.InsertPoint(at)
	idx, err := c.AddLump(name)
	if err != nil {
		// name is always one of the fixed output lump names, which are
		// always valid 8-byte ASCII identifiers.
		panic(err)
	}
	c.InsertPoint(-1)

	return c.RecreateLump(idx, maxSize)
}

// EnsureZNodesLump finds or creates the ZNODES lump for a UDMF map,
// inserting it immediately before ENDMAP.
func (c *Container) EnsureZNodesLump(levelIdx int, maxSize int) *Writer {
	if idx := c.LevelLookupLump(levelIdx, "ZNODES"); idx >= 0 {
		return c.RecreateLump(idx, maxSize)
	}

	endmap := c.LevelLookupLump(levelIdx, "ENDMAP")
	at := endmap
	if at < 0 {
		at = c.levels[levelIdx].last
	}

	c.InsertPoint(at)
	idx, err := c.AddLump("ZNODES")
	if err != nil {
		panic(err)
	}
	c.InsertPoint(-1)

	return c.RecreateLump(idx, maxSize)
}
