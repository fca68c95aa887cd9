// SPDX-License-Identifier: GPL-2.0-or-later

package wad

// Format identifies which of the three map lump shapes a level uses.
type Format int

const (
	FormatDoom Format = iota
	FormatHexen
	FormatUDMF
)

func (f Format) String() string {
	switch f {
	case FormatDoom:
		return "doom"
	case FormatHexen:
		return "hexen"
	case FormatUDMF:
		return "udmf"
	default:
		return "unknown"
	}
}

type levelInfo struct {
	format Format
	start  int // index of the header lump
	last   int // index one past the last lump belonging to this level
}

// classicLumpNames lists every recognised classic/Hexen map child lump, in
// the canonical on-disk order.
var classicLumpNames = []string{
	"THINGS", "LINEDEFS", "SIDEDEFS", "VERTEXES",
	"SEGS", "SSECTORS", "NODES", "SECTORS", "REJECT", "BLOCKMAP",
}

func isClassicChild(name string) bool {
	for _, n := range classicLumpNames {
		if n == name {
			return true
		}
	}
	return name == "BEHAVIOR"
}

// detectLevels scans the lump list and records every recognised map
// (spec.md §4.1): a header lump immediately followed by a classic, Hexen or
// UDMF child sequence.
func (c *Container) detectLevels() {
	c.levels = nil

	for i := 0; i < len(c.lumps); i++ {
		if i+1 >= len(c.lumps) {
			continue
		}

		next := c.lumps[i+1].Name

		if next == "TEXTMAP" {
			end := i + 2
			for end < len(c.lumps) && c.lumps[end].Name != "ENDMAP" {
				end++
			}
			if end >= len(c.lumps) {
				// ENDMAP never found; not a valid UDMF map.
				continue
			}
			end++ // include ENDMAP itself

			c.levels = append(c.levels, levelInfo{
				format: FormatUDMF,
				start:  i,
				last:   end,
			})
			i = end - 1
			continue
		}

		if !isClassicChild(next) {
			continue
		}

		end := i + 1
		hasBehavior := false
		for end < len(c.lumps) && isClassicChild(c.lumps[end].Name) {
			if c.lumps[end].Name == "BEHAVIOR" {
				hasBehavior = true
			}
			end++
		}

		format := FormatDoom
		if hasBehavior {
			format = FormatHexen
		}

		c.levels = append(c.levels, levelInfo{
			format: format,
			start:  i,
			last:   end,
		})
		i = end - 1
	}
}

// LevelCount returns the number of maps detected in the container.
func (c *Container) LevelCount() int { return len(c.levels) }

// LevelHeader returns the name of the header lump for map i.
func (c *Container) LevelHeader(i int) string { return c.lumps[c.levels[i].start].Name }

// LevelFormat returns the detected format of map i.
func (c *Container) LevelFormat(i int) Format { return c.levels[i].format }

// LevelHeaderIndex returns the lump index of map i's header lump.
func (c *Container) LevelHeaderIndex(i int) int { return c.levels[i].start }

// LevelLastLump returns the index one past the last lump belonging to map i.
func (c *Container) LevelLastLump(i int) int { return c.levels[i].last }

// LevelLookupLump returns the index of lump name within map i's lump range,
// or -1 if it is not present.
func (c *Container) LevelLookupLump(i int, name string) int {
	lv := c.levels[i]
	for j := lv.start; j < lv.last; j++ {
		if c.lumps[j].Name == name {
			return j
		}
	}
	return -1
}

// RemoveZNodes removes any existing ZNODES lump from a UDMF map.
func (c *Container) RemoveZNodes(levelIdx int) {
	idx := c.LevelLookupLump(levelIdx, "ZNODES")
	if idx >= 0 {
		c.RemoveLump(idx)
	}
}

func (c *Container) shiftLevelsAfterInsert(at int) {
	for i := range c.levels {
		lv := &c.levels[i]
		if lv.start >= at {
			lv.start++
		}
		if lv.last >= at {
			lv.last++
		}
	}
}

func (c *Container) shiftLevelsAfterRemove(at int) {
	for i := range c.levels {
		lv := &c.levels[i]
		if lv.start > at {
			lv.start--
		}
		if lv.last > at {
			lv.last--
		}
	}
}
