// SPDX-License-Identifier: GPL-2.0-or-later

package maploader

import (
	"fmt"

	"github.com/rfomin/elfbsp/pkg/geom"
	"github.com/rfomin/elfbsp/pkg/mapdata"
	"github.com/rfomin/elfbsp/pkg/wad"
)

// Load decodes map levelIdx out of c, in whatever format wad detected it as,
// and runs the shared post-decode passes common to all three formats
// (spec.md §4.2/§4.3).
func Load(c *wad.Container, levelIdx int) (*mapdata.Level, wad.Format, error) {
	format := c.LevelFormat(levelIdx)

	var lv *mapdata.Level
	var err error

	switch format {
	case wad.FormatDoom, wad.FormatHexen:
		lv, err = decodeClassicOrHexen(c, levelIdx, format)
	case wad.FormatUDMF:
		lv, err = decodeUDMFLevel(c, levelIdx)
	default:
		return nil, format, fmt.Errorf("maploader: unknown format for map %d", levelIdx)
	}
	if err != nil {
		return nil, format, err
	}

	postProcess(lv, format == wad.FormatUDMF)

	return lv, format, nil
}

func lump(c *wad.Container, levelIdx int, name string) []byte {
	idx := c.LevelLookupLump(levelIdx, name)
	if idx < 0 {
		return nil
	}
	return c.LumpData(idx)
}

func decodeClassicOrHexen(c *wad.Container, levelIdx int, format wad.Format) (*mapdata.Level, error) {
	lv := mapdata.NewLevel()

	sectors, err := decodeSectors(lump(c, levelIdx, "SECTORS"))
	if err != nil {
		return nil, err
	}
	lv.Sectors = sectors

	vertices, err := decodeVertexes(lump(c, levelIdx, "VERTEXES"))
	if err != nil {
		return nil, err
	}
	lv.Vertices = vertices
	lv.NumOldVert = len(vertices)

	sidedefs, err := decodeSidedefs(lump(c, levelIdx, "SIDEDEFS"), len(sectors))
	if err != nil {
		return nil, err
	}
	lv.Sidedefs = sidedefs

	var linedefs []mapdata.Linedef
	if format == wad.FormatHexen {
		linedefs, err = decodeLinedefsHexen(lump(c, levelIdx, "LINEDEFS"), len(sidedefs))
	} else {
		linedefs, err = decodeLinedefsClassic(lump(c, levelIdx, "LINEDEFS"), len(sidedefs))
	}
	if err != nil {
		return nil, err
	}
	lv.Linedefs = linedefs

	return lv, nil
}

func decodeUDMFLevel(c *wad.Container, levelIdx int) (*mapdata.Level, error) {
	idx := c.LevelLookupLump(levelIdx, "TEXTMAP")
	if idx < 0 {
		return nil, fmt.Errorf("maploader: map %d has no TEXTMAP lump", levelIdx)
	}

	toks, err := lexUDMF(string(c.LumpData(idx)))
	if err != nil {
		return nil, err
	}

	blocks, err := parseUDMF(toks)
	if err != nil {
		return nil, err
	}

	return decodeUDMF(blocks)
}

// postProcess runs the shared passes spec.md §4.2/§4.3 require regardless of
// source format: zero-length/two-sided/precious/self-referencing flags,
// vertex-used marking, trailing-vertex pruning (skipped for UDMF, since
// UDMF vertex indices are referenced by number and must not shift),
// overlap detection, and wall tip construction.
func postProcess(lv *mapdata.Level, isUDMF bool) {
	markUsedAndFlags(lv)

	if !isUDMF {
		pruneTrailingVertices(lv)
	}

	DetectOverlappingVertices(lv)
	DetectOverlappingLines(lv)

	geom.BuildWallTips(lv)
}

func markUsedAndFlags(lv *mapdata.Level) {
	lv.NumRealLines = 0

	for i := range lv.Linedefs {
		ld := &lv.Linedefs[i]

		if ld.Start == ld.End {
			ld.ZeroLen = true
			continue
		}
		a, b := lv.Vertices[ld.Start], lv.Vertices[ld.End]
		if geom.NearlyCoincident(a.X, a.Y, b.X, b.Y) {
			ld.ZeroLen = true
			continue
		}

		lv.Vertices[ld.Start].IsUsed = true
		lv.Vertices[ld.End].IsUsed = true

		ld.TwoSided = ld.HasRight() && ld.HasLeft()

		if ld.TwoSided {
			rs := lv.Sidedefs[ld.RightSide].SectorRef
			ls := lv.Sidedefs[ld.LeftSide].SectorRef
			if rs >= 0 && rs == ls {
				ld.SelfRef = true
			}
		}

		if ld.Tag >= mapdata.PreciousTagLow && ld.Tag < mapdata.PreciousTagHigh {
			ld.IsPrecious = true
		}

		if ld.IsReal() {
			lv.NumRealLines++
		}

		if ld.PolyobjectSector {
			markPolyobjectSector(lv, ld)
		}
	}
}

func markPolyobjectSector(lv *mapdata.Level, ld *mapdata.Linedef) {
	if ld.HasRight() {
		ref := lv.Sidedefs[ld.RightSide].SectorRef
		if ref >= 0 {
			lv.Sectors[ref].Polyobject = true
		}
	}
	if ld.HasLeft() {
		ref := lv.Sidedefs[ld.LeftSide].SectorRef
		if ref >= 0 {
			lv.Sectors[ref].Polyobject = true
		}
	}
}

// pruneTrailingVertices drops any unused vertices at the tail of the
// original (non-split) vertex arena, matching the original's behaviour of
// never emitting unreferenced VERTEXES entries it didn't need to keep.
// Vertices in the middle of the arena are left in place (to avoid
// renumbering references); only a trailing run is actually removable.
func pruneTrailingVertices(lv *mapdata.Level) {
	n := lv.NumOldVert
	for n > 0 && !lv.Vertices[n-1].IsUsed {
		n--
	}
	if n == lv.NumOldVert {
		return
	}

	lv.Vertices = lv.Vertices[:n]
	lv.NumOldVert = n
}
