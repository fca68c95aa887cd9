// SPDX-License-Identifier: GPL-2.0-or-later

package maploader

import (
	"fmt"

	"github.com/rfomin/elfbsp/pkg/mapdata"
)

// udmfBlock is one "blockname { key = value; ... }" group from a TEXTMAP
// lump. Only the fields this module actually consumes are kept; every
// other assignment (textures, flags, comments on the real format) is
// parsed and discarded, since the BSP builder never needs them.
type udmfBlock struct {
	kind   string
	fields map[string]token
}

// parseUDMF walks the token stream produced by lexUDMF and collects every
// top-level block. A bare "ident = value ;" at the top level is a global
// assignment (namespace, etc.) and is skipped.
func parseUDMF(toks []token) ([]udmfBlock, error) {
	var blocks []udmfBlock
	p := 0

	peek := func() token { return toks[p] }
	advance := func() token { t := toks[p]; p++; return t }

	for peek().kind != tokEOF {
		name := advance()
		if name.kind != tokIdent {
			return nil, fmt.Errorf("maploader: expected identifier, got %q", name.text)
		}

		switch peek().kind {
		case tokLBrace:
			advance()
			fields := make(map[string]token)
			for peek().kind != tokRBrace {
				key := advance()
				if key.kind != tokIdent {
					return nil, fmt.Errorf("maploader: expected field name, got %q", key.text)
				}
				if advance().kind != tokAssign {
					return nil, fmt.Errorf("maploader: expected '=' after %q", key.text)
				}
				val := advance()
				if advance().kind != tokSemi {
					return nil, fmt.Errorf("maploader: expected ';' after %q value", key.text)
				}
				fields[key.text] = val
			}
			advance() // consume '}'
			blocks = append(blocks, udmfBlock{kind: name.text, fields: fields})

		case tokAssign:
			advance()
			advance()
			if advance().kind != tokSemi {
				return nil, fmt.Errorf("maploader: expected ';' after global assignment %q", name.text)
			}

		default:
			return nil, fmt.Errorf("maploader: unexpected token after %q", name.text)
		}
	}

	return blocks, nil
}

func fieldFloat(f map[string]token, key string, def float64) float64 {
	t, ok := f[key]
	if !ok {
		return def
	}
	v, err := parseNumber(t.text)
	if err != nil {
		return def
	}
	return v
}

func fieldInt(f map[string]token, key string, def int) int {
	return int(fieldFloat(f, key, float64(def)))
}

func fieldBool(f map[string]token, key string) bool {
	t, ok := f[key]
	return ok && t.text == "true"
}

// decodeUDMF builds a Level directly from TEXTMAP's blocks, in the order
// sectors, vertices, sidedefs, linedefs — each pass needs the previous
// kind's count to resolve its own references (spec.md §4.2's three-pass
// requirement, generalised to four since sector count gates sidedefs too).
func decodeUDMF(blocks []udmfBlock) (*mapdata.Level, error) {
	lv := mapdata.NewLevel()

	numSectors := 0
	for _, b := range blocks {
		if b.kind == "sector" {
			numSectors++
		}
	}
	lv.Sectors = make([]mapdata.Sector, numSectors)
	for i := range lv.Sectors {
		lv.Sectors[i] = mapdata.Sector{Index: i, RejGroup: i, RejNext: i, RejPrev: i}
	}

	for _, b := range blocks {
		if b.kind == "vertex" {
			x := fieldFloat(b.fields, "x", 0)
			y := fieldFloat(b.fields, "y", 0)
			lv.AddVertex(x, y, false)
		}
	}
	lv.NumOldVert = len(lv.Vertices)

	var sidedefs []mapdata.Sidedef
	for _, b := range blocks {
		if b.kind != "sidedef" {
			continue
		}
		ref := fieldInt(b.fields, "sector", -1)
		if ref < 0 || ref >= numSectors {
			ref = -1
		}
		sidedefs = append(sidedefs, mapdata.Sidedef{Index: len(sidedefs), SectorRef: ref})
	}
	lv.Sidedefs = sidedefs

	var linedefs []mapdata.Linedef
	for _, b := range blocks {
		if b.kind != "linedef" {
			continue
		}
		ld := mapdata.Linedef{
			Index: len(linedefs),
			Start: fieldInt(b.fields, "v1", 0),
			End:   fieldInt(b.fields, "v2", 0),
			Type:  fieldInt(b.fields, "special", 0),
			Tag:   fieldInt(b.fields, "id", fieldInt(b.fields, "arg0", 0)),
		}

		ld.RightSide = sidedefRefOrNone(uint16FromField(b.fields, "sidefront"), len(sidedefs))
		ld.LeftSide = sidedefRefOrNone(uint16FromField(b.fields, "sideback"), len(sidedefs))

		if ld.Type == 1 || ld.Type == 9 {
			ld.PolyobjectSector = true
		}

		linedefs = append(linedefs, ld)
	}
	lv.Linedefs = linedefs

	return lv, nil
}

func uint16FromField(f map[string]token, key string) uint16 {
	t, ok := f[key]
	if !ok {
		return 0xFFFF
	}
	v, err := parseNumber(t.text)
	if err != nil || v < 0 {
		return 0xFFFF
	}
	return uint16(v)
}
