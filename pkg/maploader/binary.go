// SPDX-License-Identifier: GPL-2.0-or-later

// Package maploader decodes a single map's input lumps — classic binary,
// Hexen binary, or UDMF text — into a mapdata.Level, then runs the
// shared post-decode passes (vertex pruning, overlap detection, wall tips,
// polyobject sector detection) common to all three formats.
package maploader

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/rfomin/elfbsp/pkg/mapdata"
)

const (
	rawVertexSize  = 4
	rawLinedefSize = 14
	rawHexenLDSize = 16
	rawSidedefSize = 30
	rawSectorSize  = 26
)

type rawVertex struct {
	X, Y int16
}

type rawLinedef struct {
	Start, End           uint16
	Flags                uint16
	Special              uint16
	Tag                  int16
	Right, Left          uint16
}

type rawHexenLinedef struct {
	Start, End  uint16
	Flags       uint16
	Special     uint8
	Args        [5]uint8
	Right, Left uint16
}

type rawSidedef struct {
	XOffset, YOffset            int16
	UpperTex, LowerTex, MidTex  [8]byte
	Sector                      uint16
}

type rawSector struct {
	FloorH, CeilH     int16
	FloorTex, CeilTex [8]byte
	Light             uint16
	Type              uint16
	Tag               int16
}

func decodeVertexes(data []byte) ([]mapdata.Vertex, error) {
	if len(data)%rawVertexSize != 0 {
		return nil, fmt.Errorf("maploader: VERTEXES lump size %d not a multiple of %d", len(data), rawVertexSize)
	}
	count := len(data) / rawVertexSize
	out := make([]mapdata.Vertex, count)
	r := bytes.NewReader(data)
	for i := 0; i < count; i++ {
		var rv rawVertex
		if err := binary.Read(r, binary.LittleEndian, &rv); err != nil {
			return nil, fmt.Errorf("maploader: reading vertex %d: %w", i, err)
		}
		out[i] = mapdata.Vertex{X: float64(rv.X), Y: float64(rv.Y), Index: i}
	}
	return out, nil
}

func sidedefRefOrNone(idx uint16, numSidedefs int) int {
	if idx == 0xFFFF || int(idx) >= numSidedefs {
		return mapdata.NoSide
	}
	return int(idx)
}

func decodeLinedefsClassic(data []byte, numSidedefs int) ([]mapdata.Linedef, error) {
	if len(data)%rawLinedefSize != 0 {
		return nil, fmt.Errorf("maploader: LINEDEFS lump size %d not a multiple of %d", len(data), rawLinedefSize)
	}
	count := len(data) / rawLinedefSize
	out := make([]mapdata.Linedef, count)
	r := bytes.NewReader(data)
	for i := 0; i < count; i++ {
		var rl rawLinedef
		if err := binary.Read(r, binary.LittleEndian, &rl); err != nil {
			return nil, fmt.Errorf("maploader: reading linedef %d: %w", i, err)
		}
		out[i] = mapdata.Linedef{
			Index:     i,
			Start:     int(rl.Start),
			End:       int(rl.End),
			RightSide: sidedefRefOrNone(rl.Right, numSidedefs),
			LeftSide:  sidedefRefOrNone(rl.Left, numSidedefs),
			Type:      int(rl.Special),
			Tag:       int(rl.Tag),
		}
	}
	return out, nil
}

func decodeLinedefsHexen(data []byte, numSidedefs int) ([]mapdata.Linedef, error) {
	if len(data)%rawHexenLDSize != 0 {
		return nil, fmt.Errorf("maploader: LINEDEFS (hexen) lump size %d not a multiple of %d", len(data), rawHexenLDSize)
	}
	count := len(data) / rawHexenLDSize
	out := make([]mapdata.Linedef, count)
	r := bytes.NewReader(data)
	for i := 0; i < count; i++ {
		var rl rawHexenLinedef
		if err := binary.Read(r, binary.LittleEndian, &rl); err != nil {
			return nil, fmt.Errorf("maploader: reading hexen linedef %d: %w", i, err)
		}
		ld := mapdata.Linedef{
			Index:     i,
			Start:     int(rl.Start),
			End:       int(rl.End),
			RightSide: sidedefRefOrNone(rl.Right, numSidedefs),
			LeftSide:  sidedefRefOrNone(rl.Left, numSidedefs),
			Type:      int(rl.Special),
		}
		// Hexen special 1 (Polyobj_StartLine) and 9 (Polyobj_ExplicitLine)
		// flag the sector(s) the line belongs to as polyobject sectors
		// (spec.md §4.2, following original_source's level.cpp handling).
		if rl.Special == 1 || rl.Special == 9 {
			ld.PolyobjectSector = true
		}
		out[i] = ld
	}
	return out, nil
}

func decodeSidedefs(data []byte, numSectors int) ([]mapdata.Sidedef, error) {
	if len(data)%rawSidedefSize != 0 {
		return nil, fmt.Errorf("maploader: SIDEDEFS lump size %d not a multiple of %d", len(data), rawSidedefSize)
	}
	count := len(data) / rawSidedefSize
	out := make([]mapdata.Sidedef, count)
	r := bytes.NewReader(data)
	for i := 0; i < count; i++ {
		var rs rawSidedef
		if err := binary.Read(r, binary.LittleEndian, &rs); err != nil {
			return nil, fmt.Errorf("maploader: reading sidedef %d: %w", i, err)
		}
		ref := int(rs.Sector)
		if rs.Sector == 0xFFFF || ref >= numSectors {
			ref = -1
		}
		out[i] = mapdata.Sidedef{Index: i, SectorRef: ref}
	}
	return out, nil
}

func decodeSectors(data []byte) ([]mapdata.Sector, error) {
	if len(data)%rawSectorSize != 0 {
		return nil, fmt.Errorf("maploader: SECTORS lump size %d not a multiple of %d", len(data), rawSectorSize)
	}
	count := len(data) / rawSectorSize
	out := make([]mapdata.Sector, count)
	for i := 0; i < count; i++ {
		out[i] = mapdata.Sector{Index: i, RejGroup: i, RejNext: i, RejPrev: i}
	}
	return out, nil
}
