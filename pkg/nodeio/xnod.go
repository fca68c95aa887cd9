// SPDX-License-Identifier: GPL-2.0-or-later

package nodeio

import (
	"bytes"
	"encoding/binary"

	"github.com/rfomin/elfbsp/pkg/mapdata"
)

// EncodeXNOD writes the full extended NODES lump: magic "XNOD", new-vertex
// table, subsector seg counts, 32-bit seg records, then 32-bit node records
// (spec.md §4.7). Used whenever a classic-format map's counts overflow, or
// the caller passed ForceXNOD.
func EncodeXNOD(lv *mapdata.Level) []byte {
	buf := new(bytes.Buffer)
	buf.WriteString(MagicXNOD)

	writeVertexSections(buf, lv, false)
	writeSubsectorSegCounts(buf, lv, false)
	writeSegs32(buf, lv)
	writeNodes32(buf, lv, false)

	return buf.Bytes()
}

func writeVertexSections(buf *bytes.Buffer, lv *mapdata.Level, fixedPoint bool) {
	binary.Write(buf, binary.LittleEndian, uint32(lv.NumOldVert))

	newCount := len(lv.Vertices) - lv.NumOldVert
	binary.Write(buf, binary.LittleEndian, uint32(newCount))

	for i := lv.NumOldVert; i < len(lv.Vertices); i++ {
		v := lv.Vertices[i]
		binary.Write(buf, binary.LittleEndian, toFixed16_16(v.X))
		binary.Write(buf, binary.LittleEndian, toFixed16_16(v.Y))
	}
}

func toFixed16_16(v float64) int32 {
	return int32(v * 65536.0)
}

func writeSubsectorSegCounts(buf *bytes.Buffer, lv *mapdata.Level, _ bool) {
	binary.Write(buf, binary.LittleEndian, uint32(len(lv.Subsectors)))
	for _, ss := range lv.Subsectors {
		binary.Write(buf, binary.LittleEndian, uint32(len(ss.Segs)))
	}
}

// writeSegs32 writes every live seg, in subsector order, as the XNOD 32-bit
// record: start, end, linedef, side. Segs are implicit (packed contiguously
// per the preceding subsector seg-count table), so no explicit subsector
// index is stored per seg.
func writeSegs32(buf *bytes.Buffer, lv *mapdata.Level) {
	total := 0
	for _, ss := range lv.Subsectors {
		total += len(ss.Segs)
	}
	binary.Write(buf, binary.LittleEndian, uint32(total))

	next := 0
	for si := range lv.Subsectors {
		ss := &lv.Subsectors[si]
		for _, idx := range ss.Segs {
			s := &lv.Segs[idx]
			s.Index = next
			next++

			binary.Write(buf, binary.LittleEndian, uint32(s.Start))
			binary.Write(buf, binary.LittleEndian, uint32(s.End))
			binary.Write(buf, binary.LittleEndian, uint16(linedefRefU16(s.Linedef)))
			binary.Write(buf, binary.LittleEndian, uint8(s.Side))
		}
	}
}

func linedefRefU16(ld int) uint16 {
	if ld == mapdata.NoIndex {
		return 0xFFFF
	}
	return uint16(ld)
}

func writeNodes32(buf *bytes.Buffer, lv *mapdata.Level, fixedPoint bool) {
	binary.Write(buf, binary.LittleEndian, uint32(len(lv.Nodes)))
	for _, n := range lv.Nodes {
		if fixedPoint {
			binary.Write(buf, binary.LittleEndian, toFixed16_16(n.X))
			binary.Write(buf, binary.LittleEndian, toFixed16_16(n.Y))
			binary.Write(buf, binary.LittleEndian, toFixed16_16(n.DX))
			binary.Write(buf, binary.LittleEndian, toFixed16_16(n.DY))
		} else {
			binary.Write(buf, binary.LittleEndian, int16(n.X))
			binary.Write(buf, binary.LittleEndian, int16(n.Y))
			binary.Write(buf, binary.LittleEndian, int16(n.DX))
			binary.Write(buf, binary.LittleEndian, int16(n.DY))
		}

		writeBBox16(buf, n.RightBBox)
		writeBBox16(buf, n.LeftBBox)

		binary.Write(buf, binary.LittleEndian, childRef32(n.RightNode, n.RightSub))
		binary.Write(buf, binary.LittleEndian, childRef32(n.LeftNode, n.LeftSub))
	}
}

func childRef32(node, sub int) uint32 {
	if sub != mapdata.NoIndex {
		return uint32(sub) | 0x80000000
	}
	return uint32(node)
}
