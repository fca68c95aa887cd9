// SPDX-License-Identifier: GPL-2.0-or-later

package nodeio

import (
	"bytes"
	"encoding/binary"

	"github.com/rfomin/elfbsp/pkg/mapdata"
)

// EncodeXGL3 writes the XGL3 variant: same header/vertex/subsector layout
// as XNOD, but with explicit partner references (instead of implicit
// pairing) and 16.16 fixed-point partition lines (spec.md §4.7). Emitted
// either embedded in SSECTORS (NODES left empty) for classic/Hexen maps
// with SsectXGL3 set, or in ZNODES for UDMF maps.
func EncodeXGL3(lv *mapdata.Level) []byte {
	buf := new(bytes.Buffer)
	buf.WriteString(MagicXGL3)

	writeVertexSections(buf, lv, true)
	writeSubsectorSegCounts(buf, lv, true)
	writeSegsXGL3(buf, lv)
	writeNodes32(buf, lv, true)

	return buf.Bytes()
}

// writeSegsXGL3 first assigns every live seg its final output-order index
// (so partner references, which cross subsector boundaries, can be
// resolved to the partner's *output* index rather than its arena index),
// then emits the records.
func writeSegsXGL3(buf *bytes.Buffer, lv *mapdata.Level) {
	total := 0
	next := 0
	for si := range lv.Subsectors {
		ss := &lv.Subsectors[si]
		total += len(ss.Segs)
		for _, idx := range ss.Segs {
			lv.Segs[idx].Index = next
			next++
		}
	}
	binary.Write(buf, binary.LittleEndian, uint32(total))

	for si := range lv.Subsectors {
		ss := &lv.Subsectors[si]
		for _, idx := range ss.Segs {
			s := &lv.Segs[idx]

			binary.Write(buf, binary.LittleEndian, uint32(s.Start))
			binary.Write(buf, binary.LittleEndian, partnerRefU32(lv, s.Partner))
			binary.Write(buf, binary.LittleEndian, linedefRefU32(s.Linedef))
			binary.Write(buf, binary.LittleEndian, uint8(s.Side))
		}
	}
}

func partnerRefU32(lv *mapdata.Level, partner int) uint32 {
	if partner == mapdata.NoIndex || lv.Segs[partner].Index < 0 {
		return 0xFFFFFFFF
	}
	return uint32(lv.Segs[partner].Index)
}

func linedefRefU32(ld int) uint32 {
	if ld == mapdata.NoIndex {
		return 0xFFFFFFFF
	}
	return uint32(ld)
}
