// SPDX-License-Identifier: GPL-2.0-or-later

package blockmap

import (
	"bytes"
	"encoding/binary"
)

// EncodeLump writes the BLOCKMAP lump header (origin, width, height) and
// the per-cell offset table followed by each distinct cell body, sharing
// one body among every cell DedupeCells found equivalent (spec.md §4.5).
// Callers must check Overflowed first; EncodeLump does not re-check it.
func (bm *Blockmap) EncodeLump() []byte {
	canon := bm.DedupeCells()

	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, int16(bm.OriginX))
	binary.Write(buf, binary.LittleEndian, int16(bm.OriginY))
	binary.Write(buf, binary.LittleEndian, uint16(bm.Width))
	binary.Write(buf, binary.LittleEndian, uint16(bm.Height))

	headerWords := 4 + len(bm.Cells)
	offsets := make([]uint16, len(bm.Cells))
	bodies := new(bytes.Buffer)
	bodyOffsetOf := make(map[int]uint16)

	for i, c := range canon {
		if c != i {
			continue
		}
		bodyOffsetOf[i] = uint16(headerWords + bodies.Len()/2)
		binary.Write(bodies, binary.LittleEndian, uint16(0x0000))
		for _, line := range bm.Cells[i] {
			binary.Write(bodies, binary.LittleEndian, uint16(line))
		}
		binary.Write(bodies, binary.LittleEndian, uint16(0xFFFF))
	}

	for i, c := range canon {
		offsets[i] = bodyOffsetOf[c]
	}
	for _, off := range offsets {
		binary.Write(buf, binary.LittleEndian, off)
	}

	buf.Write(bodies.Bytes())

	return buf.Bytes()
}
