// SPDX-License-Identifier: GPL-2.0-or-later

package nodeio

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/rfomin/elfbsp/pkg/geom"
	"github.com/rfomin/elfbsp/pkg/mapdata"
)

// EncodeVertexesClassic writes lv's original (non-split) vertices as the
// vanilla 16-bit coordinate pairs that replace VERTEXES.
func EncodeVertexesClassic(lv *mapdata.Level) ([]byte, error) {
	if lv.NumOldVert > MaxClassicVertices {
		return nil, ErrOverflow
	}
	buf := new(bytes.Buffer)
	for i := 0; i < lv.NumOldVert; i++ {
		v := lv.Vertices[i]
		binary.Write(buf, binary.LittleEndian, int16(v.X))
		binary.Write(buf, binary.LittleEndian, int16(v.Y))
	}
	return buf.Bytes(), nil
}

func vertexRef16(lv *mapdata.Level, idx int) uint16 {
	if idx >= lv.NumOldVert {
		return uint16(idx-lv.NumOldVert) | 0x8000
	}
	return uint16(idx)
}

// EncodeSegsClassic writes the vanilla 12-byte SEGS record for every live
// (non-garbage) seg referenced by a subsector, in subsector order.
func EncodeSegsClassic(lv *mapdata.Level) ([]byte, error) {
	if countLiveSegs(lv) > MaxClassicSegs {
		return nil, ErrOverflow
	}

	buf := new(bytes.Buffer)
	next := 0

	for si := range lv.Subsectors {
		ss := &lv.Subsectors[si]
		for _, idx := range ss.Segs {
			s := &lv.Segs[idx]
			s.Index = next
			next++

			start, end := lv.Vertices[s.Start], lv.Vertices[s.End]
			angle := int16(math.Round(geom.ComputeAngle(end.X-start.X, end.Y-start.Y) * 65536.0 / 360.0))
			dist := computeOffset(lv, s, start)

			binary.Write(buf, binary.LittleEndian, vertexRef16(lv, s.Start))
			binary.Write(buf, binary.LittleEndian, vertexRef16(lv, s.End))
			binary.Write(buf, binary.LittleEndian, uint16(angle))
			binary.Write(buf, binary.LittleEndian, linedefRef16(s.Linedef))
			binary.Write(buf, binary.LittleEndian, int16(s.Side))
			binary.Write(buf, binary.LittleEndian, int16(math.Round(dist)))
		}
	}

	return buf.Bytes(), nil
}

func linedefRef16(ld int) int16 {
	if ld == mapdata.NoIndex {
		return -1
	}
	return int16(ld)
}

// computeOffset returns the Euclidean distance from the seg's start to the
// linedef's reference endpoint on the seg's side (its Start vertex for a
// right seg, its End vertex for a left seg), per spec.md §4.7. For a
// miniseg (no linedef) the distance is zero. start is the seg's own start
// vertex, already looked up from the (post-RoundOffBspTree) vertex arena so
// the offset reflects the rounded endpoints exactly rather than the cached
// pre-round Psx/Psy snapshot taken at RecomputeGeometry time.
func computeOffset(lv *mapdata.Level, s *mapdata.Seg, start mapdata.Vertex) float64 {
	if s.Linedef == mapdata.NoIndex {
		return 0
	}
	ld := &lv.Linedefs[s.Linedef]
	refVert := ld.Start
	if s.Side == 1 {
		refVert = ld.End
	}
	rv := lv.Vertices[refVert]
	return geom.Dist(start.X, start.Y, rv.X, rv.Y)
}

// EncodeSubsectorsClassic writes the vanilla 4-byte (count, first-seg)
// record for each subsector.
func EncodeSubsectorsClassic(lv *mapdata.Level) ([]byte, error) {
	if len(lv.Subsectors) > MaxClassicSubsecs {
		return nil, ErrOverflow
	}

	buf := new(bytes.Buffer)
	first := 0
	for _, ss := range lv.Subsectors {
		binary.Write(buf, binary.LittleEndian, uint16(len(ss.Segs)))
		binary.Write(buf, binary.LittleEndian, uint16(first))
		first += len(ss.Segs)
	}
	return buf.Bytes(), nil
}

// EncodeNodesClassic writes the vanilla NODES record for every node, in the
// node arena's own order (nodes are already appended in a valid post-order
// by the builder's recursion, since children are always built, hence
// indexed, before their parent).
func EncodeNodesClassic(lv *mapdata.Level) ([]byte, error) {
	if len(lv.Nodes) > MaxClassicNodes {
		return nil, ErrOverflow
	}

	buf := new(bytes.Buffer)
	for _, n := range lv.Nodes {
		binary.Write(buf, binary.LittleEndian, int16(n.X))
		binary.Write(buf, binary.LittleEndian, int16(n.Y))
		binary.Write(buf, binary.LittleEndian, int16(n.DX))
		binary.Write(buf, binary.LittleEndian, int16(n.DY))

		writeBBox16(buf, n.RightBBox)
		writeBBox16(buf, n.LeftBBox)

		binary.Write(buf, binary.LittleEndian, childRef16(n.RightNode, n.RightSub))
		binary.Write(buf, binary.LittleEndian, childRef16(n.LeftNode, n.LeftSub))
	}
	return buf.Bytes(), nil
}

func writeBBox16(buf *bytes.Buffer, b mapdata.BBox) {
	binary.Write(buf, binary.LittleEndian, int16(b.MaxY))
	binary.Write(buf, binary.LittleEndian, int16(b.MinY))
	binary.Write(buf, binary.LittleEndian, int16(b.MinX))
	binary.Write(buf, binary.LittleEndian, int16(b.MaxX))
}

func childRef16(node, sub int) uint16 {
	if sub != mapdata.NoIndex {
		return uint16(sub) | 0x8000
	}
	return uint16(node)
}
