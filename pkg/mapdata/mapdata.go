// SPDX-License-Identifier: GPL-2.0-or-later

// Package mapdata holds the in-memory entity model for a single map: the
// flat arenas of vertices, sidedefs, linedefs, sectors, segs, subsectors
// and nodes that every other package in this module (geom, bsp, blockmap,
// reject, nodeio) reads and mutates while a level is being built.
package mapdata

import "math"

// SegIsGarbage marks a seg produced by a split or round-off pass that has
// since become degenerate and must be dropped before the next emission pass.
const SegIsGarbage = -2

// NoIndex is the sentinel used for an as-yet-unassigned seg/subsector/node index.
const NoIndex = -1

// NoSide marks a sidedef reference absent on a linedef ("no side" / 0xFFFF).
const NoSide = -1

// PreciousTagLow and PreciousTagHigh bound the tag range [900,1000) that
// marks a linedef "precious": the partition scorer actively avoids cutting it.
const (
	PreciousTagLow  = 900
	PreciousTagHigh = 1000
)

// CoincideEpsilon is the distance below which two vertices, or a linedef's
// endpoints, are considered coincident (1/128 map units).
const CoincideEpsilon = 1.0 / 128.0

// Vertex is a 2D point, either loaded from disk (is_new == false) or
// introduced during seg splitting (is_new == true).
type Vertex struct {
	X, Y   float64
	Index  int
	IsNew  bool
	IsUsed bool
}

// Sector is an opaque placeholder: the builder only needs its identity and,
// for reject-matrix construction, the union-find bookkeeping fields below.
type Sector struct {
	Index int

	// Polyobject marks a sector that was flagged by a polyobject start or
	// explicit linedef during load; its segs are never chosen as a partition.
	// A partition that would split them is penalised by the BSP scorer
	// (iffyPenalty) but not ruled out.
	Polyobject bool

	// RejGroup/RejNext/RejPrev implement the intrusive circular list of
	// sibling sectors described in spec.md §3; the reject builder unions
	// groups by rewriting RejGroup and splicing these pointers.
	RejGroup int
	RejNext  int
	RejPrev  int
}

// Sidedef references a sector; a sidedef loaded with an out-of-range or
// 0xFFFF index is represented as SectorRef == -1 ("no side").
type Sidedef struct {
	Index     int
	SectorRef int
}

// Linedef refers to its endpoint vertices and, optionally, its sidedefs.
type Linedef struct {
	Index int

	Start, End int // vertex indices

	RightSide int // sidedef index, or -1
	LeftSide  int // sidedef index, or -1

	Type int
	Tag  int

	TwoSided   bool
	IsPrecious bool
	SelfRef    bool
	ZeroLen    bool

	// PolyobjectSector marks that this line was recognised during load as a
	// polyobject start/explicit line (Hexen special 1 or 9).
	PolyobjectSector bool
}

// HasRight reports whether the linedef has a right sidedef.
func (l *Linedef) HasRight() bool { return l.RightSide != NoSide }

// HasLeft reports whether the linedef has a left sidedef.
func (l *Linedef) HasLeft() bool { return l.LeftSide != NoSide }

// IsReal reports whether the linedef has at least one sidedef. Real lines
// that are not zero-length count toward num_real_lines and the initial seg
// list.
func (l *Linedef) IsReal() bool { return l.HasRight() || l.HasLeft() }

// Seg is an oriented half-line lying on a linedef, or on a partition line
// for minisegs (Linedef == -1).
type Seg struct {
	Start, End int // vertex indices

	// psx,psy -> pex,pey: the float endpoint coordinates, duplicated from
	// Start/End for fast access during partition scoring.
	Psx, Psy, Pex, Pey float64
	Pdx, Pdy, Plen     float64

	Side int // 0 = right, 1 = left, relative to the source linedef

	Linedef int // linedef index, or -1 for a miniseg
	Sector  int // sector this seg bounds, or -1

	Partner int // index into the owning Level.Segs of the mutual partner seg, or -1

	Index int // assigned during subsector emission; -1 until then, or SegIsGarbage

	// Next chains segs through the transient recursion lists used while
	// partitioning; it is not meaningful once the tree is fully built.
	Next int
}

// RecomputeGeometry fills in Psx/Psy/Pex/Pey/Pdx/Pdy/Plen from the level's
// vertex positions. Every seg must have Plen > 0 and Start != End.
func (s *Seg) RecomputeGeometry(vertices []Vertex) {
	a := vertices[s.Start]
	b := vertices[s.End]
	s.Psx, s.Psy = a.X, a.Y
	s.Pex, s.Pey = b.X, b.Y
	s.Pdx = b.X - a.X
	s.Pdy = b.Y - a.Y
	s.Plen = math.Hypot(s.Pdx, s.Pdy)
}

// Subsector is a convex BSP leaf: a list of seg indices (into Level.Segs)
// plus a bounding box.
type Subsector struct {
	Segs  []int
	Index int
	BBox  BBox
}

// Node is an interior BSP node: a partition line plus two children, each
// of which is either another node or a subsector (tagged union: the unused
// field of each pair holds -1; see RightIsSub/LeftIsSub).
type Node struct {
	X, Y, DX, DY float64

	RightBBox, LeftBBox BBox

	RightNode, RightSub int // -1 when unused
	LeftNode, LeftSub   int // -1 when unused

	Index int
}

// RightIsSub reports whether the right child is a subsector rather than a node.
func (n *Node) RightIsSub() bool { return n.RightSub != NoIndex }

// LeftIsSub reports whether the left child is a subsector rather than a node.
func (n *Node) LeftIsSub() bool { return n.LeftSub != NoIndex }

// BBox is an axis-aligned integer bounding box, used both per-node and for
// the overall map extent consumed by the blockmap builder.
type BBox struct {
	MinX, MinY, MaxX, MaxY int
}

// Union returns the smallest BBox containing both b and o.
func (b BBox) Union(o BBox) BBox {
	return BBox{
		MinX: minInt(b.MinX, o.MinX),
		MinY: minInt(b.MinY, o.MinY),
		MaxX: maxInt(b.MaxX, o.MaxX),
		MaxY: maxInt(b.MaxY, o.MaxY),
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// WallTip is one entry in a vertex's sorted circular list of outgoing line
// directions, used by the open/closed-space classification around split
// points (geom.BuildWallTips).
type WallTip struct {
	Angle     float64
	SectorCW  int // sector clockwise from this tip's line, or -1
	SectorCCW int // sector counter-clockwise from this tip's line, or -1
}

// Level owns every entity belonging to one map. The builder frees it all
// at once at the end of the map (by simply letting it go out of scope).
type Level struct {
	Vertices   []Vertex
	Sectors    []Sector
	Sidedefs   []Sidedef
	Linedefs   []Linedef
	Segs       []Seg
	Subsectors []Subsector
	Nodes      []Node

	// WallTips holds one slice per vertex, produced by geom.BuildWallTips.
	WallTips [][]WallTip

	// NumOldVert is frozen once the loader completes. Any vertex appended
	// afterwards (i.e. at index >= NumOldVert) is a new, split-introduced vertex.
	NumOldVert int

	// NumRealLines counts linedefs with at least one sidedef.
	NumRealLines int

	RootNode int // index into Nodes, or -1 if the whole map is one subsector
	RootSub  int // index into Subsectors, or -1 if a node is the root

	// MinorIssues and Warnings accumulate non-fatal diagnostics raised
	// while loading and building this level.
	MinorIssues int
	Warnings    int
}

// NewLevel returns an empty Level ready to receive decoded map data.
func NewLevel() *Level {
	return &Level{
		RootNode: NoIndex,
		RootSub:  NoIndex,
	}
}

// AddVertex appends a vertex and returns its index.
func (lv *Level) AddVertex(x, y float64, isNew bool) int {
	idx := len(lv.Vertices)
	lv.Vertices = append(lv.Vertices, Vertex{X: x, Y: y, Index: idx, IsNew: isNew})
	return idx
}

// SplitVertex is a convenience wrapper used by the BSP builder: it always
// introduces a new vertex (is_new == true), relative to NumOldVert.
func (lv *Level) SplitVertex(x, y float64) int {
	return lv.AddVertex(x, y, true)
}
