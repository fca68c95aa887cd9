// SPDX-License-Identifier: GPL-2.0-or-later

// Package nodeio encodes a built BSP tree into the on-disk lump formats the
// engine family understands: classic vanilla DOOM, and the ZDoom extended
// XNOD / XGL3 variants. UDMF input is always emitted as XGL3 (in ZNODES);
// classic and Hexen input default to classic and auto-promote to XNOD on
// overflow.
package nodeio

import (
	"errors"

	"github.com/rfomin/elfbsp/pkg/mapdata"
)

// Magic words for the NODES/ZNODES lump header, as recognised by the
// consuming engines (spec.md §4.7). Only XNOD and XGL3 are ever written by
// this module; the rest are documented for completeness and for future
// read-side support.
const (
	MagicXNOD = "XNOD"
	MagicZNOD = "ZNOD"
	MagicXGLN = "XGLN"
	MagicZGLN = "ZGLN"
	MagicXGL2 = "XGL2"
	MagicZGL2 = "ZGL2"
	MagicXGL3 = "XGL3"
	MagicZGL3 = "ZGL3"
	MagicDeeP = "xNd4\x00\x00\x00\x00"
)

// Classic format hard limits (spec.md §4.7, original_source's level.cpp
// lines 1652/1711): the classic encoders themselves fail past these counts,
// since 0xFFFF is reserved as a sentinel in the 16-bit on-disk fields.
const (
	MaxClassicVertices = 65534
	MaxClassicSegs     = 65534
	MaxClassicSubsecs  = 32767
	MaxClassicNodes    = 32767
)

// Auto-promotion thresholds (spec.md §4.7, original_source's level.cpp
// lines 1864-1867): the driver promotes to XNOD once any of these counts
// exceeds 32767, well before the classic format's own hard limits above —
// vertex/seg counts share the node/subsector ceiling here, not the higher
// 65534 failure limit.
const (
	PromoteOldVerts = 32767
	PromoteNewVerts = 32767
	PromoteSegs     = 32767
)

// ErrOverflow is returned by the classic encoders when a count exceeds its
// 16-bit (or 15-bit, for subsectors/nodes) limit; the driver responds by
// re-running the save in XNOD.
var ErrOverflow = errors.New("nodeio: classic format lump count overflow")

// NeedsPromotion reports whether lv's counts exceed what the classic format
// can represent, meaning the driver must re-emit in XNOD instead
// (spec.md §4.7's auto-promotion rule).
func NeedsPromotion(lv *mapdata.Level) bool {
	newVerts := len(lv.Vertices) - lv.NumOldVert
	return lv.NumOldVert > PromoteOldVerts ||
		newVerts > PromoteNewVerts ||
		countLiveSegs(lv) > PromoteSegs ||
		len(lv.Subsectors) > MaxClassicSubsecs ||
		len(lv.Nodes) > MaxClassicNodes
}

func countLiveSegs(lv *mapdata.Level) int {
	n := 0
	for _, ss := range lv.Subsectors {
		n += len(ss.Segs)
	}
	return n
}
