// SPDX-License-Identifier: GPL-2.0-or-later

package builder

import (
	"github.com/rfomin/elfbsp/pkg/blockmap"
	"github.com/rfomin/elfbsp/pkg/bsp"
	"github.com/rfomin/elfbsp/pkg/elog"
	"github.com/rfomin/elfbsp/pkg/mapdata"
	"github.com/rfomin/elfbsp/pkg/nodeio"
	"github.com/rfomin/elfbsp/pkg/wad"
)

// save picks the output variant (classic, XNOD, or XGL3 embedded in
// SSECTORS or ZNODES) according to the map's source format, the user's
// flags, and whether the built tree overflows the classic format's limits
// (spec.md §4.7's auto-promotion rule), and writes the corresponding lumps.
func save(c *wad.Container, levelIdx int, lv *mapdata.Level, format wad.Format, cfg Config, log elog.Logger) (Result, error) {
	if format == wad.FormatUDMF {
		return saveXGL3InZNodes(c, levelIdx, lv, log)
	}

	if cfg.SsectXGL3 {
		return saveXGL3InSsectors(c, levelIdx, lv, log)
	}

	if cfg.ForceXNOD || nodeio.NeedsPromotion(lv) {
		return saveXNOD(c, levelIdx, lv, log)
	}

	bsp.NormaliseBspTree(lv)
	bsp.RoundOffBspTree(lv)

	if nodeio.NeedsPromotion(lv) {
		log.Infof("map overflowed classic limits after round-off; promoting to XNOD")
		return saveXNOD(c, levelIdx, lv, log)
	}

	return saveClassic(c, levelIdx, lv, log)
}

func saveClassic(c *wad.Container, levelIdx int, lv *mapdata.Level, log elog.Logger) (Result, error) {
	vtx, err := nodeio.EncodeVertexesClassic(lv)
	if err != nil {
		return LumpOverflow, err
	}
	segs, err := nodeio.EncodeSegsClassic(lv)
	if err != nil {
		return LumpOverflow, err
	}
	subs, err := nodeio.EncodeSubsectorsClassic(lv)
	if err != nil {
		return LumpOverflow, err
	}
	nodes, err := nodeio.EncodeNodesClassic(lv)
	if err != nil {
		return LumpOverflow, err
	}

	writeLump(c, levelIdx, "VERTEXES", vtx)
	writeLump(c, levelIdx, "SEGS", segs)
	writeLump(c, levelIdx, "SSECTORS", subs)
	writeLump(c, levelIdx, "NODES", nodes)

	return OK, nil
}

// saveXNOD packs the whole tree into the extended NODES lump and empties
// SEGS/SSECTORS, which extended-format-aware engines ignore.
func saveXNOD(c *wad.Container, levelIdx int, lv *mapdata.Level, log elog.Logger) (Result, error) {
	blob := nodeio.EncodeXNOD(lv)
	writeLump(c, levelIdx, "NODES", blob)
	writeLump(c, levelIdx, "SEGS", nil)
	writeLump(c, levelIdx, "SSECTORS", nil)
	return OK, nil
}

// saveXGL3InSsectors stores the XGL3 blob in SSECTORS (user requested via
// -s/--ssect) and empties NODES, per spec.md §4.7.
func saveXGL3InSsectors(c *wad.Container, levelIdx int, lv *mapdata.Level, log elog.Logger) (Result, error) {
	blob := nodeio.EncodeXGL3(lv)
	writeLump(c, levelIdx, "SSECTORS", blob)
	writeLump(c, levelIdx, "NODES", nil)
	writeLump(c, levelIdx, "SEGS", nil)
	return OK, nil
}

// saveXGL3InZNodes is always used for UDMF maps, which have no SEGS,
// SSECTORS or NODES lumps of their own.
func saveXGL3InZNodes(c *wad.Container, levelIdx int, lv *mapdata.Level, log elog.Logger) (Result, error) {
	c.RemoveZNodes(levelIdx)
	blob := nodeio.EncodeXGL3(lv)
	w := c.EnsureZNodesLump(levelIdx, len(blob))
	w.Write(blob)
	w.Finish()
	return OK, nil
}

func writeLump(c *wad.Container, levelIdx int, name string, data []byte) {
	w := c.EnsureOutputLump(levelIdx, name, len(data))
	if len(data) > 0 {
		w.Write(data)
	}
	w.Finish()
}

func writeBlockmap(c *wad.Container, levelIdx int, bm *blockmap.Blockmap, log elog.Logger) {
	if bm.Overflowed {
		log.Warnf("map %d: blockmap overflowed 16-bit offsets; emitting empty BLOCKMAP", levelIdx)
		writeLump(c, levelIdx, "BLOCKMAP", nil)
		return
	}

	data := bm.EncodeLump()
	writeLump(c, levelIdx, "BLOCKMAP", data)
}
