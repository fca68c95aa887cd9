// SPDX-License-Identifier: GPL-2.0-or-later

package builder

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/rfomin/elfbsp/pkg/wad"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rawVertex struct{ X, Y int16 }
type rawLinedef struct {
	Start, End  uint16
	Flags       uint16
	Special     uint16
	Tag         int16
	Right, Left uint16
}
type rawSidedef struct {
	XOffset, YOffset           int16
	UpperTex, LowerTex, MidTex [8]byte
	Sector                     uint16
}
type rawSector struct {
	FloorH, CeilH     int16
	FloorTex, CeilTex [8]byte
	Light             uint16
	Type              uint16
	Tag               int16
}

type testLump struct {
	name string
	data []byte
}

func writeWAD(t *testing.T, lumps []testLump) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.wad")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	const headerSize = 12
	const lumpNameBytes = 8

	type dirEntry struct {
		Pos  int32
		Size int32
		Name [lumpNameBytes]byte
	}

	var body bytes.Buffer
	entries := make([]dirEntry, len(lumps))
	pos := int32(headerSize)
	for i, l := range lumps {
		entries[i].Pos = pos
		entries[i].Size = int32(len(l.data))
		copy(entries[i].Name[:], l.name)
		body.Write(l.data)
		pos += int32(len(l.data))
	}

	var hdr struct {
		Magic    [4]byte
		NumLumps int32
		DirOfs   int32
	}
	copy(hdr.Magic[:], "PWAD")
	hdr.NumLumps = int32(len(lumps))
	hdr.DirOfs = pos

	require.NoError(t, binary.Write(f, binary.LittleEndian, &hdr))
	_, err = f.Write(body.Bytes())
	require.NoError(t, err)
	for _, e := range entries {
		require.NoError(t, binary.Write(f, binary.LittleEndian, &e))
	}

	return path
}

func le(v interface{}) []byte {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, v)
	return buf.Bytes()
}

func squareRoomWAD(t *testing.T) string {
	vertexes := append(append(append(
		le(rawVertex{0, 0}), le(rawVertex{10, 0})...), le(rawVertex{10, 10})...), le(rawVertex{0, 10})...)

	var linedefs bytes.Buffer
	linedefs.Write(le(rawLinedef{Start: 0, End: 1, Right: 0, Left: 0xFFFF}))
	linedefs.Write(le(rawLinedef{Start: 1, End: 2, Right: 1, Left: 0xFFFF}))
	linedefs.Write(le(rawLinedef{Start: 2, End: 3, Right: 2, Left: 0xFFFF}))
	linedefs.Write(le(rawLinedef{Start: 3, End: 0, Right: 3, Left: 0xFFFF}))

	var sidedefs bytes.Buffer
	for i := 0; i < 4; i++ {
		sidedefs.Write(le(rawSidedef{Sector: 0}))
	}

	return writeWAD(t, []testLump{
		{"MAP01", nil},
		{"THINGS", nil},
		{"LINEDEFS", linedefs.Bytes()},
		{"SIDEDEFS", sidedefs.Bytes()},
		{"VERTEXES", vertexes},
		{"SECTORS", le(rawSector{})},
	})
}

func TestBuildFileProducesNodesAndBlockmapAndReject(t *testing.T) {
	path := squareRoomWAD(t)

	cfg := Config{DoBlockmap: true, DoReject: true}
	tele, outcomes, err := BuildFile(context.Background(), path, cfg, nil)
	require.NoError(t, err)

	require.Len(t, outcomes, 1)
	assert.Equal(t, OK, outcomes[0].Result)
	assert.Equal(t, 1, tele.MapsBuilt)

	c, err := wad.Open(path)
	require.NoError(t, err)
	defer c.Close()

	assert.NotEqual(t, -1, c.LevelLookupLump(0, "NODES"))
	assert.NotEqual(t, -1, c.LevelLookupLump(0, "SSECTORS"))
	assert.NotEqual(t, -1, c.LevelLookupLump(0, "BLOCKMAP"))
	assert.NotEqual(t, -1, c.LevelLookupLump(0, "REJECT"))
}

func TestBuildFileHonoursMapFilter(t *testing.T) {
	path := squareRoomWAD(t)

	cfg := Config{MapFilter: func(levelIdx int, header string) bool { return false }}
	tele, outcomes, err := BuildFile(context.Background(), path, cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, tele.MapsSkipped)
	assert.Empty(t, outcomes)
}

func TestBuildFileCancelledLeavesFileUnwritten(t *testing.T) {
	path := squareRoomWAD(t)

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err = BuildFile(ctx, path, Config{}, nil)
	assert.ErrorIs(t, err, ErrCancelledBuild)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after, "a cancelled build must not rewrite the file")
}

func TestResultString(t *testing.T) {
	assert.Equal(t, "ok", OK.String())
	assert.Equal(t, "cancelled", Cancelled.String())
	assert.Equal(t, "bad file", BadFile.String())
	assert.Equal(t, "lump overflow", LumpOverflow.String())
}
