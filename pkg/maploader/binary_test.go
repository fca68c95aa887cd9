// SPDX-License-Identifier: GPL-2.0-or-later

package maploader

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/rfomin/elfbsp/pkg/mapdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func packVertex(x, y int16) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, rawVertex{X: x, Y: y})
	return buf.Bytes()
}

func TestDecodeVertexes(t *testing.T) {
	data := append(packVertex(10, -20), packVertex(0, 0)...)
	vs, err := decodeVertexes(data)
	require.NoError(t, err)
	require.Len(t, vs, 2)
	assert.Equal(t, 10.0, vs[0].X)
	assert.Equal(t, -20.0, vs[0].Y)
	assert.Equal(t, 0, vs[0].Index)
	assert.Equal(t, 1, vs[1].Index)
}

func TestDecodeVertexesRejectsBadSize(t *testing.T) {
	_, err := decodeVertexes([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestSidedefRefOrNone(t *testing.T) {
	assert.Equal(t, mapdata.NoSide, sidedefRefOrNone(0xFFFF, 4))
	assert.Equal(t, mapdata.NoSide, sidedefRefOrNone(9, 4))
	assert.Equal(t, 2, sidedefRefOrNone(2, 4))
}

func TestDecodeLinedefsClassic(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, rawLinedef{
		Start: 0, End: 1, Flags: 0, Special: 5, Tag: 7, Right: 0, Left: 0xFFFF,
	})
	lds, err := decodeLinedefsClassic(buf.Bytes(), 1)
	require.NoError(t, err)
	require.Len(t, lds, 1)
	assert.Equal(t, 0, lds[0].Start)
	assert.Equal(t, 1, lds[0].End)
	assert.Equal(t, 0, lds[0].RightSide)
	assert.Equal(t, mapdata.NoSide, lds[0].LeftSide)
	assert.Equal(t, 5, lds[0].Type)
	assert.Equal(t, 7, lds[0].Tag)
}

func TestDecodeLinedefsHexenFlagsPolyobjectSpecials(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, rawHexenLinedef{
		Start: 0, End: 1, Flags: 0, Special: 1, Right: 0, Left: 0xFFFF,
	})
	binary.Write(&buf, binary.LittleEndian, rawHexenLinedef{
		Start: 1, End: 2, Flags: 0, Special: 9, Right: 0, Left: 0xFFFF,
	})
	binary.Write(&buf, binary.LittleEndian, rawHexenLinedef{
		Start: 2, End: 0, Flags: 0, Special: 2, Right: 0, Left: 0xFFFF,
	})

	lds, err := decodeLinedefsHexen(buf.Bytes(), 1)
	require.NoError(t, err)
	require.Len(t, lds, 3)
	assert.True(t, lds[0].PolyobjectSector)
	assert.True(t, lds[1].PolyobjectSector)
	assert.False(t, lds[2].PolyobjectSector)
}

func TestDecodeSidedefsOutOfRangeSectorBecomesNone(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, rawSidedef{Sector: 0})
	binary.Write(&buf, binary.LittleEndian, rawSidedef{Sector: 0xFFFF})
	binary.Write(&buf, binary.LittleEndian, rawSidedef{Sector: 99})

	sds, err := decodeSidedefs(buf.Bytes(), 1)
	require.NoError(t, err)
	require.Len(t, sds, 3)
	assert.Equal(t, 0, sds[0].SectorRef)
	assert.Equal(t, -1, sds[1].SectorRef)
	assert.Equal(t, -1, sds[2].SectorRef)
}

func TestDecodeSectorsAssignsSelfRejGroups(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, rawSector{})
	binary.Write(&buf, binary.LittleEndian, rawSector{})

	secs, err := decodeSectors(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, secs, 2)
	assert.Equal(t, 1, secs[1].RejGroup)
	assert.Equal(t, 1, secs[1].RejNext)
	assert.Equal(t, 1, secs[1].RejPrev)
}
