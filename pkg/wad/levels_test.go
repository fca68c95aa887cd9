// SPDX-License-Identifier: GPL-2.0-or-later

package wad

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectLevelsClassicAndHexenAndUDMF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "levels.wad")

	writeMinimalWAD(t, path, []string{
		"MAP01", "THINGS", "LINEDEFS", "SIDEDEFS", "VERTEXES", "SEGS", "SSECTORS", "NODES", "SECTORS", "REJECT", "BLOCKMAP",
		"MAP02", "THINGS", "LINEDEFS", "SIDEDEFS", "VERTEXES", "BEHAVIOR", "SEGS", "SSECTORS", "NODES", "SECTORS",
		"MAP03", "TEXTMAP", "ZNODES", "ENDMAP",
		"UNRELATED",
	})

	c, err := Open(path)
	require.NoError(t, err)
	defer c.Close()

	require.Equal(t, 3, c.LevelCount())

	assert.Equal(t, "MAP01", c.LevelHeader(0))
	assert.Equal(t, FormatDoom, c.LevelFormat(0))

	assert.Equal(t, "MAP02", c.LevelHeader(1))
	assert.Equal(t, FormatHexen, c.LevelFormat(1))

	assert.Equal(t, "MAP03", c.LevelHeader(2))
	assert.Equal(t, FormatUDMF, c.LevelFormat(2))

	znodes := c.LevelLookupLump(2, "ZNODES")
	assert.NotEqual(t, -1, znodes)
}

func TestRemoveZNodes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "udmf.wad")
	writeMinimalWAD(t, path, []string{"MAP01", "TEXTMAP", "ZNODES", "ENDMAP"})

	c, err := Open(path)
	require.NoError(t, err)
	defer c.Close()

	c.RemoveZNodes(0)
	assert.Equal(t, -1, c.LevelLookupLump(0, "ZNODES"))
}

func TestFormatString(t *testing.T) {
	assert.Equal(t, "doom", FormatDoom.String())
	assert.Equal(t, "hexen", FormatHexen.String())
	assert.Equal(t, "udmf", FormatUDMF.String())
}
