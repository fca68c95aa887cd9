// SPDX-License-Identifier: GPL-2.0-or-later

package wad

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureOutputLumpCreatesMissingLumpAfterPredecessor(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.wad")
	// no SEGS, SSECTORS, NODES present yet; VERTEXES is the nearest predecessor.
	writeMinimalWAD(t, path, []string{"MAP01", "THINGS", "LINEDEFS", "SIDEDEFS", "VERTEXES", "SECTORS"})

	c, err := Open(path)
	require.NoError(t, err)
	defer c.Close()

	w := c.EnsureOutputLump(0, "NODES", 4)
	_, _ = w.Write([]byte{9, 9})
	w.Finish()

	idx := c.LevelLookupLump(0, "NODES")
	require.NotEqual(t, -1, idx)
	assert.Equal(t, "VERTEXES", c.LumpName(idx-1), "NODES must land immediately after its nearest present predecessor")
}

func TestEnsureOutputLumpReusesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.wad")
	writeMinimalWAD(t, path, []string{"MAP01", "THINGS", "LINEDEFS", "SIDEDEFS", "VERTEXES", "NODES"})

	c, err := Open(path)
	require.NoError(t, err)
	defer c.Close()

	before := c.NumLumps()
	w := c.EnsureOutputLump(0, "NODES", 4)
	_, _ = w.Write([]byte{1, 2, 3, 4})
	w.Finish()

	assert.Equal(t, before, c.NumLumps(), "reusing an existing lump must not add a new one")
}

func TestEnsureZNodesLumpInsertsBeforeEndmap(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.wad")
	writeMinimalWAD(t, path, []string{"MAP01", "TEXTMAP", "ENDMAP"})

	c, err := Open(path)
	require.NoError(t, err)
	defer c.Close()

	w := c.EnsureZNodesLump(0, 4)
	_, _ = w.Write([]byte{1, 2, 3, 4})
	w.Finish()

	idx := c.LevelLookupLump(0, "ZNODES")
	require.NotEqual(t, -1, idx)
	assert.Equal(t, "ENDMAP", c.LumpName(idx+1))
}
