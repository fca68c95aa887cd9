// SPDX-License-Identifier: GPL-2.0-or-later

package wad

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeMinimalWAD builds a PWAD with the given lump names (all empty
// bodies) directly on disk, bypassing Container, so Open has something
// independent to parse.
func writeMinimalWAD(t *testing.T, path string, names []string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	var hdr struct {
		Magic    [4]byte
		NumLumps int32
		DirOfs   int32
	}
	copy(hdr.Magic[:], "PWAD")
	hdr.NumLumps = int32(len(names))
	hdr.DirOfs = headerSize

	require.NoError(t, binary.Write(f, binary.LittleEndian, &hdr))

	for _, name := range names {
		var de struct {
			Pos  int32
			Size int32
			Name [lumpNameBytes]byte
		}
		copy(de.Name[:], name)
		require.NoError(t, binary.Write(f, binary.LittleEndian, &de))
	}
}

func TestOpenRejectsBadMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.wad")
	require.NoError(t, os.WriteFile(path, []byte("NOTAWAD!!!!"), 0644))

	_, err := Open(path)
	assert.ErrorIs(t, err, ErrBadFile)
}

func TestOpenParsesDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.wad")
	writeMinimalWAD(t, path, []string{"MAP01", "THINGS", "LINEDEFS"})

	c, err := Open(path)
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, 3, c.NumLumps())
	assert.Equal(t, "MAP01", c.LumpName(0))
	assert.Equal(t, 1, c.FindLump(0, "THINGS"))
	assert.Equal(t, -1, c.FindLump(0, "NOPE"))
}

func TestAddLumpAndEndWriteRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.wad")
	writeMinimalWAD(t, path, []string{"MAP01"})

	c, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, c.BeginWrite())

	idx, err := c.AddLump("SEGS")
	require.NoError(t, err)
	w := c.RecreateLump(idx, 4)
	_, _ = w.Write([]byte{1, 2, 3, 4})
	w.Finish()

	require.NoError(t, c.EndWrite())
	require.NoError(t, c.Close())

	c2, err := Open(path)
	require.NoError(t, err)
	defer c2.Close()

	assert.Equal(t, 2, c2.NumLumps())
	segsIdx := c2.FindLump(0, "SEGS")
	require.NotEqual(t, -1, segsIdx)
	assert.Equal(t, []byte{1, 2, 3, 4}, c2.LumpData(segsIdx))
}

func TestEndWriteWithoutBeginWriteFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.wad")
	writeMinimalWAD(t, path, []string{"MAP01"})

	c, err := Open(path)
	require.NoError(t, err)
	defer c.Close()

	assert.Error(t, c.EndWrite())
}
