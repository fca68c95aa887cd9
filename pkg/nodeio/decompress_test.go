// SPDX-License-Identifier: GPL-2.0-or-later

package nodeio

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecompressZNodesRoundTrip(t *testing.T) {
	want := []byte("XNOD-some-node-bytes-here")

	var compressed bytes.Buffer
	w := zlib.NewWriter(&compressed)
	_, err := w.Write(want)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	got, err := DecompressZNodes(compressed.Bytes())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDecompressZNodesInvalidStream(t *testing.T) {
	_, err := DecompressZNodes([]byte{0x00, 0x01, 0x02})
	assert.Error(t, err)
}

func TestIsCompressedMagic(t *testing.T) {
	assert.True(t, IsCompressedMagic(MagicZNOD))
	assert.True(t, IsCompressedMagic(MagicZGL3))
	assert.False(t, IsCompressedMagic(MagicXNOD))
	assert.False(t, IsCompressedMagic("FOOO"))
}
