// SPDX-License-Identifier: GPL-2.0-or-later

package nodeio

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// DecompressZNodes inflates the zlib-compressed body that follows a ZNOD,
// ZGLN, ZGL2 or ZGL3 magic word, returning the equivalent uncompressed
// XNOD/XGL3 body. This module never writes compressed output (spec.md
// §4.7 only requires reading it back, for maps that already carry one).
// The build path does not call it: a rebuild of a UDMF map removes any
// existing ZNODES lump and writes a new one without reading the old one.
func DecompressZNodes(body []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("nodeio: opening zlib stream: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("nodeio: inflating compressed nodes: %w", err)
	}
	return out, nil
}

// IsCompressedMagic reports whether magic names a zlib-compressed variant.
func IsCompressedMagic(magic string) bool {
	switch magic {
	case MagicZNOD, MagicZGLN, MagicZGL2, MagicZGL3:
		return true
	default:
		return false
	}
}
