// SPDX-License-Identifier: GPL-2.0-or-later

package maploader

import (
	"testing"

	"github.com/rfomin/elfbsp/pkg/mapdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexUDMFSkipsCommentsAndWhitespace(t *testing.T) {
	src := `// a line comment
vertex /* inline */ { x = 1.5; y = -2; }
`
	toks, err := lexUDMF(src)
	require.NoError(t, err)

	var kinds []tokenKind
	for _, tk := range toks {
		kinds = append(kinds, tk.kind)
	}
	assert.Equal(t, []tokenKind{
		tokIdent, tokLBrace, tokIdent, tokAssign, tokNumber, tokSemi,
		tokIdent, tokAssign, tokNumber, tokSemi, tokRBrace, tokEOF,
	}, kinds)
}

func TestLexUDMFUnterminatedStringErrors(t *testing.T) {
	_, err := lexUDMF(`vertex { x = "unterminated; }`)
	assert.Error(t, err)
}

func TestParseUDMFCollectsBlocksAndSkipsGlobalAssignments(t *testing.T) {
	toks, err := lexUDMF(`namespace = "zdoom";
vertex { x = 1; y = 2; }
`)
	require.NoError(t, err)

	blocks, err := parseUDMF(toks)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, "vertex", blocks[0].kind)
	assert.Equal(t, "1", blocks[0].fields["x"].text)
}

func TestDecodeUDMFResolvesSideRefsAndPolyobjectSpecial(t *testing.T) {
	toks, err := lexUDMF(`
vertex { x = 0; y = 0; }
vertex { x = 10; y = 0; }
sector { }
sidedef { sector = 0; }
linedef { v1 = 0; v2 = 1; sidefront = 0; special = 1; }
`)
	require.NoError(t, err)
	blocks, err := parseUDMF(toks)
	require.NoError(t, err)

	lv, err := decodeUDMF(blocks)
	require.NoError(t, err)

	require.Len(t, lv.Sectors, 1)
	require.Len(t, lv.Sidedefs, 1)
	require.Len(t, lv.Linedefs, 1)

	ld := lv.Linedefs[0]
	assert.Equal(t, 0, ld.RightSide)
	assert.Equal(t, mapdata.NoSide, ld.LeftSide)
	assert.True(t, ld.PolyobjectSector)
}

func TestUint16FromFieldDefaultsToSentinel(t *testing.T) {
	assert.Equal(t, uint16(0xFFFF), uint16FromField(map[string]token{}, "sideback"))
}
