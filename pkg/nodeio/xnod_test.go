// SPDX-License-Identifier: GPL-2.0-or-later

package nodeio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfomin/elfbsp/pkg/mapdata"
)

func TestEncodeXNODStartsWithMagic(t *testing.T) {
	lv := simpleLevel(t)
	data := EncodeXNOD(lv)

	require.True(t, len(data) >= 4)
	assert.Equal(t, MagicXNOD, string(data[:4]))
}

func TestLinedefRefU16Sentinel(t *testing.T) {
	assert.Equal(t, uint16(0xFFFF), linedefRefU16(mapdata.NoIndex))
	assert.Equal(t, uint16(7), linedefRefU16(7))
}

func TestToFixed16_16(t *testing.T) {
	assert.Equal(t, int32(1<<16), toFixed16_16(1.0))
	assert.Equal(t, int32(0), toFixed16_16(0.0))
}
