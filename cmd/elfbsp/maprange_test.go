// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMapName(t *testing.T) {
	assert.True(t, isMapName("MAP01"))
	assert.True(t, isMapName("E1M1"))
	assert.True(t, isMapName("AB"))
	assert.False(t, isMapName("A"), "too short")
	assert.False(t, isMapName("TOOLONGNAME"), "too long")
	assert.False(t, isMapName("1MAP"), "must start with a letter")
	assert.False(t, isMapName("MAP-01"), "hyphen not allowed")
}

func TestMapNameLess(t *testing.T) {
	assert.True(t, mapNameLess("E1", "MAP01"), "shorter name sorts first")
	assert.True(t, mapNameLess("MAP01", "MAP02"))
	assert.False(t, mapNameLess("MAP02", "MAP01"))
}

func TestParseMapFilterEmptySpecMatchesEverything(t *testing.T) {
	filter, err := parseMapFilter("")
	require.NoError(t, err)
	assert.Nil(t, filter)
}

func TestParseMapFilterBareNames(t *testing.T) {
	filter, err := parseMapFilter("MAP01,MAP03")
	require.NoError(t, err)
	assert.True(t, filter(0, "MAP01"))
	assert.False(t, filter(0, "MAP02"))
	assert.True(t, filter(0, "MAP03"))
}

func TestParseMapFilterRangeAutoSwapsReversedBounds(t *testing.T) {
	filter, err := parseMapFilter("MAP05-MAP01")
	require.NoError(t, err)
	assert.True(t, filter(0, "MAP01"))
	assert.True(t, filter(0, "MAP03"))
	assert.True(t, filter(0, "MAP05"))
	assert.False(t, filter(0, "MAP06"))
}

func TestParseMapFilterRejectsMismatchedLengthRange(t *testing.T) {
	_, err := parseMapFilter("E1M1-MAP01")
	assert.Error(t, err)
}

func TestParseMapFilterRejectsMismatchedLeadingLetterRange(t *testing.T) {
	_, err := parseMapFilter("MAP01-EAP09")
	assert.Error(t, err)
}

func TestParseMapFilterRejectsInvalidName(t *testing.T) {
	_, err := parseMapFilter("1BAD")
	assert.Error(t, err)
}
