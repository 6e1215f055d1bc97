//go:build linux

package vmem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindHoleOnLiveProcess(t *testing.T) {
	addr, err := FindHole(4096)
	require.NoError(t, err)
	assert.NotZero(t, addr)
}

func TestFindHoleRejectsUnreasonablyLargeRequest(t *testing.T) {
	_, err := FindHole(^uintptr(0))
	assert.Error(t, err)
}

func TestFindLargestGapPicksBiggestInteriorGap(t *testing.T) {
	mappings := []mapping{
		{start: 0x1000, end: 0x2000},
		{start: 0x3000, end: 0x4000},
		{start: 0x9000, end: 0xa000},
	}

	start, size, found := findLargestGap(mappings)
	assert.True(t, found)
	assert.Equal(t, uintptr(0x4000), start)
	assert.Equal(t, uintptr(0x5000), size)
}

func TestFindLargestGapIgnoresBoundaryGaps(t *testing.T) {
	mappings := []mapping{{start: 0x5000, end: 0x6000}}

	_, _, found := findLargestGap(mappings)
	assert.False(t, found)
}
