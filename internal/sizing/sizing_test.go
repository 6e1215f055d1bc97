package sizing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateModexFourPeersYieldsCapacity1024(t *testing.T) {
	e := New(1.0)
	_, htCapacity := e.EstimateModex(256, 4, 256)
	assert.Equal(t, uint64(1024), htCapacity)
}

func TestEstimateModexSizeScalesWithMultiplier(t *testing.T) {
	base := New(1.0)
	sizeBase, _ := base.EstimateModex(256, 4, 256)

	doubled := New(2.0)
	sizeDoubled, _ := doubled.EstimateModex(256, 4, 256)

	assert.Equal(t, sizeBase*2, sizeDoubled)
}

func TestEstimateJobProcessDataCountsArrayLength(t *testing.T) {
	e := New(1.0)

	withoutArray := []Entry{{Key: "k1", Value: []byte("v1")}}
	sizeWithout, capWithout := e.EstimateJob(withoutArray)

	withArray := []Entry{
		{Key: "k1", Value: []byte("v1")},
		{Key: "procs", IsProcessData: true, ProcessDataCount: 100},
	}
	sizeWith, capWith := e.EstimateJob(withArray)

	assert.Greater(t, capWith, capWithout)
	assert.Greater(t, sizeWith, sizeWithout)
}

func TestEstimateJobAppliesFluffFactor(t *testing.T) {
	e := New(1.0)
	entries := []Entry{{Key: "k", Value: []byte("v")}}
	size, _ := e.EstimateJob(entries)
	assert.Greater(t, size, uintptr(0))
}
