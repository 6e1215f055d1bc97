// Package sizing computes the byte size and hash-table capacity a segment
// must be created with before any of its contents exist. Both the job
// segment (from a fetched key list) and the modex segment (from an inbound
// fence buffer and peer count) go through an Estimator; the formula is the
// same shape in both cases, only the inputs that produce the raw byte count
// differ.
package sizing

import (
	"github.com/iamNilotpal/shmgds/internal/hashtable"
	"github.com/iamNilotpal/shmgds/internal/header"
)

// hashSkeletonOverhead approximates sizeof(ht_skeleton): the Table's own
// bookkeeping fields, independent of how many buckets it ends up with.
const hashSkeletonOverhead = 64

// FluffFactor is the empirical safety margin every segment size estimate is
// multiplied by. It is a fixed constant, not an operator tunable — the
// multiplier the operator does control is applied on top of it.
const FluffFactor = 2.5

// arenaAllocationSlack is the worst-case padding align8 introduces when
// rounding an arena allocation up to the next multiple of 8.
const arenaAllocationSlack = 7

// allocationsPerEntry is the number of separate arena allocations one job
// entry costs: one Strdup for the key, one Memdup for the value. Neither
// allocation packs flush against the next, so packedSize (the exact byte
// count of the keys and values) always undercounts the arena space they
// actually occupy.
const allocationsPerEntry = 2

// perEntryStorageFor is H = per_entry_storage_for(ht_capacity): the
// alignment slack the flat ht_capacity*sizeof(key_value_pair) term doesn't
// account for, because every stored key and value is its own 8-byte-aligned
// arena allocation rather than bytes packed back to back.
func perEntryStorageFor(capacity uint64) uintptr {
	return uintptr(capacity) * allocationsPerEntry * arenaAllocationSlack
}

// Entry is one fetched job-level key/value pair, tagged with whether it is
// a "process data" array — the one category whose element count
// contributes its full length to the hash-entry estimate instead of 1.
type Entry struct {
	Key              string
	Value            []byte
	IsProcessData    bool
	ProcessDataCount int
}

// Estimator turns a set of fetched entries (or a raw modex buffer) into the
// (size, ht_capacity) pair a segment must be created with.
type Estimator struct {
	multiplier float64
}

// New constructs an Estimator applying the given operator-configured
// multiplier on top of the fixed FluffFactor.
func New(multiplier float64) *Estimator {
	return &Estimator{multiplier: multiplier}
}

// EstimateJob walks entries once to count expected hash entries (array
// process-data entries contribute their length, everything else
// contributes one), packs a scratch estimate of their serialized size, and
// returns the segment size and the hash table's actual capacity for that
// entry count.
func (e *Estimator) EstimateJob(entries []Entry) (size uintptr, htCapacity uint64) {
	var expectedEntries uint64
	var packedSize uintptr

	for _, entry := range entries {
		if entry.IsProcessData {
			expectedEntries += uint64(entry.ProcessDataCount)
		} else {
			expectedEntries++
		}
		packedSize += uintptr(len(entry.Key)+1) + uintptr(len(entry.Value))
	}

	htCapacity = hashtable.CapacityFor(expectedEntries)

	raw := header.Size +
		hashSkeletonOverhead +
		perEntryStorageFor(htCapacity) +
		uintptr(htCapacity)*hashtable.ElementSize +
		packedSize

	size = e.inflate(raw)
	return size, htCapacity
}

// EstimateModex applies the `256 * n_peers` provisional heuristic to choose
// ht_capacity, then sizes the segment from the inbound buffer size
// replicated across every peer plus the hash table's own storage.
func (e *Estimator) EstimateModex(bufferSize uintptr, nPeers int, capacityPerPeer int) (size uintptr, htCapacity uint64) {
	requested := uint64(capacityPerPeer) * uint64(nPeers)
	htCapacity = hashtable.CapacityFor(requested)

	raw := bufferSize*uintptr(nPeers) +
		hashSkeletonOverhead +
		uintptr(htCapacity)*hashtable.ElementSize

	size = e.inflate(raw)
	return size, htCapacity
}

func (e *Estimator) inflate(raw uintptr) uintptr {
	return uintptr(float64(raw) * FluffFactor * e.multiplier)
}
