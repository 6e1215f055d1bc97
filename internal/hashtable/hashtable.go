// Package hashtable provides the concrete collaborator implementation of
// the hash-table contract the shared-memory GDS assumes is available:
// construct, init(capacity), an actual-allocated-capacity query, element
// size, and insert. Storage for every bucket lives inside the owning
// segment's arena, so a hash table built here is itself just another
// arena-backed container with no process-private state beyond the pointer
// to its Arena and the address of its bucket array.
package hashtable

import (
	"hash/fnv"
	"unsafe"

	"github.com/iamNilotpal/shmgds/internal/arena"
	shmerrors "github.com/iamNilotpal/shmgds/pkg/errors"
)

// Entry is one bucket slot: a key/value pair of in-segment addresses plus
// their lengths, and an occupancy flag. Open addressing with linear probing
// resolves collisions, matching the "flat array of slots" shape the
// estimator's ht_capacity*sizeof(key_value_pair) term assumes.
type Entry struct {
	KeyAddr   arena.Addr
	ValueAddr arena.Addr
	KeyLen    uint32
	ValueLen  uint32
	Occupied  bool
}

// ElementSize is the storage cost of one bucket slot, the sizeof(key_value_pair)
// term the sizing estimator multiplies by ht_capacity.
const ElementSize = unsafe.Sizeof(Entry{})

// hashKey computes the bucket index seed for key. Bucket placement must be
// identical across processes that attach the same table, so this cannot use
// Go's built-in map hashing (maphash.Hasher included) — that seeds itself
// from a per-process random value, which means the creator and an attacher
// would probe different slots for the same key. FNV-1a has no seed at all,
// so every process that calls hashKey on the same bytes gets the same
// result, which is the only property this table actually needs.
func hashKey(key string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(key))
	return h.Sum64()
}

// Table is a hash table whose bucket array lives inside an Arena. Table
// itself holds no data outside process memory except the Arena pointer and
// the bucket array's in-segment address and capacity, both of which are
// also mirrored into the segment header so any attached process can
// reconstruct the same Table.
type Table struct {
	a           *arena.Arena
	bucketsAddr arena.Addr
	capacity    uint64
	count       uint64
}

// New constructs a Table over the given Arena. The table has no storage
// until Init is called.
func New(a *arena.Arena) *Table {
	return &Table{a: a}
}

// Attach reconstructs a Table view over an existing bucket array, as a
// client does after reading bucketsAddr/capacity out of a mapped header.
func Attach(a *arena.Arena, bucketsAddr arena.Addr, capacity, count uint64) *Table {
	return &Table{a: a, bucketsAddr: bucketsAddr, capacity: capacity, count: count}
}

// Init allocates a bucket array for at least requestedCapacity entries,
// rounding up to the next power of two so probing can use a fast modulo.
// The table's actual, allocated capacity — which may exceed
// requestedCapacity — is what callers must record in the segment header,
// per the spec's invariant that "ht_capacity recorded in the header equals
// the collaborator hash table's actual capacity for the stored element
// count".
func (t *Table) Init(requestedCapacity uint64) error {
	capacity := nextPow2(requestedCapacity)
	if capacity == 0 {
		capacity = 1
	}

	addr, err := t.a.Calloc(uintptr(capacity), ElementSize)
	if err != nil {
		return err
	}

	t.bucketsAddr = addr
	t.capacity = capacity
	t.count = 0
	return nil
}

// ActualCapacity returns the number of bucket slots actually allocated.
func (t *Table) ActualCapacity() uint64 {
	return t.capacity
}

// Count returns the number of occupied slots.
func (t *Table) Count() uint64 {
	return t.count
}

// BucketsAddr returns the in-segment address of the bucket array, for
// storing into the segment header so other processes can Attach to it.
func (t *Table) BucketsAddr() arena.Addr {
	return t.bucketsAddr
}

// Insert stores key, pointing at a value already written into the arena at
// valueAddr/valueLen. Returns ResourceExhaustionError if the table is full.
func (t *Table) Insert(key string, valueAddr arena.Addr, valueLen uint32) error {
	if t.count >= t.capacity {
		return shmerrors.NewResourceExhaustionError(nil, "hash table has no free slots").
			WithResource("hashtable_slot").
			WithRequestedSize(uint64(t.capacity))
	}

	keyAddr, err := t.a.Strdup(key)
	if err != nil {
		return err
	}

	idx := hashKey(key) % t.capacity
	for i := uint64(0); i < t.capacity; i++ {
		slot := (idx + i) % t.capacity
		e := t.entryAt(slot)
		if !e.Occupied {
			e.KeyAddr = keyAddr
			e.KeyLen = uint32(len(key))
			e.ValueAddr = valueAddr
			e.ValueLen = valueLen
			e.Occupied = true
			t.count++
			return nil
		}
	}

	return shmerrors.NewResourceExhaustionError(nil, "hash table probing exhausted all slots").
		WithResource("hashtable_slot")
}

// Lookup finds key and returns its stored value address/length.
func (t *Table) Lookup(key string) (arena.Addr, uint32, bool) {
	if t.capacity == 0 {
		return arena.AddrNull, 0, false
	}

	idx := hashKey(key) % t.capacity
	for i := uint64(0); i < t.capacity; i++ {
		slot := (idx + i) % t.capacity
		e := t.entryAt(slot)
		if !e.Occupied {
			return arena.AddrNull, 0, false
		}
		if string(t.a.Bytes(e.KeyAddr, uintptr(e.KeyLen))) == key {
			return e.ValueAddr, e.ValueLen, true
		}
	}
	return arena.AddrNull, 0, false
}

func (t *Table) entryAt(i uint64) *Entry {
	offset := uintptr(i) * ElementSize
	return (*Entry)(t.a.At(arena.Addr(uintptr(t.bucketsAddr) + offset)))
}

// CapacityFor reports the bucket count Init(requestedCapacity) would
// actually allocate, without allocating anything. The sizing estimator
// calls this to learn ht_capacity before a segment — and therefore an
// Arena to Init against — exists yet.
func CapacityFor(requestedCapacity uint64) uint64 {
	capacity := nextPow2(requestedCapacity)
	if capacity == 0 {
		capacity = 1
	}
	return capacity
}

func nextPow2(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	p := uint64(1)
	for p < n {
		p <<= 1
	}
	return p
}
