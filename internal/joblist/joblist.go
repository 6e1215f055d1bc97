// Package joblist implements the arena-backed containers the JOB segment
// header points at for anything that isn't a plain flat key/value pair:
// the session/job/node/app singly linked lists original_source's
// store_job_info and get_local_job_data_stats dispatch on by name (mirrored
// by job->smdata->jobinfo/nodeinfo/appinfo, each a pmix_list_t of
// arena-allocated records), and the process-data array, the one category
// whose element count the sizing estimator counts directly instead of as a
// flat 1.
package joblist

import (
	"unsafe"

	"github.com/iamNilotpal/shmgds/internal/arena"
)

// Record is one node of a session/job/node/app list: a key/value pair plus
// the address of the next record, or arena.AddrNull at the list's end.
// Lists grow by prepending, since the arena has no way to patch an earlier
// record's Next field once more entries arrive out of order relative to
// where they'll eventually sit — prepending only ever touches the new
// record itself.
type Record struct {
	Next      arena.Addr
	KeyAddr   arena.Addr
	KeyLen    uint32
	ValueAddr arena.Addr
	ValueLen  uint32
}

// RecordSize is the arena storage cost of one list node.
const RecordSize = unsafe.Sizeof(Record{})

// Entry is one key/value pair read back out of a list or array container.
type Entry struct {
	Key   string
	Value []byte
}

// Prepend copies key and value into fresh arena allocations, links a new
// Record in front of head, and returns the new head address.
func Prepend(a *arena.Arena, head arena.Addr, key string, value []byte) (arena.Addr, error) {
	keyAddr, err := a.Strdup(key)
	if err != nil {
		return arena.AddrNull, err
	}
	valAddr, err := a.Memdup(value)
	if err != nil {
		return arena.AddrNull, err
	}

	recAddr, err := a.Calloc(1, RecordSize)
	if err != nil {
		return arena.AddrNull, err
	}

	rec := (*Record)(a.At(recAddr))
	rec.Next = head
	rec.KeyAddr = keyAddr
	rec.KeyLen = uint32(len(key))
	rec.ValueAddr = valAddr
	rec.ValueLen = uint32(len(value))
	return recAddr, nil
}

// Walk returns every entry reachable from head, most-recently-prepended
// first.
func Walk(a *arena.Arena, head arena.Addr) []Entry {
	var out []Entry
	for addr := head; addr != arena.AddrNull; {
		rec := (*Record)(a.At(addr))
		out = append(out, Entry{
			Key:   string(a.Bytes(rec.KeyAddr, uintptr(rec.KeyLen))),
			Value: a.Bytes(rec.ValueAddr, uintptr(rec.ValueLen)),
		})
		addr = rec.Next
	}
	return out
}

// ArrayEntry is one slot of a process-data array: unlike Record it carries
// no Next pointer, since the array's element count is tracked separately in
// the header rather than via chaining.
type ArrayEntry struct {
	KeyAddr   arena.Addr
	KeyLen    uint32
	ValueAddr arena.Addr
	ValueLen  uint32
}

// ArrayEntrySize is the arena storage cost of one process-data array slot.
const ArrayEntrySize = unsafe.Sizeof(ArrayEntry{})

// BuildArray allocates a contiguous array of len(entries) slots and fills
// each with an arena copy of its key/value. An empty entries list allocates
// nothing and returns arena.AddrNull/0.
func BuildArray(a *arena.Arena, entries []Entry) (arena.Addr, uint64, error) {
	if len(entries) == 0 {
		return arena.AddrNull, 0, nil
	}

	base, err := a.Calloc(uintptr(len(entries)), ArrayEntrySize)
	if err != nil {
		return arena.AddrNull, 0, err
	}

	for i, e := range entries {
		keyAddr, err := a.Strdup(e.Key)
		if err != nil {
			return arena.AddrNull, 0, err
		}
		valAddr, err := a.Memdup(e.Value)
		if err != nil {
			return arena.AddrNull, 0, err
		}

		slot := (*ArrayEntry)(a.At(arena.Addr(uintptr(base) + uintptr(i)*ArrayEntrySize)))
		slot.KeyAddr = keyAddr
		slot.KeyLen = uint32(len(e.Key))
		slot.ValueAddr = valAddr
		slot.ValueLen = uint32(len(e.Value))
	}

	return base, uint64(len(entries)), nil
}

// ReadArray returns the n entries stored at base, as built by BuildArray.
func ReadArray(a *arena.Arena, base arena.Addr, n uint64) []Entry {
	if n == 0 {
		return nil
	}

	out := make([]Entry, 0, n)
	for i := uint64(0); i < n; i++ {
		slot := (*ArrayEntry)(a.At(arena.Addr(uintptr(base) + uintptr(i)*ArrayEntrySize)))
		out = append(out, Entry{
			Key:   string(a.Bytes(slot.KeyAddr, uintptr(slot.KeyLen))),
			Value: a.Bytes(slot.ValueAddr, uintptr(slot.ValueLen)),
		})
	}
	return out
}
