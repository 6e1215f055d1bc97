//go:build linux

// Package vmem finds a free virtual-memory hole large enough to host a
// shared-memory segment. The creator of a segment needs an address nobody
// else in the process has mapped yet so that a subsequent fixed-address
// mmap is guaranteed to land exactly there; the only portable way to learn
// that on Linux is to parse this process's own /proc/self/maps.
package vmem

import (
	"bufio"
	"os"
	"sort"
	"strconv"
	"strings"

	shmerrors "github.com/iamNilotpal/shmgds/pkg/errors"
)

// mapping is one parsed line of /proc/self/maps: a half-open [start, end) range.
type mapping struct {
	start uintptr
	end   uintptr
}

// FindHole returns the start address of the largest unmapped gap between
// two existing mappings in this process that is at least minSize bytes.
// Gaps before the first mapping or after the last are deliberately never
// considered: guessing into unbounded territory risks colliding with a
// future allocation this process makes before the segment is attached.
func FindHole(minSize uintptr) (uintptr, error) {
	mappings, err := readMaps("/proc/self/maps")
	if err != nil {
		return 0, shmerrors.NewResourceExhaustionError(err, "failed to read process memory map").
			WithResource("virtual_memory")
	}

	best, bestSize, found := findLargestGap(mappings)
	if !found || bestSize < minSize {
		return 0, shmerrors.NewResourceExhaustionError(nil, "no virtual memory hole large enough for segment").
			WithResource("virtual_memory_hole").
			WithRequestedSize(uint64(minSize))
	}

	return best, nil
}

func findLargestGap(mappings []mapping) (start uintptr, size uintptr, found bool) {
	if len(mappings) < 2 {
		return 0, 0, false
	}

	sort.Slice(mappings, func(i, j int) bool { return mappings[i].start < mappings[j].start })

	var bestStart, bestSize uintptr
	for i := 1; i < len(mappings); i++ {
		prevEnd := mappings[i-1].end
		curStart := mappings[i].start
		if curStart <= prevEnd {
			continue
		}
		gap := curStart - prevEnd
		if gap > bestSize {
			bestSize = gap
			bestStart = prevEnd
		}
	}

	if bestSize == 0 {
		return 0, 0, false
	}
	return bestStart, bestSize, true
}

func readMaps(path string) ([]mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []mapping
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		rangeField, _, ok := strings.Cut(line, " ")
		if !ok {
			continue
		}
		startStr, endStr, ok := strings.Cut(rangeField, "-")
		if !ok {
			continue
		}

		start, err := strconv.ParseUint(startStr, 16, 64)
		if err != nil {
			continue
		}
		end, err := strconv.ParseUint(endStr, 16, 64)
		if err != nil {
			continue
		}

		out = append(out, mapping{start: uintptr(start), end: uintptr(end)})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
