// Package alloc provides append-only space management for the hts container
// file. Blocks are handed out at the end-of-file watermark and never reused;
// stale index copies left behind by rewrites are reclaimed only by a full
// rewrite of the file, which this layer does not attempt.
package alloc

import "fmt"

// Allocator hands out byte ranges in a container file.
type Allocator struct {
	// eof is the next allocation point.
	eof uint64
	// base is the lowest allocatable address, directly after the superblock.
	base uint64

	allocations []allocation
	stats       Stats
}

type allocation struct {
	addr uint64
	size uint64
}

// Stats contains allocation counters, surfaced for tests and diagnostics.
type Stats struct {
	TotalAllocations uint64
	TotalBytes       uint64
	LargestAlloc     uint64
}

// New creates an allocator whose first block starts at base.
func New(base uint64) *Allocator {
	return &Allocator{eof: base, base: base}
}

// Alloc reserves size bytes and returns the block address. A zero size
// returns the current watermark without reserving anything.
func (a *Allocator) Alloc(size uint64) uint64 {
	if size == 0 {
		return a.eof
	}

	addr := a.eof
	a.eof += size
	a.allocations = append(a.allocations, allocation{addr: addr, size: size})

	a.stats.TotalAllocations++
	a.stats.TotalBytes += size
	if size > a.stats.LargestAlloc {
		a.stats.LargestAlloc = size
	}
	return addr
}

// EOF returns the current end-of-file watermark.
func (a *Allocator) EOF() uint64 {
	return a.eof
}

// Base returns the lowest allocatable address.
func (a *Allocator) Base() uint64 {
	return a.base
}

// Stats returns a copy of the allocation counters.
func (a *Allocator) Stats() Stats {
	return a.stats
}

// Validate checks that all handed-out blocks are within bounds and disjoint.
func (a *Allocator) Validate() error {
	for _, al := range a.allocations {
		if al.addr < a.base {
			return fmt.Errorf("allocation at 0x%x is before base address 0x%x", al.addr, a.base)
		}
		if al.addr+al.size > a.eof {
			return fmt.Errorf("allocation at 0x%x size %d extends past EOF 0x%x", al.addr, al.size, a.eof)
		}
	}
	for i := 0; i < len(a.allocations); i++ {
		for j := i + 1; j < len(a.allocations); j++ {
			x, y := a.allocations[i], a.allocations[j]
			if x.addr < y.addr+y.size && y.addr < x.addr+x.size {
				return fmt.Errorf("overlapping allocations: [0x%x, size %d] and [0x%x, size %d]",
					x.addr, x.size, y.addr, y.size)
			}
		}
	}
	return nil
}
