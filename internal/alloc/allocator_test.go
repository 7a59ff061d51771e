package alloc

import "testing"

func TestAllocSequential(t *testing.T) {
	a := New(100)

	addr1 := a.Alloc(50)
	if addr1 != 100 {
		t.Errorf("first alloc: got %d, want 100", addr1)
	}
	addr2 := a.Alloc(30)
	if addr2 != 150 {
		t.Errorf("second alloc: got %d, want 150", addr2)
	}
	if a.EOF() != 180 {
		t.Errorf("EOF: got %d, want 180", a.EOF())
	}
}

func TestAllocZeroSize(t *testing.T) {
	a := New(10)
	before := a.EOF()
	addr := a.Alloc(0)
	if addr != before {
		t.Errorf("zero alloc moved address: got %d, want %d", addr, before)
	}
	if a.EOF() != before {
		t.Errorf("zero alloc moved EOF: got %d, want %d", a.EOF(), before)
	}
	if s := a.Stats(); s.TotalAllocations != 0 {
		t.Errorf("zero alloc counted: %+v", s)
	}
}

func TestStats(t *testing.T) {
	a := New(0)
	a.Alloc(10)
	a.Alloc(100)
	a.Alloc(5)

	s := a.Stats()
	if s.TotalAllocations != 3 {
		t.Errorf("TotalAllocations: got %d, want 3", s.TotalAllocations)
	}
	if s.TotalBytes != 115 {
		t.Errorf("TotalBytes: got %d, want 115", s.TotalBytes)
	}
	if s.LargestAlloc != 100 {
		t.Errorf("LargestAlloc: got %d, want 100", s.LargestAlloc)
	}
}

func TestValidate(t *testing.T) {
	a := New(38)
	for i := 0; i < 20; i++ {
		a.Alloc(uint64(i*7 + 1))
	}
	if err := a.Validate(); err != nil {
		t.Errorf("Validate failed on disjoint allocations: %v", err)
	}
}
