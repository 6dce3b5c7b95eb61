package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextOddPrime(t *testing.T) {
	cases := []struct{ in, want uint64 }{
		{1, 3}, {2, 3}, {3, 3}, {4, 5}, {8, 11}, {100, 101}, {101, 101},
	}
	for _, c := range cases {
		if got := nextOddPrime(c.in); got != c.want {
			t.Errorf("nextOddPrime(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestBitStorageInsertQuery(t *testing.T) {
	s := NewBitStorage(3, 1009)
	if s.Query(42) != 0 {
		t.Fatal("expected 0 before insert")
	}
	if !s.Insert(42) {
		t.Fatal("expected first insert to report new")
	}
	if s.Insert(42) {
		t.Fatal("expected second insert to report not-new")
	}
	if s.Query(42) != 1 {
		t.Fatal("expected query to report present after insert")
	}
	if s.NUniqueKmers() != 1 {
		t.Fatalf("NUniqueKmers() = %d, want 1", s.NUniqueKmers())
	}
	if s.NOccupied() == 0 {
		t.Fatal("expected at least one bit set")
	}
	s.Reset()
	if s.Query(42) != 0 || s.NUniqueKmers() != 0 {
		t.Fatal("expected Reset to clear state")
	}
}

func TestBitStorageRawTablesRoundTrip(t *testing.T) {
	s := NewBitStorage(2, 101)
	for _, h := range []uint64{1, 2, 3, 1000, 99999} {
		s.Insert(h)
	}
	tables := s.RawTables()

	s2 := NewBitStorage(2, 101)
	if err := s2.LoadRawTables(tables); err != nil {
		t.Fatal(err)
	}
	for _, h := range []uint64{1, 2, 3, 1000, 99999} {
		if s2.Query(h) != 1 {
			t.Fatalf("Query(%d) = 0 after round trip, want 1", h)
		}
	}
}

func TestByteStorageCountMin(t *testing.T) {
	s := NewByteStorage(3, 1009)
	for i := 0; i < 5; i++ {
		got := s.InsertAndQuery(7)
		if got != uint64(i+1) {
			t.Fatalf("insert #%d: count = %d, want %d", i, got, i+1)
		}
	}
	if s.Query(7) != 5 {
		t.Fatalf("Query(7) = %d, want 5", s.Query(7))
	}
	if s.NUniqueKmers() != 1 {
		t.Fatalf("NUniqueKmers() = %d, want 1", s.NUniqueKmers())
	}
}

func TestByteStorageOverflow(t *testing.T) {
	s := NewByteStorage(1, 101)
	var last uint64
	for i := 0; i < byteSaturate+10; i++ {
		last = s.InsertAndQuery(3)
	}
	if last != byteSaturate+10 {
		t.Fatalf("count after overflow = %d, want %d", last, byteSaturate+10)
	}
	if s.Query(3) != last {
		t.Fatalf("Query after overflow = %d, want %d", s.Query(3), last)
	}
}

func TestNibbleStorageCountMin(t *testing.T) {
	s := NewNibbleStorage(2, 101)
	for i := 0; i < 3; i++ {
		got := s.InsertAndQuery(9)
		if got != uint64(i+1) {
			t.Fatalf("insert #%d: count = %d, want %d", i, got, i+1)
		}
	}
	if s.Query(10) != 0 {
		t.Fatal("expected untouched hash to read 0")
	}
}

func TestNibbleStorageOverflow(t *testing.T) {
	s := NewNibbleStorage(1, 101)
	var last uint64
	for i := 0; i < nibbleSaturate+5; i++ {
		last = s.InsertAndQuery(3)
	}
	if last != nibbleSaturate+5 {
		t.Fatalf("count after overflow = %d, want %d", last, nibbleSaturate+5)
	}
}

func TestNibblePacking(t *testing.T) {
	tbl := make([]byte, 4)
	setNibble(tbl, 0, 5)
	setNibble(tbl, 1, 9)
	setNibble(tbl, 2, 15)
	if getNibble(tbl, 0) != 5 || getNibble(tbl, 1) != 9 || getNibble(tbl, 2) != 15 {
		t.Fatalf("nibble round trip mismatch: %v", tbl)
	}
}

func TestQFStorageInsertQuery(t *testing.T) {
	s := NewQFStorage(8) // 256 slots
	for i := 0; i < 3; i++ {
		s.InsertAndQuery(123)
	}
	if got := s.Query(123); got != 3 {
		t.Fatalf("Query(123) = %d, want 3", got)
	}
	if s.Query(456) != 0 {
		t.Fatal("expected untouched hash to read 0")
	}
	if s.NUniqueKmers() != 1 {
		t.Fatalf("NUniqueKmers() = %d, want 1", s.NUniqueKmers())
	}
}

func TestQFStorageCollisionProbing(t *testing.T) {
	s := NewQFStorage(4) // 16 slots; force several hashes into the same quotient
	base := uint64(0x0100)
	hashes := []uint64{base | 0x00, base | 0x10, base | 0x20, base | 0x30}
	for _, h := range hashes {
		s.Insert(h)
	}
	for _, h := range hashes {
		if s.Query(h) != 1 {
			t.Fatalf("Query(%#x) = %d, want 1", h, s.Query(h))
		}
	}
}

func TestHashSetStorageExact(t *testing.T) {
	s := NewHashSetStorage(4)
	for i := 0; i < 200; i++ {
		if !s.Insert(uint64(i+1) * 2654435761) {
			t.Fatalf("expected insert #%d to be new", i)
		}
	}
	if s.NUniqueKmers() != 200 {
		t.Fatalf("NUniqueKmers() = %d, want 200", s.NUniqueKmers())
	}
	for i := 0; i < 200; i++ {
		h := uint64(i+1) * 2654435761
		if s.Query(h) != 1 {
			t.Fatalf("Query(%d) = 0, want 1", h)
		}
		if s.Insert(h) {
			t.Fatalf("re-insert of %d reported new", h)
		}
	}
	if s.Query(99999999) != 0 {
		t.Fatal("expected absent hash to read 0")
	}
}

func TestHashSetStorageHashesRoundTrip(t *testing.T) {
	s := NewHashSetStorage(4)
	want := []uint64{1, 2, 3, 12345, 999999999}
	for _, h := range want {
		s.Insert(h)
	}
	hashes := s.AllHashes()

	s2 := NewHashSetStorage(4)
	s2.LoadHashes(hashes)
	for _, h := range want {
		if s2.Query(h) != 1 {
			t.Fatalf("Query(%d) = 0 after round trip, want 1", h)
		}
	}
	if s2.NUniqueKmers() != uint64(len(want)) {
		t.Fatalf("NUniqueKmers() = %d, want %d", s2.NUniqueKmers(), len(want))
	}
}

type fakeStorage struct {
	inserted map[uint64]bool
}

func newFakeStorage() *fakeStorage { return &fakeStorage{inserted: map[uint64]bool{}} }

func (f *fakeStorage) Insert(h uint64) bool {
	if f.inserted[h] {
		return false
	}
	f.inserted[h] = true
	return true
}
func (f *fakeStorage) InsertAndQuery(h uint64) uint64 { f.Insert(h); return 1 }
func (f *fakeStorage) Query(h uint64) uint64 {
	if f.inserted[h] {
		return 1
	}
	return 0
}
func (f *fakeStorage) NUniqueKmers() uint64 { return uint64(len(f.inserted)) }
func (f *fakeStorage) NOccupied() uint64    { return uint64(len(f.inserted)) }
func (f *fakeStorage) Reset()               { f.inserted = map[uint64]bool{} }

func TestPartitionedStorageDispatch(t *testing.T) {
	p := NewPartitionedStorage[*fakeStorage]([]*fakeStorage{newFakeStorage(), newFakeStorage()})
	require.True(t, p.Insert(0, 1))
	require.True(t, p.Insert(1, 2))
	require.Panics(t, func() { p.Insert(2, 3) }, "out-of-range partition should panic")
	require.Equal(t, uint64(1), p.Query(0, 1))
	require.Equal(t, uint64(0), p.Query(1, 1))
	require.Equal(t, uint64(2), p.NUniqueKmers())
	p.Reset()
	require.Equal(t, uint64(0), p.NUniqueKmers())
}
