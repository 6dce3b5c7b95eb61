package shard

import "testing"

func TestMapLoadStore(t *testing.T) {
	m := New[int](16)
	if _, ok := m.Load(1); ok {
		t.Fatal("expected miss on empty map")
	}
	m.Store(1, 100)
	v, ok := m.Load(1)
	if !ok || v != 100 {
		t.Fatalf("Load(1) = (%d, %v), want (100, true)", v, ok)
	}
	m.Delete(1)
	if _, ok := m.Load(1); ok {
		t.Fatal("expected miss after delete")
	}
}

func TestMapUpdate(t *testing.T) {
	m := New[int](16)
	for i := 0; i < 5; i++ {
		m.Update(7, func(v int, ok bool) int { return v + 1 })
	}
	v, ok := m.Load(7)
	if !ok || v != 5 {
		t.Fatalf("Load(7) = (%d, %v), want (5, true)", v, ok)
	}
}

func TestMapLen(t *testing.T) {
	m := New[int](16)
	for i := 0; i < 50; i++ {
		m.Store(uint64(i), i)
	}
	if m.Len() != 50 {
		t.Fatalf("Len() = %d, want 50", m.Len())
	}
}

func TestLockPoolDistinctKeysDontDeadlock(t *testing.T) {
	p := NewLockPool(4)
	p.Lock(1)
	p.Unlock(1)
	p.Lock(2)
	p.Unlock(2)
}

func TestNextPow2(t *testing.T) {
	cases := []struct{ in, want int }{{0, 1}, {1, 1}, {2, 2}, {3, 4}, {5, 8}, {1024, 1024}, {1025, 2048}}
	for _, c := range cases {
		if got := nextPow2(c.in); got != c.want {
			t.Errorf("nextPow2(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}
