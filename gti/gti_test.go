package gti

import (
	"math"
	"testing"
)

func TestNewValidation(t *testing.T) {
	if _, err := New([]Interval{{Start: 10, Stop: 5}}); err == nil {
		t.Fatal("expected error for stop <= start")
	}
	if _, err := New([]Interval{{Start: 5, Stop: 5}}); err == nil {
		t.Fatal("expected error for zero-length interval")
	}
}

func TestUnionMergesOverlaps(t *testing.T) {
	g, _ := New([]Interval{
		{Start: 100, Stop: 200},
		{Start: 150, Stop: 300},
		{Start: 400, Stop: 500},
		{Start: 300, Stop: 310},
	})
	u := g.Union()
	want := []Interval{{Start: 100, Stop: 310}, {Start: 400, Stop: 500}}
	got := u.Intervals()
	if len(got) != len(want) {
		t.Fatalf("intervals = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("interval %d = %v, want %v", i, got[i], want[i])
		}
	}
	if math.Abs(u.TimeSum()-310) > 1e-12 {
		t.Fatalf("TimeSum = %g, want 310", u.TimeSum())
	}
}

func TestStackThenUnion(t *testing.T) {
	a, _ := New([]Interval{{Start: 0, Stop: 100}})
	b, _ := New([]Interval{{Start: 50, Stop: 150}})
	a.Stack(b)
	u := a.Union()
	if u.Len() != 1 || u.TimeSum() != 150 {
		t.Fatalf("union = %v, sum %g", u.Intervals(), u.TimeSum())
	}
}

func TestUnionEmpty(t *testing.T) {
	if got := Empty().Union(); got.Len() != 0 || got.TimeSum() != 0 {
		t.Fatalf("empty union = %v", got.Intervals())
	}
}
