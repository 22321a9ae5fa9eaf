package engine

import (
	"reflect"
	"testing"
)

func TestBacklogStartsFull(t *testing.T) {
	b := NewBacklog(1)
	if b.Len() != backlogSize {
		t.Errorf("new backlog length = %d, want %d", b.Len(), backlogSize)
	}
}

func TestBacklogSameSeedSameSequence(t *testing.T) {
	a := NewBacklog(42)
	b := NewBacklog(42)

	for i := 0; i < 25; i++ {
		va, vb := a.Next(), b.Next()
		if !reflect.DeepEqual(va, vb) {
			t.Fatalf("draw %d differs: %v vs %v", i, va, vb)
		}
	}
}

func TestBacklogRefillsWhenDrained(t *testing.T) {
	b := NewBacklog(7)

	for i := 0; i < backlogSize-1; i++ {
		b.Next()
	}
	if b.Len() != 1 {
		t.Fatalf("backlog length = %d after %d draws, want 1", b.Len(), backlogSize-1)
	}

	// Draining the last entry refills the queue in the same call.
	b.Next()
	if b.Len() != backlogSize {
		t.Errorf("backlog length = %d after drain, want %d", b.Len(), backlogSize)
	}
}

func TestBacklogTargetsArePopulated(t *testing.T) {
	b := NewBacklog(3)

	sawTarget := false
	for i := 0; i < 50; i++ {
		v := b.Next()
		switch v.Kind {
		case RockPapiuroScissor:
			if v.Target != nil {
				t.Errorf("choice variant carries a target: %v", v.Target)
			}
		case TheRightIuro:
			sawTarget = true
			if len(v.Target) != targetLen {
				t.Errorf("target length = %d, want %d", len(v.Target), targetLen)
			}
		}
	}
	if !sawTarget {
		t.Error("no TheRightIuro variant drawn in 50 draws")
	}
}

func TestFixedBacklogReplaysInOrder(t *testing.T) {
	want := []Variant{
		{Kind: RockPapiuroScissor},
		{Kind: TheRightIuro, Target: []byte{1, 2, 3, 4}},
		{Kind: RockPapiuroScissor},
	}
	b := NewFixedBacklog(want...)

	for i, w := range want {
		if got := b.Next(); !reflect.DeepEqual(got, w) {
			t.Errorf("draw %d = %v, want %v", i, got, w)
		}
	}

	// Past the fixed entries it keeps producing variants.
	if b.Len() == 0 {
		t.Error("fixed backlog did not refill after replaying its entries")
	}
}
