package envcontext

import "testing"

// TestRoundRobin ensures round-robin selection cycles through context
// ids in sorted order regardless of the order they were given in
func TestRoundRobin(t *testing.T) {
	selector := NewRoundRobin([]string{"c", "a", "b"})

	expected := []string{"a", "b", "c", "a", "b", "c", "a"}
	for i, id := range expected {
		if selected := selector.Select(); selected != id {
			t.Errorf("wrong context selected on episode %v \n\twant(%v) "+
				"\n\thave(%v)", i, id, selected)
		}
	}
}

// TestRandom ensures random selection only ever returns known ids and
// eventually selects each of them
func TestRandom(t *testing.T) {
	ids := []string{"a", "b", "c"}
	selector := NewRandom(ids, 42)

	counts := make(map[string]int)
	for i := 0; i < 1000; i++ {
		counts[selector.Select()]++
	}

	for _, id := range ids {
		if counts[id] == 0 {
			t.Errorf("context %v was never selected", id)
		}
	}

	total := 0
	for id, count := range counts {
		legal := false
		for _, known := range ids {
			if id == known {
				legal = true
			}
		}
		if !legal {
			t.Errorf("unknown context %v selected", id)
		}
		total += count
	}
	if total != 1000 {
		t.Errorf("wrong number of selections \n\twant(1000) \n\thave(%v)",
			total)
	}
}

// TestRandomSeeded ensures two selectors with equal seeds select
// identical sequences
func TestRandomSeeded(t *testing.T) {
	ids := []string{"a", "b", "c", "d"}
	first := NewRandom(ids, 13)
	second := NewRandom(ids, 13)

	for i := 0; i < 100; i++ {
		if a, b := first.Select(), second.Select(); a != b {
			t.Fatalf("selectors with equal seeds diverged at episode %v: "+
				"%v != %v", i, a, b)
		}
	}
}
