package dnsresolve

import (
	"testing"
)

func TestOrder_PriorityGroupingIsStable(t *testing.T) {
	records := []SRV{
		{Target: "b", Priority: 10, Weight: 1},
		{Target: "a", Priority: 0, Weight: 1},
		{Target: "c", Priority: 10, Weight: 1},
	}
	ordered := Order(records)
	if ordered[0].Target != "a" {
		t.Fatalf("expected priority-0 record first, got %s", ordered[0].Target)
	}
	seen := map[string]bool{}
	for _, r := range ordered[1:] {
		seen[r.Target] = true
	}
	if !seen["b"] || !seen["c"] {
		t.Fatalf("expected b and c in the priority-10 band, got %+v", ordered)
	}
}

// TestOrder_WeightedShuffleConverges checks that, over many trials, a
// heavily-weighted record is picked first far more often than a
// lightly-weighted peer — the statistical signature of a true weighted
// draw, as opposed to a fixed sort-by-weight-descending that would always
// put it first.
func TestOrder_WeightedShuffleConverges(t *testing.T) {
	const trials = 2000
	heavyFirst := 0
	for i := 0; i < trials; i++ {
		records := []SRV{
			{Target: "heavy", Priority: 0, Weight: 90},
			{Target: "light", Priority: 0, Weight: 10},
		}
		ordered := Order(records)
		if ordered[0].Target == "heavy" {
			heavyFirst++
		}
	}
	ratio := float64(heavyFirst) / float64(trials)
	if ratio < 0.8 || ratio > 0.99 {
		t.Fatalf("expected heavy record first roughly 90%% of the time, got %.2f", ratio)
	}
}

func TestOrder_EveryRecordEmittedExactlyOnce(t *testing.T) {
	records := []SRV{
		{Target: "a", Priority: 0, Weight: 0},
		{Target: "b", Priority: 0, Weight: 0},
		{Target: "c", Priority: 0, Weight: 5},
	}
	ordered := Order(records)
	if len(ordered) != len(records) {
		t.Fatalf("expected %d records, got %d", len(records), len(ordered))
	}
	seen := map[string]int{}
	for _, r := range ordered {
		seen[r.Target]++
	}
	for _, name := range []string{"a", "b", "c"} {
		if seen[name] != 1 {
			t.Fatalf("expected %s exactly once, got %d", name, seen[name])
		}
	}
}
