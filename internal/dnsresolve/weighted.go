package dnsresolve

import (
	"math/rand"
	"sort"
)

// Order implements the RFC 2782 SRV ordering: stable sort ascending by
// priority, then within each priority band a weighted shuffle — records
// are drawn one at a time, each remaining record picked with probability
// weight / sum_of_remaining_weights. This supersedes a plain sort-by-weight,
// which only produces the right *grouping*, not the required randomized
// draw order.
func Order(records []SRV) []SRV {
	if len(records) <= 1 {
		out := make([]SRV, len(records))
		copy(out, records)
		return out
	}

	sorted := make([]SRV, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority < sorted[j].Priority })

	out := make([]SRV, 0, len(sorted))
	start := 0
	for start < len(sorted) {
		end := start + 1
		for end < len(sorted) && sorted[end].Priority == sorted[start].Priority {
			end++
		}
		out = append(out, weightedShuffleBand(sorted[start:end])...)
		start = end
	}
	return out
}

func weightedShuffleBand(band []SRV) []SRV {
	remaining := make([]SRV, len(band))
	copy(remaining, band)
	out := make([]SRV, 0, len(band))

	for len(remaining) > 1 {
		total := 0
		for _, r := range remaining {
			total += int(r.Weight)
		}
		var idx int
		if total == 0 {
			idx = rand.Intn(len(remaining))
		} else {
			pick := rand.Intn(total)
			cum := 0
			for i, r := range remaining {
				cum += int(r.Weight)
				if pick < cum {
					idx = i
					break
				}
			}
		}
		out = append(out, remaining[idx])
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
	if len(remaining) == 1 {
		out = append(out, remaining[0])
	}
	return out
}
