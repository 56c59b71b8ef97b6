package tables

import "sort"

// LargestFirst is the greedy makespan heuristic: pools by descending workload, each
// onto the least loaded table, lowest table number on ties.
type LargestFirst struct{}

func (LargestFirst) Place(loads []int, movable []Pool) []Placement {
	running := make([]int, len(loads))
	copy(running, loads)

	sorted := make([]Pool, len(movable))
	copy(sorted, movable)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Workload != sorted[j].Workload {
			return sorted[i].Workload > sorted[j].Workload
		}
		return keyLess(sorted[i].Key, sorted[j].Key)
	})

	placements := make([]Placement, 0, len(sorted))
	for _, p := range sorted {
		best := 0
		for t := 1; t < len(running); t++ {
			if running[t] < running[best] {
				best = t
			}
		}
		running[best] += p.Workload
		placements = append(placements, Placement{Pool: p, Table: best + 1})
	}
	return placements
}
