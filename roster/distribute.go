package roster

import (
	"sort"

	"github.com/Dosada05/judo-pools/models"
)

// TargetPoolSize is the pool size automatic generation aims for.
const TargetPoolSize = 4

// Distribute computes an initial pool layout for a category: boys first then girls,
// each group cut by ascending weight into pools of about four. Fewer than three
// competitors, or exactly five, stay in a single pool so nobody ends up in a pool of two.
// The returned updates are numbered 1..k across both groups.
func Distribute(competitors []models.Competitor) []models.PoolUpdate {
	var males, females, others []models.Competitor
	for _, c := range competitors {
		switch c.Sex {
		case models.SexMale:
			males = append(males, c)
		case models.SexFemale:
			females = append(females, c)
		default:
			others = append(others, c)
		}
	}

	var updates []models.PoolUpdate
	next := 1
	for _, group := range [][]models.Competitor{males, females, others} {
		updates, next = distributeGroup(group, next, updates)
	}
	return updates
}

func distributeGroup(group []models.Competitor, start int, updates []models.PoolUpdate) ([]models.PoolUpdate, int) {
	n := len(group)
	if n == 0 {
		return updates, start
	}
	sorted := make([]models.Competitor, n)
	copy(sorted, group)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Weight != sorted[j].Weight {
			return sorted[i].Weight < sorted[j].Weight
		}
		return sorted[i].ID < sorted[j].ID
	})

	pools := PoolCount(n)
	base, extra := n/pools, n%pools
	idx := 0
	for i := 0; i < pools; i++ {
		size := base
		if i < extra {
			size++
		}
		for _, c := range sorted[idx : idx+size] {
			updates = append(updates, models.PoolUpdate{CompetitorID: c.ID, PoolNumber: start + i})
		}
		idx += size
	}
	return updates, start + pools
}

// PoolCount returns how many pools a group of n competitors is split into.
func PoolCount(n int) int {
	switch {
	case n <= 0:
		return 0
	case n < 3, n == 5:
		return 1
	}
	return (n + TargetPoolSize - 1) / TargetPoolSize
}
