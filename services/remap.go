package services

import (
	"fmt"
	"sort"

	"github.com/Dosada05/judo-pools/models"
)

// remapAssignments carries table placements across a renumbering. Each new pool
// inherits the assignment of the old pool that contributed most of its members
// (lowest old number on ties); every old assignment is used at most once. A validated
// pool must come out of the commit with exactly the same members.
func remapAssignments(categoryID int, before map[int]int, updates []models.PoolUpdate, existing []models.PoolAssignment) ([]models.PoolAssignment, error) {
	oldMembers := make(map[int]map[int]bool)
	for competitorID, pool := range before {
		if pool <= 0 {
			continue
		}
		if oldMembers[pool] == nil {
			oldMembers[pool] = make(map[int]bool)
		}
		oldMembers[pool][competitorID] = true
	}
	newMembers := make(map[int]map[int]bool)
	for _, u := range updates {
		if newMembers[u.PoolNumber] == nil {
			newMembers[u.PoolNumber] = make(map[int]bool)
		}
		newMembers[u.PoolNumber][u.CompetitorID] = true
	}

	byOldPool := make(map[int]models.PoolAssignment)
	for _, a := range existing {
		if a.CategoryID == categoryID {
			byOldPool[a.PoolNumber] = a
		}
	}

	for old, a := range byOldPool {
		if !a.Validated || len(oldMembers[old]) == 0 {
			continue
		}
		if !sameMembersSomewhere(oldMembers[old], newMembers) {
			return nil, fmt.Errorf("%w: pool %d cannot change its members", ErrPoolValidated, old)
		}
	}

	numbers := make([]int, 0, len(newMembers))
	for n := range newMembers {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	used := make(map[int]bool)
	var out []models.PoolAssignment
	for _, n := range numbers {
		counts := make(map[int]int)
		for id := range newMembers[n] {
			if old := before[id]; old > 0 {
				counts[old]++
			}
		}
		best, bestCount := 0, 0
		for old, c := range counts {
			if used[old] {
				continue
			}
			if c > bestCount || (c == bestCount && old < best) {
				best, bestCount = old, c
			}
		}
		if bestCount == 0 {
			continue
		}
		used[best] = true
		a, ok := byOldPool[best]
		if !ok {
			continue
		}
		out = append(out, models.PoolAssignment{
			CategoryID:  categoryID,
			PoolNumber:  n,
			TableNumber: a.TableNumber,
			Order:       a.Order,
			Validated:   a.Validated && equalSets(oldMembers[best], newMembers[n]),
		})
	}
	return out, nil
}

func sameMembersSomewhere(members map[int]bool, pools map[int]map[int]bool) bool {
	for _, candidate := range pools {
		if equalSets(members, candidate) {
			return true
		}
	}
	return false
}

func equalSets(a, b map[int]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}
