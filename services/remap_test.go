package services

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/judo-pools/models"
)

func updates(pools map[int][]int) []models.PoolUpdate {
	var out []models.PoolUpdate
	for pool, ids := range pools {
		for _, id := range ids {
			out = append(out, models.PoolUpdate{CompetitorID: id, PoolNumber: pool})
		}
	}
	return out
}

func TestRemapFollowsMajority(t *testing.T) {
	before := map[int]int{1: 1, 2: 1, 3: 1, 4: 2, 5: 2}
	existing := []models.PoolAssignment{
		{CategoryID: 7, PoolNumber: 1, TableNumber: 3, Order: 1},
		{CategoryID: 7, PoolNumber: 2, TableNumber: 1, Order: 0},
		{CategoryID: 8, PoolNumber: 1, TableNumber: 2},
	}
	// old pool 1 lost competitor 3 to the second pool
	got, err := remapAssignments(7, before, updates(map[int][]int{1: {1, 2}, 2: {3, 4, 5}}), existing)
	require.NoError(t, err)

	want := []models.PoolAssignment{
		{CategoryID: 7, PoolNumber: 1, TableNumber: 3, Order: 1},
		{CategoryID: 7, PoolNumber: 2, TableNumber: 1, Order: 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("remap mismatch (-want +got):\n%s", diff)
	}
}

func TestRemapUsesEachAssignmentOnce(t *testing.T) {
	before := map[int]int{1: 1, 2: 1, 3: 1, 4: 1}
	existing := []models.PoolAssignment{{CategoryID: 7, PoolNumber: 1, TableNumber: 2}}

	got, err := remapAssignments(7, before, updates(map[int][]int{1: {1, 2}, 2: {3, 4}}), existing)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].PoolNumber)
	assert.Equal(t, 2, got[0].TableNumber)
}

func TestRemapTieGoesToLowestOldPool(t *testing.T) {
	before := map[int]int{1: 1, 2: 2}
	existing := []models.PoolAssignment{
		{CategoryID: 7, PoolNumber: 1, TableNumber: 1},
		{CategoryID: 7, PoolNumber: 2, TableNumber: 2},
	}
	got, err := remapAssignments(7, before, updates(map[int][]int{1: {1, 2}}), existing)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].TableNumber)
}

func TestRemapValidatedPools(t *testing.T) {
	before := map[int]int{1: 1, 2: 1, 3: 2, 4: 2}
	existing := []models.PoolAssignment{
		{CategoryID: 7, PoolNumber: 1, TableNumber: 1, Validated: true},
		{CategoryID: 7, PoolNumber: 2, TableNumber: 2},
	}

	// the validated pool moves to number 2 with the same members
	got, err := remapAssignments(7, before, updates(map[int][]int{1: {3, 4}, 2: {1, 2}}), existing)
	require.NoError(t, err)
	want := []models.PoolAssignment{
		{CategoryID: 7, PoolNumber: 1, TableNumber: 2},
		{CategoryID: 7, PoolNumber: 2, TableNumber: 1, Validated: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("remap mismatch (-want +got):\n%s", diff)
	}

	_, err = remapAssignments(7, before, updates(map[int][]int{1: {1}, 2: {2, 3, 4}}), existing)
	assert.ErrorIs(t, err, ErrPoolValidated)
}
