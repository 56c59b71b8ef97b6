package tables

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/judo-pools/brackets"
	"github.com/Dosada05/judo-pools/models"
)

func key(cat, pool int) models.PoolKey {
	return models.PoolKey{CategoryID: cat, PoolNumber: pool}
}

func TestBalanceLargestFirstOnEmptyTables(t *testing.T) {
	pools := []Pool{
		{Key: key(1, 2), Workload: 3, Status: brackets.StatusNotStarted},
		{Key: key(1, 1), Workload: 6, Status: brackets.StatusNotStarted},
	}

	plan, err := Balance(2, pools, LargestFirst{})
	require.NoError(t, err)

	want := []Assignment{
		{Key: key(1, 1), Table: 1, Order: 0},
		{Key: key(1, 2), Table: 2, Order: 0},
	}
	if diff := cmp.Diff(want, plan.Assignments); diff != "" {
		t.Errorf("assignments mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []int{6, 3}, plan.Loads)
	assert.Equal(t, 6, plan.MaxLoad())
}

func TestBalanceKeepsPinnedPools(t *testing.T) {
	pools := []Pool{
		{Key: key(1, 1), Workload: 10, Status: brackets.StatusInProgress, Table: 1, Order: 0},
		{Key: key(1, 2), Workload: 6, Status: brackets.StatusFinished, Table: 1, Order: 1},
		{Key: key(2, 1), Workload: 3, Status: brackets.StatusValidated, Table: Backlog},
		{Key: key(2, 2), Workload: 1, Status: brackets.StatusInProgress, Table: 7},
		{Key: key(3, 1), Workload: 6, Status: brackets.StatusNotStarted, Table: 1, Order: 2},
		{Key: key(3, 2), Workload: 3, Status: brackets.StatusNotStarted},
		{Key: key(3, 3), Workload: 3, Status: brackets.StatusNotStarted, Table: 3},
	}

	plan, err := Balance(3, pools, nil)
	require.NoError(t, err)

	want := []Assignment{
		{Key: key(2, 1), Table: Backlog, Order: 0},
		{Key: key(1, 1), Table: 1, Order: 0},
		{Key: key(1, 2), Table: 1, Order: 1},
		{Key: key(2, 2), Table: 7, Order: 0},
		{Key: key(3, 1), Table: 2, Order: 0},
		{Key: key(3, 2), Table: 3, Order: 0},
		{Key: key(3, 3), Table: 3, Order: 1},
	}
	if diff := cmp.Diff(want, plan.Assignments); diff != "" {
		t.Errorf("assignments mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []int{16, 6, 6}, plan.Loads)

	changed := plan.Changed(pools)
	assert.ElementsMatch(t, []Assignment{
		{Key: key(3, 1), Table: 2, Order: 0},
		{Key: key(3, 2), Table: 3, Order: 0},
		{Key: key(3, 3), Table: 3, Order: 1},
	}, changed)
}

func TestBalanceHeldPoolsKeepTheirSlot(t *testing.T) {
	pools := []Pool{
		{Key: key(2, 1), Workload: 6, Status: brackets.StatusNotStarted, Table: 1, Order: 0, Held: true},
		{Key: key(1, 1), Workload: 3, Status: brackets.StatusNotStarted},
	}

	plan, err := Balance(1, pools, nil)
	require.NoError(t, err)

	want := []Assignment{
		{Key: key(2, 1), Table: 1, Order: 0},
		{Key: key(1, 1), Table: 1, Order: 1},
	}
	if diff := cmp.Diff(want, plan.Assignments); diff != "" {
		t.Errorf("assignments mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []int{9}, plan.Loads)
	assert.Equal(t, []Assignment{{Key: key(1, 1), Table: 1, Order: 1}}, plan.Changed(pools))
}

func TestBalanceRequiresTables(t *testing.T) {
	_, err := Balance(0, nil, nil)
	assert.ErrorIs(t, err, ErrNoTables)
}

type dropStrategy struct{}

func (dropStrategy) Place([]int, []Pool) []Placement { return nil }

type offTableStrategy struct{}

func (offTableStrategy) Place(_ []int, movable []Pool) []Placement {
	out := make([]Placement, 0, len(movable))
	for _, p := range movable {
		out = append(out, Placement{Pool: p, Table: 9})
	}
	return out
}

func TestBalanceRejectsInvalidStrategy(t *testing.T) {
	pools := []Pool{{Key: key(1, 1), Workload: 1, Status: brackets.StatusNotStarted}}

	_, err := Balance(2, pools, dropStrategy{})
	assert.ErrorIs(t, err, ErrInvalidPlacement)

	_, err = Balance(2, pools, offTableStrategy{})
	assert.ErrorIs(t, err, ErrInvalidPlacement)
}

func TestBalanceProperties(t *testing.T) {
	faker := gofakeit.New(7)
	statuses := []brackets.Status{
		brackets.StatusNotStarted,
		brackets.StatusInProgress,
		brackets.StatusFinished,
		brackets.StatusValidated,
	}

	for round := 0; round < 200; round++ {
		tableCount := faker.IntRange(1, 6)
		poolCount := faker.IntRange(0, 20)
		pools := make([]Pool, 0, poolCount)
		for i := 0; i < poolCount; i++ {
			pools = append(pools, Pool{
				Key:      key(faker.IntRange(1, 4), i+1),
				Workload: brackets.BoutCount(faker.IntRange(1, 6)),
				Status:   statuses[faker.IntRange(0, len(statuses)-1)],
				Table:    faker.IntRange(0, tableCount+1),
				Order:    faker.IntRange(0, 5),
			})
		}

		plan, err := Balance(tableCount, pools, LargestFirst{})
		require.NoError(t, err)
		require.Len(t, plan.Assignments, len(pools))

		byKey := make(map[models.PoolKey]Assignment, len(plan.Assignments))
		for _, a := range plan.Assignments {
			byKey[a.Key] = a
		}

		var pinned []Pool
		movableLoad := 0
		for _, p := range pools {
			a, ok := byKey[p.Key]
			require.True(t, ok, "round %d: pool %v missing", round, p.Key)
			if p.Pinned() {
				assert.Equal(t, p.Table, a.Table, "round %d: pinned pool %v moved", round, p.Key)
				pinned = append(pinned, p)
				continue
			}
			assert.GreaterOrEqual(t, a.Table, 1)
			assert.LessOrEqual(t, a.Table, tableCount)
			movableLoad += p.Workload
		}

		base := Loads(tableCount, pinned)
		least, heaviest := base[0], 0
		for _, l := range base {
			if l < least {
				least = l
			}
			if l > heaviest {
				heaviest = l
			}
		}
		bound := least + movableLoad
		if heaviest > bound {
			bound = heaviest
		}
		assert.LessOrEqual(t, plan.MaxLoad(), bound, "round %d", round)

		// orders on each table are 0..k-1 without gaps
		seen := make(map[int][]int)
		for _, a := range plan.Assignments {
			seen[a.Table] = append(seen[a.Table], a.Order)
		}
		for table, orders := range seen {
			for i, o := range orders {
				assert.Equal(t, i, o, "round %d: table %d", round, table)
			}
		}
	}
}
