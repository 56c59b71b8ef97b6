package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/judo-pools/brackets"
	"github.com/Dosada05/judo-pools/models"
	"github.com/Dosada05/judo-pools/tables"
)

func intPtr(v int) *int { return &v }

// two categories: category 1 has a pool of four with one bout and a pool of two,
// category 2 has a pool of three and is inactive.
func sampleData() Data {
	return Data{
		Categories: []models.Category{
			{ID: 1, Name: "Minimes"},
			{ID: 2, Name: "Benjamins"},
		},
		Competitors: []models.Competitor{
			{ID: 10, CategoryID: 1, Weight: 40, PoolNumber: intPtr(1)},
			{ID: 11, CategoryID: 1, Weight: 30, PoolNumber: intPtr(1)},
			{ID: 12, CategoryID: 1, Weight: 35, PoolNumber: intPtr(1)},
			{ID: 13, CategoryID: 1, Weight: 32, PoolNumber: intPtr(1)},
			{ID: 14, CategoryID: 1, Weight: 50, PoolNumber: intPtr(2)},
			{ID: 15, CategoryID: 1, Weight: 52, PoolNumber: intPtr(2)},
			{ID: 16, CategoryID: 1, Weight: 60},
			{ID: 20, CategoryID: 2, Weight: 25, PoolNumber: intPtr(1)},
			{ID: 21, CategoryID: 2, Weight: 26, PoolNumber: intPtr(1)},
			{ID: 22, CategoryID: 2, Weight: 27, PoolNumber: intPtr(1)},
		},
		Bouts: []models.Bout{
			{ID: 1, CategoryID: 1, Fighter1ID: 11, Fighter2ID: 13, Score1: 2, Score2: 1, WinnerID: intPtr(11)},
		},
		Assignments: []models.PoolAssignment{
			{CategoryID: 1, PoolNumber: 1, TableNumber: 1, Order: 0},
			{CategoryID: 1, PoolNumber: 2, TableNumber: 4, Order: 0},
		},
		TableCount:       2,
		ActiveCategories: []int{1},
	}
}

func TestNewDerivesCompetitorTotals(t *testing.T) {
	s := New(sampleData())

	c, ok := s.Competitor(11)
	require.True(t, ok)
	assert.Equal(t, 1, c.Victories)
	assert.Equal(t, 2, c.Score)
	assert.True(t, c.HasBouts)

	c, _ = s.Competitor(13)
	assert.Equal(t, 0, c.Victories)
	assert.Equal(t, 1, c.Score)
	assert.True(t, c.HasBouts)

	c, _ = s.Competitor(10)
	assert.False(t, c.HasBouts)

	assert.Len(t, s.CategoryCompetitors(1), 7)
}

func TestPool(t *testing.T) {
	s := New(sampleData())

	view, err := s.Pool(1, 1)
	require.NoError(t, err)
	assert.Equal(t, "Minimes", view.Category)
	assert.Equal(t, []int{11, 13, 12, 10}, rosterIDs(view.Roster))
	require.Len(t, view.Fixtures, 6)
	assert.True(t, view.Fixtures[0].Saved)
	assert.Equal(t, brackets.PoolProgress{Status: brackets.StatusInProgress, Played: 1, Total: 6}, view.Progress)
	assert.Equal(t, 6, view.Workload())
	assert.Equal(t, 11, view.Standings[0].CompetitorID)
	assert.Equal(t, 1, view.Assignment.TableNumber)

	_, err = s.Pool(1, 9)
	assert.ErrorIs(t, err, ErrUnknownPool)
}

func TestPoolWithoutAssignmentIsInBacklog(t *testing.T) {
	s := New(sampleData())
	view, err := s.Pool(2, 1)
	require.NoError(t, err)
	assert.Equal(t, tables.Backlog, view.Assignment.TableNumber)
	assert.Equal(t, brackets.StatusNotStarted, view.Progress.Status)
}

func TestActivePools(t *testing.T) {
	s := New(sampleData())
	views, err := s.ActivePools()
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, models.PoolKey{CategoryID: 1, PoolNumber: 1}, views[0].Key)
	assert.Equal(t, models.PoolKey{CategoryID: 1, PoolNumber: 2}, views[1].Key)

	data := sampleData()
	data.ActiveCategories = nil
	views, err = New(data).ActivePools()
	require.NoError(t, err)
	assert.Len(t, views, 3)
}

func TestBalancerInput(t *testing.T) {
	s := New(sampleData())
	pools, err := s.BalancerInput()
	require.NoError(t, err)
	assert.Equal(t, []tables.Pool{
		{Key: models.PoolKey{CategoryID: 1, PoolNumber: 1}, Workload: 6, Status: brackets.StatusInProgress, Table: 1},
		{Key: models.PoolKey{CategoryID: 1, PoolNumber: 2}, Workload: 1, Status: brackets.StatusNotStarted, Table: 4},
	}, pools)
}

func TestBalancerInputHoldsInactivePoolsOnTables(t *testing.T) {
	data := sampleData()
	data.Assignments = append(data.Assignments, models.PoolAssignment{CategoryID: 2, PoolNumber: 1, TableNumber: 2, Order: 0})

	pools, err := New(data).BalancerInput()
	require.NoError(t, err)
	require.Len(t, pools, 3)
	assert.Equal(t, tables.Pool{
		Key:      models.PoolKey{CategoryID: 2, PoolNumber: 1},
		Workload: 3,
		Status:   brackets.StatusNotStarted,
		Table:    2,
		Held:     true,
	}, pools[2])
	assert.True(t, pools[2].Pinned())
	assert.False(t, pools[1].Held)
}

func TestBoard(t *testing.T) {
	s := New(sampleData())
	board, err := s.Board()
	require.NoError(t, err)

	require.Len(t, board.Tables, 3)
	assert.Equal(t, []int{1, 2, 4}, []int{board.Tables[0].Number, board.Tables[1].Number, board.Tables[2].Number})
	assert.Equal(t, 6, board.Tables[0].Load)
	assert.Equal(t, 5, board.Tables[0].Remaining)
	assert.Empty(t, board.Tables[1].Pools)
	assert.Empty(t, board.Backlog)

	table, ok := board.Table(4)
	require.True(t, ok)
	assert.Equal(t, 1, table.Load)
	_, ok = board.Table(3)
	assert.False(t, ok)
}

func TestDuplicatePairingSurfaces(t *testing.T) {
	data := sampleData()
	data.Bouts = append(data.Bouts, models.Bout{ID: 2, CategoryID: 1, Fighter1ID: 13, Fighter2ID: 11, Score1: 1})
	_, err := New(data).Pool(1, 1)
	assert.ErrorIs(t, err, brackets.ErrDuplicatePairing)
}

func rosterIDs(cs []models.Competitor) []int {
	ids := make([]int, len(cs))
	for i, c := range cs {
		ids[i] = c.ID
	}
	return ids
}
