package snapshot

import (
	"sort"
	"time"

	"github.com/Dosada05/judo-pools/brackets"
	"github.com/Dosada05/judo-pools/models"
	"github.com/Dosada05/judo-pools/tables"
)

// PoolSummary is the board line of a pool.
type PoolSummary struct {
	Key      models.PoolKey        `json:"key"`
	Category string                `json:"category"`
	Size     int                   `json:"size"`
	Order    int                   `json:"order"`
	Progress brackets.PoolProgress `json:"progress"`
}

// Table is one physical table with its queue of pools.
type Table struct {
	Number    int           `json:"number"`
	Load      int           `json:"load"`
	Remaining int           `json:"remaining"`
	Pools     []PoolSummary `json:"pools"`
}

// Board is the table overview of the active categories.
type Board struct {
	TableCount int           `json:"table_count"`
	Tables     []Table       `json:"tables"`
	Backlog    []PoolSummary `json:"backlog"`
	TakenAt    time.Time     `json:"taken_at"`
}

// Table returns the table with the given number.
func (b *Board) Table(number int) (Table, bool) {
	for _, t := range b.Tables {
		if t.Number == number {
			return t, true
		}
	}
	return Table{}, false
}

// Board groups the active pools per table. Tables 1..TableCount are always present;
// tables beyond that appear only while pools are still assigned to them.
func (s *Snapshot) Board() (Board, error) {
	views, err := s.ActivePools()
	if err != nil {
		return Board{}, err
	}

	board := Board{TableCount: s.TableCount, TakenAt: s.TakenAt}
	byTable := make(map[int]*Table)
	for n := 1; n <= s.TableCount; n++ {
		byTable[n] = &Table{Number: n}
	}

	for i := range views {
		v := &views[i]
		summary := PoolSummary{
			Key:      v.Key,
			Category: v.Category,
			Size:     len(v.Roster),
			Order:    v.Assignment.Order,
			Progress: v.Progress,
		}
		n := v.Assignment.TableNumber
		if n == tables.Backlog {
			board.Backlog = append(board.Backlog, summary)
			continue
		}
		t, ok := byTable[n]
		if !ok {
			t = &Table{Number: n}
			byTable[n] = t
		}
		t.Pools = append(t.Pools, summary)
		t.Load += v.Workload()
		t.Remaining += v.Progress.Total - v.Progress.Played
	}

	for _, t := range byTable {
		sortSummaries(t.Pools)
		board.Tables = append(board.Tables, *t)
	}
	sort.Slice(board.Tables, func(i, j int) bool { return board.Tables[i].Number < board.Tables[j].Number })
	sortSummaries(board.Backlog)
	return board, nil
}

func sortSummaries(pools []PoolSummary) {
	sort.SliceStable(pools, func(i, j int) bool {
		if pools[i].Order != pools[j].Order {
			return pools[i].Order < pools[j].Order
		}
		if pools[i].Key.CategoryID != pools[j].Key.CategoryID {
			return pools[i].Key.CategoryID < pools[j].Key.CategoryID
		}
		return pools[i].Key.PoolNumber < pools[j].Key.PoolNumber
	})
}
