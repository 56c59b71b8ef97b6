// Package tables places pools on the physical scoring tables.
package tables

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Dosada05/judo-pools/brackets"
	"github.com/Dosada05/judo-pools/models"
)

var (
	ErrNoTables         = errors.New("at least one table is required")
	ErrInvalidPlacement = errors.New("strategy returned an invalid placement")
)

// Backlog is the table number of pools not placed on any table.
const Backlog = 0

// Pool is the balancer's view of a pool: its workload in bouts, its derived status
// and where it currently sits. Held pools are pinned whatever their status.
type Pool struct {
	Key      models.PoolKey  `json:"key"`
	Workload int             `json:"workload"`
	Status   brackets.Status `json:"status"`
	Table    int             `json:"table"`
	Order    int             `json:"order"`
	Held     bool            `json:"held,omitempty"`
}

// Pinned reports whether the pool must keep its table.
func (p Pool) Pinned() bool {
	return p.Held || !p.Status.Movable()
}

type Assignment struct {
	Key   models.PoolKey `json:"key"`
	Table int            `json:"table"`
	Order int            `json:"order"`
}

// Plan is the outcome of a balancer run. Loads[i] is the workload of table i+1.
type Plan struct {
	Assignments []Assignment `json:"assignments"`
	Loads       []int        `json:"loads"`
}

// MaxLoad returns the heaviest table load of the plan.
func (p Plan) MaxLoad() int {
	heaviest := 0
	for _, l := range p.Loads {
		if l > heaviest {
			heaviest = l
		}
	}
	return heaviest
}

// Changed returns the assignments that differ from the pools' current placement.
func (p Plan) Changed(pools []Pool) []Assignment {
	current := make(map[models.PoolKey]Pool, len(pools))
	for _, pool := range pools {
		current[pool.Key] = pool
	}
	var changed []Assignment
	for _, a := range p.Assignments {
		if cur, ok := current[a.Key]; !ok || cur.Table != a.Table || cur.Order != a.Order {
			changed = append(changed, a)
		}
	}
	return changed
}

// Placement is a strategy decision: put Pool on Table.
type Placement struct {
	Pool  Pool
	Table int
}

// Strategy distributes movable pools over tables. loads holds the pinned workload of
// every table (index 0 is table 1) and must not be modified. The returned placements
// are in placement order and must cover every movable pool exactly once.
type Strategy interface {
	Place(loads []int, movable []Pool) []Placement
}

// Balance keeps every pinned pool on its table and hands the movable ones to the
// strategy. Pools pinned to the backlog or to a table beyond tableCount keep that
// table. Order is the position in the destination table's list: pinned pools first
// in their existing order, then placed pools. A nil strategy means LargestFirst.
func Balance(tableCount int, pools []Pool, strategy Strategy) (Plan, error) {
	if tableCount < 1 {
		return Plan{}, fmt.Errorf("%w: got %d", ErrNoTables, tableCount)
	}
	if strategy == nil {
		strategy = LargestFirst{}
	}

	var pinned, movable []Pool
	for _, p := range pools {
		if p.Pinned() {
			pinned = append(pinned, p)
		} else {
			movable = append(movable, p)
		}
	}

	sort.SliceStable(pinned, func(i, j int) bool {
		if pinned[i].Table != pinned[j].Table {
			return pinned[i].Table < pinned[j].Table
		}
		if pinned[i].Order != pinned[j].Order {
			return pinned[i].Order < pinned[j].Order
		}
		return keyLess(pinned[i].Key, pinned[j].Key)
	})

	loads := Loads(tableCount, pinned)
	next := make(map[int]int)
	plan := Plan{Assignments: make([]Assignment, 0, len(pools))}
	for _, p := range pinned {
		plan.Assignments = append(plan.Assignments, Assignment{Key: p.Key, Table: p.Table, Order: next[p.Table]})
		next[p.Table]++
	}

	frozen := make([]int, len(loads))
	copy(frozen, loads)
	placements := strategy.Place(frozen, movable)
	if err := checkPlacements(tableCount, movable, placements); err != nil {
		return Plan{}, err
	}
	for _, pl := range placements {
		plan.Assignments = append(plan.Assignments, Assignment{Key: pl.Pool.Key, Table: pl.Table, Order: next[pl.Table]})
		next[pl.Table]++
		loads[pl.Table-1] += pl.Pool.Workload
	}
	plan.Loads = loads
	return plan, nil
}

func checkPlacements(tableCount int, movable []Pool, placements []Placement) error {
	if len(placements) != len(movable) {
		return fmt.Errorf("%w: %d placements for %d pools", ErrInvalidPlacement, len(placements), len(movable))
	}
	want := make(map[models.PoolKey]bool, len(movable))
	for _, p := range movable {
		want[p.Key] = true
	}
	for _, pl := range placements {
		if !want[pl.Pool.Key] {
			return fmt.Errorf("%w: pool %v placed twice or not movable", ErrInvalidPlacement, pl.Pool.Key)
		}
		if pl.Table < 1 || pl.Table > tableCount {
			return fmt.Errorf("%w: table %d out of range", ErrInvalidPlacement, pl.Table)
		}
		delete(want, pl.Pool.Key)
	}
	return nil
}

// Loads sums the workload per table for tables 1..tableCount. Pools in the backlog
// or on tables outside that range are not counted.
func Loads(tableCount int, pools []Pool) []int {
	if tableCount < 0 {
		tableCount = 0
	}
	loads := make([]int, tableCount)
	for _, p := range pools {
		if p.Table >= 1 && p.Table <= tableCount {
			loads[p.Table-1] += p.Workload
		}
	}
	return loads
}

func keyLess(a, b models.PoolKey) bool {
	if a.CategoryID != b.CategoryID {
		return a.CategoryID < b.CategoryID
	}
	return a.PoolNumber < b.PoolNumber
}
