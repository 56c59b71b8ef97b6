// Package snapshot is the read boundary of the engine: everything a refresh needs is
// loaded once into a Snapshot and every view is computed from it without side effects.
package snapshot

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Dosada05/judo-pools/brackets"
	"github.com/Dosada05/judo-pools/models"
	"github.com/Dosada05/judo-pools/tables"
)

var ErrUnknownPool = errors.New("pool not found")

// Data is the raw state a Snapshot is built from.
type Data struct {
	Categories       []models.Category
	Competitors      []models.Competitor
	Bouts            []models.Bout
	Assignments      []models.PoolAssignment
	TableCount       int
	ActiveCategories []int
	TakenAt          time.Time
}

// Snapshot indexes Data and derives per-competitor totals. It is immutable once built.
type Snapshot struct {
	Data

	categories  map[int]models.Category
	rosters     map[models.PoolKey][]models.Competitor
	competitors map[int]models.Competitor
	bouts       map[int][]models.Bout
	assignments map[models.PoolKey]models.PoolAssignment
	active      map[int]bool
}

// New builds a snapshot. Competitors get Victories, Score and HasBouts from the bouts
// of the same data set.
func New(data Data) *Snapshot {
	s := &Snapshot{
		Data:        data,
		categories:  make(map[int]models.Category, len(data.Categories)),
		rosters:     make(map[models.PoolKey][]models.Competitor),
		competitors: make(map[int]models.Competitor, len(data.Competitors)),
		bouts:       make(map[int][]models.Bout),
		assignments: make(map[models.PoolKey]models.PoolAssignment, len(data.Assignments)),
		active:      make(map[int]bool, len(data.ActiveCategories)),
	}
	for _, c := range data.Categories {
		s.categories[c.ID] = c
	}
	for _, b := range data.Bouts {
		s.bouts[b.CategoryID] = append(s.bouts[b.CategoryID], b)
	}
	for _, a := range data.Assignments {
		s.assignments[a.Key()] = a
	}
	for _, id := range data.ActiveCategories {
		s.active[id] = true
	}

	totals := brackets.TallyBouts(data.Bouts)
	derived := make([]models.Competitor, len(data.Competitors))
	for i, c := range data.Competitors {
		t := totals[c.ID]
		c.Victories = t.Victories
		c.Score = t.Score
		c.HasBouts = t.Bouts > 0
		derived[i] = c
		s.competitors[c.ID] = c
		if p := c.Pool(); p > 0 {
			key := models.PoolKey{CategoryID: c.CategoryID, PoolNumber: p}
			s.rosters[key] = append(s.rosters[key], c)
		}
	}
	s.Competitors = derived
	return s
}

// Category returns the category with the given id.
func (s *Snapshot) Category(id int) (models.Category, bool) {
	c, ok := s.categories[id]
	return c, ok
}

// Competitor returns a competitor with its derived totals.
func (s *Snapshot) Competitor(id int) (models.Competitor, bool) {
	c, ok := s.competitors[id]
	return c, ok
}

// CategoryCompetitors returns every competitor of a category, assigned or not.
func (s *Snapshot) CategoryCompetitors(categoryID int) []models.Competitor {
	var out []models.Competitor
	for _, c := range s.Competitors {
		if c.CategoryID == categoryID {
			out = append(out, c)
		}
	}
	return out
}

// CategoryBouts returns the recorded bouts of a category.
func (s *Snapshot) CategoryBouts(categoryID int) []models.Bout {
	return s.bouts[categoryID]
}

// Active reports whether a category is currently run on the tables. No explicit
// selection means every category is active.
func (s *Snapshot) Active(categoryID int) bool {
	if len(s.active) == 0 {
		return true
	}
	return s.active[categoryID]
}

// Assignment returns the stored table assignment of a pool. Pools without one sit in
// the backlog.
func (s *Snapshot) Assignment(key models.PoolKey) models.PoolAssignment {
	if a, ok := s.assignments[key]; ok {
		return a
	}
	return models.PoolAssignment{CategoryID: key.CategoryID, PoolNumber: key.PoolNumber, TableNumber: tables.Backlog}
}

// PoolView is everything shown for a single pool.
type PoolView struct {
	Key        models.PoolKey        `json:"key"`
	Category   string                `json:"category"`
	Roster     []models.Competitor   `json:"roster"`
	Fixtures   []brackets.Fixture    `json:"fixtures"`
	Standings  []models.Standing     `json:"standings"`
	Progress   brackets.PoolProgress `json:"progress"`
	Assignment models.PoolAssignment `json:"assignment"`
}

// Workload is the number of bouts the pool requires.
func (v *PoolView) Workload() int {
	return brackets.BoutCount(len(v.Roster))
}

// PoolKeys returns the keys of every non-empty pool of a category, ascending.
func (s *Snapshot) PoolKeys(categoryID int) []models.PoolKey {
	var keys []models.PoolKey
	for key := range s.rosters {
		if key.CategoryID == categoryID {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].PoolNumber < keys[j].PoolNumber })
	return keys
}

// Pool computes the view of one pool.
func (s *Snapshot) Pool(categoryID, poolNumber int) (PoolView, error) {
	key := models.PoolKey{CategoryID: categoryID, PoolNumber: poolNumber}
	roster, ok := s.rosters[key]
	if !ok {
		return PoolView{}, fmt.Errorf("%w: category %d pool %d", ErrUnknownPool, categoryID, poolNumber)
	}
	roster = brackets.SortRoster(roster)
	bouts := s.bouts[categoryID]

	fixtures, err := brackets.Reconcile(roster, bouts)
	if err != nil {
		return PoolView{}, fmt.Errorf("category %d pool %d: %w", categoryID, poolNumber, err)
	}
	assignment := s.Assignment(key)
	return PoolView{
		Key:        key,
		Category:   s.categories[categoryID].Name,
		Roster:     roster,
		Fixtures:   fixtures,
		Standings:  brackets.ComputeStandings(roster, bouts),
		Progress:   brackets.PoolStatus(fixtures, len(roster), assignment.Validated),
		Assignment: assignment,
	}, nil
}

// Pools computes the views of every pool of a category.
func (s *Snapshot) Pools(categoryID int) ([]PoolView, error) {
	keys := s.PoolKeys(categoryID)
	views := make([]PoolView, 0, len(keys))
	for _, key := range keys {
		v, err := s.Pool(key.CategoryID, key.PoolNumber)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// ActivePools returns the views of every pool of the active categories, ordered by
// category then pool number.
func (s *Snapshot) ActivePools() ([]PoolView, error) {
	return s.poolsWhere(s.Active)
}

func (s *Snapshot) poolsWhere(include func(categoryID int) bool) ([]PoolView, error) {
	ids := make([]int, 0, len(s.categories))
	seen := make(map[int]bool)
	for key := range s.rosters {
		if !seen[key.CategoryID] && include(key.CategoryID) {
			seen[key.CategoryID] = true
			ids = append(ids, key.CategoryID)
		}
	}
	sort.Ints(ids)

	var views []PoolView
	for _, id := range ids {
		vs, err := s.Pools(id)
		if err != nil {
			return nil, err
		}
		views = append(views, vs...)
	}
	return views, nil
}

// BalancerInput converts the active pools into the table balancer's input. Pools of
// inactive categories that still sit on a table are included as held pools: they keep
// their place and count toward that table's load and ordering.
func (s *Snapshot) BalancerInput() ([]tables.Pool, error) {
	views, err := s.poolsWhere(func(int) bool { return true })
	if err != nil {
		return nil, err
	}
	pools := make([]tables.Pool, 0, len(views))
	for i := range views {
		v := &views[i]
		active := s.Active(v.Key.CategoryID)
		if !active && v.Assignment.TableNumber == tables.Backlog {
			continue
		}
		pools = append(pools, tables.Pool{
			Key:      v.Key,
			Workload: v.Workload(),
			Status:   v.Progress.Status,
			Table:    v.Assignment.TableNumber,
			Order:    v.Assignment.Order,
			Held:     !active,
		})
	}
	return pools, nil
}
