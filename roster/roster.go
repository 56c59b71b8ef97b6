// Package roster holds the editable layout of a category: competitors laid out
// contiguously per pool, pools separated by separator nodes. Edits happen on the
// in-memory sequence and only Commit produces pool numbers to persist.
package roster

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/Dosada05/judo-pools/models"
)

var (
	ErrLocked      = errors.New("competitor already has recorded bouts and cannot be moved")
	ErrUnknownNode = errors.New("unknown roster item")
)

type NodeKind string

const (
	KindCompetitor NodeKind = "competitor"
	KindSeparator  NodeKind = "separator"
)

// Node is one item of the sequence. Competitor is set only for KindCompetitor.
type Node struct {
	ID         string             `json:"id"`
	Kind       NodeKind           `json:"kind"`
	Competitor *models.Competitor `json:"competitor,omitempty"`
}

// Locked reports whether the node may not be dragged.
func (n *Node) Locked() bool {
	return n.Kind == KindCompetitor && n.Competitor != nil && n.Competitor.HasBouts
}

const (
	competitorPrefix = "c-"
	separatorPrefix  = "s-"
)

// LoadedSeparatorID is the id Load gives to the separator following the i-th pool,
// so ids handed out by one load stay valid for edits against the next one.
func LoadedSeparatorID(i int) string {
	return separatorPrefix + strconv.Itoa(i)
}

// CompetitorNodeID is the stable node id of a competitor.
func CompetitorNodeID(competitorID int) string {
	return competitorPrefix + strconv.Itoa(competitorID)
}

// ParseCompetitorNodeID extracts the competitor id from a node id.
func ParseCompetitorNodeID(id string) (int, bool) {
	if !strings.HasPrefix(id, competitorPrefix) {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimPrefix(id, competitorPrefix))
	if err != nil {
		return 0, false
	}
	return v, true
}

// Sequence is the ordered arena of nodes for one category.
type Sequence struct {
	nodes []Node
	newID func() string
	// locks maps every competitor with recorded bouts to the member set of its pool
	// at Load time.
	locks map[int]string
}

func NewSequence() *Sequence {
	return &Sequence{newID: func() string { return uuid.NewString() }}
}

// Load rebuilds the sequence from persisted pool numbers: pools ascending, members by
// ascending weight, separators between pools, then unassigned competitors after a
// trailing separator.
func (s *Sequence) Load(competitors []models.Competitor) {
	pools := make(map[int][]models.Competitor)
	var unassigned []models.Competitor
	for _, c := range competitors {
		if c.Pool() <= 0 {
			unassigned = append(unassigned, c)
			continue
		}
		pools[c.Pool()] = append(pools[c.Pool()], c)
	}

	numbers := make([]int, 0, len(pools))
	for n := range pools {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	s.locks = make(map[int]string)
	for _, n := range numbers {
		members := memberSet(pools[n])
		for _, c := range pools[n] {
			if c.HasBouts {
				s.locks[c.ID] = members
			}
		}
	}

	s.nodes = s.nodes[:0]
	for i, n := range numbers {
		if i > 0 {
			s.appendSeparator(LoadedSeparatorID(i))
		}
		for _, c := range sortByWeight(pools[n]) {
			s.appendCompetitor(c)
		}
	}
	if len(unassigned) > 0 {
		if len(numbers) > 0 {
			s.appendSeparator(LoadedSeparatorID(len(numbers)))
		}
		for _, c := range sortByWeight(unassigned) {
			s.appendCompetitor(c)
		}
	}
}

func memberSet(cs []models.Competitor) string {
	ids := make([]int, len(cs))
	for i, c := range cs {
		ids[i] = c.ID
	}
	sort.Ints(ids)
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

// CheckLocks fails with ErrLocked when a competitor with recorded bouts no longer
// shares its pool with exactly the members it had at Load: separators moved through
// a started pool, or pools merged into one.
func (s *Sequence) CheckLocks() error {
	if len(s.locks) == 0 {
		return nil
	}
	for _, run := range s.Pools() {
		members := memberSet(run)
		for _, c := range run {
			if want, ok := s.locks[c.ID]; ok && want != members {
				return fmt.Errorf("%w: pool of competitor %d would change from [%s] to [%s]", ErrLocked, c.ID, want, members)
			}
		}
	}
	return nil
}

func sortByWeight(cs []models.Competitor) []models.Competitor {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].Weight != cs[j].Weight {
			return cs[i].Weight < cs[j].Weight
		}
		return cs[i].ID < cs[j].ID
	})
	return cs
}

func (s *Sequence) appendCompetitor(c models.Competitor) {
	c2 := c
	s.nodes = append(s.nodes, Node{ID: CompetitorNodeID(c.ID), Kind: KindCompetitor, Competitor: &c2})
}

func (s *Sequence) appendSeparator(id string) string {
	s.nodes = append(s.nodes, Node{ID: id, Kind: KindSeparator})
	return id
}

// Nodes returns a copy of the current layout.
func (s *Sequence) Nodes() []Node {
	out := make([]Node, len(s.nodes))
	copy(out, s.nodes)
	return out
}

func (s *Sequence) indexOf(id string) int {
	for i := range s.nodes {
		if s.nodes[i].ID == id {
			return i
		}
	}
	return -1
}

// Move relocates a node in front of beforeID, or to the end when beforeID is empty.
// Competitors with recorded bouts are locked; the sequence is left untouched on error.
// Pool membership of locked competitors is only checked by CheckLocks, so a batch may
// pass through intermediate layouts.
func (s *Sequence) Move(id, beforeID string) error {
	from := s.indexOf(id)
	if from < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	if s.nodes[from].Locked() {
		return fmt.Errorf("%w: %s", ErrLocked, id)
	}
	if beforeID == id {
		return nil
	}
	if beforeID != "" && s.indexOf(beforeID) < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownNode, beforeID)
	}

	node := s.nodes[from]
	s.nodes = append(s.nodes[:from], s.nodes[from+1:]...)

	to := len(s.nodes)
	if beforeID != "" {
		to = s.indexOf(beforeID)
	}
	s.nodes = append(s.nodes, Node{})
	copy(s.nodes[to+1:], s.nodes[to:])
	s.nodes[to] = node
	return nil
}

// InsertSeparator appends a new pool boundary and returns its node id.
func (s *Sequence) InsertSeparator() string {
	return s.appendSeparator(s.newID())
}

// SetOutsideBracket flips the outside-bracket flag locally and returns the previous
// value so the caller can revert when persisting fails.
func (s *Sequence) SetOutsideBracket(competitorID int, flag bool) (bool, error) {
	i := s.indexOf(CompetitorNodeID(competitorID))
	if i < 0 {
		return false, fmt.Errorf("%w: competitor %d", ErrUnknownNode, competitorID)
	}
	c := s.nodes[i].Competitor
	prev := c.OutsideBracket
	c.OutsideBracket = flag
	return prev, nil
}

// Pools splits the sequence into runs of competitors, dropping empty runs.
func (s *Sequence) Pools() [][]models.Competitor {
	var (
		runs    [][]models.Competitor
		current []models.Competitor
	)
	flush := func() {
		if len(current) > 0 {
			runs = append(runs, current)
		}
		current = nil
	}
	for i := range s.nodes {
		n := &s.nodes[i]
		if n.Kind == KindSeparator {
			flush()
			continue
		}
		current = append(current, *n.Competitor)
	}
	flush()
	return runs
}

// Commit renumbers the non-empty runs 1..k in sequence order, compacts the layout so
// separators only sit between pools, and returns the pool number of every competitor.
// Committing an already committed sequence yields the same numbering.
func (s *Sequence) Commit() []models.PoolUpdate {
	runs := s.Pools()

	var updates []models.PoolUpdate
	compacted := make([]Node, 0, len(s.nodes))
	separators := make([]Node, 0)
	for i := range s.nodes {
		if s.nodes[i].Kind == KindSeparator {
			separators = append(separators, s.nodes[i])
		}
	}

	for i, run := range runs {
		pool := i + 1
		if i > 0 {
			// reuse existing separator ids so clients keep their handles
			sep := Node{Kind: KindSeparator}
			if i-1 < len(separators) {
				sep.ID = separators[i-1].ID
			} else {
				sep.ID = s.newID()
			}
			compacted = append(compacted, sep)
		}
		for _, c := range run {
			c.PoolNumber = &pool
			updates = append(updates, models.PoolUpdate{CompetitorID: c.ID, PoolNumber: pool})
			compacted = append(compacted, Node{ID: CompetitorNodeID(c.ID), Kind: KindCompetitor, Competitor: &c})
		}
	}
	s.nodes = compacted
	return updates
}
