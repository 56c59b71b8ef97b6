package brackets

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Dosada05/judo-pools/models"
)

var ErrDuplicatePairing = errors.New("pool contains two bouts for the same pair")

// Fixture is one scheduled bout of a pool: either a persisted bout or an unplayed
// placeholder (Saved == false, 0-0, no winner).
type Fixture struct {
	Number     int  `json:"number"`
	Total      int  `json:"total"`
	Pair       Pair `json:"pair"`
	BoutID     int  `json:"bout_id,omitempty"`
	Fighter1ID int  `json:"fighter1_id"`
	Fighter2ID int  `json:"fighter2_id"`
	Score1     int  `json:"score1"`
	Score2     int  `json:"score2"`
	WinnerID   *int `json:"winner_id,omitempty"`
	Saved      bool `json:"saved"`
}

// Played reports whether the fixture counts toward pool completion: a bout exists.
func (f *Fixture) Played() bool {
	return f.Saved
}

// SortRoster returns a copy of the roster in pairing order: ascending weight, then id.
func SortRoster(roster []models.Competitor) []models.Competitor {
	sorted := make([]models.Competitor, len(roster))
	copy(sorted, roster)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Weight != sorted[j].Weight {
			return sorted[i].Weight < sorted[j].Weight
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

// Reconcile maps the canonical pairing list of the roster onto the recorded bouts.
// Bouts not involving two roster members are ignored. The result always has
// BoutCount(len(roster)) fixtures, in bout-number order.
func Reconcile(roster []models.Competitor, bouts []models.Bout) ([]Fixture, error) {
	sorted := SortRoster(roster)

	members := make(map[int]struct{}, len(sorted))
	for _, c := range sorted {
		members[c.ID] = struct{}{}
	}

	byPair := make(map[models.PairKey]*models.Bout, len(bouts))
	for i := range bouts {
		b := &bouts[i]
		_, ok1 := members[b.Fighter1ID]
		_, ok2 := members[b.Fighter2ID]
		if !ok1 || !ok2 {
			continue
		}
		key := b.PairKey()
		if prev, dup := byPair[key]; dup {
			return nil, fmt.Errorf("%w: bouts %d and %d (competitors %d/%d)", ErrDuplicatePairing, prev.ID, b.ID, key.Low, key.High)
		}
		byPair[key] = b
	}

	pairs := Pairings(len(sorted))
	fixtures := make([]Fixture, 0, len(pairs))
	for idx, pair := range pairs {
		p1 := sorted[pair.A-1]
		p2 := sorted[pair.B-1]

		fixture := Fixture{
			Number:     idx + 1,
			Total:      len(pairs),
			Pair:       pair,
			Fighter1ID: p1.ID,
			Fighter2ID: p2.ID,
		}
		if b, ok := byPair[models.NewPairKey(p1.ID, p2.ID)]; ok {
			// keep the stored orientation so scores line up with fighters
			fixture.BoutID = b.ID
			fixture.Fighter1ID = b.Fighter1ID
			fixture.Fighter2ID = b.Fighter2ID
			fixture.Score1 = b.Score1
			fixture.Score2 = b.Score2
			fixture.WinnerID = b.WinnerID
			fixture.Saved = true
		}
		fixtures = append(fixtures, fixture)
	}
	return fixtures, nil
}

// PlayedCount returns how many fixtures have a persisted bout.
func PlayedCount(fixtures []Fixture) int {
	played := 0
	for i := range fixtures {
		if fixtures[i].Played() {
			played++
		}
	}
	return played
}
