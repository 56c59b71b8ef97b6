package brackets

import (
	"sort"

	"github.com/Dosada05/judo-pools/models"
)

// ComputeStandings ranks a pool by victories, then accumulated score, using dense
// ranking: equal (victories, score) share a rank and the next distinct line gets rank+1.
// Only bouts between two roster members are counted.
func ComputeStandings(roster []models.Competitor, bouts []models.Bout) []models.Standing {
	index := make(map[int]int, len(roster))
	standings := make([]models.Standing, len(roster))
	for i, c := range SortRoster(roster) {
		index[c.ID] = i
		standings[i] = models.Standing{
			CompetitorID: c.ID,
			Name:         c.FullName(),
			Club:         c.Club,
			Weight:       c.Weight,
		}
	}

	for i := range bouts {
		b := &bouts[i]
		i1, ok1 := index[b.Fighter1ID]
		i2, ok2 := index[b.Fighter2ID]
		if !ok1 || !ok2 {
			continue
		}
		standings[i1].Score += b.Score1
		standings[i2].Score += b.Score2
		standings[i1].BoutsPlayed++
		standings[i2].BoutsPlayed++
		if b.WinnerID != nil {
			switch *b.WinnerID {
			case b.Fighter1ID:
				standings[i1].Victories++
			case b.Fighter2ID:
				standings[i2].Victories++
			}
		}
	}

	// stable on the weight order set above, so display ties stay deterministic
	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].Victories != standings[j].Victories {
			return standings[i].Victories > standings[j].Victories
		}
		return standings[i].Score > standings[j].Score
	})

	rank := 0
	for i := range standings {
		if i == 0 || standings[i].Victories != standings[i-1].Victories || standings[i].Score != standings[i-1].Score {
			rank++
		}
		standings[i].Rank = rank
	}
	return standings
}

// Tally accumulates victories and score per competitor over any set of bouts.
type Tally struct {
	Victories int
	Score     int
	Bouts     int
}

// TallyBouts returns per-competitor totals for every fighter appearing in bouts.
func TallyBouts(bouts []models.Bout) map[int]Tally {
	totals := make(map[int]Tally)
	add := func(id, score int, won bool) {
		t := totals[id]
		t.Score += score
		t.Bouts++
		if won {
			t.Victories++
		}
		totals[id] = t
	}
	for i := range bouts {
		b := &bouts[i]
		add(b.Fighter1ID, b.Score1, b.WinnerID != nil && *b.WinnerID == b.Fighter1ID)
		add(b.Fighter2ID, b.Score2, b.WinnerID != nil && *b.WinnerID == b.Fighter2ID)
	}
	return totals
}
