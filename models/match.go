package models

import "time"

// Bout is a persisted scored match between two competitors of the same pool.
// A bout with 0-0 and no winner is never stored.
type Bout struct {
	ID         int       `json:"id" db:"id"`
	CategoryID int       `json:"category_id" db:"category_id"`
	Fighter1ID int       `json:"fighter1_id" db:"fighter1_id"`
	Fighter2ID int       `json:"fighter2_id" db:"fighter2_id"`
	Score1     int       `json:"score1" db:"score1"`
	Score2     int       `json:"score2" db:"score2"`
	WinnerID   *int      `json:"winner_id,omitempty" db:"winner_id"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// Involves reports whether competitorID is one of the two fighters.
func (b *Bout) Involves(competitorID int) bool {
	return b.Fighter1ID == competitorID || b.Fighter2ID == competitorID
}

// PairKey returns the unordered fighter pair, lowest id first.
func (b *Bout) PairKey() PairKey {
	return NewPairKey(b.Fighter1ID, b.Fighter2ID)
}

// ScoreOf returns the score recorded for competitorID in this bout.
func (b *Bout) ScoreOf(competitorID int) int {
	switch competitorID {
	case b.Fighter1ID:
		return b.Score1
	case b.Fighter2ID:
		return b.Score2
	}
	return 0
}

// PairKey identifies an unordered pair of competitors.
type PairKey struct {
	Low  int
	High int
}

func NewPairKey(a, b int) PairKey {
	if a > b {
		a, b = b, a
	}
	return PairKey{Low: a, High: b}
}
