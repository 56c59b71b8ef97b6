package brackets

import (
	"errors"
	"fmt"
)

var (
	ErrNegativeScore  = errors.New("scores must not be negative")
	ErrWinnerRequired = errors.New("scores are tied: pick a winner or declare a draw")
	ErrWinnerMismatch = errors.New("chosen winner does not have the higher score")
)

// Decision is the operator's explicit choice for a bout result.
type Decision string

const (
	DecisionAuto     Decision = ""
	DecisionFighter1 Decision = "fighter1"
	DecisionFighter2 Decision = "fighter2"
	DecisionDraw     Decision = "draw"
)

func (d Decision) Valid() bool {
	switch d {
	case DecisionAuto, DecisionFighter1, DecisionFighter2, DecisionDraw:
		return true
	}
	return false
}

// Action tells the caller what to do with the underlying bout record.
type Action int

const (
	// ActionSave creates or updates the bout.
	ActionSave Action = iota
	// ActionDelete removes the bout; a 0-0 result means "not played".
	ActionDelete
)

func (a Action) String() string {
	if a == ActionDelete {
		return "delete"
	}
	return "save"
}

// Result is the normalized outcome of a score submission.
type Result struct {
	Action Action
	Score1 int
	Score2 int
	// Winner is 1 or 2, 0 for a draw.
	Winner int
}

// WinnerID maps Winner onto the fighter ids of a bout.
func (r Result) WinnerID(fighter1ID, fighter2ID int) *int {
	switch r.Winner {
	case 1:
		return &fighter1ID
	case 2:
		return &fighter2ID
	}
	return nil
}

// ResolveResult applies the scoring rules to a submission:
// 0-0 always resets the bout, a strictly higher score wins automatically, and a tie
// between non-zero scores needs an explicit winner or draw.
func ResolveResult(score1, score2 int, decision Decision) (Result, error) {
	if score1 < 0 || score2 < 0 {
		return Result{}, fmt.Errorf("%w: got %d-%d", ErrNegativeScore, score1, score2)
	}
	if !decision.Valid() {
		return Result{}, fmt.Errorf("unknown winner decision %q", decision)
	}

	res := Result{Action: ActionSave, Score1: score1, Score2: score2}
	switch {
	case score1 == 0 && score2 == 0:
		return Result{Action: ActionDelete}, nil
	case score1 > score2:
		if decision == DecisionFighter2 || decision == DecisionDraw {
			return Result{}, ErrWinnerMismatch
		}
		res.Winner = 1
	case score2 > score1:
		if decision == DecisionFighter1 || decision == DecisionDraw {
			return Result{}, ErrWinnerMismatch
		}
		res.Winner = 2
	default:
		switch decision {
		case DecisionFighter1:
			res.Winner = 1
		case DecisionFighter2:
			res.Winner = 2
		case DecisionDraw:
			res.Winner = 0
		default:
			return Result{}, ErrWinnerRequired
		}
	}
	return res, nil
}
