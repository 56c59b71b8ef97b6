package brackets

import (
	"encoding/json"
	"fmt"
)

// Status is the lifecycle state of a pool. It is always derived, never stored:
// only the validation flag lives in the database.
type Status int

const (
	StatusNotStarted Status = iota
	StatusInProgress
	StatusFinished
	StatusValidated
)

var statusNames = [...]string{
	StatusNotStarted: "not_started",
	StatusInProgress: "in_progress",
	StatusFinished:   "finished",
	StatusValidated:  "validated",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseStatus(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func ParseStatus(name string) (Status, error) {
	for i, n := range statusNames {
		if n == name {
			return Status(i), nil
		}
	}
	return StatusNotStarted, fmt.Errorf("unknown pool status %q", name)
}

// Movable reports whether the table balancer may relocate a pool in this state.
func (s Status) Movable() bool {
	return s == StatusNotStarted
}

// PoolProgress is the status plus the counts it was derived from.
type PoolProgress struct {
	Status Status `json:"status"`
	Played int    `json:"played"`
	Total  int    `json:"total"`
}

// DeriveStatus is the single place where pool status is computed.
// A bout counts as played as soon as it is persisted; a 0-0 result is never stored.
// The validation flag overrides the counts, which are still reported.
func DeriveStatus(rosterSize, played int, validated bool) PoolProgress {
	total := BoutCount(rosterSize)
	if played > total {
		played = total
	}
	progress := PoolProgress{Played: played, Total: total}

	switch {
	case validated:
		progress.Status = StatusValidated
	case rosterSize < 2 || played == 0:
		progress.Status = StatusNotStarted
	case played < total:
		progress.Status = StatusInProgress
	default:
		progress.Status = StatusFinished
	}
	return progress
}

// PoolStatus derives the progress of a pool from its roster, bouts and validation flag.
func PoolStatus(fixtures []Fixture, rosterSize int, validated bool) PoolProgress {
	return DeriveStatus(rosterSize, PlayedCount(fixtures), validated)
}

// CanValidate reports whether a pool may be marked validated. force is the
// authoritative override for pools that are not finished.
func CanValidate(p PoolProgress, force bool) bool {
	return force || p.Status == StatusFinished || p.Status == StatusValidated
}
