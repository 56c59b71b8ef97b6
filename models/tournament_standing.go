package models

// Standing is one line of a pool ranking, computed from bouts and never stored.
type Standing struct {
	Rank         int     `json:"rank"`
	CompetitorID int     `json:"competitor_id"`
	Name         string  `json:"name"`
	Club         string  `json:"club"`
	Weight       float64 `json:"weight"`
	Victories    int     `json:"victories"`
	Score        int     `json:"score"`
	BoutsPlayed  int     `json:"bouts_played"`
}
