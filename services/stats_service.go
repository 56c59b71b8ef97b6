package services

import (
	"context"
	"sort"
)

type ClubStat struct {
	Club        string `json:"club"`
	Competitors int    `json:"competitors"`
	Victories   int    `json:"victories"`
	TotalScore  int    `json:"total_score"`
}

// StatsWarning flags a pooled competitor who has not fought yet.
type StatsWarning struct {
	CompetitorID int    `json:"competitor_id"`
	Name         string `json:"name"`
	Club         string `json:"club"`
	CategoryID   int    `json:"category_id"`
	PoolNumber   int    `json:"pool_number"`
}

type ClubStats struct {
	ByClub   []ClubStat     `json:"by_club"`
	Warnings []StatsWarning `json:"warnings"`
}

type StatsService interface {
	ClubStats(ctx context.Context) (*ClubStats, error)
}

type statsService struct {
	loader SnapshotLoader
}

func NewStatsService(loader SnapshotLoader) StatsService {
	return &statsService{loader: loader}
}

// ClubStats aggregates victories and score per club over the categories counted in
// the statistics. Clubs are ordered by total score, then name.
func (s *statsService) ClubStats(ctx context.Context) (*ClubStats, error) {
	snap, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	byClub := make(map[string]*ClubStat)
	stats := &ClubStats{ByClub: []ClubStat{}, Warnings: []StatsWarning{}}
	for _, c := range snap.Competitors {
		category, ok := snap.Category(c.CategoryID)
		if !ok || !category.IncludeInStats {
			continue
		}

		stat, ok := byClub[c.Club]
		if !ok {
			stat = &ClubStat{Club: c.Club}
			byClub[c.Club] = stat
		}
		stat.Competitors++
		stat.Victories += c.Victories
		stat.TotalScore += c.Score

		if c.Pool() > 0 && !c.HasBouts {
			stats.Warnings = append(stats.Warnings, StatsWarning{
				CompetitorID: c.ID,
				Name:         c.FullName(),
				Club:         c.Club,
				CategoryID:   c.CategoryID,
				PoolNumber:   c.Pool(),
			})
		}
	}

	for _, stat := range byClub {
		stats.ByClub = append(stats.ByClub, *stat)
	}
	sort.Slice(stats.ByClub, func(i, j int) bool {
		a, b := stats.ByClub[i], stats.ByClub[j]
		if a.TotalScore != b.TotalScore {
			return a.TotalScore > b.TotalScore
		}
		return a.Club < b.Club
	})
	sort.Slice(stats.Warnings, func(i, j int) bool {
		a, b := stats.Warnings[i], stats.Warnings[j]
		if a.CategoryID != b.CategoryID {
			return a.CategoryID < b.CategoryID
		}
		if a.PoolNumber != b.PoolNumber {
			return a.PoolNumber < b.PoolNumber
		}
		return a.CompetitorID < b.CompetitorID
	})
	return stats, nil
}
