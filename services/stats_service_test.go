package services

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestClubStats(t *testing.T) {
	f := newPoolFixture(t)
	f.store.addBout(f.category, f.a, f.b, 10, 0, intPtr(f.a))
	excluded := f.store.addCategory("Baby judo", false)
	f.store.addCompetitor(excluded, "Hidden", "Montlebon", 18, 1)

	stats, err := NewStatsService(f.store.loader(2)).ClubStats(context.Background())
	require.NoError(t, err)

	wantClubs := []ClubStat{
		{Club: "Montlebon", Competitors: 2, Victories: 1, TotalScore: 10},
		{Club: "Morteau", Competitors: 2},
		{Club: "Pontarlier", Competitors: 1},
	}
	if diff := cmp.Diff(wantClubs, stats.ByClub); diff != "" {
		t.Errorf("ByClub mismatch (-want +got):\n%s", diff)
	}

	var warned []int
	for _, w := range stats.Warnings {
		warned = append(warned, w.CompetitorID)
	}
	if diff := cmp.Diff([]int{f.c, f.d, f.e}, warned); diff != "" {
		t.Errorf("warnings mismatch (-want +got):\n%s", diff)
	}
}

func TestClubStatsEmpty(t *testing.T) {
	stats, err := NewStatsService(newMemStore().loader(1)).ClubStats(context.Background())
	require.NoError(t, err)
	require.NotNil(t, stats.ByClub)
	require.Empty(t, stats.ByClub)
	require.Empty(t, stats.Warnings)
}
