package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arcadeboard/core"
)

func TestActivityCounts(t *testing.T) {
	a := NewActivity()
	ctx := context.Background()
	day := time.Date(2025, 6, 4, 9, 0, 0, 0, time.UTC) // Wednesday
	nextDay := day.Add(24 * time.Hour)

	a.OnEvent(ctx, core.NewGuessSubmitted(core.Guess{ID: "g1", PlayerName: "Aino", GuessedNumber: 5, CreatedAt: day}))
	a.OnEvent(ctx, core.NewScoreSubmitted(core.Score{ID: "s1", PlayerName: "Aino", TimeSeconds: 30, GameType: core.GamePuzzle, CreatedAt: day}))
	a.OnEvent(ctx, core.NewScoreSubmitted(core.Score{ID: "s2", PlayerName: "Eero", TimeSeconds: 40, GameType: core.GamePuzzle, CreatedAt: day}))
	a.OnEvent(ctx, core.NewScoreSubmitted(core.Score{ID: "s3", PlayerName: "Helmi", TimeSeconds: 12, GameType: core.GameQuiz, CreatedAt: nextDay}))
	a.OnEvent(ctx, core.Event{Type: "noise"})

	s := a.Snapshot(day)
	assert.Equal(t, "2025-06-04", s.Day)
	assert.Equal(t, "2025-W23", s.Week)
	assert.Equal(t, "2025-06", s.Month)
	assert.Equal(t, 2, s.PlayersToday)
	assert.Equal(t, 3, s.PlayersThisWeek)
	assert.Equal(t, 3, s.PlayersThisMonth)
	assert.Equal(t, int64(1), s.GuessesToday)
	assert.Equal(t, int64(2), s.ScoresToday)
	assert.Equal(t, int64(2), s.ScoresByGame[core.GamePuzzle])
	assert.Equal(t, int64(0), s.ScoresByGame[core.GameQuiz])
	assert.Len(t, s.ScoresByGame, 4)
	assert.Equal(t, int64(1), s.TotalGuesses)
	assert.Equal(t, int64(3), s.TotalScores)

	s = a.Snapshot(nextDay)
	assert.Equal(t, 1, s.PlayersToday)
	assert.Equal(t, int64(1), s.ScoresByGame[core.GameQuiz])
}

func TestParseDay(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	got, err := ParseDay("", now)
	require.NoError(t, err)
	assert.Equal(t, now, got)

	got, err = ParseDay("2024-12-31", now)
	require.NoError(t, err)
	assert.Equal(t, "2024-12-31", dayKey(got))

	_, err = ParseDay("31.12.2024", now)
	assert.Error(t, err)
}
