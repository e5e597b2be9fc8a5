package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arcadeboard/core"
)

func TestCreateGuessAssignsIdentity(t *testing.T) {
	s := New()
	ctx := context.Background()
	a, err := s.CreateGuess(ctx, core.NewGuess{PlayerName: "Aino", GuessedNumber: 1200})
	require.NoError(t, err)
	b, err := s.CreateGuess(ctx, core.NewGuess{PlayerName: "Eero", GuessedNumber: 1200})
	require.NoError(t, err)

	assert.Equal(t, int64(1200), a.GuessedNumber)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.CreatedAt.IsZero())
	assert.True(t, b.CreatedAt.After(a.CreatedAt))
}

func TestListGuessesNewestFirst(t *testing.T) {
	s := New()
	ctx := context.Background()

	empty, err := s.ListGuesses(ctx)
	require.NoError(t, err)
	require.NotNil(t, empty)
	assert.Len(t, empty, 0)

	const n = 25
	for i := 0; i < n; i++ {
		_, err := s.CreateGuess(ctx, core.NewGuess{PlayerName: "p", GuessedNumber: int64(i)})
		require.NoError(t, err)
	}
	list, err := s.ListGuesses(ctx)
	require.NoError(t, err)
	require.Len(t, list, n)
	for i := 1; i < len(list); i++ {
		assert.True(t, list[i-1].CreatedAt.After(list[i].CreatedAt), "index %d not strictly descending", i)
	}
	assert.Equal(t, int64(n-1), list[0].GuessedNumber)
}

func TestTopScoresScopedAndOrdered(t *testing.T) {
	s := New()
	ctx := context.Background()
	for _, sc := range []core.NewScore{
		{PlayerName: "A", TimeSeconds: 120, GameType: core.GamePuzzle},
		{PlayerName: "B", TimeSeconds: 90, GameType: core.GamePuzzle},
		{PlayerName: "C", TimeSeconds: 150, GameType: core.GameMemory},
	} {
		_, err := s.CreateScore(ctx, sc)
		require.NoError(t, err)
	}

	puzzle, err := s.TopScores(ctx, core.GamePuzzle, 10)
	require.NoError(t, err)
	require.Len(t, puzzle, 2)
	assert.Equal(t, "B", puzzle[0].PlayerName)
	assert.Equal(t, "A", puzzle[1].PlayerName)

	memory, err := s.TopScores(ctx, core.GameMemory, 10)
	require.NoError(t, err)
	require.Len(t, memory, 1)
	assert.Equal(t, "C", memory[0].PlayerName)

	quiz, err := s.TopScores(ctx, core.GameQuiz, 10)
	require.NoError(t, err)
	assert.NotNil(t, quiz)
	assert.Empty(t, quiz)
}

func TestTopScoresLimit(t *testing.T) {
	s := New()
	ctx := context.Background()
	for i := 0; i < 15; i++ {
		_, err := s.CreateScore(ctx, core.NewScore{PlayerName: "p", TimeSeconds: int64(100 - i), GameType: core.GameQuiz})
		require.NoError(t, err)
	}
	top, err := s.TopScores(ctx, core.GameQuiz, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, int64(86), top[0].TimeSeconds)

	def, err := s.TopScores(ctx, core.GameQuiz, 0)
	require.NoError(t, err)
	assert.Len(t, def, core.DefaultLimit)
	for i := 1; i < len(def); i++ {
		assert.LessOrEqual(t, def[i-1].TimeSeconds, def[i].TimeSeconds)
	}
}

func TestConcurrentCreates(t *testing.T) {
	s := New()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, _ = s.CreateGuess(ctx, core.NewGuess{PlayerName: "p", GuessedNumber: int64(i)})
		}(i)
		go func(i int) {
			defer wg.Done()
			_, _ = s.CreateScore(ctx, core.NewScore{PlayerName: "p", TimeSeconds: int64(i), GameType: core.GameNutSort})
		}(i)
	}
	wg.Wait()

	guesses, _ := s.ListGuesses(ctx)
	assert.Len(t, guesses, 50)
	top, _ := s.TopScores(ctx, core.GameNutSort, 100)
	assert.Len(t, top, 50)
}

func TestRestartClearsRecords(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, err := s.CreateGuess(ctx, core.NewGuess{PlayerName: "p", GuessedNumber: 1})
	require.NoError(t, err)

	restarted := New()
	list, err := restarted.ListGuesses(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
