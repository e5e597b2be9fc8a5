package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"arcadeboard/core"
	"arcadeboard/engine"
	"arcadeboard/leaderboard"
)

// Store is a concurrent in-memory Storage implementation. Its contents live
// for the lifetime of the process and are lost on restart.
type Store struct {
	mu      sync.RWMutex
	guesses map[string]core.Guess
	scores  map[string]core.Score
	boards  map[core.GameType]*leaderboard.SkipList
	clock   *core.Stamper
}

func New() *Store {
	return &Store{
		guesses: map[string]core.Guess{},
		scores:  map[string]core.Score{},
		boards:  map[core.GameType]*leaderboard.SkipList{},
		clock:   core.NewStamper(nil),
	}
}

func (s *Store) CreateGuess(_ context.Context, g core.NewGuess) (core.Guess, error) {
	rec := core.Guess{
		ID:            uuid.NewString(),
		PlayerName:    g.PlayerName,
		GuessedNumber: g.GuessedNumber,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.CreatedAt = s.clock.Next()
	s.guesses[rec.ID] = rec
	return rec, nil
}

func (s *Store) ListGuesses(_ context.Context) ([]core.Guess, error) {
	s.mu.RLock()
	out := make([]core.Guess, 0, len(s.guesses))
	for _, g := range s.guesses {
		out = append(out, g)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].NewerThan(out[j]) })
	return out, nil
}

func (s *Store) CreateScore(_ context.Context, sc core.NewScore) (core.Score, error) {
	rec := core.Score{
		ID:          uuid.NewString(),
		PlayerName:  sc.PlayerName,
		TimeSeconds: sc.TimeSeconds,
		GameType:    sc.GameType,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.CreatedAt = s.clock.Next()
	s.scores[rec.ID] = rec
	board, ok := s.boards[rec.GameType]
	if !ok {
		board = leaderboard.NewSkipList()
		s.boards[rec.GameType] = board
	}
	board.Insert(rec)
	return rec, nil
}

func (s *Store) TopScores(_ context.Context, game core.GameType, limit int) ([]core.Score, error) {
	if limit <= 0 {
		limit = core.DefaultLimit
	}
	s.mu.RLock()
	board, ok := s.boards[game]
	s.mu.RUnlock()
	if !ok {
		return []core.Score{}, nil
	}
	return board.TopN(limit), nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

var _ engine.Storage = (*Store)(nil)
