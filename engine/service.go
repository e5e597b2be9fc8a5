package engine

import (
	"context"

	"arcadeboard/core"
)

// Service validates submissions, stores them and announces them on the event bus.
type Service struct {
	storage Storage
	bus     *EventBus
}

func NewService(storage Storage, bus *EventBus) *Service {
	if storage == nil || bus == nil {
		panic("NewService requires non-nil storage and bus")
	}
	return &Service{storage: storage, bus: bus}
}

// Subscribe convenience method.
func (s *Service) Subscribe(typ core.EventType, handler func(context.Context, core.Event)) func() {
	return s.bus.Subscribe(typ, handler)
}

// SubmitGuess validates and stores a guess.
func (s *Service) SubmitGuess(ctx context.Context, g core.NewGuess) (core.Guess, error) {
	g, err := core.ValidateNewGuess(g)
	if err != nil {
		return core.Guess{}, err
	}
	stored, err := s.storage.CreateGuess(ctx, g)
	if err != nil {
		return core.Guess{}, err
	}
	s.bus.Publish(ctx, core.NewGuessSubmitted(stored))
	return stored, nil
}

func (s *Service) ListGuesses(ctx context.Context) ([]core.Guess, error) {
	return s.storage.ListGuesses(ctx)
}

// SubmitScore validates and stores a game result.
func (s *Service) SubmitScore(ctx context.Context, sc core.NewScore) (core.Score, error) {
	sc, err := core.ValidateNewScore(sc)
	if err != nil {
		return core.Score{}, err
	}
	stored, err := s.storage.CreateScore(ctx, sc)
	if err != nil {
		return core.Score{}, err
	}
	s.bus.Publish(ctx, core.NewScoreSubmitted(stored))
	return stored, nil
}

// TopScores returns the leaderboard for game. Unknown game types have no
// entries, so they yield an empty result rather than an error.
func (s *Service) TopScores(ctx context.Context, game core.GameType, limit int) ([]core.Score, error) {
	if !game.Valid() {
		return []core.Score{}, nil
	}
	if limit <= 0 {
		limit = core.DefaultLimit
	}
	return s.storage.TopScores(ctx, game, limit)
}

// Ping checks that the storage backend answers.
func (s *Service) Ping(ctx context.Context) error { return s.storage.Ping(ctx) }

func (s *Service) Close() { s.bus.Close() }
