package engine

import (
	"context"

	"arcadeboard/core"
)

// Storage abstracts persistence for guesses and scores. Records are append-only.
// Implementations assign ids and creation timestamps and wrap backend failures
// with core.ErrStorageUnavailable.
type Storage interface {
	CreateGuess(ctx context.Context, g core.NewGuess) (core.Guess, error)
	// ListGuesses returns every guess, newest first. No data is an empty slice.
	ListGuesses(ctx context.Context) ([]core.Guess, error)
	// CreateScore expects s.GameType to be validated by the caller.
	CreateScore(ctx context.Context, s core.NewScore) (core.Score, error)
	// TopScores returns at most limit scores for game, fastest first.
	// A non-positive limit means core.DefaultLimit.
	TopScores(ctx context.Context, game core.GameType, limit int) ([]core.Score, error)
	Ping(ctx context.Context) error
	Close() error
}
