package metrics

import (
	"context"
	"time"

	"arcadeboard/core"
	"arcadeboard/engine"
)

type instrumentedStorage struct {
	next engine.Storage
	m    *Manager
}

// InstrumentStorage wraps s so every call is timed and failures counted.
// A nil Manager returns s unchanged.
func InstrumentStorage(s engine.Storage, m *Manager) engine.Storage {
	if m == nil {
		return s
	}
	return &instrumentedStorage{next: s, m: m}
}

func (i *instrumentedStorage) observe(op string, start time.Time, err error) {
	i.m.RecordStorageOperation(op, time.Since(start), err)
}

func (i *instrumentedStorage) CreateGuess(ctx context.Context, g core.NewGuess) (rec core.Guess, err error) {
	defer func(start time.Time) { i.observe("create_guess", start, err) }(time.Now())
	return i.next.CreateGuess(ctx, g)
}

func (i *instrumentedStorage) ListGuesses(ctx context.Context) (out []core.Guess, err error) {
	defer func(start time.Time) { i.observe("list_guesses", start, err) }(time.Now())
	return i.next.ListGuesses(ctx)
}

func (i *instrumentedStorage) CreateScore(ctx context.Context, s core.NewScore) (rec core.Score, err error) {
	defer func(start time.Time) { i.observe("create_score", start, err) }(time.Now())
	return i.next.CreateScore(ctx, s)
}

func (i *instrumentedStorage) TopScores(ctx context.Context, game core.GameType, limit int) (out []core.Score, err error) {
	defer func(start time.Time) { i.observe("top_scores", start, err) }(time.Now())
	return i.next.TopScores(ctx, game, limit)
}

func (i *instrumentedStorage) Ping(ctx context.Context) (err error) {
	defer func(start time.Time) { i.observe("ping", start, err) }(time.Now())
	return i.next.Ping(ctx)
}

func (i *instrumentedStorage) Close() error { return i.next.Close() }
