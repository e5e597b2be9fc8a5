package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"

	"arcadeboard/core"
	"arcadeboard/leaderboard"
)

// Store persists every guess and score to a single JSON file.
// Suitable for demos and small deployments.
type Store struct {
	path string
	mu   sync.Mutex
	// in-memory cache for speed
	guesses []core.Guess
	scores  []core.Score
	boards  map[core.GameType]*leaderboard.SkipList
	clock   *core.Stamper
}

type document struct {
	Guesses []core.Guess `json:"guesses"`
	Scores  []core.Score `json:"scores"`
}

func New(path string) (*Store, error) {
	s := &Store{
		path:   path,
		boards: map[core.GameType]*leaderboard.SkipList{},
		clock:  core.NewStamper(nil),
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, core.Unavailable("create data dir", err)
	}
	if err := s.load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, core.Unavailable("load "+path, err)
		}
	}
	return s, nil
}

func (s *Store) load() error {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	var doc document
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	s.guesses = doc.Guesses
	for _, g := range doc.Guesses {
		s.clock.Observe(g.CreatedAt)
	}
	s.scores = doc.Scores
	for _, sc := range doc.Scores {
		s.clock.Observe(sc.CreatedAt)
		s.board(sc.GameType).Insert(sc)
	}
	return nil
}

func (s *Store) persist() error {
	tmp := s.path + ".tmp"
	doc := document{Guesses: s.guesses, Scores: s.scores}
	if doc.Guesses == nil {
		doc.Guesses = []core.Guess{}
	}
	if doc.Scores == nil {
		doc.Scores = []core.Score{}
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *Store) board(game core.GameType) *leaderboard.SkipList {
	b, ok := s.boards[game]
	if !ok {
		b = leaderboard.NewSkipList()
		s.boards[game] = b
	}
	return b
}

func (s *Store) CreateGuess(_ context.Context, g core.NewGuess) (core.Guess, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := core.Guess{
		ID:            uuid.NewString(),
		PlayerName:    g.PlayerName,
		GuessedNumber: g.GuessedNumber,
		CreatedAt:     s.clock.Next(),
	}
	s.guesses = append(s.guesses, rec)
	if err := s.persist(); err != nil {
		s.guesses = s.guesses[:len(s.guesses)-1]
		return core.Guess{}, core.Unavailable("persist guess", err)
	}
	return rec, nil
}

func (s *Store) ListGuesses(_ context.Context) ([]core.Guess, error) {
	s.mu.Lock()
	out := make([]core.Guess, len(s.guesses))
	copy(out, s.guesses)
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].NewerThan(out[j]) })
	return out, nil
}

func (s *Store) CreateScore(_ context.Context, sc core.NewScore) (core.Score, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := core.Score{
		ID:          uuid.NewString(),
		PlayerName:  sc.PlayerName,
		TimeSeconds: sc.TimeSeconds,
		GameType:    sc.GameType,
		CreatedAt:   s.clock.Next(),
	}
	s.scores = append(s.scores, rec)
	if err := s.persist(); err != nil {
		s.scores = s.scores[:len(s.scores)-1]
		return core.Score{}, core.Unavailable("persist score", err)
	}
	s.board(rec.GameType).Insert(rec)
	return rec, nil
}

func (s *Store) TopScores(_ context.Context, game core.GameType, limit int) ([]core.Score, error) {
	if limit <= 0 {
		limit = core.DefaultLimit
	}
	s.mu.Lock()
	b, ok := s.boards[game]
	s.mu.Unlock()
	if !ok {
		return []core.Score{}, nil
	}
	return b.TopN(limit), nil
}

// Ping reports whether the data directory is still reachable.
func (s *Store) Ping(context.Context) error {
	if _, err := os.Stat(filepath.Dir(s.path)); err != nil {
		return core.Unavailable("ping", err)
	}
	return nil
}

func (s *Store) Close() error { return nil }
