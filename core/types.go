package core

import (
	"strings"
	"time"
)

// GameType is the fixed category tag that scopes leaderboard queries.
type GameType string

const (
	GamePuzzle  GameType = "puzzle"
	GameNutSort GameType = "nut-sort"
	GameMemory  GameType = "memory"
	GameQuiz    GameType = "quiz"
)

// DefaultLimit is the leaderboard size used when the caller gives none.
const DefaultLimit = 10

// GameTypes returns the supported game types in display order.
func GameTypes() []GameType {
	return []GameType{GamePuzzle, GameNutSort, GameMemory, GameQuiz}
}

// Valid reports whether g is one of the supported game types.
func (g GameType) Valid() bool {
	switch g {
	case GamePuzzle, GameNutSort, GameMemory, GameQuiz:
		return true
	}
	return false
}

// ParseGameType matches s exactly against the supported game types.
func ParseGameType(s string) (GameType, error) {
	g := GameType(s)
	if !g.Valid() {
		return "", invalid("gameType", "must be one of "+gameTypeList())
	}
	return g, nil
}

func gameTypeList() string {
	names := make([]string, 0, 4)
	for _, g := range GameTypes() {
		names = append(names, string(g))
	}
	return strings.Join(names, ", ")
}

// NewGuess is a validated guess submission that has not been stored yet.
type NewGuess struct {
	PlayerName    string
	GuessedNumber int64
}

// Guess is a stored live-event prediction. Guesses are never updated.
type Guess struct {
	ID            string    `json:"id"`
	PlayerName    string    `json:"playerName"`
	GuessedNumber int64     `json:"guessedNumber"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NewScore is a validated game result that has not been stored yet.
type NewScore struct {
	PlayerName  string
	TimeSeconds int64
	GameType    GameType
}

// Score is a stored game result. Lower TimeSeconds ranks higher.
type Score struct {
	ID          string    `json:"id"`
	PlayerName  string    `json:"playerName"`
	TimeSeconds int64     `json:"timeSeconds"`
	GameType    GameType  `json:"gameType"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RanksBefore orders scores fastest first, then by submission time, then by id.
func (s Score) RanksBefore(o Score) bool {
	if s.TimeSeconds != o.TimeSeconds {
		return s.TimeSeconds < o.TimeSeconds
	}
	if !s.CreatedAt.Equal(o.CreatedAt) {
		return s.CreatedAt.Before(o.CreatedAt)
	}
	return s.ID < o.ID
}

// NewerThan orders guesses newest first, with id as the tie breaker.
func (g Guess) NewerThan(o Guess) bool {
	if !g.CreatedAt.Equal(o.CreatedAt) {
		return g.CreatedAt.After(o.CreatedAt)
	}
	return g.ID > o.ID
}
