package core

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// GuessInput is the raw submit-guess payload as received from clients.
type GuessInput struct {
	PlayerName    string          `json:"playerName"`
	GuessedNumber json.RawMessage `json:"guessedNumber"`
}

// ScoreInput is the raw submit-score payload as received from clients.
type ScoreInput struct {
	PlayerName  string          `json:"playerName"`
	TimeSeconds json.RawMessage `json:"timeSeconds"`
	GameType    string          `json:"gameType"`
}

// Validate converts the payload into a NewGuess or returns a *ValidationError.
func (in GuessInput) Validate() (NewGuess, error) {
	name, err := NormalizePlayerName(in.PlayerName)
	if err != nil {
		return NewGuess{}, err
	}
	n, err := parseCount("guessedNumber", in.GuessedNumber)
	if err != nil {
		return NewGuess{}, err
	}
	return NewGuess{PlayerName: name, GuessedNumber: n}, nil
}

// Validate converts the payload into a NewScore or returns a *ValidationError.
func (in ScoreInput) Validate() (NewScore, error) {
	name, err := NormalizePlayerName(in.PlayerName)
	if err != nil {
		return NewScore{}, err
	}
	secs, err := parseCount("timeSeconds", in.TimeSeconds)
	if err != nil {
		return NewScore{}, err
	}
	game, err := ParseGameType(in.GameType)
	if err != nil {
		return NewScore{}, err
	}
	return NewScore{PlayerName: name, TimeSeconds: secs, GameType: game}, nil
}

// ValidateNewGuess checks an already typed guess, for callers that bypass JSON.
func ValidateNewGuess(g NewGuess) (NewGuess, error) {
	name, err := NormalizePlayerName(g.PlayerName)
	if err != nil {
		return NewGuess{}, err
	}
	if g.GuessedNumber < 0 {
		return NewGuess{}, invalid("guessedNumber", "must be >= 0")
	}
	return NewGuess{PlayerName: name, GuessedNumber: g.GuessedNumber}, nil
}

// ValidateNewScore checks an already typed score, for callers that bypass JSON.
func ValidateNewScore(s NewScore) (NewScore, error) {
	name, err := NormalizePlayerName(s.PlayerName)
	if err != nil {
		return NewScore{}, err
	}
	if s.TimeSeconds < 0 {
		return NewScore{}, invalid("timeSeconds", "must be >= 0")
	}
	if !s.GameType.Valid() {
		return NewScore{}, invalid("gameType", "must be one of "+gameTypeList())
	}
	return NewScore{PlayerName: name, TimeSeconds: s.TimeSeconds, GameType: s.GameType}, nil
}

// NormalizePlayerName trims surrounding whitespace and rejects empty names.
func NormalizePlayerName(name string) (string, error) {
	s := strings.TrimSpace(name)
	if s == "" {
		return "", invalid("playerName", "is required")
	}
	return s, nil
}

// ParseLimit reads a leaderboard limit. Like a lenient form parser it uses
// the leading base-10 integer and ignores what follows, so "12abc" and "5.5"
// read as 12 and 5. Absent, non-numeric and non-positive values fall back to
// DefaultLimit; max > 0 caps the result.
func ParseLimit(raw string, max int) int {
	n, ok := leadingInt(strings.TrimSpace(raw))
	if !ok || n <= 0 {
		n = DefaultLimit
	}
	if max > 0 && n > max {
		n = max
	}
	return n
}

// leadingInt parses an optional sign followed by at least one digit at the
// start of s. Values beyond the int range saturate.
func leadingInt(s string) (int, bool) {
	i, neg := 0, false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}
	start := i
	n := 0
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		if n > (math.MaxInt-9)/10 {
			n = math.MaxInt
			continue
		}
		n = n*10 + int(s[i]-'0')
	}
	if i == start {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

// parseCount accepts a JSON integer or a string holding one. Integral floats
// such as 12.0 are accepted; fractions, negatives and other types are not.
func parseCount(field string, raw json.RawMessage) (int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, invalid(field, "is required")
	}
	s := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, invalid(field, "must be an integer")
		}
		s = strings.TrimSpace(s)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || math.IsInf(f, 0) || f != math.Trunc(f) || f >= math.MaxInt64 || f <= math.MinInt64 {
			return 0, invalid(field, "must be an integer")
		}
		n = int64(f)
	}
	if n < 0 {
		return 0, invalid(field, "must be >= 0")
	}
	return n, nil
}
