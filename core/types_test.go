package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestGuessInputValidate(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		want    int64
		wantErr string
	}{
		{"integer", `{"playerName":"  Aino ","guessedNumber":42}`, 42, ""},
		{"zero", `{"playerName":"Aino","guessedNumber":0}`, 0, ""},
		{"numeric string", `{"playerName":"Aino","guessedNumber":"17"}`, 17, ""},
		{"integral float", `{"playerName":"Aino","guessedNumber":12.0}`, 12, ""},
		{"negative", `{"playerName":"Aino","guessedNumber":-1}`, 0, "guessedNumber"},
		{"fraction", `{"playerName":"Aino","guessedNumber":1.5}`, 0, "guessedNumber"},
		{"non numeric", `{"playerName":"Aino","guessedNumber":"abc"}`, 0, "guessedNumber"},
		{"bool", `{"playerName":"Aino","guessedNumber":true}`, 0, "guessedNumber"},
		{"missing number", `{"playerName":"Aino"}`, 0, "guessedNumber"},
		{"null number", `{"playerName":"Aino","guessedNumber":null}`, 0, "guessedNumber"},
		{"blank name", `{"playerName":"   ","guessedNumber":3}`, 0, "playerName"},
		{"missing name", `{"guessedNumber":3}`, 0, "playerName"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var in GuessInput
			if err := json.Unmarshal([]byte(tc.body), &in); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			g, err := in.Validate()
			if tc.wantErr != "" {
				var ve *ValidationError
				if !errors.As(err, &ve) || ve.Field != tc.wantErr {
					t.Fatalf("expected validation error on %s, got %v", tc.wantErr, err)
				}
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("expected ErrValidation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if g.GuessedNumber != tc.want || g.PlayerName != "Aino" {
				t.Fatalf("unexpected guess: %+v", g)
			}
		})
	}
}

func TestScoreInputValidate(t *testing.T) {
	in := ScoreInput{PlayerName: "B", TimeSeconds: json.RawMessage(`90`), GameType: "puzzle"}
	s, err := in.Validate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.GameType != GamePuzzle || s.TimeSeconds != 90 {
		t.Fatalf("unexpected score: %+v", s)
	}

	in.GameType = "invalid-type"
	if _, err := in.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for unknown game type, got %v", err)
	}

	in.GameType = "Puzzle"
	if _, err := in.Validate(); err == nil {
		t.Fatal("game type match must be exact")
	}

	in = ScoreInput{PlayerName: "B", TimeSeconds: json.RawMessage(`-5`), GameType: "quiz"}
	if _, err := in.Validate(); err == nil {
		t.Fatal("expected error for negative time")
	}
}

func TestValidateTypedInputs(t *testing.T) {
	if _, err := ValidateNewGuess(NewGuess{PlayerName: "x", GuessedNumber: -1}); err == nil {
		t.Fatal("expected error for negative guess")
	}
	if _, err := ValidateNewScore(NewScore{PlayerName: "x", TimeSeconds: 1, GameType: "chess"}); err == nil {
		t.Fatal("expected error for unknown game")
	}
	s, err := ValidateNewScore(NewScore{PlayerName: " x ", TimeSeconds: 1, GameType: GameNutSort})
	if err != nil || s.PlayerName != "x" {
		t.Fatalf("got %+v %v", s, err)
	}
}

func TestParseLimit(t *testing.T) {
	cases := map[string]int{
		"":                        DefaultLimit,
		"abc":                     DefaultLimit,
		"0":                       DefaultLimit,
		"-3":                      DefaultLimit,
		"-":                       DefaultLimit,
		"px3":                     DefaultLimit,
		"5":                       5,
		" 7 ":                     7,
		"+4":                      4,
		"12abc":                   12,
		"5.5":                     5,
		"3px":                     3,
		"500":                     100,
		"99999999999999999999999": 100,
	}
	for raw, want := range cases {
		if got := ParseLimit(raw, 100); got != want {
			t.Fatalf("ParseLimit(%q) = %d, want %d", raw, got, want)
		}
	}
	if got := ParseLimit("500", 0); got != 500 {
		t.Fatalf("uncapped limit: got %d", got)
	}
}

func TestGameTypes(t *testing.T) {
	for _, g := range GameTypes() {
		if _, err := ParseGameType(string(g)); err != nil {
			t.Fatalf("%s should be valid: %v", g, err)
		}
	}
	if GameType("").Valid() {
		t.Fatal("empty game type must be invalid")
	}
}

func TestStamperStrictlyIncreasing(t *testing.T) {
	fixed := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewStamper(func() time.Time { return fixed })
	a := s.Next()
	b := s.Next()
	if !b.After(a) {
		t.Fatalf("expected %v after %v", b, a)
	}
	if b.Sub(a) != TimestampResolution {
		t.Fatalf("unexpected step %v", b.Sub(a))
	}
}

func TestStamperObserve(t *testing.T) {
	fixed := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewStamper(func() time.Time { return fixed })
	later := fixed.Add(time.Hour)
	s.Observe(later)
	if next := s.Next(); !next.After(later) {
		t.Fatalf("expected stamp after %v, got %v", later, next)
	}
}

func TestScoreOrdering(t *testing.T) {
	t0 := time.Now()
	fast := Score{ID: "b", TimeSeconds: 90, CreatedAt: t0}
	slow := Score{ID: "a", TimeSeconds: 120, CreatedAt: t0}
	if !fast.RanksBefore(slow) || slow.RanksBefore(fast) {
		t.Fatal("faster time must rank first")
	}
	earlier := Score{ID: "z", TimeSeconds: 90, CreatedAt: t0.Add(-time.Second)}
	if !earlier.RanksBefore(fast) {
		t.Fatal("earlier submission must win a tie")
	}
}
