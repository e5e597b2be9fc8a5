package analytics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"arcadeboard/core"
)

// DayLayout is the format of day keys accepted by Activity.Snapshot.
const DayLayout = "2006-01-02"

// Activity tracks who submitted what and when, fed from the event bus.
// Counters live in memory and describe traffic seen by this process.
type Activity struct {
	mu sync.RWMutex

	dailyPlayers   map[string]map[string]struct{}
	weeklyPlayers  map[string]map[string]struct{}
	monthlyPlayers map[string]map[string]struct{}

	guessesByDay map[string]int64
	scoresByDay  map[string]int64
	scoresByGame map[string]map[core.GameType]int64

	totalGuesses int64
	totalScores  int64
}

// ActivitySnapshot is the JSON view of one day of activity.
type ActivitySnapshot struct {
	Day              string                  `json:"day"`
	Week             string                  `json:"week"`
	Month            string                  `json:"month"`
	PlayersToday     int                     `json:"playersToday"`
	PlayersThisWeek  int                     `json:"playersThisWeek"`
	PlayersThisMonth int                     `json:"playersThisMonth"`
	GuessesToday     int64                   `json:"guessesToday"`
	ScoresToday      int64                   `json:"scoresToday"`
	ScoresByGame     map[core.GameType]int64 `json:"scoresByGame"`
	TotalGuesses     int64                   `json:"totalGuesses"`
	TotalScores      int64                   `json:"totalScores"`
}

func NewActivity() *Activity {
	return &Activity{
		dailyPlayers:   make(map[string]map[string]struct{}),
		weeklyPlayers:  make(map[string]map[string]struct{}),
		monthlyPlayers: make(map[string]map[string]struct{}),
		guessesByDay:   make(map[string]int64),
		scoresByDay:    make(map[string]int64),
		scoresByGame:   make(map[string]map[core.GameType]int64),
	}
}

// OnEvent records a submission event. It matches the event bus handler signature.
func (a *Activity) OnEvent(_ context.Context, e core.Event) {
	var (
		player string
		at     time.Time
	)
	switch {
	case e.Guess != nil:
		player, at = e.Guess.PlayerName, e.Guess.CreatedAt
	case e.Score != nil:
		player, at = e.Score.PlayerName, e.Score.CreatedAt
	default:
		return
	}
	if at.IsZero() {
		at = e.Time
	}
	day, week, month := dayKey(at), weekKey(at), monthKey(at)

	a.mu.Lock()
	defer a.mu.Unlock()

	addPlayer(a.dailyPlayers, day, player)
	addPlayer(a.weeklyPlayers, week, player)
	addPlayer(a.monthlyPlayers, month, player)

	if e.Guess != nil {
		a.guessesByDay[day]++
		a.totalGuesses++
		return
	}
	a.scoresByDay[day]++
	a.totalScores++
	if a.scoresByGame[day] == nil {
		a.scoresByGame[day] = make(map[core.GameType]int64)
	}
	a.scoresByGame[day][e.Score.GameType]++
}

// Snapshot returns the counters for the UTC day containing t.
func (a *Activity) Snapshot(t time.Time) ActivitySnapshot {
	day, week, month := dayKey(t), weekKey(t), monthKey(t)

	a.mu.RLock()
	defer a.mu.RUnlock()

	byGame := make(map[core.GameType]int64, len(core.GameTypes()))
	for _, g := range core.GameTypes() {
		byGame[g] = a.scoresByGame[day][g]
	}
	return ActivitySnapshot{
		Day:              day,
		Week:             week,
		Month:            month,
		PlayersToday:     len(a.dailyPlayers[day]),
		PlayersThisWeek:  len(a.weeklyPlayers[week]),
		PlayersThisMonth: len(a.monthlyPlayers[month]),
		GuessesToday:     a.guessesByDay[day],
		ScoresToday:      a.scoresByDay[day],
		ScoresByGame:     byGame,
		TotalGuesses:     a.totalGuesses,
		TotalScores:      a.totalScores,
	}
}

// ParseDay parses a YYYY-MM-DD day key. An empty string means now.
func ParseDay(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now.UTC(), nil
	}
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("day must look like %s: %w", DayLayout, err)
	}
	return t, nil
}

func addPlayer(m map[string]map[string]struct{}, key, player string) {
	if m[key] == nil {
		m[key] = make(map[string]struct{})
	}
	m[key][player] = struct{}{}
}

func dayKey(t time.Time) string { return t.UTC().Format(DayLayout) }

func weekKey(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

func monthKey(t time.Time) string { return t.UTC().Format("2006-01") }
