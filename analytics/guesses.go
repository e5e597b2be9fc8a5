// Package analytics derives summary statistics from stored submissions.
package analytics

import (
	"math"
	"sort"
	"time"

	"arcadeboard/core"
)

// DistributionSize is how many of the most guessed numbers a summary keeps.
const DistributionSize = 10

// NumberCount is how many guesses picked one number.
type NumberCount struct {
	GuessedNumber int64 `json:"guessedNumber"`
	Count         int   `json:"count"`
}

// GuessSummary aggregates the guess list shown on the stats page.
type GuessSummary struct {
	Total         int           `json:"total"`
	Average       int64         `json:"average"`
	Min           int64         `json:"min"`
	Max           int64         `json:"max"`
	UniquePlayers int           `json:"uniquePlayers"`
	Earliest      *time.Time    `json:"earliest"`
	Latest        *time.Time    `json:"latest"`
	Distribution  []NumberCount `json:"distribution"`
}

// SummarizeGuesses computes totals over guesses in any order. The average is
// rounded half up. Player names are counted as stored, so "Aino" and "aino"
// are different players. Distribution holds the DistributionSize most common
// numbers, most common first, smaller number first on equal counts.
func SummarizeGuesses(guesses []core.Guess) GuessSummary {
	sum := GuessSummary{Total: len(guesses), Distribution: []NumberCount{}}
	if len(guesses) == 0 {
		return sum
	}

	var total float64
	players := make(map[string]struct{}, len(guesses))
	counts := make(map[int64]int)
	earliest, latest := guesses[0].CreatedAt, guesses[0].CreatedAt
	sum.Min, sum.Max = guesses[0].GuessedNumber, guesses[0].GuessedNumber

	for _, g := range guesses {
		total += float64(g.GuessedNumber)
		if g.GuessedNumber < sum.Min {
			sum.Min = g.GuessedNumber
		}
		if g.GuessedNumber > sum.Max {
			sum.Max = g.GuessedNumber
		}
		if g.CreatedAt.Before(earliest) {
			earliest = g.CreatedAt
		}
		if g.CreatedAt.After(latest) {
			latest = g.CreatedAt
		}
		players[g.PlayerName] = struct{}{}
		counts[g.GuessedNumber]++
	}

	sum.Average = int64(math.Floor(total/float64(len(guesses)) + 0.5))
	sum.UniquePlayers = len(players)
	sum.Earliest, sum.Latest = &earliest, &latest

	dist := make([]NumberCount, 0, len(counts))
	for n, c := range counts {
		dist = append(dist, NumberCount{GuessedNumber: n, Count: c})
	}
	sort.Slice(dist, func(i, j int) bool {
		if dist[i].Count != dist[j].Count {
			return dist[i].Count > dist[j].Count
		}
		return dist[i].GuessedNumber < dist[j].GuessedNumber
	})
	if len(dist) > DistributionSize {
		dist = dist[:DistributionSize]
	}
	sum.Distribution = dist
	return sum
}
