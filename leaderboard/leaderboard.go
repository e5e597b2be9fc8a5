package leaderboard

import "arcadeboard/core"

// Board is an ordered leaderboard index for one game type.
// Entries are immutable once inserted.
type Board interface {
	Insert(s core.Score)
	TopN(n int) []core.Score
	Len() int
}
