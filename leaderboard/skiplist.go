package leaderboard

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"sync"

	"arcadeboard/core"
)

// A skip list ordered by core.Score.RanksBefore (fastest first) giving
// O(log n) inserts and O(n) reads of the top entries.

const maxLevel = 16
const pFactor = 0.25

type node struct {
	s    core.Score
	next [maxLevel]*node
}

type SkipList struct {
	mu   sync.RWMutex
	head *node
	lvl  int
	ids  map[string]struct{}
	rng  *rand.Rand
}

func NewSkipList() *SkipList {
	var seed [16]byte
	if _, err := cryptorand.Read(seed[:]); err != nil {
		seed = [16]byte{}
	}
	seed1 := binary.BigEndian.Uint64(seed[:8])
	seed2 := binary.BigEndian.Uint64(seed[8:])

	return &SkipList{
		head: &node{},
		lvl:  1,
		ids:  map[string]struct{}{},
		rng:  rand.New(rand.NewPCG(seed1, seed2)),
	}
}

func (l *SkipList) randomLevel() int {
	lvl := 1
	for lvl < maxLevel && l.rng.Float64() < pFactor {
		lvl++
	}
	return lvl
}

// Insert adds s in rank order. Inserting an id twice is a no-op.
func (l *SkipList) Insert(s core.Score) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.ids[s.ID]; ok {
		return
	}
	update := [maxLevel]*node{}
	cur := l.head
	for i := l.lvl - 1; i >= 0; i-- {
		for cur.next[i] != nil && cur.next[i].s.RanksBefore(s) {
			cur = cur.next[i]
		}
		update[i] = cur
	}
	lvl := l.randomLevel()
	if lvl > l.lvl {
		for i := l.lvl; i < lvl; i++ {
			update[i] = l.head
		}
		l.lvl = lvl
	}
	n := &node{s: s}
	for i := 0; i < lvl; i++ {
		n.next[i] = update[i].next[i]
		update[i].next[i] = n
	}
	l.ids[s.ID] = struct{}{}
}

// TopN returns up to n entries, fastest first.
func (l *SkipList) TopN(n int) []core.Score {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if n <= 0 {
		return []core.Score{}
	}
	if n > len(l.ids) {
		n = len(l.ids)
	}
	out := make([]core.Score, 0, n)
	cur := l.head.next[0]
	for cur != nil && len(out) < n {
		out = append(out, cur.s)
		cur = cur.next[0]
	}
	return out
}

func (l *SkipList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.ids)
}

var _ Board = (*SkipList)(nil)
