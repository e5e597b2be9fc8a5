package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"arcadeboard/core"
)

// Config holds Redis connection configuration
type Config struct {
	Addr         string        `json:"addr" env:"ARCADEBOARD_STORAGE_REDIS_ADDR"`
	Password     string        `json:"password" env:"ARCADEBOARD_STORAGE_REDIS_PASSWORD"`
	DB           int           `json:"db" env:"ARCADEBOARD_STORAGE_REDIS_DB"`
	KeyPrefix    string        `json:"key_prefix" env:"ARCADEBOARD_STORAGE_REDIS_KEY_PREFIX"`
	PoolSize     int           `json:"pool_size" env:"ARCADEBOARD_STORAGE_REDIS_POOL_SIZE"`
	MinIdleConns int           `json:"min_idle_conns" env:"ARCADEBOARD_STORAGE_REDIS_MIN_IDLE_CONNS"`
	DialTimeout  time.Duration `json:"dial_timeout" env:"ARCADEBOARD_STORAGE_REDIS_DIAL_TIMEOUT"`
	ReadTimeout  time.Duration `json:"read_timeout" env:"ARCADEBOARD_STORAGE_REDIS_READ_TIMEOUT"`
	WriteTimeout time.Duration `json:"write_timeout" env:"ARCADEBOARD_STORAGE_REDIS_WRITE_TIMEOUT"`
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:6379",
		Password:     "",
		DB:           0,
		KeyPrefix:    "arcadeboard:",
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Store implements the engine.Storage interface using Redis as the backend.
// Data structure (all keys carry the configured prefix):
// - guess:{id} -> JSON blob of the guess
// - guesses:by_created -> zset of guess ids scored by creation time in microseconds
// - score:{id} -> JSON blob of the score
// - scores:{gameType} -> zset scored by time_seconds; members are "{created micros}:{id}"
//
// Zset members with equal scores sort lexicographically, so the zero padded
// creation time in the member breaks leaderboard ties oldest first.
type Store struct {
	client *redis.Client
	prefix string
	clock  *core.Stamper
}

// New creates a new Redis-backed storage with the provided configuration
func New(config Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, core.Unavailable("connect to redis", err)
	}

	return newStore(client, config.KeyPrefix), nil
}

// NewWithClient creates a Store using an existing Redis client (useful for testing)
func NewWithClient(client *redis.Client) *Store {
	return newStore(client, DefaultConfig().KeyPrefix)
}

func newStore(client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix, clock: core.NewStamper(nil)}
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}

// Ping checks the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return core.Unavailable("ping", err)
	}
	return nil
}

func (s *Store) guessKey(id string) string { return s.prefix + "guess:" + id }

func (s *Store) guessIndexKey() string { return s.prefix + "guesses:by_created" }

func (s *Store) scoreKey(id string) string { return s.prefix + "score:" + id }

func (s *Store) boardKey(game core.GameType) string { return s.prefix + "scores:" + string(game) }

func boardMember(sc core.Score) string {
	return fmt.Sprintf("%020d:%s", sc.CreatedAt.UnixMicro(), sc.ID)
}

// Record and index are written together so a reader never sees an index
// entry without its blob.
var createScript = redis.NewScript(`
	redis.call('SET', KEYS[1], ARGV[1])
	redis.call('ZADD', KEYS[2], ARGV[2], ARGV[3])
	return 1
`)

func (s *Store) CreateGuess(ctx context.Context, g core.NewGuess) (core.Guess, error) {
	rec := core.Guess{
		ID:            uuid.NewString(),
		PlayerName:    g.PlayerName,
		GuessedNumber: g.GuessedNumber,
		CreatedAt:     s.clock.Next(),
	}
	blob, err := json.Marshal(rec)
	if err != nil {
		return core.Guess{}, fmt.Errorf("marshal guess: %w", err)
	}
	keys := []string{s.guessKey(rec.ID), s.guessIndexKey()}
	if err := createScript.Run(ctx, s.client, keys, blob, rec.CreatedAt.UnixMicro(), rec.ID).Err(); err != nil {
		return core.Guess{}, core.Unavailable("insert guess", err)
	}
	return rec, nil
}

func (s *Store) ListGuesses(ctx context.Context) ([]core.Guess, error) {
	ids, err := s.client.ZRevRange(ctx, s.guessIndexKey(), 0, -1).Result()
	if err != nil {
		return nil, core.Unavailable("list guesses", err)
	}
	out := make([]core.Guess, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.guessKey(id)
	}
	blobs, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, core.Unavailable("list guesses", err)
	}
	for _, b := range blobs {
		str, ok := b.(string)
		if !ok {
			continue
		}
		var g core.Guess
		if err := json.Unmarshal([]byte(str), &g); err != nil {
			return nil, core.Unavailable("decode guess", err)
		}
		out = append(out, g)
	}
	return out, nil
}

func (s *Store) CreateScore(ctx context.Context, sc core.NewScore) (core.Score, error) {
	rec := core.Score{
		ID:          uuid.NewString(),
		PlayerName:  sc.PlayerName,
		TimeSeconds: sc.TimeSeconds,
		GameType:    sc.GameType,
		CreatedAt:   s.clock.Next(),
	}
	blob, err := json.Marshal(rec)
	if err != nil {
		return core.Score{}, fmt.Errorf("marshal score: %w", err)
	}
	keys := []string{s.scoreKey(rec.ID), s.boardKey(rec.GameType)}
	if err := createScript.Run(ctx, s.client, keys, blob, rec.TimeSeconds, boardMember(rec)).Err(); err != nil {
		return core.Score{}, core.Unavailable("insert score", err)
	}
	return rec, nil
}

func (s *Store) TopScores(ctx context.Context, game core.GameType, limit int) ([]core.Score, error) {
	if limit <= 0 {
		limit = core.DefaultLimit
	}
	members, err := s.client.ZRange(ctx, s.boardKey(game), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, core.Unavailable("top scores", err)
	}
	out := make([]core.Score, 0, len(members))
	if len(members) == 0 {
		return out, nil
	}
	keys := make([]string, len(members))
	for i, m := range members {
		keys[i] = s.scoreKey(memberID(m))
	}
	blobs, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, core.Unavailable("top scores", err)
	}
	for _, b := range blobs {
		str, ok := b.(string)
		if !ok {
			continue
		}
		var sc core.Score
		if err := json.Unmarshal([]byte(str), &sc); err != nil {
			return nil, core.Unavailable("decode score", err)
		}
		out = append(out, sc)
	}
	return out, nil
}

func memberID(member string) string {
	for i := 0; i < len(member); i++ {
		if member[i] == ':' {
			return member[i+1:]
		}
	}
	return member
}
