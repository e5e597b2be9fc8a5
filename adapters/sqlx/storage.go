package sqlx

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	libsqlx "github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"arcadeboard/core"
)

// Driver names a supported database/sql driver.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverMySQL    Driver = "mysql"
)

// Config holds relational storage configuration.
type Config struct {
	Driver          Driver        `json:"driver" env:"ARCADEBOARD_STORAGE_SQL_DRIVER"`
	DSN             string        `json:"dsn" env:"ARCADEBOARD_STORAGE_SQL_DSN,DATABASE_URL"`
	MaxOpenConns    int           `json:"max_open_conns" env:"ARCADEBOARD_STORAGE_SQL_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `json:"max_idle_conns" env:"ARCADEBOARD_STORAGE_SQL_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" env:"ARCADEBOARD_STORAGE_SQL_CONN_MAX_LIFETIME"`
	ConnectTimeout  time.Duration `json:"connect_timeout" env:"ARCADEBOARD_STORAGE_SQL_CONNECT_TIMEOUT"`
}

// DefaultConfig returns pool defaults for driver. The DSN is left empty.
func DefaultConfig(driver Driver) Config {
	return Config{
		Driver:          driver,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
		ConnectTimeout:  5 * time.Second,
	}
}

// ErrNoDSN is returned by New when no connection string is configured.
var ErrNoDSN = errors.New("sql storage requires a DSN")

// Store implements engine.Storage on top of two flat tables:
//   - guesses(id, player_name, guessed_number, created_at)
//   - scores(id, player_name, time_seconds, game_type, created_at)
//
// Ids and timestamps are generated here so PostgreSQL and MySQL behave alike.
type Store struct {
	db     *libsqlx.DB
	driver Driver
	clock  *core.Stamper
}

// New opens a pool and pings it, so a bad DSN fails at startup rather than on
// the first request. The pool is kept for the lifetime of the Store.
func New(cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("%w: %w", core.ErrStorageUnavailable, ErrNoDSN)
	}
	driver, dsn, err := resolveDSN(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, core.Unavailable("parse dsn", err)
	}
	db, err := libsqlx.Open(string(driver), dsn)
	if err != nil {
		return nil, core.Unavailable("open", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, core.Unavailable("ping", err)
	}
	return NewWithDB(db, driver), nil
}

// NewWithDB wraps an existing connection (useful for testing).
func NewWithDB(db *libsqlx.DB, driver Driver) *Store {
	return &Store{db: db, driver: driver, clock: core.NewStamper(nil)}
}

// ResolveDriver reports the dialect New would pick for cfg. An empty DSN
// falls back to the configured driver.
func ResolveDriver(cfg Config) (Driver, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		switch cfg.Driver {
		case "":
			return DriverPostgres, nil
		case DriverPostgres, DriverMySQL:
			return cfg.Driver, nil
		default:
			return "", fmt.Errorf("unsupported sql driver %q", cfg.Driver)
		}
	}
	driver, _, err := resolveDSN(cfg.Driver, cfg.DSN)
	return driver, err
}

// resolveDSN picks the driver from URL-style DSNs and normalizes driver
// specific options. MySQL DSNs always get parseTime so timestamps scan into
// time.Time.
func resolveDSN(driver Driver, dsn string) (Driver, string, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		if _, err := pq.ParseURL(dsn); err != nil {
			return "", "", err
		}
		return DriverPostgres, dsn, nil
	case strings.HasPrefix(dsn, "mysql://"):
		driver = DriverMySQL
		dsn = strings.TrimPrefix(dsn, "mysql://")
	}
	if driver == "" {
		driver = DriverPostgres
	}
	switch driver {
	case DriverPostgres:
		return driver, dsn, nil
	case DriverMySQL:
		mc, err := mysql.ParseDSN(dsn)
		if err != nil {
			return "", "", err
		}
		mc.ParseTime = true
		mc.Loc = time.UTC
		return driver, mc.FormatDSN(), nil
	default:
		return "", "", fmt.Errorf("unsupported sql driver %q", driver)
	}
}

// Driver reports which SQL dialect the store speaks.
func (s *Store) Driver() Driver { return s.driver }

// Close closes the connection pool.
func (s *Store) Close() error { return s.db.Close() }

// Ping checks the pool can reach the database.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return core.Unavailable("ping", err)
	}
	return nil
}

const (
	insertGuessSQL = `INSERT INTO guesses (id, player_name, guessed_number, created_at) VALUES (?, ?, ?, ?)`
	listGuessesSQL = `SELECT id, player_name, guessed_number, created_at FROM guesses ORDER BY created_at DESC, id DESC`
	insertScoreSQL = `INSERT INTO scores (id, player_name, time_seconds, game_type, created_at) VALUES (?, ?, ?, ?, ?)`
	topScoresSQL   = `SELECT id, player_name, time_seconds, game_type, created_at FROM scores WHERE game_type = ? ORDER BY time_seconds ASC, created_at ASC, id ASC LIMIT ?`
)

type guessRow struct {
	ID            string    `db:"id"`
	PlayerName    string    `db:"player_name"`
	GuessedNumber int64     `db:"guessed_number"`
	CreatedAt     time.Time `db:"created_at"`
}

type scoreRow struct {
	ID          string    `db:"id"`
	PlayerName  string    `db:"player_name"`
	TimeSeconds int64     `db:"time_seconds"`
	GameType    string    `db:"game_type"`
	CreatedAt   time.Time `db:"created_at"`
}

func (s *Store) CreateGuess(ctx context.Context, g core.NewGuess) (core.Guess, error) {
	rec := core.Guess{
		ID:            uuid.NewString(),
		PlayerName:    g.PlayerName,
		GuessedNumber: g.GuessedNumber,
		CreatedAt:     s.clock.Next(),
	}
	_, err := s.db.ExecContext(ctx, s.db.Rebind(insertGuessSQL), rec.ID, rec.PlayerName, rec.GuessedNumber, rec.CreatedAt)
	if err != nil {
		return core.Guess{}, core.Unavailable("insert guess", err)
	}
	return rec, nil
}

func (s *Store) ListGuesses(ctx context.Context) ([]core.Guess, error) {
	var rows []guessRow
	if err := s.db.SelectContext(ctx, &rows, listGuessesSQL); err != nil {
		return nil, core.Unavailable("list guesses", err)
	}
	out := make([]core.Guess, 0, len(rows))
	for _, r := range rows {
		out = append(out, core.Guess{
			ID:            r.ID,
			PlayerName:    r.PlayerName,
			GuessedNumber: r.GuessedNumber,
			CreatedAt:     r.CreatedAt.UTC(),
		})
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
	_, err := s.db.ExecContext(ctx, s.db.Rebind(insertScoreSQL), rec.ID, rec.PlayerName, rec.TimeSeconds, string(rec.GameType), rec.CreatedAt)
	if err != nil {
		return core.Score{}, core.Unavailable("insert score", err)
	}
	return rec, nil
}

func (s *Store) TopScores(ctx context.Context, game core.GameType, limit int) ([]core.Score, error) {
	if limit <= 0 {
		limit = core.DefaultLimit
	}
	var rows []scoreRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(topScoresSQL), string(game), limit); err != nil {
		return nil, core.Unavailable("top scores", err)
	}
	out := make([]core.Score, 0, len(rows))
	for _, r := range rows {
		out = append(out, core.Score{
			ID:          r.ID,
			PlayerName:  r.PlayerName,
			TimeSeconds: r.TimeSeconds,
			GameType:    core.GameType(r.GameType),
			CreatedAt:   r.CreatedAt.UTC(),
		})
	}
	return out, nil
}
