package database

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/wikiracer/wikirace/internal/model"
)

const (
	// AbandonAfter is how long a game may sit in progress before the
	// cleanup sweep marks it abandoned. Matches the longest plausible
	// attention span of a player who walked away mid-race.
	AbandonAfter = 30 * time.Minute

	// DeleteAfter is how long abandoned games are retained before
	// deletion. Their stats were never folded into the aggregates, so
	// nothing is lost by removing the rows.
	DeleteAfter = 4 * time.Hour
)

// timeFormat is how timestamps are stored. RFC3339 in UTC sorts
// lexicographically, which lets cleanup compare cutoffs in SQL.
const timeFormat = time.RFC3339

// GameDB provides SQLite-based storage for game sessions and per-user
// aggregate statistics.
//
// Design decision: A single database file holds both games and stats so
// that finishing a game can fold its duration into the aggregates in
// one transaction. Separate files would need cross-file coordination
// for an invariant the schema can guarantee for free.
type GameDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	// entropy feeds ULID generation. Guarded by the locked reader.
	entropy *ulid.LockedMonotonicReader
}

// Options configures GameDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a GameDB at the specified path.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*GameDB, error) {
	dbPath := filepath.Join(dbDir, "wikirace.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating
	// new files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; a single connection also keeps
	// the finish transaction serialized without busy-retry loops.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	gdb := &GameDB{
		db:     db,
		dbPath: dbPath,
		entropy: &ulid.LockedMonotonicReader{
			MonotonicReader: ulid.Monotonic(
				rand.New(rand.NewSource(time.Now().UnixNano())), 0, //nolint:gosec // IDs need uniqueness, not unpredictability
			),
		},
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := gdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return gdb, nil
}

// Close closes the database connection.
func (gdb *GameDB) Close() error {
	return gdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (gdb *GameDB) createTables() error {
	schema := `
	-- Game sessions, one row per race
	CREATE TABLE IF NOT EXISTS games (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		start_page TEXT NOT NULL,
		end_page TEXT NOT NULL,
		clicks INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT,
		duration_seconds INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_games_user ON games(user_id);
	CREATE INDEX IF NOT EXISTS idx_games_status ON games(status);
	CREATE INDEX IF NOT EXISTS idx_games_start_time ON games(start_time);

	-- Per-user aggregates, folded in when a game finishes
	CREATE TABLE IF NOT EXISTS user_stats (
		user_id TEXT PRIMARY KEY,
		games_played INTEGER NOT NULL DEFAULT 0,
		total_duration_seconds INTEGER NOT NULL DEFAULT 0,
		fastest_duration_seconds INTEGER NOT NULL DEFAULT 0
	);
	`

	_, err := gdb.db.ExecContext(context.Background(), schema)
	return err
}

// newID returns a new ULID string for a game row.
func (gdb *GameDB) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), gdb.entropy).String()
}

// CreateGame inserts a new in-progress game for the user and returns it.
// The pages start as the UNKNOWN placeholder; the row exists first so
// the client has an ID to report progress against while the pairing
// search is still running.
func (gdb *GameDB) CreateGame(ctx context.Context, userID string) (*model.Game, error) {
	game := &model.Game{
		ID:        gdb.newID(),
		UserID:    userID,
		StartPage: model.UnknownPage,
		EndPage:   model.UnknownPage,
		Status:    model.GameInProgress,
		StartTime: time.Now().UTC(),
	}

	query := `
	INSERT INTO games (id, user_id, start_page, end_page, clicks, status, start_time)
	VALUES (?, ?, ?, ?, 0, ?, ?)
	`

	_, err := gdb.db.ExecContext(ctx, query,
		game.ID,
		game.UserID,
		game.StartPage,
		game.EndPage,
		string(game.Status),
		game.StartTime.Format(timeFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert game: %w", err)
	}

	return game, nil
}

// GetGame retrieves a game by ID and owner. Returns ErrGameNotFound
// when no such game exists or it belongs to a different user.
func (gdb *GameDB) GetGame(ctx context.Context, id, userID string) (*model.Game, error) {
	query := `
	SELECT id, user_id, start_page, end_page, clicks, status, start_time, end_time, duration_seconds
	FROM games
	WHERE id = ? AND user_id = ?
	`
	return gdb.scanGame(gdb.db.QueryRowContext(ctx, query, id, userID))
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (gdb *GameDB) scanGame(row rowScanner) (*model.Game, error) {
	var (
		game      model.Game
		status    string
		startTime string
		endTime   sql.NullString
		duration  sql.NullInt64
	)

	err := row.Scan(
		&game.ID,
		&game.UserID,
		&game.StartPage,
		&game.EndPage,
		&game.Clicks,
		&status,
		&startTime,
		&endTime,
		&duration,
	)
	if err == sql.ErrNoRows {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan game: %w", err)
	}

	game.Status = model.GameStatus(status)
	game.StartTime = parseTimestamp(startTime)
	if endTime.Valid {
		game.EndTime = parseTimestamp(endTime.String)
	}
	if duration.Valid {
		game.DurationSeconds = int(duration.Int64)
	}

	return &game, nil
}

// UpdateGamePages records the chosen start and end pages on an
// in-progress game. Called once the pairing search completes, replacing
// the UNKNOWN placeholders.
func (gdb *GameDB) UpdateGamePages(ctx context.Context, id, userID, startPage, endPage string) error {
	query := `
	UPDATE games SET start_page = ?, end_page = ?
	WHERE id = ? AND user_id = ? AND status = ?
	`

	result, err := gdb.db.ExecContext(ctx, query,
		startPage, endPage, id, userID, string(model.GameInProgress),
	)
	if err != nil {
		return fmt.Errorf("failed to update game pages: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return gdb.classifyMiss(ctx, id, userID)
	}
	return nil
}

// IncrementClicks adds one navigation move to an in-progress game.
func (gdb *GameDB) IncrementClicks(ctx context.Context, id, userID string) error {
	query := `
	UPDATE games SET clicks = clicks + 1
	WHERE id = ? AND user_id = ? AND status = ?
	`

	result, err := gdb.db.ExecContext(ctx, query, id, userID, string(model.GameInProgress))
	if err != nil {
		return fmt.Errorf("failed to increment clicks: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return gdb.classifyMiss(ctx, id, userID)
	}
	return nil
}

// FinishGame finalizes an in-progress game and folds its duration into
// the user's aggregates, all in one transaction. The reported pages and
// click count overwrite whatever the row holds, since the client saw
// the actual race.
//
// Duration is floored at one second so that a finished game always
// contributes to the averages, even when the clock reads zero.
func (gdb *GameDB) FinishGame(ctx context.Context, id, userID, startPage, endPage string, clicks int) (*model.FinishSummary, error) {
	tx, err := gdb.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var (
		status    string
		startTime string
	)
	err = tx.QueryRowContext(ctx,
		`SELECT status, start_time FROM games WHERE id = ? AND user_id = ?`,
		id, userID,
	).Scan(&status, &startTime)
	if err == sql.ErrNoRows {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load game: %w", err)
	}
	if model.GameStatus(status) != model.GameInProgress {
		return nil, ErrGameFinished
	}

	now := time.Now().UTC()
	duration := int(now.Sub(parseTimestamp(startTime)).Seconds())
	if duration < 1 {
		duration = 1
	}

	_, err = tx.ExecContext(ctx, `
	UPDATE games SET start_page = ?, end_page = ?, clicks = ?, status = ?, end_time = ?, duration_seconds = ?
	WHERE id = ?
	`,
		startPage, endPage, clicks,
		string(model.GameCompleted),
		now.Format(timeFormat),
		duration,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to finalize game: %w", err)
	}

	// Fold the finished game into the aggregates. The fastest time
	// only moves down, except for the first game which sets it.
	_, err = tx.ExecContext(ctx, `
	INSERT INTO user_stats (user_id, games_played, total_duration_seconds, fastest_duration_seconds)
	VALUES (?, 1, ?, ?)
	ON CONFLICT(user_id) DO UPDATE SET
		games_played = games_played + 1,
		total_duration_seconds = total_duration_seconds + excluded.total_duration_seconds,
		fastest_duration_seconds = MIN(fastest_duration_seconds, excluded.fastest_duration_seconds)
	`, userID, duration, duration)
	if err != nil {
		return nil, fmt.Errorf("failed to update user stats: %w", err)
	}

	stats := model.UserStats{UserID: userID}
	err = tx.QueryRowContext(ctx,
		`SELECT games_played, total_duration_seconds, fastest_duration_seconds FROM user_stats WHERE user_id = ?`,
		userID,
	).Scan(&stats.GamesPlayed, &stats.TotalDurationSeconds, &stats.FastestDurationSeconds)
	if err != nil {
		return nil, fmt.Errorf("failed to read user stats: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit finish: %w", err)
	}

	return &model.FinishSummary{
		DurationSeconds:        duration,
		FastestDurationSeconds: stats.FastestDurationSeconds,
		AverageDurationSeconds: stats.AverageDurationSeconds(),
		GamesPlayed:            stats.GamesPlayed,
	}, nil
}

// AbandonGame marks an in-progress game abandoned. Abandoning a game
// that was already finalized is a no-op, so a client retrying after a
// timeout never sees an error for a state it already reached.
func (gdb *GameDB) AbandonGame(ctx context.Context, id, userID string) error {
	query := `
	UPDATE games SET status = ?, end_time = ?
	WHERE id = ? AND user_id = ? AND status = ?
	`

	result, err := gdb.db.ExecContext(ctx, query,
		string(model.GameAbandoned),
		time.Now().UTC().Format(timeFormat),
		id, userID,
		string(model.GameInProgress),
	)
	if err != nil {
		return fmt.Errorf("failed to abandon game: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		// Distinguish a missing game from one already finalized.
		if _, err := gdb.GetGame(ctx, id, userID); err != nil {
			return err
		}
	}
	return nil
}

// RecentGames returns the user's latest games, newest first, up to
// the given limit.
func (gdb *GameDB) RecentGames(ctx context.Context, userID string, limit int) ([]model.Game, error) {
	query := `
	SELECT id, user_id, start_page, end_page, clicks, status, start_time, end_time, duration_seconds
	FROM games
	WHERE user_id = ?
	ORDER BY start_time DESC, id DESC
	LIMIT ?
	`

	rows, err := gdb.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	var games []model.Game
	for rows.Next() {
		game, err := gdb.scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, *game)
	}

	return games, rows.Err()
}

// UserStats returns the user's aggregates. A user with no completed
// games gets a zero-valued row rather than an error.
func (gdb *GameDB) UserStats(ctx context.Context, userID string) (*model.UserStats, error) {
	stats := model.UserStats{UserID: userID}

	err := gdb.db.QueryRowContext(ctx,
		`SELECT games_played, total_duration_seconds, fastest_duration_seconds FROM user_stats WHERE user_id = ?`,
		userID,
	).Scan(&stats.GamesPlayed, &stats.TotalDurationSeconds, &stats.FastestDurationSeconds)
	if err == sql.ErrNoRows {
		return &stats, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user stats: %w", err)
	}

	return &stats, nil
}

// CleanupOldGames sweeps stale rows: in-progress games older than
// AbandonAfter are marked abandoned, and abandoned games older than
// DeleteAfter are deleted. Returns how many rows each pass touched.
//
// The sweep runs opportunistically from the API handlers; callers log
// failures and carry on, since a missed sweep just runs next time.
func (gdb *GameDB) CleanupOldGames(ctx context.Context, now time.Time) (abandoned, deleted int64, err error) {
	now = now.UTC()

	result, err := gdb.db.ExecContext(ctx, `
	UPDATE games SET status = ?, end_time = ?
	WHERE status = ? AND start_time < ?
	`,
		string(model.GameAbandoned),
		now.Format(timeFormat),
		string(model.GameInProgress),
		now.Add(-AbandonAfter).Format(timeFormat),
	)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to abandon stale games: %w", err)
	}
	if abandoned, err = result.RowsAffected(); err != nil {
		return 0, 0, fmt.Errorf("failed to count abandoned games: %w", err)
	}

	result, err = gdb.db.ExecContext(ctx, `
	DELETE FROM games
	WHERE status = ? AND start_time < ?
	`,
		string(model.GameAbandoned),
		now.Add(-DeleteAfter).Format(timeFormat),
	)
	if err != nil {
		return abandoned, 0, fmt.Errorf("failed to delete old games: %w", err)
	}
	if deleted, err = result.RowsAffected(); err != nil {
		return abandoned, 0, fmt.Errorf("failed to count deleted games: %w", err)
	}

	return abandoned, deleted, nil
}

// classifyMiss turns a zero-row update into the right sentinel: the
// game is either missing or no longer in progress.
func (gdb *GameDB) classifyMiss(ctx context.Context, id, userID string) error {
	game, err := gdb.GetGame(ctx, id, userID)
	if err != nil {
		return err
	}
	if game.Finished() {
		return ErrGameFinished
	}
	return ErrGameNotFound
}

// timestampFormats lists the layouts tried when reading a stored time.
// Rows written by this package use RFC3339, but SQLite functions like
// datetime() produce the space-separated form.
var timestampFormats = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp attempts to parse a timestamp string using multiple
// formats. If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
