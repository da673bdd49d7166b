package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/wikiracer/wikirace/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *GameDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		dbPath := filepath.Join(dbDir, "wikirace.db")
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
	})

	t.Run("CreateIfNotExists=false requires existing database", func(t *testing.T) {
		t.Parallel()

		_, err := Open(t.TempDir(), Options{CreateIfNotExists: false})
		if err == nil {
			t.Fatal("expected error for missing database")
		}
	})
}

// TestCreateGame tests game creation.
func TestCreateGame(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	game, err := db.CreateGame(ctx, "alice")
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}

	if game.ID == "" {
		t.Error("game ID is empty")
	}
	if game.Status != model.GameInProgress {
		t.Errorf("status = %q, want %q", game.Status, model.GameInProgress)
	}
	if game.StartPage != model.UnknownPage || game.EndPage != model.UnknownPage {
		t.Errorf("pages = %q/%q, want placeholders", game.StartPage, game.EndPage)
	}

	t.Run("IDs are unique", func(t *testing.T) {
		other, err := db.CreateGame(ctx, "alice")
		if err != nil {
			t.Fatalf("CreateGame: %v", err)
		}
		if other.ID == game.ID {
			t.Errorf("duplicate game ID %q", game.ID)
		}
	})

	t.Run("round-trips through GetGame", func(t *testing.T) {
		got, err := db.GetGame(ctx, game.ID, "alice")
		if err != nil {
			t.Fatalf("GetGame: %v", err)
		}
		if got.ID != game.ID || got.UserID != "alice" || got.Status != model.GameInProgress {
			t.Errorf("got %+v", got)
		}
		if got.StartTime.IsZero() {
			t.Error("start time not persisted")
		}
	})
}

// TestGetGame tests ownership and missing-row behavior.
func TestGetGame(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	game, err := db.CreateGame(ctx, "alice")
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}

	t.Run("unknown ID", func(t *testing.T) {
		if _, err := db.GetGame(ctx, "no-such-game", "alice"); !errors.Is(err, ErrGameNotFound) {
			t.Errorf("err = %v, want ErrGameNotFound", err)
		}
	})

	t.Run("wrong owner", func(t *testing.T) {
		if _, err := db.GetGame(ctx, game.ID, "mallory"); !errors.Is(err, ErrGameNotFound) {
			t.Errorf("err = %v, want ErrGameNotFound", err)
		}
	})
}

// TestUpdateGamePages tests recording the chosen pairing.
func TestUpdateGamePages(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	game, err := db.CreateGame(ctx, "alice")
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}

	if err := db.UpdateGamePages(ctx, game.ID, "alice", "Dog", "Cat"); err != nil {
		t.Fatalf("UpdateGamePages: %v", err)
	}

	got, err := db.GetGame(ctx, game.ID, "alice")
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if got.StartPage != "Dog" || got.EndPage != "Cat" {
		t.Errorf("pages = %q/%q, want Dog/Cat", got.StartPage, got.EndPage)
	}

	t.Run("missing game", func(t *testing.T) {
		err := db.UpdateGamePages(ctx, "no-such-game", "alice", "Dog", "Cat")
		if !errors.Is(err, ErrGameNotFound) {
			t.Errorf("err = %v, want ErrGameNotFound", err)
		}
	})

	t.Run("finalized game", func(t *testing.T) {
		if err := db.AbandonGame(ctx, game.ID, "alice"); err != nil {
			t.Fatalf("AbandonGame: %v", err)
		}
		err := db.UpdateGamePages(ctx, game.ID, "alice", "Dog", "Cat")
		if !errors.Is(err, ErrGameFinished) {
			t.Errorf("err = %v, want ErrGameFinished", err)
		}
	})
}

// TestIncrementClicks tests the per-move counter.
func TestIncrementClicks(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	game, err := db.CreateGame(ctx, "alice")
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := db.IncrementClicks(ctx, game.ID, "alice"); err != nil {
			t.Fatalf("IncrementClicks: %v", err)
		}
	}

	got, err := db.GetGame(ctx, game.ID, "alice")
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if got.Clicks != 3 {
		t.Errorf("clicks = %d, want 3", got.Clicks)
	}
}

// TestFinishGame tests finalization and the stats fold.
func TestFinishGame(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	game, err := db.CreateGame(ctx, "alice")
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}

	summary, err := db.FinishGame(ctx, game.ID, "alice", "Dog", "Cat", 4)
	if err != nil {
		t.Fatalf("FinishGame: %v", err)
	}

	// A game finished within the same second still lasts one second.
	if summary.DurationSeconds < 1 {
		t.Errorf("duration = %d, want >= 1", summary.DurationSeconds)
	}
	if summary.GamesPlayed != 1 {
		t.Errorf("games played = %d, want 1", summary.GamesPlayed)
	}
	if summary.FastestDurationSeconds != summary.DurationSeconds {
		t.Errorf("fastest = %d, want %d", summary.FastestDurationSeconds, summary.DurationSeconds)
	}
	if summary.AverageDurationSeconds != summary.DurationSeconds {
		t.Errorf("average = %d, want %d", summary.AverageDurationSeconds, summary.DurationSeconds)
	}

	got, err := db.GetGame(ctx, game.ID, "alice")
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if got.Status != model.GameCompleted {
		t.Errorf("status = %q, want %q", got.Status, model.GameCompleted)
	}
	if got.StartPage != "Dog" || got.EndPage != "Cat" || got.Clicks != 4 {
		t.Errorf("got %+v", got)
	}
	if got.EndTime.IsZero() {
		t.Error("end time not set")
	}

	t.Run("double finish", func(t *testing.T) {
		_, err := db.FinishGame(ctx, game.ID, "alice", "Dog", "Cat", 4)
		if !errors.Is(err, ErrGameFinished) {
			t.Errorf("err = %v, want ErrGameFinished", err)
		}
	})

	t.Run("missing game", func(t *testing.T) {
		_, err := db.FinishGame(ctx, "no-such-game", "alice", "Dog", "Cat", 1)
		if !errors.Is(err, ErrGameNotFound) {
			t.Errorf("err = %v, want ErrGameNotFound", err)
		}
	})

	t.Run("aggregates accumulate", func(t *testing.T) {
		second, err := db.CreateGame(ctx, "alice")
		if err != nil {
			t.Fatalf("CreateGame: %v", err)
		}
		summary, err := db.FinishGame(ctx, second.ID, "alice", "Cat", "Dog", 2)
		if err != nil {
			t.Fatalf("FinishGame: %v", err)
		}
		if summary.GamesPlayed != 2 {
			t.Errorf("games played = %d, want 2", summary.GamesPlayed)
		}

		stats, err := db.UserStats(ctx, "alice")
		if err != nil {
			t.Fatalf("UserStats: %v", err)
		}
		if stats.GamesPlayed != 2 {
			t.Errorf("stats games played = %d, want 2", stats.GamesPlayed)
		}
		if stats.TotalDurationSeconds < 2 {
			t.Errorf("total duration = %d, want >= 2", stats.TotalDurationSeconds)
		}
	})
}

// TestAbandonGame tests giving up.
func TestAbandonGame(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	game, err := db.CreateGame(ctx, "alice")
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}

	if err := db.AbandonGame(ctx, game.ID, "alice"); err != nil {
		t.Fatalf("AbandonGame: %v", err)
	}

	got, err := db.GetGame(ctx, game.ID, "alice")
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if got.Status != model.GameAbandoned {
		t.Errorf("status = %q, want %q", got.Status, model.GameAbandoned)
	}

	t.Run("abandon is idempotent", func(t *testing.T) {
		if err := db.AbandonGame(ctx, game.ID, "alice"); err != nil {
			t.Errorf("second abandon: %v", err)
		}
	})

	t.Run("missing game", func(t *testing.T) {
		err := db.AbandonGame(ctx, "no-such-game", "alice")
		if !errors.Is(err, ErrGameNotFound) {
			t.Errorf("err = %v, want ErrGameNotFound", err)
		}
	})

	t.Run("abandoned games do not touch stats", func(t *testing.T) {
		stats, err := db.UserStats(ctx, "alice")
		if err != nil {
			t.Fatalf("UserStats: %v", err)
		}
		if stats.GamesPlayed != 0 {
			t.Errorf("games played = %d, want 0", stats.GamesPlayed)
		}
	})
}

// TestUserStats tests the zero-row default.
func TestUserStats(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)

	stats, err := db.UserStats(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("UserStats: %v", err)
	}
	if stats.UserID != "nobody" || stats.GamesPlayed != 0 || stats.FastestDurationSeconds != 0 {
		t.Errorf("got %+v, want zero stats", stats)
	}
	if stats.AverageDurationSeconds() != 0 {
		t.Errorf("average = %d, want 0", stats.AverageDurationSeconds())
	}
}

// TestRecentGames tests listing order and the limit.
func TestRecentGames(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		game, err := db.CreateGame(ctx, "alice")
		if err != nil {
			t.Fatalf("CreateGame: %v", err)
		}
		ids = append(ids, game.ID)
	}
	if _, err := db.CreateGame(ctx, "bob"); err != nil {
		t.Fatalf("CreateGame: %v", err)
	}

	games, err := db.RecentGames(ctx, "alice", 2)
	if err != nil {
		t.Fatalf("RecentGames: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("len = %d, want 2", len(games))
	}
	for _, game := range games {
		if game.UserID != "alice" {
			t.Errorf("leaked game for %q", game.UserID)
		}
	}
	// All rows may share one start-time second; ULIDs break the tie
	// chronologically, so the newest game comes first.
	if games[0].ID != ids[2] {
		t.Errorf("first game = %s, want %s", games[0].ID, ids[2])
	}

	t.Run("no games", func(t *testing.T) {
		games, err := db.RecentGames(ctx, "nobody", 10)
		if err != nil {
			t.Fatalf("RecentGames: %v", err)
		}
		if len(games) != 0 {
			t.Errorf("len = %d, want 0", len(games))
		}
	})
}

// TestCleanupOldGames tests the staleness sweep.
func TestCleanupOldGames(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	fresh, err := db.CreateGame(ctx, "alice")
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	stale, err := db.CreateGame(ctx, "alice")
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	ancient, err := db.CreateGame(ctx, "alice")
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if err := db.AbandonGame(ctx, ancient.ID, "alice"); err != nil {
		t.Fatalf("AbandonGame: %v", err)
	}

	// Backdate the rows: stale crossed the abandon threshold, ancient
	// crossed the delete threshold.
	backdate := func(id string, age time.Duration) {
		t.Helper()
		when := time.Now().UTC().Add(-age).Format(time.RFC3339)
		if _, err := db.db.ExecContext(ctx,
			`UPDATE games SET start_time = ? WHERE id = ?`, when, id,
		); err != nil {
			t.Fatalf("failed to backdate game: %v", err)
		}
	}
	backdate(stale.ID, AbandonAfter+time.Minute)
	backdate(ancient.ID, DeleteAfter+time.Minute)

	abandoned, deleted, err := db.CleanupOldGames(ctx, time.Now())
	if err != nil {
		t.Fatalf("CleanupOldGames: %v", err)
	}
	if abandoned != 1 {
		t.Errorf("abandoned = %d, want 1", abandoned)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	got, err := db.GetGame(ctx, stale.ID, "alice")
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if got.Status != model.GameAbandoned {
		t.Errorf("status = %q, want %q", got.Status, model.GameAbandoned)
	}

	if _, err := db.GetGame(ctx, ancient.ID, "alice"); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("ancient game err = %v, want ErrGameNotFound", err)
	}

	got, err = db.GetGame(ctx, fresh.ID, "alice")
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if got.Status != model.GameInProgress {
		t.Errorf("fresh game status = %q, want %q", got.Status, model.GameInProgress)
	}
}
