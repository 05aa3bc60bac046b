package store

import (
	"context"
	"testing"
	"time"

	"github.com/AdamBeresnev/prompt-tournament/internal/bracket"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect("sqlite3", "file::memory:?_foreign_keys=on")
	require.NoError(t, err, "Failed to connect to in-memory DB")
	// every connection would get its own empty in-memory database
	database.SetMaxOpenConns(1)

	driver, err := sqlite3.WithInstance(database.DB, &sqlite3.Config{})
	require.NoError(t, err, "Failed to create migrate driver instance")

	m, err := migrate.NewWithDatabaseInstance(
		"file://../../migrations/sqlite",
		"sqlite3",
		driver,
	)
	require.NoError(t, err, "Failed to create migrate instance")

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		require.NoError(t, err, "Failed to apply migrations")
	}

	t.Cleanup(func() { database.Close() })
	return database
}

// seedTournament stores a created tournament with the given prompt texts.
func seedTournament(t *testing.T, db *sqlx.DB, s *TournamentStore, texts ...string) (*bracket.Tournament, []bracket.Prompt) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	tournament := &bracket.Tournament{
		InputQuestion: "How do I write a haiku?",
		Status:        bracket.TournamentCreated,
		CreatedAt:     now,
	}

	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	require.NoError(t, s.CreateTournament(ctx, tx, tournament))

	prompts := make([]bracket.Prompt, len(texts))
	for i, text := range texts {
		prompts[i] = bracket.Prompt{TournamentID: tournament.ID, Text: text, Position: i + 1, CreatedAt: now}
	}
	require.NoError(t, s.CreatePrompts(ctx, tx, prompts))
	require.NoError(t, tx.Commit())

	return tournament, prompts
}
