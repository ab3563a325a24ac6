package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/mkarlsen/ganttdash/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// setupTestDB creates an in-memory preference database
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	if err := runMigrations(context.Background(), db); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return db
}

func TestSaveAndLoadFilterRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPrefRepository(db)
	ctx := context.Background()

	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	saved := models.FilterState{
		IssueState:   models.StateClosed,
		DateStart:    &start,
		DateEnd:      &end,
		MilestoneIDs: []int{7, 9},
	}

	require.NoError(t, repo.SaveFilter(ctx, saved))

	loaded := repo.LoadFilter(ctx, time.Now())
	assert.Equal(t, saved, loaded)
}

func TestLoadFilterDefaultsWhenEmpty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPrefRepository(db)

	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	fs := repo.LoadFilter(context.Background(), now)

	assert.Equal(t, models.StateOpened, fs.IssueState)
	require.NotNil(t, fs.DateStart)
	require.NotNil(t, fs.DateEnd)
	assert.Equal(t, time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC), *fs.DateStart)
	assert.Equal(t, time.Date(2024, 8, 15, 0, 0, 0, 0, time.UTC), *fs.DateEnd)
	assert.Empty(t, fs.MilestoneIDs)
}

func TestLoadFilterDefaultsOnCorruptValue(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPrefRepository(db)
	ctx := context.Background()

	_, err := db.ExecContext(ctx,
		"INSERT INTO preferences (key, value) VALUES (?, ?)", filterKey, "{not json")
	require.NoError(t, err)

	fs := repo.LoadFilter(ctx, time.Now())
	assert.Equal(t, models.StateOpened, fs.IssueState)
}

func TestLoadFilterDefaultsOnBadState(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPrefRepository(db)
	ctx := context.Background()

	_, err := db.ExecContext(ctx,
		"INSERT INTO preferences (key, value) VALUES (?, ?)",
		filterKey, `{"issue_state":"everything"}`)
	require.NoError(t, err)

	fs := repo.LoadFilter(ctx, time.Now())
	assert.Equal(t, models.StateOpened, fs.IssueState)
}

func TestSaveFilterOverwrites(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPrefRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.SaveFilter(ctx, models.FilterState{IssueState: models.StateOpened}))
	require.NoError(t, repo.SaveFilter(ctx, models.FilterState{IssueState: models.StateAll}))

	fs := repo.LoadFilter(ctx, time.Now())
	assert.Equal(t, models.StateAll, fs.IssueState)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM preferences").Scan(&count))
	assert.Equal(t, 1, count)
}
