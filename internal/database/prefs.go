package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/mkarlsen/ganttdash/internal/models"
)

// filterKey is the single preference key the filter selection lives under.
const filterKey = "filter_state"

// PrefRepository persists the user's filter selection across sessions.
type PrefRepository interface {
	// LoadFilter returns the persisted filter selection, or the documented
	// default when nothing is stored or the stored value is malformed.
	// It never fails; a broken preference row is not worth surfacing.
	LoadFilter(ctx context.Context, now time.Time) models.FilterState

	// SaveFilter persists the filter selection.
	SaveFilter(ctx context.Context, fs models.FilterState) error
}

// prefRepository implements PrefRepository on the preferences table.
type prefRepository struct {
	db *sql.DB
}

// NewPrefRepository creates a preference repository wrapping the database.
func NewPrefRepository(db *sql.DB) PrefRepository {
	return &prefRepository{db: db}
}

func (r *prefRepository) LoadFilter(ctx context.Context, now time.Time) models.FilterState {
	var raw string
	err := r.db.QueryRowContext(ctx,
		"SELECT value FROM preferences WHERE key = ?", filterKey).Scan(&raw)
	if err != nil {
		if err != sql.ErrNoRows {
			slog.Warn("failed to load filter preference", "error", err)
		}
		return models.DefaultFilterState(now)
	}

	var fs models.FilterState
	if err := json.Unmarshal([]byte(raw), &fs); err != nil {
		slog.Warn("malformed filter preference, using defaults", "error", err)
		return models.DefaultFilterState(now)
	}
	if !fs.IssueState.Valid() {
		return models.DefaultFilterState(now)
	}
	return fs
}

func (r *prefRepository) SaveFilter(ctx context.Context, fs models.FilterState) error {
	data, err := json.Marshal(fs)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, filterKey, string(data))
	return err
}
