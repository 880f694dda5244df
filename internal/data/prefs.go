package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/arian-lol/msg-mirror/internal/biz/repo"
)

// prefsRepo implements the preference store on SQLite
type prefsRepo struct {
	db *sql.DB
}

// NewPrefsRepo creates a new preference repository
func NewPrefsRepo(dbPath string) (repo.PrefsRepo, error) {
	db, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS prefs (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create prefs table: %w", err)
	}

	return &prefsRepo{db: db}, nil
}

func (r *prefsRepo) get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM prefs WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query pref %s: %w", key, err)
	}
	return value, true, nil
}

func (r *prefsRepo) set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO prefs (key, value, updated_at)
		VALUES (?, ?, ?)
	`, key, value, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save pref %s: %w", key, err)
	}
	return nil
}

// GetString gets a string preference
func (r *prefsRepo) GetString(ctx context.Context, key, defaultValue string) (string, error) {
	value, ok, err := r.get(ctx, key)
	if err != nil || !ok {
		return defaultValue, err
	}
	return value, nil
}

// SetString sets a string preference
func (r *prefsRepo) SetString(ctx context.Context, key, value string) error {
	return r.set(ctx, key, value)
}

// GetBool gets a boolean preference
func (r *prefsRepo) GetBool(ctx context.Context, key string, defaultValue bool) (bool, error) {
	value, ok, err := r.get(ctx, key)
	if err != nil || !ok {
		return defaultValue, err
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue, fmt.Errorf("invalid bool pref %s: %w", key, err)
	}
	return parsed, nil
}

// SetBool sets a boolean preference
func (r *prefsRepo) SetBool(ctx context.Context, key string, value bool) error {
	return r.set(ctx, key, strconv.FormatBool(value))
}

// GetStringSet gets a string set preference
func (r *prefsRepo) GetStringSet(ctx context.Context, key string, defaultValue []string) ([]string, error) {
	value, ok, err := r.get(ctx, key)
	if err != nil || !ok {
		return defaultValue, err
	}
	values := []string{}
	if err := json.Unmarshal([]byte(value), &values); err != nil {
		return defaultValue, fmt.Errorf("invalid set pref %s: %w", key, err)
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}

// SetStringSet stores a de-duplicated, sorted set
func (r *prefsRepo) SetStringSet(ctx context.Context, key string, values []string) error {
	seen := make(map[string]bool, len(values))
	set := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		set = append(set, v)
	}
	sort.Strings(set)

	data, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("failed to encode set pref %s: %w", key, err)
	}
	return r.set(ctx, key, string(data))
}

// Has reports whether key is stored
func (r *prefsRepo) Has(ctx context.Context, key string) (bool, error) {
	_, ok, err := r.get(ctx, key)
	return ok, err
}

// All returns every stored preference as raw strings
func (r *prefsRepo) All(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM prefs ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to query prefs: %w", err)
	}
	defer rows.Close()

	result := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan pref: %w", err)
		}
		result[key] = value
	}
	return result, rows.Err()
}

// Close closes the database connection
func (r *prefsRepo) Close() error {
	return r.db.Close()
}
