package data

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/arian-lol/msg-mirror/internal/biz/repo"

	_ "modernc.org/sqlite"
)

// Repositories contains all repositories
type Repositories struct {
	Prefs repo.PrefsRepo
	Sms   repo.SmsRepo
	Log   repo.LogRepo
}

// NewRepositories creates all repositories.
// Preferences and the SMS inbox share one database file.
func NewRepositories(dbPath, logDir string, echoLog bool) (*Repositories, error) {
	prefsRepo, err := NewPrefsRepo(dbPath)
	if err != nil {
		return nil, err
	}

	smsRepo, err := NewSmsRepo(dbPath)
	if err != nil {
		prefsRepo.Close()
		return nil, err
	}

	return &Repositories{
		Prefs: prefsRepo,
		Sms:   smsRepo,
		Log:   NewLogRepo(logDir, echoLog),
	}, nil
}

// Close closes the database-backed repositories
func (r *Repositories) Close() error {
	var firstErr error
	if err := r.Sms.Close(); err != nil {
		firstErr = err
	}
	if err := r.Prefs.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func openDB(dbPath string) (*sql.DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	// Capture and API goroutines write concurrently; wait on locks instead of failing
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}
