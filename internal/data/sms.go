package data

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/arian-lol/msg-mirror/internal/biz/domain"
	"github.com/arian-lol/msg-mirror/internal/biz/repo"
)

// SmsInboxURI identifies the inbound SMS store in change notifications
const SmsInboxURI = "content://sms/inbox"

// smsRepo implements the inbound SMS store on SQLite
type smsRepo struct {
	db *sql.DB

	observersMu sync.Mutex
	observers   []repo.ContentObserver
}

// NewSmsRepo creates a new inbound SMS repository
func NewSmsRepo(dbPath string) (repo.SmsRepo, error) {
	db, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS sms_inbox (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			address TEXT NOT NULL,
			body TEXT NOT NULL,
			date INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create sms_inbox table: %w", err)
	}

	_, _ = db.Exec(`CREATE INDEX IF NOT EXISTS idx_sms_inbox_date ON sms_inbox(date)`)

	return &smsRepo{db: db}, nil
}

// Insert stores an inbound message and fires change notifications
func (r *smsRepo) Insert(ctx context.Context, msg *domain.SmsMessage) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sms_inbox (address, body, date)
		VALUES (?, ?, ?)
	`, msg.From, msg.Body, msg.Date)
	if err != nil {
		return fmt.Errorf("failed to insert sms: %w", err)
	}

	r.notifyChange()
	return nil
}

// LatestInbound returns the newest row in the store's default order (date DESC)
func (r *smsRepo) LatestInbound(ctx context.Context) (*domain.SmsMessage, error) {
	var msg domain.SmsMessage
	err := r.db.QueryRowContext(ctx, `
		SELECT address, body, date
		FROM sms_inbox
		ORDER BY date DESC, id DESC
		LIMIT 1
	`).Scan(&msg.From, &msg.Body, &msg.Date)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest sms: %w", err)
	}
	return &msg, nil
}

// RegisterObserver adds an observer for inbox changes
func (r *smsRepo) RegisterObserver(o repo.ContentObserver) {
	if o == nil {
		return
	}
	r.observersMu.Lock()
	defer r.observersMu.Unlock()
	for _, existing := range r.observers {
		if existing == o {
			return
		}
	}
	r.observers = append(r.observers, o)
}

// UnregisterObserver removes an observer
func (r *smsRepo) UnregisterObserver(o repo.ContentObserver) {
	r.observersMu.Lock()
	defer r.observersMu.Unlock()
	for i, existing := range r.observers {
		if existing == o {
			r.observers = append(r.observers[:i], r.observers[i+1:]...)
			return
		}
	}
}

// URI returns the store identifier
func (r *smsRepo) URI() string {
	return SmsInboxURI
}

// notifyChange dispatches OnChange to every observer on its own goroutine
func (r *smsRepo) notifyChange() {
	r.observersMu.Lock()
	observers := make([]repo.ContentObserver, len(r.observers))
	copy(observers, r.observers)
	r.observersMu.Unlock()

	for _, o := range observers {
		go o.OnChange(SmsInboxURI)
	}
}

// Close closes the database connection
func (r *smsRepo) Close() error {
	return r.db.Close()
}
