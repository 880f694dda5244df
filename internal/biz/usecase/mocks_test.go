package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/arian-lol/msg-mirror/internal/biz/domain"
	"github.com/arian-lol/msg-mirror/internal/biz/repo"
)

// Mock implementations

type memLog struct {
	mu    sync.Mutex
	lines []string
}

func (m *memLog) Append(line string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, line)
}

func (m *memLog) Read() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return strings.Join(m.lines, "\n")
}

func (m *memLog) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = nil
}

func (m *memLog) contains(substr string) bool {
	return strings.Contains(m.Read(), substr)
}

type mockPrefsRepo struct {
	mu      sync.Mutex
	strings map[string]string
	bools   map[string]bool
	sets    map[string][]string
	err     error
}

func newMockPrefsRepo() *mockPrefsRepo {
	return &mockPrefsRepo{
		strings: make(map[string]string),
		bools:   make(map[string]bool),
		sets:    make(map[string][]string),
	}
}

func (m *mockPrefsRepo) GetString(ctx context.Context, key, defaultValue string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return defaultValue, m.err
	}
	if v, ok := m.strings[key]; ok {
		return v, nil
	}
	return defaultValue, nil
}

func (m *mockPrefsRepo) SetString(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.strings[key] = value
	return nil
}

func (m *mockPrefsRepo) GetBool(ctx context.Context, key string, defaultValue bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return defaultValue, m.err
	}
	if v, ok := m.bools[key]; ok {
		return v, nil
	}
	return defaultValue, nil
}

func (m *mockPrefsRepo) SetBool(ctx context.Context, key string, value bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bools[key] = value
	return nil
}

func (m *mockPrefsRepo) GetStringSet(ctx context.Context, key string, defaultValue []string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return defaultValue, m.err
	}
	if v, ok := m.sets[key]; ok {
		return v, nil
	}
	return defaultValue, nil
}

func (m *mockPrefsRepo) SetStringSet(ctx context.Context, key string, values []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if values == nil {
		values = []string{}
	}
	m.sets[key] = values
	return nil
}

func (m *mockPrefsRepo) Has(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, s := m.strings[key]
	_, b := m.bools[key]
	_, set := m.sets[key]
	return s || b || set, nil
}

func (m *mockPrefsRepo) All(ctx context.Context) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.strings))
	for k, v := range m.strings {
		out[k] = v
	}
	return out, nil
}

func (m *mockPrefsRepo) Close() error {
	return nil
}

type call struct {
	method string
	args   map[string]interface{}
}

type recordingConsumer struct {
	mu    sync.Mutex
	calls []call
	err   error
}

func (c *recordingConsumer) Invoke(method string, args map[string]interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, call{method: method, args: args})
	return c.err
}

func (c *recordingConsumer) snapshot() []call {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]call, len(c.calls))
	copy(out, c.calls)
	return out
}

type sent struct {
	from, body string
	when       int64
}

type recordingSender struct {
	mu    sync.Mutex
	sends []sent
}

func (s *recordingSender) Send(from, body string, timestampMs int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sends = append(s.sends, sent{from: from, body: body, when: timestampMs})
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sends)
}

type recordingBroadcaster struct {
	mu      sync.Mutex
	intents []domain.Intent
	err     error
}

func (b *recordingBroadcaster) Broadcast(intent domain.Intent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.intents = append(b.intents, intent)
	return nil
}

type mockSmsRepo struct {
	latest *domain.SmsMessage
	err    error
	panics bool
}

func (m *mockSmsRepo) Insert(ctx context.Context, msg *domain.SmsMessage) error {
	m.latest = msg
	return nil
}

func (m *mockSmsRepo) LatestInbound(ctx context.Context) (*domain.SmsMessage, error) {
	if m.panics {
		panic("cursor closed")
	}
	return m.latest, m.err
}

func (m *mockSmsRepo) RegisterObserver(o repo.ContentObserver)   {}
func (m *mockSmsRepo) UnregisterObserver(o repo.ContentObserver) {}
func (m *mockSmsRepo) URI() string                               { return "content://sms/inbox" }
func (m *mockSmsRepo) Close() error                              { return nil }

var errBoom = errors.New("boom")
