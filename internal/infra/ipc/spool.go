// Package ipc carries notification broadcasts between processes on the same
// host through a spool directory of JSON intent files.
package ipc

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arian-lol/msg-mirror/internal/biz/domain"
)

const (
	spoolExt     = ".json"
	pollInterval = 100 * time.Millisecond
)

// Broadcaster publishes intents into the spool directory.
// Files are written under a temporary name and renamed into place, so a
// receiver never reads a partial intent.
type Broadcaster struct {
	dir string
	now func() time.Time
}

// NewBroadcaster creates a broadcaster writing into dir
func NewBroadcaster(dir string) (*Broadcaster, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create spool directory: %w", err)
	}
	return &Broadcaster{dir: dir, now: time.Now}, nil
}

// Broadcast implements repo.Broadcaster
func (b *Broadcaster) Broadcast(intent domain.Intent) error {
	if intent.ID == "" {
		intent.ID = uuid.New().String()
	}

	data, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("failed to encode intent: %w", err)
	}

	// Zero-padded nanos keep lexical order equal to publish order
	name := fmt.Sprintf("%020d-%s%s", b.now().UnixNano(), intent.ID, spoolExt)
	tmp := filepath.Join(b.dir, "."+name+".tmp")
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write intent: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(b.dir, name)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to publish intent: %w", err)
	}
	return nil
}

// IntentHandler is the callback for received intents
type IntentHandler func(intent domain.Intent)

// Receiver polls the spool directory and hands each intent to its handler
// exactly once, oldest first
type Receiver struct {
	dir     string
	handler IntentHandler

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewReceiver creates a receiver for dir
func NewReceiver(dir string, handler IntentHandler) (*Receiver, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create spool directory: %w", err)
	}
	return &Receiver{dir: dir, handler: handler}, nil
}

// Start begins polling
func (r *Receiver) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}
	r.ctx, r.cancel = context.WithCancel(ctx)

	r.wg.Add(1)
	go r.pollLoop()
}

// Stop stops polling and waits for the loop to exit
func (r *Receiver) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	r.wg.Wait()
}

func (r *Receiver) pollLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.Drain()
		}
	}
}

// Drain consumes every intent currently in the spool
func (r *Receiver) Drain() int {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return 0
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, spoolExt) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	handled := 0
	for _, name := range names {
		path := filepath.Join(r.dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		// Remove before handling so a panicking handler cannot replay the intent
		if err := os.Remove(path); err != nil {
			continue
		}

		var intent domain.Intent
		if err := json.Unmarshal(data, &intent); err != nil {
			fmt.Printf("[IPC] Dropped invalid intent %s: %v\n", name, err)
			continue
		}
		if r.handler != nil {
			r.handler(intent)
		}
		handled++
	}
	return handled
}
