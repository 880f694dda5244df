package biz

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/arian-lol/msg-mirror/internal/biz/domain"
	"github.com/arian-lol/msg-mirror/internal/data"
)

func TestNewUsecases_CaptureFeedsRouter(t *testing.T) {
	dir := t.TempDir()
	repos, err := data.NewRepositories(filepath.Join(dir, "mirror.db"), dir, false)
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	ucs := NewUsecases(repos.Prefs, repos.Log, nil)

	record := ucs.Capture.OnNotificationPosted(context.Background(), &domain.RawNotification{
		PackageName: "com.google.android.dialer",
		PostTime:    1700000000000,
		Notification: &domain.Notification{
			Extras: domain.Extras{domain.ExtraTitle: "Missed call"},
		},
	})
	if record == nil {
		t.Fatal("Expected notification from a default package to be captured")
	}

	// No consumer yet and no endpoint configured: buffered only
	if ucs.Router.PendingLen() != 1 {
		t.Errorf("Expected 1 pending event, got %d", ucs.Router.PendingLen())
	}
}
