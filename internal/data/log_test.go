package data

import (
	"os"
	"strings"
	"sync"
	"testing"
	"time"
)

func fixedClock() time.Time {
	return time.Date(2024, 5, 1, 12, 30, 0, 0, time.Local)
}

func TestLogRepo_AppendReadClear(t *testing.T) {
	r := newLogRepo(t.TempDir(), false)

	r.Clear()
	r.Append("hello")
	r.Append("world")

	txt := r.Read()
	if !strings.Contains(txt, "hello") || !strings.Contains(txt, "world") {
		t.Errorf("Expected both lines in log, got %q", txt)
	}

	r.Clear()
	if got := r.Read(); got != "" {
		t.Errorf("Expected empty log after clear, got %q", got)
	}
}

func TestLogRepo_LineFormat(t *testing.T) {
	r := newLogRepo(t.TempDir(), false)
	r.now = fixedClock

	r.Append("service started")

	expected := "2024-05-01T12:30:00.000 service started\n"
	if got := r.Read(); got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

func TestLogRepo_ReadMissingFile(t *testing.T) {
	r := newLogRepo(t.TempDir(), false)
	if got := r.Read(); got != "" {
		t.Errorf("Expected empty string for missing log, got %q", got)
	}
}

func TestLogRepo_RotatesOnceOverLimit(t *testing.T) {
	r := newLogRepo(t.TempDir(), false)
	r.now = fixedClock

	// Fill the primary just past the limit with sequential appends
	chunk := strings.Repeat("x", 1023)
	for {
		r.Append(chunk)
		info, err := os.Stat(r.path())
		if err != nil {
			t.Fatalf("Expected primary log to exist: %v", err)
		}
		if info.Size() > maxLogBytes {
			break
		}
	}
	if _, err := os.Stat(r.backupPath()); !os.IsNotExist(err) {
		t.Fatal("Expected no rotation while filling")
	}
	before := r.Read()

	r.Append("trigger")

	backup, err := os.ReadFile(r.backupPath())
	if err != nil {
		t.Fatalf("Expected backup after rotation: %v", err)
	}
	if string(backup) != before {
		t.Error("Backup content does not match pre-rotation primary")
	}
	if got := r.Read(); got != "2024-05-01T12:30:00.000 trigger\n" {
		t.Errorf("Expected fresh primary with only the trigger line, got %q", got)
	}

	// A further append must not rotate again
	r.Append("after")
	backupAgain, _ := os.ReadFile(r.backupPath())
	if string(backupAgain) != before {
		t.Error("Backup changed on an append below the limit")
	}
	if !strings.HasSuffix(r.Read(), "after\n") {
		t.Error("Expected second line appended to fresh primary")
	}
}

func TestLogRepo_RotationReplacesOldBackup(t *testing.T) {
	r := newLogRepo(t.TempDir(), false)

	if err := os.WriteFile(r.backupPath(), []byte("old generation\n"), 0644); err != nil {
		t.Fatalf("Failed to seed backup: %v", err)
	}
	if err := os.WriteFile(r.path(), []byte(strings.Repeat("y", maxLogBytes+1)), 0644); err != nil {
		t.Fatalf("Failed to seed primary: %v", err)
	}

	r.Append("next")

	backup, _ := os.ReadFile(r.backupPath())
	if strings.Contains(string(backup), "old generation") {
		t.Error("Expected the older backup generation to be discarded")
	}
	if len(backup) != maxLogBytes+1 {
		t.Errorf("Expected backup of %d bytes, got %d", maxLogBytes+1, len(backup))
	}
}

func TestLogRepo_ClearKeepsBackup(t *testing.T) {
	r := newLogRepo(t.TempDir(), false)
	if err := os.WriteFile(r.backupPath(), []byte("kept\n"), 0644); err != nil {
		t.Fatalf("Failed to seed backup: %v", err)
	}
	r.Append("line")

	r.Clear()

	if _, err := os.Stat(r.backupPath()); err != nil {
		t.Errorf("Expected backup to survive clear: %v", err)
	}
}

func TestLogRepo_ConcurrentAppendsDoNotInterleave(t *testing.T) {
	r := newLogRepo(t.TempDir(), false)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				r.Append(strings.Repeat("z", 200))
			}
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(r.Read(), "\n"), "\n")
	if len(lines) != 400 {
		t.Fatalf("Expected 400 lines, got %d", len(lines))
	}
	for i, line := range lines {
		if !strings.HasSuffix(line, " "+strings.Repeat("z", 200)) {
			t.Fatalf("Line %d is corrupt: %q", i, line)
		}
	}
}

func TestLogRepo_UnwritableDirIsSilent(t *testing.T) {
	dir := t.TempDir()
	blocker := dir + "/file"
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create blocker: %v", err)
	}

	// A regular file used as the log directory: every operation must be a silent no-op
	r := newLogRepo(blocker, false)
	r.Append("lost")
	if got := r.Read(); got != "" {
		t.Errorf("Expected empty read, got %q", got)
	}
	r.Clear()
}
