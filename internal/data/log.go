package data

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/arian-lol/msg-mirror/internal/biz/repo"
)

const (
	logFileName   = "msgs.log"
	logBackupName = logFileName + ".1"
	maxLogBytes   = 256 * 1024
	logTimeLayout = "2006-01-02T15:04:05.000"
	logConsoleTag = "MsgMirror"
)

// logRepo implements the rotating diagnostic log.
// One lock guards append, rotation, read and clear.
type logRepo struct {
	mu   sync.Mutex
	dir  string
	echo bool
	now  func() time.Time
}

// NewLogRepo creates the rotating log under dir.
// With echo set, every appended line is also printed to stdout.
func NewLogRepo(dir string, echo bool) repo.LogRepo {
	return newLogRepo(dir, echo)
}

func newLogRepo(dir string, echo bool) *logRepo {
	// Best-effort: a missing directory only makes later appends no-ops
	_ = os.MkdirAll(dir, 0755)
	return &logRepo{dir: dir, echo: echo, now: time.Now}
}

func (r *logRepo) path() string       { return filepath.Join(r.dir, logFileName) }
func (r *logRepo) backupPath() string { return filepath.Join(r.dir, logBackupName) }

// Append writes "<timestamp> <line>", rotating first if the live file is over the limit
func (r *logRepo) Append(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.echo {
		fmt.Printf("[%s] %s\n", logConsoleTag, line)
	}

	if info, err := os.Stat(r.path()); err == nil && info.Size() > maxLogBytes {
		r.rotate()
	}

	f, err := os.OpenFile(r.path(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = f.WriteString(r.now().Format(logTimeLayout) + " " + line + "\n")
}

// Read returns the live file contents, or "" if there is none
func (r *logRepo) Read() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path())
	if err != nil {
		return ""
	}
	return string(data)
}

// Clear deletes the live file; the backup generation is kept
func (r *logRepo) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	_ = os.Remove(r.path())
}

// rotate keeps exactly one backup generation. Caller holds mu.
func (r *logRepo) rotate() {
	_ = os.Remove(r.backupPath())
	_ = os.Rename(r.path(), r.backupPath())
}
