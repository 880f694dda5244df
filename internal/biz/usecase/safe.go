package usecase

import (
	"fmt"

	"github.com/arian-lol/msg-mirror/internal/biz/repo"
)

// orDefault runs fn and returns its value, or def if fn errors or panics.
// Every suppressed failure leaves one line in the log naming what failed.
func orDefault[T any](log repo.LogRepo, what string, def T, fn func() (T, error)) (v T) {
	defer func() {
		if r := recover(); r != nil {
			logf(log, "%s failed: %v", what, r)
			v = def
		}
	}()

	v, err := fn()
	if err != nil {
		logf(log, "%s failed: %v", what, err)
		return def
	}
	return v
}

// safely runs fn inside its own failure boundary
func safely(log repo.LogRepo, what string, fn func() error) {
	orDefault(log, what, struct{}{}, func() (struct{}, error) {
		return struct{}{}, fn()
	})
}

func logf(log repo.LogRepo, format string, args ...interface{}) {
	if log == nil {
		return
	}
	log.Append(fmt.Sprintf(format, args...))
}
