package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
)

// NewEventLog opens a daily-rotated append-only file under dir for the
// domain event consumer. Files are named events.YYYYMMDD.log and a
// stable events.log symlink points at the current one; files older than
// maxAge are removed.
func NewEventLog(dir string, maxAge time.Duration) (io.WriteCloser, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	w, err := rotatelogs.New(
		filepath.Join(dir, "events.%Y%m%d.log"),
		rotatelogs.WithLinkName(filepath.Join(dir, "events.log")),
		rotatelogs.WithRotationTime(24*time.Hour),
		rotatelogs.WithMaxAge(maxAge),
	)
	if err != nil {
		return nil, fmt.Errorf("event log: %w", err)
	}
	return w, nil
}
