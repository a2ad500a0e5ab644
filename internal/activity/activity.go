// Package activity records store mutations to the structured activity log.
package activity

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/twiced-technology-gmbh/tasknest/internal/store"
)

const (
	logFileMode = 0o600
	// MaxEntries is the number of lines kept when the log is trimmed.
	MaxEntries = 10000
)

// Attach subscribes to s and writes one Info entry per mutation. The returned
// function stops recording.
func Attach(s *store.Store, log *zap.Logger) (detach func()) {
	log = log.Named("activity")
	return s.Subscribe(func(ev store.Event) {
		fields := []zap.Field{
			zap.String("action", string(ev.Kind)),
			zap.Time("at", ev.At),
		}
		switch len(ev.TaskIDs) {
		case 0:
		case 1:
			fields = append(fields, zap.String("task_id", ev.TaskIDs[0]))
		default:
			fields = append(fields, zap.String("task_id", ev.TaskIDs[0]), zap.Strings("task_ids", ev.TaskIDs))
		}
		if ev.Tag != "" {
			fields = append(fields, zap.String("tag", ev.Tag))
		}
		if ev.Detail != "" {
			fields = append(fields, zap.String("detail", ev.Detail))
		}
		log.Info("task mutation", fields...)
	})
}

// Trim rewrites the log file at path keeping only the newest keep lines.
// A missing file is not an error.
func Trim(path string, keep int) error {
	f, err := os.Open(path) //nolint:gosec // path comes from config
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("opening activity log: %w", err)
	}

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	_ = f.Close()

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading activity log: %w", err)
	}
	if len(lines) <= keep {
		return nil
	}

	lines = lines[len(lines)-keep:]
	var buf strings.Builder
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(buf.String()), logFileMode); err != nil {
		return fmt.Errorf("writing activity log: %w", err)
	}
	return nil
}
