// Package logs builds the process logger: a text handler on the terminal, fanned out to the
// systemd journal when running as a service.
package logs

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	slogmulti "github.com/samber/slog-multi"
	slogjournal "github.com/systemd/slog-journal"
)

var level = new(slog.LevelVar)

// SetDebug toggles debug output on every logger built by New.
func SetDebug(debug bool) {
	if debug {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}
}

// New returns a logger writing text records to w, fanned out to the systemd journal when
// one is available. Under a systemd service only the journal is written.
func New(w io.Writer) *slog.Logger {
	return newLogger(w, isSystemdService(), newJournalHandler)
}

// journalFunc builds the journal handler; tests substitute their own.
type journalFunc func() (slog.Handler, error)

func newJournalHandler() (slog.Handler, error) {
	return slogjournal.NewHandler(&slogjournal.Options{
		Level: level,
		ReplaceGroup: func(key string) string {
			return toJournalKey(key)
		},
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			a.Key = toJournalKey(a.Key)
			return a
		},
	})
}

func newLogger(w io.Writer, service bool, journal journalFunc) *slog.Logger {
	return slog.New(slogmulti.Fanout(buildHandlers(w, service, journal)...))
}

func buildHandlers(w io.Writer, service bool, journal journalFunc) (handlers []slog.Handler) {
	// local
	var terminalHandler slog.Handler
	if !service {
		terminalHandler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
		handlers = append(handlers, terminalHandler)
	}

	// systemd journal
	journalHandler, err := journal()
	if err == nil {
		return append(handlers, journalHandler)
	}

	if terminalHandler == nil {
		// A service without a journal still needs somewhere to log.
		terminalHandler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
		handlers = append(handlers, terminalHandler)
	}
	record := slog.NewRecord(time.Now(), slog.LevelWarn, "new systemd journal handler", 0)
	record.Add("error", err)
	_ = terminalHandler.Handle(context.Background(), record)
	return handlers
}

// WithRun tags every record of logger with a fresh run id and returns both.
func WithRun(logger *slog.Logger) (*slog.Logger, string) {
	id := uuid.New().String()
	return logger.With("run", id), id
}

func toJournalKey(str string) string {
	str = strings.ToUpper(str)
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' ||
			r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, str)
}

func isSystemdService() bool {
	content, err := os.ReadFile("/proc/self/cgroup")
	if err != nil {
		return false
	}
	parts := strings.Split(strings.TrimSpace(string(content)), ":")
	if len(parts) < 3 {
		return false
	}
	return strings.HasSuffix(path.Dir(parts[2]), ".service")
}
