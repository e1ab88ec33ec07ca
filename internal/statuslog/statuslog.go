// Package statuslog appends one line per crawl execution to a plain-text log.
package statuslog

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/law-makers/stockcrawl/internal/utils/twtime"
	"github.com/rs/zerolog/log"
)

const (
	successMark = "[O]"
	failureMark = "[X]"
)

// Log is an append-only execution log
type Log struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

// New creates a Log writing to path
func New(path string) *Log {
	return &Log{path: path, now: time.Now}
}

// WithClock replaces the time source (tests)
func (l *Log) WithClock(now func() time.Time) *Log {
	l.now = now
	return l
}

// Path returns the log file path
func (l *Log) Path() string {
	return l.path
}

// Success records a successful execution
func (l *Log) Success(message string) error {
	return l.append(fmt.Sprintf("%s [%s] %s\n", successMark, twtime.Format(l.now()), message))
}

// Failure records a failed execution
func (l *Log) Failure(reason string) error {
	return l.append(fmt.Sprintf("%s [%s] 爬取失敗，Error: %s\n", failureMark, twtime.Format(l.now()), reason))
}

func (l *Log) append(line string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Error().Err(err).Str("file", l.path).Msg("Failed to open execution log")
		return fmt.Errorf("failed to open execution log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		log.Error().Err(err).Str("file", l.path).Msg("Failed to write execution log")
		return fmt.Errorf("failed to write execution log: %w", err)
	}

	log.Debug().Str("file", l.path).Msg("Execution status recorded")
	return nil
}
