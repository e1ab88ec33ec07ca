package reqctx

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

type key int

const runKey key = 0

// RunContext identifies one crawl execution
type RunContext struct {
	RunID     string
	Execution int
	StartTime time.Time
}

// WithRun attaches a fresh RunContext for the given execution number
func WithRun(ctx context.Context, execution int) context.Context {
	return context.WithValue(ctx, runKey, &RunContext{
		RunID:     generateID(),
		Execution: execution,
		StartTime: time.Now(),
	})
}

// FromContext returns the RunContext of ctx, or a placeholder
func FromContext(ctx context.Context) *RunContext {
	if rc, ok := ctx.Value(runKey).(*RunContext); ok {
		return rc
	}
	return &RunContext{
		RunID:     "unknown",
		StartTime: time.Now(),
	}
}

// Logger returns l annotated with the run ID and execution number of ctx
func Logger(ctx context.Context, l zerolog.Logger) zerolog.Logger {
	rc := FromContext(ctx)
	return l.With().Str("run_id", rc.RunID).Int("execution", rc.Execution).Logger()
}

func generateID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// RunError wraps an error with the run that produced it
type RunError struct {
	RunID string
	Err   error
}

// Error implements the error interface
func (e *RunError) Error() string {
	return fmt.Sprintf("[%s] %v", e.RunID, e.Err)
}

// Unwrap returns the underlying error
func (e *RunError) Unwrap() error {
	return e.Err
}

// NewRunError wraps err with the run ID found in ctx
func NewRunError(ctx context.Context, err error) error {
	return &RunError{
		RunID: FromContext(ctx).RunID,
		Err:   err,
	}
}
