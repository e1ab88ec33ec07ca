package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"

	"github.com/law-makers/stockcrawl/internal/ui"
)

// Summary reports a whole run
type Summary struct {
	Planned     int
	Completed   int
	Succeeded   int
	Interrupted bool
	Elapsed     time.Duration
	Executions  []Execution
}

// Run performs the configured number of executions. A successful execution
// waits out the rest of the interval before the next one starts; a failed
// one waits the full interval. Nothing is waited after the last execution.
// Cancelling ctx stops the run and records the interruption.
func (r *Runner) Run(ctx context.Context) Summary {
	start := time.Now()
	s := Summary{Planned: r.cfg.Executions}

	r.banner()

	for n := 1; n <= r.cfg.Executions; n++ {
		fmt.Fprintf(r.out, "\n%s\n", ui.Bold(fmt.Sprintf("===== 第 %d/%d 次爬蟲 =====", n, r.cfg.Executions)))

		exec := r.Execute(ctx, n)
		if errors.Is(exec.Err, ErrInterrupted) {
			s.Interrupted = true
			break
		}
		s.Completed++
		s.Executions = append(s.Executions, exec)

		wait := r.cfg.Interval
		if exec.Err == nil {
			s.Succeeded++
			wait -= exec.Elapsed
		} else {
			fmt.Fprintf(r.out, "%s\n", ui.Error(fmt.Sprintf("第 %d 次爬蟲失敗", n)))
		}

		if n == r.cfg.Executions {
			break
		}
		if err := r.wait(ctx, wait); err != nil {
			s.Interrupted = true
			break
		}
	}

	s.Elapsed = time.Since(start)
	if s.Interrupted {
		r.record(log.Logger, false, ErrInterrupted.Error())
		log.Warn().Int("completed", s.Completed).Msg("Run interrupted")
	} else {
		log.Info().
			Int("completed", s.Completed).
			Int("succeeded", s.Succeeded).
			Dur("elapsed", s.Elapsed).
			Msg("Run finished")
	}
	r.summary(s)
	return s
}

// wait blocks for d while drawing a countdown, or until ctx is done
func (r *Runner) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	fmt.Fprintf(r.out, "\n等待 %.1f 秒後進行下一次爬蟲...\n", d.Seconds())
	bar := progressbar.NewOptions(int(d.Milliseconds()),
		progressbar.OptionSetWriter(r.out),
		progressbar.OptionSetDescription("下一次爬蟲"),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
	defer bar.Finish()

	start := time.Now()
	timer := time.NewTimer(d)
	defer timer.Stop()
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		case <-ticker.C:
			bar.Set(int(time.Since(start).Milliseconds()))
		}
	}
}
