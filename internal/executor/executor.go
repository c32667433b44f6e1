// Package executor runs claimed tasks, serially or on a bounded worker pool,
// and records one status per run id.
package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/XertroV/tasks/cmdstack/internal/models"
	"github.com/XertroV/tasks/cmdstack/internal/stack"
)

// ErrParallelStopOnFailure rejects parallel runs that should also stop at
// the first failure; unordered execution cannot honor that.
var ErrParallelStopOnFailure = errors.New("parallel execution requires --continue-on-error")

// Options controls scheduling.
type Options struct {
	ContinueOnError bool
	Parallelism     int
	Quiet           bool
}

// Validate reports configuration errors before any task starts.
func (o Options) Validate() error {
	if o.Parallelism < 1 {
		return fmt.Errorf("parallelism must be at least 1, got %d", o.Parallelism)
	}
	if !o.ContinueOnError && o.Parallelism > 1 {
		return ErrParallelStopOnFailure
	}
	return nil
}

// Executor runs claims through a ProcessRunner. Progress lines and timings
// go to Progress unless Options.Quiet is set.
type Executor struct {
	Runner   ProcessRunner
	Progress io.Writer
	Logger   *slog.Logger
	now      func() time.Time
}

func New(runner ProcessRunner, progress io.Writer, logger *slog.Logger) *Executor {
	if progress == nil {
		progress = io.Discard
	}
	return &Executor{
		Runner:   runner,
		Progress: lockWriter(progress),
		Logger:   logger,
		now:      time.Now,
	}
}

// NewRunGroup returns the random group shared by all run ids of one invocation.
func NewRunGroup() uint32 {
	return uuid.New().ID()
}

// Run executes claims and returns their statuses. Every claim starts out
// Skipped; in stop-on-failure mode the first non-success leaves the rest
// Skipped. Started children are never cancelled.
func (e *Executor) Run(ctx context.Context, claims []stack.Claim, opts Options) (*StatusMap, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	statuses := NewStatusMap()
	for _, claim := range claims {
		statuses.Set(claim.RunID, models.Skipped())
	}

	if !opts.ContinueOnError {
		for idx, claim := range claims {
			status := e.runOne(ctx, idx, len(claims), claim, opts.Quiet)
			statuses.Set(claim.RunID, status)
			if !status.IsSuccess() {
				if remaining := len(claims) - idx - 1; remaining > 0 {
					e.Logger.Info("stopping after failure", "skipped", remaining)
				}
				break
			}
		}
		return statuses, nil
	}

	group := errgroup.Group{}
	group.SetLimit(opts.Parallelism)
	for idx, claim := range claims {
		idx, claim := idx, claim
		group.Go(func() error {
			statuses.Set(claim.RunID, e.runOne(ctx, idx, len(claims), claim, opts.Quiet))
			return nil
		})
	}
	_ = group.Wait()
	return statuses, nil
}

func (e *Executor) runOne(ctx context.Context, idx, total int, claim stack.Claim, quiet bool) models.Status {
	if ctx.Err() != nil {
		return models.Skipped()
	}
	command := claim.Task.CommandLine()
	if !quiet {
		fmt.Fprintf(e.Progress, "[%d/%d] %s\n", idx+1, total, command)
	}
	started := e.clock()
	outcome := e.Runner.Run(ctx, claim.Task)
	elapsed := e.clock().Sub(started)

	switch {
	case !outcome.Spawned && outcome.Status.Kind == models.StatusFailed:
		e.Logger.Error("could not start task", "command", command, "run_id", claim.RunID.String(), "error", outcome.Err)
	case outcome.Status.Kind == models.StatusFailed:
		attrs := []any{"command", command, "run_id", claim.RunID.String(), "status", outcome.Status.String()}
		if outcome.Err != nil {
			attrs = append(attrs, "error", outcome.Err)
		}
		e.Logger.Warn("task failed", attrs...)
	default:
		e.Logger.Debug("task finished", "command", command, "status", outcome.Status.String(), "elapsed", elapsed)
	}
	if !quiet && outcome.Status.Kind != models.StatusSkipped {
		fmt.Fprintf(e.Progress, "[%d/%d] %s in %s\n", idx+1, total, outcome.Status.String(), formatElapsed(elapsed))
	}
	return outcome.Status
}

func (e *Executor) clock() time.Time {
	if e.now == nil {
		return time.Now()
	}
	return e.now()
}

func formatElapsed(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(10 * time.Millisecond).String()
}
