package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/XertroV/tasks/cmdstack/internal/models"
)

// Outcome is the result of one child process. Spawned is false when the
// process could not be started at all; Err then says why.
type Outcome struct {
	Status  models.Status
	Spawned bool
	Err     error
}

// ProcessRunner executes one task to completion.
type ProcessRunner interface {
	Run(ctx context.Context, task models.Task) Outcome
}

// ExecRunner runs tasks as child processes, forwarding their output.
type ExecRunner struct {
	Programs *ProgramCache
	Stdout   io.Writer
	Stderr   io.Writer
	Environ  func() []string
}

func NewExecRunner(programs *ProgramCache, stdout, stderr io.Writer) *ExecRunner {
	if programs == nil {
		programs = NewProgramCache()
	}
	return &ExecRunner{
		Programs: programs,
		Stdout:   lockWriter(stdout),
		Stderr:   lockWriter(stderr),
		Environ:  os.Environ,
	}
}

// Run blocks until the child exits. The child inherits the caller's
// environment with the task's extra variables layered on top.
func (r *ExecRunner) Run(ctx context.Context, task models.Task) Outcome {
	if err := ctx.Err(); err != nil {
		return Outcome{Status: models.Skipped()}
	}
	path, err := r.Programs.Resolve(task.Program, task.WorkingDir)
	if err != nil {
		return Outcome{Status: models.FailedWithoutCode(), Err: fmt.Errorf("resolve %s: %w", task.Program, err)}
	}

	cmd := exec.Command(path, task.Args...)
	cmd.Dir = task.WorkingDir
	cmd.Env = append(r.environ(), task.EnvPairs()...)
	cmd.Stdin = nil
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	if err := cmd.Start(); err != nil {
		return Outcome{Status: models.FailedWithoutCode(), Err: fmt.Errorf("start %s: %w", task.Program, err)}
	}
	err = cmd.Wait()
	if err == nil {
		return Outcome{Status: models.Succeeded(), Spawned: true}
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			return Outcome{Status: models.FailedWithCode(code), Spawned: true}
		}
		return Outcome{Status: models.FailedWithoutCode(), Spawned: true}
	}
	// Wait failed for a reason other than the exit status, e.g. an output copy error.
	return Outcome{Status: models.FailedWithoutCode(), Spawned: true, Err: fmt.Errorf("wait for %s: %w", task.Program, err)}
}

func (r *ExecRunner) environ() []string {
	if r.Environ == nil {
		return os.Environ()
	}
	return r.Environ()
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// lockWriter serializes writes from concurrent children. Files are passed
// through untouched so children write to them directly.
func lockWriter(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	if _, ok := w.(*os.File); ok {
		return w
	}
	return &syncWriter{w: w}
}
