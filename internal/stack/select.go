package stack

import (
	"log/slog"

	"github.com/XertroV/tasks/cmdstack/internal/models"
)

// SelectOptions controls which entries MarkTasksToRun claims.
type SelectOptions struct {
	RestartRunning bool
	All            bool
	Count          int
	RunEpoch       uint32
	RunGroup       uint32
}

// Claim is a task selected for this invocation together with its run id.
type Claim struct {
	Task  models.Task
	RunID models.RunID
}

// MarkTasksToRun walks the stack from next to last, rewriting eligible
// entries as Running in place. It stops once Count entries are claimed
// unless All is set. Running entries are skipped with a warning unless
// RestartRunning is set; skipped entries do not count toward Count.
func MarkTasksToRun(stack *models.Stack, opts SelectOptions, logger *slog.Logger) []Claim {
	if stack.IsEmpty() {
		return nil
	}
	claims := make([]Claim, 0)
	var sequence uint32
	for idx := len(stack.Entries) - 1; idx >= 0; idx-- {
		if !opts.All && len(claims) >= opts.Count {
			break
		}
		entry := stack.Entries[idx]
		if running, ok := entry.(models.Running); ok && !opts.RestartRunning {
			logger.Warn("skipping task that is already running or failed silently",
				"position", stack.Position(idx),
				"command", running.Task.CommandLine(),
				"run_id", running.RunID.String())
			continue
		}
		runID := models.RunID{
			RunEpochSeconds: opts.RunEpoch,
			RunGroup:        opts.RunGroup,
			Sequence:        sequence,
		}
		sequence++
		task := entry.EntryTask()
		stack.Entries[idx] = models.Running{Task: task, RunID: runID}
		claims = append(claims, Claim{Task: task.Clone(), RunID: runID})
		logger.Debug("claimed task", "position", stack.Position(idx), "command", task.CommandLine(), "run_id", runID.String())
	}
	return claims
}
