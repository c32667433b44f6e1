package stack

import (
	"log/slog"

	"github.com/XertroV/tasks/cmdstack/internal/models"
)

// ReconcileOptions picks what happens to finished entries.
type ReconcileOptions struct {
	DropFailed     bool
	KeepSuccessful bool
}

// RemoveCompletedTasks returns the stack that survives a run. Pending
// entries pass through. Running entries with a status are dropped on
// success (unless KeepSuccessful, in which case they stay Running), kept on
// failure (unless DropFailed) and kept when skipped. Running entries this
// invocation does not know about belong to someone else and are kept.
func RemoveCompletedTasks(current *models.Stack, statuses map[models.RunID]models.Status, opts ReconcileOptions, logger *slog.Logger) *models.Stack {
	if current == nil {
		return &models.Stack{}
	}
	out := &models.Stack{Entries: make([]models.Entry, 0, current.Len())}
	for idx, entry := range current.Entries {
		running, ok := entry.(models.Running)
		if !ok {
			out.Entries = append(out.Entries, entry)
			continue
		}
		status, known := statuses[running.RunID]
		if !known {
			logger.Warn("task is running but was not started by the current run",
				"position", current.Position(idx),
				"command", running.Task.CommandLine(),
				"run_id", running.RunID.String())
			out.Entries = append(out.Entries, entry)
			continue
		}
		switch status.Kind {
		case models.StatusSuccess:
			if opts.KeepSuccessful {
				out.Entries = append(out.Entries, entry)
			}
		case models.StatusFailed:
			if !opts.DropFailed {
				out.Entries = append(out.Entries, entry)
			}
		default:
			out.Entries = append(out.Entries, entry)
		}
	}
	return out
}

// Summary counts outcomes in a status map.
type Summary struct {
	Succeeded int
	Failed    int
	Skipped   int
}

func Summarize(statuses map[models.RunID]models.Status) Summary {
	summary := Summary{}
	for _, status := range statuses {
		switch status.Kind {
		case models.StatusSuccess:
			summary.Succeeded++
		case models.StatusFailed:
			summary.Failed++
		default:
			summary.Skipped++
		}
	}
	return summary
}

// AllSucceeded is true when every recorded status is a success.
func (s Summary) AllSucceeded() bool {
	return s.Failed == 0 && s.Skipped == 0
}
