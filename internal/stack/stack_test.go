package stack

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XertroV/tasks/cmdstack/internal/models"
)

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func pendingStack(names ...string) *models.Stack {
	s := &models.Stack{}
	for _, name := range names {
		s.PushNext(models.NewTask("echo", []string{name}, "/", nil))
	}
	return s
}

func TestMarkTasksToRunSelectsCountFromNext(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	s := pendingStack("a", "b", "c", "d")
	claims := MarkTasksToRun(s, SelectOptions{Count: 2, RunEpoch: 100, RunGroup: 9}, testLogger(&logs))

	require.Len(t, claims, 2)
	assert.Equal(t, "d", claims[0].Task.Args[0])
	assert.Equal(t, "c", claims[1].Task.Args[0])
	assert.Equal(t, models.RunID{RunEpochSeconds: 100, RunGroup: 9, Sequence: 0}, claims[0].RunID)
	assert.Equal(t, uint32(1), claims[1].RunID.Sequence)

	_, aPending := s.Entries[0].(models.Pending)
	_, bPending := s.Entries[1].(models.Pending)
	assert.True(t, aPending)
	assert.True(t, bPending)
	running, ok := s.Entries[3].(models.Running)
	require.True(t, ok)
	assert.Equal(t, claims[0].RunID, running.RunID)
}

func TestMarkTasksToRunAll(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	s := pendingStack("a", "b", "c")
	claims := MarkTasksToRun(s, SelectOptions{All: true, Count: 1}, testLogger(&logs))
	assert.Len(t, claims, 3)
	for _, entry := range s.Entries {
		assert.True(t, models.IsRunning(entry))
	}
}

func TestMarkTasksToRunSkipsRunningUnlessRestart(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	s := pendingStack("a", "b")
	s.Entries[1] = models.Running{Task: s.Entries[1].EntryTask(), RunID: models.RunID{RunGroup: 1}}

	claims := MarkTasksToRun(s, SelectOptions{Count: 1, RunGroup: 2}, testLogger(&logs))
	require.Len(t, claims, 1)
	assert.Equal(t, "a", claims[0].Task.Args[0])
	assert.Contains(t, logs.String(), "already running or failed silently")
	assert.Equal(t, uint32(1), s.Entries[1].(models.Running).RunID.RunGroup)

	logs.Reset()
	s = pendingStack("a", "b")
	s.Entries[1] = models.Running{Task: s.Entries[1].EntryTask(), RunID: models.RunID{RunGroup: 1}}
	claims = MarkTasksToRun(s, SelectOptions{Count: 1, RunGroup: 2, RestartRunning: true}, testLogger(&logs))
	require.Len(t, claims, 1)
	assert.Equal(t, "b", claims[0].Task.Args[0])
	assert.Equal(t, uint32(2), s.Entries[1].(models.Running).RunID.RunGroup)
	assert.NotContains(t, logs.String(), "already running")
}

func TestMarkTasksToRunEmptyStack(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	assert.Empty(t, MarkTasksToRun(&models.Stack{}, SelectOptions{All: true}, testLogger(&logs)))
}

func TestRemoveCompletedTasks(t *testing.T) {
	t.Parallel()

	task := func(name string) models.Task { return models.NewTask("echo", []string{name}, "/", nil) }
	ok := models.RunID{Sequence: 0}
	failed := models.RunID{Sequence: 1}
	skipped := models.RunID{Sequence: 2}
	foreign := models.RunID{RunGroup: 77}

	current := &models.Stack{Entries: []models.Entry{
		models.Pending{Task: task("pending")},
		models.Running{Task: task("foreign"), RunID: foreign},
		models.Running{Task: task("skipped"), RunID: skipped},
		models.Running{Task: task("failed"), RunID: failed},
		models.Running{Task: task("ok"), RunID: ok},
	}}
	statuses := map[models.RunID]models.Status{
		ok:      models.Succeeded(),
		failed:  models.FailedWithCode(2),
		skipped: models.Skipped(),
	}

	names := func(s *models.Stack) []string {
		out := []string{}
		for _, entry := range s.Entries {
			out = append(out, entry.EntryTask().Args[0])
		}
		return out
	}

	var logs bytes.Buffer
	result := RemoveCompletedTasks(current, statuses, ReconcileOptions{}, testLogger(&logs))
	assert.Equal(t, []string{"pending", "foreign", "skipped", "failed"}, names(result))
	assert.Contains(t, logs.String(), "not started by the current run")

	result = RemoveCompletedTasks(current, statuses, ReconcileOptions{DropFailed: true}, testLogger(&logs))
	assert.Equal(t, []string{"pending", "foreign", "skipped"}, names(result))

	result = RemoveCompletedTasks(current, statuses, ReconcileOptions{KeepSuccessful: true}, testLogger(&logs))
	assert.Equal(t, []string{"pending", "foreign", "skipped", "failed", "ok"}, names(result))
	assert.True(t, models.IsRunning(result.Entries[4]), "kept successful tasks stay Running")

	assert.Len(t, current.Entries, 5, "input must not be modified")
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	summary := Summarize(map[models.RunID]models.Status{
		{Sequence: 0}: models.Succeeded(),
		{Sequence: 1}: models.FailedWithoutCode(),
		{Sequence: 2}: models.Skipped(),
	})
	assert.Equal(t, Summary{Succeeded: 1, Failed: 1, Skipped: 1}, summary)
	assert.False(t, summary.AllSucceeded())
	assert.True(t, Summarize(map[models.RunID]models.Status{{}: models.Succeeded()}).AllSucceeded())
}

func TestDrop(t *testing.T) {
	t.Parallel()

	s := pendingStack("a", "b", "c", "d")
	dropped := Drop(s, DropOptions{Count: 1})
	require.Len(t, dropped, 1)
	assert.Equal(t, "d", dropped[0].EntryTask().Args[0])

	dropped = Drop(s, DropOptions{Count: 1, FromEnd: true})
	require.Len(t, dropped, 1)
	assert.Equal(t, "a", dropped[0].EntryTask().Args[0])

	dropped = Drop(s, DropOptions{Count: 10})
	assert.Len(t, dropped, 2)
	assert.True(t, s.IsEmpty())

	s = pendingStack("a", "b")
	assert.Len(t, Drop(s, DropOptions{All: true}), 2)
	assert.Empty(t, Drop(s, DropOptions{All: true}))
}
