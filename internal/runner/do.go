package runner

import (
	"fmt"

	"github.com/XertroV/tasks/cmdstack/internal/commands"
	"github.com/XertroV/tasks/cmdstack/internal/executor"
	"github.com/XertroV/tasks/cmdstack/internal/stack"
)

type doOptions struct {
	selection  stack.SelectOptions
	execution  executor.Options
	reconcile  stack.ReconcileOptions
	allowEmpty bool
}

func parseDoOptions(inv *invocation, opts parsedOptions) (doOptions, error) {
	count, err := opts.positiveInt("--count", 1)
	if err != nil {
		return doOptions{}, printUsageError(inv, commands.CmdDo, err)
	}
	parallelism := 1
	if opts.has("--parallel") {
		parallelism, err = opts.positiveInt("--parallel", inv.settings.Parallel)
		if err != nil {
			return doOptions{}, printUsageError(inv, commands.CmdDo, err)
		}
	}
	out := doOptions{
		selection: stack.SelectOptions{
			RestartRunning: opts.flag("--restart-running"),
			All:            opts.flag("--all"),
			Count:          count,
		},
		execution: executor.Options{
			ContinueOnError: opts.flag("--continue-on-error"),
			Parallelism:     parallelism,
			Quiet:           opts.flag("--quiet"),
		},
		reconcile: stack.ReconcileOptions{
			DropFailed:     opts.flag("--drop-failed"),
			KeepSuccessful: opts.flag("--keep"),
		},
		allowEmpty: opts.flag("--allow-empty"),
	}
	if err := out.execution.Validate(); err != nil {
		return doOptions{}, err
	}
	return out, nil
}

// runDo claims tasks, persists the claim, runs them, then re-reads the
// stack and writes back what survives.
func runDo(inv *invocation, opts parsedOptions) error {
	options, err := parseDoOptions(inv, opts)
	if err != nil {
		return err
	}
	quiet := options.execution.Quiet

	current, err := inv.store.Read(inv.namespace)
	if err != nil {
		return err
	}
	if current.IsEmpty() {
		return reportNothingToRun(inv, options, "the stack is empty")
	}

	options.selection.RunEpoch = uint32(inv.env.Now().Unix())
	options.selection.RunGroup = executor.NewRunGroup()
	claims := stack.MarkTasksToRun(current, options.selection, inv.logger)
	if len(claims) == 0 {
		return reportNothingToRun(inv, options, "every command is already running")
	}
	if err := inv.store.Write(inv.namespace, current); err != nil {
		return fmt.Errorf("claim commands: %w", err)
	}

	runner := inv.env.Runner
	if runner == nil {
		runner = executor.NewExecRunner(executor.NewProgramCache(), inv.env.Stdout, inv.env.Stderr)
	}
	exec := executor.New(runner, inv.env.Stderr, inv.logger)
	statuses, err := exec.Run(inv.ctx, claims, options.execution)
	if err != nil {
		return err
	}
	results := statuses.Snapshot()

	latest, err := inv.store.Read(inv.namespace)
	if err != nil {
		return fmt.Errorf("re-read stack after run: %w", err)
	}
	remaining := stack.RemoveCompletedTasks(latest, results, options.reconcile, inv.logger)
	if err := inv.store.Write(inv.namespace, remaining); err != nil {
		return err
	}

	summary := stack.Summarize(results)
	if !quiet {
		inv.printf("%s left\n", pluralCommands(remaining.Len()))
	}
	if !summary.AllSucceeded() {
		if !quiet {
			inv.eprintf("%s\n", inv.errOut.warning(fmt.Sprintf("%d succeeded, %d failed, %d skipped", summary.Succeeded, summary.Failed, summary.Skipped)))
		}
		return fmt.Errorf("%w: %d of %d did not succeed", ErrTasksFailed, summary.Failed+summary.Skipped, len(results))
	}
	return nil
}

func reportNothingToRun(inv *invocation, options doOptions, reason string) error {
	if options.allowEmpty {
		inv.logger.Info("nothing to run", "namespace", inv.namespace, "reason", reason)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrEmptyStack, reason)
}
