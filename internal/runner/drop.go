package runner

import (
	"github.com/XertroV/tasks/cmdstack/internal/commands"
	"github.com/XertroV/tasks/cmdstack/internal/models"
	"github.com/XertroV/tasks/cmdstack/internal/stack"
)

func runDrop(inv *invocation, opts parsedOptions) error {
	count, err := opts.positiveInt("--count", 1)
	if err != nil {
		return printUsageError(inv, commands.CmdDrop, err)
	}
	quiet := opts.flag("--quiet")

	current, err := inv.store.Read(inv.namespace)
	if err != nil {
		return err
	}
	if current.IsEmpty() {
		if !quiet {
			inv.eprintf("%s\n", inv.errOut.warning("no commands"))
		}
		return nil
	}

	dropped := stack.Drop(current, stack.DropOptions{
		Count:   count,
		All:     opts.flag("--all"),
		FromEnd: opts.flag("--end"),
	})
	if err := inv.store.Write(inv.namespace, current); err != nil {
		return err
	}
	if quiet {
		return nil
	}
	for _, entry := range dropped {
		marker := ""
		if models.IsRunning(entry) {
			marker = " " + inv.out.warning("(was running)")
		}
		inv.printf("%s %s%s\n", inv.out.muted("dropped:"), entry.EntryTask().CommandLine(), marker)
	}
	inv.printf("%s left\n", pluralCommands(current.Len()))
	return nil
}
