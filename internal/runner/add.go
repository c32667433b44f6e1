package runner

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/XertroV/tasks/cmdstack/internal/commands"
	"github.com/XertroV/tasks/cmdstack/internal/loader"
	"github.com/XertroV/tasks/cmdstack/internal/models"
)

func runAdd(inv *invocation, opts parsedOptions) error {
	if len(opts.positional) == 0 {
		return printUsageError(inv, commands.CmdAdd, fmt.Errorf("missing command to add"))
	}
	placeholder := ""
	if opts.flag("--lines") {
		placeholder = loader.DefaultPlaceholder
	}
	if value, ok := opts.value("--lines-with"); ok {
		placeholder = value
	}

	workingDir, err := resolveWorkingDir(inv, opts)
	if err != nil {
		return err
	}
	extraEnv, err := parseEnvPairs(opts.all("--env"))
	if err != nil {
		return printUsageError(inv, commands.CmdAdd, err)
	}
	template := models.NewTask(opts.positional[0], opts.positional[1:], workingDir, extraEnv)

	tasks := []models.Task{template}
	if placeholder != "" {
		tasks, err = loader.New(inv.env.Stdin).LoadTasks(template, placeholder)
		if err != nil {
			return err
		}
	}
	if len(tasks) == 0 {
		return ErrNoTasksConstructed
	}

	stack, err := inv.store.Read(inv.namespace)
	if err != nil {
		return err
	}
	atEnd := opts.flag("--end")
	added := 0
	for i := range tasks {
		// Front placement walks backwards so the first input line runs first.
		task := tasks[len(tasks)-1-i]
		if atEnd {
			task = tasks[i]
		}
		if opts.flag("--unique") && stack.Contains(task) {
			inv.logger.Info("skipping command already on the stack", "command", task.CommandLine())
			continue
		}
		if atEnd {
			stack.PushLast(task)
		} else {
			stack.PushNext(task)
		}
		added++
		inv.logger.Debug("added command", "command", task.CommandLine(), "working_dir", task.WorkingDir)
	}
	if added > 0 {
		if err := inv.store.Write(inv.namespace, stack); err != nil {
			return err
		}
	}
	if !opts.flag("--quiet") {
		inv.printf("%s pending\n", pluralCommands(stack.Len()))
	}
	return nil
}

func resolveWorkingDir(inv *invocation, opts parsedOptions) (string, error) {
	cwd := inv.cwd()
	dir, ok := opts.value("--working-dir")
	if !ok {
		if cwd == "" {
			return "", fmt.Errorf("cannot determine current directory")
		}
		return cwd, nil
	}
	if filepath.IsAbs(dir) || cwd == "" {
		return filepath.Clean(dir), nil
	}
	return filepath.Join(cwd, dir), nil
}

func parseEnvPairs(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(raw))
	for _, pair := range raw {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid --env value %q, expected KEY=VALUE", pair)
		}
		out[key] = value
	}
	return out, nil
}
