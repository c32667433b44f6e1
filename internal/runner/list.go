package runner

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/XertroV/tasks/cmdstack/internal/commands"
	"github.com/XertroV/tasks/cmdstack/internal/models"
)

type listItem struct {
	Position   int               `json:"position" yaml:"position"`
	Running    bool              `json:"running" yaml:"running"`
	Command    string            `json:"command" yaml:"command"`
	Program    string            `json:"program" yaml:"program"`
	Args       []string          `json:"args" yaml:"args"`
	WorkingDir string            `json:"working_dir" yaml:"working_dir"`
	ExtraEnv   map[string]string `json:"extra_env,omitempty" yaml:"extra_env,omitempty"`
	RunID      string            `json:"run_id,omitempty" yaml:"run_id,omitempty"`
}

func runList(inv *invocation, opts parsedOptions) error {
	if opts.flag("--file") {
		path, err := inv.store.Path(inv.namespace)
		if err != nil {
			return err
		}
		inv.printf("%s\n", path)
		return nil
	}
	format := "text"
	if value, ok := opts.value("--format"); ok {
		format = strings.ToLower(strings.TrimSpace(value))
	}
	if format != "text" && format != "json" && format != "yaml" {
		return printUsageError(inv, commands.CmdList, fmt.Errorf("invalid --format: %s (expected text, json or yaml)", format))
	}

	current, err := inv.store.Read(inv.namespace)
	if err != nil {
		return err
	}
	if opts.flag("--exit-code") {
		if current.IsEmpty() {
			return ErrNoCommands
		}
		return nil
	}

	items := listItems(current)
	switch format {
	case "json":
		payload, err := json.MarshalIndent(items, "", "  ")
		if err != nil {
			return err
		}
		inv.printf("%s\n", payload)
		return nil
	case "yaml":
		payload, err := yaml.Marshal(items)
		if err != nil {
			return err
		}
		inv.printf("%s", payload)
		return nil
	}

	if current.IsEmpty() {
		if !opts.flag("--quiet") {
			inv.eprintf("%s\n", inv.errOut.warning("no commands"))
		}
		return nil
	}
	cwd := inv.cwd()
	for _, item := range items {
		inv.printf("%s  %s\n", item.Command, inv.out.muted("# "+listAnnotation(item, cwd)))
	}
	return nil
}

// listItems orders entries next first; position 1 runs next.
func listItems(stack *models.Stack) []listItem {
	items := make([]listItem, 0, stack.Len())
	for idx := stack.Len() - 1; idx >= 0; idx-- {
		entry := stack.Entries[idx]
		task := entry.EntryTask()
		item := listItem{
			Position:   stack.Position(idx),
			Command:    task.CommandLine(),
			Program:    task.Program,
			Args:       append([]string{}, task.Args...),
			WorkingDir: task.WorkingDir,
			ExtraEnv:   task.ExtraEnv,
		}
		if running, ok := entry.(models.Running); ok {
			item.Running = true
			item.RunID = running.RunID.String()
		}
		items = append(items, item)
	}
	return items
}

func listAnnotation(item listItem, cwd string) string {
	var b strings.Builder
	if item.Running {
		b.WriteString("running ")
	}
	b.WriteString(strconv.Itoa(item.Position))
	if item.WorkingDir != "" && item.WorkingDir != cwd {
		b.WriteString(" @")
		b.WriteString(item.WorkingDir)
	}
	return b.String()
}
