package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/XertroV/tasks/cmdstack/internal/commands"
)

// RootCommand captures shared CLI metadata and the supported command list.
type RootCommand struct {
	name     string
	version  string
	commands []string
	aliases  map[string]string
}

func NewRootCommand() *RootCommand {
	known := []string{
		commands.CmdAdd,
		commands.CmdDo,
		commands.CmdDrop,
		commands.CmdHelp,
		commands.CmdList,
		commands.CmdVersion,
	}
	sort.Strings(known)

	return &RootCommand{
		name:     "cmdstack",
		version:  "0.1.0",
		commands: known,
		aliases: map[string]string{
			commands.CmdLs:  commands.CmdList,
			commands.CmdRun: commands.CmdDo,
			commands.CmdPop: commands.CmdDrop,
		},
	}
}

func (r *RootCommand) Name() string {
	return r.name
}

func (r *RootCommand) Version() string {
	return r.version
}

func (r *RootCommand) Commands() []string {
	out := append([]string{}, r.commands...)
	sort.Strings(out)
	return out
}

// Resolve maps an alias to its command and reports whether an alias was used.
func (r *RootCommand) Resolve(candidate string) (string, bool) {
	if target, ok := r.aliases[candidate]; ok {
		return target, true
	}
	return candidate, false
}

func (r *RootCommand) IsKnownCommand(candidate string) bool {
	candidate, _ = r.Resolve(candidate)
	for _, command := range r.commands {
		if command == candidate {
			return true
		}
	}
	return false
}

func (r *RootCommand) Usage() string {
	return fmt.Sprintf(`Usage: %s <command> [options]

A persistent stack of shell commands, one stack per namespace.

Commands:
  %s

Global options:
  -N, --namespace NAME   Use a named stack instead of the default one
  --color, --no-color    Force or disable colored output

Run '%s <command> --help' for detailed usage on a command.`, r.name, strings.Join(r.commands, ", "), r.name)
}
