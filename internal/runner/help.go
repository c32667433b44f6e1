package runner

import (
	"fmt"

	"github.com/XertroV/tasks/cmdstack/cmd"
	"github.com/XertroV/tasks/cmdstack/internal/commands"
)

var commonOptionSpecs = []optionSpec{
	{names: []string{"--namespace", "-N"}, value: valueRequired},
	{names: []string{"--quiet", "-q"}},
	{names: []string{"--verbose", "-v"}},
	{names: []string{"--help", "-h"}},
}

var commandOptions = map[string][]optionSpec{
	commands.CmdAdd: {
		{names: []string{"--end", "-e"}},
		{names: []string{"--lines", "-l"}},
		{names: []string{"--lines-with", "-L"}, value: valueRequired},
		{names: []string{"--unique", "-u"}},
		{names: []string{"--working-dir", "-w"}, value: valueRequired},
		{names: []string{"--env", "-E"}, value: valueRequired},
	},
	commands.CmdDo: {
		{names: []string{"--count", "-n"}, value: valueRequired},
		{names: []string{"--all", "-a"}},
		{names: []string{"--parallel", "-p"}, value: valueOptionalInt},
		{names: []string{"--continue-on-error", "-c"}},
		{names: []string{"--restart-running", "-r"}},
		{names: []string{"--drop-failed", "-f"}},
		{names: []string{"--keep", "-k"}},
		{names: []string{"--allow-empty"}},
	},
	commands.CmdDrop: {
		{names: []string{"--count", "-n"}, value: valueRequired},
		{names: []string{"--all", "-a"}},
		{names: []string{"--end", "-e"}},
	},
	commands.CmdList: {
		{names: []string{"--file", "-p"}},
		{names: []string{"--exit-code", "-e"}},
		{names: []string{"--format", "-f"}, value: valueRequired},
	},
}

func commandOptionSpecs(command string) []optionSpec {
	out := append([]optionSpec{}, commonOptionSpecs...)
	return append(out, commandOptions[command]...)
}

type commandUsageSpec struct {
	summary  string
	usage    string
	options  []string
	examples []string
}

var commonUsageOptions = []string{
	"-N, --namespace NAME      Use a named stack (default: $CMDSTACK_NAMESPACE or the default stack)",
	"-q, --quiet               Only print warnings and errors",
	"-v, --verbose             Print debug logs to stderr",
}

var commandUsage = map[string]commandUsageSpec{
	commands.CmdAdd: {
		summary: "Push a command onto the stack so it runs next.",
		usage:   "cmdstack add [options] [--] PROGRAM [ARGS...]",
		options: []string{
			"-e, --end                 Add at the end, so it runs after everything queued",
			"-l, --lines               Add one command per stdin line, replacing '{}'",
			"-L, --lines-with TOKEN    Like --lines with a custom placeholder",
			"-u, --unique              Skip commands already on the stack",
			"-w, --working-dir DIR     Run in DIR instead of the current directory",
			"-E, --env KEY=VALUE       Extra environment variable (repeatable)",
		},
		examples: []string{
			"cmdstack add cargo test",
			"ls *.log | cmdstack add --lines --end gzip {}",
			"cmdstack -N deploy add -w ./web -- npm run build",
		},
	},
	commands.CmdDo: {
		summary: "Run commands from the stack and drop the ones that succeed.",
		usage:   "cmdstack do [options]",
		options: []string{
			"-n, --count N             Run N commands (default 1)",
			"-a, --all                 Run every pending command",
			"-p, --parallel [N]        Run up to N commands at once (needs --continue-on-error)",
			"-c, --continue-on-error   Keep going after a failure",
			"-r, --restart-running     Also run commands marked as running",
			"-f, --drop-failed         Remove failed commands instead of keeping them",
			"-k, --keep                Keep successful commands on the stack",
			"    --allow-empty         Succeed when there is nothing to run",
		},
		examples: []string{
			"cmdstack do",
			"cmdstack do --all --continue-on-error --parallel 4",
		},
	},
	commands.CmdDrop: {
		summary: "Remove commands from the stack without running them.",
		usage:   "cmdstack drop [options]",
		options: []string{
			"-n, --count N             Drop N commands (default 1)",
			"-a, --all                 Drop every command",
			"-e, --end                 Drop from the end instead of the next command",
		},
		examples: []string{"cmdstack drop", "cmdstack drop --all"},
	},
	commands.CmdList: {
		summary: "Show the commands on the stack, next first.",
		usage:   "cmdstack list [options]",
		options: []string{
			"-p, --file                Print the path of the stack file",
			"-e, --exit-code           Print nothing; exit 0 if commands are queued, 1 otherwise",
			"-f, --format FORMAT       text (default), json or yaml",
		},
		examples: []string{"cmdstack list", "cmdstack ls --format json", "cmdstack list -e && echo busy"},
	},
}

func printUsageForCommand(inv *invocation, command string) {
	command, _ = cmd.NewRootCommand().Resolve(command)
	spec, ok := commandUsage[command]
	if !ok {
		inv.printf("%s cmdstack %s\n", inv.out.subHeader("Usage:"), command)
		return
	}
	inv.printf("%s\n\n", inv.out.header(spec.summary))
	inv.printf("%s %s\n", inv.out.subHeader("Usage:"), spec.usage)
	inv.printf("\n%s\n", inv.out.subHeader("Options:"))
	for _, option := range append(append([]string{}, spec.options...), commonUsageOptions...) {
		inv.printf("  %s\n", option)
	}
	if len(spec.examples) > 0 {
		inv.printf("\n%s\n", inv.out.subHeader("Examples:"))
		for _, example := range spec.examples {
			inv.printf("  %s\n", inv.out.muted(example))
		}
	}
}

// printUsageError prints the command help to stderr along with err.
func printUsageError(inv *invocation, command string, err error) error {
	if spec, ok := commandUsage[command]; ok {
		inv.eprintf("%s %s\n", inv.errOut.subHeader("Usage:"), spec.usage)
	}
	inv.eprintf("%s\n", inv.errOut.errorText(err.Error()))
	inv.eprintf("%s\n", inv.errOut.muted(fmt.Sprintf("Run 'cmdstack %s --help' for details.", command)))
	return &UsageError{Err: err}
}
