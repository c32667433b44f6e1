package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/XertroV/tasks/cmdstack/cmd"
	"github.com/XertroV/tasks/cmdstack/internal/commands"
	"github.com/XertroV/tasks/cmdstack/internal/config"
	"github.com/XertroV/tasks/cmdstack/internal/executor"
	"github.com/XertroV/tasks/cmdstack/internal/logging"
	"github.com/XertroV/tasks/cmdstack/internal/store"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitFatal   = 2
)

var (
	// ErrTasksFailed means `do` ran and at least one claimed task did not succeed.
	ErrTasksFailed = errors.New("not all commands succeeded")
	// ErrEmptyStack means `do` found nothing to run and --allow-empty was not given.
	ErrEmptyStack = errors.New("no commands to run")
	// ErrNoCommands is the silent result of `list --exit-code` on an empty stack.
	ErrNoCommands = errors.New("no commands")
	// ErrNoTasksConstructed means `add` built zero tasks, e.g. from empty input.
	ErrNoTasksConstructed = errors.New("no commands were constructed to add")
)

// UsageError wraps argument problems; the command help is printed first.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }

func (e *UsageError) Unwrap() error { return e.Err }

// ExitCode maps an error returned by Run to a process exit code. Per-task
// failures and empty stacks are 1; everything else is a fatal 2.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, ErrTasksFailed), errors.Is(err, ErrEmptyStack), errors.Is(err, ErrNoCommands):
		return exitFailure
	default:
		return exitFatal
	}
}

// IsSilent reports errors the caller should not print again: the list
// exit-code result and usage errors, which were reported with the help text.
func IsSilent(err error) bool {
	var usageErr *UsageError
	return errors.Is(err, ErrNoCommands) || errors.As(err, &usageErr)
}

// Env holds the process surroundings of one invocation. Zero fields fall
// back to the real process: os streams, os.Getwd, config file settings and
// child processes.
type Env struct {
	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer
	Getwd    func() (string, error)
	Settings *config.Settings
	Runner   executor.ProcessRunner
	Now      func() time.Time
}

// invocation is the resolved state shared by command handlers.
type invocation struct {
	ctx       context.Context
	env       Env
	settings  config.Settings
	store     *store.Store
	namespace string
	out       styler
	errOut    styler
	logger    *slog.Logger
}

// Run executes the command line with the real process environment.
func Run(rawArgs ...string) error {
	return RunContext(context.Background(), rawArgs...)
}

// RunContext is Run with a context; cancelling it stops new tasks from starting.
func RunContext(ctx context.Context, rawArgs ...string) error {
	if len(rawArgs) == 0 {
		rawArgs = os.Args[1:]
	}
	return RunWith(ctx, Env{}, rawArgs...)
}

// RunWith executes a command line against env.
func RunWith(ctx context.Context, env Env, rawArgs ...string) error {
	env = env.withDefaults()
	args := make([]string, len(rawArgs))
	copy(args, rawArgs)

	settings, err := resolveSettings(env)
	if err != nil {
		return err
	}
	filtered, colorMode, err := parseCommandColorFlags(args, colorModeFromSetting(settings.Color))
	if err != nil {
		return err
	}
	args = filtered

	inv := &invocation{
		ctx:      ctx,
		env:      env,
		settings: settings,
		out:      newStyler(colorMode, env.Stdout),
		errOut:   newStyler(colorMode, env.Stderr),
	}

	namespace, args, err := parseGlobalNamespace(args)
	if err != nil {
		return err
	}

	root := cmd.NewRootCommand()
	if len(args) == 0 {
		fmt.Fprintln(env.Stdout, inv.out.header(root.Usage()))
		return nil
	}
	if len(args) == 1 && (args[0] == "-h" || args[0] == "--help" || args[0] == commands.CmdHelp) {
		fmt.Fprintln(env.Stdout, inv.out.header(root.Usage()))
		return nil
	}
	if len(args) == 1 && (args[0] == "-V" || args[0] == "--version" || args[0] == commands.CmdVersion) {
		fmt.Fprintf(env.Stdout, "%s version %s\n", inv.out.success(root.Name()), root.Version())
		return nil
	}

	normalized := strings.ToLower(strings.TrimSpace(args[0]))
	command, _ := root.Resolve(normalized)
	payload := args[1:]
	if !root.IsKnownCommand(command) {
		fmt.Fprintf(env.Stderr, "%s %s\n", inv.errOut.errorText("Unknown command:"), inv.errOut.warning(normalized))
		fmt.Fprintln(env.Stderr, inv.errOut.muted(fmt.Sprintf("Run '%s --help' for available commands.", root.Name())))
		return &UsageError{Err: fmt.Errorf("unknown command: %s", normalized)}
	}
	if command == commands.CmdHelp {
		if len(payload) > 0 {
			printUsageForCommand(inv, payload[0])
		} else {
			fmt.Fprintln(env.Stdout, inv.out.header(root.Usage()))
		}
		return nil
	}
	if command == commands.CmdVersion {
		fmt.Fprintf(env.Stdout, "%s version %s\n", inv.out.success(root.Name()), root.Version())
		return nil
	}

	specs := commandOptionSpecs(command)
	opts, err := parseOptions(payload, specs, command == commands.CmdAdd)
	if err != nil {
		return printUsageError(inv, command, err)
	}
	if opts.flag("--help") {
		printUsageForCommand(inv, command)
		return nil
	}
	if command != commands.CmdAdd && len(opts.positional) > 0 {
		return printUsageError(inv, command, fmt.Errorf("unexpected argument: %s", opts.positional[0]))
	}
	if value, ok := opts.value("--namespace"); ok {
		namespace = value
	}
	if namespace == "" {
		namespace = config.NamespaceFromEnv()
	}
	if err := config.ValidateNamespace(namespace); err != nil {
		return err
	}
	inv.namespace = namespace

	inv.logger = logging.Setup(logging.Options{
		Level:   settings.LogLevel,
		Quiet:   opts.flag("--quiet"),
		Verbose: opts.flag("--verbose"),
		Output:  env.Stderr,
	})
	st, err := store.New(settings.DataDir)
	if err != nil {
		return err
	}
	inv.store = st
	inv.logger.Debug("resolved invocation", "command", command, "namespace", namespace, "data_dir", settings.DataDir)

	switch command {
	case commands.CmdAdd:
		return runAdd(inv, opts)
	case commands.CmdDo:
		return runDo(inv, opts)
	case commands.CmdDrop:
		return runDrop(inv, opts)
	case commands.CmdList:
		return runList(inv, opts)
	default:
		return fmt.Errorf("command not implemented: %s", command)
	}
}

func (e Env) withDefaults() Env {
	if e.Stdin == nil {
		e.Stdin = os.Stdin
	}
	if e.Stdout == nil {
		e.Stdout = os.Stdout
	}
	if e.Stderr == nil {
		e.Stderr = os.Stderr
	}
	if e.Getwd == nil {
		e.Getwd = os.Getwd
	}
	if e.Now == nil {
		e.Now = time.Now
	}
	return e
}

func resolveSettings(env Env) (config.Settings, error) {
	if env.Settings != nil {
		settings := *env.Settings
		if err := settings.Validate(); err != nil {
			return config.Settings{}, err
		}
		return settings, nil
	}
	path, err := config.SettingsPath()
	if err != nil {
		return config.Settings{}, err
	}
	return config.LoadSettings(path)
}

// parseGlobalNamespace consumes a leading -N/--namespace before the command name.
func parseGlobalNamespace(args []string) (string, []string, error) {
	namespace := ""
	for len(args) > 0 {
		flag, hasValue := splitOption(args[0])
		if flag != "-N" && flag != "--namespace" {
			break
		}
		if hasValue {
			namespace = strings.TrimPrefix(args[0], flag+"=")
			args = args[1:]
			continue
		}
		if len(args) < 2 {
			return "", nil, fmt.Errorf("missing value for %s", flag)
		}
		namespace = args[1]
		args = args[2:]
	}
	return namespace, args, nil
}

func (inv *invocation) printf(format string, args ...any) {
	fmt.Fprintf(inv.env.Stdout, format, args...)
}

func (inv *invocation) eprintf(format string, args ...any) {
	fmt.Fprintf(inv.env.Stderr, format, args...)
}

func (inv *invocation) cwd() string {
	wd, err := inv.env.Getwd()
	if err != nil {
		return ""
	}
	return wd
}

func pluralCommands(count int) string {
	if count == 1 {
		return "1 command"
	}
	return fmt.Sprintf("%d commands", count)
}
