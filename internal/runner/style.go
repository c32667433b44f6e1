package runner

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/XertroV/tasks/cmdstack/internal/commands"
)

const (
	ansiReset  = "\033[0m"
	ansiBright = 1
	ansiDim    = 2
	ansiRed    = 31
	ansiGreen  = 32
	ansiYellow = 33
	ansiBlue   = 34
	ansiCyan   = 36
)

const (
	colorModeAuto int32 = iota
	colorModeOn
	colorModeOff
)

// parseCommandColorFlags strips --color/--no-color from the arguments and
// returns the selected mode; fallback applies when neither flag is present.
// Arguments of the command queued by add are never touched.
func parseCommandColorFlags(rawArgs []string, fallback int32) ([]string, int32, error) {
	mode := fallback
	limit := colorFlagLimit(rawArgs)
	filtered := make([]string, 0, len(rawArgs))
	for idx, arg := range rawArgs {
		if idx >= limit {
			filtered = append(filtered, rawArgs[idx:]...)
			break
		}
		hasMode, parsedMode, parseErr := parseCommandColorFlag(arg)
		if parseErr != nil {
			return nil, colorModeAuto, parseErr
		}
		if hasMode {
			mode = parsedMode
			continue
		}
		filtered = append(filtered, arg)
	}
	return filtered, mode, nil
}

// colorFlagLimit returns the index of the first argument color flags may not
// be taken from: "--", or the program of an add command.
func colorFlagLimit(args []string) int {
	command := ""
	var addOptions map[string]optionSpec
	for idx := 0; idx < len(args); idx++ {
		arg := args[idx]
		if arg == "--" {
			return idx
		}
		flag, hasValue := splitOption(arg)
		if flag == "" {
			if command != "" {
				return idx
			}
			command = strings.ToLower(strings.TrimSpace(arg))
			if command != commands.CmdAdd {
				return len(args)
			}
			addOptions = map[string]optionSpec{}
			for _, spec := range commandOptionSpecs(commands.CmdAdd) {
				for _, name := range spec.names {
					addOptions[name] = spec
				}
			}
			continue
		}
		if hasValue {
			continue
		}
		if command == "" {
			if flag == "-N" || flag == "--namespace" {
				idx++
			}
			continue
		}
		if spec, ok := addOptions[flag]; ok && spec.value == valueRequired {
			idx++
		}
	}
	return len(args)
}

func parseCommandColorFlag(arg string) (bool, int32, error) {
	if arg == "--color" {
		return true, colorModeOn, nil
	}
	if arg == "--no-color" {
		return true, colorModeOff, nil
	}
	if strings.HasPrefix(arg, "--color=") {
		value, err := parseBooleanFlag(strings.TrimPrefix(arg, "--color="), "--color")
		if err != nil {
			return false, colorModeAuto, err
		}
		if value {
			return true, colorModeOn, nil
		}
		return true, colorModeOff, nil
	}
	if strings.HasPrefix(arg, "--no-color=") {
		value, err := parseBooleanFlag(strings.TrimPrefix(arg, "--no-color="), "--no-color")
		if err != nil {
			return false, colorModeAuto, err
		}
		if value {
			return true, colorModeOff, nil
		}
		return true, colorModeOn, nil
	}
	return false, colorModeAuto, nil
}

func colorModeFromSetting(value string) int32 {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "always":
		return colorModeOn
	case "never":
		return colorModeOff
	default:
		return colorModeAuto
	}
}

func parseBooleanFlag(value, flag string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "t", "yes", "on":
		return true, nil
	case "0", "false", "f", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid value for %s: %s", flag, value)
	}
}

// styler decides once per invocation whether output to w gets ANSI codes.
type styler struct {
	enabled bool
}

func newStyler(mode int32, w io.Writer) styler {
	switch mode {
	case colorModeOn:
		return styler{enabled: true}
	case colorModeOff:
		return styler{enabled: false}
	default:
		return styler{enabled: autoColorAllowed(w)}
	}
}

func autoColorAllowed(w io.Writer) bool {
	if parseBoolEnv("NO_COLOR") {
		return false
	}
	if value, ok := os.LookupEnv("FORCE_COLOR"); ok && strings.TrimSpace(value) != "0" {
		return true
	}
	if value, ok := os.LookupEnv("CLICOLOR_FORCE"); ok && strings.TrimSpace(value) != "0" {
		return true
	}
	if !parseBoolEnv("CLICOLOR") {
		return false
	}
	if strings.TrimSpace(strings.ToUpper(os.Getenv("TERM"))) == "DUMB" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func parseBoolEnv(name string) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	if value == "" {
		return name == "CLICOLOR"
	}
	switch value {
	case "1", "true", "yes", "on", "always":
		return true
	default:
		return false
	}
}

func (s styler) ansi(text string, attrs ...int) string {
	if !s.enabled || len(attrs) == 0 {
		return text
	}
	parts := make([]string, 0, len(attrs))
	for _, attr := range attrs {
		parts = append(parts, strconv.Itoa(attr))
	}
	return "\033[" + strings.Join(parts, ";") + "m" + text + ansiReset
}

func (s styler) header(text string) string {
	return s.ansi(text, ansiBright, ansiCyan)
}

func (s styler) subHeader(text string) string {
	return s.ansi(text, ansiBright, ansiBlue)
}

func (s styler) success(text string) string {
	return s.ansi(text, ansiBright, ansiGreen)
}

func (s styler) warning(text string) string {
	return s.ansi(text, ansiBright, ansiYellow)
}

func (s styler) errorText(text string) string {
	return s.ansi(text, ansiBright, ansiRed)
}

func (s styler) muted(text string) string {
	return s.ansi(text, ansiDim)
}
