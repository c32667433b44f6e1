package runner

import (
	"fmt"
	"strconv"
	"strings"
)

type valueMode int

const (
	valueNone valueMode = iota
	valueRequired
	valueOptionalInt
)

// optionSpec describes one command option. The first name is canonical.
type optionSpec struct {
	names []string
	value valueMode
}

type parsedOptions struct {
	values     map[string][]string
	positional []string
}

// parseOptions reads options until "--" or, when stopAtPositional is set,
// the first positional argument; everything after that is positional.
func parseOptions(args []string, specs []optionSpec, stopAtPositional bool) (parsedOptions, error) {
	lookup := map[string]optionSpec{}
	for _, spec := range specs {
		for _, name := range spec.names {
			lookup[name] = spec
		}
	}

	out := parsedOptions{values: map[string][]string{}}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			out.positional = append(out.positional, args[i+1:]...)
			break
		}
		flag, hasValue := splitOption(arg)
		if flag == "" {
			if stopAtPositional {
				out.positional = append(out.positional, args[i:]...)
				break
			}
			out.positional = append(out.positional, arg)
			continue
		}
		spec, ok := lookup[flag]
		if !ok {
			return parsedOptions{}, fmt.Errorf("unexpected flag: %s", flag)
		}
		canonical := spec.names[0]
		inline := strings.TrimPrefix(arg, flag+"=")

		switch spec.value {
		case valueNone:
			value := "true"
			if hasValue {
				parsed, err := parseBooleanFlag(inline, flag)
				if err != nil {
					return parsedOptions{}, err
				}
				value = strconv.FormatBool(parsed)
			}
			out.values[canonical] = append(out.values[canonical], value)
		case valueRequired:
			if hasValue {
				if strings.TrimSpace(inline) == "" {
					return parsedOptions{}, fmt.Errorf("missing value for %s", flag)
				}
				out.values[canonical] = append(out.values[canonical], inline)
				continue
			}
			if i+1 >= len(args) {
				return parsedOptions{}, fmt.Errorf("missing value for %s", flag)
			}
			i++
			out.values[canonical] = append(out.values[canonical], args[i])
		case valueOptionalInt:
			if hasValue {
				out.values[canonical] = append(out.values[canonical], inline)
				continue
			}
			if i+1 < len(args) {
				if _, err := strconv.Atoi(args[i+1]); err == nil {
					i++
					out.values[canonical] = append(out.values[canonical], args[i])
					continue
				}
			}
			out.values[canonical] = append(out.values[canonical], "")
		}
	}
	return out, nil
}

func splitOption(arg string) (string, bool) {
	if strings.HasPrefix(arg, "--") {
		if idx := strings.Index(arg, "="); idx >= 0 {
			return arg[:idx], true
		}
		return arg, false
	}
	if strings.HasPrefix(arg, "-") && len(arg) > 1 {
		if idx := strings.Index(arg, "="); idx >= 0 {
			return arg[:idx], true
		}
		return arg, false
	}
	return "", false
}

// flag reports the last occurrence of a boolean option.
func (p parsedOptions) flag(name string) bool {
	values := p.values[name]
	if len(values) == 0 {
		return false
	}
	return values[len(values)-1] == "true"
}

func (p parsedOptions) has(name string) bool {
	return len(p.values[name]) > 0
}

func (p parsedOptions) value(name string) (string, bool) {
	values := p.values[name]
	if len(values) == 0 {
		return "", false
	}
	return values[len(values)-1], true
}

func (p parsedOptions) all(name string) []string {
	return append([]string{}, p.values[name]...)
}

// positiveInt parses the last value of name, falling back when absent or
// given without a value.
func (p parsedOptions) positiveInt(name string, fallback int) (int, error) {
	raw, ok := p.value(name)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", name, raw)
	}
	if value < 1 {
		return 0, fmt.Errorf("invalid %s: must be at least 1, got %d", name, value)
	}
	return value, nil
}
