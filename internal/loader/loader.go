package loader

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/XertroV/tasks/cmdstack/internal/models"
)

const (
	DefaultPlaceholder = "{}"
	maxLineBytes       = 1024 * 1024
)

// PlaceholderMissingError reports a line template that would produce the
// same command for every input line.
type PlaceholderMissingError struct {
	Placeholder string
}

func (e *PlaceholderMissingError) Error() string {
	return fmt.Sprintf("placeholder %q does not occur in the command or working directory", e.Placeholder)
}

// Loader reads task input lines from a stream, typically stdin.
type Loader struct {
	input io.Reader
}

func New(input io.Reader) *Loader { return &Loader{input: input} }

// Lines returns the non-blank lines of the input in order, without line endings.
func (l *Loader) Lines() ([]string, error) {
	if l.input == nil {
		return nil, nil
	}
	scanner := bufio.NewScanner(l.input)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	lines := make([]string, 0)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input lines: %w", err)
	}
	return lines, nil
}

// LoadTasks builds one task per input line by substituting the line for
// placeholder in template. The placeholder must occur in the template.
func (l *Loader) LoadTasks(template models.Task, placeholder string) ([]models.Task, error) {
	if !template.ContainsPlaceholder(placeholder) {
		return nil, &PlaceholderMissingError{Placeholder: placeholder}
	}
	lines, err := l.Lines()
	if err != nil {
		return nil, err
	}
	tasks := make([]models.Task, 0, len(lines))
	for _, line := range lines {
		tasks = append(tasks, template.WithPlaceholder(placeholder, line))
	}
	return tasks, nil
}
