package loader

import (
	"errors"
	"strings"
	"testing"

	"github.com/XertroV/tasks/cmdstack/internal/models"
)

func TestLinesSkipsBlankLines(t *testing.T) {
	t.Parallel()

	l := New(strings.NewReader("alpha\r\n\n   \nbeta\ngamma"))
	lines, err := l.Lines()
	if err != nil {
		t.Fatalf("Lines() error = %v", err)
	}
	expected := []string{"alpha", "beta", "gamma"}
	if strings.Join(lines, ",") != strings.Join(expected, ",") {
		t.Fatalf("Lines() = %q, expected %q", lines, expected)
	}
}

func TestLinesWithoutInput(t *testing.T) {
	t.Parallel()

	lines, err := New(nil).Lines()
	if err != nil || len(lines) != 0 {
		t.Fatalf("Lines() = %q, %v, expected no lines", lines, err)
	}
}

func TestLoadTasksSubstitutesPlaceholder(t *testing.T) {
	t.Parallel()

	template := models.NewTask("gzip", []string{"-k", "{}"}, "/data", nil)
	tasks, err := New(strings.NewReader("a.txt\nb.txt\n")).LoadTasks(template, DefaultPlaceholder)
	if err != nil {
		t.Fatalf("LoadTasks() error = %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("LoadTasks() produced %d tasks, expected 2", len(tasks))
	}
	if tasks[0].CommandLine() != "gzip -k a.txt" || tasks[1].CommandLine() != "gzip -k b.txt" {
		t.Fatalf("LoadTasks() = %q / %q", tasks[0].CommandLine(), tasks[1].CommandLine())
	}
	if template.Args[1] != "{}" {
		t.Fatalf("template was mutated: %v", template.Args)
	}
}

func TestLoadTasksCustomPlaceholderInWorkingDir(t *testing.T) {
	t.Parallel()

	template := models.NewTask("make", nil, "/src/@@", nil)
	tasks, err := New(strings.NewReader("api\nweb\n")).LoadTasks(template, "@@")
	if err != nil {
		t.Fatalf("LoadTasks() error = %v", err)
	}
	if tasks[1].WorkingDir != "/src/web" {
		t.Fatalf("WorkingDir = %q, expected /src/web", tasks[1].WorkingDir)
	}
}

func TestLoadTasksRejectsMissingPlaceholder(t *testing.T) {
	t.Parallel()

	template := models.NewTask("ls", []string{"-l"}, "/", nil)
	_, err := New(strings.NewReader("x\n")).LoadTasks(template, DefaultPlaceholder)
	var missing *PlaceholderMissingError
	if !errors.As(err, &missing) {
		t.Fatalf("LoadTasks() error = %v, expected PlaceholderMissingError", err)
	}
}

func TestLoadTasksEmptyInput(t *testing.T) {
	t.Parallel()

	template := models.NewTask("echo", []string{"{}"}, "/", nil)
	tasks, err := New(strings.NewReader("\n\n")).LoadTasks(template, DefaultPlaceholder)
	if err != nil {
		t.Fatalf("LoadTasks() error = %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("LoadTasks() produced %d tasks, expected 0", len(tasks))
	}
}
