package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMainPrintsUsage(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("CMDSTACK_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	originalStdout := os.Stdout
	originalArgs := os.Args
	defer func() { os.Stdout = originalStdout }()
	defer func() { os.Args = originalArgs }()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	var out bytes.Buffer
	os.Stdout = w

	readDone := make(chan struct{})
	go func() {
		_, _ = io.Copy(&out, r)
		close(readDone)
	}()

	os.Args = []string{"cmdstack"}
	main()

	if err := w.Close(); err != nil {
		t.Fatalf("failed to close write side: %v", err)
	}
	<-readDone

	output := out.String()
	if !strings.Contains(output, "Usage: cmdstack <command> [options]") {
		t.Fatalf("output %q does not contain expected usage banner", strings.TrimSpace(output))
	}
}
