package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/XertroV/tasks/cmdstack/internal/runner"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := runner.RunContext(ctx, os.Args[1:]...)
	stop()
	if err != nil {
		if !runner.IsSilent(err) {
			os.Stderr.WriteString(err.Error())
			os.Stderr.WriteString("\n")
		}
		os.Exit(runner.ExitCode(err))
	}
}
