package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fedipage/fedipage/internal/cli"
	"github.com/fedipage/fedipage/pkg/version"
)

// exitIncomplete is the exit code when a list was rendered but stopped
// loading before its end.
const exitIncomplete = 2

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func run() error {
	return cli.NewRootCmd(version.GetVersion()).Execute()
}

func exitCode(err error) int {
	if errors.Is(err, cli.ErrIncomplete) {
		return exitIncomplete
	}
	return 1
}
