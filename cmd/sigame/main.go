package main

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/elsid/sigame-tools/internal/config"
	"github.com/elsid/sigame-tools/internal/filter"
	"github.com/elsid/sigame-tools/internal/generate"
)

func main() {
	os.Exit(run())
}

const usageText = `Usage: sigame <command> [flags]

Commands:
  generate      Compose a package from indexed themes
  index         Index themes of package archives
  update-index  Refresh an index keeping theme ids
  version       Print version and exit

Global flags:
  -h, --help      Show this help

Run 'sigame <command> --help' for more information on a command.
`

func run() int {
	// Handle no arguments: print usage, exit 0.
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usageText)
		return 0
	}

	first := os.Args[1]

	switch first {
	case "--help", "-h":
		fmt.Fprint(os.Stderr, usageText)
		return 0
	}

	// Dispatch to subcommand.
	switch first {
	case "generate":
		return runGenerate(os.Args[2:])
	case "index":
		return runIndex(os.Args[2:])
	case "update-index":
		return runUpdateIndex(os.Args[2:])
	case "version":
		printVersion()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "sigame: unknown command %q\n\n%s", first, usageText)
		return 2
	}
}

func printVersion() {
	version := "(devel)"
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		version = info.Main.Version
	}
	fmt.Printf("sigame %s\n", version)
}

// usageError marks errors caused by arguments or configuration.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// exitCode maps an error to the process exit code: 2 for usage and
// configuration errors, 1 for everything else.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ue *usageError
	switch {
	case errors.As(err, &ue),
		errors.Is(err, config.ErrInvalid),
		errors.Is(err, generate.ErrInvalidOptions),
		errors.Is(err, filter.ErrUnknownField),
		errors.Is(err, filter.ErrInvalidRule):
		return 2
	}
	return 1
}

// fail prints err and returns its exit code.
func fail(err error) int {
	fmt.Fprintf(os.Stderr, "sigame: %v\n", err)
	return exitCode(err)
}
