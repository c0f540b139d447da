// Package main implements the joli command: it formats JSON log streams through
// named styles and sends the result to a registry outputter.
package main

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/alecthomas/kong"

	"github.com/c360/joli/errors"
)

// Build information
var (
	Version   = "0.1.0"
	BuildTime = "dev"
)

const appName = "joli"

// exit codes
const (
	exitOK      = 0
	exitFailure = 1
	exitPanic   = 2
	exitInvalid = 3
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(exitPanic)
		}
	}()

	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run parses args, executes the selected command and returns the exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var cli CLI
	parser, err := newParser(&cli, stdout, stderr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return exitFailure
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return exitInvalid
	}

	// version needs no configuration
	if kctx.Command() == "version" {
		_, _ = fmt.Fprintf(stdout, "%s version %s (%s)\n", appName, Version, BuildTime)
		return exitOK
	}

	app, err := newApp(&cli.Globals, stdin, stdout, stderr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return exitInvalid
	}
	defer app.Close()

	if err := kctx.Run(app); err != nil {
		app.Logger.Debug("Command failed", "command", kctx.Command(), "error", err)
		_, _ = fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		if errors.IsInvalid(err) {
			return exitInvalid
		}
		return exitFailure
	}
	return exitOK
}

func newParser(cli *CLI, stdout, stderr io.Writer) (*kong.Kong, error) {
	return kong.New(cli,
		kong.Name(appName),
		kong.Description("Format JSON log streams through composable styles."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Writers(stdout, stderr),
	)
}
